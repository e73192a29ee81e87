package forecast

// BuildWindows slides a fixed-length lookback window across a scaled
// partition and returns (window, target) supervised pairs. For a partition
// of length n it produces exactly n-lookback-1 pairs: window i is
// partition[i:i+L] and its target partition[i+L]. The trailing L+1 positions
// cannot form a complete pair and are skipped.
func BuildWindows(partition []float64, lookback int) (windows [][]float64, targets []float64, err error) {
	n := len(partition)
	count := n - lookback - 1
	if count <= 0 {
		return nil, nil, &InsufficientDataError{Length: n, Lookback: lookback}
	}

	windows = make([][]float64, count)
	targets = make([]float64, count)
	for i := 0; i < count; i++ {
		w := make([]float64, lookback)
		copy(w, partition[i:i+lookback])
		windows[i] = w
		targets[i] = partition[i+lookback]
	}
	return windows, targets, nil
}

// Split partitions a scaled series into a contiguous training prefix and
// test suffix at k = floor(N*ratio). Order is temporal and preserved
// exactly; shuffling here would leak future values into training.
func Split(series []float64, ratio float64) (train, test []float64) {
	k := int(float64(len(series)) * ratio)
	return series[:k], series[k:]
}
