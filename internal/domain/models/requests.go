package models

// Requests for the predictor HTTP endpoints. Defined in domain for
// consistency and reuse.

type FetchRequest struct {
	Symbol string `query:"symbol" json:"symbol" default:"NFLX" validate:"required,alphanum,min=1,max=10"`
}

type TrainRequest struct {
	Epochs    int `query:"epochs" json:"epochs" default:"0" validate:"gte=0,lte=1000"`
	BatchSize int `query:"batch_size" json:"batch_size" default:"0" validate:"gte=0,lte=4096"`
}

type PredictRequest struct {
	Days int `query:"days" json:"days" default:"30" validate:"gte=0,lte=365"`
}
