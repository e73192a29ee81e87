package api

import (
	"errors"
	"net/http"
	"time"

	models "StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	"StockCast/internal/service/metrics"
	"StockCast/internal/services/forecast"
	"StockCast/internal/usecase"
	xhttp "StockCast/pkg/http"
	xlogger "StockCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PredictorHandler implements Echo-based HTTP handlers following Clean Architecture.
type PredictorHandler struct {
	logger *xlogger.Logger
	svc    *usecase.PredictorService
}

func NewPredictorHandler(logger *xlogger.Logger, svc *usecase.PredictorService) *PredictorHandler {
	metrics.Register()
	return &PredictorHandler{logger: logger, svc: svc}
}

func (h *PredictorHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/health", h.Health)

	g := e.Group("/api")
	g.GET("/data", h.Data)
	g.POST("/data/fetch", h.FetchData)
	g.POST("/train", h.Train)
	g.GET("/train/status", h.TrainStatus)
	g.POST("/predict", h.Predict)
	g.GET("/historical", h.Historical)
	g.GET("/status", h.Status)
	g.DELETE("/model", h.DeleteModel)
	g.GET("/train/progress", h.TrainProgress)
}

func (h *PredictorHandler) Root(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{
		"service": "stockcast",
		"message": "stock price forecast API",
	})
}

func (h *PredictorHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.svc.Health())
}

func (h *PredictorHandler) Data(c echo.Context) error {
	sum, err := h.svc.Summary()
	if err != nil {
		return h.fail(c, "data", err)
	}
	return xhttp.SuccessResponse(c, sum)
}

func (h *PredictorHandler) FetchData(c echo.Context) error {
	start := time.Now()
	req := &models.FetchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sum, err := h.svc.FetchData(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, "fetch", err)
	}
	metrics.PredictorLatency.WithLabelValues("fetch").Observe(time.Since(start).Seconds())
	return xhttp.SuccessResponse(c, sum)
}

func (h *PredictorHandler) Train(c echo.Context) error {
	req := &models.TrainRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	epochs, batchSize, err := h.svc.Train(c.Request().Context(), req.Epochs, req.BatchSize)
	if err != nil {
		return h.fail(c, "train", err)
	}
	return xhttp.DataResponse(c, http.StatusAccepted, map[string]interface{}{
		"message":    "training started",
		"epochs":     epochs,
		"batch_size": batchSize,
	})
}

func (h *PredictorHandler) TrainStatus(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.svc.TrainingStatus())
}

func (h *PredictorHandler) Predict(c echo.Context) error {
	start := time.Now()
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.svc.Forecast(c.Request().Context(), req.Days)
	if err != nil {
		return h.fail(c, "predict", err)
	}
	metrics.PredictorLatency.WithLabelValues("predict").Observe(time.Since(start).Seconds())
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictorHandler) Historical(c echo.Context) error {
	res, err := h.svc.Historical(c.Request().Context())
	if err != nil {
		return h.fail(c, "historical", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictorHandler) Status(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.svc.Status())
}

func (h *PredictorHandler) DeleteModel(c echo.Context) error {
	if err := h.svc.DeleteModel(); err != nil {
		return h.fail(c, "delete_model", err)
	}
	return xhttp.SuccessResponse(c, map[string]string{"message": "model deleted"})
}

// fail maps domain errors onto HTTP statuses and records the failure.
func (h *PredictorHandler) fail(c echo.Context, endpoint string, err error) error {
	metrics.PredictorErrors.WithLabelValues(endpoint).Inc()
	h.logger.Error(endpoint+" usecase error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, mapError(err))
}

func mapError(err error) error {
	var insufData *forecast.InsufficientDataError
	var insufHist *forecast.InsufficientHistoryError
	var degenerate *forecast.DegenerateSeriesError
	var incomplete *domrepo.IncompletePersistenceError

	switch {
	case errors.Is(err, forecast.ErrTrainingInProgress):
		return xhttp.NewAppError("ERR_TRAINING_IN_PROGRESS", "",
			"a training run is already in progress", http.StatusConflict).WithError(err)
	case errors.Is(err, forecast.ErrModelNotTrained), errors.Is(err, forecast.ErrNotFitted):
		return xhttp.BadRequestError("model not trained, run training first").WithError(err)
	case errors.Is(err, usecase.ErrNoData):
		return xhttp.BadRequestError("no data loaded, fetch a series first").WithError(err)
	case errors.Is(err, domrepo.ErrModelNotFound):
		return xhttp.NotFoundError("no persisted model for symbol").WithError(err)
	case errors.As(err, &insufData), errors.As(err, &insufHist), errors.As(err, &degenerate):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.As(err, &incomplete):
		return xhttp.InternalError(err.Error()).WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}
