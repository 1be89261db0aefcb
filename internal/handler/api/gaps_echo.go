package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	models "GapSight/internal/domain/models"
	"GapSight/internal/usecase"
	xhttp "GapSight/pkg/http"
	xlogger "GapSight/pkg/logger"
	"GapSight/pkg/util"

	"github.com/labstack/echo/v4"
)

// HealthChecker reports readiness of a backing dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// GapsEchoHandler exposes the gap engine over HTTP.
type GapsEchoHandler struct {
	logger  *xlogger.Logger
	gaps    *usecase.GapsUseCase
	candles *usecase.CandlesUseCase
	deps    map[string]HealthChecker
}

func NewGapsEchoHandler(logger *xlogger.Logger, gaps *usecase.GapsUseCase) *GapsEchoHandler {
	return &GapsEchoHandler{logger: logger, gaps: gaps, deps: make(map[string]HealthChecker)}
}

// SetCandlesUseCase enables the /api/candles history endpoint.
func (h *GapsEchoHandler) SetCandlesUseCase(uc *usecase.CandlesUseCase) { h.candles = uc }

// AddHealthCheck registers a named dependency for /healthz.
func (h *GapsEchoHandler) AddHealthCheck(name string, hc HealthChecker) {
	if hc != nil {
		h.deps[name] = hc
	}
}

func (h *GapsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/gaps", h.Gaps)
	g.GET("/gaps/active", h.ActiveGaps)
	g.GET("/gaps/strong", h.StrongGaps)
	g.GET("/gaps/near", h.NearPrice)
	g.GET("/signal", h.Signal)
	g.GET("/statistics", h.Statistics)
	g.GET("/export", h.Export)
	g.GET("/candles", h.Candles)
	e.GET("/healthz", h.Healthz)
}

func (h *GapsEchoHandler) Gaps(c echo.Context) error {
	req := &models.GapsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.gaps.Gaps(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.queryError(c, "gaps", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *GapsEchoHandler) ActiveGaps(c echo.Context) error {
	req := &models.ActiveGapsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.gaps.ActiveGaps(c.Request().Context(), req.Symbol, req.MaxAge)
	if err != nil {
		return h.queryError(c, "gaps.active", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *GapsEchoHandler) StrongGaps(c echo.Context) error {
	req := &models.StrongGapsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.gaps.StrongGaps(c.Request().Context(), req.Symbol, req.MinStrength)
	if err != nil {
		return h.queryError(c, "gaps.strong", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *GapsEchoHandler) NearPrice(c echo.Context) error {
	req := &models.NearPriceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.gaps.NearPrice(c.Request().Context(), req.Symbol, req.Price, req.TolerancePct)
	if err != nil {
		return h.queryError(c, "gaps.near", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *GapsEchoHandler) Signal(c echo.Context) error {
	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.gaps.Signal(c.Request().Context(), req.Symbol, req.Price)
	if err != nil {
		return h.queryError(c, "signal", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *GapsEchoHandler) Statistics(c echo.Context) error {
	req := &models.StatisticsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.gaps.Statistics(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.queryError(c, "statistics", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *GapsEchoHandler) Export(c echo.Context) error {
	req := &models.GapsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.gaps.Export(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.queryError(c, "export", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *GapsEchoHandler) Candles(c echo.Context) error {
	if h.candles == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("candle history not configured"))
	}
	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	now := time.Now().UTC()
	res, err := h.candles.GetCandles(c.Request().Context(), usecase.GetCandlesParams{
		Symbol: req.Symbol,
		From:   util.ParseTimeDefault(req.From, now.Add(-24*time.Hour)),
		To:     util.ParseTimeDefault(req.To, now),
		Limit:  req.Limit,
	})
	if err != nil {
		h.logger.Error("candles usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *GapsEchoHandler) Healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.deps))
	for name, hc := range h.deps {
		if err := hc.Health(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	return c.JSON(status, map[string]interface{}{
		"status": http.StatusText(status),
		"checks": checks,
	})
}

func (h *GapsEchoHandler) queryError(c echo.Context, op string, err error) error {
	if errors.Is(err, usecase.ErrUnknownSymbol) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("symbol not tracked").WithError(err))
	}
	h.logger.Error(op+" usecase error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, err)
}
