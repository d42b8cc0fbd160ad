package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"ivlens/internal/analysis"
	"ivlens/internal/analysis/volatility"
	apperrors "ivlens/internal/errors"
	"ivlens/internal/interpret"
	"ivlens/internal/models"
	"ivlens/internal/store"
)

// Provider is the market data surface the handlers proxy to the frontend.
type Provider interface {
	Health(ctx context.Context) error
	Quote(ctx context.Context, symbol string) (models.Quote, error)
	ImpliedVol(ctx context.Context, symbol string) (models.IVQuote, error)
	History(ctx context.Context, symbol, period, interval string) ([]models.Bar, error)
	Search(ctx context.Context, q string) ([]models.SearchResult, error)
}

// Handler carries the HTTP route implementations.
type Handler struct {
	provider       Provider
	analyzer       *analysis.Analyzer
	chain          *interpret.Chain
	store          store.PredictionStore
	logger         zerolog.Logger
	defaultHorizon int
}

// NewHandler creates a handler over the application's collaborators.
// store may be nil, in which case the prediction routes return 503.
func NewHandler(provider Provider, analyzer *analysis.Analyzer, chain *interpret.Chain, st store.PredictionStore, logger zerolog.Logger) *Handler {
	return &Handler{
		provider:       provider,
		analyzer:       analyzer,
		chain:          chain,
		store:          st,
		logger:         logger.With().Str("component", "api").Logger(),
		defaultHorizon: 30,
	}
}

// SetDefaultHorizon overrides the horizon used when the request omits it.
func (h *Handler) SetDefaultHorizon(days int) {
	if days >= 1 && days <= 365 {
		h.defaultHorizon = days
	}
}

// RegisterRoutes attaches all routes to the Echo instance.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.HealthCheck)

	g := e.Group("/api")
	g.GET("/quote/:symbol", h.GetQuote)
	g.GET("/iv/:symbol", h.GetImpliedVol)
	g.GET("/history/:symbol", h.GetHistory)
	g.GET("/search", h.SearchSymbols)
	g.GET("/analysis/:symbol", h.GetAnalysis)
	g.GET("/move", h.GetExpectedMove)
	g.GET("/distribution/:symbol", h.GetDistribution)
	g.GET("/interpret/:symbol", h.GetInterpretation)
	g.POST("/predictions", h.CreatePrediction)
	g.GET("/predictions", h.ListPredictions)
	g.GET("/predictions/:id", h.GetPrediction)
	g.DELETE("/predictions/:id", h.DeletePrediction)
}

// HealthCheck reports the API status and whether the quote backend is
// reachable.
func (h *Handler) HealthCheck(c echo.Context) error {
	backend := "ok"
	if err := h.provider.Health(c.Request().Context()); err != nil {
		backend = "unreachable"
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": backend,
	})
}

// GetQuote proxies the latest quote for a symbol.
func (h *Handler) GetQuote(c echo.Context) error {
	symbol := strings.ToUpper(c.Param("symbol"))
	quote, err := h.provider.Quote(c.Request().Context(), symbol)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, quote)
}

// GetImpliedVol proxies the implied volatility estimate for a symbol.
func (h *Handler) GetImpliedVol(c echo.Context) error {
	symbol := strings.ToUpper(c.Param("symbol"))
	iv, err := h.provider.ImpliedVol(c.Request().Context(), symbol)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, iv)
}

// GetHistory proxies historical bars for a symbol.
func (h *Handler) GetHistory(c echo.Context) error {
	symbol := strings.ToUpper(c.Param("symbol"))
	period := c.QueryParam("period")
	if period == "" {
		period = analysis.HistoryPeriod
	}
	interval := c.QueryParam("interval")
	if interval == "" {
		interval = "1d"
	}

	bars, err := h.provider.History(c.Request().Context(), symbol, period, interval)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"symbol": symbol,
		"bars":   bars,
	})
}

// SearchSymbols proxies a ticker search.
func (h *Handler) SearchSymbols(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}
	results, err := h.provider.Search(c.Request().Context(), q)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"query":   q,
		"results": results,
	})
}

// GetAnalysis runs the full volatility analysis for a symbol.
func (h *Handler) GetAnalysis(c echo.Context) error {
	symbol := strings.ToUpper(c.Param("symbol"))
	horizon, err := h.intQuery(c, "horizon", h.defaultHorizon)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "horizon must be an integer")
	}

	analyzer := h.analyzer
	if w := c.QueryParam("window"); w != "" {
		window, err := strconv.Atoi(w)
		if err != nil || window < 2 {
			return echo.NewHTTPError(http.StatusBadRequest, "window must be an integer >= 2")
		}
		analyzer = analysis.NewAnalyzer(h.provider, h.logger)
		analyzer.SetWindow(window)
	}

	report, err := analyzer.Analyze(c.Request().Context(), symbol, horizon)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// GetExpectedMove projects an expected move from explicit IV, horizon and
// spot inputs without fetching market data.
func (h *Handler) GetExpectedMove(c echo.Context) error {
	iv, err := strconv.ParseFloat(c.QueryParam("iv"), 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "iv must be a number")
	}
	spot, err := strconv.ParseFloat(c.QueryParam("spot"), 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "spot must be a number")
	}
	days, err := h.intQuery(c, "days", h.defaultHorizon)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "days must be an integer")
	}

	move, err := volatility.Project(iv, days, spot)
	if err != nil {
		return h.errorResponse(c, err)
	}
	ranges, err := volatility.Ranges(iv, days, spot)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"iv":          iv,
		"spot":        spot,
		"horizonDays": days,
		"move":        move,
		"ranges":      ranges,
	})
}

// GetDistribution computes the historical move distribution for a symbol at
// a lookahead horizon.
func (h *Handler) GetDistribution(c echo.Context) error {
	symbol := strings.ToUpper(c.Param("symbol"))
	days, err := h.intQuery(c, "days", h.defaultHorizon)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "days must be an integer")
	}

	bars, err := h.provider.History(c.Request().Context(), symbol, analysis.HistoryPeriod, "1d")
	if err != nil {
		return h.errorResponse(c, err)
	}
	series, err := volatility.Normalize(bars)
	if err != nil {
		return h.errorResponse(c, err)
	}
	dist, err := volatility.Distribution(series, days)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"symbol":       symbol,
		"distribution": dist,
	})
}

// GetInterpretation runs the analysis and generates a plain-language
// interpretation of the result.
func (h *Handler) GetInterpretation(c echo.Context) error {
	symbol := strings.ToUpper(c.Param("symbol"))
	horizon, err := h.intQuery(c, "horizon", h.defaultHorizon)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "horizon must be an integer")
	}

	report, err := h.analyzer.Analyze(c.Request().Context(), symbol, horizon)
	if err != nil {
		return h.errorResponse(c, err)
	}
	result, err := h.chain.Generate(c.Request().Context(), report)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"symbol":      symbol,
		"horizonDays": horizon,
		"provider":    result.Provider,
		"text":        result.Text,
	})
}

// CreatePrediction stores a user prediction record.
func (h *Handler) CreatePrediction(c echo.Context) error {
	if h.store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "prediction store not configured")
	}

	var p models.Prediction
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid prediction payload")
	}
	if p.Symbol == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "symbol is required")
	}
	if p.HorizonDays < 1 || p.HorizonDays > 365 {
		return echo.NewHTTPError(http.StatusBadRequest, "horizonDays must be within 1..365")
	}

	if err := h.store.SavePrediction(c.Request().Context(), &p); err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// ListPredictions returns stored predictions, newest first.
func (h *Handler) ListPredictions(c echo.Context) error {
	if h.store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "prediction store not configured")
	}

	filter := store.PredictionFilter{
		Symbol: strings.ToUpper(c.QueryParam("symbol")),
	}
	if limit := c.QueryParam("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		filter.Limit = n
	}
	if from := c.QueryParam("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "from must be YYYY-MM-DD")
		}
		filter.StartDate = t
	}
	if to := c.QueryParam("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "to must be YYYY-MM-DD")
		}
		filter.EndDate = t
	}

	predictions, err := h.store.ListPredictions(c.Request().Context(), filter)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"predictions": predictions,
		"count":       len(predictions),
	})
}

// GetPrediction returns a single prediction by ID.
func (h *Handler) GetPrediction(c echo.Context) error {
	if h.store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "prediction store not configured")
	}

	p, err := h.store.GetPrediction(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// DeletePrediction removes a prediction by ID.
func (h *Handler) DeletePrediction(c echo.Context) error {
	if h.store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "prediction store not configured")
	}

	if err := h.store.DeletePrediction(c.Request().Context(), c.Param("id")); err != nil {
		return h.errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) intQuery(c echo.Context, name string, fallback int) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

// errorResponse maps application errors onto HTTP status codes.
func (h *Handler) errorResponse(c echo.Context, err error) error {
	var status int
	switch {
	case errors.Is(err, apperrors.ErrInvalidHorizon),
		errors.Is(err, apperrors.ErrInvalidLookahead),
		errors.Is(err, volatility.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrSymbolNotFound),
		errors.Is(err, apperrors.ErrDataNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrNoHistory),
		errors.Is(err, volatility.ErrInsufficientData),
		errors.Is(err, volatility.ErrUnavailable):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrProviderDown):
		status = http.StatusBadGateway
	default:
		var perr *apperrors.ProviderError
		if errors.As(err, &perr) {
			status = http.StatusBadGateway
			break
		}
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("request failed")
	}
	return echo.NewHTTPError(status, err.Error())
}
