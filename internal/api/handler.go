package api

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/celtiberi/wind-service-2/internal/adapter/gazetteer"
	"github.com/celtiberi/wind-service-2/internal/adapter/marinetext"
	"github.com/celtiberi/wind-service-2/internal/domain"
	"github.com/celtiberi/wind-service-2/internal/grid"
	"github.com/celtiberi/wind-service-2/internal/observability"
	"github.com/celtiberi/wind-service-2/internal/processor"
)

// NameResolver turns a place name into a bounding box.
type NameResolver interface {
	Resolve(ctx context.Context, name string) (domain.BoundingBox, error)
}

// TextProvider serves the official zone forecast text for a coordinate.
type TextProvider interface {
	Forecast(ctx context.Context, lat, lon float64) (marinetext.Forecast, error)
}

// Handler handles HTTP requests for forecast products.
type Handler struct {
	processors map[string]processor.Processor
	resolver   NameResolver
	text       TextProvider
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewHandler creates a handler over the given processors. resolver and
// text may be nil when those features are not configured.
func NewHandler(procs []processor.Processor, resolver NameResolver, text TextProvider, logger *slog.Logger, metrics *observability.Metrics) *Handler {
	byProduct := make(map[string]processor.Processor, len(procs))
	for _, p := range procs {
		byProduct[p.Product()] = p
	}
	return &Handler{
		processors: byProduct,
		resolver:   resolver,
		text:       text,
		logger:     logger,
		metrics:    metrics,
	}
}

// productRequest is the body of every product endpoint. Either a full
// bounding box or a name is required, not both.
type productRequest struct {
	MinLat *float64 `json:"min_lat" binding:"omitempty,gte=-90,lte=90"`
	MaxLat *float64 `json:"max_lat" binding:"omitempty,gte=-90,lte=90"`
	MinLon *float64 `json:"min_lon" binding:"omitempty,gte=-180,lte=360"`
	MaxLon *float64 `json:"max_lon" binding:"omitempty,gte=-180,lte=360"`
	Name   string   `json:"name"`
	Unit   string   `json:"unit" binding:"omitempty,oneof=feet meters"`
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterStructValidation(validateBounds, productRequest{})
	}
}

// validateBounds rejects inverted boxes at binding time, before any
// name resolution happens.
func validateBounds(sl validator.StructLevel) {
	req := sl.Current().Interface().(productRequest)
	if req.MinLat != nil && req.MaxLat != nil && *req.MaxLat <= *req.MinLat {
		sl.ReportError(req.MaxLat, "max_lat", "MaxLat", "gtfield", "min_lat")
	}
	if req.MinLon != nil && req.MaxLon != nil && *req.MaxLon <= *req.MinLon {
		sl.ReportError(req.MaxLon, "max_lon", "MaxLon", "gtfield", "min_lon")
	}
}

type datasetInfo struct {
	Family       string    `json:"family"`
	Cycle        string    `json:"cycle"`
	Resolution   string    `json:"resolution"`
	ForecastHour string    `json:"forecast_hour"`
	DownloadTime time.Time `json:"download_time"`
}

type productResponse struct {
	ValidTime   time.Time          `json:"valid_time"`
	DataPoints  []processor.Point  `json:"data_points"`
	Summary     map[string]float64 `json:"summary"`
	Indicators  map[string]bool    `json:"indicators,omitempty"`
	Description string             `json:"description"`
	Dataset     datasetInfo        `json:"dataset"`
	ImageBase64 string             `json:"image_base64,omitempty"`
}

// handleProduct serves POST /v1/<product>.
func (h *Handler) handleProduct(product string) gin.HandlerFunc {
	proc := h.processors[product]
	return func(c *gin.Context) {
		if proc == nil {
			h.metrics.Requests.WithLabelValues(product, "error").Inc()
			h.logger.Error("no processor configured for product", "product", product)
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("product %s is not configured", product)})
			return
		}
		start := time.Now()
		defer func() {
			h.metrics.RequestDuration.WithLabelValues(product).Observe(time.Since(start).Seconds())
		}()

		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.metrics.Requests.WithLabelValues(product, "invalid").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		box, err := h.resolveBox(c.Request.Context(), req)
		if err != nil {
			h.writeError(c, product, err)
			return
		}

		result, err := proc.Process(c.Request.Context(), processor.Request{Box: box, Unit: req.Unit})
		if err != nil {
			h.writeError(c, product, err)
			return
		}

		h.metrics.Requests.WithLabelValues(product, "success").Inc()
		c.JSON(http.StatusOK, toResponse(result))
	}
}

// resolveBox builds the request box from explicit bounds or a name.
func (h *Handler) resolveBox(ctx context.Context, req productRequest) (domain.BoundingBox, error) {
	haveBounds := req.MinLat != nil && req.MaxLat != nil && req.MinLon != nil && req.MaxLon != nil
	switch {
	case haveBounds && req.Name != "":
		return domain.BoundingBox{}, errValidation("provide either a bounding box or a name, not both")
	case haveBounds:
		box := domain.BoundingBox{MinLat: *req.MinLat, MaxLat: *req.MaxLat, MinLon: *req.MinLon, MaxLon: *req.MaxLon}
		if err := box.Validate(); err != nil {
			return domain.BoundingBox{}, errValidation(err.Error())
		}
		return box, nil
	case req.Name != "":
		if h.resolver == nil {
			return domain.BoundingBox{}, errValidation("named areas are not supported by this deployment")
		}
		return h.resolver.Resolve(ctx, req.Name)
	default:
		return domain.BoundingBox{}, errValidation("min_lat, max_lat, min_lon and max_lon are required unless a name is given")
	}
}

// handleForecastText serves GET /v1/forecast-text?lat=..&lon=..
func (h *Handler) handleForecastText(c *gin.Context) {
	const product = "forecast-text"
	start := time.Now()
	defer func() {
		h.metrics.RequestDuration.WithLabelValues(product).Observe(time.Since(start).Seconds())
	}()

	if h.text == nil {
		h.metrics.Requests.WithLabelValues(product, "invalid").Inc()
		c.JSON(http.StatusNotFound, gin.H{"error": "forecast text is not supported by this deployment"})
		return
	}
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		h.metrics.Requests.WithLabelValues(product, "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lat"})
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		h.metrics.Requests.WithLabelValues(product, "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lon"})
		return
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 360 {
		h.metrics.Requests.WithLabelValues(product, "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat/lon out of range"})
		return
	}

	f, err := h.text.Forecast(c.Request.Context(), lat, lon)
	if err != nil {
		if errors.Is(err, marinetext.ErrNoZone) {
			h.metrics.Requests.WithLabelValues(product, "invalid").Inc()
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.metrics.Requests.WithLabelValues(product, "error").Inc()
		h.logger.Error("forecast text lookup failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not retrieve the zone forecast"})
		return
	}
	h.metrics.Requests.WithLabelValues(product, "success").Inc()
	c.JSON(http.StatusOK, f)
}

// validationError is a request problem surfaced after JSON binding.
type validationError string

func errValidation(msg string) error    { return validationError(msg) }
func (e validationError) Error() string { return string(e) }

// writeError maps processing errors onto status codes. Not-ready is the
// one transient case, so it alone carries the retriable hint.
func (h *Handler) writeError(c *gin.Context, product string, err error) {
	var vErr validationError
	var emptyErr *grid.EmptyRegionError
	switch {
	case errors.Is(err, domain.ErrNotReady):
		h.metrics.Requests.WithLabelValues(product, "not_ready").Inc()
		c.Header("Retry-After", "30")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "retriable": true})
	case errors.As(err, &vErr):
		h.metrics.Requests.WithLabelValues(product, "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, gazetteer.ErrNameNotFound):
		h.metrics.Requests.WithLabelValues(product, "invalid").Inc()
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &emptyErr):
		h.metrics.Requests.WithLabelValues(product, "empty").Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case domain.IsFieldNotFound(err):
		h.metrics.Requests.WithLabelValues(product, "error").Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.metrics.Requests.WithLabelValues(product, "error").Inc()
		h.logger.Error("request failed", "product", product, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func toResponse(r *processor.Result) productResponse {
	resp := productResponse{
		ValidTime:   r.ValidTime,
		DataPoints:  r.Points,
		Summary:     r.Summary,
		Indicators:  r.Indicators,
		Description: r.Description,
		Dataset: datasetInfo{
			Family:       string(r.Dataset.Family),
			Cycle:        r.Dataset.Metadata.Cycle.String(),
			Resolution:   r.Dataset.Metadata.Resolution,
			ForecastHour: r.Dataset.Metadata.ForecastHour,
			DownloadTime: r.Dataset.DownloadTime,
		},
	}
	if len(r.Image) > 0 {
		resp.ImageBase64 = base64.StdEncoding.EncodeToString(r.Image)
	}
	return resp
}
