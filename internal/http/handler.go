package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/seminar-quote/internal/excel"
	"github.com/nurpe/seminar-quote/internal/http/middleware"
	"github.com/nurpe/seminar-quote/internal/model"
	"github.com/nurpe/seminar-quote/internal/pricing"
	"github.com/nurpe/seminar-quote/internal/service"
)

type Handler struct {
	prices   *service.PriceService
	quotes   *service.QuoteService
	bookings *service.BookingService
	log      zerolog.Logger
}

func NewHandler(
	prices *service.PriceService,
	quotes *service.QuoteService,
	bookings *service.BookingService,
	log zerolog.Logger,
) *Handler {
	return &Handler{prices: prices, quotes: quotes, bookings: bookings, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.GET("/healthz", h.health)

	api := router.Group("/api")
	api.GET("/prices", h.getPrices)
	api.GET("/prices/export", h.exportPrices)
	api.POST("/quotes", h.computeQuote)
	api.POST("/quotes/export", h.exportQuote)
	api.POST("/bookings", h.submitBooking)

	protected := api.Group("/")
	protected.Use(authMiddleware)
	protected.POST("/prices/refresh", h.refreshPrices)
	protected.GET("/bookings", h.listBookings)
	protected.GET("/bookings/:reference", h.getBooking)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) getPrices(c *gin.Context) {
	res := h.prices.Current(c.Request.Context())
	c.JSON(http.StatusOK, pricesResponse(res, isTruthy(c.Query("flat"))))
}

func (h *Handler) refreshPrices(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	res, err := h.prices.Refresh(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.log.Info().Str("user_id", principal.UserID).Str("origin", string(res.Origin)).Msg("prices refreshed")
	c.JSON(http.StatusOK, pricesResponse(res, isTruthy(c.Query("flat"))))
}

func (h *Handler) exportPrices(c *gin.Context) {
	result, err := h.prices.Export(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendFile(c, result, excel.ContentType)
}

type quoteResponse struct {
	model.Quote
	Origin   pricing.Origin `json:"origin"`
	Defaults bool           `json:"defaults"`
}

func (h *Handler) computeQuote(c *gin.Context) {
	var sel model.Selection
	if err := c.ShouldBindJSON(&sel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.quotes.Quote(c.Request.Context(), sel)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, quoteResponse{Quote: result.Quote, Origin: result.Origin, Defaults: result.Defaults})
}

func (h *Handler) exportQuote(c *gin.Context) {
	var sel model.Selection
	if err := c.ShouldBindJSON(&sel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.quotes.Export(c.Request.Context(), sel)
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendFile(c, result, excel.ContentType)
}

func (h *Handler) submitBooking(c *gin.Context) {
	var booking model.Booking
	if err := c.ShouldBindJSON(&booking); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := h.bookings.Submit(c.Request.Context(), booking)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		case errors.Is(err, service.ErrDelivery):
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		default:
			h.log.Error().Err(err).Msg("booking submission failed")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"reference": result.Reference.String(),
		"gross":     result.Quote.Gross,
	})
}

func (h *Handler) listBookings(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var status *model.BookingStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		parsed, err := parseBookingStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		status = &parsed
	}

	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	records, err := h.bookings.List(c.Request.Context(), principal, status, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (h *Handler) getBooking(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	reference, err := uuid.Parse(strings.TrimSpace(c.Param("reference")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reference"})
		return
	}

	record, err := h.bookings.Get(c.Request.Context(), principal, reference)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func pricesResponse(res pricing.Resolution, flat bool) gin.H {
	var prices interface{} = res.Table
	if flat {
		prices = res.Table.Flat()
	}
	return gin.H{
		"prices":      prices,
		"origin":      res.Origin,
		"resolved_at": res.ResolvedAt,
		"defaults":    res.IsDefault(),
	}
}

func sendFile(c *gin.Context, result *service.FileResult, contentType string) {
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentType, result.Content)
}

func parseBookingStatus(raw string) (model.BookingStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(model.BookingStatusReceived):
		return model.BookingStatusReceived, nil
	case string(model.BookingStatusDelivered):
		return model.BookingStatusDelivered, nil
	case string(model.BookingStatusFailed):
		return model.BookingStatusFailed, nil
	default:
		return "", service.ErrInvalidInput
	}
}

func isTruthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
