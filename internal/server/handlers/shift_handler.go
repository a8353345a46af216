package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shiftdesk/internal/domain/models"
	"github.com/mamadbah2/shiftdesk/internal/server/middleware"
	"github.com/mamadbah2/shiftdesk/internal/service/cashcount"
	"github.com/mamadbah2/shiftdesk/internal/service/shifts"
)

// ShiftHandler exposes the shift service over HTTP.
type ShiftHandler struct {
	svc    *shifts.Service
	logger *zap.Logger
}

// NewShiftHandler constructs the HTTP handler adapter.
func NewShiftHandler(svc *shifts.Service, logger *zap.Logger) *ShiftHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShiftHandler{svc: svc, logger: logger}
}

// Register mounts the shift routes on an authenticated group.
func (h *ShiftHandler) Register(api gin.IRoutes) {
	api.GET("/denominations", h.Denominations)
	api.POST("/cash-counts/compare", h.Compare)
	api.GET("/shifts", h.List)
	api.GET("/shifts/current", h.Current)
	api.POST("/shifts/open", h.Open)
	api.GET("/shifts/:id", h.Get)
	api.POST("/shifts/:id/close", h.Close)
	api.GET("/shifts/:id/reconciliation", h.Reconciliation)
}

type openShiftRequest struct {
	OperatorID    string                     `json:"operator_id"`
	InitialCash   *models.Money              `json:"initial_cash"`
	Denominations []models.DenominationEntry `json:"denominations"`
}

type closeShiftRequest struct {
	ClosingCash   *models.Money              `json:"closing_cash"`
	Note          string                     `json:"note"`
	Denominations []models.DenominationEntry `json:"denominations"`
}

type compareRequest struct {
	Opening []models.DenominationEntry `json:"opening"`
	Closing []models.DenominationEntry `json:"closing"`
}

// Denominations lists the legal tender values, highest first.
func (h *ShiftHandler) Denominations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"denominations": h.svc.Tender()})
}

// Current returns the caller's (or operator_id's) open shift.
func (h *ShiftHandler) Current(c *gin.Context) {
	view, err := h.svc.CurrentShift(c.Request.Context(), middleware.ActorFrom(c), c.Query("operator_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Open starts a shift.
func (h *ShiftHandler) Open(c *gin.Context) {
	var req openShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid open shift payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.svc.OpenShift(c.Request.Context(), shifts.OpenShiftInput{
		Actor:         middleware.ActorFrom(c),
		OperatorID:    req.OperatorID,
		InitialCash:   req.InitialCash,
		Denominations: req.Denominations,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// Close ends the shift named in the path.
func (h *ShiftHandler) Close(c *gin.Context) {
	var req closeShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid close shift payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.svc.CloseShift(c.Request.Context(), shifts.CloseShiftInput{
		Actor:         middleware.ActorFrom(c),
		ShiftID:       c.Param("id"),
		ClosingCash:   req.ClosingCash,
		Note:          req.Note,
		Denominations: req.Denominations,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Get returns one shift.
func (h *ShiftHandler) Get(c *gin.Context) {
	shift, err := h.svc.GetShift(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

// Reconciliation returns the drawer reconciliation of one shift.
func (h *ShiftHandler) Reconciliation(c *gin.Context) {
	view, err := h.svc.Reconcile(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// List returns shift history filtered by query parameters.
func (h *ShiftHandler) List(c *gin.Context) {
	query, err := parseShiftQuery(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	list, err := h.svc.History(c.Request.Context(), middleware.ActorFrom(c), query)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shifts": list})
}

// Compare runs the denomination comparison on two ad hoc counts.
func (h *ShiftHandler) Compare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	tender := h.svc.Tender()
	if err := cashcount.Validate(tender, "opening", req.Opening); err != nil {
		h.writeError(c, err)
		return
	}
	if err := cashcount.Validate(tender, "closing", req.Closing); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, cashcount.Compare(tender, req.Opening, req.Closing))
}

func parseShiftQuery(c *gin.Context) (models.ShiftQuery, error) {
	query := models.ShiftQuery{
		OperatorID: strings.TrimSpace(c.Query("operator_id")),
		Status:     models.ShiftStatus(strings.ToLower(strings.TrimSpace(c.Query("status")))),
	}

	for _, param := range []struct {
		name string
		dst  **time.Time
	}{{"from", &query.From}, {"to", &query.To}} {
		raw := strings.TrimSpace(c.Query(param.name))
		if raw == "" {
			continue
		}
		t, err := parseQueryTime(raw)
		if err != nil {
			return query, models.NewValidationError(param.name, "must be RFC3339 or YYYY-MM-DD")
		}
		*param.dst = &t
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return query, models.NewValidationError("limit", "must be a non-negative integer")
		}
		query.Limit = limit
	}
	return query, nil
}

func parseQueryTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func (h *ShiftHandler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrShiftNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, models.ErrUpstreamUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}

	message := err.Error()
	var validation *models.ValidationError
	if errors.As(err, &validation) {
		message = validation.Error()
	}
	c.JSON(status, gin.H{"error": message})
}
