package reservation

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"travelbooking/internal/domain"
	"travelbooking/internal/domain/session"
	"travelbooking/internal/pkg/apperr"
	"travelbooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	builder    *Builder
	machine    *StateMachine
	aggregator *Aggregator
	errs       *apperr.Mapper
}

func NewHandler(builder *Builder, machine *StateMachine, aggregator *Aggregator) *Handler {
	errs := apperr.NewMapper("Booking failed. Please try again.").
		With(apperr.ErrAuthRequired, http.StatusUnauthorized, "AUTH_REQUIRED", "Please sign in to continue").
		With(apperr.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "You are not allowed to manage this reservation").
		With(ErrInvalidStatusTransition, http.StatusConflict, "INVALID_STATUS_TRANSITION", "Only pending reservations can be approved or rejected").
		With(ErrNotDeletable, http.StatusConflict, "NOT_DELETABLE", "Only cancelled, completed or past reservations can be deleted").
		With(ErrConfirmationRequired, http.StatusBadRequest, "CONFIRMATION_REQUIRED", "Please confirm the deletion").
		With(ErrListingUnavailable, http.StatusBadGateway, "LISTING_UNAVAILABLE", "Could not load bookings. Please try again.")

	return &Handler{
		builder:    builder,
		machine:    machine,
		aggregator: aggregator,
		errs:       errs,
	}
}

// RegisterRoutes mounts the gateway API. optional resolves a session when a
// token is present; auth requires one; moderators limits to providers and admins.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, optional, auth, moderators gin.HandlerFunc) {
	rg.POST("/quotes", h.Quote)
	rg.POST("/reservations", optional, h.Create)

	me := rg.Group("/me", auth)
	{
		me.GET("/reservations", h.ListMine)
		me.DELETE("/reservations/:kind/:id", h.Delete)
	}

	provider := rg.Group("/provider", auth, moderators)
	{
		provider.GET("/reservations", h.ListIncoming)
		provider.PATCH("/reservations/:kind/:id/approve", h.Approve)
		provider.PATCH("/reservations/:kind/:id/reject", h.Reject)
	}
}

func (h *Handler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	var period domain.Period
	if strings.TrimSpace(req.CheckIn) != "" {
		t, err := ParseDate(req.CheckIn)
		if err != nil {
			h.errs.Respond(c, apperr.Validation("checkInDate", "Check-in date is invalid"))
			return
		}
		period.CheckIn = t
	}
	if strings.TrimSpace(req.CheckOut) != "" {
		t, err := ParseDate(req.CheckOut)
		if err != nil {
			h.errs.Respond(c, apperr.Validation("checkOutDate", "Check-out date is invalid"))
			return
		}
		period.CheckOut = t
	}

	if req.ServiceType == "" {
		response.Success(c, http.StatusOK, Calculate(PriceInput{
			UnitPrice:     req.UnitPrice,
			Start:         period.CheckIn,
			End:           period.CheckOut,
			PartySize:     req.PartySize,
			FlatFeePerDay: req.FlatFeePerDay,
		}))
		return
	}

	t, ok := domain.ParseServiceType(req.ServiceType)
	if !ok {
		h.errs.Respond(c, apperr.Validation("serviceType", "Unknown service type"))
		return
	}
	profile, _ := ProfileFor(t)
	response.Success(c, http.StatusOK, profile.Quote(req.UnitPrice, period, req.PartySize, req.FlatFeePerDay))
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	created, err := h.builder.Submit(c.Request.Context(), session.FromGin(c), req.toForm())
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	response.Success(c, http.StatusCreated, created)
}

func (h *Handler) ListMine(c *gin.Context) {
	h.list(c, AudienceCustomer)
}

func (h *Handler) ListIncoming(c *gin.Context) {
	h.list(c, AudienceProvider)
}

func (h *Handler) list(c *gin.Context, audience Audience) {
	q, err := parseQuery(c)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}

	listing, err := h.aggregator.List(c.Request.Context(), session.FromGin(c), audience, q)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, listing)
}

func (h *Handler) Approve(c *gin.Context) {
	ref, ok := h.parseRef(c)
	if !ok {
		return
	}
	updated, err := h.machine.Approve(c.Request.Context(), session.FromGin(c), ref)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, updated)
}

func (h *Handler) Reject(c *gin.Context) {
	ref, ok := h.parseRef(c)
	if !ok {
		return
	}
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	updated, err := h.machine.Reject(c.Request.Context(), session.FromGin(c), ref, req.Reason)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, updated)
}

func (h *Handler) Delete(c *gin.Context) {
	ref, ok := h.parseRef(c)
	if !ok {
		return
	}
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	confirmed := req.Confirm || c.Query("confirm") == "true"

	sess := session.FromGin(c)
	current, err := h.aggregator.Lookup(c.Request.Context(), sess, ref)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	if err := h.aggregator.Delete(c.Request.Context(), sess, *current, confirmed); err != nil {
		h.errs.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Reservation deleted", "reservation": ref})
}

func (h *Handler) parseRef(c *gin.Context) (domain.ReservationRef, bool) {
	kind, ok := domain.ParseRecordKind(c.Param("kind"))
	if !ok {
		response.Error(c, http.StatusBadRequest, "INVALID_KIND", "Unknown reservation kind")
		return domain.ReservationRef{}, false
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Reservation id is required")
		return domain.ReservationRef{}, false
	}
	return domain.ReservationRef{Kind: kind, ID: id}, true
}

func parseQuery(c *gin.Context) (Query, error) {
	var q Query
	if raw := c.Query("type"); raw != "" && !strings.EqualFold(raw, "all") {
		t, ok := domain.ParseServiceType(raw)
		if !ok {
			return q, apperr.Validation("type", "Unknown service type filter")
		}
		q.Type = t
	}
	tab, ok := ParseTab(c.Query("tab"))
	if !ok {
		return q, apperr.Validation("tab", "Unknown tab")
	}
	q.Tab = tab
	order, ok := ParseSortOrder(c.Query("sort"))
	if !ok {
		return q, apperr.Validation("sort", "Unknown sort order")
	}
	q.Sort = order
	return q, nil
}
