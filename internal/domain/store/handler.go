package store

import (
	"net/http"

	"travelbooking/internal/domain"
	"travelbooking/internal/domain/reservation"
	"travelbooking/internal/middleware"
	"travelbooking/internal/pkg/apperr"
	"travelbooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	errs    *apperr.Mapper
}

func NewHandler(service *Service) *Handler {
	errs := apperr.NewMapper("Request failed. Please try again.").
		With(ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password").
		With(ErrCapacityExceeded, http.StatusConflict, "CAPACITY_EXCEEDED", "Not enough capacity for this party size").
		With(ErrInvalidStatusTransition, http.StatusConflict, "INVALID_STATUS_TRANSITION", "Only pending reservations can be approved or rejected").
		With(ErrNotDeletable, http.StatusConflict, "NOT_DELETABLE", "Only cancelled, completed or past reservations can be deleted").
		With(apperr.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "You do not have access to this reservation").
		With(apperr.ErrNotFound, http.StatusNotFound, "NOT_FOUND", "Not found")
	return &Handler{service: service, errs: errs}
}

// RegisterRoutes mounts the booking REST contract. auth guards everything
// except login and offering lookups.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	rg.POST("/auth/login", h.Login)
	rg.GET("/services/:type/:id", h.GetService)

	protected := rg.Group("", auth)

	res := protected.Group("/reservations")
	res.POST("", h.CreateReservation)
	res.GET("/me", h.ListMine)
	res.GET("/provider", middleware.Moderators(), h.ListIncoming)
	res.GET("/:id", h.GetReservation)
	res.PATCH("/:id/status", middleware.Moderators(), h.UpdateStatus)
	res.DELETE("/:id", h.DeleteReservation)

	vb := protected.Group("/vehicle-bookings")
	vb.GET("/me", h.ListMyVehicleBookings)
	vb.GET("/provider", middleware.Moderators(), h.ListIncomingVehicleBookings)
	vb.GET("/:id", h.GetVehicleBooking)
	vb.PUT("/:id/status", middleware.Moderators(), h.UpdateVehicleBookingStatus)
	vb.DELETE("/:id", h.DeleteVehicleBooking)
}

func actorFrom(c *gin.Context) Actor {
	return Actor{UserID: middleware.UserID(c), Role: domain.UserRole(middleware.Role(c))}
}

func invalidBody(c *gin.Context) {
	response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}
	out, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) GetService(c *gin.Context) {
	doc, err := h.service.GetOffering(c.Request.Context(), c.Param("type"), c.Param("id"))
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, doc)
}

func (h *Handler) CreateReservation(c *gin.Context) {
	var payload reservation.CreatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		invalidBody(c)
		return
	}
	r, err := h.service.CreateReservation(c.Request.Context(), actorFrom(c), &payload)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	response.Success(c, http.StatusCreated, r)
}

func (h *Handler) ListMine(c *gin.Context) {
	h.list(c, reservation.AudienceCustomer)
}

func (h *Handler) ListIncoming(c *gin.Context) {
	h.list(c, reservation.AudienceProvider)
}

func (h *Handler) list(c *gin.Context, audience reservation.Audience) {
	items, err := h.service.ListReservations(c.Request.Context(), actorFrom(c), audience, c.Query("type"))
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	if items == nil {
		items = []domain.Reservation{}
	}
	response.Success(c, http.StatusOK, items)
}

func (h *Handler) GetReservation(c *gin.Context) {
	r, err := h.service.GetReservation(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, r)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var update reservation.StatusUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		invalidBody(c)
		return
	}
	r, err := h.service.UpdateReservationStatus(c.Request.Context(), actorFrom(c), c.Param("id"), update)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, r)
}

func (h *Handler) DeleteReservation(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.DeleteReservation(c.Request.Context(), actorFrom(c), id); err != nil {
		h.errs.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

func (h *Handler) ListMyVehicleBookings(c *gin.Context) {
	h.listVehicleBookings(c, reservation.AudienceCustomer)
}

func (h *Handler) ListIncomingVehicleBookings(c *gin.Context) {
	h.listVehicleBookings(c, reservation.AudienceProvider)
}

// Legacy listings keep their old {bookings: [...]} shape.
func (h *Handler) listVehicleBookings(c *gin.Context, audience reservation.Audience) {
	items, err := h.service.ListVehicleBookings(c.Request.Context(), actorFrom(c), audience)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	if items == nil {
		items = []domain.VehicleBooking{}
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": items, "count": len(items)})
}

func (h *Handler) GetVehicleBooking(c *gin.Context) {
	b, err := h.service.GetVehicleBooking(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

type vehicleStatusRequest struct {
	BookingStatus   string `json:"bookingStatus"`
	RejectionReason string `json:"rejectionReason"`
}

func (h *Handler) UpdateVehicleBookingStatus(c *gin.Context) {
	var req vehicleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}
	b, err := h.service.UpdateVehicleBookingStatus(c.Request.Context(), actorFrom(c), c.Param("id"), req.BookingStatus, req.RejectionReason)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) DeleteVehicleBooking(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.DeleteVehicleBooking(c.Request.Context(), actorFrom(c), id); err != nil {
		h.errs.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}
