package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"motomarket/internal/app/dto"
	"motomarket/internal/app/services/reviews"
	"motomarket/internal/app/services/scheduling"
	domainbooking "motomarket/internal/domain/booking"
	domainservices "motomarket/internal/domain/services"
	domainuser "motomarket/internal/domain/user"
)

// BookingHandler serves booking creation and lifecycle endpoints.
type BookingHandler struct {
	Scheduling *scheduling.Service
	Reviews    *reviews.Service
}

type createBookingRequest struct {
	ServiceID     string `json:"service_id"`
	ListingID     string `json:"listing_id"`
	ScheduledDate string `json:"scheduled_date"`
	ScheduledTime string `json:"scheduled_time"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Notes         string `json:"notes"`
}

func (r createBookingRequest) date() string {
	if r.ScheduledDate != "" {
		return r.ScheduledDate
	}
	return r.Date
}

func (r createBookingRequest) timeOfDay() string {
	if r.ScheduledTime != "" {
		return r.ScheduledTime
	}
	return r.Time
}

func (h BookingHandler) Create(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	booking, err := h.Scheduling.Book(c.Request.Context(), scheduling.BookParams{
		ServiceID:     domainservices.ServiceID(req.ServiceID),
		UserID:        p.ID,
		ListingID:     req.ListingID,
		ScheduledDate: req.date(),
		ScheduledTime: req.timeOfDay(),
		Notes:         req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapBookingSummary(booking, nil, time.Now()))
}

func (h BookingHandler) Mine(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	collection, err := h.Scheduling.UserBookings(c.Request.Context(), p.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, collection)
}

func (h BookingHandler) Cancel(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	booking, err := h.Scheduling.Cancel(c.Request.Context(), domainbooking.BookingID(c.Param("id")), p.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapBookingSummary(booking, nil, time.Now()))
}

type rescheduleRequest struct {
	ScheduledDate string `json:"scheduled_date"`
	ScheduledTime string `json:"scheduled_time"`
	Date          string `json:"date"`
	Time          string `json:"time"`
}

func (r rescheduleRequest) date() string {
	if r.ScheduledDate != "" {
		return r.ScheduledDate
	}
	return r.Date
}

func (r rescheduleRequest) timeOfDay() string {
	if r.ScheduledTime != "" {
		return r.ScheduledTime
	}
	return r.Time
}

func (h BookingHandler) Reschedule(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	booking, err := h.Scheduling.Reschedule(c.Request.Context(), domainbooking.BookingID(c.Param("id")), p.ID, req.date(), req.timeOfDay())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapBookingSummary(booking, nil, time.Now()))
}

type statusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// UpdateStatus lets the provider confirm, decline or complete a booking.
func (h BookingHandler) UpdateStatus(c *gin.Context) {
	p, ok := requireRole(c, string(domainuser.RoleProvider))
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	target, err := domainbooking.ParseStatus(req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	id := domainbooking.BookingID(c.Param("id"))
	provider := domainservices.ProviderID(p.ID)

	var booking *domainbooking.Booking
	switch target {
	case domainbooking.StatusConfirmed:
		booking, err = h.Scheduling.Confirm(c.Request.Context(), id, provider, req.Notes)
	case domainbooking.StatusDeclined:
		booking, err = h.Scheduling.Decline(c.Request.Context(), id, provider, req.Notes)
	case domainbooking.StatusCompleted:
		booking, err = h.Scheduling.Complete(c.Request.Context(), id, provider)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be confirmed, declined or completed"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapBookingSummary(booking, nil, time.Now()))
}

// Dashboard lists the provider's bookings grouped with status counts.
func (h BookingHandler) Dashboard(c *gin.Context) {
	p, ok := requireRole(c, string(domainuser.RoleProvider))
	if !ok {
		return
	}
	dashboard, err := h.Scheduling.ProviderDashboard(c.Request.Context(), domainservices.ProviderID(p.ID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Review accepts feedback on a completed booking.
func (h BookingHandler) Review(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	review, err := h.Reviews.Submit(c.Request.Context(), reviews.SubmitParams{
		BookingID: domainbooking.BookingID(c.Param("id")),
		AuthorID:  p.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapReview(review))
}

var _ BookingHTTP = BookingHandler{}
