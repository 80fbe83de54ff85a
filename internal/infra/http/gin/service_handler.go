package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"motomarket/internal/app/dto"
	"motomarket/internal/app/services/providers"
	"motomarket/internal/app/services/reviews"
	"motomarket/internal/app/services/scheduling"
	domainservices "motomarket/internal/domain/services"
	domainuser "motomarket/internal/domain/user"
)

// ServiceHandler serves the workshop directory and provider management.
type ServiceHandler struct {
	Providers      *providers.Service
	Scheduling     *scheduling.Service
	ReviewsService *reviews.Service
}

type serviceRequest struct {
	Title        string                     `json:"title"`
	Description  string                     `json:"description"`
	Type         string                     `json:"type"`
	Price        int64                      `json:"price"`
	City         string                     `json:"city"`
	Country      string                     `json:"country"`
	Schedule     map[string]dto.ScheduleDay `json:"schedule"`
	SlotDuration int                        `json:"slot_duration"`
	ContactPhone string                     `json:"contact_phone"`
	ContactEmail string                     `json:"contact_email"`
}

func (h ServiceHandler) Directory(c *gin.Context) {
	params := domainservices.ListParams{
		Type:     c.Query("type"),
		MinPrice: parseInt64(c.Query("min_price")),
		MaxPrice: parseInt64(c.Query("max_price")),
		City:     c.Query("city"),
		Search:   c.Query("search"),
		Page:     parseInt(c.Query("page")),
		Limit:    parseInt(c.Query("limit")),
	}
	result, normalized, err := h.Providers.Directory(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapServiceDirectory(result, normalized))
}

func (h ServiceHandler) Detail(c *gin.Context) {
	offer, err := h.Providers.ByID(c.Request.Context(), domainservices.ServiceID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapServiceDetail(offer))
}

// Availability returns the free slots of a service on one date. The date
// query parameter is required.
func (h ServiceHandler) Availability(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}
	result, err := h.Scheduling.DayAvailability(c.Request.Context(), domainservices.ServiceID(c.Param("id")), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ServiceHandler) Reviews(c *gin.Context) {
	items, err := h.ReviewsService.ByService(c.Request.Context(), domainservices.ServiceID(c.Param("id")), parseInt(c.Query("limit")), parseInt(c.Query("offset")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapReviewCollection(items))
}

func (h ServiceHandler) Mine(c *gin.Context) {
	p, ok := requireRole(c, string(domainuser.RoleProvider))
	if !ok {
		return
	}
	offers, err := h.Providers.ByProvider(c.Request.Context(), domainservices.ProviderID(p.ID))
	if err != nil {
		respondError(c, err)
		return
	}
	summaries := make([]dto.ServiceSummary, 0, len(offers))
	for _, offer := range offers {
		summaries = append(summaries, dto.MapServiceSummary(offer))
	}
	c.JSON(http.StatusOK, gin.H{"services": summaries})
}

func (h ServiceHandler) Create(c *gin.Context) {
	p, ok := requireRole(c, string(domainuser.RoleProvider))
	if !ok {
		return
	}
	input, ok := h.bindOffer(c)
	if !ok {
		return
	}
	offer, err := h.Providers.Create(c.Request.Context(), domainservices.ProviderID(p.ID), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapServiceDetail(offer))
}

func (h ServiceHandler) Update(c *gin.Context) {
	p, ok := requireRole(c, string(domainuser.RoleProvider))
	if !ok {
		return
	}
	input, ok := h.bindOffer(c)
	if !ok {
		return
	}
	offer, err := h.Providers.Update(c.Request.Context(), domainservices.ProviderID(p.ID), domainservices.ServiceID(c.Param("id")), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapServiceDetail(offer))
}

func (h ServiceHandler) Deactivate(c *gin.Context) {
	p, ok := requireRole(c, string(domainuser.RoleProvider))
	if !ok {
		return
	}
	offer, err := h.Providers.Deactivate(c.Request.Context(), domainservices.ProviderID(p.ID), domainservices.ServiceID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapServiceDetail(offer))
}

func (h ServiceHandler) Delete(c *gin.Context) {
	p, ok := requireRole(c, string(domainuser.RoleProvider))
	if !ok {
		return
	}
	if err := h.Providers.Delete(c.Request.Context(), domainservices.ProviderID(p.ID), domainservices.ServiceID(c.Param("id"))); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h ServiceHandler) bindOffer(c *gin.Context) (providers.OfferInput, bool) {
	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return providers.OfferInput{}, false
	}
	schedule, err := dto.ParseSchedule(req.Schedule)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return providers.OfferInput{}, false
	}
	return providers.OfferInput{
		Title:        req.Title,
		Description:  req.Description,
		Type:         req.Type,
		Price:        req.Price,
		City:         req.City,
		Country:      req.Country,
		Schedule:     schedule,
		SlotMinutes:  req.SlotDuration,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
	}, true
}

var _ ServiceHTTP = ServiceHandler{}
