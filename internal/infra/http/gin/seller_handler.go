package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"motomarket/internal/app/dto"
	"motomarket/internal/app/services/sellers"
	domainlistings "motomarket/internal/domain/listings"
	domainuser "motomarket/internal/domain/user"
)

// SellerHandler serves the authenticated seller's listing management.
type SellerHandler struct {
	Sellers *sellers.Service
}

type listingRequest struct {
	Title            string   `json:"title"`
	Brand            string   `json:"brand"`
	Model            string   `json:"model"`
	Year             int      `json:"year"`
	Price            int64    `json:"price"`
	Mileage          int64    `json:"mileage"`
	EngineCapacityCC int      `json:"engine_capacity_cc"`
	Description      string   `json:"description"`
	Condition        string   `json:"condition"`
	Color            string   `json:"color"`
	FuelType         string   `json:"fuel_type"`
	Category         string   `json:"category"`
	Location         string   `json:"location"`
	Features         []string `json:"features"`
	Draft            bool     `json:"draft"`
	Featured         bool     `json:"featured"`
}

func (r listingRequest) toInput() sellers.ListingInput {
	return sellers.ListingInput{
		Title:            r.Title,
		Brand:            r.Brand,
		Model:            r.Model,
		Year:             r.Year,
		Price:            r.Price,
		Mileage:          r.Mileage,
		EngineCapacityCC: r.EngineCapacityCC,
		Description:      r.Description,
		Condition:        r.Condition,
		Color:            r.Color,
		FuelType:         r.FuelType,
		Category:         r.Category,
		Location:         r.Location,
		Features:         r.Features,
		Draft:            r.Draft,
		Featured:         r.Featured,
	}
}

func (h SellerHandler) List(c *gin.Context) {
	p, ok := requireRole(c, string(domainuser.RoleSeller))
	if !ok {
		return
	}
	listings, err := h.Sellers.BySeller(c.Request.Context(), domainlistings.SellerID(p.ID))
	if err != nil {
		respondError(c, err)
		return
	}
	cards := make([]dto.ListingCard, 0, len(listings))
	for _, listing := range listings {
		cards = append(cards, dto.MapListingCard(listing))
	}
	c.JSON(http.StatusOK, gin.H{"listings": cards})
}

func (h SellerHandler) Create(c *gin.Context) {
	p, ok := requireRole(c, string(domainuser.RoleSeller))
	if !ok {
		return
	}
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	listing, err := h.Sellers.Create(c.Request.Context(), domainlistings.SellerID(p.ID), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapListingDetail(listing, nil))
}

func (h SellerHandler) Update(c *gin.Context) {
	p, ok := requireRole(c, string(domainuser.RoleSeller))
	if !ok {
		return
	}
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	listing, err := h.Sellers.Update(c.Request.Context(), domainlistings.SellerID(p.ID), domainlistings.ListingID(c.Param("id")), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapListingDetail(listing, nil))
}

func (h SellerHandler) MarkSold(c *gin.Context) {
	p, ok := requireRole(c, string(domainuser.RoleSeller))
	if !ok {
		return
	}
	listing, err := h.Sellers.MarkSold(c.Request.Context(), domainlistings.SellerID(p.ID), domainlistings.ListingID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapListingDetail(listing, nil))
}

func (h SellerHandler) Publish(c *gin.Context) {
	p, ok := requireRole(c, string(domainuser.RoleSeller))
	if !ok {
		return
	}
	listing, err := h.Sellers.Publish(c.Request.Context(), domainlistings.SellerID(p.ID), domainlistings.ListingID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapListingDetail(listing, nil))
}

func (h SellerHandler) Deactivate(c *gin.Context) {
	p, ok := requireRole(c, string(domainuser.RoleSeller))
	if !ok {
		return
	}
	listing, err := h.Sellers.Deactivate(c.Request.Context(), domainlistings.SellerID(p.ID), domainlistings.ListingID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapListingDetail(listing, nil))
}

func (h SellerHandler) Delete(c *gin.Context) {
	p, ok := requireRole(c, string(domainuser.RoleSeller))
	if !ok {
		return
	}
	if err := h.Sellers.Delete(c.Request.Context(), domainlistings.SellerID(p.ID), domainlistings.ListingID(c.Param("id"))); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddPhoto accepts one multipart photo upload.
func (h SellerHandler) AddPhoto(c *gin.Context) {
	p, ok := requireRole(c, string(domainuser.RoleSeller))
	if !ok {
		return
	}
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	content, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is unreadable"})
		return
	}
	defer content.Close()

	listing, err := h.Sellers.AddPhoto(c.Request.Context(), domainlistings.SellerID(p.ID), domainlistings.ListingID(c.Param("id")), file.Filename, content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapListingDetail(listing, nil))
}

var _ SellerHTTP = SellerHandler{}
