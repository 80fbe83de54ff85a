package ginserver

import (
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"motomarket/internal/app/dto"
	"motomarket/internal/app/services/catalog"
	domainlistings "motomarket/internal/domain/listings"
)

// ListingHandler serves the public catalog.
type ListingHandler struct {
	Catalog *catalog.Service
}

// Search responds with one filtered, sorted catalog page. Malformed numeric
// parameters are treated as absent rather than rejected.
func (h ListingHandler) Search(c *gin.Context) {
	if h.Catalog == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog unavailable"})
		return
	}
	params := domainlistings.SearchParams{
		Search:    c.Query("search"),
		MinPrice:  parseInt64(queryAlias(c, "min_price", "minPrice")),
		MaxPrice:  parseInt64(queryAlias(c, "max_price", "maxPrice")),
		MinYear:   parseInt(queryAlias(c, "min_year", "minYear")),
		MaxYear:   parseInt(queryAlias(c, "max_year", "maxYear")),
		Brand:     c.Query("brand"),
		Category:  c.Query("category"),
		Condition: c.Query("condition"),
		FuelType:  queryAlias(c, "fuel_type", "fuelType"),
		Location:  c.Query("location"),
		Sort:      domainlistings.CatalogSort(queryAlias(c, "sort", "sortBy")),
		Page:      parseInt(c.Query("page")),
		Limit:     parseInt(c.Query("limit")),
	}
	result, err := h.Catalog.Search(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Featured returns the promoted listings strip for the landing page.
func (h ListingHandler) Featured(c *gin.Context) {
	if h.Catalog == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog unavailable"})
		return
	}
	cards, err := h.Catalog.Featured(c.Request.Context(), parseInt(c.Query("limit")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": cards})
}

// Detail returns one listing with its similar cards.
func (h ListingHandler) Detail(c *gin.Context) {
	if h.Catalog == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog unavailable"})
		return
	}
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "listing id is required"})
		return
	}
	result, err := h.Catalog.Detail(c.Request.Context(), domainlistings.ListingID(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapListingDetail(result.Listing, result.Similar))
}

var _ ListingHTTP = ListingHandler{}

// queryAlias reads a query parameter that clients send under more than one
// spelling; the first non-empty value wins.
func queryAlias(c *gin.Context, names ...string) string {
	for _, name := range names {
		if v := c.Query(name); v != "" {
			return v
		}
	}
	return ""
}

func parseInt(raw string) int {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}

func parseInt64(raw string) int64 {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
