package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainlistings "motomarket/internal/domain/listings"
)

type listingSeed struct {
	id       string
	brand    string
	category domainlistings.Category
	price    int64
	year     int
	location string
	age      time.Duration
}

func seedListings(t *testing.T, repo *ListingRepository, seeds []listingSeed) {
	t.Helper()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for _, seed := range seeds {
		listing, err := domainlistings.NewListing(domainlistings.CreateParams{
			ID:        domainlistings.ListingID(seed.id),
			Seller:    domainlistings.SellerID("seller-" + seed.id),
			Title:     seed.brand + " " + seed.id,
			Brand:     seed.brand,
			Year:      seed.year,
			Price:     seed.price,
			Location:  seed.location,
			Category:  seed.category,
			Condition: domainlistings.ConditionGood,
			Now:       base.Add(-seed.age),
		})
		require.NoError(t, err)
		require.NoError(t, repo.Save(context.Background(), listing))
	}
}

func standardPool(t *testing.T) *ListingRepository {
	t.Helper()
	repo := NewListingRepository()
	seedListings(t, repo, []listingSeed{
		{id: "l1", brand: "Honda", category: domainlistings.CategorySport, price: 6500, year: 2019, location: "Porto", age: 1 * time.Hour},
		{id: "l2", brand: "Honda", category: domainlistings.CategoryCruiser, price: 4200, year: 2016, location: "Lisbon", age: 2 * time.Hour},
		{id: "l3", brand: "Yamaha", category: domainlistings.CategorySport, price: 8900, year: 2021, location: "Lisbon", age: 3 * time.Hour},
		{id: "l4", brand: "Ducati", category: domainlistings.CategorySport, price: 14500, year: 2022, location: "Porto", age: 4 * time.Hour},
		{id: "l5", brand: "Yamaha", category: domainlistings.CategoryTouring, price: 7300, year: 2018, location: "Faro", age: 5 * time.Hour},
	})
	return repo
}

func searchIDs(t *testing.T, repo *ListingRepository, params domainlistings.SearchParams) []string {
	t.Helper()
	result, err := repo.Search(context.Background(), params)
	require.NoError(t, err)
	ids := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		ids = append(ids, string(item.ID))
	}
	return ids
}

func TestSearchDefaultOrderIsNewestFirst(t *testing.T) {
	repo := standardPool(t)
	ids := searchIDs(t, repo, domainlistings.SearchParams{})
	assert.Equal(t, []string{"l1", "l2", "l3", "l4", "l5"}, ids)
}

func TestSearchEachFilterAppliesIndependently(t *testing.T) {
	repo := standardPool(t)

	assert.Equal(t, []string{"l1", "l2"}, searchIDs(t, repo, domainlistings.SearchParams{Brand: "Honda"}))
	assert.Equal(t, []string{"l1", "l3", "l4"}, searchIDs(t, repo, domainlistings.SearchParams{Category: "Sport"}))
	assert.Equal(t, []string{"l2", "l3"}, searchIDs(t, repo, domainlistings.SearchParams{Location: "Lisbon"}))
	assert.Equal(t, []string{"l1", "l3", "l5"}, searchIDs(t, repo, domainlistings.SearchParams{MinPrice: 6000, MaxPrice: 9000}))
	assert.Equal(t, []string{"l3", "l4"}, searchIDs(t, repo, domainlistings.SearchParams{MinYear: 2020}))
}

func TestSearchCombinedFiltersIntersect(t *testing.T) {
	repo := standardPool(t)

	ids := searchIDs(t, repo, domainlistings.SearchParams{
		Brand:    "Yamaha",
		Category: "Sport",
		Location: "Lisbon",
	})
	assert.Equal(t, []string{"l3"}, ids)

	// Same filters plus a price cap below the match leaves nothing.
	ids = searchIDs(t, repo, domainlistings.SearchParams{
		Brand:    "Yamaha",
		Category: "Sport",
		MaxPrice: 5000,
	})
	assert.Empty(t, ids)
}

func TestSearchInvertedBoundsMatchNothing(t *testing.T) {
	repo := standardPool(t)

	result, err := repo.Search(context.Background(), domainlistings.SearchParams{MinPrice: 10000, MaxPrice: 5000})
	require.NoError(t, err)
	assert.Zero(t, result.Total)
	assert.Empty(t, result.Items)
}

func TestSearchExcludesInactiveListings(t *testing.T) {
	repo := standardPool(t)

	listing, err := repo.ByID(context.Background(), "l3")
	require.NoError(t, err)
	require.NoError(t, listing.MarkSold(time.Now()))
	require.NoError(t, repo.Save(context.Background(), listing))

	ids := searchIDs(t, repo, domainlistings.SearchParams{})
	assert.NotContains(t, ids, "l3")
	assert.Len(t, ids, 4)
}

func TestSearchPaginationConcatenatesToFullResult(t *testing.T) {
	repo := NewListingRepository()
	seeds := make([]listingSeed, 0, 25)
	for i := 0; i < 25; i++ {
		seeds = append(seeds, listingSeed{
			id:       fmt.Sprintf("l%02d", i),
			brand:    "Honda",
			category: domainlistings.CategorySport,
			price:    int64(3000 + i*100),
			year:     2015 + i%8,
			location: "Porto",
			age:      time.Duration(i) * time.Minute,
		})
	}
	seedListings(t, repo, seeds)

	full := searchIDs(t, repo, domainlistings.SearchParams{Limit: 60, Sort: domainlistings.SortPriceLow})
	require.Len(t, full, 25)

	var paged []string
	for page := 1; page <= 3; page++ {
		result, err := repo.Search(context.Background(), domainlistings.SearchParams{
			Page:  page,
			Limit: 10,
			Sort:  domainlistings.SortPriceLow,
		})
		require.NoError(t, err)
		assert.Equal(t, 25, result.Total)
		for _, item := range result.Items {
			paged = append(paged, string(item.ID))
		}
	}
	assert.Equal(t, full, paged)

	// A page past the end is empty, not an error.
	result, err := repo.Search(context.Background(), domainlistings.SearchParams{Page: 9, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Equal(t, 25, result.Total)
}

func TestSearchSortStableAcrossTies(t *testing.T) {
	repo := NewListingRepository()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for _, id := range []string{"tie-b", "tie-a", "tie-c"} {
		listing, err := domainlistings.NewListing(domainlistings.CreateParams{
			ID:        domainlistings.ListingID(id),
			Seller:    "seller-1",
			Title:     "CB500F",
			Brand:     "Honda",
			Year:      2020,
			Price:     5500,
			Location:  "Porto",
			Category:  domainlistings.CategoryCruiser,
			Condition: domainlistings.ConditionGood,
			Now:       base,
		})
		require.NoError(t, err)
		require.NoError(t, repo.Save(context.Background(), listing))
	}

	first := searchIDs(t, repo, domainlistings.SearchParams{Sort: domainlistings.SortPriceLow})
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, searchIDs(t, repo, domainlistings.SearchParams{Sort: domainlistings.SortPriceLow}))
	}
	assert.Equal(t, []string{"tie-a", "tie-b", "tie-c"}, first)
}

func TestFacetsIgnoreAppliedFilters(t *testing.T) {
	repo := standardPool(t)

	// Facets come from the full active pool; there is no filtered variant.
	facets, err := repo.Facets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Ducati", "Honda", "Yamaha"}, facets.Brands)
	assert.Equal(t, []string{"Cruiser", "Sport", "Touring"}, facets.Categories)
	assert.Equal(t, []string{"Faro", "Lisbon", "Porto"}, facets.Locations)
}

func TestFacetsExcludeInactiveListings(t *testing.T) {
	repo := standardPool(t)

	listing, err := repo.ByID(context.Background(), "l4")
	require.NoError(t, err)
	require.NoError(t, listing.MarkSold(time.Now()))
	require.NoError(t, repo.Save(context.Background(), listing))

	facets, err := repo.Facets(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, facets.Brands, "Ducati")
}

func TestStatsSpanActivePool(t *testing.T) {
	repo := standardPool(t)

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4200), stats.MinPrice)
	assert.Equal(t, int64(14500), stats.MaxPrice)
	assert.Equal(t, 2016, stats.MinYear)
	assert.Equal(t, 2022, stats.MaxYear)
}

func TestStatsFallBackOnEmptyPool(t *testing.T) {
	repo := NewListingRepository()

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.MinPrice)
	assert.Equal(t, int64(1_000_000), stats.MaxPrice)
	assert.Equal(t, 2000, stats.MinYear)
	assert.Equal(t, time.Now().Year(), stats.MaxYear)
}

func TestFeaturedReturnsOnlyActiveFlaggedListings(t *testing.T) {
	repo := NewListingRepository()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	seeds := []struct {
		id       string
		featured bool
		age      time.Duration
	}{
		{id: "f1", featured: true, age: 1 * time.Hour},
		{id: "f2", featured: true, age: 2 * time.Hour},
		{id: "p1", featured: false, age: 3 * time.Hour},
		{id: "f3", featured: true, age: 4 * time.Hour},
	}
	for _, seed := range seeds {
		listing, err := domainlistings.NewListing(domainlistings.CreateParams{
			ID:        domainlistings.ListingID(seed.id),
			Seller:    "seller-1",
			Title:     "Honda " + seed.id,
			Brand:     "Honda",
			Year:      2020,
			Price:     7000,
			Location:  "Porto",
			Category:  domainlistings.CategorySport,
			Condition: domainlistings.ConditionGood,
			Featured:  seed.featured,
			Now:       base.Add(-seed.age),
		})
		require.NoError(t, err)
		require.NoError(t, repo.Save(context.Background(), listing))
	}

	sold, err := repo.ByID(context.Background(), "f3")
	require.NoError(t, err)
	require.NoError(t, sold.MarkSold(base))
	require.NoError(t, repo.Save(context.Background(), sold))

	featured, err := repo.Featured(context.Background(), 8)
	require.NoError(t, err)
	ids := make([]string, 0, len(featured))
	for _, item := range featured {
		ids = append(ids, string(item.ID))
	}
	assert.Equal(t, []string{"f1", "f2"}, ids)

	limited, err := repo.Featured(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, domainlistings.ListingID("f1"), limited[0].ID)
}

func TestSimilarSkipsOwnSellerAndSelf(t *testing.T) {
	repo := standardPool(t)

	ref, err := repo.ByID(context.Background(), "l1")
	require.NoError(t, err)
	similar, err := repo.Similar(context.Background(), ref, 4)
	require.NoError(t, err)

	for _, item := range similar {
		assert.NotEqual(t, ref.ID, item.ID)
		assert.NotEqual(t, ref.Seller, item.Seller)
		sameCategory := item.Category == ref.Category
		sameBrand := item.Brand == ref.Brand
		assert.True(t, sameCategory || sameBrand)
	}
}
