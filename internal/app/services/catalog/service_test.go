package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainlistings "motomarket/internal/domain/listings"
	"motomarket/internal/infra/storage/memory"
)

type fakeMetaCache struct {
	facets      domainlistings.Facets
	stats       domainlistings.Stats
	primed      bool
	hits        int
	sets        int
	invalidated int
}

func (c *fakeMetaCache) GetMeta(context.Context) (domainlistings.Facets, domainlistings.Stats, bool) {
	if !c.primed {
		return domainlistings.Facets{}, domainlistings.Stats{}, false
	}
	c.hits++
	return c.facets, c.stats, true
}

func (c *fakeMetaCache) SetMeta(_ context.Context, facets domainlistings.Facets, stats domainlistings.Stats) error {
	c.facets = facets
	c.stats = stats
	c.primed = true
	c.sets++
	return nil
}

func (c *fakeMetaCache) InvalidateMeta(context.Context) error {
	c.primed = false
	c.invalidated++
	return nil
}

func seedCatalog(t *testing.T, repo *memory.ListingRepository) {
	t.Helper()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	seeds := []struct {
		id    string
		brand string
		price int64
	}{
		{"c1", "Honda", 5200},
		{"c2", "Yamaha", 7700},
		{"c3", "Ducati", 15400},
	}
	for i, seed := range seeds {
		listing, err := domainlistings.NewListing(domainlistings.CreateParams{
			ID:        domainlistings.ListingID(seed.id),
			Seller:    domainlistings.SellerID("seller-" + seed.id),
			Title:     seed.brand + " for sale",
			Brand:     seed.brand,
			Year:      2018 + i,
			Price:     seed.price,
			Location:  "Porto",
			Category:  domainlistings.CategorySport,
			Condition: domainlistings.ConditionGood,
			Now:       now.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		require.NoError(t, repo.Save(context.Background(), listing))
	}
}

func TestSearchAssemblesFullPage(t *testing.T) {
	repo := memory.NewListingRepository()
	seedCatalog(t, repo)
	svc := &Service{Listings: repo}

	page, err := svc.Search(context.Background(), domainlistings.SearchParams{Brand: "Honda"})
	require.NoError(t, err)

	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, domainlistings.DefaultSearchLimit, page.Limit)
	require.Len(t, page.Listings, 1)
	assert.Equal(t, "c1", page.Listings[0].ID)

	// Facets and stats describe the whole pool, not the filtered slice.
	assert.ElementsMatch(t, []string{"Ducati", "Honda", "Yamaha"}, page.Facets.Brands)
	assert.Equal(t, int64(5200), page.Stats.MinPrice)
	assert.Equal(t, int64(15400), page.Stats.MaxPrice)
}

func TestSearchPopulatesAndReusesMetaCache(t *testing.T) {
	repo := memory.NewListingRepository()
	seedCatalog(t, repo)
	cache := &fakeMetaCache{}
	svc := &Service{Listings: repo, Cache: cache}

	_, err := svc.Search(context.Background(), domainlistings.SearchParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 0, cache.hits)

	page, err := svc.Search(context.Background(), domainlistings.SearchParams{Brand: "Yamaha"})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 1, cache.hits)
	assert.ElementsMatch(t, []string{"Ducati", "Honda", "Yamaha"}, page.Facets.Brands)
}

func TestInvalidateMetaDropsCachedCopy(t *testing.T) {
	repo := memory.NewListingRepository()
	seedCatalog(t, repo)
	cache := &fakeMetaCache{}
	svc := &Service{Listings: repo, Cache: cache}

	_, err := svc.Search(context.Background(), domainlistings.SearchParams{})
	require.NoError(t, err)

	svc.InvalidateMeta(context.Background())
	assert.Equal(t, 1, cache.invalidated)

	_, err = svc.Search(context.Background(), domainlistings.SearchParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, cache.sets)
}

func TestDetailBumpsViewsAndFindsSimilar(t *testing.T) {
	repo := memory.NewListingRepository()
	seedCatalog(t, repo)
	svc := &Service{Listings: repo}

	detail, err := svc.Detail(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), detail.Listing.Views)
	// c2 and c3 share the Sport category with c1.
	assert.Len(t, detail.Similar, 2)

	stored, err := repo.ByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Views)
}

func TestDetailUnknownListing(t *testing.T) {
	svc := &Service{Listings: memory.NewListingRepository()}

	_, err := svc.Detail(context.Background(), "missing")
	assert.ErrorIs(t, err, domainlistings.ErrNotFound)
}

func TestFeaturedAppliesDefaultLimit(t *testing.T) {
	repo := memory.NewListingRepository()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < defaultFeaturedLimit+2; i++ {
		listing, err := domainlistings.NewListing(domainlistings.CreateParams{
			ID:        domainlistings.ListingID("f" + string(rune('a'+i))),
			Seller:    "seller-1",
			Title:     "Honda promo",
			Brand:     "Honda",
			Year:      2020,
			Price:     7000,
			Location:  "Porto",
			Category:  domainlistings.CategorySport,
			Condition: domainlistings.ConditionGood,
			Featured:  true,
			Now:       now.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		require.NoError(t, repo.Save(context.Background(), listing))
	}
	svc := &Service{Listings: repo}

	cards, err := svc.Featured(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, cards, defaultFeaturedLimit)
	for _, card := range cards {
		assert.True(t, card.Featured)
	}

	cards, err = svc.Featured(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, cards, 2)
}
