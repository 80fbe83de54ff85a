package listings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewListingValidation(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	base := CreateParams{
		ID: "lst-1", Seller: "seller-1",
		Title: "CB500F", Brand: "Honda", Model: "CB500F",
		Year: 2020, Price: 5200, Location: "Porto",
		Category: "Sport", Condition: "Good",
		Now: now,
	}

	cases := []struct {
		name   string
		mutate func(*CreateParams)
		want   error
	}{
		{"missing title", func(p *CreateParams) { p.Title = "  " }, ErrTitleRequired},
		{"missing brand", func(p *CreateParams) { p.Brand = "" }, ErrBrandRequired},
		{"missing location", func(p *CreateParams) { p.Location = "" }, ErrLocationRequired},
		{"year too old", func(p *CreateParams) { p.Year = 1899 }, ErrYearOutOfRange},
		{"year in the future", func(p *CreateParams) { p.Year = now.Year() + 2 }, ErrYearOutOfRange},
		{"negative price", func(p *CreateParams) { p.Price = -1 }, ErrNegativePrice},
		{"unknown condition", func(p *CreateParams) { p.Condition = "Mint" }, ErrInvalidCondition},
		{"unknown category", func(p *CreateParams) { p.Category = "Chopper" }, ErrInvalidCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := base
			tc.mutate(&params)
			_, err := NewListing(params)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNewListingDefaults(t *testing.T) {
	l, err := NewListing(CreateParams{
		ID: "lst-1", Seller: "seller-1",
		Title: "CB500F", Brand: "Honda", Model: "CB500F",
		Year: 2020, Price: 5200, Location: "Porto",
		Category: "Sport", Condition: "Good",
		Photos: []string{"a.jpg", "b.jpg"},
		Now:    time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, StatusActive, l.Status)
	assert.Equal(t, FuelPetrol, l.FuelType)
	assert.Equal(t, "Unspecified", l.Color)
	assert.Equal(t, "a.jpg", l.ThumbnailURL)
}

func TestStatusLifecycle(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	l := fixtureListing(t, "lst-1", nil)

	require.NoError(t, l.MarkSold(now))
	assert.Equal(t, StatusSold, l.Status)
	// selling twice is a no-op
	require.NoError(t, l.MarkSold(now))
	// sold listings never return to the catalog
	assert.ErrorIs(t, l.Publish(now), ErrInvalidState)
	assert.ErrorIs(t, l.Deactivate(now), ErrInvalidState)

	draft := fixtureListing(t, "lst-2", func(p *CreateParams) { p.Draft = true })
	require.NoError(t, draft.Publish(now))
	assert.Equal(t, StatusActive, draft.Status)
	require.NoError(t, draft.Deactivate(now))
	assert.Equal(t, StatusInactive, draft.Status)
	assert.ErrorIs(t, draft.MarkSold(now), ErrInvalidState)
}
