package ginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authsvc "motomarket/internal/app/services/auth"
	"motomarket/internal/app/services/catalog"
	"motomarket/internal/app/services/providers"
	"motomarket/internal/app/services/reviews"
	"motomarket/internal/app/services/scheduling"
	"motomarket/internal/app/services/sellers"
	"motomarket/internal/domain/availability"
	domainlistings "motomarket/internal/domain/listings"
	domainservices "motomarket/internal/domain/services"
	"motomarket/internal/infra/config"
	"motomarket/internal/infra/security"
	"motomarket/internal/infra/storage/memory"
	"motomarket/internal/infra/storage/s3"
)

type testEnv struct {
	handler  http.Handler
	listings *memory.ListingRepository
	services *memory.ServiceRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	listingRepo := memory.NewListingRepository()
	serviceRepo := memory.NewServiceRepository()
	bookingRepo := memory.NewBookingRepository()
	reviewRepo := memory.NewReviewRepository()
	userRepo := memory.NewUserRepository()

	authService := &authsvc.Service{
		Users:      userRepo,
		Sessions:   memory.NewSessionStore(),
		Passwords:  security.BcryptHasher{Cost: 4},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: time.Hour,
	}
	catalogService := &catalog.Service{Listings: listingRepo}
	sellerService := &sellers.Service{Listings: listingRepo, Photos: s3.NoopUploader{}}
	providerService := &providers.Service{Services: serviceRepo}
	schedulingService := &scheduling.Service{Services: serviceRepo, Bookings: bookingRepo}
	reviewService := &reviews.Service{Reviews: reviewRepo, Bookings: bookingRepo, Services: serviceRepo}

	server := NewServer(config.Config{Env: "test", HTTPAddr: ":0"}, nil, Handlers{
		Auth:    AuthHandler{Service: authService},
		Listing: ListingHandler{Catalog: catalogService},
		Seller:  SellerHandler{Sellers: sellerService},
		Service: ServiceHandler{
			Providers:      providerService,
			Scheduling:     schedulingService,
			ReviewsService: reviewService,
		},
		Booking: BookingHandler{
			Scheduling: schedulingService,
			Reviews:    reviewService,
		},
		AuthMiddleware: AuthMiddleware{Service: authService}.Handle,
	})
	return &testEnv{
		handler:  server.Handler,
		listings: listingRepo,
		services: serviceRepo,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	e.handler.ServeHTTP(recorder, req)
	return recorder
}

func (e *testEnv) register(t *testing.T, email string) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":    email,
		"name":     "Test Rider",
		"password": "road-legal-8",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var payload struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	require.NotEmpty(t, payload.Token)
	return payload.Token
}

func (e *testEnv) seedListing(t *testing.T, id, brand string, price int64) {
	t.Helper()
	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:        domainlistings.ListingID(id),
		Seller:    "seller-1",
		Title:     brand + " " + id,
		Brand:     brand,
		Year:      2020,
		Price:     price,
		Location:  "Porto",
		Category:  domainlistings.CategorySport,
		Condition: domainlistings.ConditionGood,
		Now:       time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, e.listings.Save(context.Background(), listing))
}

// 2026-04-06 is a Monday, matching the seeded Monday-only schedule.
func (e *testEnv) seedService(t *testing.T) {
	t.Helper()
	offer, err := domainservices.NewService(domainservices.CreateParams{
		ID:       "svc-1",
		Provider: "prov-1",
		Title:    "Full service",
		Type:     domainservices.TypeMaintenance,
		Price:    15000,
		City:     "Porto",
		Schedule: domainservices.WeekSchedule{
			time.Monday: {Open: true, Start: availability.MustClock("09:00"), End: availability.MustClock("11:00")},
		},
		SlotMinutes: 60,
		Now:         time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, e.services.Save(context.Background(), offer))
}

func TestCatalogEndpointReturnsPage(t *testing.T) {
	env := newTestEnv(t)
	env.seedListing(t, "l1", "Honda", 5000)
	env.seedListing(t, "l2", "Yamaha", 8000)

	resp := env.do(t, http.MethodGet, "/api/v1/listings?brand=Honda", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var payload struct {
		TotalCount int `json:"total_count"`
		Listings   []struct {
			ID string `json:"id"`
		} `json:"listings"`
		Facets struct {
			Brands []string `json:"brands"`
		} `json:"facets"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	assert.Equal(t, 1, payload.TotalCount)
	require.Len(t, payload.Listings, 1)
	assert.Equal(t, "l1", payload.Listings[0].ID)
	assert.ElementsMatch(t, []string{"Honda", "Yamaha"}, payload.Facets.Brands)
}

func TestCatalogEndpointAcceptsCamelCaseParams(t *testing.T) {
	env := newTestEnv(t)
	env.seedListing(t, "l1", "Honda", 5000)
	env.seedListing(t, "l2", "Yamaha", 8000)
	env.seedListing(t, "l3", "Ducati", 12000)

	resp := env.do(t, http.MethodGet, "/api/v1/listings?minPrice=6000&maxPrice=9000&sortBy=price-low", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var payload struct {
		TotalCount int `json:"total_count"`
		Listings   []struct {
			ID string `json:"id"`
		} `json:"listings"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	assert.Equal(t, 1, payload.TotalCount)
	require.Len(t, payload.Listings, 1)
	assert.Equal(t, "l2", payload.Listings[0].ID)
}

func TestListingDetailNotFound(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/v1/listings/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAvailabilityRequiresDateParam(t *testing.T) {
	env := newTestEnv(t)
	env.seedService(t)

	resp := env.do(t, http.MethodGet, "/api/v1/services/svc-1/availability", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = env.do(t, http.MethodGet, "/api/v1/services/svc-1/availability?date=2026-04-06", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var payload struct {
		Slots []string `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	assert.Equal(t, []string{"09:00", "10:00"}, payload.Slots)
}

func TestBookingRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	env.seedService(t)

	resp := env.do(t, http.MethodPost, "/api/v1/bookings", "", map[string]any{
		"service_id":     "svc-1",
		"scheduled_date": "2026-04-06",
		"scheduled_time": "09:00",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestBookingConflictReturns409(t *testing.T) {
	env := newTestEnv(t)
	env.seedService(t)
	first := env.register(t, "first@example.com")
	second := env.register(t, "second@example.com")

	body := map[string]any{
		"service_id":     "svc-1",
		"scheduled_date": "2026-04-06",
		"scheduled_time": "09:00",
	}
	resp := env.do(t, http.MethodPost, "/api/v1/bookings", first, body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = env.do(t, http.MethodPost, "/api/v1/bookings", second, body)
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestBookingAcceptsShortDateTimeFields(t *testing.T) {
	env := newTestEnv(t)
	env.seedService(t)
	rider := env.register(t, "rider@example.com")

	resp := env.do(t, http.MethodPost, "/api/v1/bookings", rider, map[string]any{
		"service_id": "svc-1",
		"date":       "2026-04-06",
		"time":       "10:00",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = env.do(t, http.MethodGet, "/api/v1/services/svc-1/availability?date=2026-04-06", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var payload struct {
		Slots []string `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	assert.Equal(t, []string{"09:00"}, payload.Slots)
}

func TestSellerRoutesNeedSellerRole(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.register(t, "buyer@example.com")

	resp := env.do(t, http.MethodGet, "/api/v1/seller/listings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = env.do(t, http.MethodGet, "/api/v1/seller/listings", buyer, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestFeaturedListingsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedListing(t, "l1", "Honda", 5000)
	promoted, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:        "l2",
		Seller:    "seller-1",
		Title:     "Yamaha l2",
		Brand:     "Yamaha",
		Year:      2021,
		Price:     9000,
		Location:  "Porto",
		Category:  domainlistings.CategorySport,
		Condition: domainlistings.ConditionGood,
		Featured:  true,
		Now:       time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, env.listings.Save(context.Background(), promoted))

	resp := env.do(t, http.MethodGet, "/api/v1/listings/featured", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var payload struct {
		Listings []struct {
			ID       string `json:"id"`
			Featured bool   `json:"featured"`
		} `json:"listings"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	require.Len(t, payload.Listings, 1)
	assert.Equal(t, "l2", payload.Listings[0].ID)
	assert.True(t, payload.Listings[0].Featured)
}

func TestProfileUpdateAndPasswordChange(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "rider@example.com")

	resp := env.do(t, http.MethodPut, "/api/v1/auth/me", token, map[string]any{"name": "Road Captain"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var profile struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &profile))
	assert.Equal(t, "Road Captain", profile.Name)

	resp = env.do(t, http.MethodPost, "/api/v1/auth/password", token, map[string]any{
		"current_password": "road-legal-8",
		"new_password":     "fresh-road-9",
	})
	require.Equal(t, http.StatusNoContent, resp.Code, resp.Body.String())

	resp = env.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/livez", "", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/readyz", "", nil).Code)
}
