package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	appauth "motomarket/internal/app/services/auth"
	appreviews "motomarket/internal/app/services/reviews"
	"motomarket/internal/app/services/scheduling"
	"motomarket/internal/app/services/sellers"
	"motomarket/internal/domain/availability"
	domainauth "motomarket/internal/domain/auth"
	domainbooking "motomarket/internal/domain/booking"
	domainlistings "motomarket/internal/domain/listings"
	domainreviews "motomarket/internal/domain/reviews"
	domainservices "motomarket/internal/domain/services"
	domainuser "motomarket/internal/domain/user"
)

var notFoundErrors = []error{
	domainlistings.ErrNotFound,
	domainservices.ErrNotFound,
	domainbooking.ErrNotFound,
	domainreviews.ErrNotFound,
	domainuser.ErrNotFound,
}

var conflictErrors = []error{
	domainbooking.ErrSlotTaken,
	domainbooking.ErrInvalidState,
	domainbooking.ErrTooLateToCancel,
	domainbooking.ErrTooLateToReschedule,
	domainlistings.ErrInvalidState,
	domainreviews.ErrAlreadyReviewed,
	domainreviews.ErrBookingNotDone,
	domainuser.ErrEmailTaken,
	scheduling.ErrServiceUnavailable,
}

var badRequestErrors = []error{
	domainbooking.ErrBadDate,
	domainbooking.ErrBadTime,
	domainbooking.ErrInvalidStatus,
	domainbooking.ErrUserRequired,
	domainlistings.ErrTitleRequired,
	domainlistings.ErrBrandRequired,
	domainlistings.ErrModelRequired,
	domainlistings.ErrLocationRequired,
	domainlistings.ErrYearOutOfRange,
	domainlistings.ErrNegativePrice,
	domainlistings.ErrNegativeMileage,
	domainlistings.ErrNegativeEngine,
	domainlistings.ErrInvalidCondition,
	domainlistings.ErrInvalidCategory,
	domainlistings.ErrInvalidFuelType,
	domainservices.ErrTitleRequired,
	domainservices.ErrCityRequired,
	domainservices.ErrNegativePrice,
	domainservices.ErrInvalidType,
	domainservices.ErrInvalidSchedule,
	domainservices.ErrInvalidSlotSize,
	domainreviews.ErrInvalidRating,
	domainuser.ErrEmailRequired,
	domainuser.ErrNameRequired,
	availability.ErrBadClock,
	availability.ErrHoursInverted,
	appauth.ErrPasswordTooShort,
	scheduling.ErrSlotNotOffered,
}

var forbiddenErrors = []error{
	sellers.ErrNotOwner,
	domainservices.ErrNotOwner,
	scheduling.ErrNotParticipant,
	appreviews.ErrNotAuthor,
	appauth.ErrUserBlocked,
}

var unauthorizedErrors = []error{
	appauth.ErrInvalidCredentials,
	domainauth.ErrSessionNotFound,
	domainauth.ErrTokenRequired,
}

// respondError translates application errors to HTTP statuses. Anything not
// recognized becomes a 500 with a generic message so internals never leak.
func respondError(c *gin.Context, err error) {
	for _, candidate := range badRequestErrors {
		if errors.Is(err, candidate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	for _, candidate := range notFoundErrors {
		if errors.Is(err, candidate) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
	}
	for _, candidate := range conflictErrors {
		if errors.Is(err, candidate) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
	}
	for _, candidate := range forbiddenErrors {
		if errors.Is(err, candidate) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
	}
	for _, candidate := range unauthorizedErrors {
		if errors.Is(err, candidate) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
