package ginserver

import (
	"errors"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/apartment"
	domainbooking "github.com/Apolo151/tourist-village-app-sub004/internal/domain/booking"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/user"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/village"
)

// respondError translates domain errors to HTTP statuses. Conflict and
// dependency failures carry structured detail so clients can act without a
// second round trip.
func respondError(c *gin.Context, err error) {
	var conflict *domainbooking.ConflictError
	if errors.As(err, &conflict) {
		entries := make([]gin.H, 0, len(conflict.Conflicts))
		for _, entry := range conflict.Conflicts {
			entries = append(entries, gin.H{
				"booking_id":   entry.ID,
				"arrival_date": entry.Arrival.Format(time.DateOnly),
				"leaving_date": entry.Leaving.Format(time.DateOnly),
				"status":       entry.Status,
			})
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "conflicts": entries})
		return
	}
	var deps *domainbooking.DependencyError
	if errors.As(err, &deps) {
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
			"dependencies": gin.H{
				"utility_readings": deps.Counts.UtilityReadings,
				"service_requests": deps.Counts.ServiceRequests,
				"payments":         deps.Counts.Payments,
				"emails":           deps.Counts.Emails,
			},
		})
		return
	}

	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domainbooking.ErrNotFound),
		errors.Is(err, apartment.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, village.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainbooking.ErrConflict),
		errors.Is(err, domainbooking.ErrHasDependencies),
		errors.Is(err, domainbooking.ErrInvalidTransition),
		errors.Is(err, user.ErrEmailAlreadyUsed):
		return http.StatusConflict
	case errors.Is(err, domainbooking.ErrExportLimit):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domainbooking.ErrApartmentRequired),
		errors.Is(err, domainbooking.ErrDatesRequired),
		errors.Is(err, domainbooking.ErrOccupantRequired),
		errors.Is(err, domainbooking.ErrInvalidDate),
		errors.Is(err, domainbooking.ErrDateOrder),
		errors.Is(err, domainbooking.ErrInvalidStatus),
		errors.Is(err, domainbooking.ErrInvalidUserType),
		errors.Is(err, domainbooking.ErrInvalidPeople),
		errors.Is(err, domainbooking.ErrNoChanges),
		errors.Is(err, domainbooking.ErrOwnerByNameOnly),
		errors.Is(err, domainbooking.ErrTypeMismatch),
		errors.Is(err, domainbooking.ErrInvalidPage),
		errors.Is(err, domainbooking.ErrInvalidLimit):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
