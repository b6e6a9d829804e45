package api

import (
	"errors"
	"net/http"

	"github.com/clinicqueue/booking-backend/internal/auth"
	"github.com/clinicqueue/booking-backend/internal/booking"
	"github.com/clinicqueue/booking-backend/internal/directory"
	redisclient "github.com/clinicqueue/booking-backend/internal/redis"
)

// writeServiceError maps domain errors onto the HTTP taxonomy:
// validation and capacity failures are 400, absent entities 404,
// contention 409, everything else an opaque 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrMissingBookingInfo),
		errors.Is(err, booking.ErrInvalidCapacity),
		errors.Is(err, booking.ErrNoFieldsToUpdate),
		errors.Is(err, directory.ErrNoFieldsToUpdate),
		errors.Is(err, directory.ErrMissingFields),
		errors.Is(err, auth.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())

	case errors.Is(err, booking.ErrSlotFull):
		writeError(w, http.StatusBadRequest, "slot_full", err.Error())

	case errors.Is(err, booking.ErrDuplicateSlot),
		errors.Is(err, directory.ErrDuplicateUsername),
		errors.Is(err, auth.ErrDuplicateUser):
		writeError(w, http.StatusBadRequest, "duplicate", err.Error())

	case errors.Is(err, booking.ErrInvalidTransition):
		writeError(w, http.StatusBadRequest, "invalid_status_transition", err.Error())

	case errors.Is(err, booking.ErrPatientNotFound),
		errors.Is(err, booking.ErrDoctorNotFound),
		errors.Is(err, booking.ErrSlotNotFound),
		errors.Is(err, booking.ErrBookingNotFound),
		errors.Is(err, directory.ErrDoctorNotFound),
		errors.Is(err, directory.ErrDepartmentNotFound),
		errors.Is(err, directory.ErrStaffNotFound),
		errors.Is(err, auth.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())

	case errors.Is(err, booking.ErrSlotInUse):
		writeError(w, http.StatusConflict, "slot_in_use", err.Error())

	case errors.Is(err, booking.ErrSlotBusy),
		errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")

	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")

	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
