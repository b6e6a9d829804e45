package api

import (
	"encoding/json"
	"net/http"

	"github.com/clinicqueue/booking-backend/internal/booking"
)

func createSlotHandler(mgr *booking.SlotManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, ok := parseIDParam(w, r)
		if !ok {
			return
		}

		var req CreateSlotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		capacity := req.Capacity
		if capacity == 0 {
			capacity = 1
		}

		slot, err := mgr.CreateSlot(r.Context(), booking.CreateSlotInput{
			DoctorID:  doctorID,
			Date:      req.Date,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Capacity:  capacity,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toSlotResponse(slot))
	}
}

func listDoctorSlotsHandler(mgr *booking.SlotManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, ok := parseIDParam(w, r)
		if !ok {
			return
		}

		date := r.URL.Query().Get("date")

		slots, err := mgr.ListDoctorSlots(r.Context(), doctorID, date)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := make([]SlotResponse, 0, len(slots))
		for i := range slots {
			resp = append(resp, toSlotResponse(&slots[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func deleteSlotHandler(mgr *booking.SlotManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r)
		if !ok {
			return
		}

		if err := mgr.DeleteSlot(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, StatusResponse{Status: "deleted"})
	}
}
