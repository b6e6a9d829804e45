package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicqueue/booking-backend/internal/booking"
	redisclient "github.com/clinicqueue/booking-backend/internal/redis"
)

type testServer struct {
	repo    *booking.MemoryRepository
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	repo := booking.NewMemoryRepository()
	log := zerolog.Nop()

	handler := NewRouter(RouterConfig{
		Bookings: booking.NewService(repo, redisclient.NewLocalLocker(), log),
		Slots:    booking.NewSlotManager(repo, log),
		Logger:   log,
		Env:      "test",
		Version:  "test",
	})
	return &testServer{repo: repo, handler: handler}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func (ts *testServer) seedDoctorAndSlot(t *testing.T, capacity int) (uuid.UUID, SlotResponse) {
	t.Helper()
	doc := booking.Doctor{ID: uuid.New(), FirstName: "Alice", LastName: "Chan"}
	ts.repo.AddDoctor(doc)

	rec := ts.do(t, http.MethodPost, "/doctors/"+doc.ID.String()+"/slots", CreateSlotRequest{
		Date:      "2026-09-01",
		StartTime: "09:00",
		EndTime:   "09:30",
		Capacity:  capacity,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed slot: status %d body %s", rec.Code, rec.Body.String())
	}
	return doc.ID, decode[SlotResponse](t, rec)
}

func (ts *testServer) seedPatient(t *testing.T, nationalID string) booking.Patient {
	t.Helper()
	p := booking.Patient{ID: uuid.New(), FirstName: "Bob", LastName: "Lee"}
	if nationalID != "" {
		p.NationalID = &nationalID
	}
	ts.repo.AddPatient(p)
	return p
}

func TestHealthLiveness(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health/live", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("liveness: status %d", rec.Code)
	}
	if got := decode[LivenessResponse](t, rec); got.Status != "ok" {
		t.Errorf("status = %q, want ok", got.Status)
	}
}

func TestBookingEndpoints_Lifecycle(t *testing.T) {
	ts := newTestServer(t)
	_, slot := ts.seedDoctorAndSlot(t, 1)
	p := ts.seedPatient(t, "1234567890123")

	// Create.
	rec := ts.do(t, http.MethodPost, "/bookings", CreateBookingRequest{
		PatientID: p.ID.String(),
		SlotID:    slot.ID.String(),
		Symptoms:  "headache",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", rec.Code, rec.Body.String())
	}
	created := decode[BookingResponse](t, rec)
	if created.Status != "pending" {
		t.Errorf("status = %q", created.Status)
	}
	if created.DisplayToken != "1234567890123" {
		t.Errorf("qr_code = %q", created.DisplayToken)
	}

	// Get.
	rec = ts.do(t, http.MethodGet, "/bookings/"+created.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status %d", rec.Code)
	}

	// List.
	rec = ts.do(t, http.MethodGet, "/bookings", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	if got := decode[[]BookingResponse](t, rec); len(got) != 1 {
		t.Errorf("list len = %d, want 1", len(got))
	}

	// Check in, with the legacy status alias.
	rec = ts.do(t, http.MethodPost, "/bookings/"+created.ID.String()+"/checkin", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("checkin: status %d body %s", rec.Code, rec.Body.String())
	}
	if got := decode[BookingResponse](t, rec); got.Status != "checked_in" {
		t.Errorf("checkin status = %q", got.Status)
	}

	// Cancel twice; both succeed.
	for i := 0; i < 2; i++ {
		rec = ts.do(t, http.MethodDelete, "/bookings/"+created.ID.String(), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("cancel #%d: status %d body %s", i+1, rec.Code, rec.Body.String())
		}
		if got := decode[BookingResponse](t, rec); got.Status != "cancelled" {
			t.Errorf("cancel #%d status = %q", i+1, got.Status)
		}
	}
}

func TestCreateBooking_FullSlotReturns400(t *testing.T) {
	ts := newTestServer(t)
	_, slot := ts.seedDoctorAndSlot(t, 1)
	p1 := ts.seedPatient(t, "1111111111111")
	p2 := ts.seedPatient(t, "2222222222222")

	rec := ts.do(t, http.MethodPost, "/bookings", CreateBookingRequest{PatientID: p1.ID.String(), SlotID: slot.ID.String()})
	if rec.Code != http.StatusCreated {
		t.Fatalf("first create: status %d", rec.Code)
	}

	rec = ts.do(t, http.MethodPost, "/bookings", CreateBookingRequest{PatientID: p2.ID.String(), SlotID: slot.ID.String()})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("full slot: status %d, want 400", rec.Code)
	}
	if e := decode[ErrorResponse](t, rec); e.Error != "slot_full" {
		t.Errorf("error code = %q, want slot_full", e.Error)
	}
}

func TestBookingEndpoints_BadInput(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"malformed json", http.MethodPost, "/bookings", "not json", http.StatusBadRequest},
		{"bad patient uuid", http.MethodPost, "/bookings", CreateBookingRequest{PatientID: "nope"}, http.StatusBadRequest},
		{"bad booking id", http.MethodGet, "/bookings/nope", nil, http.StatusBadRequest},
		{"unknown booking", http.MethodGet, "/bookings/" + uuid.NewString(), nil, http.StatusNotFound},
		{"cancel unknown", http.MethodDelete, "/bookings/" + uuid.NewString(), nil, http.StatusNotFound},
		{"checkin unknown", http.MethodPost, "/bookings/" + uuid.NewString() + "/checkin", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestUpdateBooking_RejectsUnknownStatus(t *testing.T) {
	ts := newTestServer(t)
	_, slot := ts.seedDoctorAndSlot(t, 1)
	p := ts.seedPatient(t, "1234567890123")

	rec := ts.do(t, http.MethodPost, "/bookings", CreateBookingRequest{PatientID: p.ID.String(), SlotID: slot.ID.String()})
	created := decode[BookingResponse](t, rec)

	status := "vanished"
	rec = ts.do(t, http.MethodPut, "/bookings/"+created.ID.String(), UpdateBookingRequest{Status: &status})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if e := decode[ErrorResponse](t, rec); e.Error != "invalid_status" {
		t.Errorf("error code = %q", e.Error)
	}
}

func TestUpdateBooking_MovesSlot(t *testing.T) {
	ts := newTestServer(t)
	doctorID, s1 := ts.seedDoctorAndSlot(t, 1)

	rec := ts.do(t, http.MethodPost, "/doctors/"+doctorID.String()+"/slots", CreateSlotRequest{
		Date:      "2026-09-02",
		StartTime: "10:00",
		EndTime:   "10:30",
		Capacity:  1,
	})
	s2 := decode[SlotResponse](t, rec)

	p := ts.seedPatient(t, "1234567890123")
	rec = ts.do(t, http.MethodPost, "/bookings", CreateBookingRequest{PatientID: p.ID.String(), SlotID: s1.ID.String()})
	created := decode[BookingResponse](t, rec)

	target := s2.ID.String()
	rec = ts.do(t, http.MethodPut, "/bookings/"+created.ID.String(), UpdateBookingRequest{SlotID: &target})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status %d body %s", rec.Code, rec.Body.String())
	}
	moved := decode[BookingResponse](t, rec)
	if moved.SlotID == nil || *moved.SlotID != s2.ID {
		t.Errorf("slot = %v, want %s", moved.SlotID, s2.ID)
	}
	if moved.Date != "2026-09-02" || moved.Time != "10:00" {
		t.Errorf("date/time = %s %s", moved.Date, moved.Time)
	}
}

func TestVerifyBookingByToken(t *testing.T) {
	ts := newTestServer(t)
	_, slot := ts.seedDoctorAndSlot(t, 1)
	p := ts.seedPatient(t, "1234567890123")

	rec := ts.do(t, http.MethodPost, "/bookings", CreateBookingRequest{PatientID: p.ID.String(), SlotID: slot.ID.String()})
	created := decode[BookingResponse](t, rec)

	rec = ts.do(t, http.MethodGet, "/bookings/verify/1234567890123", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: status %d body %s", rec.Code, rec.Body.String())
	}
	if got := decode[BookingResponse](t, rec); got.ID != created.ID {
		t.Errorf("verify returned %s, want %s", got.ID, created.ID)
	}

	rec = ts.do(t, http.MethodGet, "/bookings/verify/0000000000000", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("verify unknown: status %d, want 404", rec.Code)
	}
}

func TestSlotEndpoints(t *testing.T) {
	ts := newTestServer(t)
	doctorID, slot := ts.seedDoctorAndSlot(t, 2)

	if slot.Capacity != 2 || slot.Occupancy != 0 {
		t.Errorf("seeded slot = cap %d occ %d", slot.Capacity, slot.Occupancy)
	}

	// Capacity defaults to 1 when omitted.
	rec := ts.do(t, http.MethodPost, "/doctors/"+doctorID.String()+"/slots", CreateSlotRequest{
		Date:      "2026-09-03",
		StartTime: "09:00",
		EndTime:   "09:30",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create default capacity: status %d body %s", rec.Code, rec.Body.String())
	}
	if got := decode[SlotResponse](t, rec); got.Capacity != 1 {
		t.Errorf("default capacity = %d, want 1", got.Capacity)
	}

	// Duplicate (doctor, date, start) is rejected.
	rec = ts.do(t, http.MethodPost, "/doctors/"+doctorID.String()+"/slots", CreateSlotRequest{
		Date:      "2026-09-01",
		StartTime: "09:00",
		EndTime:   "09:30",
		Capacity:  1,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate slot: status %d, want 400", rec.Code)
	}

	// List with date filter.
	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/doctors/%s/slots?date=%s", doctorID, "2026-09-01"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	if got := decode[[]SlotResponse](t, rec); len(got) != 1 {
		t.Errorf("filtered list len = %d, want 1", len(got))
	}

	// Delete.
	rec = ts.do(t, http.MethodDelete, "/slots/"+slot.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status %d body %s", rec.Code, rec.Body.String())
	}
	rec = ts.do(t, http.MethodDelete, "/slots/"+slot.ID.String(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete again: status %d, want 404", rec.Code)
	}
}

func TestDeleteSlot_BlockedByLiveBooking(t *testing.T) {
	ts := newTestServer(t)
	_, slot := ts.seedDoctorAndSlot(t, 1)
	p := ts.seedPatient(t, "1234567890123")

	rec := ts.do(t, http.MethodPost, "/bookings", CreateBookingRequest{PatientID: p.ID.String(), SlotID: slot.ID.String()})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d", rec.Code)
	}

	rec = ts.do(t, http.MethodDelete, "/slots/"+slot.ID.String(), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("delete held slot: status %d, want 409", rec.Code)
	}
	if e := decode[ErrorResponse](t, rec); e.Error != "slot_in_use" {
		t.Errorf("error code = %q", e.Error)
	}
}
