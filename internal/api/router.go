package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clinicqueue/booking-backend/internal/auth"
	"github.com/clinicqueue/booking-backend/internal/booking"
	"github.com/clinicqueue/booking-backend/internal/directory"
	"github.com/clinicqueue/booking-backend/internal/notification"
)

type RouterConfig struct {
	Bookings      *booking.Service
	Slots         *booking.SlotManager
	Directory     *directory.Service
	Auth          *auth.Service
	Notifications *notification.Projector
	PgPool        *pgxpool.Pool
	Redis         *redis.Client
	Logger        zerolog.Logger
	Env           string
	Version       string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Booking endpoints
	r.Post("/bookings", createBookingHandler(cfg.Bookings))
	r.Get("/bookings", listBookingsHandler(cfg.Bookings))
	r.Get("/bookings/{id}", getBookingHandler(cfg.Bookings))
	r.Put("/bookings/{id}", updateBookingHandler(cfg.Bookings))
	r.Delete("/bookings/{id}", cancelBookingHandler(cfg.Bookings))
	r.Post("/bookings/{id}/checkin", checkInBookingHandler(cfg.Bookings))
	r.Get("/bookings/verify/{token}", verifyBookingHandler(cfg.Bookings))

	// Slot endpoints
	r.Post("/doctors/{id}/slots", createSlotHandler(cfg.Slots))
	r.Get("/doctors/{id}/slots", listDoctorSlotsHandler(cfg.Slots))
	r.Delete("/slots/{id}", deleteSlotHandler(cfg.Slots))

	// Directory endpoints
	r.Get("/doctors", listDoctorsHandler(cfg.Directory))
	r.Get("/departments", listDepartmentsHandler(cfg.Directory))

	// Notifications
	r.Get("/notifications", listNotificationsHandler(cfg.Notifications))

	// Auth
	r.Post("/register", registerHandler(cfg.Auth))
	r.Post("/login", loginHandler(cfg.Auth))

	// Admin
	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", adminLoginHandler(cfg.Auth))
		r.Get("/staff", listStaffHandler(cfg.Directory))
		r.Post("/staff", createStaffHandler(cfg.Directory))
		r.Put("/staff/{id}", updateStaffHandler(cfg.Directory))
		r.Delete("/staff/{id}", deleteStaffHandler(cfg.Directory))
		r.Post("/doctors", createDoctorHandler(cfg.Directory))
		r.Put("/doctors/{id}", updateDoctorHandler(cfg.Directory))
		r.Delete("/doctors/{id}", deleteDoctorHandler(cfg.Directory))
	})

	return r
}
