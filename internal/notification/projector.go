package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicqueue/booking-backend/internal/booking"
)

const (
	TypeSystem      = "system"
	TypeAppointment = "appointment"
	TypeReminder    = "reminder"
)

const (
	recentWindow    = 24 * time.Hour
	imminentWindow  = 30 * time.Minute
	rescheduleGap   = 60 * time.Second
	bookingAtLayout = "2006-01-02 15:04"
	dateLayout      = "2006-01-02"
)

// Event is one user-facing feed entry. The feed is recomputed in full
// on every request; nothing is stored or deduplicated.
type Event struct {
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	PatientName string    `json:"patient_name"`
	UserID      uuid.UUID `json:"user_id"`
	IsNew       bool      `json:"is_new"`
	Meta        string    `json:"meta"`
}

// LoginRecord is a patient's most recent login.
type LoginRecord struct {
	PatientID uuid.UUID
	FirstName string
	LastName  string
	LoggedIn  time.Time
}

// BookingRecord is the slice of a booking row the projector reads.
type BookingRecord struct {
	PatientID *uuid.UUID
	BookingAt string
	Status    booking.Status
	Detail    booking.Detail
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Repository interface {
	RecentLogins(ctx context.Context) ([]LoginRecord, error)
	ActiveBookings(ctx context.Context) ([]BookingRecord, error)
	CancelledBookings(ctx context.Context) ([]BookingRecord, error)
}

type Projector struct {
	repo Repository
	log  zerolog.Logger
	now  func() time.Time
}

func NewProjector(repo Repository, log zerolog.Logger) *Projector {
	return &Projector{repo: repo, log: log, now: time.Now}
}

// Project derives the full event feed from booking and login state.
func (p *Projector) Project(ctx context.Context) ([]Event, error) {
	now := p.now()

	var events []Event

	logins, err := p.repo.RecentLogins(ctx)
	if err != nil {
		return nil, fmt.Errorf("load recent logins: %w", err)
	}
	for _, l := range logins {
		if now.Sub(l.LoggedIn) >= recentWindow {
			continue
		}
		name := l.FirstName + " " + l.LastName
		events = append(events, Event{
			Type:        TypeSystem,
			Title:       "Signed in",
			Message:     fmt.Sprintf("Welcome back, %s", l.FirstName),
			Date:        l.LoggedIn.Format(dateLayout),
			Time:        l.LoggedIn.Format("15:04"),
			PatientName: name,
			UserID:      l.PatientID,
			IsNew:       true,
			Meta:        "system",
		})
	}

	active, err := p.repo.ActiveBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active bookings: %w", err)
	}
	for _, b := range active {
		events = append(events, p.bookingEvents(b, now)...)
	}

	cancelled, err := p.repo.CancelledBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cancelled bookings: %w", err)
	}
	for _, b := range cancelled {
		if now.Sub(b.UpdatedAt) >= recentWindow {
			continue
		}
		events = append(events, Event{
			Type:        TypeSystem,
			Title:       "Booking cancelled",
			Message:     fmt.Sprintf("Your %s appointment has been cancelled", deptOrDash(b.Detail)),
			Date:        bookingDate(b.BookingAt),
			PatientName: patientOrDash(b.Detail),
			UserID:      userID(b),
			IsNew:       true,
			Meta:        "cancelled",
		})
	}

	return events, nil
}

func (p *Projector) bookingEvents(b BookingRecord, now time.Time) []Event {
	var events []Event

	dept := deptOrDash(b.Detail)
	patient := patientOrDash(b.Detail)
	uid := userID(b)

	bookingDT, dateStr, timeStr := parseBookingAt(b.BookingAt, now)

	// Recent creation.
	if now.Sub(b.CreatedAt) < recentWindow {
		events = append(events, Event{
			Type:        TypeAppointment,
			Title:       "Booking confirmed",
			Message:     fmt.Sprintf("Your %s appointment is booked", dept),
			Date:        dateStr,
			Time:        timeStr,
			PatientName: patient,
			UserID:      uid,
			IsNew:       true,
			Meta:        "booked recently",
		})
	}

	// Recent reschedule, distinguished from creation by the gap
	// between the two timestamps.
	if b.Status != booking.StatusCheckedIn &&
		now.Sub(b.UpdatedAt) < recentWindow &&
		b.UpdatedAt.Sub(b.CreatedAt) > rescheduleGap {
		events = append(events, Event{
			Type:        TypeSystem,
			Title:       "Booking rescheduled",
			Message:     fmt.Sprintf("Your %s appointment moved to %s at %s", dept, dateStr, timeStr),
			Date:        dateStr,
			Time:        timeStr,
			PatientName: patient,
			UserID:      uid,
			IsNew:       true,
			Meta:        "recently updated",
		})
	}

	// Recent check-in.
	if b.Status == booking.StatusCheckedIn && now.Sub(b.UpdatedAt) < recentWindow {
		events = append(events, Event{
			Type:        TypeSystem,
			Title:       "Checked in",
			Message:     fmt.Sprintf("You have checked in for %s", dept),
			Date:        dateStr,
			Time:        timeStr,
			PatientName: patient,
			UserID:      uid,
			IsNew:       true,
			Meta:        "checked in",
		})
	}

	// Reminders only apply while the booking is still waiting.
	if b.Status != booking.StatusPending {
		return events
	}

	diff := bookingDT.Sub(now)
	days := daysUntil(now, bookingDT)

	switch {
	case absDuration(diff) < imminentWindow:
		events = append(events, Event{
			Type:        TypeReminder,
			Title:       "Appointment time",
			Message:     fmt.Sprintf("It is time for your %s appointment, please proceed to triage", dept),
			Date:        dateStr,
			Time:        timeStr,
			PatientName: patient,
			UserID:      uid,
			IsNew:       true,
			Meta:        "due now",
		})
	case days == 0 && diff > 0:
		events = append(events, Event{
			Type:        TypeReminder,
			Title:       "Appointment today",
			Message:     fmt.Sprintf("You have a %s appointment in %d hours", dept, int(diff.Hours())),
			Date:        dateStr,
			Time:        timeStr,
			PatientName: patient,
			UserID:      uid,
			IsNew:       false,
			Meta:        "reminder",
		})
	case days == 1:
		events = append(events, Event{
			Type:        TypeReminder,
			Title:       "Appointment tomorrow",
			Message:     fmt.Sprintf("You have a %s appointment tomorrow at %s", dept, timeStr),
			Date:        dateStr,
			Time:        timeStr,
			PatientName: patient,
			UserID:      uid,
			IsNew:       false,
			Meta:        "reminder",
		})
	}

	return events
}

// parseBookingAt tolerates the date-only form; unparseable values fall
// back to now so they never produce reminders.
func parseBookingAt(raw string, now time.Time) (time.Time, string, string) {
	if dt, err := time.ParseInLocation(bookingAtLayout, raw, now.Location()); err == nil {
		return dt, dt.Format(dateLayout), dt.Format("15:04")
	}
	if dt, err := time.ParseInLocation(dateLayout, raw, now.Location()); err == nil {
		return dt, dt.Format(dateLayout), ""
	}
	return now, raw, ""
}

func daysUntil(now, target time.Time) int {
	nowDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	targetDay := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, target.Location())
	return int(targetDay.Sub(nowDay).Hours() / 24)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func bookingDate(at string) string {
	_, date, _ := parseBookingAt(at, time.Now())
	return date
}

func deptOrDash(d booking.Detail) string {
	if d.DepartmentName == "" {
		return "-"
	}
	return d.DepartmentName
}

func patientOrDash(d booking.Detail) string {
	if d.PatientName == "" {
		return "-"
	}
	return d.PatientName
}

func userID(b BookingRecord) uuid.UUID {
	if b.PatientID != nil {
		return *b.PatientID
	}
	return uuid.Nil
}
