package api

import (
	"net/http"

	"github.com/clinicqueue/booking-backend/internal/notification"
)

func listNotificationsHandler(p *notification.Projector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := p.Project(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if events == nil {
			events = []notification.Event{}
		}
		writeJSON(w, http.StatusOK, events)
	}
}
