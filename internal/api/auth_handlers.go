package api

import (
	"encoding/json"
	"net/http"

	"github.com/clinicqueue/booking-backend/internal/auth"
)

func registerHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		in := auth.RegisterInput{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
			Password:  req.Password,
		}
		if req.IDCard != "" {
			in.NationalID = &req.IDCard
		}
		if req.DOB != "" {
			in.BirthDate = &req.DOB
		}

		p, err := svc.RegisterPatient(r.Context(), in)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, UserResponse{
			ID:        p.ID,
			Name:      p.FullName(),
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Email:     p.Email,
			Phone:     p.Phone,
			Role:      "patient",
		})
	}
}

func loginHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		p, token, err := svc.LoginPatient(r.Context(), req.Identifier, req.Password)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, UserResponse{
			ID:        p.ID,
			Name:      p.FullName(),
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Email:     p.Email,
			Phone:     p.Phone,
			Role:      "patient",
			Token:     token,
		})
	}
}

func adminLoginHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminLoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		st, token, err := svc.LoginStaff(r.Context(), req.Username, req.Password)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, UserResponse{
			ID:        st.ID,
			Name:      st.FullName(),
			FirstName: st.FirstName,
			LastName:  st.LastName,
			Role:      st.Role,
			Token:     token,
		})
	}
}
