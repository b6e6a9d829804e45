package api

import (
	"encoding/json"
	"net/http"

	"github.com/clinicqueue/booking-backend/internal/directory"
)

func listDoctorsHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		department := r.URL.Query().Get("department")
		specialty := r.URL.Query().Get("specialist")

		doctors, err := svc.ListDoctors(r.Context(), department, specialty)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := make([]DoctorResponse, 0, len(doctors))
		for i := range doctors {
			resp = append(resp, toDoctorResponse(&doctors[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func listDepartmentsHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		departments, err := svc.ListDepartments(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := make([]DepartmentResponse, 0, len(departments))
		for _, d := range departments {
			resp = append(resp, DepartmentResponse{ID: d.ID, Code: d.Code, Name: d.Name})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func createDoctorHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DoctorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		d, err := svc.CreateDoctor(r.Context(), directory.CreateDoctorInput{
			FirstName:      req.FirstName,
			LastName:       req.LastName,
			FullName:       req.Name,
			EmployeeCode:   req.EmployeeCode,
			DepartmentCode: req.Department,
			Specialty:      req.Specialty,
			Status:         req.Status,
			Schedule:       req.Schedule,
			ImageURL:       req.ImageURL,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toDoctorResponse(d))
	}
}

func updateDoctorHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r)
		if !ok {
			return
		}

		var req struct {
			FirstName    *string `json:"firstname,omitempty"`
			LastName     *string `json:"lastname,omitempty"`
			Name         *string `json:"name,omitempty"`
			EmployeeCode *string `json:"doctor_id,omitempty"`
			Specialty    *string `json:"specialty,omitempty"`
			Status       *string `json:"status,omitempty"`
			Schedule     *string `json:"schedule,omitempty"`
			ImageURL     *string `json:"image,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		u := directory.DoctorUpdate{
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			EmployeeCode: req.EmployeeCode,
			Specialty:    req.Specialty,
			Status:       req.Status,
			Schedule:     req.Schedule,
			ImageURL:     req.ImageURL,
		}
		if req.Name != nil {
			first, last := directory.SplitName(*req.Name)
			u.FirstName = &first
			u.LastName = &last
		}

		d, err := svc.UpdateDoctor(r.Context(), id, u)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toDoctorResponse(d))
	}
}

func deleteDoctorHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r)
		if !ok {
			return
		}

		if err := svc.DeleteDoctor(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, StatusResponse{Status: "deleted"})
	}
}

func listStaffHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staff, err := svc.ListStaff(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := make([]StaffResponse, 0, len(staff))
		for i := range staff {
			resp = append(resp, toStaffResponse(&staff[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func createStaffHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StaffRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		s, err := svc.CreateStaff(r.Context(), directory.CreateStaffInput{
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			FullName:     req.FullName,
			EmployeeCode: req.EmployeeCode,
			Username:     req.Username,
			Password:     req.Password,
			Contact:      req.Contact,
			Role:         req.Role,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toStaffResponse(s))
	}
}

func updateStaffHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r)
		if !ok {
			return
		}

		var req UpdateStaffRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		s, err := svc.UpdateStaff(r.Context(), id, directory.UpdateStaffInput{
			StaffUpdate: directory.StaffUpdate{
				FirstName:    req.FirstName,
				LastName:     req.LastName,
				EmployeeCode: req.EmployeeCode,
				Username:     req.Username,
				Contact:      req.Contact,
				Role:         req.Role,
			},
			FullName: req.FullName,
			Password: req.Password,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toStaffResponse(s))
	}
}

func deleteStaffHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r)
		if !ok {
			return
		}

		if err := svc.DeleteStaff(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, StatusResponse{Status: "deleted"})
	}
}
