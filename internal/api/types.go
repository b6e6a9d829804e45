package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicqueue/booking-backend/internal/booking"
	"github.com/clinicqueue/booking-backend/internal/directory"
)

type CreateBookingRequest struct {
	PatientID      string `json:"patient_id"`
	SlotID         string `json:"slot_id,omitempty"`
	DoctorName     string `json:"doctorName,omitempty"`
	Date           string `json:"date,omitempty"`
	Time           string `json:"time,omitempty"`
	Symptoms       string `json:"symptoms,omitempty"`
	DepartmentName string `json:"departmentName,omitempty"`
	PatientName    string `json:"patientName,omitempty"`
}

type UpdateBookingRequest struct {
	SlotID         *string `json:"slot_id,omitempty"`
	Date           *string `json:"date,omitempty"`
	Time           *string `json:"time,omitempty"`
	DoctorName     *string `json:"doctorName,omitempty"`
	DepartmentName *string `json:"departmentName,omitempty"`
	Symptoms       *string `json:"symptoms,omitempty"`
	PatientName    *string `json:"patientName,omitempty"`
	Status         *string `json:"status,omitempty"`
}

type BookingResponse struct {
	ID             uuid.UUID  `json:"id"`
	PatientID      *uuid.UUID `json:"patient_id,omitempty"`
	SlotID         *uuid.UUID `json:"slot_id,omitempty"`
	Status         string     `json:"status"`
	Date           string     `json:"date"`
	Time           string     `json:"time"`
	DoctorName     string     `json:"doctor_name,omitempty"`
	DepartmentName string     `json:"department_name,omitempty"`
	PatientName    string     `json:"patient_name,omitempty"`
	Symptoms       string     `json:"symptoms,omitempty"`
	DisplayToken   string     `json:"qr_code"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:             b.ID,
		PatientID:      b.PatientID,
		SlotID:         b.SlotID,
		Status:         string(b.Status),
		Date:           b.Date(),
		Time:           b.Time(),
		DoctorName:     b.Detail.DoctorName,
		DepartmentName: b.Detail.DepartmentName,
		PatientName:    b.Detail.PatientName,
		Symptoms:       b.Detail.Symptoms,
		DisplayToken:   b.DisplayToken,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

type CreateSlotRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Capacity  int    `json:"capacity"`
}

type SlotResponse struct {
	ID           uuid.UUID  `json:"slot_id"`
	DoctorID     uuid.UUID  `json:"doctor_id"`
	DepartmentID *uuid.UUID `json:"department_id,omitempty"`
	Date         string     `json:"slot_date"`
	StartTime    string     `json:"start_time"`
	EndTime      string     `json:"end_time"`
	Capacity     int        `json:"max_capacity"`
	Occupancy    int        `json:"current_booking"`
	Status       string     `json:"status"`
}

func toSlotResponse(s *booking.Slot) SlotResponse {
	return SlotResponse{
		ID:           s.ID,
		DoctorID:     s.DoctorID,
		DepartmentID: s.DepartmentID,
		Date:         s.Date,
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		Capacity:     s.Capacity,
		Occupancy:    s.Occupancy,
		Status:       string(s.Status),
	}
}

type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	IDCard    string `json:"idCard,omitempty"`
	DOB       string `json:"dob,omitempty"`
	Password  string `json:"password"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	FirstName string    `json:"firstname"`
	LastName  string    `json:"lastname"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"tel,omitempty"`
	Role      string    `json:"role"`
	Token     string    `json:"token,omitempty"`
}

type DoctorRequest struct {
	FirstName    string  `json:"firstname"`
	LastName     string  `json:"lastname"`
	Name         string  `json:"name,omitempty"`
	EmployeeCode *string `json:"doctor_id,omitempty"`
	Department   string  `json:"department,omitempty"`
	Specialty    *string `json:"specialty,omitempty"`
	Status       string  `json:"status,omitempty"`
	Schedule     *string `json:"schedule,omitempty"`
	ImageURL     *string `json:"image,omitempty"`
}

type DoctorResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	FirstName    string     `json:"firstname"`
	LastName     string     `json:"lastname"`
	EmployeeCode *string    `json:"doctor_id,omitempty"`
	DepartmentID *uuid.UUID `json:"department_id,omitempty"`
	Specialty    *string    `json:"specialty,omitempty"`
	Status       string     `json:"status"`
	Schedule     *string    `json:"schedule,omitempty"`
	ImageURL     *string    `json:"image,omitempty"`
}

func toDoctorResponse(d *directory.Doctor) DoctorResponse {
	return DoctorResponse{
		ID:           d.ID,
		Name:         d.FullName(),
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		EmployeeCode: d.EmployeeCode,
		DepartmentID: d.DepartmentID,
		Specialty:    d.Specialty,
		Status:       d.Status,
		Schedule:     d.Schedule,
		ImageURL:     d.ImageURL,
	}
}

type DepartmentResponse struct {
	ID   uuid.UUID `json:"department_id"`
	Code string    `json:"code"`
	Name string    `json:"name"`
}

type StaffRequest struct {
	FirstName    string  `json:"firstname"`
	LastName     string  `json:"lastname"`
	FullName     string  `json:"fullName,omitempty"`
	EmployeeCode *string `json:"employee_id,omitempty"`
	Username     string  `json:"username"`
	Password     string  `json:"password,omitempty"`
	Contact      *string `json:"contact,omitempty"`
	Role         string  `json:"role,omitempty"`
}

type UpdateStaffRequest struct {
	FirstName    *string `json:"firstname,omitempty"`
	LastName     *string `json:"lastname,omitempty"`
	FullName     *string `json:"fullName,omitempty"`
	EmployeeCode *string `json:"employee_id,omitempty"`
	Username     *string `json:"username,omitempty"`
	Password     *string `json:"password,omitempty"`
	Contact      *string `json:"contact,omitempty"`
	Role         *string `json:"role,omitempty"`
}

type StaffResponse struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"full_name"`
	FirstName    string    `json:"firstname"`
	LastName     string    `json:"lastname"`
	EmployeeCode *string   `json:"employee_id,omitempty"`
	Username     string    `json:"username"`
	Contact      *string   `json:"contact,omitempty"`
	Role         string    `json:"role"`
}

func toStaffResponse(s *directory.Staff) StaffResponse {
	return StaffResponse{
		ID:           s.ID,
		FullName:     s.FullName(),
		FirstName:    s.FirstName,
		LastName:     s.LastName,
		EmployeeCode: s.EmployeeCode,
		Username:     s.Username,
		Contact:      s.Contact,
		Role:         s.Role,
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
