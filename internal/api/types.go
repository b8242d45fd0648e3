package api

import (
	"github.com/hackgods/practice-scheduling/internal/appointment"
	"github.com/hackgods/practice-scheduling/internal/slots"
)

type ContactRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"max=50"`
}

type CreateAppointmentRequest struct {
	Date          string         `json:"date" validate:"required,civildate"`
	Time          string         `json:"time" validate:"required,clocktime"`
	SpecialistID  string         `json:"specialist_id" validate:"required"`
	Location      string         `json:"location" validate:"required,venue"`
	ServiceTypeID string         `json:"service_type_id" validate:"required"`
	Patient       ContactRequest `json:"patient"`
	Notes         string         `json:"notes" validate:"max=2000"`
}

type PatientRequest struct {
	FirstName           string `json:"first_name" validate:"required,max=100"`
	LastName            string `json:"last_name" validate:"required,max=100"`
	Email               string `json:"email" validate:"required,email"`
	Phone               string `json:"phone" validate:"max=50"`
	DateOfBirth         string `json:"date_of_birth" validate:"omitempty,civildate"`
	Notes               string `json:"notes" validate:"max=2000"`
	LeadingSpecialistID string `json:"leading_specialist_id"`
}

type AdminAppointmentRequest struct {
	PatientID     string          `json:"patient_id" validate:"omitempty,uuid"`
	NewPatient    *PatientRequest `json:"new_patient"`
	Date          string          `json:"date" validate:"required,civildate"`
	Time          string          `json:"time" validate:"required,clocktime"`
	SpecialistID  string          `json:"specialist_id" validate:"required"`
	Location      string          `json:"location" validate:"required,venue"`
	ServiceTypeID string          `json:"service_type_id" validate:"required"`
	Notes         string          `json:"notes" validate:"max=2000"`
}

type PaymentRequest struct {
	Method string `json:"method" validate:"required,max=50"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending pending_payment confirmed rejected completed no_show"`
}

type SlotRequest struct {
	Date         string `json:"date" validate:"required,civildate"`
	Time         string `json:"time" validate:"required,clocktime"`
	SpecialistID string `json:"specialist_id" validate:"required"`
	Location     string `json:"location" validate:"required,venue"`
}

type SpecialistRequest struct {
	Services        []string `json:"services" validate:"dive,required"`
	WorkDays        []int    `json:"work_days" validate:"dive,min=0,max=6"`
	WorkHours       []string `json:"work_hours" validate:"dive,clocktime"`
	OnlineAvailable bool     `json:"online_available"`
}

type CreateSpecialistRequest struct {
	ID        string `json:"id" validate:"required,max=50,lowercase,alphanum"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Title     string `json:"title" validate:"max=200"`
	SpecialistRequest
}

type NoteRequest struct {
	Date    string `json:"date" validate:"omitempty,civildate"`
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required,max=10000"`
	Type    string `json:"type" validate:"required,oneof=session note diagnosis treatment_plan"`
}

type RecommendationRequest struct {
	Date     string `json:"date" validate:"omitempty,civildate"`
	Title    string `json:"title" validate:"required,max=200"`
	Content  string `json:"content" validate:"required,max=10000"`
	Category string `json:"category" validate:"required,oneof=lifestyle exercise medication therapy general"`
	Priority string `json:"priority" validate:"required,oneof=low medium high"`
}

type ReviewRequest struct {
	PatientName string `json:"patient_name" validate:"required,max=200"`
	Rating      int    `json:"rating" validate:"min=1,max=5"`
	Text        string `json:"text" validate:"required,max=2000"`
}

type SpecialistResponse struct {
	ID              string   `json:"id"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Title           string   `json:"title"`
	Services        []string `json:"services"`
	WorkDays        []int    `json:"work_days"`
	WorkHours       []string `json:"work_hours"`
	OnlineAvailable bool     `json:"online_available"`
}

type LocationResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Days    []int  `json:"days"`
}

type ServiceTypeResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	PricePLN        int    `json:"price_pln"`
	MultiSession    bool   `json:"multi_session"`
	MinSessions     int    `json:"min_sessions,omitempty"`
}

type DaySlots struct {
	Date  string           `json:"date"`
	Slots []slots.TimeSlot `json:"slots"`
}

type SlotsResponse struct {
	Days []DaySlots `json:"days"`
}

type AppointmentsResponse struct {
	Appointments []appointment.Appointment `json:"appointments"`
}

type ReconcileResponse struct {
	Corrections []appointment.Correction `json:"corrections"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}
