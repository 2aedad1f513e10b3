package entities

import (
	"strings"
)

// AppointmentStatus is the value stored in the current_state column
type AppointmentStatus string

const (
	AppointmentStatusBooked     AppointmentStatus = "Booked"
	AppointmentStatusInProgress AppointmentStatus = "In Progress"
	AppointmentStatusCompleted  AppointmentStatus = "Completed"
	AppointmentStatusCancelled  AppointmentStatus = "Cancelled"
)

// AppointmentStatuses lists the accepted statuses in display order
var AppointmentStatuses = []AppointmentStatus{
	AppointmentStatusBooked,
	AppointmentStatusInProgress,
	AppointmentStatusCompleted,
	AppointmentStatusCancelled,
}

// IsValid reports whether s is one of the accepted statuses
func (s AppointmentStatus) IsValid() bool {
	for _, status := range AppointmentStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// AppointmentStatusList joins the accepted statuses for error messages
func AppointmentStatusList() string {
	names := make([]string, len(AppointmentStatuses))
	for i, status := range AppointmentStatuses {
		names[i] = string(status)
	}
	return strings.Join(names, ", ")
}

// Language selects which generated confirmation is returned to the patient
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageMalay   Language = "ms"
)

// AppointmentRequest is a booking submitted from the appointment form
type AppointmentRequest struct {
	PatientName   string   `json:"patientName"`
	PhoneNumber   string   `json:"phoneNumber"`
	PreferredDate string   `json:"preferredDate"`
	PreferredTime string   `json:"preferredTime"`
	Reason        string   `json:"reason,omitempty"`
	Language      Language `json:"language"`
}

// HasRequiredFields reports whether every booking field except language is present
func (r *AppointmentRequest) HasRequiredFields() bool {
	return r.PatientName != "" &&
		r.PhoneNumber != "" &&
		r.PreferredDate != "" &&
		r.PreferredTime != "" &&
		r.Reason != ""
}

// AppointmentConfirmation holds the generated confirmation texts for a booking
type AppointmentConfirmation struct {
	RowID          string `json:"-"`
	Confirmation   string `json:"confirmation"`
	ConfirmationEn string `json:"confirmationEn"`
	ConfirmationMs string `json:"confirmationMs"`
}

// Select returns the confirmation in the requested language, English by default
func (c *AppointmentConfirmation) Select(lang Language) string {
	if lang == LanguageMalay {
		return c.ConfirmationMs
	}
	return c.ConfirmationEn
}

// Appointment is a flattened appointment row as shown on the admin dashboard.
// Cells are kept as raw JSON values because the table store does not type them
// consistently.
type Appointment struct {
	ID                  interface{} `json:"ID,omitempty"`
	PatientName         interface{} `json:"patient_name,omitempty"`
	PhoneNumber         interface{} `json:"phone_number,omitempty"`
	PreferredDate       interface{} `json:"preferred_date,omitempty"`
	PreferredTime       interface{} `json:"preferred_time,omitempty"`
	PreferedTime        interface{} `json:"prefered_time,omitempty"`
	Reason              interface{} `json:"reason,omitempty"`
	CurrentState        interface{} `json:"current_state,omitempty"`
	DoctorNotes         interface{} `json:"doctor_notes,omitempty"`
	ConfirmationMessage interface{} `json:"confirmation_message,omitempty"`
	CreatedAt           interface{} `json:"created_at,omitempty"`
}

// AppointmentUpdate is an admin change to one appointment row. A nil field is left
// untouched.
type AppointmentUpdate struct {
	RowID       string
	Status      *AppointmentStatus
	DoctorNotes *string
}

// Columns returns the row cells to write
func (u *AppointmentUpdate) Columns() map[string]interface{} {
	data := make(map[string]interface{})
	if u.Status != nil {
		data["current_state"] = string(*u.Status)
	}
	if u.DoctorNotes != nil {
		data["doctor_notes"] = *u.DoctorNotes
	}
	return data
}
