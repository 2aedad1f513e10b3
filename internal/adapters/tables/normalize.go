package tables

import "github.com/zatekoja/clinicassistant/internal/domain/entities"

// cellValue unwraps a {"value": ...} cell, returning any other value unchanged
func cellValue(v interface{}) interface{} {
	if cell, ok := v.(map[string]interface{}); ok {
		if value, ok := cell["value"]; ok {
			return value
		}
	}
	return v
}

// firstCell returns the unwrapped value of the first key present with a non-null value
func firstCell(row map[string]interface{}, keys ...string) interface{} {
	for _, key := range keys {
		if v, ok := row[key]; ok && v != nil {
			return cellValue(v)
		}
	}
	return nil
}

// flattenRow maps a raw table row to the dashboard shape
func flattenRow(row map[string]interface{}) entities.Appointment {
	return entities.Appointment{
		ID:                  firstCell(row, "ID"),
		PatientName:         firstCell(row, "patient_name"),
		PhoneNumber:         firstCell(row, "phone_number"),
		PreferredDate:       firstCell(row, "preferred_date"),
		PreferredTime:       firstCell(row, "preferred_time"),
		PreferedTime:        firstCell(row, "prefered_time"),
		Reason:              firstCell(row, "reason"),
		CurrentState:        firstCell(row, "current_state", "appointment_status"),
		DoctorNotes:         firstCell(row, "doctor_notes"),
		ConfirmationMessage: firstCell(row, "confirmation_message", "confirmation_message_en"),
		CreatedAt:           firstCell(row, "updated_at", "Updated at", "created_at"),
	}
}
