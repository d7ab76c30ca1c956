package domain

import (
	"fmt"
	"strings"
	"time"
)

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "SCHEDULED"
	AppointmentConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
)

func IsAppointmentStatus(v string) bool {
	switch AppointmentStatus(v) {
	case AppointmentScheduled, AppointmentConfirmed, AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}

const (
	MinAppointmentMinutes = 10
	MaxAppointmentMinutes = 120
)

// appointmentTransitions lists the legal status moves. COMPLETED and
// CANCELLED are terminal.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentScheduled: {AppointmentConfirmed, AppointmentCancelled},
	AppointmentConfirmed: {AppointmentCompleted, AppointmentCancelled},
}

// Appointment is a teleconsultation slot between a student and a clinician.
type Appointment struct {
	ID          string            `json:"id"`
	PatientID   string            `json:"patient_id"`
	ClinicianID string            `json:"clinician_id"`
	ScheduledAt time.Time         `json:"scheduled_at"`
	Minutes     int               `json:"minutes"`
	Reason      string            `json:"reason,omitempty"`
	Status      AppointmentStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func NewAppointment(id, patientID, clinicianID string, scheduledAt time.Time, minutes int, reason string, now time.Time) (*Appointment, error) {
	if strings.TrimSpace(patientID) == "" || strings.TrimSpace(clinicianID) == "" {
		return nil, WrapError(ErrInvalidInput, "new appointment", fmt.Errorf("patient and clinician ids are required"))
	}
	if !scheduledAt.After(now) {
		return nil, WrapError(ErrInvalidInput, "new appointment", fmt.Errorf("scheduled time must be in the future"))
	}
	if minutes < MinAppointmentMinutes || minutes > MaxAppointmentMinutes {
		return nil, WrapError(ErrInvalidInput, "new appointment", fmt.Errorf("duration must be within [%d, %d] minutes", MinAppointmentMinutes, MaxAppointmentMinutes))
	}
	return &Appointment{
		ID:          id,
		PatientID:   patientID,
		ClinicianID: clinicianID,
		ScheduledAt: scheduledAt,
		Minutes:     minutes,
		Reason:      strings.TrimSpace(reason),
		Status:      AppointmentScheduled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (a *Appointment) Transition(target AppointmentStatus, now time.Time) error {
	for _, allowed := range appointmentTransitions[a.Status] {
		if allowed == target {
			a.Status = target
			a.UpdatedAt = now
			return nil
		}
	}
	return WrapError(ErrInvalidTransition, "appointment status", fmt.Errorf("cannot move from %s to %s", a.Status, target))
}
