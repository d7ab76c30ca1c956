package httpadapter

import (
	"net/http"
	"strings"
	"time"

	"github.com/medcampus/portal/internal/core/domain"
	"github.com/medcampus/portal/internal/core/ports"
)

func (rt *Router) scheduleAppointment(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}

	var req struct {
		ClinicianID string `json:"clinician_id"`
		ScheduledAt string `json:"scheduled_at"`
		Minutes     int    `json:"minutes"`
		Reason      string `json:"reason"`
	}
	if !decodeValidated(w, r, appointmentSchema, &req) {
		return
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		writeFieldErrors(w, "request validation failed", []fieldError{
			{Field: "scheduled_at", Message: "must be an RFC3339 timestamp"},
		})
		return
	}

	appt, err := rt.appointments.Schedule(r.Context(), ports.AppointmentInput{
		PatientID:   p.UserID,
		ClinicianID: req.ClinicianID,
		ScheduledAt: scheduledAt.UTC(),
		Minutes:     req.Minutes,
		Reason:      req.Reason,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	rt.metrics.RecordAppointmentStatus(rt.service, string(appt.Status))
	writeData(w, http.StatusCreated, "appointment scheduled", appt)
}

func (rt *Router) listAppointments(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := domain.AppointmentFilter{
		UserID: p.UserID,
		Page:   parsePage(q),
	}
	if v := strings.TrimSpace(q.Get("status")); v != "" {
		if !domain.IsAppointmentStatus(v) {
			writeFieldErrors(w, "request validation failed", []fieldError{
				{Field: "status", Message: "unknown appointment status: " + v},
			})
			return
		}
		filter.Status = domain.AppointmentStatus(v)
	}
	if q.Get("upcoming") == "true" {
		now := time.Now().UTC()
		filter.From = &now
	}

	result, err := rt.appointments.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writePage(w, "appointments retrieved", result.Items, result.Pagination)
}

func (rt *Router) updateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if !decodeValidated(w, r, appointmentStatusSchema, &req) {
		return
	}

	appt, err := rt.appointments.UpdateStatus(r.Context(), r.PathValue("id"), p.UserID, req.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	rt.metrics.RecordAppointmentStatus(rt.service, string(appt.Status))
	writeData(w, http.StatusOK, "appointment status updated", appt)
}
