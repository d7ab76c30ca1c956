package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medcampus/portal/internal/core/domain"
	"github.com/medcampus/portal/internal/core/ports"
)

// ScheduleAppointmentUseCase creates teleconsultation appointments and
// applies status transitions through the entity.
type ScheduleAppointmentUseCase struct {
	repo ports.AppointmentRepository
}

func NewScheduleAppointmentUseCase(repo ports.AppointmentRepository) *ScheduleAppointmentUseCase {
	return &ScheduleAppointmentUseCase{repo: repo}
}

func (uc *ScheduleAppointmentUseCase) Schedule(ctx context.Context, input ports.AppointmentInput) (*domain.Appointment, error) {
	now := time.Now().UTC()
	appt, err := domain.NewAppointment(
		uuid.NewString(),
		input.PatientID,
		input.ClinicianID,
		input.ScheduledAt,
		input.Minutes,
		input.Reason,
		now,
	)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, appt); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return appt, nil
}

func (uc *ScheduleAppointmentUseCase) UpdateStatus(ctx context.Context, id, actorID, status string) (*domain.Appointment, error) {
	if !domain.IsAppointmentStatus(status) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "appointment status", fmt.Errorf("unknown status: %s", status))
	}
	appt, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if appt.PatientID != actorID && appt.ClinicianID != actorID {
		return nil, domain.WrapError(domain.ErrForbidden, "appointment status", fmt.Errorf("appointment %s does not involve %s", id, actorID))
	}
	if err := appt.Transition(domain.AppointmentStatus(status), time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, appt); err != nil {
		return nil, fmt.Errorf("persist appointment: %w", err)
	}
	return appt, nil
}

func (uc *ScheduleAppointmentUseCase) List(ctx context.Context, filter domain.AppointmentFilter) (*ports.AppointmentSearchResult, error) {
	filter.Page = filter.Page.Normalize()
	items, total, err := uc.repo.FindByFilters(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return &ports.AppointmentSearchResult{
		Items:      items,
		Pagination: domain.NewPagination(filter.Page, total),
		Filters:    filter,
	}, nil
}
