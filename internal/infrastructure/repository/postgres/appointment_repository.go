package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/medcampus/portal/internal/core/domain"
)

type AppointmentRepository struct {
	db *sql.DB
}

func NewAppointmentRepository(db *sql.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

const appointmentColumns = `id, patient_id, clinician_id, scheduled_at, minutes, reason, status,
created_at, updated_at`

func (r *AppointmentRepository) Create(ctx context.Context, appt *domain.Appointment) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO appointments (`+appointmentColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, appointmentArgs(appt)...)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+appointmentColumns+`
FROM appointments
WHERE id = $1
`, id)

	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get appointment", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan appointment: %w", err)
	}
	return appt, nil
}

func (r *AppointmentRepository) FindByFilters(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error) {
	conditions := []string{"1=1"}
	args := []any{}

	addCondition := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.UserID != "" {
		// The same listing serves patients and clinicians.
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("(patient_id = $%d OR clinician_id = $%d)", len(args), len(args)))
	}
	if filter.Status != "" {
		addCondition("status = $%d", string(filter.Status))
	}
	if filter.From != nil {
		addCondition("scheduled_at >= $%d", *filter.From)
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM appointments WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	orderBy := sortColumn(map[string]string{
		"scheduled_at": "scheduled_at",
		"created_at":   "created_at",
		"status":       "status",
	}, filter.Page.SortBy, "scheduled_at")

	query := fmt.Sprintf(`
SELECT %s
FROM appointments
WHERE %s
ORDER BY %s %s
LIMIT $%d OFFSET $%d
`, appointmentColumns, where, orderBy, sortDirection(filter.Page.SortOrder), len(args)+1, len(args)+2)
	args = append(args, filter.Page.Limit, filter.Page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query appointments: %w", err)
	}
	defer rows.Close()

	var appts []domain.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan appointment row: %w", err)
		}
		appts = append(appts, *appt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate appointments: %w", err)
	}
	return appts, total, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, appt *domain.Appointment) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE appointments
SET patient_id = $2, clinician_id = $3, scheduled_at = $4, minutes = $5, reason = $6,
	status = $7, created_at = $8, updated_at = $9
WHERE id = $1
`, appointmentArgs(appt)...)
	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update appointment rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "update appointment", fmt.Errorf("id %s", appt.ID))
	}
	return nil
}

func appointmentArgs(appt *domain.Appointment) []any {
	return []any{
		appt.ID, appt.PatientID, appt.ClinicianID, appt.ScheduledAt, appt.Minutes,
		appt.Reason, string(appt.Status), appt.CreatedAt, appt.UpdatedAt,
	}
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var (
		appt   domain.Appointment
		status string
	)

	err := row.Scan(
		&appt.ID, &appt.PatientID, &appt.ClinicianID, &appt.ScheduledAt, &appt.Minutes,
		&appt.Reason, &status, &appt.CreatedAt, &appt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	appt.Status = domain.AppointmentStatus(status)
	return &appt, nil
}
