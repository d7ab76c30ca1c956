package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/medcampus/portal/internal/core/domain"
	"github.com/medcampus/portal/internal/core/ports"
)

func validAppointment() ports.AppointmentInput {
	return ports.AppointmentInput{
		PatientID:   "student-1",
		ClinicianID: "clinician-1",
		ScheduledAt: time.Now().UTC().Add(48 * time.Hour),
		Minutes:     30,
		Reason:      "follow-up on clinical rotation",
	}
}

func TestScheduleValidatesInput(t *testing.T) {
	uc := NewScheduleAppointmentUseCase(newApptRepoFake())
	ctx := context.Background()

	appt, err := uc.Schedule(ctx, validAppointment())
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if appt.Status != domain.AppointmentScheduled {
		t.Fatalf("status = %s, want %s", appt.Status, domain.AppointmentScheduled)
	}

	past := validAppointment()
	past.ScheduledAt = time.Now().UTC().Add(-time.Hour)
	if _, err := uc.Schedule(ctx, past); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("past slot: err = %v", err)
	}

	short := validAppointment()
	short.Minutes = 5
	if _, err := uc.Schedule(ctx, short); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("5 minute slot: err = %v", err)
	}
}

func TestUpdateStatusFollowsTransitions(t *testing.T) {
	repo := newApptRepoFake()
	uc := NewScheduleAppointmentUseCase(repo)
	ctx := context.Background()

	appt, err := uc.Schedule(ctx, validAppointment())
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	// SCHEDULED cannot jump straight to COMPLETED.
	if _, err := uc.UpdateStatus(ctx, appt.ID, "clinician-1", "COMPLETED"); !domain.IsKind(err, domain.ErrInvalidTransition) {
		t.Fatalf("skip confirm: err = %v", err)
	}

	confirmed, err := uc.UpdateStatus(ctx, appt.ID, "clinician-1", "CONFIRMED")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != domain.AppointmentConfirmed {
		t.Fatalf("status = %s", confirmed.Status)
	}

	done, err := uc.UpdateStatus(ctx, appt.ID, "student-1", "COMPLETED")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != domain.AppointmentCompleted {
		t.Fatalf("status = %s", done.Status)
	}

	// Terminal.
	if _, err := uc.UpdateStatus(ctx, appt.ID, "student-1", "CANCELLED"); !domain.IsKind(err, domain.ErrInvalidTransition) {
		t.Fatalf("cancel completed: err = %v", err)
	}
}

func TestUpdateStatusGuards(t *testing.T) {
	repo := newApptRepoFake()
	uc := NewScheduleAppointmentUseCase(repo)
	ctx := context.Background()

	appt, err := uc.Schedule(ctx, validAppointment())
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	if _, err := uc.UpdateStatus(ctx, appt.ID, "stranger", "CONFIRMED"); !domain.IsKind(err, domain.ErrForbidden) {
		t.Fatalf("stranger: err = %v", err)
	}
	if _, err := uc.UpdateStatus(ctx, appt.ID, "student-1", "POSTPONED"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("unknown status: err = %v", err)
	}
	if _, err := uc.UpdateStatus(ctx, "missing", "student-1", "CONFIRMED"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("missing id: err = %v", err)
	}
}

func TestLibraryAddAndSearch(t *testing.T) {
	repo := newResourceRepoFake()
	uc := NewLibraryUseCase(repo)
	ctx := context.Background()

	res, err := uc.Add(ctx, ports.ResourceInput{
		Title:  "Gray's Anatomy",
		Author: "Henry Gray",
		Format: "book",
		URL:    "https://library.example/grays",
		Tags:   []string{"anatomy"},
		Year:   2020,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if res.ID == "" {
		t.Fatal("no id assigned")
	}

	if _, err := uc.Add(ctx, ports.ResourceInput{Title: "Untyped", Format: "scroll", URL: "https://x"}); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("bad format: err = %v", err)
	}

	repo.findItems = []domain.Resource{*res}
	repo.findTotal = 1
	result, err := uc.Search(ctx, domain.ResourceFilter{Query: "anatomy", Page: domain.Page{Limit: 300}})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if repo.lastFilter.Page.Limit != domain.DefaultPageLimit {
		t.Fatalf("limit = %d, want %d", repo.lastFilter.Page.Limit, domain.DefaultPageLimit)
	}
	if len(result.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(result.Items))
	}
}
