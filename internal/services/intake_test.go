package services

import (
	"context"
	"errors"
	"testing"

	"github.com/staffdesk/apiserver/internal/store"
	"github.com/staffdesk/apiserver/types"
)

func TestIntakeCreate(t *testing.T) {
	events := &fakePublisher{}
	svc := NewIntakeService(newFakeRequestRepo(), newFakePayslipRequestRepo(), events)

	created, err := svc.Create(context.Background(), types.AccountRequest{
		Email: "nuevo@example.com",
		Rut:   "19876543-2",
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected request ID to be set")
	}
	if events.published(intakeChannel) != 1 {
		t.Fatalf("expected 1 intake event, got %d", events.published(intakeChannel))
	}
}

func TestIntakeCreate_Duplicate(t *testing.T) {
	events := &fakePublisher{}
	svc := NewIntakeService(newFakeRequestRepo(), newFakePayslipRequestRepo(), events)

	request := types.AccountRequest{Email: "nuevo@example.com", Rut: "19876543-2"}
	if _, err := svc.Create(context.Background(), request); err != nil {
		t.Fatalf("create request: %v", err)
	}
	if _, err := svc.Create(context.Background(), request); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if events.published(intakeChannel) != 1 {
		t.Fatal("duplicate must not publish a second event")
	}
}

func TestIntakeUpdate(t *testing.T) {
	svc := NewIntakeService(newFakeRequestRepo(), newFakePayslipRequestRepo(), nil)

	created, err := svc.Create(context.Background(), types.AccountRequest{
		Email: "nuevo@example.com",
		Rut:   "19876543-2",
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	updated, err := svc.Update(context.Background(), created.ID, types.AccountRequest{Completed: true})
	if err != nil {
		t.Fatalf("update request: %v", err)
	}
	if !updated.Completed || updated.Ignored {
		t.Fatalf("unexpected flags: %+v", updated)
	}
	if updated.Email != "nuevo@example.com" {
		t.Fatal("untouched fields must survive the update")
	}

	if _, err := svc.Update(context.Background(), 99, types.AccountRequest{}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPayslipRequest_CreateOrUpdate(t *testing.T) {
	svc := NewIntakeService(newFakeRequestRepo(), newFakePayslipRequestRepo(), nil)

	created, err := svc.CreateOrUpdatePayslipRequest(context.Background(), types.PayslipRequest{
		UserID:  7,
		Message: "faltan enero y febrero",
	})
	if err != nil {
		t.Fatalf("create payslip request: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected request ID to be set")
	}

	// A payload carrying the ID updates the stored row instead of
	// inserting a second one.
	updated, err := svc.CreateOrUpdatePayslipRequest(context.Background(), types.PayslipRequest{
		ID:        created.ID,
		Completed: true,
	})
	if err != nil {
		t.Fatalf("update payslip request: %v", err)
	}
	if updated.ID != created.ID || !updated.Completed {
		t.Fatalf("unexpected request: %+v", updated)
	}
	if updated.Message != "faltan enero y febrero" {
		t.Fatal("untouched fields must survive the update")
	}

	requests, err := svc.ListPayslipRequests(context.Background())
	if err != nil {
		t.Fatalf("list payslip requests: %v", err)
	}
	if len(requests) != 1 {
		t.Fatalf("expected a single request, got %d", len(requests))
	}
}

func TestPayslipRequest_Validation(t *testing.T) {
	svc := NewIntakeService(newFakeRequestRepo(), newFakePayslipRequestRepo(), nil)

	if _, err := svc.CreateOrUpdatePayslipRequest(context.Background(), types.PayslipRequest{Message: "sin usuario"}); err == nil {
		t.Fatal("expected error for a new request without user id")
	}
	if _, err := svc.CreateOrUpdatePayslipRequest(context.Background(), types.PayslipRequest{ID: 99}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}
