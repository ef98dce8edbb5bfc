package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/staffdesk/apiserver/types"
)

// RequestRepository defines persistence operations for account requests.
type RequestRepository interface {
	List(ctx context.Context) ([]types.AccountRequest, error)
	Get(ctx context.Context, id int) (types.AccountRequest, error)
	Create(ctx context.Context, request types.AccountRequest) (types.AccountRequest, error)
	Update(ctx context.Context, request types.AccountRequest) (types.AccountRequest, error)
}

// PayslipRequestRepository defines persistence operations for payslip
// petitions.
type PayslipRequestRepository interface {
	List(ctx context.Context) ([]types.PayslipRequest, error)
	Get(ctx context.Context, id int) (types.PayslipRequest, error)
	Create(ctx context.Context, request types.PayslipRequest) (types.PayslipRequest, error)
	Update(ctx context.Context, request types.PayslipRequest) (types.PayslipRequest, error)
}

const intakeChannel = "account-requests"

// IntakeService handles the account-request queue. Uniqueness of email
// and rut is enforced by the store; a duplicate surfaces as
// store.ErrDuplicate.
type IntakeService struct {
	repo            RequestRepository
	payslipRequests PayslipRequestRepository
	events          EventPublisher
}

// NewIntakeService constructs the intake service. events may be nil.
func NewIntakeService(repo RequestRepository, payslipRequests PayslipRequestRepository, events EventPublisher) *IntakeService {
	return &IntakeService{repo: repo, payslipRequests: payslipRequests, events: events}
}

// Create queues a new account request and announces it on the bus.
func (s *IntakeService) Create(ctx context.Context, request types.AccountRequest) (types.AccountRequest, error) {
	created, err := s.repo.Create(ctx, request)
	if err != nil {
		return types.AccountRequest{}, err
	}

	if s.events != nil {
		if data, err := json.Marshal(created); err == nil {
			if _, err := s.events.Publish(ctx, intakeChannel, data, map[string]string{"rut": created.Rut}); err != nil {
				log.Printf("intake: publish request event: %v", err)
			}
		}
	}
	return created, nil
}

func (s *IntakeService) List(ctx context.Context) ([]types.AccountRequest, error) {
	return s.repo.List(ctx)
}

// Update applies operator flags (ignored / completed) to a request.
func (s *IntakeService) Update(ctx context.Context, id int, changes types.AccountRequest) (types.AccountRequest, error) {
	request, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.AccountRequest{}, err
	}
	if changes.Email != "" {
		request.Email = changes.Email
	}
	if changes.Rut != "" {
		request.Rut = changes.Rut
	}
	request.Ignored = changes.Ignored
	request.Completed = changes.Completed
	return s.repo.Update(ctx, request)
}

// CreateOrUpdatePayslipRequest records a payslip petition. A zero ID
// creates a new petition; a set ID merges the changes onto the stored
// row.
func (s *IntakeService) CreateOrUpdatePayslipRequest(ctx context.Context, changes types.PayslipRequest) (types.PayslipRequest, error) {
	if changes.ID == 0 {
		if changes.UserID == 0 {
			return types.PayslipRequest{}, errors.New("user id is required")
		}
		return s.payslipRequests.Create(ctx, changes)
	}

	request, err := s.payslipRequests.Get(ctx, changes.ID)
	if err != nil {
		return types.PayslipRequest{}, err
	}
	if changes.UserID != 0 {
		request.UserID = changes.UserID
	}
	if changes.Message != "" {
		request.Message = changes.Message
	}
	request.Completed = changes.Completed
	return s.payslipRequests.Update(ctx, request)
}

// ListPayslipRequests returns every payslip petition.
func (s *IntakeService) ListPayslipRequests(ctx context.Context) ([]types.PayslipRequest, error) {
	return s.payslipRequests.List(ctx)
}
