package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/staffdesk/apiserver/types"
)

// TeamRepository defines persistence operations for teams.
type TeamRepository interface {
	List(ctx context.Context) ([]types.Team, error)
	Get(ctx context.Context, id int) (types.Team, error)
	GetBySupervisor(ctx context.Context, supervisorID int) (types.Team, error)
	Create(ctx context.Context, team types.Team) (types.Team, error)
}

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

const rosterChannel = "roster-events"

// rosterEvent is the wire payload published on roster mutations.
type rosterEvent struct {
	Action  string `json:"action"`
	GuardID int    `json:"guardId"`
	TeamID  int    `json:"teamId,omitempty"`
}

// RosterService enforces the team-membership invariants: a guard belongs
// to at most one team, and moving between teams is an explicit remove
// followed by an assign.
type RosterService struct {
	teams  TeamRepository
	users  UserRepository
	events EventPublisher
}

// NewRosterService constructs the roster engine. events may be nil, in
// which case mutations are not announced on the bus.
func NewRosterService(teams TeamRepository, users UserRepository, events EventPublisher) *RosterService {
	return &RosterService{teams: teams, users: users, events: events}
}

// CreateTeam persists a new team. The supervisor id must be set; whether
// it resolves to an existing account is not checked here, matching the
// store-level FK as the only guard.
func (s *RosterService) CreateTeam(ctx context.Context, team types.Team) (types.Team, error) {
	if team.SupervisorID == 0 {
		return types.Team{}, errors.New("supervisor id is required")
	}
	return s.teams.Create(ctx, team)
}

// AssignGuard rosters an unassigned user into a team and returns the team
// with its guard set re-read. Exactly one of two concurrent assignments of
// the same user can succeed: the membership precondition is part of the
// single-row conditional write in the repository.
func (s *RosterService) AssignGuard(ctx context.Context, guardID, teamID int) (types.Team, error) {
	team, err := s.teams.Get(ctx, teamID)
	if err != nil {
		return types.Team{}, fmt.Errorf("load team: %w", err)
	}

	assigned, err := s.users.AssignTeam(ctx, guardID, teamID)
	if err != nil {
		return types.Team{}, fmt.Errorf("assign guard: %w", err)
	}
	if !assigned {
		// The conditional write did not land: either the user does not
		// exist or they already have a team.
		if _, err := s.users.GetByID(ctx, guardID); err != nil {
			return types.Team{}, err
		}
		return types.Team{}, ErrAlreadyAssigned
	}

	s.publish(ctx, rosterEvent{Action: "assigned", GuardID: guardID, TeamID: teamID})

	guards, err := s.users.ListByTeam(ctx, teamID)
	if err != nil {
		return types.Team{}, fmt.Errorf("load roster: %w", err)
	}
	team.Guards = guards
	return team, nil
}

// RemoveGuard takes a user off their team and returns the updated user.
func (s *RosterService) RemoveGuard(ctx context.Context, guardID int) (types.User, error) {
	cleared, err := s.users.ClearTeam(ctx, guardID)
	if err != nil {
		return types.User{}, fmt.Errorf("remove guard: %w", err)
	}

	user, err := s.users.GetByID(ctx, guardID)
	if err != nil {
		return types.User{}, err
	}
	if !cleared {
		return types.User{}, ErrNotAssigned
	}

	s.publish(ctx, rosterEvent{Action: "removed", GuardID: guardID})
	return user, nil
}

// ListTeams returns all teams without their guard sets.
func (s *RosterService) ListTeams(ctx context.Context) ([]types.Team, error) {
	return s.teams.List(ctx)
}

// TeamBySupervisor returns a supervisor's team with its guard set.
func (s *RosterService) TeamBySupervisor(ctx context.Context, supervisorID int) (types.Team, error) {
	team, err := s.teams.GetBySupervisor(ctx, supervisorID)
	if err != nil {
		return types.Team{}, err
	}
	guards, err := s.users.ListByTeam(ctx, team.ID)
	if err != nil {
		return types.Team{}, fmt.Errorf("load roster: %w", err)
	}
	team.Guards = guards
	return team, nil
}

// UnassignedGuards returns all guard accounts without a team.
func (s *RosterService) UnassignedGuards(ctx context.Context) ([]types.User, error) {
	return s.users.ListUnassignedGuards(ctx)
}

func (s *RosterService) publish(ctx context.Context, event rosterEvent) {
	if s.events == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	if _, err := s.events.Publish(ctx, rosterChannel, data, map[string]string{"action": event.Action}); err != nil {
		log.Printf("roster: publish %s event: %v", event.Action, err)
	}
}
