package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/staffdesk/apiserver/internal/store"
	"github.com/staffdesk/apiserver/types"
)

func newRosterFixture() (*RosterService, *fakeUserRepo, *fakeTeamRepo, *fakePublisher) {
	users := newFakeUserRepo()
	teams := newFakeTeamRepo()
	events := &fakePublisher{}
	return NewRosterService(teams, users, events), users, teams, events
}

func TestAssignGuard(t *testing.T) {
	svc, users, teams, events := newRosterFixture()
	guard := users.add(types.User{ID: 5, FullName: "Guardia Uno", Rut: "11111111-1", Role: types.RoleGuard})
	team := teams.add(types.Team{ID: 2, Name: "Turno Norte", SupervisorID: 9})

	got, err := svc.AssignGuard(context.Background(), guard.ID, team.ID)
	if err != nil {
		t.Fatalf("assign guard: %v", err)
	}
	if got.ID != team.ID {
		t.Fatalf("expected team %d, got %d", team.ID, got.ID)
	}
	if len(got.Guards) != 1 || got.Guards[0].ID != guard.ID {
		t.Fatalf("expected roster [%d], got %+v", guard.ID, got.Guards)
	}

	updated, err := users.GetByID(context.Background(), guard.ID)
	if err != nil {
		t.Fatalf("reload guard: %v", err)
	}
	if updated.TeamID == nil || *updated.TeamID != team.ID {
		t.Fatalf("expected teamID %d, got %v", team.ID, updated.TeamID)
	}
	if events.published(rosterChannel) != 1 {
		t.Fatalf("expected 1 roster event, got %d", events.published(rosterChannel))
	}

	// Repeating the same call must fail: there is no transfer.
	if _, err := svc.AssignGuard(context.Background(), guard.ID, team.ID); !errors.Is(err, ErrAlreadyAssigned) {
		t.Fatalf("expected ErrAlreadyAssigned, got %v", err)
	}
}

func TestAssignGuard_TeamNotFound(t *testing.T) {
	svc, users, _, _ := newRosterFixture()
	guard := users.add(types.User{ID: 5, Role: types.RoleGuard})

	_, err := svc.AssignGuard(context.Background(), guard.ID, 99)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAssignGuard_UserNotFound(t *testing.T) {
	svc, _, teams, _ := newRosterFixture()
	team := teams.add(types.Team{ID: 2, SupervisorID: 9})

	_, err := svc.AssignGuard(context.Background(), 99, team.ID)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAssignGuard_ConcurrentExclusive(t *testing.T) {
	svc, users, teams, _ := newRosterFixture()
	guard := users.add(types.User{ID: 5, Role: types.RoleGuard})
	team1 := teams.add(types.Team{ID: 1, SupervisorID: 8})
	team2 := teams.add(types.Team{ID: 2, SupervisorID: 9})

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, teamID := range []int{team1.ID, team2.ID} {
		wg.Add(1)
		go func(slot, id int) {
			defer wg.Done()
			_, results[slot] = svc.AssignGuard(context.Background(), guard.ID, id)
		}(i, teamID)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrAlreadyAssigned):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || conflicts != 1 {
		t.Fatalf("expected exactly one success and one conflict, got %d/%d", successes, conflicts)
	}

	final, err := users.GetByID(context.Background(), guard.ID)
	if err != nil {
		t.Fatalf("reload guard: %v", err)
	}
	if final.TeamID == nil || (*final.TeamID != team1.ID && *final.TeamID != team2.ID) {
		t.Fatalf("guard must end assigned to one of the teams, got %v", final.TeamID)
	}
}

func TestRemoveGuard(t *testing.T) {
	svc, users, teams, _ := newRosterFixture()
	guard := users.add(types.User{ID: 5, Role: types.RoleGuard})
	team := teams.add(types.Team{ID: 2, SupervisorID: 9})

	if _, err := svc.AssignGuard(context.Background(), guard.ID, team.ID); err != nil {
		t.Fatalf("assign guard: %v", err)
	}

	removed, err := svc.RemoveGuard(context.Background(), guard.ID)
	if err != nil {
		t.Fatalf("remove guard: %v", err)
	}
	if removed.TeamID != nil {
		t.Fatalf("expected nil teamID after removal, got %v", removed.TeamID)
	}

	// Second removal fails: the guard has no team anymore.
	if _, err := svc.RemoveGuard(context.Background(), guard.ID); !errors.Is(err, ErrNotAssigned) {
		t.Fatalf("expected ErrNotAssigned, got %v", err)
	}
}

func TestRemoveGuard_NotFound(t *testing.T) {
	svc, _, _, _ := newRosterFixture()
	if _, err := svc.RemoveGuard(context.Background(), 99); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveThenAssign(t *testing.T) {
	svc, users, teams, _ := newRosterFixture()
	guard := users.add(types.User{ID: 5, Role: types.RoleGuard})
	team1 := teams.add(types.Team{ID: 1, SupervisorID: 8})
	team2 := teams.add(types.Team{ID: 2, SupervisorID: 9})

	if _, err := svc.AssignGuard(context.Background(), guard.ID, team1.ID); err != nil {
		t.Fatalf("assign guard: %v", err)
	}
	if _, err := svc.RemoveGuard(context.Background(), guard.ID); err != nil {
		t.Fatalf("remove guard: %v", err)
	}
	if _, err := svc.AssignGuard(context.Background(), guard.ID, team2.ID); err != nil {
		t.Fatalf("re-assign guard: %v", err)
	}

	final, err := users.GetByID(context.Background(), guard.ID)
	if err != nil {
		t.Fatalf("reload guard: %v", err)
	}
	if final.TeamID == nil || *final.TeamID != team2.ID {
		t.Fatalf("expected teamID %d, got %v", team2.ID, final.TeamID)
	}
}

func TestCreateTeam_RequiresSupervisor(t *testing.T) {
	svc, _, _, _ := newRosterFixture()

	if _, err := svc.CreateTeam(context.Background(), types.Team{Name: "Turno Sur"}); err == nil {
		t.Fatal("expected error for missing supervisor id")
	}

	team, err := svc.CreateTeam(context.Background(), types.Team{Name: "Turno Sur", SupervisorID: 3})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	if team.ID == 0 {
		t.Fatal("expected team ID to be set")
	}
}

func TestUnassignedGuards(t *testing.T) {
	svc, users, teams, _ := newRosterFixture()
	team := teams.add(types.Team{ID: 1, SupervisorID: 8})
	assigned := users.add(types.User{ID: 1, FullName: "A", Role: types.RoleGuard})
	free := users.add(types.User{ID: 2, FullName: "B", Role: types.RoleGuard})
	users.add(types.User{ID: 3, FullName: "C", Role: types.RoleOffice})

	if _, err := svc.AssignGuard(context.Background(), assigned.ID, team.ID); err != nil {
		t.Fatalf("assign guard: %v", err)
	}

	unassigned, err := svc.UnassignedGuards(context.Background())
	if err != nil {
		t.Fatalf("list unassigned: %v", err)
	}
	if len(unassigned) != 1 || unassigned[0].ID != free.ID {
		t.Fatalf("expected only guard %d unassigned, got %+v", free.ID, unassigned)
	}
}

func TestTeamBySupervisor(t *testing.T) {
	svc, users, teams, _ := newRosterFixture()
	team := teams.add(types.Team{ID: 4, Name: "Turno Este", SupervisorID: 9})
	guard := users.add(types.User{ID: 5, Role: types.RoleGuard})

	if _, err := svc.AssignGuard(context.Background(), guard.ID, team.ID); err != nil {
		t.Fatalf("assign guard: %v", err)
	}

	got, err := svc.TeamBySupervisor(context.Background(), 9)
	if err != nil {
		t.Fatalf("team by supervisor: %v", err)
	}
	if got.ID != team.ID || len(got.Guards) != 1 {
		t.Fatalf("expected team %d with one guard, got %+v", team.ID, got)
	}

	if _, err := svc.TeamBySupervisor(context.Background(), 42); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
