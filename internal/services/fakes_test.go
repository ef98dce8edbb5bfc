package services

import (
	"context"
	"sync"

	"github.com/staffdesk/apiserver/internal/store"
	"github.com/staffdesk/apiserver/types"
)

// fakeUserRepo is an in-memory UserRepository. The conditional team writes
// hold the mutex across check and write, matching the atomicity the SQL
// conditional UPDATE provides.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int]types.User)}
}

func (f *fakeUserRepo) add(user types.User) types.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == 0 {
		user.ID = f.nextID
	}
	if user.ID >= f.nextID {
		f.nextID = user.ID + 1
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByRut(_ context.Context, rut string) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Rut == rut {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) List(_ context.Context) ([]types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]types.User, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, user)
	}
	return users, nil
}

func (f *fakeUserRepo) ListByTeam(_ context.Context, teamID int) ([]types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]types.User, 0)
	for _, user := range f.users {
		if user.TeamID != nil && *user.TeamID == teamID {
			users = append(users, user)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) ListUnassignedGuards(_ context.Context) ([]types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]types.User, 0)
	for _, user := range f.users {
		if user.Role == types.RoleGuard && user.TeamID == nil {
			users = append(users, user)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email || existing.Rut == user.Rut || existing.FullName == user.FullName {
			return types.User{}, store.ErrDuplicate
		}
	}
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.users[user.ID]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	user.PasswordHash = existing.PasswordHash
	user.TeamID = existing.TeamID
	user.ContractKey = existing.ContractKey
	user.PictureKey = existing.PictureKey
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id int, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.PasswordHash = passwordHash
	f.users[id] = user
	return nil
}

func (f *fakeUserRepo) SetContractKey(_ context.Context, id int, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.ContractKey = &key
	f.users[id] = user
	return nil
}

func (f *fakeUserRepo) SetPictureKey(_ context.Context, id int, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.PictureKey = &key
	f.users[id] = user
	return nil
}

func (f *fakeUserRepo) AssignTeam(_ context.Context, userID, teamID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok || user.TeamID != nil {
		return false, nil
	}
	user.TeamID = &teamID
	f.users[userID] = user
	return true, nil
}

func (f *fakeUserRepo) ClearTeam(_ context.Context, userID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok || user.TeamID == nil {
		return false, nil
	}
	user.TeamID = nil
	f.users[userID] = user
	return true, nil
}

type fakeTeamRepo struct {
	mu     sync.Mutex
	nextID int
	teams  map[int]types.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{nextID: 1, teams: make(map[int]types.Team)}
}

func (f *fakeTeamRepo) add(team types.Team) types.Team {
	f.mu.Lock()
	defer f.mu.Unlock()
	if team.ID == 0 {
		team.ID = f.nextID
	}
	if team.ID >= f.nextID {
		f.nextID = team.ID + 1
	}
	f.teams[team.ID] = team
	return team
}

func (f *fakeTeamRepo) List(_ context.Context) ([]types.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	teams := make([]types.Team, 0, len(f.teams))
	for _, team := range f.teams {
		teams = append(teams, team)
	}
	return teams, nil
}

func (f *fakeTeamRepo) Get(_ context.Context, id int) (types.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	team, ok := f.teams[id]
	if !ok {
		return types.Team{}, store.ErrNotFound
	}
	return team, nil
}

func (f *fakeTeamRepo) GetBySupervisor(_ context.Context, supervisorID int) (types.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, team := range f.teams {
		if team.SupervisorID == supervisorID {
			return team, nil
		}
	}
	return types.Team{}, store.ErrNotFound
}

func (f *fakeTeamRepo) Create(_ context.Context, team types.Team) (types.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	team.ID = f.nextID
	f.nextID++
	f.teams[team.ID] = team
	return team, nil
}

type fakePayslipRepo struct {
	mu     sync.Mutex
	nextID int
	slips  map[int]types.Payslip
}

func newFakePayslipRepo() *fakePayslipRepo {
	return &fakePayslipRepo{nextID: 1, slips: make(map[int]types.Payslip)}
}

func (f *fakePayslipRepo) Get(_ context.Context, id int) (types.Payslip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	slip, ok := f.slips[id]
	if !ok {
		return types.Payslip{}, store.ErrNotFound
	}
	return slip, nil
}

func (f *fakePayslipRepo) GetByKey(_ context.Context, objectKey string) (types.Payslip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, slip := range f.slips {
		if slip.ObjectKey == objectKey {
			return slip, nil
		}
	}
	return types.Payslip{}, store.ErrNotFound
}

func (f *fakePayslipRepo) ListByUser(_ context.Context, userID int) ([]types.Payslip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	slips := make([]types.Payslip, 0)
	for _, slip := range f.slips {
		if slip.UserID == userID {
			slips = append(slips, slip)
		}
	}
	return slips, nil
}

func (f *fakePayslipRepo) Create(_ context.Context, slip types.Payslip) (types.Payslip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	slip.ID = f.nextID
	f.nextID++
	f.slips[slip.ID] = slip
	return slip, nil
}

func (f *fakePayslipRepo) Update(_ context.Context, slip types.Payslip) (types.Payslip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.slips[slip.ID]; !ok {
		return types.Payslip{}, store.ErrNotFound
	}
	f.slips[slip.ID] = slip
	return slip, nil
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	nextID   int
	requests map[int]types.AccountRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{nextID: 1, requests: make(map[int]types.AccountRequest)}
}

func (f *fakeRequestRepo) List(_ context.Context) ([]types.AccountRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	requests := make([]types.AccountRequest, 0, len(f.requests))
	for _, request := range f.requests {
		requests = append(requests, request)
	}
	return requests, nil
}

func (f *fakeRequestRepo) Get(_ context.Context, id int) (types.AccountRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[id]
	if !ok {
		return types.AccountRequest{}, store.ErrNotFound
	}
	return request, nil
}

func (f *fakeRequestRepo) Create(_ context.Context, request types.AccountRequest) (types.AccountRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.requests {
		if existing.Email == request.Email || existing.Rut == request.Rut {
			return types.AccountRequest{}, store.ErrDuplicate
		}
	}
	request.ID = f.nextID
	f.nextID++
	f.requests[request.ID] = request
	return request, nil
}

func (f *fakeRequestRepo) Update(_ context.Context, request types.AccountRequest) (types.AccountRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.requests[request.ID]; !ok {
		return types.AccountRequest{}, store.ErrNotFound
	}
	f.requests[request.ID] = request
	return request, nil
}

type fakePayslipRequestRepo struct {
	mu       sync.Mutex
	nextID   int
	requests map[int]types.PayslipRequest
}

func newFakePayslipRequestRepo() *fakePayslipRequestRepo {
	return &fakePayslipRequestRepo{nextID: 1, requests: make(map[int]types.PayslipRequest)}
}

func (f *fakePayslipRequestRepo) List(_ context.Context) ([]types.PayslipRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	requests := make([]types.PayslipRequest, 0, len(f.requests))
	for _, request := range f.requests {
		requests = append(requests, request)
	}
	return requests, nil
}

func (f *fakePayslipRequestRepo) Get(_ context.Context, id int) (types.PayslipRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[id]
	if !ok {
		return types.PayslipRequest{}, store.ErrNotFound
	}
	return request, nil
}

func (f *fakePayslipRequestRepo) Create(_ context.Context, request types.PayslipRequest) (types.PayslipRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	request.ID = f.nextID
	f.nextID++
	f.requests[request.ID] = request
	return request, nil
}

func (f *fakePayslipRequestRepo) Update(_ context.Context, request types.PayslipRequest) (types.PayslipRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.requests[request.ID]; !ok {
		return types.PayslipRequest{}, store.ErrNotFound
	}
	f.requests[request.ID] = request
	return request, nil
}

// fakeDocStore keeps document bytes in a map.
type fakeDocStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{objects: make(map[string][]byte)}
}

func (f *fakeDocStore) Store(_ context.Context, key string, data []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeDocStore) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeDocStore) Read(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return data, nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
}

type publishedMessage struct {
	channel string
	data    []byte
	attrs   map[string]string
}

func (f *fakePublisher) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, publishedMessage{channel: channel, data: data, attrs: attrs})
	return "msg-1", nil
}

func (f *fakePublisher) published(channel string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, msg := range f.messages {
		if msg.channel == channel {
			count++
		}
	}
	return count
}
