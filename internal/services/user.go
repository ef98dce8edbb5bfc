package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/staffdesk/apiserver/internal/auth"
	"github.com/staffdesk/apiserver/internal/store"
	"github.com/staffdesk/apiserver/types"
)

// UserRepository defines persistence operations for staff accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByRut(ctx context.Context, rut string) (types.User, error)
	List(ctx context.Context) ([]types.User, error)
	ListByTeam(ctx context.Context, teamID int) ([]types.User, error)
	ListUnassignedGuards(ctx context.Context) ([]types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	SetContractKey(ctx context.Context, id int, key string) error
	SetPictureKey(ctx context.Context, id int, key string) error
	AssignTeam(ctx context.Context, userID, teamID int) (bool, error)
	ClearTeam(ctx context.Context, userID int) (bool, error)
}

// PayslipRepository defines persistence operations for payslips.
type PayslipRepository interface {
	Get(ctx context.Context, id int) (types.Payslip, error)
	GetByKey(ctx context.Context, objectKey string) (types.Payslip, error)
	ListByUser(ctx context.Context, userID int) ([]types.Payslip, error)
	Create(ctx context.Context, slip types.Payslip) (types.Payslip, error)
	Update(ctx context.Context, slip types.Payslip) (types.Payslip, error)
}

// DocumentStore persists document bytes under a key. The services only
// ever keep the key; file contents are never inspected beyond type
// sniffing at upload time.
type DocumentStore interface {
	Store(ctx context.Context, key string, data []byte, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
	Read(ctx context.Context, key string) ([]byte, error)
}

// maxPayslipBatch caps a multi-payslip upload.
const maxPayslipBatch = 12

// UserService encapsulates account and document use-cases.
type UserService struct {
	repo      UserRepository
	payslips  PayslipRepository
	vault     *auth.Vault
	documents DocumentStore
}

func NewUserService(repo UserRepository, payslips PayslipRepository, vault *auth.Vault, documents DocumentStore) *UserService {
	return &UserService{repo: repo, payslips: payslips, vault: vault, documents: documents}
}

// Create registers an account. The password is hashed before it ever
// reaches the repository; the plaintext is not retained.
func (s *UserService) Create(ctx context.Context, user types.User, password string) (types.User, error) {
	hashed, err := s.vault.Hash(password)
	if err != nil {
		return types.User{}, err
	}
	user.PasswordHash = hashed
	return s.repo.Create(ctx, user)
}

func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByRut(ctx context.Context, rut string) (types.User, error) {
	return s.repo.GetByRut(ctx, rut)
}

// ProfileUpdate carries a partial profile change. Zero-valued fields are
// left untouched; IsAdmin is a pointer so an omitted flag is
// distinguishable from an explicit false.
type ProfileUpdate struct {
	FullName  string
	Email     string
	Rut       string
	Role      types.Role
	IsAdmin   *bool
	BirthDate time.Time
}

// Update applies profile changes on top of the stored row, so partial
// payloads do not blank out untouched fields.
func (s *UserService) Update(ctx context.Context, id int, changes ProfileUpdate) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.User{}, err
	}
	if changes.FullName != "" {
		user.FullName = changes.FullName
	}
	if changes.Email != "" {
		user.Email = changes.Email
	}
	if changes.Rut != "" {
		user.Rut = changes.Rut
	}
	if changes.Role != "" {
		user.Role = changes.Role
	}
	if changes.IsAdmin != nil {
		user.IsAdmin = *changes.IsAdmin
	}
	if !changes.BirthDate.IsZero() {
		user.BirthDate = changes.BirthDate
	}
	return s.repo.Update(ctx, user)
}

// AttachContract stores the contract PDF and points the account at it,
// replacing any previous contract reference.
func (s *UserService) AttachContract(ctx context.Context, id int, filename string, data []byte) (types.User, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return types.User{}, err
	}
	if err := validatePDF(filename, data); err != nil {
		return types.User{}, err
	}

	key := documentKey("contracts", id, filename)
	if err := s.documents.Store(ctx, key, data, contentTypePDF); err != nil {
		return types.User{}, fmt.Errorf("store contract: %w", err)
	}
	if err := s.repo.SetContractKey(ctx, id, key); err != nil {
		return types.User{}, err
	}
	return s.repo.GetByID(ctx, id)
}

// AttachPicture stores the profile picture and points the account at it.
func (s *UserService) AttachPicture(ctx context.Context, id int, filename string, data []byte) (types.User, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return types.User{}, err
	}
	contentType, err := validateImage(data)
	if err != nil {
		return types.User{}, err
	}

	key := documentKey("pictures", id, filename)
	if err := s.documents.Store(ctx, key, data, contentType); err != nil {
		return types.User{}, fmt.Errorf("store picture: %w", err)
	}
	if err := s.repo.SetPictureKey(ctx, id, key); err != nil {
		return types.User{}, err
	}
	return s.repo.GetByID(ctx, id)
}

// ContractDocument returns the raw bytes of the user's contract. A user
// without a contract, or a contract key with no object behind it, is a
// not-found.
func (s *UserService) ContractDocument(ctx context.Context, id int) ([]byte, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.ContractKey == nil {
		return nil, store.ErrNotFound
	}

	exists, err := s.documents.Exists(ctx, *user.ContractKey)
	if err != nil {
		return nil, fmt.Errorf("probe contract: %w", err)
	}
	if !exists {
		return nil, store.ErrNotFound
	}
	return s.documents.Read(ctx, *user.ContractKey)
}

// PictureDocument returns the raw bytes of the user's profile picture.
// A user without a picture, or a key with no object behind it, is a
// not-found.
func (s *UserService) PictureDocument(ctx context.Context, id int) ([]byte, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.PictureKey == nil {
		return nil, store.ErrNotFound
	}

	exists, err := s.documents.Exists(ctx, *user.PictureKey)
	if err != nil {
		return nil, fmt.Errorf("probe picture: %w", err)
	}
	if !exists {
		return nil, store.ErrNotFound
	}
	return s.documents.Read(ctx, *user.PictureKey)
}

// AddPayslip stores a payslip PDF and records it against the user.
// Re-uploading a file with the same resulting key updates the existing
// row instead of inserting a duplicate.
func (s *UserService) AddPayslip(ctx context.Context, id int, filename string, data []byte) (types.Payslip, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return types.Payslip{}, err
	}
	if err := validatePDF(filename, data); err != nil {
		return types.Payslip{}, err
	}

	key := documentKey("payslips", id, filename)
	if err := s.documents.Store(ctx, key, data, contentTypePDF); err != nil {
		return types.Payslip{}, fmt.Errorf("store payslip: %w", err)
	}

	slip, err := s.payslips.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return s.payslips.Create(ctx, types.Payslip{UserID: id, ObjectKey: key})
		}
		return types.Payslip{}, err
	}
	slip.UserID = id
	return s.payslips.Update(ctx, slip)
}

// AddPayslips uploads a batch of payslips, at most maxPayslipBatch per
// call. Validation runs before any file is stored so a bad batch does not
// land half-way.
func (s *UserService) AddPayslips(ctx context.Context, id int, files []Upload) ([]types.Payslip, error) {
	if len(files) == 0 || len(files) > maxPayslipBatch {
		return nil, fmt.Errorf("between 1 and %d files allowed per upload", maxPayslipBatch)
	}
	for _, f := range files {
		if err := validatePDF(f.Filename, f.Data); err != nil {
			return nil, err
		}
	}

	slips := make([]types.Payslip, 0, len(files))
	for _, f := range files {
		slip, err := s.AddPayslip(ctx, id, f.Filename, f.Data)
		if err != nil {
			return nil, err
		}
		slips = append(slips, slip)
	}
	return slips, nil
}

// Payslips returns all payslip rows for the user.
func (s *UserService) Payslips(ctx context.Context, id int) ([]types.Payslip, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.payslips.ListByUser(ctx, id)
}

// HasPayslips reports whether the user has at least one payslip.
func (s *UserService) HasPayslips(ctx context.Context, id int) (bool, error) {
	slips, err := s.Payslips(ctx, id)
	if err != nil {
		return false, err
	}
	return len(slips) > 0, nil
}

// PayslipDocument returns the raw bytes of one of the user's payslips.
func (s *UserService) PayslipDocument(ctx context.Context, userID, payslipID int) ([]byte, error) {
	slip, err := s.payslips.Get(ctx, payslipID)
	if err != nil {
		return nil, err
	}
	if slip.UserID != userID {
		return nil, store.ErrNotFound
	}

	exists, err := s.documents.Exists(ctx, slip.ObjectKey)
	if err != nil {
		return nil, fmt.Errorf("probe payslip: %w", err)
	}
	if !exists {
		return nil, store.ErrNotFound
	}
	return s.documents.Read(ctx, slip.ObjectKey)
}

// Birthday is an upcoming-birthday entry.
type Birthday struct {
	UserID    int       `json:"userId"`
	FullName  string    `json:"fullName"`
	BirthDate time.Time `json:"birthDate"`
	Next      time.Time `json:"next"`
}

// NextBirthdays lists every account's next birthday, soonest first.
func (s *UserService) NextBirthdays(ctx context.Context) ([]Birthday, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	birthdays := make([]Birthday, 0, len(users))
	for _, user := range users {
		if user.BirthDate.IsZero() {
			continue
		}
		next := time.Date(today.Year(), user.BirthDate.Month(), user.BirthDate.Day(), 0, 0, 0, 0, time.UTC)
		if next.Before(today) {
			next = next.AddDate(1, 0, 0)
		}
		birthdays = append(birthdays, Birthday{
			UserID:    user.ID,
			FullName:  user.FullName,
			BirthDate: user.BirthDate,
			Next:      next,
		})
	}

	sort.Slice(birthdays, func(i, j int) bool {
		if birthdays[i].Next.Equal(birthdays[j].Next) {
			return birthdays[i].UserID < birthdays[j].UserID
		}
		return birthdays[i].Next.Before(birthdays[j].Next)
	})
	return birthdays, nil
}
