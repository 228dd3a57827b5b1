package user

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"amdesk/internal/platform/jsonfile"
	dErrors "amdesk/pkg/domain-errors"
	"amdesk/pkg/platform/sentinel"
)

// ProfileUpdate carries optional profile fields; nil means leave unchanged.
type ProfileUpdate struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Photo *string `json:"photo"`
}

// PreferencesPatch merges into existing preferences. EmailAlerts entries are
// merged key by key so a partial update never drops other opt-ins.
type PreferencesPatch struct {
	EmailAlerts map[string]bool `json:"emailAlerts"`
	EmailDigest *string         `json:"emailDigest"`
	LiveUpdates *bool           `json:"liveUpdates"`
}

// FileStore is the JSON-file-backed user directory. It is the system of
// record for roles and notification preferences; consumers read fresh
// snapshots rather than caching.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore opens the directory at path, seeding a default user set when
// the file does not exist yet.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := jsonfile.Write(path, seedUsers()); err != nil {
			return nil, fmt.Errorf("seed users: %w", err)
		}
	}
	return s, nil
}

func (s *FileStore) load() ([]User, error) {
	users, err := jsonfile.Read[[]User](s.path)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// List returns the current directory snapshot.
func (s *FileStore) List(_ context.Context) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// FindByEmail looks up a user by case-insensitive email.
func (s *FileStore) FindByEmail(ctx context.Context, email string) (User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return User{}, err
	}
	target := strings.ToLower(email)
	for _, u := range users {
		if strings.ToLower(u.Email) == target {
			return u, nil
		}
	}
	return User{}, sentinel.ErrNotFound
}

// FindByIdentifier matches a login identifier against sid, email, the email
// local part, or username, all case-insensitively.
func (s *FileStore) FindByIdentifier(ctx context.Context, identifier string) (User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return User{}, err
	}
	sid := strings.ToLower(strings.TrimSpace(identifier))
	for _, u := range users {
		email := strings.ToLower(u.Email)
		local, _, _ := strings.Cut(email, "@")
		if strings.ToLower(u.SID) == sid ||
			email == sid ||
			local == sid ||
			strings.ToLower(u.Username) == sid {
			return u, nil
		}
	}
	return User{}, sentinel.ErrNotFound
}

// VerifyPassword checks credentials for login.
func (s *FileStore) VerifyPassword(ctx context.Context, email, password string) (User, error) {
	u, err := s.FindByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials.")
	}
	return u, nil
}

// UpdateProfile applies the provided profile fields and persists.
func (s *FileStore) UpdateProfile(ctx context.Context, email string, patch ProfileUpdate) (User, error) {
	return s.mutate(email, func(u *User) error {
		if patch.Name != nil {
			u.Name = truncate(*patch.Name, 120)
		}
		if patch.Phone != nil {
			u.Phone = truncate(*patch.Phone, 40)
		}
		if patch.Photo != nil {
			u.Photo = *patch.Photo
		}
		return nil
	})
}

// ChangePassword verifies the current password and stores a new bcrypt hash.
func (s *FileStore) ChangePassword(ctx context.Context, email, current, next string) error {
	if current == "" || next == "" {
		return dErrors.New(dErrors.CodeBadRequest, "Missing current or new password")
	}
	if len(next) < 8 {
		return dErrors.New(dErrors.CodeBadRequest, "Password too short (min 8 chars)")
	}
	_, err := s.mutate(email, func(u *User) error {
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
			return dErrors.New(dErrors.CodeBadRequest, "Current password incorrect")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = string(hash)
		return nil
	})
	return err
}

// MergePreferences shallow-merges the patch into the stored preferences.
func (s *FileStore) MergePreferences(ctx context.Context, email string, patch PreferencesPatch) (Preferences, error) {
	u, err := s.mutate(email, func(u *User) error {
		if u.Preferences.EmailAlerts == nil {
			u.Preferences.EmailAlerts = make(map[string]bool)
		}
		for k, v := range patch.EmailAlerts {
			u.Preferences.EmailAlerts[k] = v
		}
		if patch.EmailDigest != nil {
			switch *patch.EmailDigest {
			case DigestNone, DigestDaily, DigestWeekly:
				u.Preferences.EmailDigest = *patch.EmailDigest
			default:
				return dErrors.New(dErrors.CodeBadRequest, "Invalid emailDigest value")
			}
		}
		if patch.LiveUpdates != nil {
			u.Preferences.LiveUpdates = *patch.LiveUpdates
		}
		return nil
	})
	if err != nil {
		return Preferences{}, err
	}
	return u.Preferences, nil
}

// SetRole updates a user's role. Admin console only.
func (s *FileStore) SetRole(ctx context.Context, email, role string) (User, error) {
	return s.mutate(email, func(u *User) error {
		u.Role = role
		return nil
	})
}

func (s *FileStore) mutate(email string, fn func(*User) error) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return User{}, err
	}
	target := strings.ToLower(email)
	for i := range users {
		if strings.ToLower(users[i].Email) != target {
			continue
		}
		if err := fn(&users[i]); err != nil {
			return User{}, err
		}
		if err := jsonfile.Write(s.path, users); err != nil {
			return User{}, err
		}
		return users[i], nil
	}
	return User{}, sentinel.ErrNotFound
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

func mustHash(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}

// seedUsers provides the demo directory written on first boot.
func seedUsers() []User {
	return []User{
		{
			Email:        "thomas.francis@amdesk.example",
			Name:         "Thomas Francis",
			SID:          "tfrancis",
			Username:     "tfrancis",
			Role:         "Admin",
			Department:   "Institutional",
			PasswordHash: mustHash("ChangeMe123!"),
			Preferences: Preferences{
				EmailAlerts: map[string]bool{
					PrefApprovals: true,
					PrefBreaches:  true,
					PrefRFPStages: true,
				},
				EmailDigest: DigestDaily,
				LiveUpdates: true,
			},
		},
		{
			Email:        "kara.james@amdesk.example",
			Name:         "Kara James",
			SID:          "kjames",
			Username:     "kjames",
			Role:         "Analyst",
			Department:   "Equities",
			PasswordHash: mustHash("ChangeMe123!"),
			Preferences: Preferences{
				EmailAlerts: map[string]bool{
					PrefBreaches: true,
				},
				EmailDigest: DigestWeekly,
				LiveUpdates: true,
			},
		},
		{
			Email:        "priya.nair@amdesk.example",
			Name:         "Priya Nair",
			SID:          "pnair",
			Username:     "pnair",
			Role:         "Coverage",
			Department:   "Coverage",
			PasswordHash: mustHash("ChangeMe123!"),
			Preferences: Preferences{
				EmailAlerts: map[string]bool{
					PrefRFPStages: true,
				},
				EmailDigest: DigestNone,
			},
		},
	}
}
