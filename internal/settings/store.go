// Package settings persists application configuration edited from the admin
// UI: the ERP connection block and the admin credential.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidPassword indicates an admin credential check failure.
var ErrInvalidPassword = errors.New("invalid admin password")

// DefaultAdminPassword seeds a fresh settings file. It is stored hashed and
// should be rotated on first login.
const DefaultAdminPassword = "changeme"

// ERP holds the connection block consumed by the frontend when talking to the
// downstream ERP. The service path default matches the ERP's query endpoint.
type ERP struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Service  string `json:"service"`
}

// Settings is the persisted configuration. The admin credential is kept as a
// bcrypt hash, never in clear text.
type Settings struct {
	AdminPasswordHash string `json:"admin_password_hash"`
	ERP               ERP    `json:"erp"`
}

func defaults() Settings {
	return Settings{
		ERP: ERP{Port: 2800, Service: "Queries/Query"},
	}
}

// Store loads and saves the settings file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore returns a Store for the given settings file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the settings file, merging missing fields from defaults. A
// missing file is created with defaults and a hashed default password. A
// legacy file carrying a clear-text admin_password field is migrated to a
// hash on the spot.
func (s *Store) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Save persists the settings file.
func (s *Store) Save(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(settings)
}

// VerifyAdmin compares the given password against the stored hash.
func (s *Store) VerifyAdmin(password string) error {
	settings, err := s.Load()
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(settings.AdminPasswordHash), []byte(password)) != nil {
		return ErrInvalidPassword
	}
	return nil
}

// SetAdminPassword hashes and stores a new admin credential.
func (s *Store) SetAdminPassword(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.loadLocked()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("settings: hash password: %w", err)
	}
	settings.AdminPasswordHash = string(hash)
	return s.saveLocked(settings)
}

func (s *Store) loadLocked() (Settings, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		settings := defaults()
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(DefaultAdminPassword), bcrypt.DefaultCost)
		if hashErr != nil {
			return Settings{}, fmt.Errorf("settings: hash default password: %w", hashErr)
		}
		settings.AdminPasswordHash = string(hash)
		if err := s.saveLocked(settings); err != nil {
			return Settings{}, err
		}
		return settings, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("settings: read %s: %w", s.path, err)
	}

	// Field-wise merge over defaults, matching the historical behaviour of
	// partially written files keeping their defaults for absent keys.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		raw = map[string]json.RawMessage{}
	}

	settings := defaults()
	if v, ok := raw["admin_password_hash"]; ok {
		_ = json.Unmarshal(v, &settings.AdminPasswordHash)
	}
	if v, ok := raw["erp"]; ok {
		var erp map[string]json.RawMessage
		if json.Unmarshal(v, &erp) == nil {
			if h, ok := erp["host"]; ok {
				_ = json.Unmarshal(h, &settings.ERP.Host)
			}
			if p, ok := erp["port"]; ok {
				_ = json.Unmarshal(p, &settings.ERP.Port)
			}
			if u, ok := erp["user"]; ok {
				_ = json.Unmarshal(u, &settings.ERP.User)
			}
			if pw, ok := erp["password"]; ok {
				_ = json.Unmarshal(pw, &settings.ERP.Password)
			}
			if svc, ok := erp["service"]; ok {
				_ = json.Unmarshal(svc, &settings.ERP.Service)
			}
		}
	}

	// Legacy migration: files written before hashing carried the credential
	// in clear text.
	if settings.AdminPasswordHash == "" {
		legacy := DefaultAdminPassword
		if v, ok := raw["admin_password"]; ok {
			var plain string
			if json.Unmarshal(v, &plain) == nil && plain != "" {
				legacy = plain
			}
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(legacy), bcrypt.DefaultCost)
		if err != nil {
			return Settings{}, fmt.Errorf("settings: hash migrated password: %w", err)
		}
		settings.AdminPasswordHash = string(hash)
		if err := s.saveLocked(settings); err != nil {
			return Settings{}, err
		}
	}

	return settings, nil
}

func (s *Store) saveLocked(settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("settings: create directory: %w", err)
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("settings: write temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("settings: rename temp file: %w", err)
	}
	return nil
}
