package fatsecret

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables read by EnvTokenStore.
const (
	envUserToken       = "FATSECRET_USER_TOKEN"
	envUserTokenSecret = "FATSECRET_USER_TOKEN_SECRET"
)

// RequestToken is the temporary credential obtained in step 1 of the
// three-legged flow. It lives only until the access-token exchange.
type RequestToken struct {
	Token  string `json:"oauth_token"`
	Secret string `json:"oauth_token_secret"`
}

// UserToken is the long-lived credential for a connected user account.
type UserToken struct {
	Token     string `json:"oauth_token"`
	Secret    string `json:"oauth_token_secret"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

// TokenStore persists at most one user token and one request token. Lookups
// of missing tokens return (nil, nil), never an error.
type TokenStore interface {
	SaveUserToken(token UserToken) error
	LoadUserToken() (*UserToken, error)
	DeleteUserToken() error
	HasUserToken() bool

	SaveRequestToken(token RequestToken) error
	LoadRequestToken() (*RequestToken, error)
	ClearRequestToken() error
}

// storageData is the on-disk layout of the token file.
type storageData struct {
	UserToken    *UserToken    `json:"user_token,omitempty"`
	RequestToken *RequestToken `json:"request_token,omitempty"`
}

// FileTokenStore keeps tokens in a single JSON file. Writes go through a
// same-directory temp file and an atomic rename so a crash never leaves a
// partially written file; the file is kept owner-read/write only. Unreadable
// or corrupt content degrades to "no tokens stored".
type FileTokenStore struct {
	path string
}

// NewFileTokenStore creates a store at path ("~" expands to the home
// directory), creating the parent directory with owner-only access if needed.
func NewFileTokenStore(path string) (*FileTokenStore, error) {
	expanded, err := expandHome(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o700); err != nil {
		return nil, fmt.Errorf("create token directory: %w", err)
	}
	return &FileTokenStore{path: expanded}, nil
}

// Path returns the resolved location of the token file.
func (s *FileTokenStore) Path() string { return s.path }

func (s *FileTokenStore) read() storageData {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return storageData{}
	}
	var data storageData
	if err := json.Unmarshal(raw, &data); err != nil {
		// Corrupt storage reads as empty rather than failing hard.
		return storageData{}
	}
	return data
}

func (s *FileTokenStore) write(data storageData) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tokens: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	// WriteFile's mode is umask-filtered and only applies on create; pin the
	// exact permission bits before the file becomes visible.
	if err := os.Chmod(tmp, 0o600); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("set token file permissions: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace token file: %w", err)
	}
	return nil
}

// SaveUserToken persists the user token as given; the caller sets CreatedAt.
func (s *FileTokenStore) SaveUserToken(token UserToken) error {
	data := s.read()
	data.UserToken = &token
	return s.write(data)
}

// LoadUserToken returns the stored user token, or nil if absent.
func (s *FileTokenStore) LoadUserToken() (*UserToken, error) {
	data := s.read()
	if data.UserToken == nil || data.UserToken.Token == "" {
		return nil, nil
	}
	token := *data.UserToken
	return &token, nil
}

// DeleteUserToken removes the stored user token; no-op if none exists.
func (s *FileTokenStore) DeleteUserToken() error {
	data := s.read()
	if data.UserToken == nil {
		return nil
	}
	data.UserToken = nil
	return s.write(data)
}

// HasUserToken reports whether a user token is stored.
func (s *FileTokenStore) HasUserToken() bool {
	token, _ := s.LoadUserToken()
	return token != nil
}

// SaveRequestToken persists the temporary request token.
func (s *FileTokenStore) SaveRequestToken(token RequestToken) error {
	data := s.read()
	data.RequestToken = &token
	return s.write(data)
}

// LoadRequestToken returns the stored request token, or nil if absent.
func (s *FileTokenStore) LoadRequestToken() (*RequestToken, error) {
	data := s.read()
	if data.RequestToken == nil || data.RequestToken.Token == "" {
		return nil, nil
	}
	token := *data.RequestToken
	return &token, nil
}

// ClearRequestToken removes the request token; no-op if none exists.
func (s *FileTokenStore) ClearRequestToken() error {
	data := s.read()
	if data.RequestToken == nil {
		return nil
	}
	data.RequestToken = nil
	return s.write(data)
}

// expandHome resolves a leading "~" to the current user's home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// EnvTokenStore sources the user token from the process environment. It is
// used on cloud deployments where a local token file would not persist: the
// OAuth flow must be completed elsewhere and the resulting token supplied via
// FATSECRET_USER_TOKEN and FATSECRET_USER_TOKEN_SECRET. All writes report
// ErrReadOnlyTokenStore; deletes are no-ops.
type EnvTokenStore struct{}

// SaveUserToken is unsupported for environment-sourced tokens.
func (EnvTokenStore) SaveUserToken(UserToken) error { return ErrReadOnlyTokenStore }

// LoadUserToken reads the token from the environment, nil when either
// variable is unset.
func (EnvTokenStore) LoadUserToken() (*UserToken, error) {
	token := os.Getenv(envUserToken)
	secret := os.Getenv(envUserTokenSecret)
	if token == "" || secret == "" {
		return nil, nil
	}
	return &UserToken{Token: token, Secret: secret}, nil
}

// DeleteUserToken is a no-op; tokens are removed by unsetting the variables.
func (EnvTokenStore) DeleteUserToken() error { return nil }

// HasUserToken reports whether both token variables are set.
func (s EnvTokenStore) HasUserToken() bool {
	token, _ := s.LoadUserToken()
	return token != nil
}

// SaveRequestToken is unsupported; the OAuth flow cannot run in this mode.
func (EnvTokenStore) SaveRequestToken(RequestToken) error { return ErrReadOnlyTokenStore }

// LoadRequestToken always reports absent.
func (EnvTokenStore) LoadRequestToken() (*RequestToken, error) { return nil, nil }

// ClearRequestToken is a no-op.
func (EnvTokenStore) ClearRequestToken() error { return nil }
