package client

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"blogcms/internal/models"
)

// storageVersion is bumped whenever the persisted session shape changes.
// A stored blob with any other version is discarded, not loaded.
const storageVersion = 1

// Storage persists a small opaque blob across application restarts.
type Storage interface {
	Load() ([]byte, error)
	Save(data []byte) error
	Clear() error
}

// FileStorage keeps the session blob in a single JSON file.
type FileStorage struct {
	Path string
}

var _ Storage = (*FileStorage)(nil)

func (f *FileStorage) Load() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return data, err
}

func (f *FileStorage) Save(data []byte) error {
	return os.WriteFile(f.Path, data, 0o600)
}

func (f *FileStorage) Clear() error {
	err := os.Remove(f.Path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// sessionEnvelope is the versioned persisted shape.
type sessionEnvelope struct {
	Version int                `json:"version"`
	Token   string             `json:"token"`
	User    *models.PublicUser `json:"user"`
}

// authAPI is the slice of Client the session needs.
type authAPI interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Register(ctx context.Context, username, password, captcha string) (*models.PublicUser, error)
	Me(ctx context.Context) (*models.PublicUser, error)
	SetToken(token string)
}

// Session holds the current authenticated identity and bearer token,
// persisted through a Storage so it survives restarts.
type Session struct {
	api   authAPI
	store Storage

	Token string
	User  *models.PublicUser
}

// NewSession restores any persisted session state. An undecodable or
// version-mismatched blob is discarded rather than loaded.
func NewSession(api authAPI, store Storage) *Session {
	s := &Session{api: api, store: store}
	s.restore()
	return s
}

func (s *Session) restore() {
	if s.store == nil {
		return
	}
	data, err := s.store.Load()
	if err != nil || len(data) == 0 {
		return
	}

	var env sessionEnvelope
	if err := json.Unmarshal(data, &env); err != nil || env.Version != storageVersion {
		_ = s.store.Clear()
		return
	}

	s.Token = env.Token
	s.User = env.User
	s.api.SetToken(env.Token)
}

func (s *Session) persist() error {
	if s.store == nil {
		return nil
	}
	data, err := json.Marshal(sessionEnvelope{
		Version: storageVersion,
		Token:   s.Token,
		User:    s.User,
	})
	if err != nil {
		return err
	}
	return s.store.Save(data)
}

// LoggedIn reports whether a token is present.
func (s *Session) LoggedIn() bool { return s.Token != "" }

// Login authenticates, installs the token on the API client and persists
// the session.
func (s *Session) Login(ctx context.Context, username, password string) error {
	res, err := s.api.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	s.Token = res.Token
	s.User = &res.User
	s.api.SetToken(res.Token)
	return s.persist()
}

// Register creates an account. It does not log the new user in; the
// backend issues no token on registration.
func (s *Session) Register(ctx context.Context, username, password, captcha string) (*models.PublicUser, error) {
	return s.api.Register(ctx, username, password, captcha)
}

// CheckAuth validates a restored token against the server. Any validation
// failure clears the session: revocation is fail-closed.
func (s *Session) CheckAuth(ctx context.Context) error {
	if s.Token == "" {
		return nil
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		s.clear()
		return fmt.Errorf("token validation: %w", err)
	}

	s.User = user
	return s.persist()
}

// Logout clears the token and user from memory and storage.
func (s *Session) Logout() {
	s.clear()
}

func (s *Session) clear() {
	s.Token = ""
	s.User = nil
	s.api.SetToken("")
	if s.store != nil {
		_ = s.store.Clear()
	}
}
