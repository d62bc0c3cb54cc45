// Package sessionstore persists the current session between process restarts.
package sessionstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/competition-manager/internal/domain/user"
)

// SessionKey is the well-known key the session record is stored under.
const SessionKey = "user"

type identityRecord struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sessionRecord struct {
	User         identityRecord `json:"user"`
	AccessToken  string         `json:"access_token,omitempty"`
	RefreshToken string         `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time     `json:"expires_at,omitempty"`
}

// FileStore keeps the session in a JSON object file. Other keys in the file are preserved.
type FileStore struct {
	mu   sync.Mutex
	path string
}

var _ user.SessionStore = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) (user.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return user.Session{}, false, err
	}
	raw, ok := doc[SessionKey]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return user.Session{}, false, nil
	}

	var record sessionRecord
	if err := sonic.Unmarshal(raw, &record); err != nil {
		return user.Session{}, false, crerr.Wrapf(err, "decode session record in %s", s.path)
	}
	session := fromRecord(record)
	if session.Identity.IsZero() {
		return user.Session{}, false, nil
	}
	return session, true, nil
}

func (s *FileStore) Save(ctx context.Context, session user.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	raw, err := sonic.Marshal(toRecord(session))
	if err != nil {
		return crerr.Wrap(err, "encode session record")
	}
	doc[SessionKey] = raw
	return s.write(doc)
}

func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := doc[SessionKey]; !ok {
		return nil
	}
	delete(doc, SessionKey)
	return s.write(doc)
}

func (s *FileStore) read() (map[string]json.RawMessage, error) {
	doc := make(map[string]json.RawMessage)
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return nil, crerr.Wrapf(err, "read session file %s", s.path)
	}
	if len(content) == 0 {
		return doc, nil
	}
	if err := sonic.Unmarshal(content, &doc); err != nil {
		return nil, crerr.Wrapf(err, "decode session file %s", s.path)
	}
	return doc, nil
}

func (s *FileStore) write(doc map[string]json.RawMessage) error {
	content, err := sonic.Marshal(doc)
	if err != nil {
		return crerr.Wrap(err, "encode session file")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return crerr.Wrapf(err, "create session dir %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return crerr.Wrap(err, "create temp session file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return crerr.Wrap(err, "write temp session file")
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return crerr.Wrap(err, "chmod temp session file")
	}
	if err := tmp.Close(); err != nil {
		return crerr.Wrap(err, "close temp session file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return crerr.Wrapf(err, "replace session file %s", s.path)
	}
	return nil
}

func toRecord(session user.Session) sessionRecord {
	record := sessionRecord{
		User: identityRecord{
			ID:    session.Identity.ID,
			Email: session.Identity.Email,
			Name:  session.Identity.Name,
		},
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	}
	if !session.ExpiresAt.IsZero() {
		at := session.ExpiresAt.UTC()
		record.ExpiresAt = &at
	}
	return record
}

func fromRecord(record sessionRecord) user.Session {
	session := user.Session{
		Identity: user.Identity{
			ID:    record.User.ID,
			Email: record.User.Email,
			Name:  record.User.Name,
		},
		AccessToken:  record.AccessToken,
		RefreshToken: record.RefreshToken,
	}
	if record.ExpiresAt != nil {
		session.ExpiresAt = *record.ExpiresAt
	}
	return session
}
