package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mamadbah2/smartstore/internal/domain/models"
)

// FileStore keeps users in a single JSON document mapping username to user.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by path. The file is created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// GetUser loads a user by exact username.
func (f *FileStore) GetUser(_ context.Context, username string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	users, err := f.load()
	if err != nil {
		return models.User{}, err
	}
	user, ok := users[username]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return user, nil
}

// CreateUser adds a user, failing with models.ErrUserExists on a taken username.
func (f *FileStore) CreateUser(_ context.Context, user models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	users, err := f.load()
	if err != nil {
		return err
	}
	if _, exists := users[user.Username]; exists {
		return fmt.Errorf("%w: %s", models.ErrUserExists, user.Username)
	}
	users[user.Username] = user
	return f.save(users)
}

func (f *FileStore) load() (map[string]models.User, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]models.User), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}

	users := make(map[string]models.User)
	if len(raw) == 0 {
		return users, nil
	}
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("parse users file: %w", err)
	}
	return users, nil
}

// save replaces the file atomically through a temporary sibling.
func (f *FileStore) save(users map[string]models.User) error {
	raw, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".users-*.json")
	if err != nil {
		return fmt.Errorf("create temp users file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write users file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close users file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace users file: %w", err)
	}
	return nil
}
