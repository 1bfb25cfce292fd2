// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/danielhkuo/timed-vote/models"
)

// document is the on-disk data.json layout
type document struct {
	Users    []models.User             `json:"users"`
	Sessions map[string]models.Session `json:"sessions"`
	Topics   []models.Topic            `json:"topics"`
}

// FileStore keeps all state in a single JSON document. Every save
// rewrites the whole file through a temp file and rename.
type FileStore struct {
	path string

	mu  sync.Mutex
	doc document
}

// OpenFile reads the document at path. A missing file is an empty state.
func OpenFile(path string) (*FileStore, error) {
	f := &FileStore{path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		f.doc = document{Sessions: map[string]models.Session{}}
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &f.doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if f.doc.Sessions == nil {
		f.doc.Sessions = map[string]models.Session{}
	}
	for i := range f.doc.Topics {
		if f.doc.Topics[i].Voters == nil {
			f.doc.Topics[i].Voters = map[string]int{}
		}
		if f.doc.Topics[i].Votes == nil {
			f.doc.Topics[i].Votes = []models.Vote{}
		}
	}
	return f, nil
}

// Path returns the document location.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) LoadTopics(ctx context.Context) ([]models.Topic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.doc.Topics), nil
}

func (f *FileStore) SaveTopics(ctx context.Context, topics []models.Topic) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := f.doc
	next.Topics = topics
	if err := f.write(next); err != nil {
		return err
	}
	f.doc = next
	return nil
}

func (f *FileStore) LoadAccounts(ctx context.Context) (models.Accounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.Accounts{
		Users:    slices.Clone(f.doc.Users),
		Sessions: maps.Clone(f.doc.Sessions),
	}, nil
}

func (f *FileStore) SaveAccounts(ctx context.Context, accounts models.Accounts) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := f.doc
	next.Users = accounts.Users
	next.Sessions = accounts.Sessions
	if err := f.write(next); err != nil {
		return err
	}
	f.doc = next
	return nil
}

// write replaces the file atomically. Caller holds f.mu.
func (f *FileStore) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}
