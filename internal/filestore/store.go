// Package filestore keeps the project collection in a JSON file.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/rpggio/meetflow/internal/domain/project"
	"github.com/spf13/afero"
)

// FileName is the document holding the project collection.
const FileName = "projects.json"

// ProjectStore implements project.Store on an afero filesystem.
// Use afero.NewOsFs() in production and afero.NewMemMapFs() in tests.
type ProjectStore struct {
	fs     afero.Fs
	path   string
	logger *slog.Logger
}

// New creates a store that keeps its document under dir.
func New(fsys afero.Fs, dir string, logger *slog.Logger) *ProjectStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ProjectStore{fs: fsys, path: filepath.Join(dir, FileName), logger: logger}
}

// Path returns the location of the document.
func (s *ProjectStore) Path() string {
	return s.path
}

// LoadAll returns the stored collection. A missing file or unparseable
// content yields an empty collection.
func (s *ProjectStore) LoadAll(ctx context.Context) ([]project.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []project.Project{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read projects file: %w", err)
	}

	var projects []project.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		s.logger.Warn("discarding unreadable project collection", "path", s.path, "error", err)
		return []project.Project{}, nil
	}
	if projects == nil {
		projects = []project.Project{}
	}
	return projects, nil
}

// SaveAll writes the collection to a temporary file and renames it into place.
func (s *ProjectStore) SaveAll(ctx context.Context, projects []project.Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if projects == nil {
		projects = []project.Project{}
	}
	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return fmt.Errorf("encode projects: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp, err := afero.TempFile(s.fs, dir, FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("write projects file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("close projects file: %w", err)
	}
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("replace projects file: %w", err)
	}
	return nil
}
