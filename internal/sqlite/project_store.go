package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rpggio/meetflow/internal/domain/project"
)

// ProjectsKey is the storage key holding the project collection.
const ProjectsKey = "projects"

// ProjectStore implements project.Store on a single kv_store row
type ProjectStore struct {
	db     *DB
	logger *slog.Logger
}

// NewProjectStore creates a new ProjectStore
func NewProjectStore(db *DB, logger *slog.Logger) *ProjectStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ProjectStore{db: db, logger: logger}
}

// LoadAll returns the stored collection. A missing row or unparseable value
// yields an empty collection.
func (s *ProjectStore) LoadAll(ctx context.Context) ([]project.Project, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, ProjectsKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return []project.Project{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	var projects []project.Project
	if err := json.Unmarshal([]byte(value), &projects); err != nil {
		s.logger.Warn("discarding unreadable project collection", "key", ProjectsKey, "error", err)
		return []project.Project{}, nil
	}
	if projects == nil {
		projects = []project.Project{}
	}
	return projects, nil
}

// SaveAll replaces the stored collection
func (s *ProjectStore) SaveAll(ctx context.Context, projects []project.Project) error {
	if projects == nil {
		projects = []project.Project{}
	}
	data, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("failed to encode projects: %w", err)
	}

	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, ProjectsKey, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save projects: %w", err)
	}
	return nil
}
