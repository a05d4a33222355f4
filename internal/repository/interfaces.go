package repository

import (
	"github.com/rpggio/meetflow/internal/domain/activity"
	"github.com/rpggio/meetflow/internal/domain/project"
	"github.com/rpggio/meetflow/internal/filestore"
	"github.com/rpggio/meetflow/internal/sqlite"
)

// ProjectStore persists the whole project collection
type ProjectStore = project.Store

// ActivityRepository manages activity log persistence
type ActivityRepository = activity.Repository

var (
	_ ProjectStore       = (*sqlite.ProjectStore)(nil)
	_ ProjectStore       = (*filestore.ProjectStore)(nil)
	_ ActivityRepository = (*sqlite.ActivityRepository)(nil)
)
