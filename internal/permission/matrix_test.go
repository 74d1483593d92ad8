package permission_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcastell/obratrack/internal/permission"
)

func TestMatrix_Lookup(t *testing.T) {
	m := permission.Default()

	tests := []struct {
		name   string
		role   permission.Role
		folder permission.Folder
		want   permission.Access
	}{
		{"AdminWritesEverything", permission.RoleAdmin, permission.FolderBudgets, permission.ReadWrite},
		{"DirectorReadsExpenses", permission.RoleDirector, permission.FolderExpenses, permission.ReadOnly},
		{"SupervisorWritesExpenses", permission.RoleSupervisor, permission.FolderExpenses, permission.ReadWrite},
		{"InspectorReadsOnly", permission.RoleInspector, permission.FolderProjects, permission.ReadOnly},
		{"ClerkHasNoBudgetAccess", permission.RoleClerk, permission.FolderBudgets, permission.NoAccess},
		{"UnknownRole", permission.Role("visitor"), permission.FolderProjects, permission.NoAccess},
		{"UnknownFolder", permission.RoleAdmin, permission.Folder("archives"), permission.NoAccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Lookup(tt.role, tt.folder))
		})
	}
}

func TestMatrix_CanReadCanWrite(t *testing.T) {
	m := permission.Default()

	assert.True(t, m.CanRead(permission.RoleInspector, permission.FolderAlerts))
	assert.False(t, m.CanWrite(permission.RoleInspector, permission.FolderAlerts))

	assert.True(t, m.CanRead(permission.RoleSupervisor, permission.FolderDocuments))
	assert.True(t, m.CanWrite(permission.RoleSupervisor, permission.FolderDocuments))

	assert.False(t, m.CanRead(permission.RoleClerk, permission.FolderAlerts))
}
