// Package permission holds the static role to folder access matrix. It is
// pure configuration plus a lookup; no authorization decision is made inside
// the core services, callers consult the matrix before invoking them.
package permission

// Role is the portal role string carried in the session token.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleDirector   Role = "director"
	RoleSupervisor Role = "supervisor"
	RoleInspector  Role = "inspector"
	RoleClerk      Role = "clerk"
)

// Folder is a coarse permission area of the portal.
type Folder string

const (
	FolderProjects  Folder = "projects"
	FolderBudgets   Folder = "budgets"
	FolderExpenses  Folder = "expenses"
	FolderAlerts    Folder = "alerts"
	FolderDocuments Folder = "documents"
)

type Access int

const (
	NoAccess Access = iota
	ReadOnly
	ReadWrite
)

// Matrix maps (role, folder) to an access level. Missing entries mean no
// access.
type Matrix map[Role]map[Folder]Access

// Default returns the portal's built-in matrix.
func Default() Matrix {
	return Matrix{
		RoleAdmin: {
			FolderProjects:  ReadWrite,
			FolderBudgets:   ReadWrite,
			FolderExpenses:  ReadWrite,
			FolderAlerts:    ReadWrite,
			FolderDocuments: ReadWrite,
		},
		RoleDirector: {
			FolderProjects:  ReadWrite,
			FolderBudgets:   ReadWrite,
			FolderExpenses:  ReadOnly,
			FolderAlerts:    ReadWrite,
			FolderDocuments: ReadOnly,
		},
		RoleSupervisor: {
			FolderProjects:  ReadOnly,
			FolderBudgets:   ReadOnly,
			FolderExpenses:  ReadWrite,
			FolderAlerts:    ReadWrite,
			FolderDocuments: ReadWrite,
		},
		RoleInspector: {
			FolderProjects:  ReadOnly,
			FolderBudgets:   ReadOnly,
			FolderExpenses:  ReadOnly,
			FolderAlerts:    ReadOnly,
			FolderDocuments: ReadOnly,
		},
		RoleClerk: {
			FolderProjects: ReadOnly,
			FolderExpenses: ReadWrite,
		},
	}
}

// Lookup returns the access level of role on folder. Unknown roles and
// folders yield NoAccess.
func (m Matrix) Lookup(role Role, folder Folder) Access {
	return m[role][folder]
}

// CanRead reports whether role may read folder.
func (m Matrix) CanRead(role Role, folder Folder) bool {
	return m.Lookup(role, folder) >= ReadOnly
}

// CanWrite reports whether role may write folder.
func (m Matrix) CanWrite(role Role, folder Folder) bool {
	return m.Lookup(role, folder) == ReadWrite
}
