package role

// Permission is a named capability. Permissions are a fixed catalog, not
// stored records; roles reference them by id. They are a management surface
// for display and assignment only: request authorization is a binary
// authenticated/unauthenticated gate.
type Permission struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Wildcard grants every permission in the catalog.
const Wildcard = "*"

var AllPermissions = []Permission{
	{ID: "manage_users", Name: "Manage Users", Description: "Create, edit, and delete users."},
	{ID: "manage_roles", Name: "Manage Roles", Description: "Create, edit, and delete roles."},
	{ID: "manage_faculties", Name: "Manage Faculties", Description: "Manage faculty records."},
	{ID: "manage_students", Name: "Manage Students", Description: "Manage student records."},
	{ID: "manage_content", Name: "Manage Content", Description: "Manage website content."},
}
