package repository

// EntitySchema describes how client-facing field names map onto an entity's
// columns. The query and bulk engines validate every sort key, filter key and
// bulk-update field against it; nothing client-supplied reaches a query
// builder unchecked.
type EntitySchema struct {
	// Columns maps exposed field names to column names. A field must appear
	// here to be usable as a sort key or an equality filter.
	Columns map[string]string
	// Searchable lists the exposed names of the string fields included in
	// the free-text search.
	Searchable []string
	// Mutable maps the exposed names of fields a bulk action may update to
	// their columns.
	Mutable map[string]string
	// Protected marks entities carrying the is_system flag; bulk operations
	// skip flagged rows.
	Protected bool
}

// UserSchema exposes the user list/bulk surface.
var UserSchema = EntitySchema{
	Columns: map[string]string{
		"id":        "id",
		"email":     "email",
		"name":      "name",
		"phoneNo":   "phone_no",
		"status":    "status",
		"createdAt": "created_at",
		"updatedAt": "updated_at",
	},
	Searchable: []string{"email", "name", "phoneNo"},
	Mutable: map[string]string{
		"name":    "name",
		"phoneNo": "phone_no",
		"status":  "status",
	},
}

// AdminSchema exposes the admin list/bulk surface. Admin rows carry the
// is_system flag.
var AdminSchema = EntitySchema{
	Columns: map[string]string{
		"id":        "id",
		"email":     "email",
		"name":      "name",
		"status":    "status",
		"isSystem":  "is_system",
		"createdAt": "created_at",
		"updatedAt": "updated_at",
	},
	Searchable: []string{"email", "name"},
	Mutable: map[string]string{
		"name":   "name",
		"status": "status",
	},
	Protected: true,
}

// RoleSchema exposes the role list/bulk surface. Role rows carry the
// is_system flag. Name is deliberately absent from Mutable: bulk-assigning
// one name to many roles would always violate its uniqueness.
var RoleSchema = EntitySchema{
	Columns: map[string]string{
		"id":        "id",
		"name":      "name",
		"type":      "type",
		"status":    "status",
		"isSystem":  "is_system",
		"createdAt": "created_at",
		"updatedAt": "updated_at",
	},
	Searchable: []string{"name"},
	Mutable: map[string]string{
		"status": "status",
	},
	Protected: true,
}
