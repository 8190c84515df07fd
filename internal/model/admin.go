package model

// Admin represents a content-authoring identity in the database. The numeric
// ID is the only value other tables join on; the external identity strings
// are never used as a foreign key.
type Admin struct {
	ID           int64
	IdentityType string
	IdentityID   string
	Active       bool
	Editor       bool
}
