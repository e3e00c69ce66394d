package models

import "time"

// Credential is the stored record for one registered identity. Records are
// created once and never updated.
type Credential struct {
	ID           string
	Identity     string
	PasswordHash string
	CreatedAt    time.Time
}
