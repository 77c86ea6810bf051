package models

import "time"

// UserRole controls who may delete ledger entries. Role assignment and the
// whole credential lifecycle live outside this service; the role arrives in
// the JWT claims.
type UserRole string

const (
	RoleOwner   UserRole = "OWNER"
	RoleManager UserRole = "MANAGER"
	RoleStaff   UserRole = "STAFF"
)

// User is the minimal record referenced by Transaction.RecordedByUserID.
type User struct {
	UserID     string    `json:"userID"`
	BusinessID string    `json:"businessID"`
	Email      string    `json:"email"`
	Role       UserRole  `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
}
