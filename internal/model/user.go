package model

import "time"

// Roles stored in the users.role column and embedded in JWT claims.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User represents an application user record as stored in the `users`
// table.  Users belong to a client (tenant) and are the subjects of
// bookings.  The json tags are omitted because these structs are used
// by the repository layer; handlers define separate response types.
//
// Fields:
//  ID           – primary key identifier of the user.
//  ClientID     – client the user belongs to.
//  Name         – display name.
//  Email        – unique email address; reminder and confirmation
//                 notifications are sent here.
//  PasswordHash – bcrypt hashed password.
//  Role         – admin or member.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	ClientID     uint64    // users.client_id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
