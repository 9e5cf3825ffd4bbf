package model

import "time"

// Client is a tenant account.  Bookings, facilities, users and quota
// rules are all scoped by client id.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – organisation name.
//  Email        – unique login email.
//  PasswordHash – bcrypt hashed password.
//  PhoneNumber  – optional contact number (nil when unset).
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Client struct {
	ID           uint64    // clients.id
	Name         string    // clients.name
	Email        string    // clients.email
	PasswordHash string    // clients.password_hash
	PhoneNumber  *string   // clients.phone_number (nullable)
	CreatedAt    time.Time // clients.created_at
	UpdatedAt    time.Time // clients.updated_at
}
