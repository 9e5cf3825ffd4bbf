package model

import "time"

// Facility is a bookable physical resource owned by a client.  The
// admission pipeline only checks existence; facility management itself
// is ordinary CRUD.
//
// Fields:
//  ID          – primary key identifier.
//  ClientID    – client the facility belongs to.
//  Name        – facility name, unique per client.
//  Description – optional description (nil when unset).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Facility struct {
	ID          uint64    // facilities.id
	ClientID    uint64    // facilities.client_id
	Name        string    // facilities.name
	Description *string   // facilities.description (nullable)
	CreatedAt   time.Time // facilities.created_at
	UpdatedAt   time.Time // facilities.updated_at
}
