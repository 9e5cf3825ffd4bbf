package model

import "time"

// Audit outcome values stored in booking_logs.status.
const (
	LogStatusSuccess = "success"
	LogStatusError   = "error"
)

// BookingLog is one audit-trail entry for a booking operation.  Every
// admission attempt writes exactly one entry: success entries capture
// the created booking, error entries capture the rejection reason and
// the original inputs so that the log always agrees with the error the
// caller received.
//
// Fields:
//  ID         – primary key identifier.
//  ClientID   – tenant the attempt belonged to (0 if unknown).
//  UserID     – user the attempt was for (0 if unknown).
//  FacilityID – facility the attempt targeted (0 if unknown).
//  Status     – success or error.
//  Message    – human-readable outcome; for errors this is the same
//               message returned to the caller.
//  Data       – JSON-encoded request or result details.
//  CreatedAt  – when the entry was written.
type BookingLog struct {
	ID         uint64    // booking_logs.id
	ClientID   uint64    // booking_logs.client_id
	UserID     uint64    // booking_logs.user_id
	FacilityID uint64    // booking_logs.facility_id
	Status     string    // booking_logs.status
	Message    string    // booking_logs.message
	Data       string    // booking_logs.data (JSON text)
	CreatedAt  time.Time // booking_logs.created_at
}

// LogFilter narrows audit-log list queries.  Zero values mean "any".
type LogFilter struct {
	ClientID   uint64
	UserID     uint64
	FacilityID uint64
	Status     string
}
