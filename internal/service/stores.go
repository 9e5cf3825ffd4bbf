package service

import (
	"context"
	"time"

	"github.com/iliyamo/facility-booking/internal/model"
)

// The booking engine consumes its collaborators through these
// interfaces, passed in by construction rather than fetched from
// ambient context.  The repository types satisfy the store interfaces;
// tests substitute in-memory fakes.
//
// Lookup methods return (nil, nil) when the record is absent: for the
// engine, "not found" is a regular outcome (the sweeper may have
// removed a row under us), not a storage error.

// BookingStore persists the live booking set.
type BookingStore interface {
	// Create inserts the booking atomically with respect to the
	// facility's other writes; it returns repository.ErrOverlap when a
	// conflicting booking exists.
	Create(ctx context.Context, b *model.Booking) error
	// Update rewrites interval and status under the same atomicity
	// discipline, excluding the booking itself from conflict checks.
	Update(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, f model.BookingFilter) ([]model.Booking, error)
	HasConflict(ctx context.Context, facilityID uint64, start, end time.Time, excludeID uint64) (bool, error)
	CountInRange(ctx context.Context, clientID, userID, facilityID uint64, from, to time.Time) (int, error)
}

// HistoryStore persists the durable booking ledger.
type HistoryStore interface {
	Create(ctx context.Context, h *model.BookingHistory) error
	FindForBooking(ctx context.Context, b *model.Booking) (*model.BookingHistory, error)
	GetByID(ctx context.Context, id uint64) (*model.BookingHistory, error)
	MarkReminderSent(ctx context.Context, id uint64) error
	Terminate(ctx context.Context, id uint64, status string, at time.Time) error
	AttachBookingID(ctx context.Context, historyID, bookingID uint64) error
	ListOrphans(ctx context.Context) ([]model.BookingHistory, error)
	List(ctx context.Context, f model.HistoryFilter) ([]model.BookingHistory, error)
}

// QuotaStore looks up explicit booking-limit rules.
type QuotaStore interface {
	Find(ctx context.Context, clientID, userID, facilityID uint64) (*model.QuotaRule, error)
}

// FacilityStore is the facility-existence check consumed by admission.
type FacilityStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Facility, error)
}

// UserStore is the user-existence check consumed by admission and the
// sweeper (which needs the user's email for reminders).
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// AuditStore appends and lists booking audit-trail entries.
type AuditStore interface {
	Insert(ctx context.Context, e *model.BookingLog) error
	List(ctx context.Context, f model.LogFilter) ([]model.BookingLog, error)
}

// Notifier sends confirmation and reminder messages.  Send reports
// success; failures are logged by the implementation and must never
// fail the triggering booking operation.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string, html bool) bool
}

// Broadcaster publishes booking lifecycle events to real-time
// subscribers.  Fire-and-forget: no delivery guarantee, and errors are
// ignored by the engine.
type Broadcaster interface {
	Publish(ctx context.Context, event string, payload any) error
}
