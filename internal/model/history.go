package model

import "time"

// BookingHistory statuses stored in booking_history.status.  A pending
// record mirrors a still-active booking; completed and deleted are
// terminal outcomes.
const (
	HistoryStatusPending   = "pending"
	HistoryStatusCompleted = "completed"
	HistoryStatusDeleted   = "deleted"
)

// BookingHistory is the durable ledger entry for a booking.  One pending
// row exists for every live booking, created together with it; the
// sweeper heals any booking that reached the live table without one.
// When a booking ends naturally the row becomes completed, when it is
// deleted explicitly the row becomes deleted.  Either way DeletedAt
// records when the booking left the live set.
//
// BookingID is nullable: rows backfilled from legacy data may lack the
// back-reference and are matched by the (client, facility, user, start,
// end) tuple until the sweeper attaches the id.
//
// Fields:
//  ID                 – primary key identifier.
//  BookingID          – originating bookings.id (nil for legacy rows).
//  ClientID           – copy of the booking's client.
//  FacilityID         – copy of the booking's facility.
//  UserID             – copy of the booking's user.
//  StartTime          – copy of the booking's interval start (UTC).
//  EndTime            – copy of the booking's interval end (UTC).
//  Status             – pending, completed or deleted.
//  ReminderSent       – set true exactly once when the pre-start
//                       reminder has been delivered.
//  ConditionsAccepted – copy of the booking's acceptance flag.
//  DeletedAt          – when the booking left the live set (nil while
//                       pending).
//  CreatedAt          – creation timestamp.
//  UpdatedAt          – last update timestamp.
type BookingHistory struct {
	ID                 uint64     // booking_history.id
	BookingID          *uint64    // booking_history.booking_id (nullable)
	ClientID           uint64     // booking_history.client_id
	FacilityID         uint64     // booking_history.facility_id
	UserID             uint64     // booking_history.user_id
	StartTime          time.Time  // booking_history.start_time
	EndTime            time.Time  // booking_history.end_time
	Status             string     // booking_history.status
	ReminderSent       bool       // booking_history.reminder_sent
	ConditionsAccepted bool       // booking_history.conditions_accepted
	DeletedAt          *time.Time // booking_history.deleted_at (nullable)
	CreatedAt          time.Time  // booking_history.created_at
	UpdatedAt          time.Time  // booking_history.updated_at
}

// HistoryFilter narrows history list queries.  Zero values mean "any".
type HistoryFilter struct {
	ClientID   uint64
	FacilityID uint64
	UserID     uint64
	Status     string
}
