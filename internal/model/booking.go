package model

import "time"

// Booking statuses stored in the bookings.status column.  These are
// display/administrative states; the terminal outcome of a booking is
// recorded on its BookingHistory row, not here.
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusPending   = "pending"
	BookingStatusCompleted = "completed"
)

// ValidBookingStatus reports whether s is one of the allowed booking
// statuses.  Used when validating update requests.
func ValidBookingStatus(s string) bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusPending, BookingStatusCompleted:
		return true
	}
	return false
}

// Booking represents a live reservation of a facility for a time
// interval by a user.  Rows live in the `bookings` table only while the
// booking is active; once the end time passes (or the booking is
// deleted) the row is removed and its durable trace lives on in
// `booking_history`.
//
// Fields:
//  ID                 – primary key identifier.
//  Reference          – opaque public reference (UUID string).
//  ClientID           – tenant that owns the booking.
//  FacilityID         – facility being booked.
//  UserID             – user the booking is for.
//  StartTime          – interval start (UTC).  Always before EndTime.
//  EndTime            – interval end (UTC).  Intervals are half-open:
//                       [StartTime, EndTime).
//  Status             – confirmed, pending or completed.
//  ConditionsAccepted – whether the booking conditions were accepted.
//  CreatedAt          – creation timestamp.
//  UpdatedAt          – last update timestamp.
type Booking struct {
	ID                 uint64    // bookings.id
	Reference          string    // bookings.reference
	ClientID           uint64    // bookings.client_id
	FacilityID         uint64    // bookings.facility_id
	UserID             uint64    // bookings.user_id
	StartTime          time.Time // bookings.start_time
	EndTime            time.Time // bookings.end_time
	Status             string    // bookings.status
	ConditionsAccepted bool      // bookings.conditions_accepted
	CreatedAt          time.Time // bookings.created_at
	UpdatedAt          time.Time // bookings.updated_at
}

// BookingFilter narrows booking list queries.  Zero values mean "any".
type BookingFilter struct {
	ClientID   uint64
	FacilityID uint64
	UserID     uint64
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect.  Touching boundaries (e1 == s2 or e2 == s1) do not count
// as an overlap.  The SQL conflict query in the booking repository
// mirrors this predicate.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}
