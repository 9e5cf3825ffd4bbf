package model

import "time"

// Default booking limits applied when no explicit quota rule exists for
// a (client, user, facility) combination.  Booking must remain possible
// for users without custom quotas, so lookups fall back to these rather
// than failing.
const (
	DefaultMaxWeeksAdvance     = 4
	DefaultMaxBookingsPerWeek  = 3
	DefaultMaxBookingsPerMonth = 10
)

// QuotaRule holds per-user-per-facility booking limits.  One row exists
// per (client, user, facility); the admission pipeline resolves the
// effective limits through these rows, falling back to the defaults
// above when none matches.
//
// Fields:
//  ID                  – primary key identifier.
//  ClientID            – tenant the rule belongs to.
//  UserID              – user the rule constrains.
//  FacilityID          – facility the rule applies to.
//  MaxBookingsPerWeek  – bookings allowed per ISO week.
//  MaxBookingsPerMonth – bookings allowed per calendar month.
//  MaxWeeksAdvance     – how many weeks ahead a booking may start.
//  OverriddenBy        – user who last changed the rule (nil if never
//                        overridden).
//  CreatedAt           – creation timestamp.
//  UpdatedAt           – last update timestamp.
type QuotaRule struct {
	ID                  uint64    // quota_rules.id
	ClientID            uint64    // quota_rules.client_id
	UserID              uint64    // quota_rules.user_id
	FacilityID          uint64    // quota_rules.facility_id
	MaxBookingsPerWeek  int       // quota_rules.max_bookings_per_week
	MaxBookingsPerMonth int       // quota_rules.max_bookings_per_month
	MaxWeeksAdvance     int       // quota_rules.max_weeks_advance
	OverriddenBy        *uint64   // quota_rules.overridden_by (nullable)
	CreatedAt           time.Time // quota_rules.created_at
	UpdatedAt           time.Time // quota_rules.updated_at
}

// Quota is the effective set of limits returned by the resolver.  It is
// either copied from a QuotaRule or built from the defaults.
type Quota struct {
	MaxWeeksAdvance     int
	MaxBookingsPerWeek  int
	MaxBookingsPerMonth int
}

// DefaultQuota returns the hard-coded fallback limits.
func DefaultQuota() Quota {
	return Quota{
		MaxWeeksAdvance:     DefaultMaxWeeksAdvance,
		MaxBookingsPerWeek:  DefaultMaxBookingsPerWeek,
		MaxBookingsPerMonth: DefaultMaxBookingsPerMonth,
	}
}
