// Package queue defines the booking lifecycle events exchanged over the
// message broker and the publisher/consumer that carry them.
package queue

import (
	"time"

	"github.com/iliyamo/facility-booking/internal/model"
)

// Event names published on the booking.events queue.  Subscribers use
// these as live-UI refresh signals; the queue is not a source of truth.
const (
	EventBookingCreated = "booking_created"
	EventBookingUpdated = "booking_updated"
	EventBookingDeleted = "booking_deleted"
	EventBookingsList   = "bookings_list"
	EventBookingDetails = "booking_details"
)

// Envelope wraps every published message with its event name and
// publication time.
type Envelope struct {
	Event      string      `json:"event"`
	OccurredAt string      `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// BookingPayload is the wire form of a booking carried in lifecycle
// events.  It contains enough information for downstream consumers to
// log or refresh a UI without querying the primary database.
type BookingPayload struct {
	BookingID          uint64 `json:"booking_id"`
	Reference          string `json:"reference"`
	ClientID           uint64 `json:"client_id"`
	FacilityID         uint64 `json:"facility_id"`
	UserID             uint64 `json:"user_id"`
	StartTime          string `json:"start_time"`
	EndTime            string `json:"end_time"`
	Status             string `json:"status"`
	ConditionsAccepted bool   `json:"conditions_accepted"`
}

// NewBookingPayload converts a booking into its event wire form.
func NewBookingPayload(b *model.Booking) BookingPayload {
	return BookingPayload{
		BookingID:          b.ID,
		Reference:          b.Reference,
		ClientID:           b.ClientID,
		FacilityID:         b.FacilityID,
		UserID:             b.UserID,
		StartTime:          b.StartTime.UTC().Format(time.RFC3339),
		EndTime:            b.EndTime.UTC().Format(time.RFC3339),
		Status:             b.Status,
		ConditionsAccepted: b.ConditionsAccepted,
	}
}
