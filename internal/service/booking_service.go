package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/facility-booking/internal/model"
	"github.com/iliyamo/facility-booking/internal/queue"
	"github.com/iliyamo/facility-booking/internal/repository"
)

// BookingService is the admission pipeline for bookings.  A create
// request runs validation, quota checks and the conflict pre-check in a
// fixed order, persists the booking together with its pending history
// record, and then fires the non-blocking side effects (broadcast,
// confirmation mail, success audit entry).  Every rejection is written
// to the audit trail with the same message the caller receives.
type BookingService struct {
	bookings   BookingStore
	history    HistoryStore
	quotas     *QuotaResolver
	facilities FacilityStore
	users      UserStore
	audit      AuditStore
	notifier   Notifier
	events     Broadcaster

	// now is replaceable in tests.
	now func() time.Time
}

// NewBookingService constructs the admission pipeline.  All
// dependencies must be non-nil; collaborators are injected here rather
// than pulled from any ambient context.
func NewBookingService(
	bookings BookingStore,
	history HistoryStore,
	quotas *QuotaResolver,
	facilities FacilityStore,
	users UserStore,
	audit AuditStore,
	notifier Notifier,
	events Broadcaster,
) *BookingService {
	if bookings == nil || history == nil || quotas == nil || facilities == nil ||
		users == nil || audit == nil || notifier == nil || events == nil {
		panic("nil dependency passed to NewBookingService")
	}
	return &BookingService{
		bookings:   bookings,
		history:    history,
		quotas:     quotas,
		facilities: facilities,
		users:      users,
		audit:      audit,
		notifier:   notifier,
		events:     events,
		now:        time.Now,
	}
}

// CreateBookingInput carries a create request into the pipeline.
type CreateBookingInput struct {
	ClientID           uint64
	FacilityID         uint64
	UserID             uint64
	StartTime          time.Time
	EndTime            time.Time
	ConditionsAccepted bool
}

// UpdateBookingInput is a partial update; nil fields are unchanged.
type UpdateBookingInput struct {
	StartTime *time.Time
	EndTime   *time.Time
	Status    *string
}

// Create admits a new booking.  The validation steps run in order and
// each failure is audited synchronously before being returned, so the
// audit trail and the caller always agree on the reason.  On success
// the booking and its pending history record are persisted before the
// response; broadcast, confirmation mail and the success audit entry
// run in the background and cannot fail the request.
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (*model.Booking, error) {
	fail := func(err error) (*model.Booking, error) {
		s.auditFailure(ctx, in, err)
		return nil, err
	}

	if in.ClientID == 0 || in.FacilityID == 0 || in.UserID == 0 ||
		in.StartTime.IsZero() || in.EndTime.IsZero() {
		return fail(validationf("all fields are required"))
	}
	if !in.ConditionsAccepted {
		return fail(validationf("booking conditions must be accepted"))
	}
	if !in.StartTime.Before(in.EndTime) {
		return fail(validationf("start time must be before end time"))
	}

	fac, err := s.facilities.GetByID(ctx, in.FacilityID)
	if err != nil {
		return fail(persistence(err))
	}
	if fac == nil {
		return fail(notFoundf("facility %d does not exist", in.FacilityID))
	}

	usr, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return fail(persistence(err))
	}
	if usr == nil {
		return fail(notFoundf("user %d does not exist", in.UserID))
	}

	quota, err := s.quotas.Resolve(ctx, in.ClientID, in.UserID, in.FacilityID)
	if err != nil {
		return fail(err)
	}

	// A booking may start at most MaxWeeksAdvance weeks from now;
	// starting exactly on the boundary is allowed.
	now := s.now().UTC()
	horizon := now.AddDate(0, 0, 7*quota.MaxWeeksAdvance)
	if in.StartTime.After(horizon) {
		return fail(quotaf("start time exceeds the %d-week advance window", quota.MaxWeeksAdvance))
	}

	weekFrom, weekTo := weekBounds(in.StartTime)
	n, err := s.bookings.CountInRange(ctx, in.ClientID, in.UserID, in.FacilityID, weekFrom, weekTo)
	if err != nil {
		return fail(persistence(err))
	}
	if n >= quota.MaxBookingsPerWeek {
		return fail(quotaf("weekly limit of %d bookings reached for this facility", quota.MaxBookingsPerWeek))
	}

	monthFrom, monthTo := monthBounds(in.StartTime)
	n, err = s.bookings.CountInRange(ctx, in.ClientID, in.UserID, in.FacilityID, monthFrom, monthTo)
	if err != nil {
		return fail(persistence(err))
	}
	if n >= quota.MaxBookingsPerMonth {
		return fail(quotaf("monthly limit of %d bookings reached for this facility", quota.MaxBookingsPerMonth))
	}

	// Conflict pre-check across all clients: the facility is a physical
	// resource, so another tenant's booking blocks the slot too.
	conflict, err := s.bookings.HasConflict(ctx, in.FacilityID, in.StartTime, in.EndTime, 0)
	if err != nil {
		return fail(persistence(err))
	}
	if conflict {
		return fail(fmt.Errorf("%w: facility is already booked for this time", ErrConflict))
	}

	b := &model.Booking{
		Reference:          uuid.NewString(),
		ClientID:           in.ClientID,
		FacilityID:         in.FacilityID,
		UserID:             in.UserID,
		StartTime:          in.StartTime.UTC(),
		EndTime:            in.EndTime.UTC(),
		Status:             model.BookingStatusConfirmed,
		ConditionsAccepted: true,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		// The store re-checks under its facility lock; losing that
		// race surfaces exactly like the pre-check rejection.
		if errors.Is(err, repository.ErrOverlap) {
			return fail(fmt.Errorf("%w: facility is already booked for this time", ErrConflict))
		}
		return fail(persistence(err))
	}

	// The pending history mirror is created in lockstep with the
	// booking.  If this write fails the booking still stands; the
	// sweeper's healing pass recreates the mirror on its next run.
	bookingID := b.ID
	h := &model.BookingHistory{
		BookingID:          &bookingID,
		ClientID:           b.ClientID,
		FacilityID:         b.FacilityID,
		UserID:             b.UserID,
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		Status:             model.HistoryStatusPending,
		ConditionsAccepted: b.ConditionsAccepted,
	}
	if err := s.history.Create(ctx, h); err != nil {
		log.Printf("booking: history mirror for booking %d failed: %v", b.ID, err)
	}

	go s.afterCreate(*b, usr.Email, fac.Name)
	return b, nil
}

// afterCreate runs the non-blocking side effects of a successful
// admission.  The HTTP response never waits on any of these.
func (s *BookingService) afterCreate(b model.Booking, email, facilityName string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	_ = s.events.Publish(ctx, queue.EventBookingCreated, queue.NewBookingPayload(&b))

	body := fmt.Sprintf("Your booking of %s from %s to %s has been confirmed.",
		facilityName,
		b.StartTime.Format(time.RFC1123),
		b.EndTime.Format(time.RFC1123))
	s.notifier.Send(ctx, email, "Booking confirmed", body, false)

	s.auditSuccess(ctx, &b)
}

// Update re-validates ordering and conflicts for the fields being
// changed, persists the booking and emits a booking_updated event.
func (s *BookingService) Update(ctx context.Context, id uint64, in UpdateBookingInput) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, persistence(err)
	}
	if b == nil {
		return nil, notFoundf("booking %d does not exist", id)
	}

	retimed := in.StartTime != nil || in.EndTime != nil
	if in.StartTime != nil {
		b.StartTime = in.StartTime.UTC()
	}
	if in.EndTime != nil {
		b.EndTime = in.EndTime.UTC()
	}
	if retimed {
		if !b.StartTime.Before(b.EndTime) {
			return nil, validationf("start time must be before end time")
		}
		conflict, err := s.bookings.HasConflict(ctx, b.FacilityID, b.StartTime, b.EndTime, b.ID)
		if err != nil {
			return nil, persistence(err)
		}
		if conflict {
			return nil, fmt.Errorf("%w: facility is already booked for this time", ErrConflict)
		}
	}
	if in.Status != nil {
		if !model.ValidBookingStatus(*in.Status) {
			return nil, validationf("unknown status %q", *in.Status)
		}
		b.Status = *in.Status
	}

	if err := s.bookings.Update(ctx, b); err != nil {
		if errors.Is(err, repository.ErrOverlap) {
			return nil, fmt.Errorf("%w: facility is already booked for this time", ErrConflict)
		}
		return nil, persistence(err)
	}

	updated := *b
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = s.events.Publish(ctx, queue.EventBookingUpdated, queue.NewBookingPayload(&updated))
	}()
	return b, nil
}

// Delete writes a terminal history record before removing the live
// booking, so the ledger never loses a booking's trace.  The durable
// reminder flag travels with the history record, which is also what
// cancels a not-yet-sent reminder: the sweeper only sends for bookings
// that still exist.
func (s *BookingService) Delete(ctx context.Context, id uint64) error {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return persistence(err)
	}
	if b == nil {
		return notFoundf("booking %d does not exist", id)
	}

	now := s.now().UTC()
	h, err := s.history.FindForBooking(ctx, b)
	if err != nil {
		return persistence(err)
	}
	if h != nil {
		if err := s.history.Terminate(ctx, h.ID, model.HistoryStatusDeleted, now); err != nil {
			return persistence(err)
		}
	} else {
		bookingID := b.ID
		deletedAt := now
		rec := &model.BookingHistory{
			BookingID:          &bookingID,
			ClientID:           b.ClientID,
			FacilityID:         b.FacilityID,
			UserID:             b.UserID,
			StartTime:          b.StartTime,
			EndTime:            b.EndTime,
			Status:             model.HistoryStatusDeleted,
			ConditionsAccepted: b.ConditionsAccepted,
			DeletedAt:          &deletedAt,
		}
		if err := s.history.Create(ctx, rec); err != nil {
			return persistence(err)
		}
	}

	if err := s.bookings.Delete(ctx, b.ID); err != nil {
		return persistence(err)
	}

	deleted := *b
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = s.events.Publish(ctx, queue.EventBookingDeleted, queue.NewBookingPayload(&deleted))
	}()
	return nil
}

// Get returns one booking and emits a booking_details event for
// real-time subscribers, mirroring the list behaviour.
func (s *BookingService) Get(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, persistence(err)
	}
	if b == nil {
		return nil, notFoundf("booking %d does not exist", id)
	}
	detail := *b
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = s.events.Publish(ctx, queue.EventBookingDetails, queue.NewBookingPayload(&detail))
	}()
	return b, nil
}

// List returns bookings matching the filter and broadcasts the
// refreshed list to subscribers.
func (s *BookingService) List(ctx context.Context, f model.BookingFilter) ([]model.Booking, error) {
	bookings, err := s.bookings.List(ctx, f)
	if err != nil {
		return nil, persistence(err)
	}
	snapshot := make([]queue.BookingPayload, 0, len(bookings))
	for i := range bookings {
		snapshot = append(snapshot, queue.NewBookingPayload(&bookings[i]))
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = s.events.Publish(ctx, queue.EventBookingsList, snapshot)
	}()
	return bookings, nil
}

// ListHistory returns ledger entries matching the filter.
func (s *BookingService) ListHistory(ctx context.Context, f model.HistoryFilter) ([]model.BookingHistory, error) {
	out, err := s.history.List(ctx, f)
	if err != nil {
		return nil, persistence(err)
	}
	return out, nil
}

// GetHistory returns one ledger entry.
func (s *BookingService) GetHistory(ctx context.Context, id uint64) (*model.BookingHistory, error) {
	h, err := s.history.GetByID(ctx, id)
	if err != nil {
		return nil, persistence(err)
	}
	if h == nil {
		return nil, notFoundf("history record %d does not exist", id)
	}
	return h, nil
}

// ListLogs returns audit-trail entries matching the filter.
func (s *BookingService) ListLogs(ctx context.Context, f model.LogFilter) ([]model.BookingLog, error) {
	out, err := s.audit.List(ctx, f)
	if err != nil {
		return nil, persistence(err)
	}
	return out, nil
}

// auditFailure durably records a rejected admission attempt.  It runs
// synchronously so the trail is written before the caller sees the
// error.
func (s *BookingService) auditFailure(ctx context.Context, in CreateBookingInput, cause error) {
	data, _ := json.Marshal(map[string]any{
		"client_id":           in.ClientID,
		"facility_id":         in.FacilityID,
		"user_id":             in.UserID,
		"start_time":          in.StartTime,
		"end_time":            in.EndTime,
		"conditions_accepted": in.ConditionsAccepted,
	})
	entry := &model.BookingLog{
		ClientID:   in.ClientID,
		UserID:     in.UserID,
		FacilityID: in.FacilityID,
		Status:     model.LogStatusError,
		Message:    cause.Error(),
		Data:       string(data),
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		log.Printf("booking: audit write failed: %v", err)
	}
}

// auditSuccess records a successful admission.
func (s *BookingService) auditSuccess(ctx context.Context, b *model.Booking) {
	data, _ := json.Marshal(map[string]any{
		"booking_id": b.ID,
		"reference":  b.Reference,
		"start_time": b.StartTime,
		"end_time":   b.EndTime,
	})
	entry := &model.BookingLog{
		ClientID:   b.ClientID,
		UserID:     b.UserID,
		FacilityID: b.FacilityID,
		Status:     model.LogStatusSuccess,
		Message:    "booking created",
		Data:       string(data),
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		log.Printf("booking: audit write failed: %v", err)
	}
}
