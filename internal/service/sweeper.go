package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/facility-booking/internal/model"
)

// reminderLead is how long before a booking's start the reminder is
// sent.
const reminderLead = 6 * time.Hour

// Sweeper reconciles the live booking set with the history ledger.  A
// pass heals missing history mirrors, sends pre-start reminders, moves
// ended bookings into the ledger with a terminal state, and backfills
// missing back-references on legacy records.
//
// Sweeps are idempotent and safe to run concurrently with request
// handling and with each other: reminder delivery is guarded by the
// durable reminder_sent flag (no in-process timers), and a booking that
// disappears mid-pass (removed by a delete request or another sweep) is
// a benign outcome, not an error.
type Sweeper struct {
	bookings   BookingStore
	history    HistoryStore
	users      UserStore
	facilities FacilityStore
	notifier   Notifier

	now func() time.Time
}

// NewSweeper constructs a sweeper.  All dependencies must be non-nil.
func NewSweeper(bookings BookingStore, history HistoryStore, users UserStore, facilities FacilityStore, notifier Notifier) *Sweeper {
	if bookings == nil || history == nil || users == nil || facilities == nil || notifier == nil {
		panic("nil dependency passed to NewSweeper")
	}
	return &Sweeper{
		bookings:   bookings,
		history:    history,
		users:      users,
		facilities: facilities,
		notifier:   notifier,
		now:        time.Now,
	}
}

// Run executes a sweep every interval until ctx is cancelled.  Main
// starts this in its own goroutine; the manual cleanup endpoint calls
// Sweep directly.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Printf("sweeper: running every %s", interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("sweeper: stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			s.Sweep(ctx, s.now())
		}
	}
}

// Sweep runs one reconciliation pass relative to now.  A failure on one
// booking is logged and does not abort processing of the rest.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) {
	now = now.UTC()

	live, err := s.bookings.List(ctx, model.BookingFilter{})
	if err != nil {
		log.Printf("sweeper: listing live bookings failed: %v", err)
		return
	}

	for i := range live {
		if err := s.sweepOne(ctx, &live[i], now); err != nil {
			log.Printf("sweeper: booking %d: %v", live[i].ID, err)
		}
	}

	s.backfill(ctx, live)
}

// sweepOne applies the healing, reminder and completion steps to a
// single booking.
func (s *Sweeper) sweepOne(ctx context.Context, b *model.Booking, now time.Time) error {
	h, err := s.history.FindForBooking(ctx, b)
	if err != nil {
		return fmt.Errorf("history lookup: %w", err)
	}
	if h == nil {
		// Heal bookings that reached the live set without a mirror
		// (external inserts, legacy data, or a failed mirror write).
		bookingID := b.ID
		h = &model.BookingHistory{
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
			return fmt.Errorf("history heal: %w", err)
		}
		log.Printf("sweeper: added missing history record for booking %d", b.ID)
	}

	until := b.StartTime.Sub(now)
	if until > 0 && until <= reminderLead && !h.ReminderSent {
		if err := s.sendReminder(ctx, b, h); err != nil {
			return err
		}
	}

	if !b.EndTime.After(now) {
		if err := s.history.Terminate(ctx, h.ID, model.HistoryStatusCompleted, now); err != nil {
			return fmt.Errorf("history terminate: %w", err)
		}
		if err := s.bookings.Delete(ctx, b.ID); err != nil {
			return fmt.Errorf("booking delete: %w", err)
		}
		log.Printf("sweeper: completed booking %d", b.ID)
	}
	return nil
}

// sendReminder delivers the pre-start reminder at most once.  The
// reminder_sent flag is only set after a successful send, so a failed
// delivery is retried on the next sweep.
func (s *Sweeper) sendReminder(ctx context.Context, b *model.Booking, h *model.BookingHistory) error {
	// Re-check existence right before sending: the booking may have
	// been deleted since the pass started, and a reminder for a
	// deleted booking must not go out.
	current, err := s.bookings.GetByID(ctx, b.ID)
	if err != nil {
		return fmt.Errorf("existence re-check: %w", err)
	}
	if current == nil {
		return nil
	}

	usr, err := s.users.GetByID(ctx, b.UserID)
	if err != nil {
		return fmt.Errorf("user lookup: %w", err)
	}
	if usr == nil {
		return fmt.Errorf("user %d missing, reminder skipped", b.UserID)
	}

	facilityName := fmt.Sprintf("facility %d", b.FacilityID)
	if fac, err := s.facilities.GetByID(ctx, b.FacilityID); err == nil && fac != nil {
		facilityName = fac.Name
	}

	body := fmt.Sprintf("Reminder: your booking of %s starts at %s.",
		facilityName, b.StartTime.Format(time.RFC1123))
	if !s.notifier.Send(ctx, usr.Email, "Upcoming booking reminder", body, false) {
		return fmt.Errorf("reminder send to %s failed", usr.Email)
	}
	if err := s.history.MarkReminderSent(ctx, h.ID); err != nil {
		return fmt.Errorf("marking reminder sent: %w", err)
	}
	return nil
}

// backfill attaches back-reference ids to pending history records that
// lack one, matching by the (client, facility, user, start, end) tuple
// against the live set.  Self-healing for rows created before
// back-references existed.
func (s *Sweeper) backfill(ctx context.Context, live []model.Booking) {
	orphans, err := s.history.ListOrphans(ctx)
	if err != nil {
		log.Printf("sweeper: listing orphan history records failed: %v", err)
		return
	}
	for _, h := range orphans {
		for i := range live {
			b := &live[i]
			if h.ClientID == b.ClientID && h.FacilityID == b.FacilityID &&
				h.UserID == b.UserID &&
				h.StartTime.Equal(b.StartTime) && h.EndTime.Equal(b.EndTime) {
				if err := s.history.AttachBookingID(ctx, h.ID, b.ID); err != nil {
					log.Printf("sweeper: backfill of history %d failed: %v", h.ID, err)
				}
				break
			}
		}
	}
}
