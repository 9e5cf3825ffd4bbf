package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/facility-booking/internal/model"
)

// HistoryRepo provides persistence for the booking_history ledger.  The
// ledger is append-mostly: rows are created in the pending state when a
// booking is admitted (or healed by the sweeper) and later flipped to a
// terminal state exactly once.  All timestamps are stored in UTC.
type HistoryRepo struct {
	db *sql.DB
}

// NewHistoryRepo returns a new HistoryRepo bound to the given database.
func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{db: db} }

const historyColumns = `id, booking_id, client_id, facility_id, user_id, start_time, end_time,
	status, reminder_sent, conditions_accepted, deleted_at, created_at, updated_at`

func scanHistory(row interface{ Scan(dest ...any) error }) (*model.BookingHistory, error) {
	var h model.BookingHistory
	var bookingID sql.NullInt64
	var deletedAt sql.NullTime
	err := row.Scan(
		&h.ID, &bookingID, &h.ClientID, &h.FacilityID, &h.UserID,
		&h.StartTime, &h.EndTime, &h.Status, &h.ReminderSent,
		&h.ConditionsAccepted, &deletedAt, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if bookingID.Valid {
		id := uint64(bookingID.Int64)
		h.BookingID = &id
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		h.DeletedAt = &t
	}
	return &h, nil
}

// Create inserts a new history record and populates the generated ID
// and timestamps on the provided record.
func (r *HistoryRepo) Create(ctx context.Context, h *model.BookingHistory) error {
	const q = `INSERT INTO booking_history
		(booking_id, client_id, facility_id, user_id, start_time, end_time,
		 status, reminder_sent, conditions_accepted, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var bookingID any
	if h.BookingID != nil {
		bookingID = *h.BookingID
	}
	var deletedAt any
	if h.DeletedAt != nil {
		deletedAt = h.DeletedAt.UTC()
	}
	res, err := r.db.ExecContext(ctx, q,
		bookingID, h.ClientID, h.FacilityID, h.UserID,
		h.StartTime.UTC(), h.EndTime.UTC(), h.Status, h.ReminderSent,
		h.ConditionsAccepted, deletedAt,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM booking_history WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, h.ID).Scan(&h.CreatedAt, &h.UpdatedAt)
}

// FindForBooking locates the history record mirroring a booking.  The
// back-reference id is preferred; records lacking one (legacy data) are
// matched by the (client, facility, user, start, end) tuple.  Returns
// (nil, nil) when no record matches.
func (r *HistoryRepo) FindForBooking(ctx context.Context, b *model.Booking) (*model.BookingHistory, error) {
	q := `SELECT ` + historyColumns + ` FROM booking_history
		  WHERE booking_id = ?
			 OR (booking_id IS NULL AND client_id = ? AND facility_id = ? AND user_id = ?
				 AND start_time = ? AND end_time = ?)
		  ORDER BY booking_id IS NULL, id
		  LIMIT 1`
	h, err := scanHistory(r.db.QueryRowContext(ctx, q,
		b.ID, b.ClientID, b.FacilityID, b.UserID, b.StartTime.UTC(), b.EndTime.UTC()))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return h, err
}

// GetByID returns a single history record, or (nil, nil) when absent.
func (r *HistoryRepo) GetByID(ctx context.Context, id uint64) (*model.BookingHistory, error) {
	q := `SELECT ` + historyColumns + ` FROM booking_history WHERE id = ?`
	h, err := scanHistory(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return h, err
}

// MarkReminderSent flips reminder_sent to true.  The flag is never
// reset, which is what makes reminder delivery at-most-once per
// booking even across process restarts.
func (r *HistoryRepo) MarkReminderSent(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE booking_history SET reminder_sent = TRUE WHERE id = ?`, id)
	return err
}

// Terminate moves a history record into a terminal state (completed or
// deleted) and stamps deleted_at.  Terminating an already-terminal
// record rewrites the same state and is harmless, which keeps the
// sweeper idempotent.
func (r *HistoryRepo) Terminate(ctx context.Context, id uint64, status string, at time.Time) error {
	const q = `UPDATE booking_history SET status = ?, deleted_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, status, at.UTC(), id)
	return err
}

// AttachBookingID backfills the back-reference on a legacy record.
func (r *HistoryRepo) AttachBookingID(ctx context.Context, historyID, bookingID uint64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE booking_history SET booking_id = ? WHERE id = ?`, bookingID, historyID)
	return err
}

// ListOrphans returns pending history records that still lack a
// back-reference id.  The sweeper's backfill pass matches these against
// the live set by tuple.
func (r *HistoryRepo) ListOrphans(ctx context.Context) ([]model.BookingHistory, error) {
	q := `SELECT ` + historyColumns + ` FROM booking_history
		  WHERE booking_id IS NULL AND status = ?`
	rows, err := r.db.QueryContext(ctx, q, model.HistoryStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.BookingHistory, 0)
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	return out, rows.Err()
}

// List returns history records matching the filter, newest first.
func (r *HistoryRepo) List(ctx context.Context, f model.HistoryFilter) ([]model.BookingHistory, error) {
	query := `SELECT ` + historyColumns + ` FROM booking_history`
	where := make([]string, 0, 4)
	args := make([]any, 0, 4)
	if f.ClientID != 0 {
		where = append(where, "client_id = ?")
		args = append(args, f.ClientID)
	}
	if f.FacilityID != 0 {
		where = append(where, "facility_id = ?")
		args = append(args, f.FacilityID)
	}
	if f.UserID != 0 {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.BookingHistory, 0)
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	return out, rows.Err()
}
