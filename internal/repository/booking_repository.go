package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/facility-booking/internal/model"
)

// BookingRepo provides persistence for the live booking set.  All
// timestamp fields are stored in UTC.  Writes that could collide on a
// facility (create, retime) run on a dedicated connection holding a
// MySQL advisory lock keyed by the facility id, so that the overlap
// check and the write are atomic with respect to concurrent requests.
// Two racing creates for the same interval therefore cannot both pass
// the conflict check; the loser observes the winner's row and receives
// ErrOverlap.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// facilityLockName builds the advisory lock key for a facility.
func facilityLockName(facilityID uint64) string {
	return fmt.Sprintf("booking:facility:%d", facilityID)
}

// withFacilityLock runs fn on a single connection while holding the
// advisory lock for the facility.  The lock is always released before
// the connection is returned to the pool.
func (r *BookingRepo) withFacilityLock(ctx context.Context, facilityID uint64, fn func(conn *sql.Conn) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	name := facilityLockName(facilityID)
	var got sql.NullInt64
	if err := conn.QueryRowContext(ctx, `SELECT GET_LOCK(?, 5)`, name).Scan(&got); err != nil {
		return err
	}
	if !got.Valid || got.Int64 != 1 {
		return fmt.Errorf("advisory lock timeout for %s", name)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), `SELECT RELEASE_LOCK(?)`, name)
	}()

	return fn(conn)
}

// overlapCountOn counts bookings on the facility whose interval
// intersects [start, end), optionally excluding one booking id.  The
// predicate is the half-open overlap test: start_time < end AND
// end_time > start.  q must provide QueryRowContext (either *sql.Conn,
// *sql.Tx or *sql.DB).
func overlapCountOn(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, facilityID uint64, start, end time.Time, excludeID uint64) (int, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE facility_id = ? AND start_time < ? AND end_time > ?`
	args := []any{facilityID, end, start}
	if excludeID != 0 {
		query += ` AND id <> ?`
		args = append(args, excludeID)
	}
	var n int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Create inserts a new booking after re-checking, under the facility's
// advisory lock, that no overlapping booking exists.  It populates the
// generated ID and timestamps on the provided record.  ErrOverlap is
// returned when a conflicting booking is present; the caller has
// usually already performed a conflict pre-check, so hitting this path
// means another request won the race.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	return r.withFacilityLock(ctx, b.FacilityID, func(conn *sql.Conn) error {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		committed := false
		defer func() {
			if !committed {
				_ = tx.Rollback()
			}
		}()

		n, err := overlapCountOn(ctx, tx, b.FacilityID, b.StartTime, b.EndTime, 0)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrOverlap
		}

		const q = `INSERT INTO bookings
			(reference, client_id, facility_id, user_id, start_time, end_time, status, conditions_accepted)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
		res, err := tx.ExecContext(ctx, q,
			b.Reference, b.ClientID, b.FacilityID, b.UserID,
			b.StartTime.UTC(), b.EndTime.UTC(), b.Status, b.ConditionsAccepted,
		)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		b.ID = uint64(id)

		// Query back the full row to populate timestamps and defaults.
		const sel = `SELECT created_at, updated_at FROM bookings WHERE id = ?`
		if err := tx.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		committed = true
		return nil
	})
}

// Update rewrites a booking's interval and status.  When the interval
// changes the same advisory-lock discipline as Create applies, with the
// booking itself excluded from the overlap comparison set.
func (r *BookingRepo) Update(ctx context.Context, b *model.Booking) error {
	return r.withFacilityLock(ctx, b.FacilityID, func(conn *sql.Conn) error {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		committed := false
		defer func() {
			if !committed {
				_ = tx.Rollback()
			}
		}()

		n, err := overlapCountOn(ctx, tx, b.FacilityID, b.StartTime, b.EndTime, b.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrOverlap
		}

		const q = `UPDATE bookings SET start_time = ?, end_time = ?, status = ? WHERE id = ?`
		if _, err := tx.ExecContext(ctx, q, b.StartTime.UTC(), b.EndTime.UTC(), b.Status, b.ID); err != nil {
			return err
		}
		const sel = `SELECT created_at, updated_at FROM bookings WHERE id = ?`
		if err := tx.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		committed = true
		return nil
	})
}

// GetByID returns the booking with the given id, or (nil, nil) when no
// such booking exists.  Absence is a regular outcome for the booking
// engine (the sweeper may have removed the row) so it is not an error.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT id, reference, client_id, facility_id, user_id, start_time, end_time,
					  status, conditions_accepted, created_at, updated_at
			   FROM bookings WHERE id = ?`
	var b model.Booking
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.Reference, &b.ClientID, &b.FacilityID, &b.UserID,
		&b.StartTime, &b.EndTime, &b.Status, &b.ConditionsAccepted,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Delete removes a booking from the live set.  Deleting a booking that
// no longer exists is benign: the sweeper and the admission pipeline
// may both try to remove the same row, and the second attempt must not
// fail.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	return err
}

// List returns bookings matching the filter ordered by start time.
func (r *BookingRepo) List(ctx context.Context, f model.BookingFilter) ([]model.Booking, error) {
	query := `SELECT id, reference, client_id, facility_id, user_id, start_time, end_time,
					 status, conditions_accepted, created_at, updated_at
			  FROM bookings`
	where := make([]string, 0, 3)
	args := make([]any, 0, 3)
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
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY start_time"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Booking, 0)
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(
			&b.ID, &b.Reference, &b.ClientID, &b.FacilityID, &b.UserID,
			&b.StartTime, &b.EndTime, &b.Status, &b.ConditionsAccepted,
			&b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// HasConflict reports whether any booking on the facility overlaps the
// half-open interval [start, end).  excludeID, when non-zero, removes
// the booking being updated from the comparison set.  This read is the
// admission pipeline's pre-check; the authoritative check happens again
// under the advisory lock inside Create/Update.
func (r *BookingRepo) HasConflict(ctx context.Context, facilityID uint64, start, end time.Time, excludeID uint64) (bool, error) {
	n, err := overlapCountOn(ctx, r.db, facilityID, start, end, excludeID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountInRange counts bookings for (client, user, facility) whose start
// time falls in [from, to).  The quota checks use this with ISO-week
// and calendar-month windows.
func (r *BookingRepo) CountInRange(ctx context.Context, clientID, userID, facilityID uint64, from, to time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM bookings
			   WHERE client_id = ? AND user_id = ? AND facility_id = ?
				 AND start_time >= ? AND start_time < ?`
	var n int
	err := r.db.QueryRowContext(ctx, q, clientID, userID, facilityID, from.UTC(), to.UTC()).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}
