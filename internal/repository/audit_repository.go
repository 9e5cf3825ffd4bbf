package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/facility-booking/internal/model"
)

// AuditRepo provides persistence for the booking audit trail.  Entries
// are append-only; there is no update or delete path.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo returns a new AuditRepo bound to the given database.
func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

// Insert appends one audit entry.  Zero ids are stored as NULL so that
// failed attempts with unknown scope still produce a row.
func (r *AuditRepo) Insert(ctx context.Context, e *model.BookingLog) error {
	const q = `INSERT INTO booking_logs (client_id, user_id, facility_id, status, message, data)
			   VALUES (?, ?, ?, ?, ?, ?)`
	toNullable := func(id uint64) any {
		if id == 0 {
			return nil
		}
		return id
	}
	res, err := r.db.ExecContext(ctx, q,
		toNullable(e.ClientID), toNullable(e.UserID), toNullable(e.FacilityID),
		e.Status, e.Message, e.Data,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// List returns audit entries matching the filter, newest first.
func (r *AuditRepo) List(ctx context.Context, f model.LogFilter) ([]model.BookingLog, error) {
	query := `SELECT id, client_id, user_id, facility_id, status, message, data, created_at
			  FROM booking_logs`
	where := make([]string, 0, 4)
	args := make([]any, 0, 4)
	if f.ClientID != 0 {
		where = append(where, "client_id = ?")
		args = append(args, f.ClientID)
	}
	if f.UserID != 0 {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.FacilityID != 0 {
		where = append(where, "facility_id = ?")
		args = append(args, f.FacilityID)
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
	out := make([]model.BookingLog, 0)
	for rows.Next() {
		var e model.BookingLog
		var clientID, userID, facilityID sql.NullInt64
		var data sql.NullString
		if err := rows.Scan(&e.ID, &clientID, &userID, &facilityID,
			&e.Status, &e.Message, &data, &e.CreatedAt); err != nil {
			return nil, err
		}
		if clientID.Valid {
			e.ClientID = uint64(clientID.Int64)
		}
		if userID.Valid {
			e.UserID = uint64(userID.Int64)
		}
		if facilityID.Valid {
			e.FacilityID = uint64(facilityID.Int64)
		}
		if data.Valid {
			e.Data = data.String
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
