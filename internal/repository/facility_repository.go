package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/facility-booking/internal/model"
)

// isDuplicateKey reports whether err is a MySQL duplicate-key error
// (error 1062), which the repositories translate into ErrDuplicate.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// FacilityRepo provides CRUD operations for facilities.  The booking
// engine only consumes GetByID as its existence check.
type FacilityRepo struct {
	db *sql.DB
}

// NewFacilityRepo returns a new FacilityRepo bound to the given database.
func NewFacilityRepo(db *sql.DB) *FacilityRepo { return &FacilityRepo{db: db} }

const facilityColumns = `id, client_id, name, description, created_at, updated_at`

func scanFacility(row interface{ Scan(dest ...any) error }) (*model.Facility, error) {
	var f model.Facility
	var desc sql.NullString
	err := row.Scan(&f.ID, &f.ClientID, &f.Name, &desc, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		f.Description = &d
	}
	return &f, nil
}

// Create inserts a facility and populates the generated ID and
// timestamps.  ErrDuplicate is returned when the client already has a
// facility with the same name.
func (r *FacilityRepo) Create(ctx context.Context, f *model.Facility) error {
	const q = `INSERT INTO facilities (client_id, name, description) VALUES (?, ?, ?)`
	var desc any
	if f.Description != nil {
		desc = *f.Description
	}
	res, err := r.db.ExecContext(ctx, q, f.ClientID, f.Name, desc)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM facilities WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, f.ID).Scan(&f.CreatedAt, &f.UpdatedAt)
}

// GetByID returns the facility with the given id, or (nil, nil) when it
// does not exist.
func (r *FacilityRepo) GetByID(ctx context.Context, id uint64) (*model.Facility, error) {
	q := `SELECT ` + facilityColumns + ` FROM facilities WHERE id = ?`
	f, err := scanFacility(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return f, err
}

// ListByClient returns all facilities owned by a client.
func (r *FacilityRepo) ListByClient(ctx context.Context, clientID uint64) ([]model.Facility, error) {
	q := `SELECT ` + facilityColumns + ` FROM facilities WHERE client_id = ? ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Facility, 0)
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

// Update rewrites a facility's name and description.
func (r *FacilityRepo) Update(ctx context.Context, f *model.Facility) error {
	var desc any
	if f.Description != nil {
		desc = *f.Description
	}
	const q = `UPDATE facilities SET name = ?, description = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, f.Name, desc, f.ID); err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	const sel = `SELECT created_at, updated_at FROM facilities WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, f.ID).Scan(&f.CreatedAt, &f.UpdatedAt)
}

// Delete removes a facility.
func (r *FacilityRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM facilities WHERE id = ?`, id)
	return err
}
