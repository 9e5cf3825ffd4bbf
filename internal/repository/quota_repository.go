package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/facility-booking/internal/model"
)

// QuotaRepo provides persistence for per-user-per-facility booking
// limits.  A missing row is a normal outcome: the resolver falls back
// to the hard-coded defaults, so Find returns (nil, nil) rather than an
// error when no rule exists.
type QuotaRepo struct {
	db *sql.DB
}

// NewQuotaRepo returns a new QuotaRepo bound to the given database.
func NewQuotaRepo(db *sql.DB) *QuotaRepo { return &QuotaRepo{db: db} }

const quotaColumns = `id, client_id, user_id, facility_id,
	max_bookings_per_week, max_bookings_per_month, max_weeks_advance,
	overridden_by, created_at, updated_at`

func scanQuota(row interface{ Scan(dest ...any) error }) (*model.QuotaRule, error) {
	var q model.QuotaRule
	var overriddenBy sql.NullInt64
	err := row.Scan(
		&q.ID, &q.ClientID, &q.UserID, &q.FacilityID,
		&q.MaxBookingsPerWeek, &q.MaxBookingsPerMonth, &q.MaxWeeksAdvance,
		&overriddenBy, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if overriddenBy.Valid {
		id := uint64(overriddenBy.Int64)
		q.OverriddenBy = &id
	}
	return &q, nil
}

// Find returns the rule for (client, user, facility), or (nil, nil)
// when none exists.
func (r *QuotaRepo) Find(ctx context.Context, clientID, userID, facilityID uint64) (*model.QuotaRule, error) {
	q := `SELECT ` + quotaColumns + ` FROM quota_rules
		  WHERE client_id = ? AND user_id = ? AND facility_id = ?`
	rule, err := scanQuota(r.db.QueryRowContext(ctx, q, clientID, userID, facilityID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rule, err
}

// Upsert creates the rule for (client, user, facility) or updates the
// limits of an existing one.  overridden_by records who made the
// change.
func (r *QuotaRepo) Upsert(ctx context.Context, rule *model.QuotaRule) error {
	const q = `INSERT INTO quota_rules
		(client_id, user_id, facility_id, max_bookings_per_week,
		 max_bookings_per_month, max_weeks_advance, overridden_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			max_bookings_per_week = VALUES(max_bookings_per_week),
			max_bookings_per_month = VALUES(max_bookings_per_month),
			max_weeks_advance = VALUES(max_weeks_advance),
			overridden_by = VALUES(overridden_by)`
	var overriddenBy any
	if rule.OverriddenBy != nil {
		overriddenBy = *rule.OverriddenBy
	}
	if _, err := r.db.ExecContext(ctx, q,
		rule.ClientID, rule.UserID, rule.FacilityID,
		rule.MaxBookingsPerWeek, rule.MaxBookingsPerMonth, rule.MaxWeeksAdvance,
		overriddenBy,
	); err != nil {
		return err
	}
	// Read the row back so callers observe the stored state, including
	// the id of a pre-existing rule.
	stored, err := r.Find(ctx, rule.ClientID, rule.UserID, rule.FacilityID)
	if err != nil {
		return err
	}
	if stored != nil {
		*rule = *stored
	}
	return nil
}

// ListByUser returns all rules for (client, user); facilityID narrows
// to a single facility when non-zero.
func (r *QuotaRepo) ListByUser(ctx context.Context, clientID, userID, facilityID uint64) ([]model.QuotaRule, error) {
	query := `SELECT ` + quotaColumns + ` FROM quota_rules WHERE client_id = ? AND user_id = ?`
	args := []any{clientID, userID}
	if facilityID != 0 {
		query += ` AND facility_id = ?`
		args = append(args, facilityID)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.QuotaRule, 0)
	for rows.Next() {
		rule, err := scanQuota(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rule)
	}
	return out, rows.Err()
}
