package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/facility-booking/internal/model"
)

// UserRepo provides CRUD operations for users.  The booking engine only
// consumes GetByID as its existence check; the auth handlers use
// GetByEmail for login.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, client_id, name, email, password_hash, role, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.ClientID, &u.Name, &u.Email, &u.PasswordHash,
		&u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user and populates the generated ID and timestamps.
// ErrDuplicate is returned when the email is already registered.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `INSERT INTO users (client_id, name, email, password_hash, role) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, u.ClientID, u.Name, u.Email, u.PasswordHash, u.Role)
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
	u.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM users WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, u.ID).Scan(&u.CreatedAt, &u.UpdatedAt)
}

// GetByID returns the user with the given id, or (nil, nil) when no
// such user exists.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// GetByEmail returns the user with the given email, or (nil, nil) when
// no such user exists.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// Update rewrites a user's name and role.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	const q = `UPDATE users SET name = ?, role = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, u.Name, u.Role, u.ID); err != nil {
		return err
	}
	const sel = `SELECT created_at, updated_at FROM users WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, u.ID).Scan(&u.CreatedAt, &u.UpdatedAt)
}

// Delete removes a user.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

// ListByClient returns all users belonging to a client.
func (r *UserRepo) ListByClient(ctx context.Context, clientID uint64) ([]model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE client_id = ? ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}
