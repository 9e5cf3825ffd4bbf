package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/facility-booking/internal/model"
)

// ClientRepo provides persistence for tenant accounts.
type ClientRepo struct {
	db *sql.DB
}

// NewClientRepo returns a new ClientRepo bound to the given database.
func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{db: db} }

const clientColumns = `id, name, email, password_hash, phone_number, created_at, updated_at`

func scanClient(row interface{ Scan(dest ...any) error }) (*model.Client, error) {
	var c model.Client
	var phone sql.NullString
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &phone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if phone.Valid {
		p := phone.String
		c.PhoneNumber = &p
	}
	return &c, nil
}

// Create inserts a client and populates the generated ID and
// timestamps.  ErrDuplicate is returned when the email is already
// registered.
func (r *ClientRepo) Create(ctx context.Context, c *model.Client) error {
	const q = `INSERT INTO clients (name, email, password_hash, phone_number) VALUES (?, ?, ?, ?)`
	var phone any
	if c.PhoneNumber != nil {
		phone = *c.PhoneNumber
	}
	res, err := r.db.ExecContext(ctx, q, c.Name, c.Email, c.PasswordHash, phone)
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
	c.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM clients WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, c.ID).Scan(&c.CreatedAt, &c.UpdatedAt)
}

// GetByID returns the client with the given id, or (nil, nil) when no
// such client exists.
func (r *ClientRepo) GetByID(ctx context.Context, id uint64) (*model.Client, error) {
	q := `SELECT ` + clientColumns + ` FROM clients WHERE id = ?`
	c, err := scanClient(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// GetByEmail returns the client with the given email, or (nil, nil)
// when no such client exists.
func (r *ClientRepo) GetByEmail(ctx context.Context, email string) (*model.Client, error) {
	q := `SELECT ` + clientColumns + ` FROM clients WHERE email = ?`
	c, err := scanClient(r.db.QueryRowContext(ctx, q, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}
