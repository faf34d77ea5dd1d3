package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// unique_violation
const pgUniqueViolation = "23505"

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// ---------- helpers ----------

func toDomainUser(ur userRow) domain.User {
	u := domain.User{
		ID:                   ur.ID,
		Email:                ur.Email,
		Username:             ur.Username,
		FirstName:            ur.FirstName,
		LastName:             ur.LastName,
		PasswordHash:         ur.PasswordHash,
		Role:                 ur.Role,
		PasswordRequestToken: ur.PasswordRequestToken.String,
		UserToken:            ur.UserToken,
		IsVerified:           ur.IsVerified,
		DateCreated:          ur.DateCreated,
	}
	if ur.LastLogin.Valid {
		t := ur.LastLogin.Time
		u.LastLogin = &t
	}
	return u
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// ---------- account.UserRepo ----------

// Insert relies on the username unique constraint, so concurrent inserts of
// the same username resolve to exactly one row.
func (r *UserRepo) Insert(ctx context.Context, u domain.User) (int64, bool, error) {
	u.Email = domain.NormalizeEmail(u.Email)
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" {
		return 0, false, domain.ErrMissingField("username")
	}
	if u.UserToken == "" {
		return 0, false, domain.ErrMissingField("user_token")
	}
	if u.DateCreated.IsZero() {
		u.DateCreated = time.Now().UTC()
	}

	const q = `
INSERT INTO users (email, username, first_name, last_name, password_hash, role,
                   password_request_token, user_token, is_verified, date_created)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (username) DO NOTHING
RETURNING id;
`
	var id int64
	err := r.db.QueryRowContext(ctx, q,
		u.Email, u.Username, u.FirstName, u.LastName, u.PasswordHash, u.Role,
		nullString(u.PasswordRequestToken), u.UserToken, u.IsVerified, u.DateCreated,
	).Scan(&id)
	if err != nil {
		if isNoRows(err) {
			return 0, false, nil
		}
		if isUniqueViolation(err) {
			// username conflicts never get here; a token does
			return 0, false, domain.ErrTokenCollision()
		}
		return 0, false, domain.ErrDBUnavailable(err)
	}
	return id, true, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY id;`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		ur, err := scanUser(rows)
		if err != nil {
			return nil, domain.ErrDBUnavailable(err)
		}
		out = append(out, toDomainUser(ur))
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	return out, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id int64) (domain.User, bool, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1;`

	ur, err := scanUser(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if isNoRows(err) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), true, nil
}

func (r *UserRepo) FindIDByEmail(ctx context.Context, email string) (int64, bool, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return 0, false, nil
	}

	const q = `SELECT id FROM users WHERE email = $1 ORDER BY id LIMIT 1;`

	var id int64
	if err := r.db.QueryRowContext(ctx, q, email).Scan(&id); err != nil {
		if isNoRows(err) {
			return 0, false, nil
		}
		return 0, false, domain.ErrDBUnavailable(err)
	}
	return id, true, nil
}

func (r *UserRepo) FindRoleByUserToken(ctx context.Context, userToken string) (string, bool, error) {
	if userToken == "" {
		return "", false, nil
	}

	const q = `SELECT role FROM users WHERE user_token = $1 LIMIT 1;`

	var role string
	if err := r.db.QueryRowContext(ctx, q, userToken).Scan(&role); err != nil {
		if isNoRows(err) {
			return "", false, nil
		}
		return "", false, domain.ErrDBUnavailable(err)
	}
	return role, true, nil
}

// RedeemSetupToken is a single conditional UPDATE; the cleared token is the
// serialization point between concurrent redemptions.
func (r *UserRepo) RedeemSetupToken(ctx context.Context, token, hash string) (bool, error) {
	if token == "" {
		return false, nil
	}
	if hash == "" {
		return false, domain.ErrMissingField("password_hash")
	}

	const q = `
UPDATE users
SET password_hash = $2,
    password_request_token = NULL,
    is_verified = TRUE
WHERE password_request_token = $1
  AND password_request_token IS NOT NULL;
`
	res, err := r.db.ExecContext(ctx, q, token, hash)
	if err != nil {
		return false, domain.ErrDBUnavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, domain.ErrDBUnavailable(err)
	}
	return n == 1, nil
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) (bool, error) {
	if hash == "" {
		return false, domain.ErrMissingField("password_hash")
	}

	const q = `
UPDATE users
SET password_hash = $2
WHERE id = $1;
`
	res, err := r.db.ExecContext(ctx, q, id, hash)
	if err != nil {
		return false, domain.ErrDBUnavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, domain.ErrDBUnavailable(err)
	}
	return n > 0, nil
}

func (r *UserRepo) ToggleVerified(ctx context.Context, id int64) (bool, bool, error) {
	const q = `
UPDATE users
SET is_verified = NOT is_verified
WHERE id = $1
RETURNING is_verified;
`
	var verified bool
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&verified); err != nil {
		if isNoRows(err) {
			return false, false, nil
		}
		return false, false, domain.ErrDBUnavailable(err)
	}
	return verified, true, nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, p domain.Profile) (bool, error) {
	p.Email = domain.NormalizeEmail(p.Email)
	if p.Email == "" {
		return false, nil
	}

	const q = `
UPDATE users
SET first_name = $1,
    last_name = $2
WHERE email = $3;
`
	res, err := r.db.ExecContext(ctx, q, p.FirstName, p.LastName, p.Email)
	if err != nil {
		return false, domain.ErrDBUnavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, domain.ErrDBUnavailable(err)
	}
	return n > 0, nil
}

// Ping backs the readiness probe.
func (r *UserRepo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}
