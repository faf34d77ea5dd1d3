package postgres

import (
	"database/sql"
	"time"
)

type userRow struct {
	ID                   int64
	Email                string
	Username             string
	FirstName            string
	LastName             string
	PasswordHash         string
	Role                 string
	PasswordRequestToken sql.NullString
	UserToken            string
	IsVerified           bool
	DateCreated          time.Time
	LastLogin            sql.NullTime
}

// userColumns matches the Scan order in scanUser.
const userColumns = `id, email, username, first_name, last_name, password_hash, role,
       password_request_token, user_token, is_verified, date_created, last_login`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (userRow, error) {
	var ur userRow
	err := s.Scan(
		&ur.ID,
		&ur.Email,
		&ur.Username,
		&ur.FirstName,
		&ur.LastName,
		&ur.PasswordHash,
		&ur.Role,
		&ur.PasswordRequestToken,
		&ur.UserToken,
		&ur.IsVerified,
		&ur.DateCreated,
		&ur.LastLogin,
	)
	return ur, err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
