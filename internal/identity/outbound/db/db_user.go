package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/otpgate/internal/identity/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

const userColumns = `id, email, name, phone, profession, password_hash, status, verified_at, created_at, updated_at, deleted_at`

const (
	queryGetUserByEmail = `SELECT ` + userColumns + ` FROM identity_users
WHERE email = $1 AND ($2 OR deleted_at IS NULL)
ORDER BY deleted_at DESC NULLS FIRST
LIMIT 1`

	queryGetUserByID = `SELECT ` + userColumns + ` FROM identity_users
WHERE id = $1 AND ($2 OR deleted_at IS NULL)`

	queryExistsByEmail = `SELECT EXISTS (SELECT 1 FROM identity_users WHERE email = $1 AND deleted_at IS NULL)`

	queryCreateUser = `INSERT INTO identity_users
(id, email, name, phone, profession, password_hash, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	queryMarkVerified = `UPDATE identity_users
SET status = $2, verified_at = $3, updated_at = $3
WHERE email = $1 AND status = $4 AND deleted_at IS NULL`

	queryListUsers = `SELECT ` + userColumns + ` FROM identity_users
WHERE status = $1 AND deleted_at IS NULL
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`

	queryCountUsers = `SELECT COUNT(*) FROM identity_users WHERE status = $1 AND deleted_at IS NULL`

	queryUpdateUser = `UPDATE identity_users
SET name = $2, phone = $3, profession = $4, updated_at = NOW()
WHERE id = $1 AND deleted_at IS NULL`

	queryMarkUserDeleted = `UPDATE identity_users
SET deleted_at = NOW(), updated_at = NOW()
WHERE id = $1 AND deleted_at IS NULL`
)

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Phone,
		&u.Profession,
		&u.PasswordHash,
		&u.Status,
		&u.VerifiedAt,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *DB) GetUserByEmail(ctx context.Context, email string, includeDeleted bool) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByEmail")
	defer func() { s.endSpan(span, err) }()

	u, err := scanUser(s.conn.QueryRow(ctx, queryGetUserByEmail, email, includeDeleted))
	if err != nil {
		return nil, s.mapError(err)
	}
	return u, nil
}

func (s *DB) GetUserByID(ctx context.Context, id int64, includeDeleted bool) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByID")
	defer func() { s.endSpan(span, err) }()

	u, err := scanUser(s.conn.QueryRow(ctx, queryGetUserByID, id, includeDeleted))
	if err != nil {
		return nil, s.mapError(err)
	}
	return u, nil
}

func (s *DB) ExistsByEmail(ctx context.Context, email string) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "ExistsByEmail")
	defer func() { s.endSpan(span, err) }()

	var exists bool
	if err = s.conn.QueryRow(ctx, queryExistsByEmail, email).Scan(&exists); err != nil {
		return false, s.mapError(err)
	}
	return exists, nil
}

func (s *DB) CreateUser(ctx context.Context, in entity.NewUser) (err error) {
	ctx, span := s.startSpan(ctx, "CreateUser")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryCreateUser,
		in.ID, in.Email, in.Name, in.Phone, in.Profession, in.PasswordHash, in.Status)
	err = s.mapError(err)
	return err
}

// MarkVerified activates the unverified user with email. It reports false
// when no such user exists or the user was already active.
func (s *DB) MarkVerified(ctx context.Context, email string, at time.Time) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "MarkVerified")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, queryMarkVerified, email, entity.UserStatusActive, at, entity.UserStatusUnverified)
	if err != nil {
		return false, s.mapError(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *DB) GetUserList(ctx context.Context, f entity.UserListFilter) (_ []entity.User, _ int64, err error) {
	ctx, span := s.startSpan(ctx, "GetUserList")
	defer func() { s.endSpan(span, err) }()

	var total int64
	if err = s.conn.QueryRow(ctx, queryCountUsers, f.Status).Scan(&total); err != nil {
		return nil, 0, s.mapError(err)
	}

	rows, err := s.conn.Query(ctx, queryListUsers, f.Status, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, s.mapError(err)
	}
	defer rows.Close()

	users := make([]entity.User, 0, f.Limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, s.mapError(err)
		}
		users = append(users, *u)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, s.mapError(err)
	}

	return users, total, nil
}

func (s *DB) UpdateUser(ctx context.Context, in entity.UpdateUser) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUser")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, queryUpdateUser, in.ID, in.Name, in.Phone, in.Profession)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}
	return nil
}

func (s *DB) MarkUserDeleted(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "MarkUserDeleted")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, queryMarkUserDeleted, id)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}
	return nil
}
