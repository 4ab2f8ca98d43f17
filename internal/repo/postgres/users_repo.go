package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/domain/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

const userColumns = `id, name, email, password_hash, role, is_active, last_login, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
}

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{pool: pool}
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.IsActive,
		&u.LastLogin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, name, email, passwordHash, role string) (user.User, error) {
	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.IsActive, u.LastLogin, u.CreatedAt, u.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return scanUser(r.pool.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`,
		strings.TrimSpace(email),
	))
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return scanUser(r.pool.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
}

func (r *UsersRepo) List(ctx context.Context, filter user.ListFilter) ([]user.User, int, error) {
	baseQuery := `SELECT ` + userColumns + `, COUNT(*) OVER() AS total FROM users`

	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.Role != nil {
		conds = append(conds, fmt.Sprintf("role = $%d", argsPosition))
		args = append(args, *filter.Role)
		argsPosition++
	}

	if filter.IsActive != nil {
		conds = append(conds, fmt.Sprintf("is_active = $%d", argsPosition))
		args = append(args, *filter.IsActive)
		argsPosition++
	}

	// case-insensitive substring match, OR across name and email
	if filter.Search != nil {
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", argsPosition, argsPosition))
		args = append(args, "%"+*filter.Search+"%")
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// stable ordering for pagination
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)

	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	output := make([]user.User, 0, filter.Limit)
	total := 0

	for rows.Next() {
		var u user.User
		var t int

		err = rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
			&u.IsActive, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt, &t,
		)

		if err != nil {
			return nil, 0, err
		}

		total = t
		output = append(output, u)
	}

	err = rows.Err()

	if err != nil {
		return nil, 0, err
	}

	return output, total, nil
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, id, name string) (user.User, error) {
	return scanUser(r.pool.QueryRow(
		ctx,
		`UPDATE users
			SET name = $2,
					updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		id,
		name,
	))
}

// UpdateAdminFields applies the admin edit; nil fields keep their value.
func (r *UsersRepo) UpdateAdminFields(ctx context.Context, id string, req user.AdminUpdateRequest) (user.User, error) {
	return scanUser(r.pool.QueryRow(
		ctx,
		`UPDATE users
			SET name = COALESCE($2, name),
					role = COALESCE($3, role),
					is_active = COALESCE($4, is_active),
					updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		id,
		req.Name,
		req.Role,
		req.IsActive,
	))
}

func (r *UsersRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		id, passwordHash,
	)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}

// TouchLastLogin records a successful authentication.
func (r *UsersRepo) TouchLastLogin(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET last_login = NOW() WHERE id = $1`,
		id,
	)

	return err
}

// DeleteCascade removes the user and every task they own inside one
// transaction, so a crash cannot strand orphaned tasks.
func (r *UsersRepo) DeleteCascade(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)

	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `DELETE FROM tasks WHERE created_by = $1`, id)

	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return tx.Commit(ctx)
}

func (r *UsersRepo) Count(ctx context.Context) (int, error) {
	var n int

	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)

	return n, err
}

func (r *UsersRepo) CountByRole(ctx context.Context) ([]user.RoleCount, error) {
	rows, err := r.pool.Query(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var out []user.RoleCount

	for rows.Next() {
		var rc user.RoleCount

		if err := rows.Scan(&rc.Role, &rc.Count); err != nil {
			return nil, err
		}

		out = append(out, rc)
	}

	return out, rows.Err()
}
