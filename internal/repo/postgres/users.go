package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/userdesk/internal/domain/user"
	"github.com/geocoder89/userdesk/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, name, email, password_hash, role, status, profile_photo, location, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	err := r.observe("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (`+userColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), string(u.Status),
			u.ProfilePhoto, u.Location, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrDuplicateEmail
		}
		return user.User{}, fmt.Errorf("users.create: %w", err)
	}

	return u, nil
}

// CreateMany inserts us in one round trip. Records whose email is already
// taken are skipped; the count of inserted rows is returned.
func (r *UsersRepo) CreateMany(ctx context.Context, us []user.User) (int, error) {
	if len(us) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, u := range us {
		batch.Queue(
			`INSERT INTO users (`+userColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			ON CONFLICT (email) DO NOTHING`,
			u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), string(u.Status),
			u.ProfilePhoto, u.Location, u.CreatedAt, u.UpdatedAt,
		)
	}

	var inserted int64

	err := r.observe("users.create_many", func() error {
		br := r.pool.SendBatch(ctx, batch)
		defer br.Close()

		for range us {
			tag, err := br.Exec()
			if err != nil {
				return err
			}
			inserted += tag.RowsAffected()
		}
		return nil
	})

	if err != nil {
		return int(inserted), fmt.Errorf("users.create_many: %w", err)
	}

	return int(inserted), nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_email", `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UsersRepo) getOne(ctx context.Context, op, query string, arg string) (user.User, error) {
	var u user.User

	err := r.observe(op, func() error {
		return scanUser(r.pool.QueryRow(ctx, query, arg), &u)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

func (r *UsersRepo) Count(ctx context.Context) (int, error) {
	var n int

	err := r.observe("users.count", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("users.count: %w", err)
	}

	return n, nil
}

// List returns one page of matching records plus the total match count.
// The count comes from a separate statement so that a page past the end
// still reports the real total.
func (r *UsersRepo) List(ctx context.Context, f user.ListFilter) ([]user.User, int, error) {
	where, args := buildUserFilter(f)

	total := 0
	output := make([]user.User, 0, f.Limit)

	err := r.observe("users.list", func() error {
		err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total)
		if err != nil {
			return err
		}

		if total == 0 {
			return nil
		}

		pos := len(args) + 1
		query := `SELECT ` + userColumns + ` FROM users` + where +
			fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", pos, pos+1)

		pageArgs := append(append([]interface{}{}, args...), f.Limit, f.Offset)

		rows, err := r.pool.Query(ctx, query, pageArgs...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var u user.User
			if err := scanUser(rows, &u); err != nil {
				return err
			}
			output = append(output, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, 0, fmt.Errorf("users.list: %w", err)
	}

	return output, total, nil
}

// ListAll is the unpaginated form of List, used by export.
func (r *UsersRepo) ListAll(ctx context.Context, f user.ListFilter) ([]user.User, error) {
	where, args := buildUserFilter(f)
	output := make([]user.User, 0)

	err := r.observe("users.list_all", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+userColumns+` FROM users`+where+` ORDER BY created_at DESC, id DESC`,
			args...,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var u user.User
			if err := scanUser(rows, &u); err != nil {
				return err
			}
			output = append(output, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, fmt.Errorf("users.list_all: %w", err)
	}

	return output, nil
}

// Update writes the mutable fields of u. Password and created_at are never
// touched here.
func (r *UsersRepo) Update(ctx context.Context, u user.User) (user.User, error) {
	var out user.User

	err := r.observe("users.update", func() error {
		return scanUser(r.pool.QueryRow(ctx,
			`UPDATE users
				SET name = $2,
					email = $3,
					role = $4,
					status = $5,
					profile_photo = $6,
					location = $7,
					updated_at = NOW()
			WHERE id = $1
			RETURNING `+userColumns,
			u.ID, u.Name, u.Email, string(u.Role), string(u.Status), u.ProfilePhoto, u.Location,
		), &out)
	})

	if err != nil {
		// if there are no rows matching the id
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrDuplicateEmail
		}
		return user.User{}, fmt.Errorf("users.update: %w", err)
	}

	return out, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := r.observe("users.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})

	if err != nil {
		return fmt.Errorf("users.delete: %w", err)
	}

	// if no rows were deleted as a result return a not found error
	if affected == 0 {
		return user.ErrNotFound
	}

	return nil
}

// DeleteMany removes every record whose id is in ids in one statement and
// reports how many were removed.
func (r *UsersRepo) DeleteMany(ctx context.Context, ids []string) (int, error) {
	var affected int64

	err := r.observe("users.delete_many", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = ANY($1)`, ids)
		affected = tag.RowsAffected()
		return err
	})

	if err != nil {
		return 0, fmt.Errorf("users.delete_many: %w", err)
	}

	return int(affected), nil
}

// buildUserFilter turns the optional search/role/status filters into a
// WHERE clause with positional args.
func buildUserFilter(f user.ListFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	argsPosition := 1

	if f.Search != nil && *f.Search != "" {
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d ESCAPE '\\' OR email ILIKE $%d ESCAPE '\\')", argsPosition, argsPosition))
		args = append(args, "%"+escapeLike(*f.Search)+"%")
		argsPosition++
	}

	if f.Role != nil {
		conds = append(conds, fmt.Sprintf("role = $%d", argsPosition))
		args = append(args, string(*f.Role))
		argsPosition++
	}

	if f.Status != nil {
		conds = append(conds, fmt.Sprintf("status = $%d", argsPosition))
		args = append(args, string(*f.Status))
	}

	if len(conds) == 0 {
		return "", args
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanUser(row pgx.Row, u *user.User) error {
	var role, status string

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&role,
		&status,
		&u.ProfilePhoto,
		&u.Location,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return err
	}

	u.Role = user.Role(role)
	u.Status = user.Status(status)
	return nil
}
