package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"urban-match/internal/domain"
	"urban-match/internal/match"
	"urban-match/internal/repository"
)

const userColumns = `id, name, age, gender, email, city, interests, created_at, updated_at`

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if err := r.db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate users schema: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	interests, err := encodeInterests(user.Interests)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.db.QueryRowContext(ctx, r.db.dialect.rebind(`
INSERT INTO users (name, age, gender, gender_key, email, city, city_key, interests, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`),
		user.Name,
		user.Age,
		user.Gender,
		domain.NormalizeToken(user.Gender),
		user.Email,
		user.City,
		domain.NormalizeToken(user.City),
		interests,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	user.ID = id
	return id, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, r.db.dialect.rebind(`
SELECT `+userColumns+`
FROM users
WHERE id = ?`),
		id,
	)
	return scanUser(row)
}

func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, r.db.dialect.rebind(`
SELECT `+userColumns+`
FROM users
ORDER BY id ASC
LIMIT ? OFFSET ?`),
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	return collectUsers(rows, nil)
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *UserRepository) Update(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	user, err := scanUser(tx.QueryRowContext(ctx, r.db.dialect.rebind(`
SELECT `+userColumns+`
FROM users
WHERE id = ?`+r.db.dialect.rowLock),
		id,
	))
	if err != nil {
		return nil, err
	}

	user.Apply(patch)
	user.UpdatedAt = time.Now().UTC()

	interests, err := encodeInterests(user.Interests)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, r.db.dialect.rebind(`
UPDATE users
SET name=?, age=?, gender=?, gender_key=?, email=?, city=?, city_key=?, interests=?, updated_at=?
WHERE id=?`),
		user.Name,
		user.Age,
		user.Gender,
		domain.NormalizeToken(user.Gender),
		user.Email,
		user.City,
		domain.NormalizeToken(user.City),
		interests,
		user.UpdatedAt,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit user update: %w", err)
	}
	return user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.dialect.rebind(`DELETE FROM users WHERE id=?`), id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("user delete rows affected: %w", err)
	}
	if aff == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Query(ctx context.Context, criteria match.Criteria) ([]domain.User, error) {
	where, args := criteriaWhere(criteria)
	rows, err := r.db.QueryContext(ctx, r.db.dialect.rebind(`
SELECT `+userColumns+`
FROM users`+where+`
ORDER BY id ASC`),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	return collectUsers(rows, criteria.Matches)
}

func collectUsers(rows *sql.Rows, keep func(domain.User) bool) ([]domain.User, error) {
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		if keep != nil && !keep(*user) {
			continue
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var (
		user      domain.User
		interests string
	)
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Age,
		&user.Gender,
		&user.Email,
		&user.City,
		&interests,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if err := json.Unmarshal([]byte(interests), &user.Interests); err != nil {
		return nil, fmt.Errorf("decode interests of user %d: %w", user.ID, err)
	}
	if user.Interests == nil {
		user.Interests = []string{}
	}
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return &user, nil
}

func encodeInterests(interests []string) (string, error) {
	if interests == nil {
		interests = []string{}
	}
	b, err := json.Marshal(interests)
	if err != nil {
		return "", fmt.Errorf("encode interests: %w", err)
	}
	return string(b), nil
}
