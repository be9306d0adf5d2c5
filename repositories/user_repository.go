package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"profile-editor/models"
)

var ErrRecordNotFound = errors.New("user record not found")

// DBTX is the part of pgxpool.Pool the repository uses.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	db  DBTX
	now func() time.Time
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

func (r *UserRepository) FetchRecord(ctx context.Context, id string) (*models.UserRecord, error) {
	query := `
		SELECT
			id::text,
			COALESCE(first_name, ''),
			COALESCE(last_name, ''),
			COALESCE(email, ''),
			COALESCE(phone, ''),
			COALESCE(dob, ''),
			COALESCE(gender, ''),
			COALESCE(country, ''),
			COALESCE(state, ''),
			COALESCE(city, ''),
			profile_photo_url,
			updated_at
		FROM users
		WHERE id = $1 AND deleted_at IS NULL
	`

	user := &models.UserRecord{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Phone,
		&user.DOB,
		&user.Gender,
		&user.Country,
		&user.State,
		&user.City,
		&user.ProfilePhotoURL,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, ErrRecordNotFound)
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *UserRepository) UpdateRecord(ctx context.Context, id string, patch models.Patch) error {
	query, args, err := buildUpdateQuery(id, patch, r.now())
	if err != nil {
		return err
	}

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, ErrRecordNotFound)
	}

	return nil
}

// buildUpdateQuery renders patch as a single UPDATE. Columns come from the
// models.Field whitelist and are sorted so the statement is stable.
func buildUpdateQuery(id string, patch models.Patch, now time.Time) (string, []any, error) {
	if len(patch) == 0 {
		return "", nil, errors.New("empty patch")
	}

	fields := make([]string, 0, len(patch))
	for f := range patch {
		if !f.Known() {
			return "", nil, fmt.Errorf("unknown field %q", f)
		}
		fields = append(fields, string(f))
	}
	sort.Strings(fields)

	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+2)
	for i, f := range fields {
		sets = append(sets, fmt.Sprintf("%s = $%d", f, i+1))
		args = append(args, patch[models.Field(f)])
	}
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)+1))
	args = append(args, now)
	args = append(args, id)

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d AND deleted_at IS NULL",
		strings.Join(sets, ", "), len(args))
	return query, args, nil
}
