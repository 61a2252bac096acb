package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"what-to-watch/internal/domains/opinion/model"
	pkgdb "what-to-watch/pkg/database"
)

// DB is the subset of *pgxpool.Pool the repository needs.
type DB interface {
	pkgdb.Beginner
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	opinionColumns = `id, title, text, source, timestamp, added_by`

	pgUniqueViolation = "23505"
	pgBadEncoding     = "22021"
)

// postgresRepository implements RepositoryInterface on PostgreSQL
type postgresRepository struct {
	db DB
	// randIntN returns a uniform value in [0, n)
	randIntN func(n int64) int64
}

// NewPostgresRepository creates a new opinion repository instance
func NewPostgresRepository(db DB) RepositoryInterface {
	return &postgresRepository{
		db:       db,
		randIntN: rand.Int64N,
	}
}

// scanOpinion reads one row in opinionColumns order
func scanOpinion(row pgx.Row) (*model.Opinion, error) {
	var o model.Opinion
	if err := row.Scan(
		&o.ID,
		&o.Title,
		&o.Text,
		&o.Source,
		&o.Timestamp,
		&o.AddedBy,
	); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM opinions`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count opinions: %w", err)
	}
	return total, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.Opinion, error) {
	query := `SELECT ` + opinionColumns + ` FROM opinions WHERE id = $1`

	o, err := scanOpinion(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOpinionNotFound
		}
		return nil, fmt.Errorf("failed to get opinion by id: %w", err)
	}
	return o, nil
}

func (r *postgresRepository) GetByText(ctx context.Context, text string) (*model.Opinion, error) {
	query := `SELECT ` + opinionColumns + ` FROM opinions WHERE text = $1`

	o, err := scanOpinion(r.db.QueryRow(ctx, query, text))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get opinion by text: %w", err)
	}
	return o, nil
}

func (r *postgresRepository) ListAll(ctx context.Context) ([]model.Opinion, error) {
	query := `SELECT ` + opinionColumns + ` FROM opinions ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query opinions: %w", err)
	}
	defer rows.Close()

	opinions := []model.Opinion{}
	for rows.Next() {
		o, err := scanOpinion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan opinion: %w", err)
		}
		opinions = append(opinions, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating opinions: %w", err)
	}

	return opinions, nil
}

// Create checks the text inside the write transaction; the UNIQUE
// constraint still catches a concurrent insert that passed the same check.
func (r *postgresRepository) Create(ctx context.Context, o *model.Opinion) (*model.Opinion, error) {
	query := `
        INSERT INTO opinions (title, text, source, timestamp, added_by)
        VALUES ($1, $2, $3, COALESCE($4::timestamptz, now()), $5)
        RETURNING ` + opinionColumns

	return pkgdb.WithTransactionResult(ctx, r.db, pgx.TxOptions{}, func(tx pgx.Tx) (*model.Opinion, error) {
		taken, err := textTaken(ctx, tx, o.Text, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, model.ErrDuplicateText
		}

		created, err := scanOpinion(tx.QueryRow(ctx, query,
			o.Title,
			o.Text,
			nullIfEmpty(o.Source),
			timestampArg(o.Timestamp),
			nullIfEmpty(o.AddedBy),
		))
		if err != nil {
			return nil, mapWriteError(err, "failed to create opinion")
		}
		return created, nil
	})
}

func (r *postgresRepository) Update(ctx context.Context, id int64, patch model.OpinionPatch) (*model.Opinion, error) {
	lockQuery := `SELECT ` + opinionColumns + ` FROM opinions WHERE id = $1 FOR UPDATE`
	updateQuery := `
        UPDATE opinions
        SET title = $1, text = $2, source = $3, added_by = $4
        WHERE id = $5
        RETURNING ` + opinionColumns

	return pkgdb.WithTransactionResult(ctx, r.db, pgx.TxOptions{}, func(tx pgx.Tx) (*model.Opinion, error) {
		current, err := scanOpinion(tx.QueryRow(ctx, lockQuery, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, model.ErrOpinionNotFound
			}
			return nil, fmt.Errorf("failed to lock opinion: %w", err)
		}

		if patch.IsEmpty() {
			return current, nil
		}

		if patch.Text != nil && *patch.Text != current.Text {
			taken, err := textTaken(ctx, tx, *patch.Text, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, model.ErrDuplicateText
			}
		}

		patch.ApplyTo(current)

		updated, err := scanOpinion(tx.QueryRow(ctx, updateQuery,
			current.Title,
			current.Text,
			nullIfEmpty(current.Source),
			nullIfEmpty(current.AddedBy),
			id,
		))
		if err != nil {
			return nil, mapWriteError(err, "failed to update opinion")
		}
		return updated, nil
	})
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	return pkgdb.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM opinions WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete opinion: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrOpinionNotFound
		}
		return nil
	})
}

// RandomOne draws a uniform offset in [0, count). Count and fetch share one
// REPEATABLE READ snapshot so the offset is always in range.
func (r *postgresRepository) RandomOne(ctx context.Context) (*model.Opinion, error) {
	query := `SELECT ` + opinionColumns + ` FROM opinions ORDER BY id ASC OFFSET $1 LIMIT 1`

	return pkgdb.WithTransactionResult(ctx, r.db, pkgdb.ReadSnapshot, func(tx pgx.Tx) (*model.Opinion, error) {
		var total int64
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM opinions`).Scan(&total); err != nil {
			return nil, fmt.Errorf("failed to count opinions: %w", err)
		}
		if total == 0 {
			return nil, model.ErrEmptyStore
		}

		o, err := scanOpinion(tx.QueryRow(ctx, query, r.randIntN(total)))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch random opinion: %w", err)
		}
		return o, nil
	})
}

// textTaken reports whether another opinion (id != exceptID) has this text
func textTaken(ctx context.Context, tx pgx.Tx, text string, exceptID int64) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM opinions WHERE text = $1 AND id <> $2)`,
		text, exceptID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check text uniqueness: %w", err)
	}
	return exists, nil
}

func mapWriteError(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return model.ErrDuplicateText
		case pgBadEncoding:
			return model.ErrUnstorableText
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func nullIfEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func timestampArg(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
