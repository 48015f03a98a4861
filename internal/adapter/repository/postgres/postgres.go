package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const uniqueViolationErrCode = "23505"

func isUniqueViolationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == uniqueViolationErrCode
}

const urlColumns = `id, short_code, original_url, is_active, clicks, created_at`

type urlDB struct {
	ID          int64     `db:"id"`
	ShortCode   string    `db:"short_code"`
	OriginalURL string    `db:"original_url"`
	IsActive    bool      `db:"is_active"`
	Clicks      int64     `db:"clicks"`
	CreatedAt   time.Time `db:"created_at"`
}

func (u *urlDB) toEntity() *entity.URL {
	return &entity.URL{
		ID:          u.ID,
		ShortCode:   u.ShortCode,
		OriginalURL: u.OriginalURL,
		IsActive:    u.IsActive,
		Clicks:      u.Clicks,
		CreatedAt:   u.CreatedAt,
	}
}

type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{db: db}
}

// Save inserts a new active URL. A duplicate short code is reported as
// entity.ErrShortCodeExists and is decided by the unique index, not by a prior read.
func (r *URLRepository) Save(ctx context.Context, shortCode, originalURL string) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.Save"
	const query = `INSERT INTO urls(short_code, original_url) VALUES ($1, $2) RETURNING ` + urlColumns

	var url urlDB

	if err := r.db.GetContext(ctx, &url, query, shortCode, originalURL); err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to insert into urls table: %w: %w", op, entity.ErrStorage, err)
	}

	return url.toEntity(), nil
}

// ExistsByShortCode reports whether any URL, active or retired, uses shortCode.
func (r *URLRepository) ExistsByShortCode(ctx context.Context, shortCode string) (bool, error) {
	const op = "adapter.repository.postgres.URLRepository.ExistsByShortCode"
	const query = `SELECT EXISTS(SELECT 1 FROM urls WHERE short_code = $1)`

	var exists bool

	if err := r.db.GetContext(ctx, &exists, query, shortCode); err != nil {
		return false, fmt.Errorf("%s: failed to query urls table: %w: %w", op, entity.ErrStorage, err)
	}

	return exists, nil
}

func (r *URLRepository) RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.RetrieveByShortCode"
	const query = `SELECT ` + urlColumns + ` FROM urls WHERE short_code = $1 AND is_active`

	var url urlDB

	if err := r.db.GetContext(ctx, &url, query, shortCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from urls table: %w: %w", op, entity.ErrStorage, err)
	}

	return url.toEntity(), nil
}

// RetrieveAndIncrementClicks bumps the click counter of an active URL in one
// statement, so concurrent resolves of the same code never lose an increment.
func (r *URLRepository) RetrieveAndIncrementClicks(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.RetrieveAndIncrementClicks"
	const query = `UPDATE urls SET clicks = clicks + 1 WHERE short_code = $1 AND is_active RETURNING ` + urlColumns

	var url urlDB

	if err := r.db.GetContext(ctx, &url, query, shortCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to update urls table row: %w: %w", op, entity.ErrStorage, err)
	}

	return url.toEntity(), nil
}
