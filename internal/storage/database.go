// Package storage persists canonical review records in postgres.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	// import db drivers
	_ "github.com/lib/pq"

	"github.com/sevigo/code-critic/internal/core"
)

// ListFilter narrows and pages a review listing. Page is 1-indexed.
// Nil date bounds are open.
type ListFilter struct {
	Language  string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PerPage   int
}

// Store defines the interface for all database operations.
type Store interface {
	// SaveReview inserts the record and fills in its assigned ID and
	// creation timestamp.
	SaveReview(ctx context.Context, review *core.Review) error
	// GetReviewByID returns core.ErrReviewNotFound for an unknown ID.
	GetReviewByID(ctx context.Context, id int64) (*core.Review, error)
	// ListReviews returns the filtered page ordered newest first, plus
	// the total row count matching the filter.
	ListReviews(ctx context.Context, filter ListFilter) ([]core.Review, int, error)
	// DeleteReview returns core.ErrReviewNotFound for an unknown ID.
	DeleteReview(ctx context.Context, id int64) error
}

type postgresStore struct {
	db *sqlx.DB
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

// reviewRow is the table shape. Strengths are stored newline-joined like
// the other flattened sequences.
type reviewRow struct {
	ID            int64     `db:"id"`
	CodeSnippet   string    `db:"code_snippet"`
	Language      string    `db:"language"`
	ReviewText    string    `db:"review_text"`
	Suggestions   string    `db:"suggestions"`
	PotentialBugs string    `db:"potential_bugs"`
	Strengths     string    `db:"strengths"`
	Reasoning     string    `db:"reasoning"`
	QualityScore  float64   `db:"quality_score"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r *reviewRow) toReview() core.Review {
	var strengths []string
	if r.Strengths != "" {
		strengths = strings.Split(r.Strengths, "\n")
	} else {
		strengths = []string{}
	}
	return core.Review{
		ID:            r.ID,
		CodeSnippet:   r.CodeSnippet,
		Language:      r.Language,
		ReviewText:    r.ReviewText,
		Suggestions:   r.Suggestions,
		PotentialBugs: r.PotentialBugs,
		Strengths:     strengths,
		Reasoning:     r.Reasoning,
		QualityScore:  r.QualityScore,
		CreatedAt:     r.CreatedAt,
	}
}

// SaveReview inserts a new review record and backfills ID and CreatedAt.
func (s *postgresStore) SaveReview(ctx context.Context, review *core.Review) error {
	query := `
		INSERT INTO reviews (code_snippet, language, review_text, suggestions, potential_bugs, strengths, reasoning, quality_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	now := time.Now().UTC()
	row := s.db.QueryRowContext(ctx, query,
		review.CodeSnippet,
		review.Language,
		review.ReviewText,
		review.Suggestions,
		review.PotentialBugs,
		strings.Join(review.Strengths, "\n"),
		review.Reasoning,
		review.QualityScore,
		now,
	)
	if err := row.Scan(&review.ID, &review.CreatedAt); err != nil {
		return fmt.Errorf("inserting review: %w", err)
	}
	return nil
}

// GetReviewByID retrieves a single review.
func (s *postgresStore) GetReviewByID(ctx context.Context, id int64) (*core.Review, error) {
	query := `
		SELECT id, code_snippet, language, review_text, suggestions, potential_bugs, strengths, reasoning, quality_score, created_at
		FROM reviews
		WHERE id = $1`

	var r reviewRow
	if err := s.db.GetContext(ctx, &r, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrReviewNotFound
		}
		return nil, fmt.Errorf("querying review %d: %w", id, err)
	}
	review := r.toReview()
	return &review, nil
}

// ListReviews retrieves a filtered, paginated page of reviews ordered
// newest first.
func (s *postgresStore) ListReviews(ctx context.Context, filter ListFilter) ([]core.Review, int, error) {
	var where []string
	var args []any

	if filter.Language != "" {
		args = append(args, strings.ToLower(filter.Language))
		where = append(where, fmt.Sprintf("language = $%d", len(args)))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		where = append(where, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM reviews" + whereClause
	if err := s.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("counting reviews: %w", err)
	}

	args = append(args, filter.PerPage)
	limitPos := len(args)
	args = append(args, (filter.Page-1)*filter.PerPage)
	offsetPos := len(args)

	listQuery := fmt.Sprintf(`
		SELECT id, code_snippet, language, review_text, suggestions, potential_bugs, strengths, reasoning, quality_score, created_at
		FROM reviews%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, whereClause, limitPos, offsetPos)

	var rows []reviewRow
	if err := s.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("listing reviews: %w", err)
	}

	reviews := make([]core.Review, 0, len(rows))
	for i := range rows {
		reviews = append(reviews, rows[i].toReview())
	}
	return reviews, total, nil
}

// DeleteReview removes a review by ID.
func (s *postgresStore) DeleteReview(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting review %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return core.ErrReviewNotFound
	}
	return nil
}
