// Package core defines the essential data structures and error taxonomy
// shared across the application. These components are deliberately free of
// transport and persistence concerns so the pipeline, the store, and the
// HTTP layer can evolve independently.
package core

import "time"

// ReviewRequest is the caller-owned input to a single review generation.
// It lives only for the duration of one call.
type ReviewRequest struct {
	Code     string
	Language string
}

// StructuredReview is the normalized result produced for every review
// request, whether it came from the live model or the offline analyzer.
// No field is ever absent: unreliable sources are defaulted during
// interpretation (score 5.0, placeholder text, empty slices).
type StructuredReview struct {
	QualityScore  float64
	ReviewText    string
	Suggestions   []string
	PotentialBugs []string
	Strengths     []string
	Reasoning     string
}

// Review is the canonical record handed to the persistence layer and
// returned to API callers. Suggestions and PotentialBugs are the
// StructuredReview sequences flattened to newline-joined text, because the
// store keeps them as opaque blobs. The flattening is canonical and lossy:
// ordering survives, list structure does not.
type Review struct {
	ID            int64     `db:"id" json:"id"`
	CodeSnippet   string    `db:"code_snippet" json:"code_snippet"`
	Language      string    `db:"language" json:"language"`
	ReviewText    string    `db:"review_text" json:"review_text"`
	Suggestions   string    `db:"suggestions" json:"suggestions"`
	PotentialBugs string    `db:"potential_bugs" json:"potential_bugs"`
	Strengths     []string  `db:"-" json:"strengths"`
	Reasoning     string    `db:"reasoning" json:"reasoning"`
	QualityScore  float64   `db:"quality_score" json:"quality_score"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
