package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sevigo/code-critic/internal/core"
	"github.com/sevigo/code-critic/internal/storage"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// ReviewService is the slice of the review service the handlers consume.
type ReviewService interface {
	GenerateReview(ctx context.Context, req core.ReviewRequest) (*core.Review, error)
	GetReview(ctx context.Context, id int64) (*core.Review, error)
	ListReviews(ctx context.Context, filter storage.ListFilter) ([]core.Review, int, error)
	DeleteReview(ctx context.Context, id int64) error
}

// ReviewHandler serves the review CRUD API.
type ReviewHandler struct {
	svc    ReviewService
	logger *slog.Logger
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(svc ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{svc: svc, logger: logger}
}

type createReviewRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type listReviewsResponse struct {
	Reviews    []core.Review `json:"reviews"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
	TotalPages int           `json:"total_pages"`
}

// Create generates a review for the submitted snippet and returns the
// stored record. Caller errors map to 400, generation failures to 502,
// and save failures to 500 with a distinct message, so clients can tell
// "could not generate" apart from "generated but could not save".
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}

	record, err := h.svc.GenerateReview(r.Context(), core.ReviewRequest{
		Code:     req.Code,
		Language: req.Language,
	})
	if err != nil {
		var invalid *core.InvalidInputError
		var gateway *core.GatewayError
		switch {
		case errors.As(err, &invalid):
			writeError(w, http.StatusBadRequest, invalid.Message)
		case errors.As(err, &gateway):
			h.logger.Error("review generation failed", "error", err)
			writeError(w, http.StatusBadGateway, "failed to generate review")
		case errors.Is(err, core.ErrStorage):
			h.logger.Error("review generated but not saved", "error", err)
			writeError(w, http.StatusInternalServerError, "review was generated but could not be saved")
		default:
			h.logger.Error("unexpected error creating review", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// List returns a filtered, paginated listing of stored reviews, newest
// first. Invalid date filters are ignored rather than rejected.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := 1
	if raw := q.Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "page must be an integer >= 1")
			return
		}
		page = v
	}

	perPage := defaultPerPage
	if raw := q.Get("per_page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxPerPage {
			writeError(w, http.StatusBadRequest, "per_page must be between 1 and 100")
			return
		}
		perPage = v
	}

	filter := storage.ListFilter{
		Language: q.Get("language"),
		Page:     page,
		PerPage:  perPage,
	}
	if t, ok := parseTimeParam(q.Get("start_date")); ok {
		filter.StartDate = &t
	}
	if t, ok := parseTimeParam(q.Get("end_date")); ok {
		filter.EndDate = &t
	}

	reviews, total, err := h.svc.ListReviews(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list reviews", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch reviews")
		return
	}

	writeJSON(w, http.StatusOK, listReviewsResponse{
		Reviews:    reviews,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: (total + perPage - 1) / perPage,
	})
}

// Get returns a single stored review by ID.
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}

	record, err := h.svc.GetReview(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrReviewNotFound) {
			writeError(w, http.StatusNotFound, "review not found")
			return
		}
		h.logger.Error("failed to fetch review", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch review")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// Delete removes a stored review by ID.
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteReview(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrReviewNotFound) {
			writeError(w, http.StatusNotFound, "review not found")
			return
		}
		h.logger.Error("failed to delete review", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete review")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "review " + strconv.FormatInt(id, 10) + " deleted successfully",
	})
}

// idParam extracts and validates the {id} route parameter, writing a 400
// response when it is not a positive integer.
func (h *ReviewHandler) idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "review ID must be a positive integer")
		return 0, false
	}
	return id, true
}

// parseTimeParam accepts RFC 3339 timestamps and bare dates. Anything
// else is treated as absent.
func parseTimeParam(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}
