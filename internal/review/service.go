package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sevigo/code-critic/internal/config"
	"github.com/sevigo/code-critic/internal/core"
	"github.com/sevigo/code-critic/internal/llm"
	"github.com/sevigo/code-critic/internal/storage"
)

// ModelGateway is the remote invocation half of the live pipeline path.
// Implementations own retry and timeout policy and return a terminal
// *core.GatewayError when the attempt budget is exhausted.
type ModelGateway interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Service runs the review generation pipeline and hands the resulting
// record to the store. Every call is independent; no state is shared
// between requests beyond the read-only configuration, so concurrent
// invocations need no locking.
type Service struct {
	cfg       *config.Config
	validator *Validator
	prompts   *llm.PromptManager
	gateway   ModelGateway
	analyzer  *Analyzer
	store     storage.Store
	logger    *slog.Logger
}

// NewService creates the pipeline service. The gateway may be nil only in
// offline mode, where it is never consulted.
func NewService(cfg *config.Config, prompts *llm.PromptManager, gateway ModelGateway, store storage.Store, logger *slog.Logger) *Service {
	return &Service{
		cfg:       cfg,
		validator: NewValidator(cfg.MaxCodeLength),
		prompts:   prompts,
		gateway:   gateway,
		analyzer:  NewAnalyzer(),
		store:     store,
		logger:    logger,
	}
}

// GenerateReview validates the request, produces a structured review via
// the live model or the offline analyzer, assembles the canonical record,
// and persists it. Validation failures surface as *core.InvalidInputError,
// exhausted model calls as *core.GatewayError, and persistence problems
// wrapped in core.ErrStorage so the caller can distinguish "could not
// generate" from "could not save".
func (s *Service) GenerateReview(ctx context.Context, req core.ReviewRequest) (*core.Review, error) {
	if err := s.validator.Validate(req.Code, req.Language); err != nil {
		return nil, err
	}

	structured, err := s.generate(ctx, req)
	if err != nil {
		return nil, err
	}

	record := assemble(req, structured)
	if err := s.store.SaveReview(ctx, record); err != nil {
		s.logger.Error("failed to save generated review", "language", record.Language, "error", err)
		return nil, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	s.logger.Info("review generated",
		"language", record.Language,
		"quality_score", record.QualityScore,
		"offline", s.cfg.OfflineMode,
	)
	return record, nil
}

// Generate validates the request and produces a structured review without
// persisting it. Callers that only need this path may construct the
// service with a nil store.
func (s *Service) Generate(ctx context.Context, req core.ReviewRequest) (*core.StructuredReview, error) {
	if err := s.validator.Validate(req.Code, req.Language); err != nil {
		return nil, err
	}
	return s.generate(ctx, req)
}

// generate produces the StructuredReview from whichever source the
// configuration selects.
func (s *Service) generate(ctx context.Context, req core.ReviewRequest) (*core.StructuredReview, error) {
	if s.cfg.OfflineMode {
		return s.analyzer.Analyze(req.Code, req.Language), nil
	}

	prompt, err := s.prompts.Render(llm.CodeReviewPrompt, llm.DefaultProvider, llm.CodeReviewData{
		Language: req.Language,
		Code:     req.Code,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering review prompt: %w", err)
	}

	raw, err := s.gateway.Invoke(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating review: %w", err)
	}

	return llm.Interpret(raw), nil
}

// assemble flattens the structured review into the canonical record
// shape. The suggestion and bug sequences become newline-joined text
// because the store keeps them as opaque blobs; an empty sequence becomes
// an empty string, never null.
func assemble(req core.ReviewRequest, sr *core.StructuredReview) *core.Review {
	strengths := sr.Strengths
	if strengths == nil {
		strengths = []string{}
	}
	return &core.Review{
		CodeSnippet:   req.Code,
		Language:      strings.ToLower(strings.TrimSpace(req.Language)),
		ReviewText:    sr.ReviewText,
		Suggestions:   strings.Join(sr.Suggestions, "\n"),
		PotentialBugs: strings.Join(sr.PotentialBugs, "\n"),
		Strengths:     strengths,
		Reasoning:     sr.Reasoning,
		QualityScore:  sr.QualityScore,
	}
}

// GetReview returns a stored review by ID.
func (s *Service) GetReview(ctx context.Context, id int64) (*core.Review, error) {
	return s.store.GetReviewByID(ctx, id)
}

// ListReviews returns a page of stored reviews, newest first, plus the
// total number of rows matching the filter.
func (s *Service) ListReviews(ctx context.Context, filter storage.ListFilter) ([]core.Review, int, error) {
	return s.store.ListReviews(ctx, filter)
}

// DeleteReview removes a stored review by ID.
func (s *Service) DeleteReview(ctx context.Context, id int64) error {
	return s.store.DeleteReview(ctx, id)
}
