package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Service accepts and lists feedback submissions.
type Service struct {
	repo      Repository
	notifier  Notifier
	logger    *slog.Logger
	validator *validator.Validate
	now       func() time.Time
}

// NewService constructs a Service. notifier may be nil.
func NewService(repo Repository, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		notifier:  notifier,
		logger:    logger,
		validator: validator.New(),
		now:       time.Now,
	}
}

// Submit validates and stores a submission, then notifies listeners.
// Notification failures are logged and do not fail the submission.
func (s *Service) Submit(ctx context.Context, in Input) (Entry, error) {
	in = in.normalised()
	if err := s.validator.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return Entry{}, fmt.Errorf("feedback: validate: %w", err)
		}
		verr := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
		for _, fe := range fieldErrs {
			verr.Fields[fe.Field()] = fieldMessage(fe)
		}
		return Entry{}, verr
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return Entry{}, fmt.Errorf("feedback: new id: %w", err)
	}
	entry := Entry{
		ID:        id,
		Name:      in.Name,
		Email:     in.Email,
		Message:   in.Message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return Entry{}, err
	}

	if s.notifier != nil {
		if err := s.notifier.FeedbackReceived(ctx, entry); err != nil {
			s.logger.Warn("notify feedback", slog.String("id", entry.ID.String()), slog.Any("error", err))
		}
	}
	return entry, nil
}

// Recent lists the newest entries.
func (s *Service) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return s.repo.Recent(ctx, limit)
}

// Get returns a single entry.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Entry, error) {
	return s.repo.Get(ctx, id)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Enter a valid email address"
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	default:
		return fe.Error()
	}
}
