package feedback

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidEntry indicates the submitted form failed validation.
	ErrInvalidEntry = errors.New("feedback: invalid entry")
	// ErrNotFound indicates the requested entry does not exist.
	ErrNotFound = errors.New("feedback: not found")
)

// Entry is a stored feedback submission.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Input carries the user-editable form fields.
type Input struct {
	Name    string `validate:"required,max=80"`
	Email   string `validate:"required,email,max=254"`
	Message string `validate:"required,max=2000"`
}

func (in Input) normalised() Input {
	return Input{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Message: strings.TrimSpace(in.Message),
	}
}

// ValidationError lists field-level problems keyed by struct field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return ErrInvalidEntry.Error() + ": " + strings.Join(keys, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidEntry
}

// Repository persists feedback entries.
type Repository interface {
	Create(ctx context.Context, entry Entry) error
	Get(ctx context.Context, id uuid.UUID) (Entry, error)
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// Notifier is told about accepted submissions.
type Notifier interface {
	FeedbackReceived(ctx context.Context, entry Entry) error
}
