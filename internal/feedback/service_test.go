package feedback

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	entries   []Entry
	createErr error
}

func (m *memoryRepo) Create(ctx context.Context, entry Entry) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append([]Entry{entry}, m.entries...)
	return nil
}

func (m *memoryRepo) Get(ctx context.Context, id uuid.UUID) (Entry, error) {
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

func (m *memoryRepo) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit > len(m.entries) {
		limit = len(m.entries)
	}
	return m.entries[:limit], nil
}

type recordingNotifier struct {
	got []Entry
	err error
}

func (n *recordingNotifier) FeedbackReceived(ctx context.Context, entry Entry) error {
	n.got = append(n.got, entry)
	return n.err
}

func TestSubmitStoresAndNotifies(t *testing.T) {
	repo := &memoryRepo{}
	notifier := &recordingNotifier{}
	svc := NewService(repo, notifier, nil)
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	entry, err := svc.Submit(context.Background(), Input{Name: "  Ana ", Email: "ana@example.com", Message: "Great form"})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, "Ana", entry.Name)
	assert.Equal(t, fixed, entry.CreatedAt)
	require.Len(t, repo.entries, 1)
	require.Len(t, notifier.got, 1)
	assert.Equal(t, entry.ID, notifier.got[0].ID)
}

func TestSubmitValidationErrors(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, nil, nil)

	_, err := svc.Submit(context.Background(), Input{Email: "not-an-email", Message: strings.Repeat("x", 2001)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidEntry)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "Name")
	assert.Contains(t, verr.Fields, "Email")
	assert.Contains(t, verr.Fields, "Message")
	assert.Equal(t, "This field is required", verr.Fields["Name"])
	assert.Equal(t, "feedback: invalid entry: Email, Message, Name", verr.Error())
	assert.Empty(t, repo.entries)
}

func TestSubmitRepositoryFailure(t *testing.T) {
	boom := errors.New("store down")
	notifier := &recordingNotifier{}
	svc := NewService(&memoryRepo{createErr: boom}, notifier, nil)

	_, err := svc.Submit(context.Background(), Input{Name: "Ana", Email: "ana@example.com", Message: "hi"})

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, notifier.got)
}

func TestSubmitNotifierFailureIsNotFatal(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, &recordingNotifier{err: errors.New("queue down")}, nil)

	_, err := svc.Submit(context.Background(), Input{Name: "Ana", Email: "ana@example.com", Message: "hi"})

	assert.NoError(t, err)
	assert.Len(t, repo.entries, 1)
}

func TestGetAndRecent(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, nil, nil)
	first, err := svc.Submit(context.Background(), Input{Name: "A", Email: "a@example.com", Message: "one"})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), Input{Name: "B", Email: "b@example.com", Message: "two"})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, "one", got.Message)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	recent, err := svc.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "two", recent[0].Message)
}
