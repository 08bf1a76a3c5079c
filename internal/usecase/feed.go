package usecase

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/mehfilhq/mehfil/internal/domain"
	"github.com/mehfilhq/mehfil/internal/tid"
)

var tracer = otel.Tracer("feed")

// ThoughtRepository defines storage operations for thoughts and reactions.
type ThoughtRepository interface {
	Create(ctx context.Context, thought domain.Thought) error
	List(ctx context.Context, limit, offset int) ([]domain.Thought, error)
	ToggleReaction(ctx context.Context, thoughtID, userID string) (int64, error)
	ReactedThoughtIDs(ctx context.Context, userID string, thoughtIDs []string) ([]string, error)
}

// CreateThoughtInput is the validated input for creating a thought.
type CreateThoughtInput struct {
	UserID       string
	AuthorName   string
	AuthorAvatar *string
	Content      string
	ImageURL     *string
}

type FeedUsecase struct {
	repo         ThoughtRepository
	defaultLimit int
	maxLimit     int
	nonce        atomic.Uint64
}

func NewFeedUsecase(repo ThoughtRepository, defaultLimit, maxLimit int) *FeedUsecase {
	return &FeedUsecase{
		repo:         repo,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// List returns a newest-first page of thoughts. Out-of-range paging inputs
// are normalized rather than rejected: limit falls back to the default and
// is capped at the maximum, negative offsets read from the top.
func (uc *FeedUsecase) List(ctx context.Context, limit, offset int) ([]domain.Thought, error) {
	ctx, span := tracer.Start(ctx, "Feed.Usecase.List")
	defer span.End()

	if limit <= 0 {
		limit = uc.defaultLimit
	}
	if limit > uc.maxLimit {
		limit = uc.maxLimit
	}
	if offset < 0 {
		offset = 0
	}

	thoughts, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "FeedUsecase.List: repo.List failed")
	}
	return thoughts, nil
}

// Create validates and persists a new thought with a zero reaction counter
// and a server-assigned timestamp.
func (uc *FeedUsecase) Create(ctx context.Context, input CreateThoughtInput) (domain.Thought, error) {
	ctx, span := tracer.Start(ctx, "Feed.Usecase.Create")
	defer span.End()

	content := strings.TrimSpace(input.Content)
	if input.UserID == "" || content == "" {
		return domain.Thought{}, domain.ErrValidation
	}

	now := time.Now().UTC()
	thought := domain.Thought{
		ID:             tid.New(input.UserID, content, now, uc.nonce.Add(1)),
		UserID:         input.UserID,
		AuthorName:     input.AuthorName,
		AuthorAvatar:   input.AuthorAvatar,
		Content:        content,
		ImageURL:       input.ImageURL,
		RelatableCount: 0,
		CreatedAt:      now,
	}

	err := uc.repo.Create(ctx, thought)
	if err != nil {
		span.RecordError(err)
		return domain.Thought{}, errors.Wrap(err, "FeedUsecase.Create: repo.Create failed")
	}

	return thought, nil
}

// ToggleReaction flips the (thoughtID, userID) reaction and returns the
// authoritative counter value read back after the write.
func (uc *FeedUsecase) ToggleReaction(ctx context.Context, thoughtID, userID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "Feed.Usecase.ToggleReaction")
	defer span.End()

	if thoughtID == "" || userID == "" {
		return 0, domain.ErrValidation
	}

	count, err := uc.repo.ToggleReaction(ctx, thoughtID, userID)
	if err != nil {
		span.RecordError(err)
		return 0, errors.Wrap(err, "FeedUsecase.ToggleReaction: repo.ToggleReaction failed")
	}
	return count, nil
}

// UserReactions returns the subset of thoughtIDs the user has reacted to.
// An empty user or id list short-circuits without touching storage.
func (uc *FeedUsecase) UserReactions(ctx context.Context, userID string, thoughtIDs []string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Feed.Usecase.UserReactions")
	defer span.End()

	if userID == "" || len(thoughtIDs) == 0 {
		return []string{}, nil
	}

	ids, err := uc.repo.ReactedThoughtIDs(ctx, userID, thoughtIDs)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "FeedUsecase.UserReactions: repo.ReactedThoughtIDs failed")
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
