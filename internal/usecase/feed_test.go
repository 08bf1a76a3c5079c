package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/mehfilhq/mehfil/internal/domain"
)

type mockThoughtRepo struct {
	created   []domain.Thought
	listed    []domain.Thought
	listErr   error
	lastLimit int
	lastOff   int
	counts    map[string]int64
	reacted   map[string]map[string]bool
	lookups   int
}

func newMockThoughtRepo() *mockThoughtRepo {
	return &mockThoughtRepo{
		counts:  map[string]int64{},
		reacted: map[string]map[string]bool{},
	}
}

func (m *mockThoughtRepo) Create(ctx context.Context, thought domain.Thought) error {
	m.created = append(m.created, thought)
	return nil
}

func (m *mockThoughtRepo) List(ctx context.Context, limit, offset int) ([]domain.Thought, error) {
	m.lastLimit = limit
	m.lastOff = offset
	return m.listed, m.listErr
}

func (m *mockThoughtRepo) ToggleReaction(ctx context.Context, thoughtID, userID string) (int64, error) {
	if m.reacted[thoughtID] == nil {
		m.reacted[thoughtID] = map[string]bool{}
	}
	if m.reacted[thoughtID][userID] {
		delete(m.reacted[thoughtID], userID)
		if m.counts[thoughtID] > 0 {
			m.counts[thoughtID]--
		}
	} else {
		m.reacted[thoughtID][userID] = true
		m.counts[thoughtID]++
	}
	return m.counts[thoughtID], nil
}

func (m *mockThoughtRepo) ReactedThoughtIDs(ctx context.Context, userID string, thoughtIDs []string) ([]string, error) {
	m.lookups++
	var out []string
	for _, id := range thoughtIDs {
		if m.reacted[id][userID] {
			out = append(out, id)
		}
	}
	return out, nil
}

func TestListClampsLimit(t *testing.T) {
	repo := newMockThoughtRepo()
	uc := NewFeedUsecase(repo, 50, 100)

	if _, err := uc.List(context.Background(), 500, 0); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if repo.lastLimit != 100 {
		t.Fatalf("expected limit clamped to 100, got %d", repo.lastLimit)
	}

	if _, err := uc.List(context.Background(), 0, 0); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if repo.lastLimit != 50 {
		t.Fatalf("expected default limit 50, got %d", repo.lastLimit)
	}
}

func TestListFloorsOffset(t *testing.T) {
	repo := newMockThoughtRepo()
	uc := NewFeedUsecase(repo, 50, 100)

	if _, err := uc.List(context.Background(), 10, -3); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if repo.lastOff != 0 {
		t.Fatalf("expected offset 0, got %d", repo.lastOff)
	}
}

func TestCreateValidThought(t *testing.T) {
	repo := newMockThoughtRepo()
	uc := NewFeedUsecase(repo, 50, 100)

	thought, err := uc.Create(context.Background(), CreateThoughtInput{
		UserID:     "user1",
		AuthorName: "Asha",
		Content:    "  hello  ",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if thought.Content != "hello" {
		t.Fatalf("expected trimmed content, got %q", thought.Content)
	}
	if thought.ID == "" {
		t.Fatalf("expected generated id")
	}
	if thought.RelatableCount != 0 {
		t.Fatalf("expected zero counter, got %d", thought.RelatableCount)
	}
	if thought.CreatedAt.IsZero() {
		t.Fatalf("expected server-assigned timestamp")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one persisted thought, got %d", len(repo.created))
	}
}

func TestCreateRejectsBlankContent(t *testing.T) {
	repo := newMockThoughtRepo()
	uc := NewFeedUsecase(repo, 50, 100)

	_, err := uc.Create(context.Background(), CreateThoughtInput{
		UserID:  "user1",
		Content: "   ",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = uc.Create(context.Background(), CreateThoughtInput{
		Content: "hello",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for missing user, got %v", err)
	}

	if len(repo.created) != 0 {
		t.Fatalf("expected nothing persisted, got %d", len(repo.created))
	}
}

func TestToggleReactionParity(t *testing.T) {
	repo := newMockThoughtRepo()
	uc := NewFeedUsecase(repo, 50, 100)

	for i := 1; i <= 5; i++ {
		count, err := uc.ToggleReaction(context.Background(), "t1", "user1")
		if err != nil {
			t.Fatalf("toggle %d failed: %v", i, err)
		}
		want := int64(i % 2)
		if count != want {
			t.Fatalf("after %d toggles expected count %d, got %d", i, want, count)
		}
	}
}

func TestToggleReactionRejectsMissingFields(t *testing.T) {
	repo := newMockThoughtRepo()
	uc := NewFeedUsecase(repo, 50, 100)

	if _, err := uc.ToggleReaction(context.Background(), "", "user1"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := uc.ToggleReaction(context.Background(), "t1", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUserReactionsShortCircuit(t *testing.T) {
	repo := newMockThoughtRepo()
	uc := NewFeedUsecase(repo, 50, 100)

	ids, err := uc.UserReactions(context.Background(), "user1", nil)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty result, got %v", ids)
	}
	if repo.lookups != 0 {
		t.Fatalf("expected no repository query, got %d", repo.lookups)
	}

	if _, err := uc.UserReactions(context.Background(), "", []string{"t1"}); err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if repo.lookups != 0 {
		t.Fatalf("expected no repository query for empty user, got %d", repo.lookups)
	}
}

func TestUserReactionsReturnsSubset(t *testing.T) {
	repo := newMockThoughtRepo()
	uc := NewFeedUsecase(repo, 50, 100)

	if _, err := uc.ToggleReaction(context.Background(), "t1", "user1"); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	ids, err := uc.UserReactions(context.Background(), "user1", []string{"t1", "t2"})
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "t1" {
		t.Fatalf("expected [t1], got %v", ids)
	}
}
