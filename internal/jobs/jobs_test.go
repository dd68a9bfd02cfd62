package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/olehvasyliv/cooking-corner/internal/apperr"
	"github.com/olehvasyliv/cooking-corner/internal/data"
)

type pendingStub struct {
	expired []*data.PendingUser
	deleted []string
}

func (s *pendingStub) ListExpired(ctx context.Context, cutoff time.Time) ([]*data.PendingUser, error) {
	return s.expired, nil
}

func (s *pendingStub) Delete(ctx context.Context, email string) error {
	s.deleted = append(s.deleted, email)
	return nil
}

type codesStub struct {
	deleted []string
	fail    map[string]bool
}

func (s *codesStub) Delete(ctx context.Context, email string) error {
	if s.fail[email] {
		return errors.New("boom")
	}
	s.deleted = append(s.deleted, email)
	return nil
}

type bannedStub struct {
	purged int64
}

func (s *bannedStub) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.purged, nil
}

type recipeStub struct {
	recipe *data.Recipe
}

func (s *recipeStub) LatestSince(ctx context.Context, cutoff time.Time) (*data.Recipe, error) {
	if s.recipe == nil {
		return nil, fmt.Errorf("recipe: %w", apperr.ErrNotFound)
	}
	return s.recipe, nil
}

type subsStub struct {
	subs []*data.Subscription
}

func (s *subsStub) List(ctx context.Context) ([]*data.Subscription, error) {
	return s.subs, nil
}

type foldersStub struct {
	deleted []string
}

func (s *foldersStub) DeleteAccountFolder(email string) {
	s.deleted = append(s.deleted, email)
}

type newsletterStub struct {
	mu   sync.Mutex
	sent []string
	fail map[string]bool
}

func (s *newsletterStub) SendNewRecipe(to, title, url string) error {
	if s.fail[to] {
		return errors.New("smtp boom")
	}
	s.mu.Lock()
	s.sent = append(s.sent, to)
	s.mu.Unlock()
	return nil
}

func (s *newsletterStub) sentTo() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

type sitemapStub struct{ refreshes int }

func (s *sitemapStub) Refresh(ctx context.Context) error {
	s.refreshes++
	return nil
}

func newTestRunner(pending *pendingStub, codes *codesStub, banned *bannedStub,
	recipes *recipeStub, subs *subsStub, folders *foldersStub, mailer *newsletterStub) *Runner {
	r := New(Config{
		Pending: pending,
		Codes:   codes,
		Banned:  banned,
		Recipes: recipes,
		Subs:    subs,
		Uploads: folders,
		Mailer:  mailer,
		Sitemap: &sitemapStub{},
		SiteURL: "https://kulinarny-kutochok.com.ua",
		Logger:  zerolog.Nop(),
	})
	r.sendDelay = time.Millisecond
	return r
}

func TestCleanupSweep(t *testing.T) {
	pending := &pendingStub{expired: []*data.PendingUser{
		{Email: "a@example.com"},
		{Email: "b@example.com"},
	}}
	codes := &codesStub{fail: map[string]bool{"a@example.com": true}}
	folders := &foldersStub{}

	r := newTestRunner(pending, codes, &bannedStub{purged: 3},
		&recipeStub{}, &subsStub{}, folders, &newsletterStub{})

	r.CleanupSweep(context.Background())

	// a failing code delete does not stop the rest of that user's
	// cleanup, nor the next user's
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, folders.deleted)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, pending.deleted)
	assert.Equal(t, []string{"b@example.com"}, codes.deleted)
}

func TestNewsletterSkipsWhenNoNewRecipe(t *testing.T) {
	mailer := &newsletterStub{}
	r := newTestRunner(&pendingStub{}, &codesStub{}, &bannedStub{},
		&recipeStub{recipe: nil},
		&subsStub{subs: []*data.Subscription{{Email: "s@example.com"}}},
		&foldersStub{}, mailer)

	r.SendNewsletter(context.Background())
	assert.Empty(t, mailer.sent)
}

func TestNewsletterSequentialWithFailures(t *testing.T) {
	recipe := &data.Recipe{ID: bson.NewObjectID(), Title: "Borshch", CreatedAt: time.Now()}
	mailer := &newsletterStub{fail: map[string]bool{"bad@example.com": true}}

	r := newTestRunner(&pendingStub{}, &codesStub{}, &bannedStub{},
		&recipeStub{recipe: recipe},
		&subsStub{subs: []*data.Subscription{
			{Email: "one@example.com"},
			{Email: "bad@example.com"},
			{Email: "two@example.com"},
		}},
		&foldersStub{}, mailer)

	r.SendNewsletter(context.Background())

	// the failed subscriber is skipped, the rest still get theirs
	assert.Equal(t, []string{"one@example.com", "two@example.com"}, mailer.sent)
}

func TestNewsletterStopsOnCancel(t *testing.T) {
	recipe := &data.Recipe{ID: bson.NewObjectID(), Title: "Borshch", CreatedAt: time.Now()}
	mailer := &newsletterStub{}

	r := newTestRunner(&pendingStub{}, &codesStub{}, &bannedStub{},
		&recipeStub{recipe: recipe},
		&subsStub{subs: []*data.Subscription{
			{Email: "one@example.com"},
			{Email: "two@example.com"},
		}},
		&foldersStub{}, mailer)
	r.sendDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.SendNewsletter(ctx)
		close(done)
	}()

	// the first send happens immediately; cancelling during the
	// inter-send delay ends the broadcast
	assert.Eventually(t, func() bool { return len(mailer.sentTo()) == 1 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SendNewsletter did not stop on cancel")
	}
	assert.Equal(t, []string{"one@example.com"}, mailer.sentTo())
}
