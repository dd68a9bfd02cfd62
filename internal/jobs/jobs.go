// Package jobs runs the periodic background work: expiry cleanup, the
// weekly newsletter and sitemap refresh.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/olehvasyliv/cooking-corner/internal/apperr"
	"github.com/olehvasyliv/cooking-corner/internal/data"
)

// Job intervals. Cleanup runs often because pending registrations
// expire after five minutes; the newsletter matches its weekly lookback
// window.
const (
	CleanupInterval    = time.Minute
	NewsletterInterval = 7 * 24 * time.Hour
	SitemapInterval    = 12 * time.Hour

	pendingTTL   = 5 * time.Minute
	banRetention = 30 * 24 * time.Hour

	// newsletterSendDelay paces the broadcast to stay under the SMTP
	// provider's throughput limits.
	newsletterSendDelay = 20 * time.Second
)

// PendingSource lists and removes expired registrations.
type PendingSource interface {
	ListExpired(ctx context.Context, cutoff time.Time) ([]*data.PendingUser, error)
	Delete(ctx context.Context, email string) error
}

// CodeDeleter removes confirmation codes by email.
type CodeDeleter interface {
	Delete(ctx context.Context, email string) error
}

// BanSweeper purges aged ban entries.
type BanSweeper interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RecipeSource supplies the newsletter with the week's newest recipe.
type RecipeSource interface {
	LatestSince(ctx context.Context, cutoff time.Time) (*data.Recipe, error)
}

// SubscriberSource lists newsletter subscribers.
type SubscriberSource interface {
	List(ctx context.Context) ([]*data.Subscription, error)
}

// FolderDeleter removes an account's upload folder.
type FolderDeleter interface {
	DeleteAccountFolder(email string)
}

// NewsletterMailer sends the new-recipe notification.
type NewsletterMailer interface {
	SendNewRecipe(to, recipeTitle, recipeURL string) error
}

// SitemapRefresher regenerates the cached sitemap.
type SitemapRefresher interface {
	Refresh(ctx context.Context) error
}

// Runner owns the background jobs and their tickers.
type Runner struct {
	pending PendingSource
	codes   CodeDeleter
	banned  BanSweeper
	recipes RecipeSource
	subs    SubscriberSource
	uploads FolderDeleter
	mailer  NewsletterMailer
	sitemap SitemapRefresher

	siteURL string
	logger  zerolog.Logger

	// sendDelay is shortened in tests.
	sendDelay time.Duration
}

// Config wires a Runner.
type Config struct {
	Pending PendingSource
	Codes   CodeDeleter
	Banned  BanSweeper
	Recipes RecipeSource
	Subs    SubscriberSource
	Uploads FolderDeleter
	Mailer  NewsletterMailer
	Sitemap SitemapRefresher
	SiteURL string
	Logger  zerolog.Logger
}

// New returns a Runner ready to Start.
func New(cfg Config) *Runner {
	return &Runner{
		pending:   cfg.Pending,
		codes:     cfg.Codes,
		banned:    cfg.Banned,
		recipes:   cfg.Recipes,
		subs:      cfg.Subs,
		uploads:   cfg.Uploads,
		mailer:    cfg.Mailer,
		sitemap:   cfg.Sitemap,
		siteURL:   cfg.SiteURL,
		logger:    cfg.Logger.With().Str("component", "jobs").Logger(),
		sendDelay: newsletterSendDelay,
	}
}

// Start launches the job loops. They stop when ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	go r.loop(ctx, CleanupInterval, r.CleanupSweep)
	go r.loop(ctx, NewsletterInterval, r.SendNewsletter)
	go r.loop(ctx, SitemapInterval, func(ctx context.Context) {
		if err := r.sitemap.Refresh(ctx); err != nil {
			r.logger.Error().Err(err).Msg("sitemap refresh failed")
		}
	})
}

func (r *Runner) loop(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fn(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// CleanupSweep removes expired pending registrations (code, image
// folder, then the pending row) and purges aged ban entries. Each item
// is handled independently so one failure does not block the rest.
func (r *Runner) CleanupSweep(ctx context.Context) {
	expired, err := r.pending.ListExpired(ctx, time.Now().Add(-pendingTTL))
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list expired pending users")
	} else {
		for _, p := range expired {
			if err := r.codes.Delete(ctx, p.Email); err != nil {
				r.logger.Error().Err(err).Str("email", p.Email).Msg("failed to delete confirmation code")
			}
			r.uploads.DeleteAccountFolder(p.Email)
			if err := r.pending.Delete(ctx, p.Email); err != nil {
				r.logger.Error().Err(err).Str("email", p.Email).Msg("failed to delete pending user")
			}
		}
		if len(expired) > 0 {
			r.logger.Info().Int("count", len(expired)).Msg("expired pending registrations removed")
		}
	}

	purged, err := r.banned.DeleteOlderThan(ctx, time.Now().Add(-banRetention))
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to purge aged ban entries")
	} else if purged > 0 {
		r.logger.Info().Int64("count", purged).Msg("aged ban entries removed")
	}
}

// SendNewsletter emails every subscriber about the newest recipe of the
// past week. Sends run strictly one at a time with a fixed delay; a
// failure for one subscriber is logged and skipped.
func (r *Runner) SendNewsletter(ctx context.Context) {
	recipe, err := r.recipes.LatestSince(ctx, time.Now().AddDate(0, 0, -7))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			r.logger.Info().Msg("no new recipes this week, newsletter skipped")
		} else {
			r.logger.Error().Err(err).Msg("failed to load the week's newest recipe")
		}
		return
	}

	subscribers, err := r.subs.List(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list subscribers")
		return
	}
	if len(subscribers) == 0 {
		r.logger.Info().Msg("no newsletter subscribers")
		return
	}

	recipeURL := r.siteURL + "/recipe/" + recipe.ID.Hex()

	for i, sub := range subscribers {
		if err := r.mailer.SendNewRecipe(sub.Email, recipe.Title, recipeURL); err != nil {
			r.logger.Error().Err(err).Str("email", sub.Email).Msg("newsletter send failed")
			continue
		}
		r.logger.Info().Str("email", sub.Email).Msg("newsletter sent")

		if i == len(subscribers)-1 {
			break
		}
		select {
		case <-time.After(r.sendDelay):
		case <-ctx.Done():
			return
		}
	}
}
