// Package sitemap builds and caches the site's sitemap.xml.
package sitemap

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/olehvasyliv/cooking-corner/internal/data"
)

// recipeLimit caps how many recipe URLs the sitemap carries.
const recipeLimit = 100

// RecipeLister is the slice of the recipes store the generator needs.
type RecipeLister interface {
	ListRecent(ctx context.Context, limit int64) ([]*data.Recipe, error)
}

// Generator keeps a process-lifetime cached sitemap, regenerated on
// startup and on a timer. Readers may see a slightly stale copy; that
// is accepted.
type Generator struct {
	siteURL string
	recipes RecipeLister
	logger  zerolog.Logger

	mu            sync.RWMutex
	cached        string
	lastGenerated time.Time
}

// New returns a Generator serving URLs under siteURL (no trailing
// slash).
func New(siteURL string, recipes RecipeLister, logger zerolog.Logger) *Generator {
	return &Generator{
		siteURL: strings.TrimRight(siteURL, "/"),
		recipes: recipes,
		logger:  logger.With().Str("component", "sitemap").Logger(),
	}
}

// Refresh regenerates the cached sitemap from the newest recipes.
func (g *Generator) Refresh(ctx context.Context) error {
	recipes, err := g.recipes.ListRecent(ctx, recipeLimit)
	if err != nil {
		g.logger.Error().Err(err).Msg("failed to generate sitemap")
		return err
	}

	xml := g.build(recipes)

	g.mu.Lock()
	g.cached = xml
	g.lastGenerated = time.Now()
	g.mu.Unlock()

	g.logger.Info().Int("recipes", len(recipes)).Msg("sitemap regenerated")
	return nil
}

// Cached returns the last generated sitemap, empty until the first
// Refresh completes.
func (g *Generator) Cached() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cached
}

// LastGenerated reports when the cache was last refreshed.
func (g *Generator) LastGenerated() time.Time {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lastGenerated
}

func (g *Generator) build(recipes []*data.Recipe) string {
	var b strings.Builder

	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")

	g.writeURL(&b, "/", "", "daily", "1.0")
	g.writeURL(&b, "/rules", "", "monthly", "0.5")
	g.writeURL(&b, "/privacy", "", "yearly", "0.4")

	for _, r := range recipes {
		g.writeURL(&b,
			"/recipe/"+r.ID.Hex(),
			r.CreatedAt.UTC().Format(time.RFC3339),
			"weekly", "0.8")
	}

	b.WriteString("</urlset>\n")
	return b.String()
}

func (g *Generator) writeURL(b *strings.Builder, path, lastmod, changefreq, priority string) {
	b.WriteString("  <url>\n")
	fmt.Fprintf(b, "    <loc>%s%s</loc>\n", g.siteURL, path)
	if lastmod != "" {
		fmt.Fprintf(b, "    <lastmod>%s</lastmod>\n", lastmod)
	}
	fmt.Fprintf(b, "    <changefreq>%s</changefreq>\n", changefreq)
	fmt.Fprintf(b, "    <priority>%s</priority>\n", priority)
	b.WriteString("  </url>\n")
}
