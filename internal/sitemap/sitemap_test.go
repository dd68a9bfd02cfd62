package sitemap

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/olehvasyliv/cooking-corner/internal/data"
)

type listerStub struct {
	recipes []*data.Recipe
}

func (s *listerStub) ListRecent(ctx context.Context, limit int64) ([]*data.Recipe, error) {
	return s.recipes, nil
}

func TestGeneratorRefresh(t *testing.T) {
	created := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	recipe := &data.Recipe{ID: bson.NewObjectID(), CreatedAt: created}

	g := New("https://kulinarny-kutochok.com.ua/", &listerStub{recipes: []*data.Recipe{recipe}}, zerolog.Nop())

	// empty until the first refresh
	assert.Empty(t, g.Cached())

	require.NoError(t, g.Refresh(context.Background()))
	xml := g.Cached()

	assert.True(t, strings.HasPrefix(xml, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, xml, "<loc>https://kulinarny-kutochok.com.ua/</loc>")
	assert.Contains(t, xml, "<loc>https://kulinarny-kutochok.com.ua/rules</loc>")
	assert.Contains(t, xml, "<loc>https://kulinarny-kutochok.com.ua/privacy</loc>")
	assert.Contains(t, xml, "<loc>https://kulinarny-kutochok.com.ua/recipe/"+recipe.ID.Hex()+"</loc>")
	assert.Contains(t, xml, "<lastmod>2026-08-15T10:00:00Z</lastmod>")
	assert.False(t, g.LastGenerated().IsZero())
}
