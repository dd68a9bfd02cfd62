package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/olehvasyliv/cooking-corner/internal/apperr"
)

func TestRecipeParamsValidate(t *testing.T) {
	full := RecipeParams{
		Title:        "Borshch",
		Ingredients:  "beets",
		Instructions: "cook",
		Time:         "90 min",
		Servings:     6,
		Category:     "soups",
	}
	assert.NoError(t, full.validate())

	blank := func(mutate func(*RecipeParams)) RecipeParams {
		p := full
		mutate(&p)
		return p
	}

	cases := map[string]RecipeParams{
		"title":        blank(func(p *RecipeParams) { p.Title = "" }),
		"ingredients":  blank(func(p *RecipeParams) { p.Ingredients = "" }),
		"instructions": blank(func(p *RecipeParams) { p.Instructions = "" }),
		"time":         blank(func(p *RecipeParams) { p.Time = "" }),
		"servings":     blank(func(p *RecipeParams) { p.Servings = 0 }),
		"category":     blank(func(p *RecipeParams) { p.Category = "" }),
	}
	for field, p := range cases {
		assert.ErrorIs(t, p.validate(), apperr.ErrValidation, "missing %s must be rejected", field)
	}
}
