package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/olehvasyliv/cooking-corner/internal/apperr"
	"github.com/olehvasyliv/cooking-corner/internal/data"
	"github.com/olehvasyliv/cooking-corner/internal/storage"
)

// Recipes implements recipe creation, editing, listing and the recipe
// delete cascade.
type Recipes struct {
	stores  *Stores
	uploads Uploads
	logger  zerolog.Logger
}

// NewRecipes returns a wired Recipes service.
func NewRecipes(stores *Stores, uploads Uploads, logger zerolog.Logger) *Recipes {
	return &Recipes{
		stores:  stores,
		uploads: uploads,
		logger:  logger.With().Str("component", "recipes").Logger(),
	}
}

// RecipeParams carries the recipe form fields shared by create and
// update.
type RecipeParams struct {
	Title        string
	Ingredients  string
	Instructions string
	Time         string
	Servings     int
	Category     string
}

func (p RecipeParams) validate() error {
	if p.Title == "" || p.Ingredients == "" || p.Instructions == "" || p.Category == "" {
		return fmt.Errorf("recipe: %w", apperr.ErrValidation)
	}
	if p.Time == "" || p.Servings == 0 {
		return fmt.Errorf("recipe: %w", apperr.ErrValidation)
	}
	return nil
}

// Create inserts a recipe for the author identified by email. The
// author's name and photo are copied onto the recipe as snapshots and
// never updated afterwards. Without a photo the recipe gets the shared
// placeholder image.
func (r *Recipes) Create(ctx context.Context, authorEmail string, p RecipeParams, photo io.Reader) (*data.Recipe, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	author, err := r.stores.Users.GetByEmail(ctx, authorEmail)
	if err != nil {
		return nil, err
	}

	photoPath := storage.PlaceholderRecipePhoto
	if photo != nil {
		photoPath, err = r.uploads.SaveImage(author.Email, photo)
		if err != nil {
			return nil, fmt.Errorf("store recipe photo: %w", err)
		}
	}

	recipe := &data.Recipe{
		Title:        p.Title,
		AuthorID:     author.ID,
		AuthorName:   author.Name,
		AuthorPhoto:  author.Image,
		Ingredients:  p.Ingredients,
		Instructions: p.Instructions,
		Time:         p.Time,
		Servings:     p.Servings,
		Category:     p.Category,
		Photo:        photoPath,
		CreatedAt:    time.Now(),
	}
	return r.stores.Recipes.Create(ctx, recipe)
}

// Update replaces a recipe's editable fields. Only the author may
// update. When a new photo arrives the previous one is deleted from
// disk, unless it was the placeholder.
func (r *Recipes) Update(ctx context.Context, recipeID, callerID bson.ObjectID, p RecipeParams, photo io.Reader) (*data.Recipe, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	recipe, err := r.stores.Recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != callerID {
		return nil, fmt.Errorf("update recipe %s: %w", recipeID.Hex(), apperr.ErrForbidden)
	}

	photoPath := recipe.Photo
	if photo != nil {
		author, err := r.stores.Users.GetByID(ctx, callerID)
		if err != nil {
			return nil, err
		}
		photoPath, err = r.uploads.SaveImage(author.Email, photo)
		if err != nil {
			return nil, fmt.Errorf("store recipe photo: %w", err)
		}
		r.uploads.DeleteFile(recipe.Photo)
	}

	update := data.RecipeUpdate{
		Title:        p.Title,
		Ingredients:  p.Ingredients,
		Instructions: p.Instructions,
		Time:         p.Time,
		Servings:     p.Servings,
		Category:     p.Category,
		Photo:        photoPath,
	}
	if err := r.stores.Recipes.Update(ctx, recipeID, update); err != nil {
		return nil, err
	}

	return r.stores.Recipes.GetByID(ctx, recipeID)
}

// Delete removes a recipe on behalf of its author.
func (r *Recipes) Delete(ctx context.Context, recipeID, callerID bson.ObjectID) error {
	recipe, err := r.stores.Recipes.GetByID(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe.AuthorID != callerID {
		return fmt.Errorf("delete recipe %s: %w", recipeID.Hex(), apperr.ErrForbidden)
	}
	return r.delete(ctx, recipe)
}

// DeleteAny removes a recipe regardless of authorship. Admin surface.
func (r *Recipes) DeleteAny(ctx context.Context, recipeID bson.ObjectID) error {
	recipe, err := r.stores.Recipes.GetByID(ctx, recipeID)
	if err != nil {
		return err
	}
	return r.delete(ctx, recipe)
}

// delete removes the recipe row and then scrubs what referenced it. The
// cleanup is best-effort: failures are logged and skipped.
func (r *Recipes) delete(ctx context.Context, recipe *data.Recipe) error {
	if err := r.stores.Recipes.Delete(ctx, recipe.ID); err != nil {
		return err
	}

	log := r.logger.With().Str("recipe_id", recipe.ID.Hex()).Logger()

	r.uploads.DeleteFile(recipe.Photo)

	if err := r.stores.Comments.DeleteByRecipe(ctx, recipe.ID); err != nil {
		log.Error().Err(err).Msg("failed to delete recipe comments")
	}
	if err := r.stores.Views.PullRecipe(ctx, recipe.ID); err != nil {
		log.Error().Err(err).Msg("failed to scrub comment views")
	}
	if err := r.stores.Favorites.PullRecipes(ctx, []bson.ObjectID{recipe.ID}); err != nil {
		log.Error().Err(err).Msg("failed to scrub favorites")
	}

	log.Info().Msg("recipe deleted")
	return nil
}

// ListQuery carries the raw list filters as they arrive in query
// parameters. Ids are hex strings and validated here.
type ListQuery struct {
	AuthorIDs  []string
	RecipeIDs  []string
	Categories []string
}

// List returns recipes matching the query. Malformed ids are a
// validation error rather than an empty result.
func (r *Recipes) List(ctx context.Context, q ListQuery) ([]*data.Recipe, error) {
	var filter data.RecipeFilter
	var err error

	filter.AuthorIDs, err = parseHexIDs(q.AuthorIDs)
	if err != nil {
		return nil, err
	}
	filter.RecipeIDs, err = parseHexIDs(q.RecipeIDs)
	if err != nil {
		return nil, err
	}
	filter.Categories = q.Categories

	return r.stores.Recipes.List(ctx, filter)
}

// Get returns one recipe by id.
func (r *Recipes) Get(ctx context.Context, recipeID bson.ObjectID) (*data.Recipe, error) {
	return r.stores.Recipes.GetByID(ctx, recipeID)
}

func parseHexIDs(hexIDs []string) ([]bson.ObjectID, error) {
	if len(hexIDs) == 0 {
		return nil, nil
	}
	ids := make([]bson.ObjectID, 0, len(hexIDs))
	for _, h := range hexIDs {
		id, err := bson.ObjectIDFromHex(h)
		if err != nil {
			return nil, fmt.Errorf("id %q: %w", h, apperr.ErrValidation)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
