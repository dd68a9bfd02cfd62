package main

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/olehvasyliv/cooking-corner/internal/apperr"
	"github.com/olehvasyliv/cooking-corner/internal/service"
)

func recipeParamsFromForm(r *http.Request) service.RecipeParams {
	servings, _ := strconv.Atoi(r.FormValue("servings"))
	return service.RecipeParams{
		Title:        r.FormValue("title"),
		Ingredients:  r.FormValue("ingredients"),
		Instructions: r.FormValue("instructions"),
		Time:         r.FormValue("time"),
		Servings:     servings,
		Category:     r.FormValue("category"),
	}
}

func (a *api) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	if claims == nil {
		a.respondServiceError(w, apperr.ErrUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	photo, err := formFile(r, "photo")
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid photo upload")
		return
	}
	if photo != nil {
		defer photo.Close()
	}

	var photoReader io.Reader
	if photo != nil {
		photoReader = photo
	}

	recipe, err := a.recipes.Create(r.Context(), claims.Email, recipeParamsFromForm(r), photoReader)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusCreated, recipe)
}

func (a *api) handleUpdateRecipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		a.respondServiceError(w, apperr.ErrUnauthorized)
		return
	}

	recipeID, err := bson.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid recipe id")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	photo, err := formFile(r, "photo")
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid photo upload")
		return
	}
	if photo != nil {
		defer photo.Close()
	}

	var photoReader io.Reader
	if photo != nil {
		photoReader = photo
	}

	recipe, err := a.recipes.Update(r.Context(), recipeID, userID, recipeParamsFromForm(r), photoReader)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusOK, recipe)
}

func (a *api) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		a.respondServiceError(w, apperr.ErrUnauthorized)
		return
	}

	recipeID, err := bson.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid recipe id")
		return
	}

	if err := a.recipes.Delete(r.Context(), recipeID, userID); err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusOK, map[string]string{"message": "recipe deleted"})
}

// handleListRecipes filters by authorId, recipeId and category query
// parameters; each may repeat.
func (a *api) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	recipes, err := a.recipes.List(r.Context(), service.ListQuery{
		AuthorIDs:  q["authorId"],
		RecipeIDs:  q["recipeId"],
		Categories: q["category"],
	})
	if err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusOK, map[string]any{"recipes": recipes})
}
