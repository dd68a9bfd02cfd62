package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/olehvasyliv/cooking-corner/internal/apperr"
)

func (a *api) handleAddFavoriteRecipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		a.respondServiceError(w, apperr.ErrUnauthorized)
		return
	}

	var req struct {
		RecipeID string `json:"recipeId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	recipeID, err := bson.ObjectIDFromHex(req.RecipeID)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid recipe id")
		return
	}

	if err := a.favorites.AddRecipe(r.Context(), userID, recipeID); err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusOK, map[string]string{"message": "recipe added to favorites"})
}

func (a *api) handleDeleteFavoriteRecipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		a.respondServiceError(w, apperr.ErrUnauthorized)
		return
	}

	recipeID, err := bson.ObjectIDFromHex(mux.Vars(r)["recipeId"])
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid recipe id")
		return
	}

	if err := a.favorites.RemoveRecipe(r.Context(), userID, recipeID); err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusOK, map[string]string{"message": "recipe removed from favorites"})
}

func (a *api) handleAddFavoriteAuthor(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		a.respondServiceError(w, apperr.ErrUnauthorized)
		return
	}

	var req struct {
		AuthorID string `json:"authorId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	authorID, err := bson.ObjectIDFromHex(req.AuthorID)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid author id")
		return
	}

	if err := a.favorites.AddAuthor(r.Context(), userID, authorID); err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusOK, map[string]string{"message": "author added to favorites"})
}

func (a *api) handleDeleteFavoriteAuthor(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		a.respondServiceError(w, apperr.ErrUnauthorized)
		return
	}

	authorID, err := bson.ObjectIDFromHex(mux.Vars(r)["authorId"])
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid author id")
		return
	}

	if err := a.favorites.RemoveAuthor(r.Context(), userID, authorID); err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusOK, map[string]string{"message": "author removed from favorites"})
}

func (a *api) handleGetFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		a.respondServiceError(w, apperr.ErrUnauthorized)
		return
	}

	fav, err := a.favorites.Get(r.Context(), userID)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusOK, fav)
}

// handlePublicAuthors resolves a list of author ids into public cards
// for the favorites page.
func (a *api) handlePublicAuthors(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	authors, err := a.accounts.PublicAuthors(r.Context(), req.IDs)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusOK, map[string]any{"authors": authors})
}

func (a *api) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		a.respondServiceError(w, apperr.ErrUnauthorized)
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := a.subscriptions.Subscribe(r.Context(), userID, req.Email); err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusCreated, map[string]string{"message": "subscribed"})
}

func (a *api) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		a.respondServiceError(w, apperr.ErrUnauthorized)
		return
	}

	if err := a.subscriptions.Unsubscribe(r.Context(), userID); err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusOK, map[string]string{"message": "unsubscribed"})
}

func (a *api) handleSubscriptionCheck(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		a.respondServiceError(w, apperr.ErrUnauthorized)
		return
	}

	subscribed, err := a.subscriptions.IsSubscribed(r.Context(), userID)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusOK, map[string]bool{"subscribed": subscribed})
}
