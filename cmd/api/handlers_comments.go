package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/olehvasyliv/cooking-corner/internal/apperr"
)

// handleGetComments is public. When a userId query parameter names the
// recipe's author, their comment view marker is refreshed.
func (a *api) handleGetComments(w http.ResponseWriter, r *http.Request) {
	recipeID, err := bson.ObjectIDFromHex(mux.Vars(r)["recipeId"])
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid recipe id")
		return
	}

	var viewerID *bson.ObjectID
	if v := r.URL.Query().Get("userId"); v != "" {
		if id, err := bson.ObjectIDFromHex(v); err == nil {
			viewerID = &id
		}
	}

	comments, err := a.comments.ListForRecipe(r.Context(), recipeID, viewerID)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

func (a *api) handleAddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		a.respondServiceError(w, apperr.ErrUnauthorized)
		return
	}

	var req struct {
		RecipeID string `json:"recipeId"`
		Text     string `json:"text"`
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

	comment, err := a.comments.Add(r.Context(), recipeID, userID, req.Text)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusCreated, comment)
}

func (a *api) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		a.respondServiceError(w, apperr.ErrUnauthorized)
		return
	}

	commentID, err := bson.ObjectIDFromHex(mux.Vars(r)["commentId"])
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	claims := claimsFrom(r)
	if err := a.comments.Delete(r.Context(), commentID, userID, claims != nil && claims.IsAdmin); err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusOK, map[string]string{"message": "comment deleted"})
}

func (a *api) handleAddReply(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		a.respondServiceError(w, apperr.ErrUnauthorized)
		return
	}

	commentID, err := bson.ObjectIDFromHex(mux.Vars(r)["commentId"])
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := a.comments.AddReply(r.Context(), commentID, userID, req.Text)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusCreated, reply)
}

func (a *api) handleDeleteReply(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		a.respondServiceError(w, apperr.ErrUnauthorized)
		return
	}

	vars := mux.Vars(r)
	commentID, err := bson.ObjectIDFromHex(vars["commentId"])
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	claims := claimsFrom(r)
	isAdmin := claims != nil && claims.IsAdmin
	if err := a.comments.DeleteReply(r.Context(), commentID, vars["answerId"], userID, isAdmin); err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusOK, map[string]string{"message": "reply deleted"})
}

func (a *api) handleCommentCounts(w http.ResponseWriter, r *http.Request) {
	authorID, err := bson.ObjectIDFromHex(mux.Vars(r)["authorId"])
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid author id")
		return
	}

	counts, err := a.comments.CountByAuthor(r.Context(), authorID)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusOK, map[string]any{"counts": counts})
}

func (a *api) handleCommentViews(w http.ResponseWriter, r *http.Request) {
	userID, err := bson.ObjectIDFromHex(mux.Vars(r)["userId"])
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	views, err := a.comments.ViewsForUser(r.Context(), userID)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusOK, views)
}
