package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/olehvasyliv/cooking-corner/internal/service"
)

func (a *api) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := a.accounts.LoginAdmin(r.Context(), req.Email, req.Password)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusOK, map[string]any{
		"token":     session.Token,
		"userId":    session.UserID,
		"expiresAt": session.ExpiresAt,
	})
}

func (a *api) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.accounts.ListUsers(r.Context())
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (a *api) handleAdminListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := a.recipes.List(r.Context(), service.ListQuery{})
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, map[string]any{"recipes": recipes})
}

func (a *api) handleAdminListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := a.comments.ListAll(r.Context())
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

// handleAdminDeleteUser removes any account and runs the same cascade
// as a self-service deletion.
func (a *api) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := bson.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := a.accounts.DeleteAccount(r.Context(), userID); err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

func (a *api) handleAdminDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	recipeID, err := bson.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid recipe id")
		return
	}

	if err := a.recipes.DeleteAny(r.Context(), recipeID); err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusOK, map[string]string{"message": "recipe deleted"})
}

func (a *api) handleAdminDeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID, err := bson.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	userID, _ := callerID(r)
	if err := a.comments.Delete(r.Context(), commentID, userID, true); err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusOK, map[string]string{"message": "comment deleted"})
}

func (a *api) handleAdminDeleteReply(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	commentID, err := bson.ObjectIDFromHex(vars["commentId"])
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	userID, _ := callerID(r)
	if err := a.comments.DeleteReply(r.Context(), commentID, vars["answerId"], userID, true); err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusOK, map[string]string{"message": "reply deleted"})
}

func (a *api) handleBanEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := a.moderation.Ban(r.Context(), req.Email); err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusCreated, map[string]string{"message": "email banned"})
}

func (a *api) handleUnbanEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := a.moderation.Unban(r.Context(), req.Email); err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusOK, map[string]string{"message": "ban removed"})
}

func (a *api) handleListBanned(w http.ResponseWriter, r *http.Request) {
	banned, err := a.moderation.ListBanned(r.Context())
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, map[string]any{"banned": banned})
}

func (a *api) handleSitemap(w http.ResponseWriter, r *http.Request) {
	xml := a.sitemap.Cached()
	if xml == "" {
		a.respondError(w, http.StatusServiceUnavailable, "sitemap not generated yet")
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write([]byte(xml))
}
