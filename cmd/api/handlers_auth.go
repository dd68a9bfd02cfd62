package main

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/olehvasyliv/cooking-corner/internal/apperr"
	"github.com/olehvasyliv/cooking-corner/internal/service"
)

// maxUploadSize caps multipart request bodies (form fields plus image).
const maxUploadSize = 16 << 20

// formFile returns the named upload, or nil when the field is absent.
func formFile(r *http.Request, field string) (multipart.File, error) {
	file, _, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (a *api) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	image, err := formFile(r, "image")
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid image upload")
		return
	}
	if image != nil {
		defer image.Close()
	}

	params := service.RegistrationParams{
		Name:     r.FormValue("name"),
		LastName: r.FormValue("lastName"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Gender:   r.FormValue("gender"),
	}

	var imageReader io.Reader
	if image != nil {
		imageReader = image
	}
	if err := a.accounts.RequestRegistration(r.Context(), params, imageReader); err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusOK, map[string]string{
		"message": "confirmation code sent",
	})
}

func (a *api) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := a.accounts.ConfirmRegistration(r.Context(), req.Email, req.Code)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusCreated, user)
}

func (a *api) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := a.accounts.Login(r.Context(), req.Email, req.Password)
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

func (a *api) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		a.respondServiceError(w, apperr.ErrUnauthorized)
		return
	}

	user, err := a.accounts.GetUser(r.Context(), userID)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusOK, user)
}

func (a *api) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		a.respondServiceError(w, apperr.ErrUnauthorized)
		return
	}

	if err := a.accounts.DeleteAccount(r.Context(), userID); err != nil {
		a.respondServiceError(w, err)
		return
	}

	a.respondJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}
