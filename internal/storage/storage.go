// Package storage manages uploaded images on local disk. Every account
// gets one folder named after the md5 hex of its normalized email; files
// inside it are uuid-named webp images.
package storage

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/h2non/bimg"
	"github.com/rs/zerolog"

	"github.com/olehvasyliv/cooking-corner/internal/normalize"
)

// Site-relative default image paths. The placeholders are shared assets
// and must never be unlinked by cleanup logic.
const (
	PlaceholderRecipePhoto = "/uploads/default/recipeNot.webp"
	DefaultAvatarMan       = "/uploads/default/man.png"
	DefaultAvatarWoman     = "/uploads/default/women.png"
)

// webpQuality is the compression quality for stored uploads.
const webpQuality = 75

// Storage saves and deletes uploaded images under a root directory that
// is served as /uploads.
type Storage struct {
	root   string // local directory backing /uploads
	logger zerolog.Logger
}

// New returns a Storage rooted at dir.
func New(dir string, logger zerolog.Logger) *Storage {
	return &Storage{
		root:   dir,
		logger: logger.With().Str("component", "storage").Logger(),
	}
}

// AccountFolder derives the per-account folder name from an email.
// The scheme (md5 hex of the normalized address) matches the paths
// already stored in user and recipe documents.
func AccountFolder(email string) string {
	sum := md5.Sum([]byte(normalize.Email(email)))
	return hex.EncodeToString(sum[:])
}

// IsPlaceholder reports whether the path is one of the shared default
// images.
func IsPlaceholder(p string) bool {
	switch p {
	case PlaceholderRecipePhoto, DefaultAvatarMan, DefaultAvatarWoman:
		return true
	}
	return false
}

// SaveImage compresses an uploaded image to webp and stores it in the
// account's folder. It returns the site-relative path to store in the
// database, e.g. "/uploads/<md5>/<uuid>.webp".
func (s *Storage) SaveImage(email string, r io.Reader) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	converted, err := bimg.NewImage(raw).Process(bimg.Options{
		Type:    bimg.WEBP,
		Quality: webpQuality,
	})
	if err != nil {
		return "", fmt.Errorf("convert upload to webp: %w", err)
	}

	folder := AccountFolder(email)
	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString() + ".webp"
	if err := os.WriteFile(filepath.Join(dir, name), converted, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	return "/" + path.Join("uploads", folder, name), nil
}

// DeleteFile removes a stored image by its site-relative path. Requests
// to delete a placeholder are ignored. Failures are logged, not
// returned: file cleanup is always best-effort.
func (s *Storage) DeleteFile(sitePath string) {
	if sitePath == "" || IsPlaceholder(sitePath) {
		return
	}

	rel, ok := strings.CutPrefix(sitePath, "/uploads/")
	if !ok {
		s.logger.Warn().Str("path", sitePath).Msg("refusing to delete path outside /uploads")
		return
	}

	if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
		s.logger.Error().Err(err).Str("path", sitePath).Msg("failed to delete image")
	}
}

// DeleteAccountFolder removes an account's whole upload folder.
// Best-effort: failures are logged.
func (s *Storage) DeleteAccountFolder(email string) {
	dir := filepath.Join(s.root, AccountFolder(email))
	if err := os.RemoveAll(dir); err != nil {
		s.logger.Error().Err(err).Str("dir", dir).Msg("failed to delete account upload folder")
		return
	}
	s.logger.Info().Str("dir", dir).Msg("account upload folder deleted")
}

// Root returns the local directory backing /uploads, for the static file
// handler.
func (s *Storage) Root() string { return s.root }
