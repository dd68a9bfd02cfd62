package service

import (
	"context"
	"fmt"

	"github.com/olehvasyliv/cooking-corner/internal/apperr"
	"github.com/olehvasyliv/cooking-corner/internal/data"
	"github.com/olehvasyliv/cooking-corner/internal/normalize"
)

// Moderation manages the banned email list. Ban entries block both
// registration and login until the retention sweep removes them.
type Moderation struct {
	stores *Stores
}

// NewModeration returns a wired Moderation service.
func NewModeration(stores *Stores) *Moderation {
	return &Moderation{stores: stores}
}

// Ban adds an email to the ban list. Banning an already banned email is
// a conflict.
func (m *Moderation) Ban(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("ban: %w", apperr.ErrValidation)
	}
	return m.stores.Banned.Add(ctx, normalize.Email(email))
}

// Unban removes an email from the ban list.
func (m *Moderation) Unban(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("unban: %w", apperr.ErrValidation)
	}
	return m.stores.Banned.Remove(ctx, normalize.Email(email))
}

// ListBanned returns every banned email.
func (m *Moderation) ListBanned(ctx context.Context) ([]*data.BannedEmail, error) {
	return m.stores.Banned.List(ctx)
}
