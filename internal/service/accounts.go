package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/olehvasyliv/cooking-corner/internal/apperr"
	"github.com/olehvasyliv/cooking-corner/internal/auth"
	"github.com/olehvasyliv/cooking-corner/internal/data"
	"github.com/olehvasyliv/cooking-corner/internal/normalize"
	"github.com/olehvasyliv/cooking-corner/internal/storage"
)

// CodeTTL is how long a confirmation code stays valid. A code aged
// exactly CodeTTL is still accepted; one millisecond past it is not.
const CodeTTL = 5 * time.Minute

// Accounts implements the account lifecycle: registration, email
// confirmation, login and account deletion with its cascade.
type Accounts struct {
	stores  *Stores
	jwt     *auth.JWTManager
	mailer  CodeMailer
	uploads Uploads
	logger  zerolog.Logger

	// now is swappable in tests that probe the code expiry boundary.
	now func() time.Time
}

// NewAccounts returns a wired Accounts service.
func NewAccounts(stores *Stores, jwtMgr *auth.JWTManager, mailer CodeMailer, uploads Uploads, logger zerolog.Logger) *Accounts {
	return &Accounts{
		stores:  stores,
		jwt:     jwtMgr,
		mailer:  mailer,
		uploads: uploads,
		logger:  logger.With().Str("component", "accounts").Logger(),
		now:     time.Now,
	}
}

// RegistrationParams carries the registration form fields.
type RegistrationParams struct {
	Name     string
	LastName string
	Email    string
	Password string
	Gender   string
}

// RequestRegistration stages a registration and emails a confirmation
// code. A repeated request for the same email silently replaces the
// previous pending data and code.
func (a *Accounts) RequestRegistration(ctx context.Context, p RegistrationParams, image io.Reader) error {
	if p.Name == "" || p.LastName == "" || p.Email == "" || p.Password == "" {
		return fmt.Errorf("registration: %w", apperr.ErrValidation)
	}

	email := normalize.Email(p.Email)

	banned, err := a.stores.Banned.Contains(ctx, email)
	if err != nil {
		return err
	}
	if banned {
		return fmt.Errorf("registration for %s: %w", email, apperr.ErrEmailBanned)
	}

	exists, err := a.stores.Users.Exists(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("registration for %s: %w", email, apperr.ErrConflict)
	}

	hashed, err := auth.HashPassword(p.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	imagePath := storage.DefaultAvatarMan
	if p.Gender == data.GenderWoman {
		imagePath = storage.DefaultAvatarWoman
	}
	if image != nil {
		imagePath, err = a.uploads.SaveImage(email, image)
		if err != nil {
			return fmt.Errorf("store registration image: %w", err)
		}
	}

	if err := a.stores.Pending.Upsert(ctx, &data.PendingUser{
		Name:      p.Name,
		LastName:  p.LastName,
		Email:     email,
		Password:  hashed,
		Gender:    p.Gender,
		Image:     imagePath,
		CreatedAt: a.now(),
	}); err != nil {
		return err
	}

	code := auth.GenerateConfirmationCode()
	if err := a.stores.Codes.Upsert(ctx, email, code, a.now()); err != nil {
		return err
	}

	// Without the code in the user's inbox the flow is dead, so a mail
	// failure is surfaced to the caller.
	if err := a.mailer.SendConfirmationCode(email, code); err != nil {
		a.logger.Error().Err(err).Msg("failed to send confirmation code")
		return fmt.Errorf("%w: %s", apperr.ErrExternalService, "could not send confirmation email")
	}

	return nil
}

// ConfirmRegistration checks the code and materializes the pending user.
// The code and pending rows are deleted on success, so a confirmed code
// cannot be replayed.
func (a *Accounts) ConfirmRegistration(ctx context.Context, email, code string) (*data.User, error) {
	email = normalize.Email(email)

	stored, err := a.stores.Codes.Get(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("confirm %s: %w", email, apperr.ErrCodeInvalid)
		}
		return nil, err
	}

	if !codeUsable(stored, code, a.now()) {
		return nil, fmt.Errorf("confirm %s: %w", email, apperr.ErrCodeInvalid)
	}

	pending, err := a.stores.Pending.Get(ctx, email)
	if err != nil {
		// Expired and cleaned up concurrently: the code checked out but
		// the registration data is gone.
		return nil, err
	}

	user, err := a.stores.Users.Create(ctx, &data.User{
		Name:     pending.Name,
		LastName: pending.LastName,
		Email:    pending.Email,
		Password: pending.Password,
		Gender:   pending.Gender,
		Image:    pending.Image,
		Role:     data.RoleUser,
	})
	if err != nil {
		return nil, err
	}

	if err := a.stores.Codes.Delete(ctx, email); err != nil {
		a.logger.Error().Err(err).Str("email", email).Msg("failed to delete confirmation code")
	}
	if err := a.stores.Pending.Delete(ctx, email); err != nil {
		a.logger.Error().Err(err).Str("email", email).Msg("failed to delete pending user")
	}

	return user, nil
}

// codeUsable reports whether the presented code matches the stored one
// and is within its TTL at the given instant.
func codeUsable(stored *data.ConfirmCode, presented string, now time.Time) bool {
	if now.Sub(stored.CreatedAt) > CodeTTL {
		return false
	}
	return stored.Code == presented
}

// Session is a successful login result.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// Login authenticates a user and returns a signed session token.
func (a *Accounts) Login(ctx context.Context, email, password string) (*Session, error) {
	return a.login(ctx, email, password, false)
}

// LoginAdmin authenticates an administrator. Non-admin accounts are
// rejected before their password is checked.
func (a *Accounts) LoginAdmin(ctx context.Context, email, password string) (*Session, error) {
	return a.login(ctx, email, password, true)
}

func (a *Accounts) login(ctx context.Context, email, password string, wantAdmin bool) (*Session, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("login: %w", apperr.ErrValidation)
	}

	email = normalize.Email(email)

	if !wantAdmin {
		banned, err := a.stores.Banned.Contains(ctx, email)
		if err != nil {
			return nil, err
		}
		if banned {
			return nil, fmt.Errorf("login %s: %w", email, apperr.ErrEmailBanned)
		}
	}

	user, err := a.stores.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			// Burn a bcrypt comparison so absent users and wrong
			// passwords take comparable time.
			_ = auth.BurnPassword(password)
			return nil, fmt.Errorf("login %s: %w", email, apperr.ErrInvalidCredentials)
		}
		return nil, err
	}

	if wantAdmin && user.Role != data.RoleAdmin {
		return nil, fmt.Errorf("login %s: %w", email, apperr.ErrForbidden)
	}

	if err := auth.CheckPassword(user.Password, password); err != nil {
		return nil, fmt.Errorf("login %s: %w", email, apperr.ErrInvalidCredentials)
	}

	token, expiresAt, err := a.jwt.GenerateToken(user.ID, user.Email, wantAdmin)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &Session{Token: token, UserID: user.ID.Hex(), ExpiresAt: expiresAt}, nil
}

// GetUser returns a user's profile.
func (a *Accounts) GetUser(ctx context.Context, userID bson.ObjectID) (*data.User, error) {
	return a.stores.Users.GetByID(ctx, userID)
}

// ListUsers returns every user. Admin surface.
func (a *Accounts) ListUsers(ctx context.Context) ([]*data.User, error) {
	return a.stores.Users.List(ctx)
}

// AuthorCard is the public view of a recipe author.
type AuthorCard struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// PublicAuthors resolves author ids to their public cards.
func (a *Accounts) PublicAuthors(ctx context.Context, ids []string) ([]AuthorCard, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("author ids: %w", apperr.ErrValidation)
	}

	objIDs := make([]bson.ObjectID, 0, len(ids))
	for _, id := range ids {
		objID, err := bson.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("author id %q: %w", id, apperr.ErrValidation)
		}
		objIDs = append(objIDs, objID)
	}

	users, err := a.stores.Users.ListByIDs(ctx, objIDs)
	if err != nil {
		return nil, err
	}

	cards := make([]AuthorCard, len(users))
	for i, u := range users {
		cards[i] = AuthorCard{ID: u.ID.Hex(), Name: u.Name, Image: u.Image}
	}
	return cards, nil
}

// DeleteAccount removes the user and then runs the cleanup cascade. The
// cascade is best-effort: once the user row is gone the operation is
// reported as successful, and every cleanup step that fails is logged
// and skipped, never rolled back.
func (a *Accounts) DeleteAccount(ctx context.Context, userID bson.ObjectID) error {
	user, err := a.stores.Users.Delete(ctx, userID)
	if err != nil {
		return err
	}

	a.cascadeDelete(ctx, user)
	return nil
}

// cascadeDelete scrubs everything that referenced the deleted user.
func (a *Accounts) cascadeDelete(ctx context.Context, user *data.User) {
	log := a.logger.With().Str("user_id", user.ID.Hex()).Logger()

	a.uploads.DeleteAccountFolder(user.Email)

	recipeIDs, err := a.stores.Recipes.IDsByAuthor(ctx, user.ID)
	if err != nil {
		log.Error().Err(err).Msg("cascade: failed to list user recipes")
		recipeIDs = nil
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"pull author from favorites", func() error {
			return a.stores.Favorites.PullAuthor(ctx, user.ID)
		}},
		{"pull recipes from favorites", func() error {
			return a.stores.Favorites.PullRecipes(ctx, recipeIDs)
		}},
		{"delete comments", func() error {
			return a.stores.Comments.DeleteByUser(ctx, user.ID)
		}},
		{"strip replies", func() error {
			return a.stores.Comments.PullRepliesByUser(ctx, user.ID)
		}},
		{"delete comment views", func() error {
			return a.stores.Views.DeleteByUser(ctx, user.ID)
		}},
		{"delete recipes", func() error {
			return a.stores.Recipes.DeleteByAuthor(ctx, user.ID)
		}},
		{"delete favorites", func() error {
			return a.stores.Favorites.DeleteByUser(ctx, user.ID)
		}},
		{"delete subscription", func() error {
			return a.stores.Subscriptions.DeleteByUser(ctx, user.ID)
		}},
	}

	for _, step := range steps {
		if err := step.run(); err != nil {
			log.Error().Err(err).Str("step", step.name).Msg("cascade step failed")
		}
	}

	log.Info().Msg("account deleted")
}
