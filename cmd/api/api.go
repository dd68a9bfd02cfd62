// Command api runs the cooking-corner HTTP server.
package main

import (
	"context"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/olehvasyliv/cooking-corner/internal/auth"
	"github.com/olehvasyliv/cooking-corner/internal/data"
	"github.com/olehvasyliv/cooking-corner/internal/middleware"
	"github.com/olehvasyliv/cooking-corner/internal/service"
)

// Per-area service contracts the handlers depend on. The concrete
// implementations live in internal/service; tests substitute fakes.

type accountsService interface {
	RequestRegistration(ctx context.Context, p service.RegistrationParams, image io.Reader) error
	ConfirmRegistration(ctx context.Context, email, code string) (*data.User, error)
	Login(ctx context.Context, email, password string) (*service.Session, error)
	LoginAdmin(ctx context.Context, email, password string) (*service.Session, error)
	GetUser(ctx context.Context, userID bson.ObjectID) (*data.User, error)
	ListUsers(ctx context.Context) ([]*data.User, error)
	PublicAuthors(ctx context.Context, ids []string) ([]service.AuthorCard, error)
	DeleteAccount(ctx context.Context, userID bson.ObjectID) error
}

type recipesService interface {
	Create(ctx context.Context, authorEmail string, p service.RecipeParams, photo io.Reader) (*data.Recipe, error)
	Update(ctx context.Context, recipeID, callerID bson.ObjectID, p service.RecipeParams, photo io.Reader) (*data.Recipe, error)
	Delete(ctx context.Context, recipeID, callerID bson.ObjectID) error
	DeleteAny(ctx context.Context, recipeID bson.ObjectID) error
	List(ctx context.Context, q service.ListQuery) ([]*data.Recipe, error)
}

type commentsService interface {
	Add(ctx context.Context, recipeID, userID bson.ObjectID, text string) (*data.Comment, error)
	Delete(ctx context.Context, commentID, callerID bson.ObjectID, isAdmin bool) error
	AddReply(ctx context.Context, commentID, userID bson.ObjectID, text string) (*data.Reply, error)
	DeleteReply(ctx context.Context, commentID bson.ObjectID, replyID string, callerID bson.ObjectID, isAdmin bool) error
	ListForRecipe(ctx context.Context, recipeID bson.ObjectID, viewerID *bson.ObjectID) ([]*data.Comment, error)
	ListAll(ctx context.Context) ([]*data.Comment, error)
	CountByAuthor(ctx context.Context, authorID bson.ObjectID) (map[string]int64, error)
	ViewsForUser(ctx context.Context, userID bson.ObjectID) (*data.CommentView, error)
}

type favoritesService interface {
	AddRecipe(ctx context.Context, userID, recipeID bson.ObjectID) error
	RemoveRecipe(ctx context.Context, userID, recipeID bson.ObjectID) error
	AddAuthor(ctx context.Context, userID, authorID bson.ObjectID) error
	RemoveAuthor(ctx context.Context, userID, authorID bson.ObjectID) error
	Get(ctx context.Context, userID bson.ObjectID) (*data.Favorite, error)
}

type subscriptionsService interface {
	Subscribe(ctx context.Context, userID bson.ObjectID, email string) error
	Unsubscribe(ctx context.Context, userID bson.ObjectID) error
	IsSubscribed(ctx context.Context, userID bson.ObjectID) (bool, error)
}

type moderationService interface {
	Ban(ctx context.Context, email string) error
	Unban(ctx context.Context, email string) error
	ListBanned(ctx context.Context) ([]*data.BannedEmail, error)
}

type sitemapSource interface {
	Cached() string
}

type api struct {
	logger zerolog.Logger
	jwt    *auth.JWTManager

	accounts      accountsService
	recipes       recipesService
	comments      commentsService
	favorites     favoritesService
	subscriptions subscriptionsService
	moderation    moderationService
	sitemap       sitemapSource

	limiter     *middleware.LimiterStore
	uploadsRoot string
}

// routes assembles the full route table.
func (a *api) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(a.requestLogging)

	rateLimited := middleware.RateLimit(a.limiter)

	authR := r.PathPrefix("/api/auth").Subrouter()
	authR.Use(rateLimited)
	authR.HandleFunc("/register", a.handleRegister).Methods(http.MethodPost)
	authR.HandleFunc("/confirm", a.handleConfirm).Methods(http.MethodPost)
	authR.HandleFunc("/login", a.handleLogin).Methods(http.MethodPost)

	userR := r.PathPrefix("/api/user").Subrouter()
	userR.Use(a.authenticate)
	userR.HandleFunc("/getUserData", a.handleGetUser).Methods(http.MethodGet)
	userR.HandleFunc("/deleteUser", a.handleDeleteUser).Methods(http.MethodDelete)

	recipeR := r.PathPrefix("/api/recipe").Subrouter()
	recipeR.HandleFunc("/getRecipes", a.handleListRecipes).Methods(http.MethodGet)
	recipeR.Handle("/create", a.authenticate(http.HandlerFunc(a.handleCreateRecipe))).Methods(http.MethodPost)
	recipeR.Handle("/update/{id}", a.authenticate(http.HandlerFunc(a.handleUpdateRecipe))).Methods(http.MethodPut)
	recipeR.Handle("/delete/{id}", a.authenticate(http.HandlerFunc(a.handleDeleteRecipe))).Methods(http.MethodDelete)

	commentsR := r.PathPrefix("/api/comments").Subrouter()
	commentsR.HandleFunc("/count-by-author/{authorId}", a.handleCommentCounts).Methods(http.MethodGet)
	commentsR.HandleFunc("/views/user/{userId}", a.handleCommentViews).Methods(http.MethodGet)
	commentsR.Handle("/", a.authenticate(http.HandlerFunc(a.handleAddComment))).Methods(http.MethodPost)
	commentsR.Handle("/{commentId}/answers/{answerId}", a.authenticate(http.HandlerFunc(a.handleDeleteReply))).Methods(http.MethodDelete)
	commentsR.Handle("/{commentId}/answers", a.authenticate(http.HandlerFunc(a.handleAddReply))).Methods(http.MethodPost)
	commentsR.Handle("/{commentId}", a.authenticate(http.HandlerFunc(a.handleDeleteComment))).Methods(http.MethodDelete)
	commentsR.HandleFunc("/{recipeId}", a.handleGetComments).Methods(http.MethodGet)

	favR := r.PathPrefix("/api/favorite").Subrouter()
	favR.Use(a.authenticate)
	favR.HandleFunc("/addRecipe", a.handleAddFavoriteRecipe).Methods(http.MethodPost)
	favR.HandleFunc("/addAuthor", a.handleAddFavoriteAuthor).Methods(http.MethodPost)
	favR.HandleFunc("/getFavorites", a.handleGetFavorites).Methods(http.MethodGet)
	favR.HandleFunc("/deleteRecipe/{recipeId}", a.handleDeleteFavoriteRecipe).Methods(http.MethodDelete)
	favR.HandleFunc("/deleteAuthor/{authorId}", a.handleDeleteFavoriteAuthor).Methods(http.MethodDelete)
	favR.HandleFunc("/publicAuthors", a.handlePublicAuthors).Methods(http.MethodPost)

	subR := r.PathPrefix("/api/subscribe").Subrouter()
	subR.Use(a.authenticate)
	subR.HandleFunc("/create", a.handleSubscribe).Methods(http.MethodPost)
	subR.HandleFunc("/delete", a.handleUnsubscribe).Methods(http.MethodDelete)
	subR.HandleFunc("/check", a.handleSubscriptionCheck).Methods(http.MethodGet)

	banR := r.PathPrefix("/api/banlist").Subrouter()
	banR.Use(a.authenticate, a.requireAdmin)
	banR.HandleFunc("/", a.handleBanEmail).Methods(http.MethodPost)
	banR.HandleFunc("/", a.handleListBanned).Methods(http.MethodGet)
	banR.HandleFunc("/", a.handleUnbanEmail).Methods(http.MethodDelete)

	r.HandleFunc("/api/admin/login", a.handleAdminLogin).Methods(http.MethodPost)
	adminR := r.PathPrefix("/api/admin").Subrouter()
	adminR.Use(a.authenticate, a.requireAdmin)
	adminR.HandleFunc("/users", a.handleAdminListUsers).Methods(http.MethodGet)
	adminR.HandleFunc("/recipes", a.handleAdminListRecipes).Methods(http.MethodGet)
	adminR.HandleFunc("/comments", a.handleAdminListComments).Methods(http.MethodGet)
	adminR.HandleFunc("/users/{id}", a.handleAdminDeleteUser).Methods(http.MethodDelete)
	adminR.HandleFunc("/recipes/{id}", a.handleAdminDeleteRecipe).Methods(http.MethodDelete)
	adminR.HandleFunc("/comments/{commentId}/answers/{answerId}", a.handleAdminDeleteReply).Methods(http.MethodDelete)
	adminR.HandleFunc("/comments/{id}", a.handleAdminDeleteComment).Methods(http.MethodDelete)

	r.HandleFunc("/sitemap.xml", a.handleSitemap).Methods(http.MethodGet)
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(a.uploadsRoot))))

	return r
}
