package handlers

import (
	"context"
	"net/http"

	"github.com/nkiryanov/starterkit/internal/handlers/middleware"
	"github.com/nkiryanov/starterkit/internal/logger"
	"github.com/nkiryanov/starterkit/internal/models"
	"github.com/nkiryanov/starterkit/internal/service/post"
	"github.com/nkiryanov/starterkit/internal/service/product"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

// NewRouter builds the whole http API.
// Limiter guards register and login; nil means default one.
func NewRouter(
	authService authService,
	postService postService,
	productService productService,
	limiter *middleware.RateLimiter,
	logger logger.Logger,
) http.Handler {
	if limiter == nil {
		limiter = middleware.NewRateLimiter(0, 0)
	}

	withAuth := middleware.AuthMiddleware(authService, logger)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	apiauth := http.NewServeMux()

	apiauth.Handle("POST /register", limiter.Middleware(handleRegister(authService, logger)))
	apiauth.Handle("POST /login", limiter.Middleware(handleLogin(authService, logger)))
	apiauth.Handle("POST /refresh", handleRefresh(authService, logger))
	apiauth.Handle("POST /logout", handleLogout(authService, logger))
	apiauth.Handle("POST /logout-all", withAuth(handleLogoutAll(authService, logger)))
	apiauth.Handle("GET /me", withAuth(handleMe()))

	api := http.NewServeMux()
	api.Handle("/auth/", http.StripPrefix("/auth", apiauth))

	// Listing posts relies on the gate only, as the token is not needed to build the list
	api.Handle("GET /posts", handleListPosts(postService, logger))
	api.Handle("POST /posts", withAuth(handleCreatePost(postService, logger)))

	api.Handle("GET /products", handleListProducts(productService, logger))
	api.Handle("GET /products/{sku}", handleGetProduct(productService, logger))
	api.Handle("POST /products", chain(handleCreateProduct(productService, logger), withAuth, adminOnly))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("GET /healthz", handleHealth())

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
		middleware.RecoverMiddleware(logger),
		middleware.Gate(middleware.DefaultGateConfig()),
	)

	return handler
}

type authService interface {
	// Register user, issue first token pair
	// Has to return *apperrors.ValidationError on bad input
	// Has to return apperrors.ErrUserAlreadyExists if email is taken
	Register(ctx context.Context, email string, password string, name string) (models.User, models.TokenPair, error)

	// Login user with email and password
	// Has to return apperrors.ErrInvalidCredentials if user not found or password is wrong
	Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error)

	// Rotate refresh token
	// If token invalid or expired: has to return apperrors.ErrInvalidToken
	// If token already used or revoked: has to return apperrors.ErrRefreshTokenNotFound
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)

	// Revoke refresh token, unknown token is not an error
	Logout(ctx context.Context, refresh string) error

	// Revoke every refresh token of the user
	LogoutAll(ctx context.Context, user models.User) error

	// Return user the access token in 'Authorization' header belongs to
	Authenticate(ctx context.Context, header string) (models.User, error)
}

type postService interface {
	List(ctx context.Context, filter post.ListFilter) (models.Page[models.Post], error)
	Create(ctx context.Context, author models.User, np post.NewPost) (models.Post, error)
}

type productService interface {
	List(ctx context.Context, filter product.ListFilter) (models.Page[models.Product], error)
	Get(ctx context.Context, sku string) (models.Product, error)
	Create(ctx context.Context, np product.NewProduct) (models.Product, error)
}
