package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/starterkit/internal/apperrors"
	"github.com/nkiryanov/starterkit/internal/handlers/render"
	"github.com/nkiryanov/starterkit/internal/handlers/reqctx"
	"github.com/nkiryanov/starterkit/internal/logger"
	"github.com/nkiryanov/starterkit/internal/models"
)

type authResponse struct {
	User         userResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type tokensResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func newAuthResponse(u models.User, pair models.TokenPair) authResponse {
	return authResponse{
		User:         newUserResponse(u),
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
	}
}

func handleRegister(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.Bind[request](w, r)
		if err != nil {
			return
		}

		user, pair, err := authService.Register(r.Context(), data.Email, data.Password, data.Name)

		var verr *apperrors.ValidationError
		switch {
		case err == nil:
			render.JSON(w, newAuthResponse(user, pair))
		case errors.As(err, &verr):
			render.ValidationFailed(w, verr.Fields)
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "User with this email already exists", http.StatusBadRequest)
		default:
			internalError(w, r, l, "Failed to register user", err)
		}
	})
}

func handleLogin(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.Bind[request](w, r)
		if err != nil {
			return
		}

		user, pair, err := authService.Login(r.Context(), data.Email, data.Password)

		var verr *apperrors.ValidationError
		switch {
		case err == nil:
			render.JSON(w, newAuthResponse(user, pair))
		case errors.As(err, &verr):
			render.ValidationFailed(w, verr.Fields)
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "Invalid email or password", http.StatusUnauthorized)
		default:
			internalError(w, r, l, "Failed to login user", err)
		}
	})
}

func handleRefresh(authService authService, l logger.Logger) http.Handler {
	type request struct {
		RefreshToken string `json:"refreshToken"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.Bind[request](w, r)
		if err != nil {
			return
		}

		pair, err := authService.Refresh(r.Context(), data.RefreshToken)

		var verr *apperrors.ValidationError
		switch {
		case err == nil:
			render.JSON(w, tokensResponse{AccessToken: pair.Access.Value, RefreshToken: pair.Refresh.Value})
		case errors.As(err, &verr):
			render.ValidationFailed(w, verr.Fields)
		case errors.Is(err, apperrors.ErrInvalidToken),
			errors.Is(err, apperrors.ErrRefreshTokenNotFound),
			errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "Invalid or expired refresh token", http.StatusUnauthorized)
		default:
			internalError(w, r, l, "Failed to refresh tokens", err)
		}
	})
}

func handleLogout(authService authService, l logger.Logger) http.Handler {
	type request struct {
		RefreshToken string `json:"refreshToken"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.Bind[request](w, r)
		if err != nil {
			return
		}

		err = authService.Logout(r.Context(), data.RefreshToken)

		var verr *apperrors.ValidationError
		switch {
		case err == nil:
			render.JSON(w, messageResponse{Message: "Logged out successfully"})
		case errors.As(err, &verr):
			render.ValidationFailed(w, verr.Fields)
		default:
			internalError(w, r, l, "Failed to logout", err)
		}
	})
}

func handleLogoutAll(authService authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := reqctx.User(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if err := authService.LogoutAll(r.Context(), user); err != nil {
			internalError(w, r, l, "Failed to logout from all devices", err)
			return
		}

		render.JSON(w, messageResponse{Message: "Logged out from all devices"})
	})
}

func handleMe() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := reqctx.User(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		render.JSON(w, newUserResponse(user))
	})
}
