package transport

import (
	"net/http"

	"shophub/internal/domain"
	"shophub/internal/middleware"
	"shophub/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6,max=72"`
	Name     string      `json:"name" validate:"required,max=100"`
	Role     domain.Role `json:"role" validate:"omitempty,oneof=buyer seller"`
	ShopName *string     `json:"shopName" validate:"omitempty,max=100"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents the token refresh and logout payload
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// UpdateProfileRequest holds the editable profile fields
type UpdateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	ShopName *string `json:"shopName" validate:"omitempty,max=100"`
	ShopLogo *string `json:"shopLogo" validate:"omitempty,url"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	User         *domain.User `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
}

// RefreshResponse represents the token refresh response
type RefreshResponse struct {
	Token string `json:"token"`
}

// AuthHandler handles account and session requests
type AuthHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService service.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		logger:      logger,
	}
}

// RegisterRoutes registers all auth routes
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/auth", func(r chi.Router) {
		// Public routes
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
			r.Patch("/me", h.UpdateMe)
		})
	})
}

// Register creates an account and signs it in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Registration validation failed", zap.Error(err))
		middleware.RespondWithDecodeOrValidationError(w, err)
		return
	}

	user, err := h.userService.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
		ShopName: req.ShopName,
	})
	if err != nil {
		h.logger.Debug("Registration failed", zap.Error(err))
		respondWithServiceError(w, h.logger, err, "register user")
		return
	}

	session, err := h.userService.IssueSession(r.Context(), user)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "register user")
		return
	}

	h.logger.Info("User registered successfully", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	middleware.RespondWithJSON(w, http.StatusCreated, AuthResponse{
		User:         session.User,
		Token:        session.AccessToken,
		RefreshToken: session.RefreshToken,
	})
}

// Login handles user authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))
		middleware.RespondWithDecodeOrValidationError(w, err)
		return
	}

	session, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Debug("Login failed", zap.Error(err))
		respondWithServiceError(w, h.logger, err, "login")
		return
	}

	h.logger.Info("User logged in successfully", zap.String("user_id", session.User.ID))
	middleware.RespondWithJSON(w, http.StatusOK, AuthResponse{
		User:         session.User,
		Token:        session.AccessToken,
		RefreshToken: session.RefreshToken,
	})
}

// Logout revokes the given refresh token
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeOrValidationError(w, err)
		return
	}

	if err := h.userService.Logout(r.Context(), req.RefreshToken); err != nil {
		respondWithServiceError(w, h.logger, err, "logout")
		return
	}

	h.logger.Info("User logged out successfully")
	respondSuccess(w)
}

// RefreshToken handles token refresh
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Refresh token validation failed", zap.Error(err))
		middleware.RespondWithDecodeOrValidationError(w, err)
		return
	}

	newAccessToken, err := h.userService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		h.logger.Debug("Token refresh failed", zap.Error(err))
		respondWithServiceError(w, h.logger, err, "refresh token")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, RefreshResponse{Token: newAccessToken})
}

// Me returns the authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, user)
}

// UpdateMe edits the authenticated user's profile
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeOrValidationError(w, err)
		return
	}

	updated, err := h.userService.UpdateProfile(r.Context(), user.ID, domain.UserPatch{
		Name:     req.Name,
		ShopName: req.ShopName,
		ShopLogo: req.ShopLogo,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update profile")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, updated)
}
