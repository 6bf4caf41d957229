package transport

import (
	"errors"
	"net/http"

	"shophub/internal/domain"
	"shophub/internal/middleware"
	"shophub/internal/payment"
	"shophub/internal/repository"
	"shophub/internal/service"

	"go.uber.org/zap"
)

var notFoundErrors = []error{
	repository.ErrUserNotFound,
	repository.ErrProductNotFound,
	repository.ErrCategoryNotFound,
	repository.ErrOrderNotFound,
	repository.ErrCartItemNotFound,
	repository.ErrWishlistItemNotFound,
}

// respondWithServiceError maps service and repository errors onto the HTTP
// error envelope. Anything unrecognised is logged and reported as a 500.
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, err error, action string) {
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
			{Field: validationErr.Field, Message: validationErr.Message},
		})
	case errors.Is(err, repository.ErrUserAlreadyExists):
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
			{Field: "email", Message: "Email already registered"},
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrInvalidToken):
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid token")
	case errors.Is(err, service.ErrTokenExpired):
		middleware.RespondWithError(w, http.StatusUnauthorized, "token expired")
	case errors.Is(err, service.ErrForbidden):
		middleware.RespondWithError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, payment.ErrGateway):
		logger.Warn("Payment gateway failure", zap.String("action", action), zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "payment could not be processed, please try again")
	default:
		for _, notFound := range notFoundErrors {
			if errors.Is(err, notFound) {
				middleware.RespondWithError(w, http.StatusNotFound, notFound.Error())
				return
			}
		}
		logger.Error("Request failed", zap.String("action", action), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

// currentUser returns the authenticated caller. Routes that use it sit
// behind the auth middleware.
func currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return user, true
}

func respondSuccess(w http.ResponseWriter) {
	middleware.RespondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}
