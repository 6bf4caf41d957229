package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"shophub/internal/domain"
	"shophub/internal/repository"
	"shophub/internal/repository/memory"

	"github.com/golang-jwt/jwt/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key"

func newTestUserService() (UserService, *memory.Storage) {
	store := memory.NewStorage()
	return NewUserService(store, store, TokenConfig{Secret: testSecret}), store
}

func authProperties() *gopter.Properties {
	parameters := gopter.DefaultTestParameters()
	// bcrypt makes every run slow
	parameters.MinSuccessfulTests = 20
	return gopter.NewProperties(parameters)
}

func TestProperty_RegistrationCreatesHashedPasswords(t *testing.T) {
	properties := authProperties()

	properties.Property("passwords are hashed with bcrypt and not stored as plaintext", prop.ForAll(
		func(email string, password string, name string) bool {
			service, store := newTestUserService()
			ctx := context.Background()

			user, err := service.Register(ctx, RegisterInput{Email: email, Password: password, Name: name})
			if err != nil {
				t.Logf("FAIL: registration failed: %v", err)
				return false
			}

			stored, err := store.GetUserByEmail(ctx, email)
			if err != nil {
				t.Logf("FAIL: Could not find stored user: %v", err)
				return false
			}
			if stored.ID != user.ID || stored.PasswordHash == nil {
				t.Logf("FAIL: stored user does not match the registered one")
				return false
			}
			if *stored.PasswordHash == password {
				t.Logf("FAIL: Stored password is plaintext")
				return false
			}
			if err := bcrypt.CompareHashAndPassword([]byte(*stored.PasswordHash), []byte(password)); err != nil {
				t.Logf("FAIL: Password hash does not match: %v", err)
				return false
			}
			cost, err := bcrypt.Cost([]byte(*stored.PasswordHash))
			return err == nil && cost == BcryptCost
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_JWTTokensContainRequiredClaims(t *testing.T) {
	properties := authProperties()

	properties.Property("access tokens carry user ID, email and role", prop.ForAll(
		func(email string, password string, role domain.Role) bool {
			service, _ := newTestUserService()
			ctx := context.Background()

			user, err := service.Register(ctx, RegisterInput{Email: email, Password: password, Name: "Ama", Role: role})
			if err != nil {
				t.Logf("FAIL: registration failed: %v", err)
				return false
			}

			session, err := service.Login(ctx, email, password)
			if err != nil {
				t.Logf("FAIL: Login failed: %v", err)
				return false
			}

			claims, err := service.ValidateToken(session.AccessToken)
			if err != nil {
				t.Logf("FAIL: Token validation failed: %v", err)
				return false
			}

			return claims.UserID == user.ID &&
				claims.Email == email &&
				claims.Role == role &&
				claims.ExpiresAt != nil &&
				claims.IssuedAt != nil
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.OneConstOf(domain.RoleBuyer, domain.RoleSeller),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_TokenRefreshRoundTrip(t *testing.T) {
	properties := authProperties()

	properties.Property("valid refresh token returns new valid access token", prop.ForAll(
		func(email string, password string) bool {
			service, _ := newTestUserService()
			ctx := context.Background()

			if _, err := service.Register(ctx, RegisterInput{Email: email, Password: password, Name: "Kofi"}); err != nil {
				return false
			}
			session, err := service.Login(ctx, email, password)
			if err != nil {
				t.Logf("FAIL: Login failed: %v", err)
				return false
			}

			newAccessToken, err := service.RefreshToken(ctx, session.RefreshToken)
			if err != nil {
				t.Logf("FAIL: Token refresh failed: %v", err)
				return false
			}

			claims, err := service.ValidateToken(newAccessToken)
			if err != nil {
				t.Logf("FAIL: New access token validation failed: %v", err)
				return false
			}

			return claims.UserID == session.User.ID &&
				claims.Role == session.User.Role &&
				time.Now().Before(claims.ExpiresAt.Time)
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_LogoutInvalidatesRefreshToken(t *testing.T) {
	properties := authProperties()

	properties.Property("logout marks refresh token as revoked", prop.ForAll(
		func(email string, password string) bool {
			service, store := newTestUserService()
			ctx := context.Background()

			if _, err := service.Register(ctx, RegisterInput{Email: email, Password: password, Name: "Esi"}); err != nil {
				return false
			}
			session, err := service.Login(ctx, email, password)
			if err != nil {
				t.Logf("FAIL: Login failed: %v", err)
				return false
			}

			if _, err := service.RefreshToken(ctx, session.RefreshToken); err != nil {
				t.Logf("FAIL: Refresh token should work before logout: %v", err)
				return false
			}
			if err := service.Logout(ctx, session.RefreshToken); err != nil {
				t.Logf("FAIL: Logout failed: %v", err)
				return false
			}

			if _, err := service.RefreshToken(ctx, session.RefreshToken); !errors.Is(err, ErrInvalidToken) {
				t.Logf("FAIL: Expected ErrInvalidToken, got: %v", err)
				return false
			}

			_, err = store.FindRefreshToken(ctx, session.RefreshToken)
			return errors.Is(err, repository.ErrRefreshTokenRevoked)
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	service, store := newTestUserService()
	ctx := context.Background()

	_, err := service.Register(ctx, RegisterInput{Email: "ama@example.com", Password: "password1", Name: "Ama"})
	require.NoError(t, err)

	_, err = service.Register(ctx, RegisterInput{Email: "AMA@example.com ", Password: "password2", Name: "Other"})
	assert.ErrorIs(t, err, repository.ErrUserAlreadyExists)

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestRegister_Roles(t *testing.T) {
	service, _ := newTestUserService()
	ctx := context.Background()

	buyer, err := service.Register(ctx, RegisterInput{Email: "buyer@example.com", Password: "password1", Name: "Buyer"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleBuyer, buyer.Role)

	shop := "Kente House"
	seller, err := service.Register(ctx, RegisterInput{Email: "seller@example.com", Password: "password1", Name: "Seller", Role: domain.RoleSeller, ShopName: &shop})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSeller, seller.Role)
	assert.Equal(t, &shop, seller.ShopName)

	_, err = service.Register(ctx, RegisterInput{Email: "admin@example.com", Password: "password1", Name: "Admin", Role: domain.RoleAdmin})
	assert.True(t, IsValidationError(err))
}

func TestRegister_PasswordLimitCountsBytes(t *testing.T) {
	service, store := newTestUserService()
	ctx := context.Background()

	// 40 characters but 80 bytes
	_, err := service.Register(ctx, RegisterInput{Email: "efe@example.com", Password: strings.Repeat("é", 40), Name: "Efe"})
	require.Error(t, err)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "password", validationErr.Field)

	_, err = store.GetUserByEmail(ctx, "efe@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = service.Register(ctx, RegisterInput{Email: "efe@example.com", Password: strings.Repeat("é", 36), Name: "Efe"})
	assert.NoError(t, err)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	service, store := newTestUserService()
	ctx := context.Background()

	_, err := service.Register(ctx, RegisterInput{Email: "kofi@example.com", Password: "password1", Name: "Kofi"})
	require.NoError(t, err)

	_, err = service.Login(ctx, "kofi@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(ctx, "nobody@example.com", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	uid := "firebase-uid"
	_, err = store.CreateUser(ctx, domain.User{Email: "linked@example.com", Name: "Linked", FirebaseUID: &uid})
	require.NoError(t, err)
	_, err = service.Login(ctx, "linked@example.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	session, err := service.Login(ctx, "KOFI@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "kofi@example.com", session.User.Email)
}

func TestAuthenticate(t *testing.T) {
	service, store := newTestUserService()
	ctx := context.Background()

	_, err := service.Register(ctx, RegisterInput{Email: "esi@example.com", Password: "password1", Name: "Esi"})
	require.NoError(t, err)
	session, err := service.Login(ctx, "esi@example.com", "password1")
	require.NoError(t, err)

	t.Run("role comes from storage", func(t *testing.T) {
		admin := domain.RoleAdmin
		_, err := store.UpdateUser(ctx, session.User.ID, domain.UserPatch{Role: &admin})
		require.NoError(t, err)

		user, err := service.Authenticate(ctx, session.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, user.Role)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := &Claims{
			UserID: session.User.ID,
			Role:   domain.RoleBuyer,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = service.Authenticate(ctx, token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewUserService(store, store, TokenConfig{Secret: "another-secret"})
		_, err := other.Authenticate(ctx, session.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("user store unavailable", func(t *testing.T) {
		broken := NewUserService(unreachableUsers{store}, store, TokenConfig{Secret: testSecret})
		_, err := broken.Authenticate(ctx, session.AccessToken)
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("deleted user", func(t *testing.T) {
		require.NoError(t, service.DeleteUser(ctx, session.User.ID))

		_, err := service.Authenticate(ctx, session.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.ErrorIs(t, service.DeleteUser(ctx, session.User.ID), repository.ErrUserNotFound)
	})
}

// unreachableUsers fails every user lookup as a lost database connection would.
type unreachableUsers struct {
	*memory.Storage
}

func (unreachableUsers) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return nil, errors.New("connection refused")
}

func TestUpdateProfile_IgnoresRole(t *testing.T) {
	service, _ := newTestUserService()
	ctx := context.Background()

	user, err := service.Register(ctx, RegisterInput{Email: "yaw@example.com", Password: "password1", Name: "Yaw"})
	require.NoError(t, err)

	name := "Yaw Mensah"
	admin := domain.RoleAdmin
	updated, err := service.UpdateProfile(ctx, user.ID, domain.UserPatch{Name: &name, Role: &admin})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, domain.RoleBuyer, updated.Role)
}
