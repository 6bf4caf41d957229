// Package memory is a process-local Storage used for development and tests.
// It mirrors the Postgres backend: uniqueness rules, cascading deletes,
// upserts and newest-first ordering behave the same way.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"shophub/internal/domain"
	"shophub/internal/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type Storage struct {
	mu sync.RWMutex

	seq           int64
	order         map[string]int64 // id -> insertion sequence, for stable newest-first sorting
	users         map[string]*domain.User
	refreshTokens map[string]*domain.RefreshToken // keyed by token string
	categories    map[string]*domain.Category
	products      map[string]*domain.Product
	reviews       map[string]*domain.Review
	orders        map[string]*domain.Order
	cartItems     map[string]*domain.CartItem
	wishlistItems map[string]*domain.WishlistItem
}

var _ repository.Storage = (*Storage)(nil)

// NewStorage creates an empty in-memory storage.
func NewStorage() *Storage {
	return &Storage{
		order:         make(map[string]int64),
		users:         make(map[string]*domain.User),
		refreshTokens: make(map[string]*domain.RefreshToken),
		categories:    make(map[string]*domain.Category),
		products:      make(map[string]*domain.Product),
		reviews:       make(map[string]*domain.Review),
		orders:        make(map[string]*domain.Order),
		cartItems:     make(map[string]*domain.CartItem),
		wishlistItems: make(map[string]*domain.WishlistItem),
	}
}

// newID allocates an identifier and records its insertion order. Callers hold mu.
func (s *Storage) newID() string {
	id := uuid.NewString()
	s.seq++
	s.order[id] = s.seq
	return id
}

func now() time.Time {
	return time.Now().UTC()
}

// newestFirst sorts by creation time descending, breaking ties by insertion order.
func newestFirst[T any](s *Storage, items []T, key func(T) (string, time.Time)) {
	sort.SliceStable(items, func(i, j int) bool {
		idI, atI := key(items[i])
		idJ, atJ := key(items[j])
		if !atI.Equal(atJ) {
			return atI.After(atJ)
		}
		return s.order[idI] > s.order[idJ]
	})
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

// publicUser strips the password hash from users embedded in other entities.
func publicUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = nil
	return &c
}

func (s *Storage) GetUser(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := lo.Find(lo.Values(s.users), func(u *domain.User) bool { return u.Email == email })
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (s *Storage) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return nil, repository.ErrUserAlreadyExists
		}
		if user.FirebaseUID != nil && existing.FirebaseUID != nil && *existing.FirebaseUID == *user.FirebaseUID {
			return nil, repository.ErrUserAlreadyExists
		}
	}

	user.ID = s.newID()
	user.CreatedAt = now()
	if user.Role == "" {
		user.Role = domain.RoleBuyer
	}
	s.users[user.ID] = &user

	return cloneUser(&user), nil
}

func (s *Storage) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	patch.Apply(user)
	return cloneUser(user), nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := lo.Map(lo.Values(s.users), func(u *domain.User, _ int) *domain.User { return cloneUser(u) })
	newestFirst(s, users, func(u *domain.User) (string, time.Time) { return u.ID, u.CreatedAt })
	return users, nil
}

// DeleteUser removes the user and everything they own.
func (s *Storage) DeleteUser(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return false, nil
	}
	delete(s.users, id)

	for productID, product := range s.products {
		if product.SellerID == id {
			s.deleteProductLocked(productID)
		}
	}
	for token, rt := range s.refreshTokens {
		if rt.UserID == id {
			delete(s.refreshTokens, token)
		}
	}
	for reviewID, review := range s.reviews {
		if review.UserID == id {
			delete(s.reviews, reviewID)
		}
	}
	for orderID, order := range s.orders {
		if order.UserID == id {
			delete(s.orders, orderID)
		}
	}
	for itemID, item := range s.cartItems {
		if item.UserID == id {
			delete(s.cartItems, itemID)
		}
	}
	for itemID, item := range s.wishlistItems {
		if item.UserID == id {
			delete(s.wishlistItems, itemID)
		}
	}

	return true, nil
}

func (s *Storage) CreateRefreshToken(ctx context.Context, token *domain.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *token
	s.refreshTokens[token.Token] = &stored
	return nil
}

func (s *Storage) FindRefreshToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rt, ok := s.refreshTokens[token]
	if !ok {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if rt.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	c := *rt
	return &c, nil
}

func (s *Storage) RevokeRefreshToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rt, ok := s.refreshTokens[token]
	if !ok {
		return repository.ErrRefreshTokenNotFound
	}
	rt.Revoked = true
	return nil
}
