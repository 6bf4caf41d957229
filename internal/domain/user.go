package domain

import (
	"errors"
	"time"
)

// ErrUnauthenticated is wrapped by every error caused by the credential a
// caller presented, as opposed to a failure looking it up.
var ErrUnauthenticated = errors.New("unauthenticated")

// Role is the business classification that gates authorization.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// User represents a marketplace account. The password hash never leaves the
// process: it is excluded from JSON.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash *string   `json:"-" db:"password"`
	Name         string    `json:"name" db:"name"`
	Role         Role      `json:"role" db:"role"`
	FirebaseUID  *string   `json:"firebaseUid,omitempty" db:"firebase_uid"`
	ShopName     *string   `json:"shopName,omitempty" db:"shop_name"`
	ShopLogo     *string   `json:"shopLogo,omitempty" db:"shop_logo"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserPatch holds the mutable user fields; nil means unchanged.
type UserPatch struct {
	Name     *string
	ShopName *string
	ShopLogo *string
	Role     *Role
}

// Apply merges the patch into u.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.ShopName != nil {
		u.ShopName = p.ShopName
	}
	if p.ShopLogo != nil {
		u.ShopLogo = p.ShopLogo
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
}

// RefreshToken represents a long-lived token used to mint access tokens
type RefreshToken struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	Revoked   bool      `json:"revoked" db:"revoked"`
}
