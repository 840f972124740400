package model

import "time"

// AdminUser represents a back-office account in the `admin_users` table.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique, stored lower-cased.
//  PasswordHash – bcrypt hash of the password.
//  Role         – currently always ADMIN.
//  IsActive     – inactive accounts cannot log in.
type AdminUser struct {
	ID           uint64    // admin_users.id
	Email        string    // admin_users.email
	PasswordHash string    // admin_users.password_hash
	Role         string    // admin_users.role
	IsActive     bool      // admin_users.is_active
	CreatedAt    time.Time // admin_users.created_at
	UpdatedAt    time.Time // admin_users.updated_at
}

// RoleAdmin is the only role accepted by the back-office routes.
const RoleAdmin = "ADMIN"

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the token handed to the client is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
