package models

import "time"

// User is a registered reporter. Reports are published under the anonymous
// name, never the email.
type User struct {
	ID            string    `json:"id" db:"id"`
	AnonymousName string    `json:"anonymousName,omitempty" db:"anonymous_name"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  string    `json:"-" db:"password_hash"` // never sent to client
	Role          Role      `json:"role" db:"role"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// Admin is a moderation principal. OTPHash/OTPExpiresAt are both nil unless an
// OTP challenge is pending; issuing a new OTP overwrites them, verifying or
// expiring clears them.
type Admin struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         Role       `json:"role" db:"role"`
	OTPHash      *string    `json:"-" db:"otp_hash"`
	OTPExpiresAt *time.Time `json:"-" db:"otp_expires_at"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
}

// Session is one refresh-token grant for either principal kind. The refresh
// token string uniquely identifies at most one live row; rotation replaces the
// row rather than updating the token in place.
type Session struct {
	ID           string    `json:"id" db:"id"`
	OwnerID      string    `json:"ownerId" db:"owner_id"`
	RefreshToken string    `json:"-" db:"refresh_token"`
	DeviceInfo   string    `json:"deviceInfo,omitempty" db:"device_info"`
	IPAddress    string    `json:"ipAddress,omitempty" db:"ip_address"`
	UserAgent    string    `json:"userAgent,omitempty" db:"user_agent"`
	ExpiresAt    time.Time `json:"expiresAt" db:"expires_at"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	LastUsedAt   time.Time `json:"lastUsedAt" db:"last_used_at"`
}
