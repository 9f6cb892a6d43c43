package models

// Role identifies what a principal is allowed to do.
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// IsAdmin reports whether the role grants access to the moderation surface.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// VerificationStatus is the moderation state of a crime report.
type VerificationStatus string

const (
	StatusUnverified  VerificationStatus = "UNVERIFIED"
	StatusVerified    VerificationStatus = "VERIFIED"
	StatusFalse       VerificationStatus = "FALSE"
	StatusAIGenerated VerificationStatus = "AI_GENERATED"
)

// ValidVerificationStatus reports whether s is one of the known statuses.
func ValidVerificationStatus(s string) bool {
	switch VerificationStatus(s) {
	case StatusUnverified, StatusVerified, StatusFalse, StatusAIGenerated:
		return true
	}
	return false
}

// TokenPair is the response body for every flow that issues tokens.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
