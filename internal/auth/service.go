package auth

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/crimewatch-io/crimewatch/internal/mail"
	"github.com/crimewatch-io/crimewatch/internal/models"
)

// SessionMeta is the client fingerprint recorded on each session row. Purely
// informational; none of it is trusted for auth decisions.
type SessionMeta struct {
	DeviceInfo string
	IPAddress  string
	UserAgent  string
}

// Service implements the authentication flows for both principal kinds.
// Users and admins never share a session table, so a user token can never be
// replayed against the admin surface.
type Service struct {
	users         UserStore
	admins        AdminStore
	userSessions  SessionStore
	adminSessions SessionStore
	tokens        *TokenManager
	mailer        mail.Mailer
}

// NewService wires an auth Service from its dependencies.
func NewService(users UserStore, admins AdminStore, userSessions, adminSessions SessionStore, tokens *TokenManager, mailer mail.Mailer) *Service {
	return &Service{
		users:         users,
		admins:        admins,
		userSessions:  userSessions,
		adminSessions: adminSessions,
		tokens:        tokens,
		mailer:        mailer,
	}
}

// Register creates a user account and opens its first session. The email
// must be unused.
func (s *Service) Register(email, password, anonymousName string, meta SessionMeta) (models.TokenPair, error) {
	if _, err := s.users.GetByEmail(email); err == nil {
		return models.TokenPair{}, ErrEmailTaken
	} else if err != ErrNotFound {
		return models.TokenPair{}, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:            uuid.New().String(),
		AnonymousName: anonymousName,
		Email:         email,
		PasswordHash:  hash,
		Role:          models.RoleUser,
		CreatedAt:     time.Now(),
	}
	if err := s.users.Create(user); err != nil {
		return models.TokenPair{}, fmt.Errorf("failed to create user: %w", err)
	}

	pair, err := s.tokens.GeneratePair(user.ID, user.Email, user.Role)
	if err != nil {
		return models.TokenPair{}, err
	}
	if err := s.createSession(s.userSessions, user.ID, pair.RefreshToken, meta); err != nil {
		return models.TokenPair{}, err
	}
	return pair, nil
}

// Login checks user credentials and opens a session. Unknown email and wrong
// password fail identically.
func (s *Service) Login(email, password string, meta SessionMeta) (models.TokenPair, error) {
	user, err := s.users.GetByEmail(email)
	if err == ErrNotFound {
		return models.TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return models.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.tokens.GeneratePair(user.ID, user.Email, user.Role)
	if err != nil {
		return models.TokenPair{}, err
	}
	if err := s.createSession(s.userSessions, user.ID, pair.RefreshToken, meta); err != nil {
		return models.TokenPair{}, err
	}
	return pair, nil
}

// AdminLogin checks admin credentials and issues an OTP challenge by email.
// No tokens are minted until the OTP is verified. The challenge is persisted
// before the mail goes out, so a crash between the two leaves a resendable
// challenge rather than a code nobody stored.
func (s *Service) AdminLogin(ctx context.Context, email, password string) error {
	admin, err := s.admins.GetByEmail(email)
	if err == ErrNotFound {
		return ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	ok, err := VerifyPassword(password, admin.PasswordHash)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}

	otp, err := GenerateOTP()
	if err != nil {
		return err
	}
	otpHash, err := HashPassword(otp)
	if err != nil {
		return fmt.Errorf("failed to hash OTP: %w", err)
	}

	if err := s.admins.SetOTP(admin.ID, otpHash, time.Now().Add(OTPTTL)); err != nil {
		return fmt.Errorf("failed to store OTP: %w", err)
	}

	if err := s.mailer.SendOTP(ctx, admin.Email, otp); err != nil {
		return fmt.Errorf("failed to send OTP email: %w", err)
	}
	return nil
}

// VerifyOTP completes an admin login. On success the pending challenge is
// consumed and a token pair plus session are issued.
func (s *Service) VerifyOTP(email, otp string, meta SessionMeta) (models.TokenPair, error) {
	admin, err := s.admins.GetByEmail(email)
	if err == ErrNotFound {
		return models.TokenPair{}, ErrInvalidOTP
	}
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("failed to look up admin: %w", err)
	}

	if admin.OTPHash == nil || admin.OTPExpiresAt == nil {
		return models.TokenPair{}, ErrInvalidOTP
	}
	if time.Now().After(*admin.OTPExpiresAt) {
		return models.TokenPair{}, ErrOTPExpired
	}

	ok, err := VerifyPassword(otp, *admin.OTPHash)
	if err != nil || !ok {
		return models.TokenPair{}, ErrInvalidOTP
	}

	// Single use: clear before minting so a replayed code finds nothing.
	if err := s.admins.ClearOTP(admin.ID); err != nil {
		return models.TokenPair{}, fmt.Errorf("failed to clear OTP: %w", err)
	}

	pair, err := s.tokens.GeneratePair(admin.ID, admin.Email, admin.Role)
	if err != nil {
		return models.TokenPair{}, err
	}
	if err := s.createSession(s.adminSessions, admin.ID, pair.RefreshToken, meta); err != nil {
		return models.TokenPair{}, err
	}
	return pair, nil
}

// RefreshUserToken rotates a user refresh token.
func (s *Service) RefreshUserToken(refreshToken string) (models.TokenPair, error) {
	return s.refresh(s.userSessions, refreshToken, func(id string) (string, models.Role, error) {
		user, err := s.users.GetByID(id)
		if err != nil {
			return "", "", err
		}
		return user.Email, user.Role, nil
	})
}

// RefreshAdminToken rotates an admin refresh token.
func (s *Service) RefreshAdminToken(refreshToken string) (models.TokenPair, error) {
	return s.refresh(s.adminSessions, refreshToken, func(id string) (string, models.Role, error) {
		admin, err := s.admins.GetByID(id)
		if err != nil {
			return "", "", err
		}
		return admin.Email, admin.Role, nil
	})
}

// refresh implements rotation for either session table. The session row is
// authoritative: the JWT expiry check is only the cheap first gate. Deleting
// the old row before inserting the new one is what makes rotation safe under
// concurrency; the delete succeeds for exactly one caller per token.
func (s *Service) refresh(sessions SessionStore, refreshToken string, lookupOwner func(id string) (string, models.Role, error)) (models.TokenPair, error) {
	session, err := sessions.GetByRefreshToken(refreshToken)
	if err == ErrNotFound {
		return models.TokenPair{}, ErrInvalidRefresh
	}
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("failed to look up session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		if _, err := sessions.DeleteByRefreshToken(refreshToken); err != nil {
			log.Printf("failed to delete expired session %s: %v", session.ID, err)
		}
		return models.TokenPair{}, ErrRefreshExpired
	}

	if _, err := s.tokens.ValidateRefreshToken(refreshToken); err != nil {
		if _, err := sessions.DeleteByRefreshToken(refreshToken); err != nil {
			log.Printf("failed to delete invalid session %s: %v", session.ID, err)
		}
		return models.TokenPair{}, ErrInvalidRefresh
	}

	email, role, err := lookupOwner(session.OwnerID)
	if err == ErrNotFound {
		return models.TokenPair{}, ErrInvalidSession
	}
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("failed to look up session owner: %w", err)
	}

	if err := sessions.UpdateLastUsed(session.ID); err != nil {
		log.Printf("failed to update last_used_at for session %s: %v", session.ID, err)
	}

	pair, err := s.tokens.GeneratePair(session.OwnerID, email, role)
	if err != nil {
		return models.TokenPair{}, err
	}

	deleted, err := sessions.DeleteByRefreshToken(refreshToken)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("failed to rotate session: %w", err)
	}
	if !deleted {
		// A concurrent refresh already claimed this token.
		return models.TokenPair{}, ErrInvalidRefresh
	}

	meta := SessionMeta{DeviceInfo: session.DeviceInfo, IPAddress: session.IPAddress, UserAgent: session.UserAgent}
	if err := s.createSession(sessions, session.OwnerID, pair.RefreshToken, meta); err != nil {
		return models.TokenPair{}, err
	}
	return pair, nil
}

func (s *Service) createSession(sessions SessionStore, ownerID, refreshToken string, meta SessionMeta) error {
	now := time.Now()
	session := &models.Session{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		RefreshToken: refreshToken,
		DeviceInfo:   meta.DeviceInfo,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		ExpiresAt:    now.Add(RefreshTokenTTL),
		CreatedAt:    now,
		LastUsedAt:   now,
	}
	if err := sessions.Create(session); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Logout revokes the session holding the refresh token, if any.
func (s *Service) Logout(refreshToken string) {
	if deleted, _ := s.userSessions.DeleteByRefreshToken(refreshToken); deleted {
		return
	}
	_, _ = s.adminSessions.DeleteByRefreshToken(refreshToken)
}

// LogoutAll revokes every session the principal holds, on every device.
func (s *Service) LogoutAll(ownerID string, admin bool) error {
	sessions := s.userSessions
	if admin {
		sessions = s.adminSessions
	}
	if err := sessions.DeleteAllForOwner(ownerID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired rows from both session tables.
func (s *Service) CleanupExpiredSessions() {
	for name, store := range map[string]SessionStore{
		"user":  s.userSessions,
		"admin": s.adminSessions,
	} {
		n, err := store.DeleteExpired()
		if err != nil {
			log.Printf("failed to clean up expired %s sessions: %v", name, err)
			continue
		}
		if n > 0 {
			log.Printf("cleaned up %d expired %s sessions", n, name)
		}
	}
}
