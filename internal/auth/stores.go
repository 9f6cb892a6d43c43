package auth

import (
	"database/sql"
	"errors"
	"time"

	"github.com/crimewatch-io/crimewatch/internal/database"
	"github.com/crimewatch-io/crimewatch/internal/models"
)

// ErrNotFound is returned by store lookups when no row matches.
var ErrNotFound = errors.New("not found")

// UserStore defines the interface for user storage operations
type UserStore interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
}

// AdminStore defines the interface for admin storage operations
type AdminStore interface {
	Create(admin *models.Admin) error
	GetByEmail(email string) (*models.Admin, error)
	GetByID(id string) (*models.Admin, error)
	SetOTP(id, otpHash string, expiresAt time.Time) error
	ClearOTP(id string) error
}

// SessionStore defines the interface for refresh-session storage. One
// implementation backs both user and admin sessions; they differ only in
// table and owner column.
type SessionStore interface {
	Create(session *models.Session) error
	GetByRefreshToken(token string) (*models.Session, error)
	// DeleteByRefreshToken reports whether a row was actually deleted. During
	// rotation this doubles as the claim on the token: of two concurrent
	// refreshes only one observes true.
	DeleteByRefreshToken(token string) (bool, error)
	UpdateLastUsed(id string) error
	DeleteAllForOwner(ownerID string) error
	DeleteExpired() (int64, error)
}

// SQLUserStore implements UserStore on database/sql
type SQLUserStore struct {
	db *sql.DB
}

// NewUserStore creates a new SQLUserStore
func NewUserStore() *SQLUserStore {
	return &SQLUserStore{db: database.GetConnection()}
}

// Create stores a new user in the database
func (s *SQLUserStore) Create(user *models.User) error {
	query := database.Rebind(`
		INSERT INTO users (id, anonymous_name, email, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.Exec(query, user.ID, user.AnonymousName, user.Email, user.PasswordHash, user.Role, user.CreatedAt)
	return err
}

// GetByEmail retrieves a user by email
func (s *SQLUserStore) GetByEmail(email string) (*models.User, error) {
	query := database.Rebind(`
		SELECT id, anonymous_name, email, password_hash, role, created_at
		FROM users
		WHERE email = ?
	`)
	return s.scanUser(s.db.QueryRow(query, email))
}

// GetByID retrieves a user by ID
func (s *SQLUserStore) GetByID(id string) (*models.User, error) {
	query := database.Rebind(`
		SELECT id, anonymous_name, email, password_hash, role, created_at
		FROM users
		WHERE id = ?
	`)
	return s.scanUser(s.db.QueryRow(query, id))
}

func (s *SQLUserStore) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var anonymousName sql.NullString
	err := row.Scan(
		&user.ID,
		&anonymousName,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	user.AnonymousName = anonymousName.String
	return user, nil
}

// SQLAdminStore implements AdminStore on database/sql
type SQLAdminStore struct {
	db *sql.DB
}

// NewAdminStore creates a new SQLAdminStore
func NewAdminStore() *SQLAdminStore {
	return &SQLAdminStore{db: database.GetConnection()}
}

// Create stores a new admin in the database
func (s *SQLAdminStore) Create(admin *models.Admin) error {
	query := database.Rebind(`
		INSERT INTO admins (id, email, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	_, err := s.db.Exec(query, admin.ID, admin.Email, admin.PasswordHash, admin.Role, admin.CreatedAt)
	return err
}

// GetByEmail retrieves an admin by email
func (s *SQLAdminStore) GetByEmail(email string) (*models.Admin, error) {
	query := database.Rebind(`
		SELECT id, email, password_hash, role, otp_hash, otp_expires_at, created_at
		FROM admins
		WHERE email = ?
	`)
	return s.scanAdmin(s.db.QueryRow(query, email))
}

// GetByID retrieves an admin by ID
func (s *SQLAdminStore) GetByID(id string) (*models.Admin, error) {
	query := database.Rebind(`
		SELECT id, email, password_hash, role, otp_hash, otp_expires_at, created_at
		FROM admins
		WHERE id = ?
	`)
	return s.scanAdmin(s.db.QueryRow(query, id))
}

// SetOTP records a pending OTP challenge, replacing any previous one.
func (s *SQLAdminStore) SetOTP(id, otpHash string, expiresAt time.Time) error {
	query := database.Rebind(`UPDATE admins SET otp_hash = ?, otp_expires_at = ? WHERE id = ?`)
	_, err := s.db.Exec(query, otpHash, expiresAt, id)
	return err
}

// ClearOTP removes the pending OTP challenge.
func (s *SQLAdminStore) ClearOTP(id string) error {
	query := database.Rebind(`UPDATE admins SET otp_hash = NULL, otp_expires_at = NULL WHERE id = ?`)
	_, err := s.db.Exec(query, id)
	return err
}

func (s *SQLAdminStore) scanAdmin(row *sql.Row) (*models.Admin, error) {
	admin := &models.Admin{}
	var otpHash sql.NullString
	var otpExpiresAt sql.NullTime
	err := row.Scan(
		&admin.ID,
		&admin.Email,
		&admin.PasswordHash,
		&admin.Role,
		&otpHash,
		&otpExpiresAt,
		&admin.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if otpHash.Valid {
		admin.OTPHash = &otpHash.String
	}
	if otpExpiresAt.Valid {
		admin.OTPExpiresAt = &otpExpiresAt.Time
	}
	return admin, nil
}

// SQLSessionStore implements SessionStore on database/sql, parameterized by
// table and owner column so the same code serves user_sessions and
// admin_sessions.
type SQLSessionStore struct {
	db       *sql.DB
	table    string
	ownerCol string
}

// NewUserSessionStore creates a SessionStore backed by user_sessions
func NewUserSessionStore() *SQLSessionStore {
	return &SQLSessionStore{db: database.GetConnection(), table: "user_sessions", ownerCol: "user_id"}
}

// NewAdminSessionStore creates a SessionStore backed by admin_sessions
func NewAdminSessionStore() *SQLSessionStore {
	return &SQLSessionStore{db: database.GetConnection(), table: "admin_sessions", ownerCol: "admin_id"}
}

// Create stores a new session row
func (s *SQLSessionStore) Create(session *models.Session) error {
	query := database.Rebind(`
		INSERT INTO ` + s.table + ` (id, ` + s.ownerCol + `, refresh_token, device_info, ip_address, user_agent, expires_at, created_at, last_used_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.Exec(query,
		session.ID,
		session.OwnerID,
		session.RefreshToken,
		session.DeviceInfo,
		session.IPAddress,
		session.UserAgent,
		session.ExpiresAt,
		session.CreatedAt,
		session.LastUsedAt,
	)
	return err
}

// GetByRefreshToken retrieves the session holding the given refresh token
func (s *SQLSessionStore) GetByRefreshToken(token string) (*models.Session, error) {
	query := database.Rebind(`
		SELECT id, ` + s.ownerCol + `, refresh_token, device_info, ip_address, user_agent, expires_at, created_at, last_used_at
		FROM ` + s.table + `
		WHERE refresh_token = ?
	`)
	session := &models.Session{}
	var deviceInfo, ipAddress, userAgent sql.NullString
	err := s.db.QueryRow(query, token).Scan(
		&session.ID,
		&session.OwnerID,
		&session.RefreshToken,
		&deviceInfo,
		&ipAddress,
		&userAgent,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.LastUsedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	session.DeviceInfo = deviceInfo.String
	session.IPAddress = ipAddress.String
	session.UserAgent = userAgent.String
	return session, nil
}

// DeleteByRefreshToken deletes the session holding the token and reports
// whether a row was removed.
func (s *SQLSessionStore) DeleteByRefreshToken(token string) (bool, error) {
	query := database.Rebind(`DELETE FROM ` + s.table + ` WHERE refresh_token = ?`)
	result, err := s.db.Exec(query, token)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpdateLastUsed bumps last_used_at on the session
func (s *SQLSessionStore) UpdateLastUsed(id string) error {
	query := database.Rebind(`UPDATE ` + s.table + ` SET last_used_at = ? WHERE id = ?`)
	_, err := s.db.Exec(query, time.Now(), id)
	return err
}

// DeleteAllForOwner removes every session belonging to the owner
func (s *SQLSessionStore) DeleteAllForOwner(ownerID string) error {
	query := database.Rebind(`DELETE FROM ` + s.table + ` WHERE ` + s.ownerCol + ` = ?`)
	_, err := s.db.Exec(query, ownerID)
	return err
}

// DeleteExpired removes every session past its expiry and returns the count
func (s *SQLSessionStore) DeleteExpired() (int64, error) {
	query := database.Rebind(`DELETE FROM ` + s.table + ` WHERE expires_at < ?`)
	result, err := s.db.Exec(query, time.Now())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
