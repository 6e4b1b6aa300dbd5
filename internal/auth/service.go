package auth

import (
	"strconv"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ervall/mediavault/internal/config"
	"github.com/ervall/mediavault/internal/database"
	"github.com/ervall/mediavault/internal/errors"
	"github.com/ervall/mediavault/internal/logger"
)

// Service resolves PINs to roles and issues tokens.
type Service struct {
	db  *gorm.DB
	cfg config.AuthConfig
}

// NewService creates an auth service on the given connection.
func NewService(db *gorm.DB, cfg config.AuthConfig) *Service {
	return &Service{db: db, cfg: cfg}
}

// LoginResult is the response of a successful PIN login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Role        string `json:"role"`
}

// Login checks the PIN against the admin PIN (settings-row bcrypt override
// first, then the configured master PIN) and the active guest list.
func (s *Service) Login(pin string) (*LoginResult, error) {
	if pin == "" {
		return nil, errors.NewValidationError("PIN is required", "pin")
	}

	role, subject := "", ""
	if s.isAdminPIN(pin) {
		role, subject = RoleAdmin, "admin"
	} else if guest := s.findGuest(pin); guest != nil {
		role, subject = RoleGuest, strconv.FormatUint(uint64(guest.ID), 10)
	}

	if role == "" {
		return nil, errors.NewValidationError("Incorrect PIN", "pin")
	}

	token, err := IssueToken(s.cfg.SecretKey, subject, role, s.cfg.TokenExpiry)
	if err != nil {
		return nil, errors.NewInternalError("failed to sign token", err)
	}

	logger.Info("PIN login", []logger.Field{logger.String("role", role)})
	return &LoginResult{AccessToken: token, TokenType: "bearer", Role: role}, nil
}

// isAdminPIN prefers the settings-row override over the configured PIN, so a
// rotated admin PIN takes effect without a restart.
func (s *Service) isAdminPIN(pin string) bool {
	var settings database.SystemSettings
	err := s.db.First(&settings).Error
	if err == nil && settings.AdminPINHash != nil && *settings.AdminPINHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(*settings.AdminPINHash), []byte(pin)) == nil
	}
	return pin == s.cfg.MasterPIN
}

func (s *Service) findGuest(pin string) *database.Guest {
	var guest database.Guest
	err := s.db.Where("pin = ? AND is_active = ?", pin, true).First(&guest).Error
	if err != nil {
		return nil
	}
	return &guest
}

// HashPIN produces the bcrypt hash stored for the admin PIN override.
func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
