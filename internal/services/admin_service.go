package services

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/pbkdf2"

	"github.com/statafric/consultation/internal/utils"
)

// app_config keys for the rotatable admin password. When set, they override
// the ADMIN_PASSWORD environment secret without a redeploy.
const (
	cfgAdminHash  = "ADMIN_PASSWORD_HASH"
	cfgAdminSalt  = "ADMIN_PASSWORD_SALT"
	cfgAdminIters = "ADMIN_PASSWORD_ITERS"
)

const (
	PBKDF2Iters         = 200000
	pbkdf2KeyLen        = 32
	saltLen             = 16
	AdminPasswordMinLen = 10
	AdminTokenTTL       = 12 * time.Hour
)

type ConfigStore interface {
	GetConfig(key string) (string, error)
	SetConfig(key, value string) error
	DeleteConfig(key string) error
}

// TokenSigner issues a session token for a role. Kept as a function type so
// tests can avoid real JWT material.
type TokenSigner func(role string, ttl time.Duration) (string, error)

type AdminService struct {
	store       ConfigStore
	signToken   TokenSigner
	adminSecret func() string
	superSecret func() string
}

func NewAdminService(store ConfigStore, signToken TokenSigner) *AdminService {
	return &AdminService{
		store:       store,
		signToken:   signToken,
		adminSecret: func() string { return utils.SafeEnv("ADMIN_PASSWORD", "") },
		superSecret: func() string { return utils.SafeEnv("SUPERADMIN_PASSWORD", "") },
	}
}

func pbkdf2SHA256Hex(password string, salt []byte, iters int) string {
	return hex.EncodeToString(pbkdf2.Key([]byte(password), salt, iters, pbkdf2KeyLen, sha256.New))
}

// VerifyAdminPassword checks pw against the hashed override stored in
// app_config first, then the ADMIN_PASSWORD environment secret. Comparison
// is constant time in both branches.
func (s *AdminService) VerifyAdminPassword(pw string) bool {
	pw = strings.TrimSpace(pw)
	if pw == "" {
		return false
	}
	hash, _ := s.store.GetConfig(cfgAdminHash)
	saltHex, _ := s.store.GetConfig(cfgAdminSalt)
	if hash != "" && saltHex != "" {
		salt, err := hex.DecodeString(saltHex)
		if err != nil {
			return false
		}
		iters := PBKDF2Iters
		if v, _ := s.store.GetConfig(cfgAdminIters); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				iters = n
			}
		}
		computed := pbkdf2SHA256Hex(pw, salt, iters)
		return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
	}
	secret := s.adminSecret()
	if secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(pw), []byte(secret)) == 1
}

// VerifySuperadminPassword checks the separate superadmin secret. It lives
// only in the environment and is never stored hashed in the database.
func (s *AdminService) VerifySuperadminPassword(pw string) bool {
	pw = strings.TrimSpace(pw)
	secret := s.superSecret()
	if pw == "" || secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(pw), []byte(secret)) == 1
}

type LoginResult struct {
	Role  string `json:"role"`
	Token string `json:"token"`
}

// Login resolves pw to a role. Superadmin is tried first: the same login
// screen serves both levels.
func (s *AdminService) Login(pw string) (*LoginResult, error) {
	var role string
	switch {
	case s.VerifySuperadminPassword(pw):
		role = "superadmin"
	case s.VerifyAdminPassword(pw):
		role = "admin"
	default:
		return nil, NewUnauthorizedError("incorrect password or missing ADMIN_PASSWORD secret")
	}
	token, err := s.signToken(role, AdminTokenTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Role: role, Token: token}, nil
}

// SetAdminPassword writes a fresh salt and PBKDF2 hash to app_config.
// Superadmin only; the handler enforces the role.
func (s *AdminService) SetAdminPassword(newPw string) error {
	newPw = strings.TrimSpace(newPw)
	if len(newPw) < AdminPasswordMinLen {
		return NewInvalidError("password too short")
	}
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return err
	}
	if err := s.store.SetConfig(cfgAdminSalt, hex.EncodeToString(salt)); err != nil {
		return err
	}
	if err := s.store.SetConfig(cfgAdminIters, strconv.Itoa(PBKDF2Iters)); err != nil {
		return err
	}
	return s.store.SetConfig(cfgAdminHash, pbkdf2SHA256Hex(newPw, salt, PBKDF2Iters))
}

// ResetAdminPassword removes the hashed override; the ADMIN_PASSWORD
// environment secret applies again.
func (s *AdminService) ResetAdminPassword() error {
	for _, k := range []string{cfgAdminHash, cfgAdminSalt, cfgAdminIters} {
		if err := s.store.DeleteConfig(k); err != nil {
			return err
		}
	}
	return nil
}

// AuthSource reports where the admin password currently comes from:
// "db" (hashed override), "env", or "none".
func (s *AdminService) AuthSource() string {
	hash, _ := s.store.GetConfig(cfgAdminHash)
	salt, _ := s.store.GetConfig(cfgAdminSalt)
	if hash != "" && salt != "" {
		return "db"
	}
	if s.adminSecret() != "" {
		return "env"
	}
	return "none"
}

// DiagInfo is the secret-presence diagnostic (values are never revealed).
type DiagInfo struct {
	AdminSource          string `json:"admin_source"`
	SuperadminConfigured bool   `json:"superadmin_configured"`
}

func (s *AdminService) Diag() DiagInfo {
	return DiagInfo{
		AdminSource:          s.AuthSource(),
		SuperadminConfigured: s.superSecret() != "",
	}
}
