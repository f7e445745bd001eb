package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Filadrif/MPBFQW-backend/internal/config"
	"github.com/Filadrif/MPBFQW-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service owns session persistence, token issuance and verification.
type Service struct {
	db             *gorm.DB
	codec          *Codec
	accessTTL      time.Duration
	refreshTTL     time.Duration
	refreshLongTTL time.Duration
}

func NewService(db *gorm.DB, cfg config.JWTConfig) *Service {
	return &Service{
		db:             db,
		codec:          NewCodec(cfg.Secret),
		accessTTL:      time.Duration(cfg.AccessExpireMinutes) * time.Minute,
		refreshTTL:     time.Duration(cfg.RefreshExpireHours) * time.Hour,
		refreshLongTTL: time.Duration(cfg.RefreshLongExpireHours) * time.Hour,
	}
}

// Codec exposes the token codec, mainly for tests.
func (s *Service) Codec() *Codec {
	return s.codec
}

// TokenPair is the result of an issuance: an access token for the
// cookie, a refresh token for the response body, and the cookie
// lifetime in seconds.
type TokenPair struct {
	Access  string
	Refresh string
	MaxAge  int
}

// Issue creates a new session bound to the account and the calling
// device's fingerprint, then signs a fresh token pair for it.
func (s *Service) Issue(account *models.Account, long bool, r *http.Request) (*TokenPair, error) {
	session := &models.AccountSession{
		AccountID:   account.ID,
		Fingerprint: Fingerprint(r),
	}
	return s.issue(session, long, true)
}

// issue persists the session (creating or rotating it) and signs the
// token pair. The session row is committed strictly before any token is
// returned: tokens must never reference an uncommitted session.
func (s *Service) issue(session *models.AccountSession, long bool, create bool) (*TokenPair, error) {
	now := time.Now()

	identity, err := uuid.NewUUID() // v1, time-ordered like the issuance itself
	if err != nil {
		return nil, fmt.Errorf("generate identity: %w", err)
	}
	session.Identity = identity.String()

	ttl := s.refreshTTL
	if long {
		ttl = s.refreshLongTTL
	}
	session.InvalidAfter = now.Add(ttl)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if create {
			return tx.Create(session).Error
		}
		return tx.Model(&models.AccountSession{}).
			Where("id = ?", session.ID).
			Updates(map[string]interface{}{
				"identity":      session.Identity,
				"invalid_after": session.InvalidAfter,
			}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	access, err := s.codec.Encode(&Claims{
		Role:     string(KindAccess),
		Session:  session.ID,
		Identity: session.Identity,
		Purpose:  "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := s.codec.Encode(&Claims{
		Role:     string(KindRefresh),
		Session:  session.ID,
		Identity: session.Identity,
		Purpose:  fmt.Sprintf("user:%t", long),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(session.InvalidAfter),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &TokenPair{
		Access:  access,
		Refresh: refresh,
		MaxAge:  int(ttl / time.Second),
	}, nil
}

// checkSession loads the session and compares the stored fingerprint
// and identity against the current request. Either mismatch deletes the
// row: a wrong fingerprint means the token is presented from another
// device, a wrong identity means an already-rotated pair is replayed.
func (s *Service) checkSession(sessionID uint, identity string, r *http.Request) (*models.AccountSession, error) {
	var session models.AccountSession
	if err := s.db.Preload("Account").First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	if session.Fingerprint != Fingerprint(r) || session.Identity != identity {
		if err := s.db.Delete(&models.AccountSession{}, session.ID).Error; err != nil {
			return nil, fmt.Errorf("delete session: %w", err)
		}
		return nil, ErrUnauthorized
	}

	if !time.Now().Before(session.InvalidAfter) {
		return nil, ErrUnauthorized
	}

	return &session, nil
}

// VerifyAccess is the authorization gate run on every authenticated
// request. It returns the live session with its account preloaded.
func (s *Service) VerifyAccess(access string, r *http.Request) (*models.AccountSession, error) {
	claims, err := s.codec.Decode(access, KindAccess, false)
	if err != nil {
		return nil, err
	}
	return s.checkSession(claims.Session, claims.Identity, r)
}

// Refresh exchanges a (possibly expired) access token and a valid
// refresh token for a new pair. The refreshed pair keeps the session id
// but rotates its identity, so the presented refresh token is single
// use: a replay fails the identity comparison in checkSession.
func (s *Service) Refresh(access, refresh string, r *http.Request) (*TokenPair, error) {
	accessClaims, err := s.codec.Decode(access, KindAccess, true)
	if err != nil {
		return nil, err
	}
	refreshClaims, err := s.codec.Decode(refresh, KindRefresh, false)
	if err != nil {
		return nil, err
	}
	if accessClaims.Identity != refreshClaims.Identity {
		return nil, ErrTokenInvalid
	}

	session, err := s.checkSession(accessClaims.Session, accessClaims.Identity, r)
	if err != nil {
		return nil, err
	}

	long := strings.HasSuffix(refreshClaims.Purpose, ":true")
	return s.issue(session, long, false)
}

// Logout deletes the session. Deleting an already-deleted session is a
// no-op.
func (s *Service) Logout(session *models.AccountSession) error {
	return s.db.Delete(&models.AccountSession{}, session.ID).Error
}
