package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Filadrif/MPBFQW-backend/internal/config"
	"github.com/Filadrif/MPBFQW-backend/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testJWTConfig = config.JWTConfig{
	Secret:                 testSecret,
	AccessExpireMinutes:    15,
	RefreshExpireHours:     24,
	RefreshLongExpireHours: 720,
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Account{},
		&models.AccountInfo{},
		&models.AccountSession{},
	))

	return NewService(db, testJWTConfig), db
}

func newTestAccount(t *testing.T, db *gorm.DB) *models.Account {
	t.Helper()

	account := &models.Account{
		Username:     gofakeit.Username(),
		Email:        gofakeit.Email(),
		PasswordHash: "x",
		IsActive:     true,
		AccountType:  models.AccountStudent,
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

func deviceRequest(ua string) *http.Request {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	r.Header.Set("User-Agent", ua)
	return r
}

func TestIssueAndVerify(t *testing.T) {
	svc, db := newTestService(t)
	account := newTestAccount(t, db)
	r := deviceRequest(chromeUA)

	pair, err := svc.Issue(account, false, r)
	require.NoError(t, err)
	assert.Equal(t, 24*3600, pair.MaxAge)

	accessClaims, err := svc.Codec().Decode(pair.Access, KindAccess, false)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute),
		accessClaims.ExpiresAt.Time, 5*time.Second)

	refreshClaims, err := svc.Codec().Decode(pair.Refresh, KindRefresh, false)
	require.NoError(t, err)
	assert.Equal(t, accessClaims.Identity, refreshClaims.Identity)
	assert.Equal(t, "user:false", refreshClaims.Purpose)

	var session models.AccountSession
	require.NoError(t, db.First(&session, accessClaims.Session).Error)
	assert.Equal(t, session.InvalidAfter.Unix(), refreshClaims.ExpiresAt.Unix())

	verified, err := svc.VerifyAccess(pair.Access, r)
	require.NoError(t, err)
	assert.Equal(t, account.ID, verified.AccountID)
	assert.Equal(t, account.Username, verified.Account.Username)
}

func TestIssueLongSession(t *testing.T) {
	svc, db := newTestService(t)
	account := newTestAccount(t, db)

	pair, err := svc.Issue(account, true, deviceRequest(chromeUA))
	require.NoError(t, err)
	assert.Equal(t, 720*3600, pair.MaxAge)

	claims, err := svc.Codec().Decode(pair.Refresh, KindRefresh, false)
	require.NoError(t, err)
	assert.Equal(t, "user:true", claims.Purpose)
}

func TestVerifyExpiredAccess(t *testing.T) {
	svc, db := newTestService(t)
	account := newTestAccount(t, db)
	r := deviceRequest(chromeUA)

	pair, err := svc.Issue(account, false, r)
	require.NoError(t, err)
	claims, err := svc.Codec().Decode(pair.Access, KindAccess, false)
	require.NoError(t, err)

	// re-sign the same claims with a past expiry
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	expired, err := svc.Codec().Encode(claims)
	require.NoError(t, err)

	_, err = svc.VerifyAccess(expired, r)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyFingerprintMismatchDeletesSession(t *testing.T) {
	svc, db := newTestService(t)
	account := newTestAccount(t, db)

	pair, err := svc.Issue(account, false, deviceRequest(chromeUA))
	require.NoError(t, err)
	claims, err := svc.Codec().Decode(pair.Access, KindAccess, false)
	require.NoError(t, err)

	otherDevice := deviceRequest("Mozilla/4.0 (Windows NT 10.0) Trident/7.0")
	_, err = svc.VerifyAccess(pair.Access, otherDevice)
	assert.ErrorIs(t, err, ErrUnauthorized)

	var count int64
	require.NoError(t, db.Model(&models.AccountSession{}).
		Where("id = ?", claims.Session).Count(&count).Error)
	assert.EqualValues(t, 0, count, "session must be deleted after a fingerprint mismatch")
}

func TestRefreshRotatesIdentity(t *testing.T) {
	svc, db := newTestService(t)
	account := newTestAccount(t, db)
	r := deviceRequest(chromeUA)

	pair, err := svc.Issue(account, false, r)
	require.NoError(t, err)
	oldClaims, err := svc.Codec().Decode(pair.Access, KindAccess, false)
	require.NoError(t, err)

	rotated, err := svc.Refresh(pair.Access, pair.Refresh, r)
	require.NoError(t, err)

	newClaims, err := svc.Codec().Decode(rotated.Access, KindAccess, false)
	require.NoError(t, err)
	assert.Equal(t, oldClaims.Session, newClaims.Session, "session id must survive refresh")
	assert.NotEqual(t, oldClaims.Identity, newClaims.Identity, "identity must rotate")

	// old access token no longer verifies against the rotated session
	_, err = svc.VerifyAccess(pair.Access, r)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// the new pair works
	_, err = svc.VerifyAccess(rotated.Access, r)
	require.NoError(t, err)
}

func TestRefreshSingleUse(t *testing.T) {
	svc, db := newTestService(t)
	account := newTestAccount(t, db)
	r := deviceRequest(chromeUA)

	pair, err := svc.Issue(account, false, r)
	require.NoError(t, err)

	_, err = svc.Refresh(pair.Access, pair.Refresh, r)
	require.NoError(t, err)

	// replaying the consumed refresh token burns the session
	_, err = svc.Refresh(pair.Access, pair.Refresh, r)
	assert.ErrorIs(t, err, ErrUnauthorized)

	var count int64
	require.NoError(t, db.Model(&models.AccountSession{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestRefreshWithExpiredAccess(t *testing.T) {
	svc, db := newTestService(t)
	account := newTestAccount(t, db)
	r := deviceRequest(chromeUA)

	pair, err := svc.Issue(account, false, r)
	require.NoError(t, err)
	claims, err := svc.Codec().Decode(pair.Access, KindAccess, false)
	require.NoError(t, err)

	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	expiredAccess, err := svc.Codec().Encode(claims)
	require.NoError(t, err)

	rotated, err := svc.Refresh(expiredAccess, pair.Refresh, r)
	require.NoError(t, err)

	_, err = svc.VerifyAccess(rotated.Access, r)
	require.NoError(t, err)
}

func TestRefreshMixedIssuances(t *testing.T) {
	svc, db := newTestService(t)
	r := deviceRequest(chromeUA)

	first, err := svc.Issue(newTestAccount(t, db), false, r)
	require.NoError(t, err)
	second, err := svc.Issue(newTestAccount(t, db), false, r)
	require.NoError(t, err)

	// access and refresh from different issuances must not combine
	_, err = svc.Refresh(first.Access, second.Refresh, r)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefreshRejectsExpiredRefreshToken(t *testing.T) {
	svc, db := newTestService(t)
	account := newTestAccount(t, db)
	r := deviceRequest(chromeUA)

	pair, err := svc.Issue(account, false, r)
	require.NoError(t, err)
	claims, err := svc.Codec().Decode(pair.Refresh, KindRefresh, false)
	require.NoError(t, err)

	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	expiredRefresh, err := svc.Codec().Encode(claims)
	require.NoError(t, err)

	_, err = svc.Refresh(pair.Access, expiredRefresh, r)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestLogout(t *testing.T) {
	svc, db := newTestService(t)
	account := newTestAccount(t, db)
	r := deviceRequest(chromeUA)

	pair, err := svc.Issue(account, false, r)
	require.NoError(t, err)

	session, err := svc.VerifyAccess(pair.Access, r)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(session))

	_, err = svc.VerifyAccess(pair.Access, r)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// idempotent
	require.NoError(t, svc.Logout(session))
}
