package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"ovo-video-backend/internal/config"
	"ovo-video-backend/internal/models"
	"ovo-video-backend/internal/repository"
	"ovo-video-backend/pkg/token"
	"ovo-video-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "service-test-secret"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.MemberProfile{},
		&models.RefreshToken{},
		&models.Setting{},
		&models.Captcha{},
	))
	return db
}

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		DefaultSecret:      testSecret,
		BearerTokenExpiry:  168 * time.Hour,
		RefreshTokenExpiry: 720 * time.Hour,
		CaptchaExpiry:      5 * time.Minute,
	}
}

func newAuthService(t *testing.T, db *gorm.DB, profileSync repository.ProfileSync) *AuthService {
	t.Helper()
	if profileSync == nil {
		profileSync = repository.NewMemberProfileRepo(db)
	}
	codec := token.NewCodec(func() string { return testSecret })
	return NewAuthService(
		db,
		repository.NewUserRepo(db),
		repository.NewRefreshTokenRepo(db),
		profileSync,
		codec,
		testAuthConfig(),
	)
}

func seedUser(t *testing.T, db *gorm.DB, username, password string, groupID int) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		GroupID:  groupID,
		UserName: username,
		UserPwd:  hash,
		NickName: username + "-nick",
		Portrait: "https://cdn.example.com/" + username + ".png",
		Status:   models.StatusActive,
		XP:       120,
		RegTime:  time.Now().Unix(),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// failingProfileSync makes the legacy sync step blow up so rollback behavior
// can be observed.
type failingProfileSync struct{}

func (f failingProfileSync) WithTx(*gorm.DB) repository.ProfileSync { return f }
func (f failingProfileSync) Upsert(*models.User, int64, string) error {
	return errors.New("member table unavailable")
}
func (f failingProfileSync) Find(uint) (*models.MemberProfile, error) {
	return nil, repository.ErrUserNotFound
}

func TestLoginHappyPath(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db, nil)
	alice := seedUser(t, db, "alice", "secret1", models.GroupDefault)

	resp, err := svc.Login("alice", "secret1", "phone-1", "203.0.113.9")
	require.NoError(t, err)

	assert.Equal(t, alice.UserID, resp.UserID)
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, "alice-nick", resp.Nickname)
	assert.False(t, resp.IsVIP)
	assert.Equal(t, 120, resp.XP)
	assert.Len(t, resp.RefreshToken, 64)

	// The bearer token asserts alice's identity and lives 7 days.
	codec := token.NewCodec(func() string { return testSecret })
	claims, err := codec.Decode(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, float64(alice.UserID), claims["user_id"])
	assert.Equal(t, "alice", claims["username"])
	assert.Equal(t, float64(604800), claims["exp"].(float64)-claims["iat"].(float64))

	// Both account views carry the same login stamp.
	var primary models.User
	require.NoError(t, db.First(&primary, alice.UserID).Error)
	var member models.MemberProfile
	require.NoError(t, db.First(&member, alice.UserID).Error)
	assert.Equal(t, primary.LoginTime, member.LoginTime)
	assert.Equal(t, "203.0.113.9", primary.LoginIP)
	assert.Equal(t, "203.0.113.9", member.LoginIP)
	assert.Equal(t, 1, member.LoginNum)
}

func TestLoginIncrementsLegacyCounter(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db, nil)
	seedUser(t, db, "alice", "secret1", models.GroupDefault)

	first, err := svc.Login("alice", "secret1", "phone-1", "203.0.113.9")
	require.NoError(t, err)
	second, err := svc.Login("alice", "secret1", "phone-1", "203.0.113.9")
	require.NoError(t, err)

	// Same device: the refresh value rotates, the row does not multiply.
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	var tokens int64
	require.NoError(t, db.Model(&models.RefreshToken{}).Count(&tokens).Error)
	assert.Equal(t, int64(1), tokens)

	var member models.MemberProfile
	require.NoError(t, db.First(&member).Error)
	assert.Equal(t, 2, member.LoginNum)
}

func TestLoginVIPFlag(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db, nil)
	seedUser(t, db, "carol", "secret1", models.GroupVIP)

	resp, err := svc.Login("carol", "secret1", "", "198.51.100.7")
	require.NoError(t, err)
	assert.True(t, resp.IsVIP)
}

func TestLoginLegacyMD5Account(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db, nil)

	// An account imported from the CMS still carries an md5 hash.
	user := &models.User{
		GroupID:  models.GroupDefault,
		UserName: "bob",
		UserPwd:  "e52d98c459819a11775936d8dfbb7929", // md5("secret1")
		Status:   models.StatusActive,
	}
	require.NoError(t, db.Create(user).Error)

	_, err := svc.Login("bob", "secret1", "phone-1", "203.0.113.9")
	assert.NoError(t, err)
}

func TestLoginUnauthorizedIsIndistinguishable(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db, nil)
	seedUser(t, db, "alice", "secret1", models.GroupDefault)

	_, unknownErr := svc.Login("mallory", "secret1", "", "203.0.113.9")
	_, wrongPwdErr := svc.Login("alice", "wrong", "", "203.0.113.9")

	assert.ErrorIs(t, unknownErr, ErrUnauthorized)
	assert.ErrorIs(t, wrongPwdErr, ErrUnauthorized)
	// One identical message for both failure shapes.
	assert.Equal(t, unknownErr.Error(), wrongPwdErr.Error())
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db, nil)

	hash, err := utils.HashPassword("secret1")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		UserName: "dave",
		UserPwd:  hash,
		Status:   models.StatusDisabled,
	}).Error)

	_, err = svc.Login("dave", "secret1", "", "203.0.113.9")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLoginRollsBackAtomically(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db, failingProfileSync{})
	alice := seedUser(t, db, "alice", "secret1", models.GroupDefault)

	_, err := svc.Login("alice", "secret1", "phone-1", "203.0.113.9")
	assert.ErrorIs(t, err, ErrLoginFailed)

	// The refresh token issued earlier in the same attempt must be gone.
	tokenRepo := repository.NewRefreshTokenRepo(db)
	_, err = tokenRepo.FindByUserAndDevice(alice.UserID, "phone-1")
	assert.ErrorIs(t, err, repository.ErrTokenNotFound)

	// And the primary view's login stamp is untouched.
	var primary models.User
	require.NoError(t, db.First(&primary, alice.UserID).Error)
	assert.Zero(t, primary.LoginTime)
}

func TestRefreshRotation(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db, nil)
	alice := seedUser(t, db, "alice", "secret1", models.GroupDefault)

	login, err := svc.Login("alice", "secret1", "phone-1", "203.0.113.9")
	require.NoError(t, err)

	first, err := svc.Refresh(login.RefreshToken, "phone-1")
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, first.UserID)
	assert.NotEqual(t, login.RefreshToken, first.RefreshToken)
	assert.NotEmpty(t, first.Token)

	// The redeemed value is dead; the rotated one works.
	_, err = svc.Refresh(login.RefreshToken, "phone-1")
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)

	second, err := svc.Refresh(first.RefreshToken, "phone-1")
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
}

func TestRefreshUnknownToken(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db, nil)

	_, err := svc.Refresh("0000000000000000000000000000000000000000000000000000000000000000", "")
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)
}

func TestRefreshExpiredToken(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db, nil)
	seedUser(t, db, "alice", "secret1", models.GroupDefault)

	login, err := svc.Login("alice", "secret1", "phone-1", "203.0.113.9")
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.RefreshToken{}).
		Where("refresh_token = ?", login.RefreshToken).
		Update("expire_time", time.Now().Add(-time.Hour)).Error)

	_, err = svc.Refresh(login.RefreshToken, "phone-1")
	assert.ErrorIs(t, err, ErrRefreshTokenExpired)
}

func TestRefreshDeviceMismatch(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db, nil)
	seedUser(t, db, "alice", "secret1", models.GroupDefault)

	login, err := svc.Login("alice", "secret1", "phone-1", "203.0.113.9")
	require.NoError(t, err)

	_, err = svc.Refresh(login.RefreshToken, "tablet-9")
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)

	// Omitting the device id is still allowed.
	_, err = svc.Refresh(login.RefreshToken, "")
	assert.NoError(t, err)
}

func TestRefreshDeviceIndependence(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db, nil)
	seedUser(t, db, "alice", "secret1", models.GroupDefault)

	phone, err := svc.Login("alice", "secret1", "phone-1", "203.0.113.9")
	require.NoError(t, err)
	tablet, err := svc.Login("alice", "secret1", "tablet-1", "203.0.113.9")
	require.NoError(t, err)

	// Redeeming the phone token leaves the tablet session intact.
	_, err = svc.Refresh(phone.RefreshToken, "phone-1")
	require.NoError(t, err)

	_, err = svc.Refresh(tablet.RefreshToken, "tablet-1")
	assert.NoError(t, err)
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db, nil)

	resp, err := svc.Register("newuser", "secret1", "", "new@example.com", "", "", "203.0.113.9")
	require.NoError(t, err)
	assert.NotZero(t, resp.UserID)
	assert.Equal(t, "newuser", resp.Nickname) // nickname defaults to username

	_, err = svc.Login("newuser", "secret1", "", "203.0.113.9")
	assert.NoError(t, err)
}

func TestRegisterValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db, nil)
	seedUser(t, db, "alice", "secret1", models.GroupDefault)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"username too short", "ab", "secret1", ErrBadUsername},
		{"username too long", "abcdefghijklmnopqrstu", "secret1", ErrBadUsername},
		{"username bad chars", "bad name!", "secret1", ErrBadUsername},
		{"password too short", "newuser", "12345", ErrBadPassword},
		{"username taken", "alice", "secret1", ErrUsernameTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(tt.username, tt.password, "", "", "", "", "203.0.113.9")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestProfileMergesViews(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db, nil)
	alice := seedUser(t, db, "alice", "secret1", models.GroupDefault)

	// Before first login the member view does not exist; points default to 0.
	profile, err := svc.Profile(alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, 0, profile.Points)

	_, err = svc.Login("alice", "secret1", "", "203.0.113.9")
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.MemberProfile{}).
		Where("user_id = ?", alice.UserID).
		Update("user_points", 55).Error)

	profile, err = svc.Profile(alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, 55, profile.Points)
	assert.Equal(t, 120, profile.XP)
	assert.Equal(t, "alice", profile.Username)
}
