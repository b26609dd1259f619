package service

import (
	"fmt"
	"regexp"
	"time"

	"ovo-video-backend/internal/config"
	"ovo-video-backend/internal/models"
	"ovo-video-backend/internal/repository"
	"ovo-video-backend/pkg/logger"
	"ovo-video-backend/pkg/token"
	"ovo-video-backend/pkg/utils"

	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^\w{3,20}$`)

type AuthService struct {
	db          *gorm.DB
	userRepo    *repository.UserRepository
	tokenRepo   *repository.RefreshTokenRepository
	profileSync repository.ProfileSync
	codec       *token.Codec
	cfg         *config.AuthConfig
}

func NewAuthService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	tokenRepo *repository.RefreshTokenRepository,
	profileSync repository.ProfileSync,
	codec *token.Codec,
	cfg *config.AuthConfig,
) *AuthService {
	return &AuthService{
		db:          db,
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		profileSync: profileSync,
		codec:       codec,
		cfg:         cfg,
	}
}

// LoginResponse is the shape both login and refresh return to clients
type LoginResponse struct {
	UserID       uint       `json:"user_id"`
	Username     string     `json:"username"`
	Nickname     string     `json:"nickname"`
	Avatar       string     `json:"avatar"`
	Token        string     `json:"token"`
	RefreshToken string     `json:"refresh_token"`
	ExpireTime   int64      `json:"expire_time"`
	IsVIP        bool       `json:"isvip"`
	XP           int        `json:"xp"`
	UserEndTime  *time.Time `json:"user_end_time,omitempty"`
}

// RegisterResponse returns the public profile fields of a new account
type RegisterResponse struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

// ProfileResponse merges the primary view with the legacy member view
type ProfileResponse struct {
	UserID      uint       `json:"user_id"`
	Username    string     `json:"username"`
	Nickname    string     `json:"nickname"`
	Avatar      string     `json:"avatar"`
	Email       string     `json:"email"`
	RegTime     int64      `json:"create_time"`
	Points      int        `json:"user_points"`
	GroupID     int        `json:"group_id"`
	IsVIP       bool       `json:"isvip"`
	XP          int        `json:"xp"`
	UserEndTime *time.Time `json:"user_end_time,omitempty"`
}

// Login authenticates a user and issues a bearer + refresh token pair.
// The captcha gate must already have passed; this flow does not re-check it.
//
// All writes of one attempt (refresh token row, primary login stamp, legacy
// member sync) commit or roll back as a single transaction, so a half-issued
// session is never observable.
func (s *AuthService) Login(username, password, deviceID, clientIP string) (*LoginResponse, error) {
	user, err := s.userRepo.FindActiveByUsername(username)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if !utils.ComparePassword(user.UserPwd, password) {
		return nil, ErrUnauthorized
	}

	now := time.Now()
	var bearer, refreshValue string

	err = s.db.Transaction(func(tx *gorm.DB) error {
		bearer, err = s.codec.Encode(map[string]interface{}{
			"user_id":  user.UserID,
			"username": user.UserName,
		}, s.cfg.BearerTokenExpiry)
		if err != nil {
			return fmt.Errorf("failed to sign bearer token: %w", err)
		}

		record, err := s.tokenRepo.WithTx(tx).Issue(user.UserID, deviceID, s.cfg.RefreshTokenExpiry)
		if err != nil {
			return err
		}
		refreshValue = record.RefreshToken

		if err := s.userRepo.WithTx(tx).StampLogin(user.UserID, now.Unix(), clientIP); err != nil {
			return fmt.Errorf("failed to update login stats: %w", err)
		}

		return s.profileSync.WithTx(tx).Upsert(user, now.Unix(), clientIP)
	})
	if err != nil {
		logger.Error().Err(err).Str("username", username).Msg("login transaction rolled back")
		return nil, ErrLoginFailed
	}

	logger.Info().Uint("user_id", user.UserID).Str("device_id", deviceID).Msg("login succeeded")

	return &LoginResponse{
		UserID:       user.UserID,
		Username:     user.UserName,
		Nickname:     user.NickName,
		Avatar:       user.Portrait,
		Token:        bearer,
		RefreshToken: refreshValue,
		ExpireTime:   now.Add(s.cfg.BearerTokenExpiry).Unix(),
		IsVIP:        user.IsVIP(),
		XP:           user.XP,
		UserEndTime:  user.EndTime,
	}, nil
}

// Refresh exchanges a valid refresh token for a new bearer + refresh pair.
// The presented value is rotated in the same transaction; it cannot be
// redeemed a second time.
func (s *AuthService) Refresh(refreshValue, deviceID string) (*LoginResponse, error) {
	record, err := s.tokenRepo.FindByValue(refreshValue)
	if err != nil {
		return nil, ErrRefreshTokenInvalid
	}
	if time.Now().After(record.ExpireTime) {
		return nil, ErrRefreshTokenExpired
	}
	// Defense in depth: when the client reports a device id it must match the
	// one the token was issued to.
	if deviceID != "" && record.DeviceID != deviceID {
		return nil, ErrRefreshTokenInvalid
	}

	user, err := s.userRepo.FindActiveByID(record.UserID)
	if err != nil {
		return nil, ErrRefreshTokenInvalid
	}

	now := time.Now()
	var bearer, newValue string

	err = s.db.Transaction(func(tx *gorm.DB) error {
		rotated, err := s.tokenRepo.WithTx(tx).Rotate(record.ID, refreshValue, s.cfg.RefreshTokenExpiry)
		if err != nil {
			return err
		}
		newValue = rotated.RefreshToken

		bearer, err = s.codec.Encode(map[string]interface{}{
			"user_id":  user.UserID,
			"username": user.UserName,
		}, s.cfg.BearerTokenExpiry)
		if err != nil {
			return fmt.Errorf("failed to sign bearer token: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Warn().Err(err).Uint("user_id", record.UserID).Msg("refresh rejected")
		return nil, ErrRefreshTokenInvalid
	}

	return &LoginResponse{
		UserID:       user.UserID,
		Username:     user.UserName,
		Nickname:     user.NickName,
		Avatar:       user.Portrait,
		Token:        bearer,
		RefreshToken: newValue,
		ExpireTime:   now.Add(s.cfg.BearerTokenExpiry).Unix(),
		IsVIP:        user.IsVIP(),
		XP:           user.XP,
		UserEndTime:  user.EndTime,
	}, nil
}

// Register creates a new account in the primary view
func (s *AuthService) Register(username, password, nickname, email, phone, avatar, clientIP string) (*RegisterResponse, error) {
	if !usernamePattern.MatchString(username) {
		return nil, ErrBadUsername
	}
	if len(password) < 6 {
		return nil, ErrBadPassword
	}

	exists, err := s.userRepo.UsernameExists(username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if nickname == "" {
		nickname = username
	}

	user := &models.User{
		GroupID:  models.GroupDefault,
		UserName: username,
		UserPwd:  hash,
		NickName: nickname,
		Email:    email,
		Phone:    phone,
		Portrait: avatar,
		Status:   models.StatusActive,
		RegTime:  time.Now().Unix(),
		RegIP:    clientIP,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info().Uint("user_id", user.UserID).Str("username", username).Msg("user registered")

	return &RegisterResponse{
		UserID:   user.UserID,
		Username: user.UserName,
		Nickname: user.NickName,
		Avatar:   user.Portrait,
	}, nil
}

// Profile returns the merged primary + legacy member view for an account
func (s *AuthService) Profile(userID uint) (*ProfileResponse, error) {
	user, err := s.userRepo.FindActiveByID(userID)
	if err != nil {
		return nil, err
	}

	resp := &ProfileResponse{
		UserID:      user.UserID,
		Username:    user.UserName,
		Nickname:    user.NickName,
		Avatar:      user.Portrait,
		Email:       user.Email,
		RegTime:     user.RegTime,
		GroupID:     user.GroupID,
		IsVIP:       user.IsVIP(),
		XP:          user.XP,
		UserEndTime: user.EndTime,
	}

	// The member view is created lazily on first login, so it may not exist.
	if profile, err := s.profileSync.Find(userID); err == nil {
		resp.Points = profile.Points
	}

	return resp, nil
}
