package repository

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"ovo-video-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// opaqueValueBytes sizes the refresh credential. 32 random bytes, hex encoded,
// so the wire shape stays a 64-character hex string.
const opaqueValueBytes = 32

type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepo(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *RefreshTokenRepository) WithTx(tx *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: tx}
}

func generateOpaqueValue() (string, error) {
	buf := make([]byte, opaqueValueBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Issue writes a fresh opaque refresh credential for (userID, deviceID).
// The upsert rides the unique (user_id, device_id) index, so concurrent
// issuances for the same pair cannot produce duplicate rows.
func (r *RefreshTokenRepository) Issue(userID uint, deviceID string, lifetime time.Duration) (*models.RefreshToken, error) {
	value, err := generateOpaqueValue()
	if err != nil {
		return nil, err
	}

	record := models.RefreshToken{
		UserID:       userID,
		DeviceID:     deviceID,
		RefreshToken: value,
		ExpireTime:   time.Now().Add(lifetime),
	}

	err = r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "device_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"refresh_token", "expire_time", "update_time"}),
	}).Create(&record).Error
	if err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &record, nil
}

// FindByValue looks up a refresh token row by its opaque value
func (r *RefreshTokenRepository) FindByValue(value string) (*models.RefreshToken, error) {
	var record models.RefreshToken
	err := r.db.Where("refresh_token = ?", value).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &record, nil
}

// Rotate replaces the stored opaque value with a fresh one, conditional on the
// presented value still being current. Of two concurrent redemptions of the
// same value exactly one wins; the other gets ErrTokenNotFound.
func (r *RefreshTokenRepository) Rotate(id uint, currentValue string, lifetime time.Duration) (*models.RefreshToken, error) {
	newValue, err := generateOpaqueValue()
	if err != nil {
		return nil, err
	}

	expireTime := time.Now().Add(lifetime)
	res := r.db.Model(&models.RefreshToken{}).
		Where("id = ? AND refresh_token = ?", id, currentValue).
		Updates(map[string]interface{}{
			"refresh_token": newValue,
			"expire_time":   expireTime,
			"update_time":   time.Now(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrTokenNotFound
	}

	var record models.RefreshToken
	if err := r.db.First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByUserAndDevice returns the live row for a (user, device) pair
func (r *RefreshTokenRepository) FindByUserAndDevice(userID uint, deviceID string) (*models.RefreshToken, error) {
	var record models.RefreshToken
	err := r.db.Where("user_id = ? AND device_id = ?", userID, deviceID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &record, nil
}
