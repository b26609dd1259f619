package repository

import (
	"errors"

	"ovo-video-backend/internal/models"
	"ovo-video-backend/pkg/logger"

	"gorm.io/gorm"
)

// SettingRepository reads the site settings row. It is the key provider for
// bearer token signing: the secret is fetched per use, not cached, so a key
// rotated in the table takes effect immediately.
type SettingRepository struct {
	db            *gorm.DB
	defaultSecret string
}

func NewSettingRepo(db *gorm.DB, defaultSecret string) *SettingRepository {
	return &SettingRepository{db: db, defaultSecret: defaultSecret}
}

// Get returns the settings row, or ErrSettingMissing
func (r *SettingRepository) Get() (*models.Setting, error) {
	var setting models.Setting
	err := r.db.Limit(1).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingMissing
		}
		return nil, err
	}
	return &setting, nil
}

// SigningKey returns the shared signing secret. A missing row or empty
// encrypt_key falls back to the configured default, loudly: the default is a
// known value and must not survive into production unnoticed.
func (r *SettingRepository) SigningKey() string {
	setting, err := r.Get()
	if err != nil || setting.EncryptKey == "" {
		logger.Warn().Msg("encrypt_key not configured, signing with the default secret")
		return r.defaultSecret
	}
	return setting.EncryptKey
}
