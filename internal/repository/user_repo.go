package repository

import (
	"errors"

	"ovo-video-backend/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

// FindActiveByUsername finds an active account by username
func (r *UserRepository) FindActiveByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("user_name = ? AND user_status = ?", username, models.StatusActive).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindActiveByID finds an active account by its primary key
func (r *UserRepository) FindActiveByID(userID uint) (*models.User, error) {
	var user models.User
	err := r.db.Where("user_id = ? AND user_status = ?", userID, models.StatusActive).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UsernameExists reports whether any account already uses the username
func (r *UserRepository) UsernameExists(username string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("user_name = ?", username).Count(&count).Error
	return count > 0, err
}

// Create inserts a new account row
func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// StampLogin records login time and IP on the primary view
func (r *UserRepository) StampLogin(userID uint, loginTime int64, loginIP string) error {
	return r.db.Model(&models.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"user_login_time": loginTime,
			"user_login_ip":   loginIP,
		}).Error
}
