package repository

import (
	"errors"
	"fmt"

	"ovo-video-backend/internal/models"

	"gorm.io/gorm"
)

// ProfileSync keeps the legacy CMS member view in step with the primary
// account view. It is an interface so legacy compatibility can be stubbed out
// without touching the login flow.
type ProfileSync interface {
	// WithTx returns a copy bound to the given transaction.
	WithTx(tx *gorm.DB) ProfileSync
	// Upsert bumps the member view's login stats, creating the row seeded
	// from the primary view if it does not exist yet.
	Upsert(user *models.User, loginTime int64, loginIP string) error
	// Find returns the member view row, or ErrUserNotFound.
	Find(userID uint) (*models.MemberProfile, error)
}

type MemberProfileRepository struct {
	db *gorm.DB
}

func NewMemberProfileRepo(db *gorm.DB) *MemberProfileRepository {
	return &MemberProfileRepository{db: db}
}

func (r *MemberProfileRepository) WithTx(tx *gorm.DB) ProfileSync {
	return &MemberProfileRepository{db: tx}
}

func (r *MemberProfileRepository) Upsert(user *models.User, loginTime int64, loginIP string) error {
	var profile models.MemberProfile
	err := r.db.Where("user_id = ?", user.UserID).First(&profile).Error
	switch {
	case err == nil:
		return r.db.Model(&models.MemberProfile{}).
			Where("user_id = ?", user.UserID).
			Updates(map[string]interface{}{
				"user_login_time": loginTime,
				"user_login_ip":   loginIP,
				"user_login_num":  gorm.Expr("user_login_num + 1"),
			}).Error

	case errors.Is(err, gorm.ErrRecordNotFound):
		// Lazily create the member row, seeded from the primary view.
		seeded := models.MemberProfile{
			UserID:    user.UserID,
			GroupID:   user.GroupID,
			UserName:  user.UserName,
			UserPwd:   user.UserPwd,
			NickName:  user.NickName,
			Email:     user.Email,
			Phone:     user.Phone,
			Status:    user.Status,
			Points:    0,
			LoginNum:  1,
			RegTime:   loginTime,
			RegIP:     loginIP,
			LoginTime: loginTime,
			LoginIP:   loginIP,
		}
		if err := r.db.Create(&seeded).Error; err != nil {
			return fmt.Errorf("failed to seed member profile: %w", err)
		}
		return nil

	default:
		return err
	}
}

func (r *MemberProfileRepository) Find(userID uint) (*models.MemberProfile, error) {
	var profile models.MemberProfile
	err := r.db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &profile, nil
}
