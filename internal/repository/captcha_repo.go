package repository

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"ovo-video-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ambiguous glyphs (0/O, 1/l) are left out.
const captchaCharset = "23456789abcdefghjkmnpqrstuvwxyz"
const captchaLength = 4

type CaptchaRepository struct {
	db *gorm.DB
}

func NewCaptchaRepo(db *gorm.DB) *CaptchaRepository {
	return &CaptchaRepository{db: db}
}

// Issue creates a consume-once captcha challenge
func (r *CaptchaRepository) Issue(ttl time.Duration) (*models.Captcha, error) {
	code, err := randomCode(captchaLength)
	if err != nil {
		return nil, err
	}

	captcha := models.Captcha{
		CaptchaID:  uuid.New().String(),
		Code:       code,
		ExpireTime: time.Now().Add(ttl).Unix(),
	}
	if err := r.db.Create(&captcha).Error; err != nil {
		return nil, fmt.Errorf("failed to store captcha: %w", err)
	}
	return &captcha, nil
}

// Verify checks and consumes a captcha. The row is deleted whether the code
// matched or not, so every challenge is single-use.
func (r *CaptchaRepository) Verify(captchaID, code string) error {
	var captcha models.Captcha
	err := r.db.Where("captcha_id = ?", captchaID).First(&captcha).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCaptchaNotFound
		}
		return err
	}

	r.db.Delete(&models.Captcha{}, "captcha_id = ?", captchaID)

	if time.Now().Unix() > captcha.ExpireTime {
		return ErrCaptchaNotFound
	}
	if !strings.EqualFold(strings.TrimSpace(code), captcha.Code) {
		return ErrCaptchaNotFound
	}
	return nil
}

// DeleteExpired removes stale captcha rows and returns how many were deleted
func (r *CaptchaRepository) DeleteExpired() (int64, error) {
	res := r.db.Delete(&models.Captcha{}, "expire_time < ?", time.Now().Unix())
	return res.RowsAffected, res.Error
}

func randomCode(length int) (string, error) {
	var sb strings.Builder
	max := big.NewInt(int64(len(captchaCharset)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate captcha code: %w", err)
		}
		sb.WriteByte(captchaCharset[n.Int64()])
	}
	return sb.String(), nil
}
