package service

import (
	"context"
	"time"

	"ovo-video-backend/internal/models"
	"ovo-video-backend/internal/repository"
	"ovo-video-backend/pkg/logger"
)

// CaptchaVerifier is the gate the auth handlers consult before login and
// registration run. Kept as an interface so deployments that render captchas
// elsewhere can plug in their own check.
type CaptchaVerifier interface {
	Verify(captchaID, code string) error
}

type CaptchaService struct {
	captchaRepo *repository.CaptchaRepository
	ttl         time.Duration
}

func NewCaptchaService(captchaRepo *repository.CaptchaRepository, ttl time.Duration) *CaptchaService {
	return &CaptchaService{
		captchaRepo: captchaRepo,
		ttl:         ttl,
	}
}

// Issue creates a new challenge for a client to render
func (s *CaptchaService) Issue() (*models.Captcha, string, error) {
	captcha, err := s.captchaRepo.Issue(s.ttl)
	if err != nil {
		return nil, "", err
	}
	return captcha, captcha.Code, nil
}

// Verify consumes a challenge; any failure invalidates it
func (s *CaptchaService) Verify(captchaID, code string) error {
	return s.captchaRepo.Verify(captchaID, code)
}

// StartCleanup runs a background loop deleting expired challenge rows.
// Expiry checks at verify time do not depend on it; this only keeps the
// table from growing without bound.
func (s *CaptchaService) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	logger.Info().Msg("captcha cleanup worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("captcha cleanup worker stopped")
			return
		case <-ticker.C:
			deleted, err := s.captchaRepo.DeleteExpired()
			if err != nil {
				logger.Error().Err(err).Msg("captcha cleanup failed")
				continue
			}
			if deleted > 0 {
				logger.Debug().Int64("deleted", deleted).Msg("expired captchas removed")
			}
		}
	}
}
