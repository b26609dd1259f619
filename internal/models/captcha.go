package models

// Captcha is a consume-once challenge row. Rendering the challenge as an
// image is the apps' concern; the backend only stores and checks the code.
type Captcha struct {
	CaptchaID  string `gorm:"column:captcha_id;primaryKey;size:36" json:"captcha_id"`
	Code       string `gorm:"column:captcha_code;not null;size:8" json:"-"`
	ExpireTime int64  `gorm:"column:expire_time;not null" json:"expire_time"`
}

// TableName specifies the table name for Captcha model
func (Captcha) TableName() string {
	return "ovo_captcha"
}
