package models

// Setting is the single site-settings row. Only encrypt_key matters to this
// subsystem; it is the shared secret bearer tokens are signed with.
type Setting struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	EncryptKey string `gorm:"column:encrypt_key;size:255" json:"-"`
}

// TableName specifies the table name for Setting model
func (Setting) TableName() string {
	return "ovo_setting"
}
