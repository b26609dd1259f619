package models

import "time"

// Account group IDs carried over from the CMS the apps were built against.
const (
	GroupDefault = 2
	GroupVIP     = 3
)

// User statuses
const (
	StatusDisabled = 0
	StatusActive   = 1
)

// User is the primary account view: credentials plus the public profile
// fields the clients display.
type User struct {
	UserID    uint       `gorm:"column:user_id;primaryKey" json:"user_id"`
	GroupID   int        `gorm:"column:group_id;default:2" json:"group_id"`
	UserName  string     `gorm:"column:user_name;uniqueIndex;not null;size:50" json:"username"`
	UserPwd   string     `gorm:"column:user_pwd;not null;size:255" json:"-"`
	NickName  string     `gorm:"column:user_nick_name;size:50" json:"nickname"`
	Email     string     `gorm:"column:user_email;size:100" json:"email"`
	Phone     string     `gorm:"column:user_phone;size:30" json:"phone"`
	Portrait  string     `gorm:"column:user_portrait;size:255" json:"avatar"`
	Status    int        `gorm:"column:user_status;default:1" json:"status"`
	XP        int        `gorm:"column:xp;default:0" json:"xp"`
	EndTime   *time.Time `gorm:"column:user_end_time" json:"user_end_time,omitempty"`
	RegTime   int64      `gorm:"column:user_reg_time" json:"reg_time"`
	RegIP     string     `gorm:"column:user_reg_ip;size:45" json:"-"`
	LoginTime int64      `gorm:"column:user_login_time" json:"login_time"`
	LoginIP   string     `gorm:"column:user_login_ip;size:45" json:"-"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "ovo_user"
}

// IsVIP reports whether the account's group grants VIP playback.
func (u *User) IsVIP() bool {
	return u.GroupID == GroupVIP
}

// MemberProfile is the legacy member view kept schema-compatible with the
// pre-existing catalog CMS. It shares user_id with User and is lazily created
// on first login, seeded from the primary view.
type MemberProfile struct {
	UserID    uint   `gorm:"column:user_id;primaryKey" json:"user_id"`
	GroupID   int    `gorm:"column:group_id;default:2" json:"group_id"`
	UserName  string `gorm:"column:user_name;not null;size:50" json:"username"`
	UserPwd   string `gorm:"column:user_pwd;size:255" json:"-"`
	NickName  string `gorm:"column:user_nick_name;size:50" json:"nickname"`
	Email     string `gorm:"column:user_email;size:100" json:"email"`
	Phone     string `gorm:"column:user_phone;size:30" json:"phone"`
	Status    int    `gorm:"column:user_status;default:1" json:"status"`
	Points    int    `gorm:"column:user_points;default:0" json:"user_points"`
	LoginNum  int    `gorm:"column:user_login_num;default:0" json:"login_num"`
	RegTime   int64  `gorm:"column:user_reg_time" json:"reg_time"`
	RegIP     string `gorm:"column:user_reg_ip;size:45" json:"-"`
	LoginTime int64  `gorm:"column:user_login_time" json:"login_time"`
	LoginIP   string `gorm:"column:user_login_ip;size:45" json:"-"`
}

// TableName specifies the table name for MemberProfile model
func (MemberProfile) TableName() string {
	return "mac_user"
}
