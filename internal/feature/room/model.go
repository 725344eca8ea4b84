package room

import "time"

type RoomModel struct {
	ID               uint64     `gorm:"primaryKey;autoIncrement"`
	InvitationCode   string     `gorm:"uniqueIndex;size:64;not null"`
	Name             string     `gorm:"size:128;not null"`
	Description      string     `gorm:"size:1024"`
	MinUsersLimit    uint       `gorm:"not null;default:3"`
	MaxUsersLimit    *uint      // NULL 表示不限
	GiftExchangeDate time.Time  `gorm:"not null"`
	ClosedOn         *time.Time `gorm:"index"` // NULL 表示未抽签
	Version          uint       `gorm:"not null;default:0"`

	Users []UserModel `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (RoomModel) TableName() string { return "rooms" }

type UserModel struct {
	ID           uint64   `gorm:"primaryKey;autoIncrement"`
	RoomID       uint64   `gorm:"index;not null"`
	AuthCode     string   `gorm:"uniqueIndex;size:64;not null"`
	FirstName    string   `gorm:"size:64;not null"`
	LastName     string   `gorm:"size:64;not null"`
	Phone        string   `gorm:"size:32"`
	Email        string   `gorm:"size:191"`
	DeliveryInfo string   `gorm:"size:1024"`
	Interests    string   `gorm:"size:1024"`
	WantSurprise bool     `gorm:"not null;default:false"`
	Wishes       []string `gorm:"serializer:json"`
	IsAdmin      bool     `gorm:"not null;default:false"`

	GiftRecipientUserID *uint64 // 抽签后写入

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string { return "room_users" }

// Models 需要自动迁移的全部模型
func Models() []any { return []any{&RoomModel{}, &UserModel{}} }
