package domain

import "strings"

// UserProfile 成员可编辑的资料
type UserProfile struct {
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	Phone        string   `json:"phone"`
	Email        string   `json:"email,omitempty"`
	DeliveryInfo string   `json:"deliveryInfo"`
	Interests    string   `json:"interests"`
	WantSurprise bool     `json:"wantSurprise"`
	Wishes       []string `json:"wishes"`
}

// UserConfig 构造成员所需的全部属性（新成员 ID 为 0，由存储层分配）
type UserConfig struct {
	ID                  UserID   `json:"id"`
	AuthCode            AuthCode `json:"authCode"`
	IsAdmin             bool     `json:"isAdmin"`
	GiftRecipientUserID *UserID  `json:"giftRecipientUserId,omitempty"`
	UserProfile
}

// User 房间成员。只能经由 Room 修改。
type User struct {
	ID                  UserID
	AuthCode            AuthCode
	IsAdmin             bool
	GiftRecipientUserID *UserID
	Profile             UserProfile
}

func (u User) clone() User {
	c := u
	if u.GiftRecipientUserID != nil {
		id := *u.GiftRecipientUserID
		c.GiftRecipientUserID = &id
	}
	c.Profile.Wishes = append([]string(nil), u.Profile.Wishes...)
	return c
}

func (u User) config() UserConfig {
	c := u.clone()
	return UserConfig{
		ID:                  c.ID,
		AuthCode:            c.AuthCode,
		IsAdmin:             c.IsAdmin,
		GiftRecipientUserID: c.GiftRecipientUserID,
		UserProfile:         c.Profile,
	}
}

func validateUser(cfg UserConfig) []FieldFailure {
	var out []FieldFailure
	if strings.TrimSpace(cfg.FirstName) == "" {
		out = append(out, FieldFailure{Field: FieldUserFirstName, Message: "first name is required"})
	}
	if strings.TrimSpace(cfg.LastName) == "" {
		out = append(out, FieldFailure{Field: FieldUserLastName, Message: "last name is required"})
	}
	return out
}

func newUser(cfg UserConfig) User {
	u := User{
		ID:                  cfg.ID,
		AuthCode:            cfg.AuthCode,
		IsAdmin:             cfg.IsAdmin,
		GiftRecipientUserID: cfg.GiftRecipientUserID,
		Profile:             cfg.UserProfile,
	}
	return u.clone()
}
