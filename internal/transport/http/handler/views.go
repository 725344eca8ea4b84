package handler

import (
	"time"

	"secret-nick/internal/domain"
)

// RoomView 房间对外视图
type RoomView struct {
	ID               uint64     `json:"id"`
	InvitationCode   string     `json:"invitationCode,omitempty"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	MinUsersLimit    uint       `json:"minUsersLimit"`
	MaxUsersLimit    *uint      `json:"maxUsersLimit,omitempty"`
	GiftExchangeDate time.Time  `json:"giftExchangeDate"`
	ClosedOn         *time.Time `json:"closedOn,omitempty"`
	IsClosed         bool       `json:"isClosed"`
	UserCount        int        `json:"userCount"`
}

// UserView 成员视图；authCode 只在本人视图中出现
type UserView struct {
	ID                  uint64   `json:"id"`
	AuthCode            string   `json:"authCode,omitempty"`
	FirstName           string   `json:"firstName"`
	LastName            string   `json:"lastName"`
	IsAdmin             bool     `json:"isAdmin"`
	Phone               string   `json:"phone,omitempty"`
	Email               string   `json:"email,omitempty"`
	DeliveryInfo        string   `json:"deliveryInfo,omitempty"`
	Interests           string   `json:"interests,omitempty"`
	WantSurprise        bool     `json:"wantSurprise"`
	Wishes              []string `json:"wishes,omitempty"`
	GiftRecipientUserID *uint64  `json:"giftRecipientUserId,omitempty"`
}

func roomView(r *domain.Room, withInvitation bool) RoomView {
	v := RoomView{
		ID:               uint64(r.ID()),
		Name:             r.Name(),
		Description:      r.Description(),
		MinUsersLimit:    r.MinUsersLimit(),
		MaxUsersLimit:    r.MaxUsersLimit(),
		GiftExchangeDate: r.GiftExchangeDate(),
		ClosedOn:         r.ClosedOn(),
		IsClosed:         r.IsClosed(),
		UserCount:        r.UserCount(),
	}
	if withInvitation {
		v.InvitationCode = r.InvitationCode()
	}
	return v
}

// userView 按调用者可见性裁剪：
// 本人 → 全部字段（含凭证与送礼对象）；本人的送礼对象 → 资料与心愿；其他人 → 仅公开字段
func userView(u, caller domain.User) UserView {
	v := UserView{
		ID:        uint64(u.ID),
		FirstName: u.Profile.FirstName,
		LastName:  u.Profile.LastName,
		IsAdmin:   u.IsAdmin,
	}
	self := u.ID == caller.ID
	recipient := caller.GiftRecipientUserID != nil && *caller.GiftRecipientUserID == u.ID
	if self || recipient {
		v.Phone = u.Profile.Phone
		v.Email = u.Profile.Email
		v.DeliveryInfo = u.Profile.DeliveryInfo
		v.Interests = u.Profile.Interests
		v.WantSurprise = u.Profile.WantSurprise
		v.Wishes = u.Profile.Wishes
	}
	if self {
		v.AuthCode = string(u.AuthCode)
		if u.GiftRecipientUserID != nil {
			id := uint64(*u.GiftRecipientUserID)
			v.GiftRecipientUserID = &id
		}
	}
	return v
}

func userViews(us []domain.User, caller domain.User) []UserView {
	out := make([]UserView, 0, len(us))
	for _, u := range us {
		out = append(out, userView(u, caller))
	}
	return out
}
