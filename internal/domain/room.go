package domain

import (
	"strings"
	"time"
)

// RoomConfig 房间的全部属性；既用于新建，也用于从存储恢复
type RoomConfig struct {
	ID               RoomID       `json:"id"`
	InvitationCode   string       `json:"invitationCode"`
	Name             string       `json:"name"`
	Description      string       `json:"description"`
	MinUsersLimit    uint         `json:"minUsersLimit"`
	MaxUsersLimit    *uint        `json:"maxUsersLimit,omitempty"`
	GiftExchangeDate time.Time    `json:"giftExchangeDate"`
	ClosedOn         *time.Time   `json:"closedOn,omitempty"`
	Version          uint         `json:"version"`
	Users            []UserConfig `json:"users"`
}

// Room 聚合根：拥有成员集合，负责抽签与生命周期（open → closed）。
// 所有前置校验都在修改之前完成，失败时房间保持不变。
type Room struct {
	id               RoomID
	invitationCode   string
	name             string
	description      string
	minUsersLimit    uint
	maxUsersLimit    *uint
	giftExchangeDate time.Time
	closedOn         *time.Time
	version          uint
	users            []User
}

// NewRoom 校验配置并构造房间，所有字段问题一次性返回（BadRequest）
func NewRoom(cfg RoomConfig) (*Room, error) {
	var failures []FieldFailure
	if strings.TrimSpace(cfg.Name) == "" {
		failures = append(failures, FieldFailure{Field: FieldRoomName, Message: "room name is required"})
	}
	if cfg.GiftExchangeDate.IsZero() {
		failures = append(failures, FieldFailure{Field: FieldRoomGiftDate, Message: "gift exchange date is required"})
	}
	if cfg.MaxUsersLimit != nil {
		switch {
		case *cfg.MaxUsersLimit < cfg.MinUsersLimit:
			failures = append(failures, FieldFailure{Field: FieldRoomMaxUsersLimit, Message: "max users limit is below min users limit"})
		case uint(len(cfg.Users)) > *cfg.MaxUsersLimit:
			failures = append(failures, FieldFailure{Field: FieldRoomMaxUsersLimit, Message: "room has more users than its max users limit"})
		}
	}

	r := &Room{
		id:               cfg.ID,
		invitationCode:   cfg.InvitationCode,
		name:             cfg.Name,
		description:      cfg.Description,
		minUsersLimit:    cfg.MinUsersLimit,
		maxUsersLimit:    copyUint(cfg.MaxUsersLimit),
		giftExchangeDate: cfg.GiftExchangeDate,
		closedOn:         copyTime(cfg.ClosedOn),
		version:          cfg.Version,
		users:            make([]User, 0, len(cfg.Users)),
	}
	for _, uc := range cfg.Users {
		if fs := validateUser(uc); len(fs) > 0 {
			failures = append(failures, fs...)
			continue
		}
		if f, dup := r.duplicateOf(uc); dup {
			failures = append(failures, f)
			continue
		}
		r.users = append(r.users, newUser(uc))
	}
	if len(failures) > 0 {
		return nil, &ValidationError{Kind: KindBadRequest, Failures: failures}
	}
	return r, nil
}

func (r *Room) ID() RoomID                  { return r.id }
func (r *Room) InvitationCode() string      { return r.invitationCode }
func (r *Room) Name() string                { return r.name }
func (r *Room) Description() string         { return r.description }
func (r *Room) MinUsersLimit() uint         { return r.minUsersLimit }
func (r *Room) MaxUsersLimit() *uint        { return copyUint(r.maxUsersLimit) }
func (r *Room) GiftExchangeDate() time.Time { return r.giftExchangeDate }
func (r *Room) ClosedOn() *time.Time        { return copyTime(r.closedOn) }
func (r *Room) Version() uint               { return r.version }
func (r *Room) IsClosed() bool              { return r.closedOn != nil }
func (r *Room) UserCount() int              { return len(r.users) }

// Users 成员副本，调用方修改不影响聚合
func (r *Room) Users() []User {
	out := make([]User, len(r.users))
	for i, u := range r.users {
		out[i] = u.clone()
	}
	return out
}

func (r *Room) User(id UserID) (User, bool) {
	if i := r.indexOf(id); i >= 0 {
		return r.users[i].clone(), true
	}
	return User{}, false
}

func (r *Room) UserByCode(code AuthCode) (User, bool) {
	for _, u := range r.users {
		if u.AuthCode == code {
			return u.clone(), true
		}
	}
	return User{}, false
}

// Snapshot 导出完整配置，NewRoom(Snapshot()) 可还原同一房间
func (r *Room) Snapshot() RoomConfig {
	users := make([]UserConfig, len(r.users))
	for i, u := range r.users {
		users[i] = u.config()
	}
	return RoomConfig{
		ID:               r.id,
		InvitationCode:   r.invitationCode,
		Name:             r.name,
		Description:      r.description,
		MinUsersLimit:    r.minUsersLimit,
		MaxUsersLimit:    copyUint(r.maxUsersLimit),
		GiftExchangeDate: r.giftExchangeDate,
		ClosedOn:         copyTime(r.closedOn),
		Version:          r.version,
		Users:            users,
	}
}

// Draw 抽签：为每个成员分配送礼对象并关闭房间。这是唯一修改 GiftRecipientUserID 的操作。
func (r *Room) Draw(rng Rand, now time.Time) (*Room, error) {
	if uint(len(r.users)) < r.minUsersLimit {
		return nil, BadRequest(FieldRoomMinUsersLimit, "not enough users in the room to draw")
	}
	if r.closedOn != nil {
		return nil, BadRequest(FieldRoomClosedOn, "room is already closed")
	}
	if len(r.users) < 2 {
		return nil, BadRequest(FieldRoomMinUsersLimit, "at least two users are required to draw")
	}

	ids := make([]UserID, len(r.users))
	for i, u := range r.users {
		if u.ID == 0 {
			return nil, BadRequest(FieldUserID, "all users must be persisted before the draw")
		}
		ids[i] = u.ID
	}
	assignment := Derange(ids, rng)
	for i := range r.users {
		recipient := assignment[r.users[i].ID]
		r.users[i].GiftRecipientUserID = &recipient
	}
	closed := now
	r.closedOn = &closed
	return r, nil
}

// AddUser 在关闭前加入新成员
func (r *Room) AddUser(cfg UserConfig) (*Room, error) {
	if r.closedOn != nil {
		return nil, BadRequest(FieldRoomClosedOn, "room is already closed")
	}
	if r.maxUsersLimit != nil && uint(len(r.users)) >= *r.maxUsersLimit {
		return nil, BadRequest(FieldRoomMaxUsersLimit, "room has reached its max users limit")
	}
	if fs := validateUser(cfg); len(fs) > 0 {
		return nil, &ValidationError{Kind: KindBadRequest, Failures: fs}
	}
	if f, dup := r.duplicateOf(cfg); dup {
		return nil, &ValidationError{Kind: KindBadRequest, Failures: []FieldFailure{f}}
	}
	u := newUser(cfg)
	u.GiftRecipientUserID = nil
	r.users = append(r.users, u)
	return r, nil
}

// DeleteUser 在关闭前移除非管理员成员
func (r *Room) DeleteUser(id UserID) (*Room, error) {
	if r.closedOn != nil {
		return nil, BadRequest(FieldRoomClosedOn, "room is already closed")
	}
	i := r.indexOf(id)
	if i < 0 {
		return nil, NotFound(FieldUserID, "user with such id is not found in the room")
	}
	if r.users[i].IsAdmin {
		return nil, Forbidden(FieldAdmin, "admin cannot be removed from the room")
	}
	r.users = append(r.users[:i], r.users[i+1:]...)
	return r, nil
}

func (r *Room) indexOf(id UserID) int {
	for i, u := range r.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

// duplicateOf 检查非零 ID 与非空 AuthCode 的唯一性
func (r *Room) duplicateOf(cfg UserConfig) (FieldFailure, bool) {
	for _, u := range r.users {
		if cfg.ID != 0 && u.ID == cfg.ID {
			return FieldFailure{Field: FieldUserID, Message: "user id already exists in the room"}, true
		}
		if cfg.AuthCode != "" && u.AuthCode == cfg.AuthCode {
			return FieldFailure{Field: FieldUserAuthCode, Message: "auth code already exists in the room"}, true
		}
	}
	return FieldFailure{}, false
}

func copyUint(p *uint) *uint {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
