package repo

import (
	"secret-nick/internal/domain"
	"secret-nick/internal/feature/room"
)

func toConfig(m *room.RoomModel) domain.RoomConfig {
	cfg := domain.RoomConfig{
		ID:               domain.RoomID(m.ID),
		InvitationCode:   m.InvitationCode,
		Name:             m.Name,
		Description:      m.Description,
		MinUsersLimit:    m.MinUsersLimit,
		MaxUsersLimit:    m.MaxUsersLimit,
		GiftExchangeDate: m.GiftExchangeDate,
		ClosedOn:         m.ClosedOn,
		Version:          m.Version,
		Users:            make([]domain.UserConfig, 0, len(m.Users)),
	}
	for _, u := range m.Users {
		cfg.Users = append(cfg.Users, toUserConfig(u))
	}
	return cfg
}

func toUserConfig(u room.UserModel) domain.UserConfig {
	var recipient *domain.UserID
	if u.GiftRecipientUserID != nil {
		id := domain.UserID(*u.GiftRecipientUserID)
		recipient = &id
	}
	return domain.UserConfig{
		ID:                  domain.UserID(u.ID),
		AuthCode:            domain.AuthCode(u.AuthCode),
		IsAdmin:             u.IsAdmin,
		GiftRecipientUserID: recipient,
		UserProfile: domain.UserProfile{
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			Phone:        u.Phone,
			Email:        u.Email,
			DeliveryInfo: u.DeliveryInfo,
			Interests:    u.Interests,
			WantSurprise: u.WantSurprise,
			Wishes:       u.Wishes,
		},
	}
}

func toDomain(m *room.RoomModel) (*domain.Room, error) {
	return domain.NewRoom(toConfig(m))
}

func toModel(r *domain.Room) room.RoomModel {
	s := r.Snapshot()
	m := room.RoomModel{
		ID:               uint64(s.ID),
		InvitationCode:   s.InvitationCode,
		Name:             s.Name,
		Description:      s.Description,
		MinUsersLimit:    s.MinUsersLimit,
		MaxUsersLimit:    s.MaxUsersLimit,
		GiftExchangeDate: s.GiftExchangeDate,
		ClosedOn:         s.ClosedOn,
		Version:          s.Version,
		Users:            make([]room.UserModel, 0, len(s.Users)),
	}
	for _, u := range s.Users {
		m.Users = append(m.Users, toUserModel(s.ID, u))
	}
	return m
}

func toUserModel(roomID domain.RoomID, u domain.UserConfig) room.UserModel {
	var recipient *uint64
	if u.GiftRecipientUserID != nil {
		id := uint64(*u.GiftRecipientUserID)
		recipient = &id
	}
	wishes := u.Wishes
	if wishes == nil {
		wishes = []string{}
	}
	return room.UserModel{
		ID:                  uint64(u.ID),
		RoomID:              uint64(roomID),
		AuthCode:            string(u.AuthCode),
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		Phone:               u.Phone,
		Email:               u.Email,
		DeliveryInfo:        u.DeliveryInfo,
		Interests:           u.Interests,
		WantSurprise:        u.WantSurprise,
		Wishes:              wishes,
		IsAdmin:             u.IsAdmin,
		GiftRecipientUserID: recipient,
	}
}
