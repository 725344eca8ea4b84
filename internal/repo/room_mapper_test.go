package repo

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secret-nick/internal/domain"
	"secret-nick/internal/feature/room"
)

func TestMapper_ModelRoundTrip(t *testing.T) {
	max := uint(10)
	closed := time.Date(2026, 12, 1, 10, 0, 0, 0, time.UTC)
	r1, r2 := uint64(2), uint64(1)
	m := &room.RoomModel{
		ID:               7,
		InvitationCode:   "ABC123",
		Name:             "Office",
		Description:      "Winter party",
		MinUsersLimit:    2,
		MaxUsersLimit:    &max,
		GiftExchangeDate: time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC),
		ClosedOn:         &closed,
		Version:          3,
		Users: []room.UserModel{
			{ID: 1, RoomID: 7, AuthCode: "a", FirstName: "Ann", LastName: "Lee", IsAdmin: true, Wishes: []string{"book"}, GiftRecipientUserID: &r1},
			{ID: 2, RoomID: 7, AuthCode: "b", FirstName: "Bob", LastName: "Ray", Wishes: []string{}, GiftRecipientUserID: &r2},
		},
	}

	dr, err := toDomain(m)
	require.NoError(t, err)
	back := toModel(dr)

	assert.Equal(t, m.ID, back.ID)
	assert.Equal(t, m.Version, back.Version)
	assert.Equal(t, *m.MaxUsersLimit, *back.MaxUsersLimit)
	assert.True(t, m.ClosedOn.Equal(*back.ClosedOn))
	require.Len(t, back.Users, 2)
	assert.Equal(t, []string{"book"}, back.Users[0].Wishes)
	assert.Equal(t, []string{}, back.Users[1].Wishes)
	assert.Equal(t, uint64(2), *back.Users[0].GiftRecipientUserID)
	assert.Equal(t, uint64(7), back.Users[1].RoomID)
	assert.True(t, back.Users[0].IsAdmin)
}

func TestMapper_NewUsersKeepZeroID(t *testing.T) {
	rm, err := domain.NewRoom(domain.RoomConfig{
		ID: 3, Name: "R", GiftExchangeDate: time.Now(),
		Users: []domain.UserConfig{{ID: 1, AuthCode: "x", IsAdmin: true, UserProfile: domain.UserProfile{FirstName: "A", LastName: "B"}}},
	})
	require.NoError(t, err)
	_, err = rm.AddUser(domain.UserConfig{AuthCode: "y", UserProfile: domain.UserProfile{FirstName: "C", LastName: "D"}})
	require.NoError(t, err)

	m := toModel(rm)

	require.Len(t, m.Users, 2)
	assert.Equal(t, uint64(0), m.Users[1].ID)
	assert.Equal(t, uint64(3), m.Users[1].RoomID)
	assert.Nil(t, m.Users[1].GiftRecipientUserID)
}

func TestIsDupKey(t *testing.T) {
	assert.True(t, isDupKey(errors.New("Error 1062: Duplicate entry 'x' for key 'auth_code'")))
	assert.True(t, isDupKey(errors.New(`ERROR: duplicate key value violates unique constraint "idx_room_users_auth_code"`)))
	assert.False(t, isDupKey(errors.New("connection refused")))
}
