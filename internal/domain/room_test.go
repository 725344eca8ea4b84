package domain_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secret-nick/internal/domain"
)

func profile(first string) domain.UserProfile {
	return domain.UserProfile{
		FirstName:    first,
		LastName:     "Doe",
		Phone:        "+380000000000",
		DeliveryInfo: "Some info...",
		Interests:    "Some interests...",
		WantSurprise: true,
		Wishes:       []string{},
	}
}

func member(id domain.UserID, admin bool) domain.UserConfig {
	return domain.UserConfig{
		ID:          id,
		AuthCode:    domain.AuthCode("code-" + id.String()),
		IsAdmin:     admin,
		UserProfile: profile("Jone"),
	}
}

func baseConfig() domain.RoomConfig {
	return domain.RoomConfig{
		ID:               1,
		InvitationCode:   "INVITE",
		Name:             "Test Room",
		Description:      "Test Room",
		GiftExchangeDate: time.Now().UTC().AddDate(0, 0, 1),
	}
}

func mustRoom(t *testing.T, cfg domain.RoomConfig) *domain.Room {
	t.Helper()
	r, err := domain.NewRoom(cfg)
	require.NoError(t, err)
	return r
}

func requireValidation(t *testing.T, err error, kind domain.Kind, field string) {
	t.Helper()
	require.Error(t, err)
	ve, ok := domain.AsValidation(err)
	require.True(t, ok, "应为 ValidationError: %v", err)
	assert.Equal(t, kind, ve.Kind)
	assert.True(t, ve.Has(field), "缺少字段 %s: %v", field, ve.Failures)
}

func seeded() domain.Rand { return rand.New(rand.NewPCG(2024, 12)) }

func uptr(v uint) *uint { return &v }

// --- NewRoom ---

func TestNewRoom_CollectsAllFailures(t *testing.T) {
	cfg := baseConfig()
	cfg.Name = "  "
	cfg.GiftExchangeDate = time.Time{}
	cfg.MinUsersLimit = 5
	cfg.MaxUsersLimit = uptr(3)

	_, err := domain.NewRoom(cfg)

	requireValidation(t, err, domain.KindBadRequest, domain.FieldRoomName)
	ve, _ := domain.AsValidation(err)
	assert.True(t, ve.Has(domain.FieldRoomGiftDate))
	assert.True(t, ve.Has(domain.FieldRoomMaxUsersLimit))
}

func TestNewRoom_RejectsDuplicateUsers(t *testing.T) {
	cfg := baseConfig()
	dup := member(1, false)
	dup.AuthCode = "other"
	cfg.Users = []domain.UserConfig{member(1, true), dup}

	_, err := domain.NewRoom(cfg)

	requireValidation(t, err, domain.KindBadRequest, domain.FieldUserID)
}

func TestNewRoom_RejectsUsersAboveMax(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxUsersLimit = uptr(1)
	cfg.Users = []domain.UserConfig{member(1, true), member(2, false)}

	_, err := domain.NewRoom(cfg)

	requireValidation(t, err, domain.KindBadRequest, domain.FieldRoomMaxUsersLimit)
}

func TestRoom_SnapshotRoundTrip(t *testing.T) {
	cfg := baseConfig()
	cfg.MinUsersLimit = 3
	cfg.MaxUsersLimit = uptr(10)
	cfg.Version = 4
	cfg.Users = []domain.UserConfig{member(1, true), member(2, false), member(3, false)}
	room := mustRoom(t, cfg)
	_, err := room.Draw(seeded(), time.Now())
	require.NoError(t, err)

	restored := mustRoom(t, room.Snapshot())

	assert.Equal(t, room.Snapshot(), restored.Snapshot())
	assert.True(t, restored.IsClosed())
}

func TestRoom_UsersReturnsCopies(t *testing.T) {
	cfg := baseConfig()
	cfg.Users = []domain.UserConfig{member(1, false)}
	room := mustRoom(t, cfg)

	us := room.Users()
	us[0].IsAdmin = true
	us[0].Profile.FirstName = "Changed"

	u, ok := room.User(1)
	require.True(t, ok)
	assert.False(t, u.IsAdmin)
	assert.Equal(t, "Jone", u.Profile.FirstName)
}

// --- Draw ---

func TestDraw_FailsWhenNotEnoughUsers(t *testing.T) {
	cfg := baseConfig()
	cfg.MinUsersLimit = 3
	cfg.Users = []domain.UserConfig{member(1, true)}
	room := mustRoom(t, cfg)

	_, err := room.Draw(seeded(), time.Now())

	requireValidation(t, err, domain.KindBadRequest, domain.FieldRoomMinUsersLimit)
	assert.False(t, room.IsClosed())
}

func TestDraw_FailsWhenRoomAlreadyClosed(t *testing.T) {
	cfg := baseConfig()
	closed := time.Now().UTC().Add(-time.Hour)
	cfg.ClosedOn = &closed
	room := mustRoom(t, cfg)

	_, err := room.Draw(seeded(), time.Now())

	requireValidation(t, err, domain.KindBadRequest, domain.FieldRoomClosedOn)
}

func TestDraw_MinUsersCheckedBeforeClosure(t *testing.T) {
	cfg := baseConfig()
	cfg.MinUsersLimit = 2
	closed := time.Now().UTC()
	cfg.ClosedOn = &closed
	room := mustRoom(t, cfg)

	_, err := room.Draw(seeded(), time.Now())

	requireValidation(t, err, domain.KindBadRequest, domain.FieldRoomMinUsersLimit)
}

func TestDraw_SingleUserWithZeroMinimumIsRejected(t *testing.T) {
	cfg := baseConfig()
	cfg.Users = []domain.UserConfig{member(1, true)}
	room := mustRoom(t, cfg)

	assert.NotPanics(t, func() {
		_, err := room.Draw(seeded(), time.Now())
		requireValidation(t, err, domain.KindBadRequest, domain.FieldRoomMinUsersLimit)
	})
	assert.False(t, room.IsClosed())
}

func TestDraw_RejectsUnpersistedUsers(t *testing.T) {
	cfg := baseConfig()
	cfg.Users = []domain.UserConfig{member(1, true)}
	room := mustRoom(t, cfg)
	fresh := member(0, false)
	fresh.AuthCode = "fresh"
	_, err := room.AddUser(fresh)
	require.NoError(t, err)

	_, err = room.Draw(seeded(), time.Now())

	requireValidation(t, err, domain.KindBadRequest, domain.FieldUserID)
	for _, u := range room.Users() {
		assert.Nil(t, u.GiftRecipientUserID)
	}
}

func TestDraw_AssignsGiftRecipients(t *testing.T) {
	for _, n := range []int{3, 5, 10, 20, 100, 1000, 5000} {
		cfg := baseConfig()
		cfg.MinUsersLimit = 3
		cfg.MaxUsersLimit = uptr(uint(n))
		for id := 1; id <= n; id++ {
			cfg.Users = append(cfg.Users, member(domain.UserID(id), id == 1))
		}
		room := mustRoom(t, cfg)
		before := time.Now()

		got, err := room.Draw(seeded(), before)

		require.NoError(t, err, "n=%d", n)
		require.NotNil(t, got.ClosedOn())
		assert.False(t, got.ClosedOn().After(time.Now()))
		seen := make(map[domain.UserID]bool, n)
		for _, u := range got.Users() {
			require.NotNil(t, u.GiftRecipientUserID, "n=%d user=%d", n, u.ID)
			r := *u.GiftRecipientUserID
			assert.NotEqual(t, u.ID, r)
			assert.False(t, seen[r], "n=%d: recipient %d assigned twice", n, r)
			_, exists := got.User(r)
			assert.True(t, exists)
			seen[r] = true
		}
		assert.Len(t, seen, n)
	}
}

func TestDraw_SecondDrawFailsAndKeepsAssignment(t *testing.T) {
	cfg := baseConfig()
	cfg.Users = []domain.UserConfig{member(1, true), member(2, false), member(3, false)}
	room := mustRoom(t, cfg)
	_, err := room.Draw(seeded(), time.Now())
	require.NoError(t, err)
	first := room.Snapshot()

	_, err = room.Draw(rand.New(rand.NewPCG(9, 9)), time.Now().Add(time.Hour))

	requireValidation(t, err, domain.KindBadRequest, domain.FieldRoomClosedOn)
	assert.Equal(t, first, room.Snapshot())
}

// --- AddUser ---

func TestAddUser_AppendsWithoutRecipient(t *testing.T) {
	cfg := baseConfig()
	cfg.Users = []domain.UserConfig{member(1, true)}
	room := mustRoom(t, cfg)
	in := member(2, false)
	rid := domain.UserID(1)
	in.GiftRecipientUserID = &rid

	got, err := room.AddUser(in)

	require.NoError(t, err)
	assert.Equal(t, 2, got.UserCount())
	u, ok := got.User(2)
	require.True(t, ok)
	assert.Nil(t, u.GiftRecipientUserID)
}

func TestAddUser_FailsWhenFull(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxUsersLimit = uptr(1)
	cfg.Users = []domain.UserConfig{member(1, true)}
	room := mustRoom(t, cfg)

	_, err := room.AddUser(member(2, false))

	requireValidation(t, err, domain.KindBadRequest, domain.FieldRoomMaxUsersLimit)
	assert.Equal(t, 1, room.UserCount())
}

func TestAddUser_FailsWhenClosed(t *testing.T) {
	cfg := baseConfig()
	closed := time.Now()
	cfg.ClosedOn = &closed
	room := mustRoom(t, cfg)

	_, err := room.AddUser(member(2, false))

	requireValidation(t, err, domain.KindBadRequest, domain.FieldRoomClosedOn)
}

func TestAddUser_RejectsDuplicateAuthCode(t *testing.T) {
	cfg := baseConfig()
	cfg.Users = []domain.UserConfig{member(1, true)}
	room := mustRoom(t, cfg)
	in := member(0, false)
	in.AuthCode = "code-1"

	_, err := room.AddUser(in)

	requireValidation(t, err, domain.KindBadRequest, domain.FieldUserAuthCode)
}

func TestAddUser_ValidatesProfile(t *testing.T) {
	room := mustRoom(t, baseConfig())
	in := member(5, false)
	in.FirstName = ""

	_, err := room.AddUser(in)

	requireValidation(t, err, domain.KindBadRequest, domain.FieldUserFirstName)
	assert.Zero(t, room.UserCount())
}

// --- DeleteUser ---

func TestDeleteUser_FailsWhenRoomIsClosed(t *testing.T) {
	cfg := baseConfig()
	closed := time.Now().UTC()
	cfg.ClosedOn = &closed
	cfg.Users = []domain.UserConfig{member(1, false)}
	room := mustRoom(t, cfg)

	_, err := room.DeleteUser(1)

	requireValidation(t, err, domain.KindBadRequest, domain.FieldRoomClosedOn)
	assert.Equal(t, 1, room.UserCount())
}

func TestDeleteUser_FailsWhenUserIdNotFound(t *testing.T) {
	cfg := baseConfig()
	cfg.Users = []domain.UserConfig{member(1, false)}
	room := mustRoom(t, cfg)

	// 重复调用结果一致
	for i := 0; i < 2; i++ {
		_, err := room.DeleteUser(999)
		requireValidation(t, err, domain.KindNotFound, domain.FieldUserID)
	}
	assert.Equal(t, 1, room.UserCount())
}

func TestDeleteUser_FailsWhenUserIsAdmin(t *testing.T) {
	cfg := baseConfig()
	cfg.Users = []domain.UserConfig{member(1, true), member(2, false)}
	room := mustRoom(t, cfg)

	_, err := room.DeleteUser(1)
	requireValidation(t, err, domain.KindForbidden, domain.FieldAdmin)

	got, err := room.DeleteUser(2)
	require.NoError(t, err)
	assert.Equal(t, 1, got.UserCount())
	_, ok := got.User(2)
	assert.False(t, ok)
	_, ok = got.User(1)
	assert.True(t, ok)
}

func TestDeleteUser_RemovesUser(t *testing.T) {
	cfg := baseConfig()
	cfg.Users = []domain.UserConfig{member(1, false)}
	room := mustRoom(t, cfg)

	got, err := room.DeleteUser(1)

	require.NoError(t, err)
	assert.Empty(t, got.Users())
}
