package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"secret-nick/internal/domain"
)

// RoomRepository domain.RoomRepository 的 testify mock
type RoomRepository struct {
	mock.Mock
}

var _ domain.RoomRepository = (*RoomRepository)(nil)

func (m *RoomRepository) Create(ctx context.Context, room *domain.Room) (domain.RoomID, error) {
	args := m.Called(ctx, room)
	return args.Get(0).(domain.RoomID), args.Error(1)
}

func (m *RoomRepository) FindByID(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	args := m.Called(ctx, id)
	return roomArg(args, 0), args.Error(1)
}

func (m *RoomRepository) FindByUserCode(ctx context.Context, code domain.AuthCode) (*domain.Room, error) {
	args := m.Called(ctx, code)
	return roomArg(args, 0), args.Error(1)
}

func (m *RoomRepository) FindByUserID(ctx context.Context, id domain.UserID) (*domain.Room, error) {
	args := m.Called(ctx, id)
	return roomArg(args, 0), args.Error(1)
}

func (m *RoomRepository) FindByInvitationCode(ctx context.Context, code string) (*domain.Room, error) {
	args := m.Called(ctx, code)
	return roomArg(args, 0), args.Error(1)
}

func (m *RoomRepository) Update(ctx context.Context, room *domain.Room) error {
	return m.Called(ctx, room).Error(0)
}

func roomArg(args mock.Arguments, i int) *domain.Room {
	if v := args.Get(i); v != nil {
		return v.(*domain.Room)
	}
	return nil
}
