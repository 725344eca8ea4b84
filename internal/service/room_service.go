package service

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"secret-nick/internal/domain"
	"secret-nick/pkg/utils"
)

// 边界层字段名（与请求参数一致）
const (
	FieldUserCode    = "userCode"
	FieldRoomCode    = "roomCode"
	FieldID          = "id"
	FieldRoomVersion = "room.Version"
)

const createAttempts = 3

// RoomDefaults 创建房间时未指定人数限制的默认值
type RoomDefaults struct {
	MinUsers uint
	MaxUsers uint // 0 表示不限
}

// RoomService 协调者：解析调用者身份、校验归属与权限、调用聚合、持久化。
// 聚合本身的规则全部在 domain.Room 中。
// 读改写路径只经 repo 加载；views 仅服务只读查询，可为带缓存的实现。
type RoomService struct {
	repo     domain.RoomRepository
	views    domain.RoomRepository
	log      *zap.Logger
	defaults RoomDefaults
	now      func() time.Time
	newRand  func() domain.Rand
	newCode  func() string
	newInvit func() string
}

type Option func(*RoomService)

func WithClock(now func() time.Time) Option      { return func(s *RoomService) { s.now = now } }
func WithRand(f func() domain.Rand) Option       { return func(s *RoomService) { s.newRand = f } }
func WithAuthCodes(f func() string) Option       { return func(s *RoomService) { s.newCode = f } }
func WithInvitationCodes(f func() string) Option { return func(s *RoomService) { s.newInvit = f } }

// WithViews 只读查询（GetRoom / GetUser / ListUsers）使用的仓储
func WithViews(r domain.RoomRepository) Option {
	return func(s *RoomService) {
		if r != nil {
			s.views = r
		}
	}
}

func NewRoomService(repo domain.RoomRepository, l *zap.Logger, d RoomDefaults, opts ...Option) *RoomService {
	if repo == nil {
		panic("RoomRepository cannot be nil for RoomService")
	}
	if l == nil {
		l = zap.NewNop()
	}
	s := &RoomService{
		repo:     repo,
		views:    repo,
		log:      l,
		defaults: d,
		now:      func() time.Time { return time.Now().UTC() },
		newRand:  cryptoSeededRand,
		newCode:  utils.NewAuthCode,
		newInvit: utils.NewInvitationCode,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// 每次抽签独立的 ChaCha8 源，种子来自 crypto/rand
func cryptoSeededRand() domain.Rand {
	var seed [32]byte
	_, _ = crand.Read(seed[:])
	return rand.New(rand.NewChaCha8(seed))
}

type CreateRoomInput struct {
	Name             string
	Description      string
	GiftExchangeDate time.Time
	MinUsersLimit    *uint
	MaxUsersLimit    *uint
	Admin            domain.UserProfile
}

// CreateRoom 创建房间，创建者即管理员
func (s *RoomService) CreateRoom(ctx context.Context, in CreateRoomInput) (*domain.Room, domain.User, error) {
	cfg := domain.RoomConfig{
		Name:             in.Name,
		Description:      in.Description,
		MinUsersLimit:    s.defaults.MinUsers,
		GiftExchangeDate: in.GiftExchangeDate,
	}
	if in.MinUsersLimit != nil {
		cfg.MinUsersLimit = *in.MinUsersLimit
	}
	switch {
	case in.MaxUsersLimit != nil:
		cfg.MaxUsersLimit = in.MaxUsersLimit
	case s.defaults.MaxUsers > 0:
		max := s.defaults.MaxUsers
		cfg.MaxUsersLimit = &max
	}

	var (
		id   domain.RoomID
		code domain.AuthCode
		err  error
	)
	for attempt := 1; attempt <= createAttempts; attempt++ {
		code = domain.AuthCode(s.newCode())
		cfg.InvitationCode = s.newInvit()
		cfg.Users = []domain.UserConfig{{AuthCode: code, IsAdmin: true, UserProfile: in.Admin}}
		room, verr := domain.NewRoom(cfg)
		if verr != nil {
			return nil, domain.User{}, verr
		}
		id, err = s.repo.Create(ctx, room)
		if !errors.Is(err, domain.ErrDuplicateCode) {
			break
		}
		s.log.Warn("room codes collided, retrying", zap.Int("attempt", attempt))
	}
	if err != nil {
		return nil, domain.User{}, fmt.Errorf("create room: %w", err)
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.User{}, fmt.Errorf("reload room %d: %w", id, err)
	}
	admin, _ := room.UserByCode(code)
	s.log.Info("room created", zap.Uint64("room_id", uint64(id)), zap.Uint64("admin_id", uint64(admin.ID)))
	return room, admin, nil
}

// JoinRoom 通过邀请码加入房间
func (s *RoomService) JoinRoom(ctx context.Context, invitationCode string, p domain.UserProfile) (*domain.Room, domain.User, error) {
	room, err := s.repo.FindByInvitationCode(ctx, invitationCode)
	if err != nil {
		return nil, domain.User{}, lookupErr(err, FieldRoomCode, "Room with such roomCode is not found.")
	}
	code := domain.AuthCode(s.newCode())
	if _, err := room.AddUser(domain.UserConfig{AuthCode: code, UserProfile: p}); err != nil {
		return nil, domain.User{}, err
	}
	if err := s.persist(ctx, room); err != nil {
		return nil, domain.User{}, err
	}
	membershipTotal.WithLabelValues("join").Inc()

	room, err = s.repo.FindByUserCode(ctx, code)
	if err != nil {
		return nil, domain.User{}, fmt.Errorf("reload room: %w", err)
	}
	u, _ := room.UserByCode(code)
	s.log.Info("user joined room", zap.Uint64("room_id", uint64(room.ID())), zap.Uint64("user_id", uint64(u.ID)))
	return room, u, nil
}

// GetRoom 返回调用者所在房间及调用者本人
func (s *RoomService) GetRoom(ctx context.Context, userCode domain.AuthCode) (*domain.Room, domain.User, error) {
	return s.member(ctx, s.views, userCode)
}

func (s *RoomService) member(ctx context.Context, repo domain.RoomRepository, userCode domain.AuthCode) (*domain.Room, domain.User, error) {
	room, err := repo.FindByUserCode(ctx, userCode)
	if err != nil {
		return nil, domain.User{}, lookupErr(err, FieldUserCode, "User with such userCode is not found.")
	}
	caller, ok := room.UserByCode(userCode)
	if !ok {
		return nil, domain.User{}, domain.NotFound(FieldUserCode, "User with such userCode is not found.")
	}
	return room, caller, nil
}

// GetUser 查看同房间内的成员
func (s *RoomService) GetUser(ctx context.Context, userCode domain.AuthCode, id domain.UserID) (*domain.Room, domain.User, domain.User, error) {
	room, caller, err := s.GetRoom(ctx, userCode)
	if err != nil {
		return nil, domain.User{}, domain.User{}, err
	}
	target, ok := room.User(id)
	if !ok {
		return nil, domain.User{}, domain.User{}, domain.NotFound(FieldID, "User with such Id is not found.")
	}
	return room, caller, target, nil
}

// Draw 管理员发起抽签
func (s *RoomService) Draw(ctx context.Context, userCode domain.AuthCode) (*domain.Room, error) {
	room, caller, err := s.member(ctx, s.repo, userCode)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin {
		return nil, domain.Forbidden(FieldUserCode, "Only admin can start the draw.")
	}
	if _, err := room.Draw(s.newRand(), s.now()); err != nil {
		drawTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	if err := s.persist(ctx, room); err != nil {
		drawTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	drawTotal.WithLabelValues("ok").Inc()
	drawParticipants.Observe(float64(room.UserCount()))
	s.log.Info("room drawn", zap.Uint64("room_id", uint64(room.ID())), zap.Int("participants", room.UserCount()))

	out, err := s.repo.FindByID(ctx, room.ID())
	if err != nil {
		return nil, fmt.Errorf("reload room %d: %w", room.ID(), err)
	}
	return out, nil
}

// DeleteUser 管理员从房间移除成员
func (s *RoomService) DeleteUser(ctx context.Context, userCode domain.AuthCode, id domain.UserID) (*domain.Room, error) {
	room, caller, err := s.member(ctx, s.repo, userCode)
	if err != nil {
		return nil, err
	}

	targetRoom, err := s.repo.FindByUserID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, FieldID, "User with such Id is not found.")
	}
	if targetRoom.ID() != room.ID() {
		return nil, domain.NotAuthorized(FieldID, "User with userCode and user with Id belongs to different rooms.")
	}
	if caller.ID == id {
		return nil, domain.BadRequest(FieldID, "User cannot delete themselves.")
	}
	if !caller.IsAdmin {
		return nil, domain.Forbidden(FieldUserCode, "Only admin can remove users.")
	}

	if _, err := room.DeleteUser(id); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, room); err != nil {
		return nil, err
	}
	membershipTotal.WithLabelValues("delete").Inc()
	s.log.Info("user removed from room",
		zap.Uint64("room_id", uint64(room.ID())),
		zap.Uint64("user_id", uint64(id)),
		zap.Uint64("by", uint64(caller.ID)),
	)

	out, err := s.repo.FindByUserCode(ctx, userCode)
	if err != nil {
		return nil, fmt.Errorf("reload room: %w", err)
	}
	return out, nil
}

func (s *RoomService) persist(ctx context.Context, room *domain.Room) error {
	err := s.repo.Update(ctx, room)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrVersionConflict):
		s.log.Warn("room version conflict", zap.Uint64("room_id", uint64(room.ID())), zap.Uint("version", room.Version()))
		return domain.BadRequest(FieldRoomVersion, "Room was modified concurrently, please retry.")
	case errors.Is(err, domain.ErrDuplicateCode):
		return domain.BadRequest(domain.FieldUserAuthCode, "Generated code collided, please retry.")
	}
	return fmt.Errorf("update room %d: %w", room.ID(), err)
}

func lookupErr(err error, field, msg string) error {
	if errors.Is(err, domain.ErrRoomNotFound) {
		return domain.NotFound(field, msg)
	}
	return fmt.Errorf("find room: %w", err)
}

// ListUsers 调用者所在房间的全部成员
func (s *RoomService) ListUsers(ctx context.Context, userCode domain.AuthCode) ([]domain.User, domain.User, error) {
	room, caller, err := s.GetRoom(ctx, userCode)
	if err != nil {
		return nil, domain.User{}, err
	}
	return room.Users(), caller, nil
}
