package domain

import "context"

// RoomRepository 房间聚合的存储。实现需按房间串行化写入（乐观锁：version）。
type RoomRepository interface {
	// Create 保存新房间及其成员，返回分配的房间 ID
	Create(ctx context.Context, room *Room) (RoomID, error)
	// FindByID 不存在时返回 ErrRoomNotFound
	FindByID(ctx context.Context, id RoomID) (*Room, error)
	// FindByUserCode 按成员凭证查找所在房间
	FindByUserCode(ctx context.Context, code AuthCode) (*Room, error)
	// FindByUserID 按成员 ID 查找所在房间
	FindByUserID(ctx context.Context, id UserID) (*Room, error)
	// FindByInvitationCode 按邀请码查找房间
	FindByInvitationCode(ctx context.Context, code string) (*Room, error)
	// Update 保存聚合当前状态；version 不匹配时返回 ErrVersionConflict
	Update(ctx context.Context, room *Room) error
}
