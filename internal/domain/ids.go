package domain

import "strconv"

// UserID 房间内成员标识（0 表示尚未持久化）
type UserID uint64

// RoomID 房间标识
type RoomID uint64

// AuthCode 成员凭证：证明身份 / 管理员身份
type AuthCode string

func (id UserID) String() string { return strconv.FormatUint(uint64(id), 10) }
func (id RoomID) String() string { return strconv.FormatUint(uint64(id), 10) }

