package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"secret-nick/internal/feature/room"
)

// 运营后台列表筛选
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

type RoomFilter struct {
	Status string // "" | open | closed
	Q      string // 按名称模糊搜
	Offset int
	Limit  int
}

// RoomSummary 列表行（不加载成员）
type RoomSummary struct {
	ID               uint64     `json:"id"`
	InvitationCode   string     `json:"invitationCode"`
	Name             string     `json:"name"`
	GiftExchangeDate time.Time  `json:"giftExchangeDate"`
	ClosedOn         *time.Time `json:"closedOn,omitempty"`
	UserCount        int64      `json:"userCount"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type RoomPage struct {
	Total int64         `json:"total"`
	Items []RoomSummary `json:"items"`
}

// List 分页查询房间
func (r *RoomRepo) List(ctx context.Context, f RoomFilter) (RoomPage, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	q := r.db.WithContext(ctx).Model(&room.RoomModel{})
	switch f.Status {
	case StatusOpen:
		q = q.Where("closed_on IS NULL")
	case StatusClosed:
		q = q.Where("closed_on IS NOT NULL")
	}
	if s := strings.TrimSpace(f.Q); s != "" {
		q = q.Where("name LIKE ?", "%"+s+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return RoomPage{}, fmt.Errorf("gorm: count rooms: %w", err)
	}
	var ms []room.RoomModel
	if err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&ms).Error; err != nil {
		return RoomPage{}, fmt.Errorf("gorm: list rooms: %w", err)
	}

	page := RoomPage{Total: total, Items: make([]RoomSummary, 0, len(ms))}
	if len(ms) == 0 {
		return page, nil
	}
	ids := make([]uint64, len(ms))
	for i, m := range ms {
		ids[i] = m.ID
	}
	type countRow struct {
		RoomID uint64
		N      int64
	}
	var rows []countRow
	err := r.db.WithContext(ctx).Model(&room.UserModel{}).
		Select("room_id, COUNT(*) AS n").
		Where("room_id IN ?", ids).
		Group("room_id").
		Scan(&rows).Error
	if err != nil {
		return RoomPage{}, fmt.Errorf("gorm: count room users: %w", err)
	}
	counts := make(map[uint64]int64, len(rows))
	for _, row := range rows {
		counts[row.RoomID] = row.N
	}
	for _, m := range ms {
		page.Items = append(page.Items, RoomSummary{
			ID:               m.ID,
			InvitationCode:   m.InvitationCode,
			Name:             m.Name,
			GiftExchangeDate: m.GiftExchangeDate,
			ClosedOn:         m.ClosedOn,
			UserCount:        counts[m.ID],
			CreatedAt:        m.CreatedAt,
		})
	}
	return page, nil
}
