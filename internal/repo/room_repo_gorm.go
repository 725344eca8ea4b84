package repo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"gorm.io/gorm"

	"secret-nick/internal/domain"
	"secret-nick/internal/feature/room"
)

// 房间更新时允许写入的列（invitation_code 不可变）。
// 成员资料与身份在加入后不可变，已有成员只同步送礼对象。
var roomUpdateColumns = []string{"name", "description", "min_users_limit", "max_users_limit", "gift_exchange_date", "closed_on", "version"}

// 单条语句最多携带的成员行数
const userBatchSize = 500

type RoomRepo struct{ db *gorm.DB }

func NewRoomRepo(db *gorm.DB) *RoomRepo { return &RoomRepo{db: db} }

var _ domain.RoomRepository = (*RoomRepo)(nil)

// Create 房间与初始成员同一事务写入，成员分批插入
func (r *RoomRepo) Create(ctx context.Context, rm *domain.Room) (domain.RoomID, error) {
	m := toModel(rm)
	m.ID = 0
	users := m.Users
	m.Users = nil

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		return insertUsers(tx, m.ID, users)
	})
	if err != nil {
		if isDupKey(err) {
			return 0, domain.ErrDuplicateCode
		}
		return 0, fmt.Errorf("gorm: create room: %w", err)
	}
	return domain.RoomID(m.ID), nil
}

func (r *RoomRepo) FindByID(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	var m room.RoomModel
	err := r.db.WithContext(ctx).
		Preload("Users", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&m, "id = ?", uint64(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("gorm: find room %d: %w", id, err)
	}
	return toDomain(&m)
}

// RoomIDByUserCode 只查索引，不加载聚合
func (r *RoomRepo) RoomIDByUserCode(ctx context.Context, code domain.AuthCode) (domain.RoomID, error) {
	var u room.UserModel
	err := r.db.WithContext(ctx).Select("room_id").Where("auth_code = ?", string(code)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, domain.ErrRoomNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("gorm: find room by user code: %w", err)
	}
	return domain.RoomID(u.RoomID), nil
}

func (r *RoomRepo) RoomIDByUserID(ctx context.Context, id domain.UserID) (domain.RoomID, error) {
	var u room.UserModel
	err := r.db.WithContext(ctx).Select("room_id").Where("id = ?", uint64(id)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, domain.ErrRoomNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("gorm: find room by user id %d: %w", id, err)
	}
	return domain.RoomID(u.RoomID), nil
}

func (r *RoomRepo) RoomIDByInvitationCode(ctx context.Context, code string) (domain.RoomID, error) {
	var m room.RoomModel
	err := r.db.WithContext(ctx).Select("id").Where("invitation_code = ?", code).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, domain.ErrRoomNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("gorm: find room by invitation code: %w", err)
	}
	return domain.RoomID(m.ID), nil
}

func (r *RoomRepo) FindByUserCode(ctx context.Context, code domain.AuthCode) (*domain.Room, error) {
	id, err := r.RoomIDByUserCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *RoomRepo) FindByUserID(ctx context.Context, uid domain.UserID) (*domain.Room, error) {
	id, err := r.RoomIDByUserID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *RoomRepo) FindByInvitationCode(ctx context.Context, code string) (*domain.Room, error) {
	id, err := r.RoomIDByInvitationCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// Update 单事务内同步房间与成员；version 作为乐观锁。
// 语句数与成员数无关：房间一条、删除一条、送礼对象与新成员按批。
func (r *RoomRepo) Update(ctx context.Context, rm *domain.Room) error {
	m := toModel(rm)
	expected := m.Version
	m.Version = expected + 1
	users := m.Users
	m.Users = nil

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&room.RoomModel{ID: m.ID}).
			Select(roomUpdateColumns).
			Where("version = ?", expected).
			Updates(&m)
		if res.Error != nil {
			return fmt.Errorf("gorm: update room %d: %w", m.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrVersionConflict
		}

		keep := make([]uint64, 0, len(users))
		var fresh, assigned []room.UserModel
		for _, u := range users {
			switch {
			case u.ID == 0:
				fresh = append(fresh, u)
			case u.GiftRecipientUserID != nil:
				keep = append(keep, u.ID)
				assigned = append(assigned, u)
			default:
				keep = append(keep, u.ID)
			}
		}

		// 移除已不在聚合中的成员
		del := tx.Where("room_id = ?", m.ID)
		if len(keep) > 0 {
			del = del.Where("id NOT IN ?", keep)
		}
		if err := del.Delete(&room.UserModel{}).Error; err != nil {
			return fmt.Errorf("gorm: delete room users: %w", err)
		}

		// 送礼对象只会由抽签写入、不会清空，未分配的成员无需更新
		if err := assignRecipients(tx, m.ID, assigned); err != nil {
			return err
		}

		if err := insertUsers(tx, m.ID, fresh); err != nil {
			if isDupKey(err) {
				return domain.ErrDuplicateCode
			}
			return fmt.Errorf("gorm: insert room users: %w", err)
		}
		return nil
	})
}

func insertUsers(tx *gorm.DB, roomID uint64, users []room.UserModel) error {
	if len(users) == 0 {
		return nil
	}
	for i := range users {
		users[i].ID = 0
		users[i].RoomID = roomID
	}
	return tx.CreateInBatches(&users, userBatchSize).Error
}

// assignRecipients 每批一条 UPDATE ... SET gift_recipient_user_id = CASE id WHEN .. THEN .. END
func assignRecipients(tx *gorm.DB, roomID uint64, users []room.UserModel) error {
	// postgres 无法推断 CASE 分支里参数的类型
	then := "?"
	if tx.Dialector.Name() == "postgres" {
		then = "CAST(? AS BIGINT)"
	}
	for batch := range slices.Chunk(users, userBatchSize) {
		var expr strings.Builder
		args := make([]any, 0, 2*len(batch))
		ids := make([]uint64, 0, len(batch))
		expr.WriteString("CASE id")
		for _, u := range batch {
			expr.WriteString(" WHEN ? THEN " + then)
			args = append(args, u.ID, *u.GiftRecipientUserID)
			ids = append(ids, u.ID)
		}
		expr.WriteString(" END")

		err := tx.Model(&room.UserModel{}).
			Where("room_id = ? AND id IN ?", roomID, ids).
			UpdateColumn("gift_recipient_user_id", gorm.Expr(expr.String(), args...)).Error
		if err != nil {
			return fmt.Errorf("gorm: assign recipients in room %d: %w", roomID, err)
		}
	}
	return nil
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
