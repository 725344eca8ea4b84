package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"secret-nick/internal/core/auth"
	"secret-nick/internal/domain"
	"secret-nick/internal/repo"
	httpez "secret-nick/internal/transport/http/ez"
	"secret-nick/pkg/utils"
)

// RoomLister 运营后台房间列表
type RoomLister interface {
	List(ctx context.Context, f repo.RoomFilter) (repo.RoomPage, error)
}

// Operator 运营账号（来自配置）
type Operator struct {
	Username     string
	PasswordHash string
}

// AdminHandler 运营后台（/admin/v1）
type AdminHandler struct {
	rooms  domain.RoomRepository
	lister RoomLister
	jwter  *auth.JWTer
	op     Operator
	log    *zap.Logger
}

func NewAdminHandler(rooms domain.RoomRepository, lister RoomLister, jwter *auth.JWTer, op Operator, l *zap.Logger) *AdminHandler {
	return &AdminHandler{rooms: rooms, lister: lister, jwter: jwter, op: op, log: l}
}

type loginIn struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginOut struct {
	Token string `json:"token"`
}

// MountLogin 登录接口不经过 JWT 校验
func (h *AdminHandler) MountLogin(g *gin.RouterGroup) {
	ez := httpez.New(g, h.log)

	httpez.RegisterAction(ez, httpez.Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			if h.op.Username == "" || h.op.PasswordHash == "" {
				return loginOut{}, httpez.Forbidden("operator login disabled")
			}
			if strings.TrimSpace(in.Username) != h.op.Username || !utils.CheckPassword(in.Password, h.op.PasswordHash) {
				h.log.Warn("operator login failed", zap.String("username", in.Username), zap.String("ip", c.ClientIP()))
				return loginOut{}, httpez.Unauthorized("invalid credentials")
			}
			tok, err := h.jwter.Issue(h.op.Username, "admin")
			if err != nil || tok == "" {
				return loginOut{}, httpez.Internal("issue token failed", err)
			}
			return loginOut{Token: tok}, nil
		},
	})
}

type listQ struct {
	Offset int    `form:"offset,default=0"`
	Limit  int    `form:"limit,default=20"`
	Status string `form:"status" binding:"omitempty,oneof=open closed"`
	Q      string `form:"q"`
}

// AdminRoomView 运营视角的房间详情（不含成员凭证）
type AdminRoomView struct {
	RoomView
	Version uint       `json:"version"`
	Users   []UserView `json:"users"`
}

// MountAdmin 挂载到已鉴权的 /admin/v1
func (h *AdminHandler) MountAdmin(admin *gin.RouterGroup) {
	ez := httpez.New(admin, h.log)

	// --- GET /admin/v1/rooms  房间列表 ---
	httpez.RegisterAction(ez, httpez.Action[listQ, repo.RoomPage]{
		Method: http.MethodGet,
		Path:   "/rooms",
		Binder: httpez.BindQuery,
		Auth:   true,
		Roles:  []string{"admin"},
		Handler: func(c *gin.Context, in *listQ) (repo.RoomPage, error) {
			page, err := h.lister.List(c.Request.Context(), repo.RoomFilter{
				Status: in.Status, Q: in.Q, Offset: in.Offset, Limit: in.Limit,
			})
			if err != nil {
				return repo.RoomPage{}, httpez.Internal("list rooms failed", err)
			}
			return page, nil
		},
	})

	// --- GET /admin/v1/rooms/:id  房间详情 ---
	httpez.RegisterAction(ez, httpez.Action[idIn, AdminRoomView]{
		Method: http.MethodGet,
		Path:   "/rooms/:id",
		Binder: httpez.BindURI,
		Auth:   true,
		Roles:  []string{"admin"},
		Handler: func(c *gin.Context, in *idIn) (AdminRoomView, error) {
			room, err := h.rooms.FindByID(c.Request.Context(), domain.RoomID(in.ID))
			if errors.Is(err, domain.ErrRoomNotFound) {
				return AdminRoomView{}, httpez.NotFound("room not found")
			}
			if err != nil {
				return AdminRoomView{}, httpez.Internal("load room failed", err)
			}
			out := AdminRoomView{
				RoomView: roomView(room, true),
				Version:  room.Version(),
				Users:    make([]UserView, 0, room.UserCount()),
			}
			for _, u := range room.Users() {
				v := userView(u, domain.User{})
				if u.GiftRecipientUserID != nil {
					id := uint64(*u.GiftRecipientUserID)
					v.GiftRecipientUserID = &id
				}
				out.Users = append(out.Users, v)
			}
			return out, nil
		},
	})
}
