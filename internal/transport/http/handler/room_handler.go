package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"secret-nick/internal/domain"
	"secret-nick/internal/service"
	httpez "secret-nick/internal/transport/http/ez"
	mdw "secret-nick/internal/transport/http/middleware"
)

// RoomHandler 成员侧接口（/api/v1），调用者以 ?userCode= 标识
type RoomHandler struct {
	svc *service.RoomService
	log *zap.Logger
}

func NewRoomHandler(svc *service.RoomService, l *zap.Logger) *RoomHandler {
	return &RoomHandler{svc: svc, log: l}
}

func (h *RoomHandler) Priority() int { return 10 }

type profileIn struct {
	FirstName    string   `json:"firstName"    binding:"required,max=64"`
	LastName     string   `json:"lastName"     binding:"required,max=64"`
	Phone        string   `json:"phone"        binding:"required,max=32"`
	Email        string   `json:"email"        binding:"omitempty,email"`
	DeliveryInfo string   `json:"deliveryInfo" binding:"required,max=512"`
	Interests    string   `json:"interests"    binding:"max=512"`
	WantSurprise bool     `json:"wantSurprise"`
	Wishes       []string `json:"wishes"       binding:"max=20,dive,max=256"`
}

func (p profileIn) toDomain() domain.UserProfile {
	return domain.UserProfile{
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Phone:        p.Phone,
		Email:        p.Email,
		DeliveryInfo: p.DeliveryInfo,
		Interests:    p.Interests,
		WantSurprise: p.WantSurprise,
		Wishes:       p.Wishes,
	}
}

type createRoomIn struct {
	Name             string    `json:"name"             binding:"required,max=128"`
	Description      string    `json:"description"      binding:"max=1024"`
	GiftExchangeDate time.Time `json:"giftExchangeDate" binding:"required"`
	MinUsersLimit    *uint     `json:"minUsersLimit"`
	MaxUsersLimit    *uint     `json:"maxUsersLimit"`
	Admin            profileIn `json:"admin"`
}

type codeIn struct {
	Code string `uri:"code" binding:"required"`
}

type idIn struct {
	ID uint64 `uri:"id" binding:"required"`
}

// RoomWithUser 创建/加入后的返回：房间 + 本人（含凭证）
type RoomWithUser struct {
	Room RoomView `json:"room"`
	User UserView `json:"user"`
}

// RoomWithUsers 房间 + 成员列表
type RoomWithUsers struct {
	Room  RoomView   `json:"room"`
	Users []UserView `json:"users"`
}

// MountAPI 挂载到 /api/v1
func (h *RoomHandler) MountAPI(api *gin.RouterGroup) {
	public := httpez.New(api, h.log)

	// --- POST /rooms  创建房间，创建者成为管理员 ---
	httpez.RegisterAction(public, httpez.Action[createRoomIn, RoomWithUser]{
		Method: http.MethodPost,
		Path:   "/rooms",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *createRoomIn) (RoomWithUser, error) {
			room, admin, err := h.svc.CreateRoom(c.Request.Context(), service.CreateRoomInput{
				Name:             in.Name,
				Description:      in.Description,
				GiftExchangeDate: in.GiftExchangeDate,
				MinUsersLimit:    in.MinUsersLimit,
				MaxUsersLimit:    in.MaxUsersLimit,
				Admin:            in.Admin.toDomain(),
			})
			if err != nil {
				return RoomWithUser{}, err
			}
			mdw.Annotate(c, room.ID(), admin.ID)
			return RoomWithUser{Room: roomView(room, true), User: userView(admin, admin)}, nil
		},
	})

	// --- POST /rooms/:code/users  通过邀请码加入 ---
	httpez.RegisterAction(public, httpez.Action[codeIn, RoomWithUser]{
		Method: http.MethodPost,
		Path:   "/rooms/:code/users",
		Binder: httpez.BindURI,
		Handler: func(c *gin.Context, in *codeIn) (RoomWithUser, error) {
			var p profileIn
			if err := c.ShouldBindJSON(&p); err != nil {
				return RoomWithUser{}, httpez.BadRequest(err.Error())
			}
			room, u, err := h.svc.JoinRoom(c.Request.Context(), in.Code, p.toDomain())
			if err != nil {
				return RoomWithUser{}, err
			}
			mdw.Annotate(c, room.ID(), u.ID)
			return RoomWithUser{Room: roomView(room, false), User: userView(u, u)}, nil
		},
	})

	// 以下接口需要 ?userCode=
	member := api.Group("")
	member.Use(mdw.UserCode())
	ez := httpez.New(member, h.log)

	// --- GET /rooms  调用者所在房间 ---
	httpez.RegisterAction(ez, httpez.Action[struct{}, RoomView]{
		Method: http.MethodGet,
		Path:   "/rooms",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (RoomView, error) {
			room, caller, err := h.svc.GetRoom(c.Request.Context(), mdw.UserCodeOf(c))
			if err != nil {
				return RoomView{}, err
			}
			mdw.Annotate(c, room.ID(), caller.ID)
			return roomView(room, caller.IsAdmin), nil
		},
	})

	// --- POST /rooms/draw  管理员抽签 ---
	httpez.RegisterAction(ez, httpez.Action[struct{}, RoomWithUsers]{
		Method: http.MethodPost,
		Path:   "/rooms/draw",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (RoomWithUsers, error) {
			code := mdw.UserCodeOf(c)
			room, err := h.svc.Draw(c.Request.Context(), code)
			if err != nil {
				return RoomWithUsers{}, err
			}
			caller, _ := room.UserByCode(code)
			mdw.Annotate(c, room.ID(), caller.ID)
			return RoomWithUsers{Room: roomView(room, true), Users: userViews(room.Users(), caller)}, nil
		},
	})

	// --- GET /users  房间成员 ---
	httpez.RegisterAction(ez, httpez.Action[struct{}, []UserView]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]UserView, error) {
			users, caller, err := h.svc.ListUsers(c.Request.Context(), mdw.UserCodeOf(c))
			if err != nil {
				return nil, err
			}
			return userViews(users, caller), nil
		},
	})

	// --- GET /users/:id ---
	httpez.RegisterAction(ez, httpez.Action[idIn, UserView]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: httpez.BindURI,
		Handler: func(c *gin.Context, in *idIn) (UserView, error) {
			room, caller, target, err := h.svc.GetUser(c.Request.Context(), mdw.UserCodeOf(c), domain.UserID(in.ID))
			if err != nil {
				return UserView{}, err
			}
			mdw.Annotate(c, room.ID(), caller.ID)
			return userView(target, caller), nil
		},
	})

	// --- DELETE /users/:id  管理员移除成员 ---
	httpez.RegisterAction(ez, httpez.Action[idIn, RoomWithUsers]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: httpez.BindURI,
		Handler: func(c *gin.Context, in *idIn) (RoomWithUsers, error) {
			code := mdw.UserCodeOf(c)
			room, err := h.svc.DeleteUser(c.Request.Context(), code, domain.UserID(in.ID))
			if err != nil {
				return RoomWithUsers{}, err
			}
			caller, _ := room.UserByCode(code)
			mdw.Annotate(c, room.ID(), caller.ID)
			return RoomWithUsers{Room: roomView(room, true), Users: userViews(room.Users(), caller)}, nil
		},
	})
}
