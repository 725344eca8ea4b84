package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"secret-nick/internal/domain"
	resp "secret-nick/internal/transport/http/response"
)

// EZ 在分组上以 Action 方式注册接口
type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, log: l}
}

// 绑定方式
type Binder string

const (
	BindJSON     Binder = "json"      // 从 JSON 绑定
	BindQuery    Binder = "query"     // 从 URL ?a=b 绑定
	BindURI      Binder = "uri"       // 从路径参数 /:id 绑定
	BindURIQuery Binder = "uri+query" // 路径参数 + query
	BindNone     Binder = "none"      // 不绑定，自己从 c.Param / c.PostForm 取
)

// 统一错误对象（配合 resp.Error(int, msg)）
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string   // "GET" | "POST" | "PUT" | "DELETE"
	Path    string   // 例："/rooms/draw"、"/users/:id"
	Binder  Binder   // 绑定方式
	Auth    bool     // 是否要求登录（检查 userId）
	Roles   []string // 限定角色（可选）
	Handler func(c *gin.Context, in *I) (O, error)
}

// RegisterAction 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		// 1) 鉴权/角色
		if a.Auth {
			if c.GetString(KeyUserID) == "" {
				resp.Write(c, resp.Error(resp.CodeUnauthorized, "unauthorized"))
				return
			}
			if len(a.Roles) > 0 && !hasRole(c.GetString(KeyRole), a.Roles) {
				resp.Write(c, resp.Error(resp.CodeForbidden, "forbidden"))
				return
			}
		}

		// 2) 绑定入参
		var in I
		if err := bind(c, a.Binder, &in); err != nil {
			resp.Write(c, resp.Error(resp.CodeBadRequest, err.Error()))
			return
		}

		// 3) 执行 + 统一错误映射
		out, err := a.Handler(c, &in)
		if err != nil {
			e.writeErr(c, err)
			return
		}
		resp.Write(c, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

// 上下文 key（由鉴权中间件写入）
const (
	KeyUserID = "userId"
	KeyRole   = "role"
)

func bind(c *gin.Context, b Binder, in any) error {
	switch b {
	case BindJSON:
		return c.ShouldBindJSON(in)
	case BindQuery:
		return c.ShouldBindQuery(in)
	case BindURI:
		return c.ShouldBindUri(in)
	case BindURIQuery:
		if err := c.ShouldBindUri(in); err != nil {
			return err
		}
		return c.ShouldBindQuery(in)
	}
	return nil
}

func (e EZ) writeErr(c *gin.Context, err error) {
	if ve, ok := domain.AsValidation(err); ok {
		resp.Write(c, resp.Validation(ve))
		return
	}
	var ae *AErr
	if errors.As(err, &ae) {
		if ae.Code >= resp.CodeServerError {
			e.log.Error("action failed", zap.String("path", c.FullPath()), zap.Error(err))
		}
		resp.Write(c, resp.Error(ae.Code, ae.Msg))
		return
	}
	// 未知错误不外泄细节
	e.log.Error("action failed", zap.String("path", c.FullPath()), zap.Error(err))
	resp.Write(c, resp.Error(resp.CodeServerError, ""))
}

func hasRole(role string, roles []string) bool {
	for _, r := range roles {
		if role == r {
			return true
		}
	}
	return false
}
