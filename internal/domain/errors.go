package domain

import (
	"errors"
	"strings"
)

// Kind 校验失败分类，由边界层映射为传输层状态
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindBadRequest
	KindForbidden
	KindNotAuthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindForbidden:
		return "forbidden"
	case KindNotAuthorized:
		return "not_authorized"
	}
	return "unknown"
}

// FieldFailure 单个字段的失败信息
type FieldFailure struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError 带分类的结构化失败，可包含多个字段
type ValidationError struct {
	Kind     Kind
	Failures []FieldFailure
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.Kind.String() + ": " + strings.Join(parts, "; ")
}

// Has 是否包含指定字段
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Failures {
		if f.Field == field {
			return true
		}
	}
	return false
}

func newValidation(k Kind, field, msg string) *ValidationError {
	return &ValidationError{Kind: k, Failures: []FieldFailure{{Field: field, Message: msg}}}
}

func NotFound(field, msg string) *ValidationError      { return newValidation(KindNotFound, field, msg) }
func BadRequest(field, msg string) *ValidationError    { return newValidation(KindBadRequest, field, msg) }
func Forbidden(field, msg string) *ValidationError     { return newValidation(KindForbidden, field, msg) }
func NotAuthorized(field, msg string) *ValidationError { return newValidation(KindNotAuthorized, field, msg) }

// AsValidation 取出错误链中的 ValidationError
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// IsKind 判断错误是否为指定分类
func IsKind(err error, k Kind) bool {
	ve, ok := AsValidation(err)
	return ok && ve.Kind == k
}

// 存储层哨兵错误
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrVersionConflict = errors.New("room version conflict")
)

// 字段路径（边界层据此定位）
const (
	FieldRoomName          = "room.Name"
	FieldRoomMinUsersLimit = "room.MinUsersLimit"
	FieldRoomMaxUsersLimit = "room.MaxUsersLimit"
	FieldRoomClosedOn      = "room.ClosedOn"
	FieldRoomGiftDate      = "room.GiftExchangeDate"
	FieldUserID            = "user.Id"
	FieldUserAuthCode      = "user.AuthCode"
	FieldUserFirstName     = "user.FirstName"
	FieldUserLastName      = "user.LastName"
	FieldAdmin             = "Admin"
)

// ErrDuplicateCode 邀请码或成员凭证与已有记录冲突
var ErrDuplicateCode = errors.New("duplicate invitation or auth code")
