package response

import "secret-nick/internal/domain"

// 常见业务 系统级错误码（直接基于 HTTP 语义）
const (
	CodeOK              = 0
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeTooManyRequests = 429
	CodeServerError     = 500
	CodeTimeout         = 504
)

// CodeMsgMap 用于集中管理 code - msg
var CodeMsgMap = map[int]string{
	CodeOK:              "OK",
	CodeBadRequest:      "Bad Request",
	CodeUnauthorized:    "Unauthorized",
	CodeForbidden:       "Forbidden",
	CodeNotFound:        "Not Found",
	CodeTooManyRequests: "Too Many Requests",
	CodeServerError:     "Internal Server Error",
	CodeTimeout:         "Gateway Timeout",
}

// CodeOfKind 领域失败分类 → 业务码
func CodeOfKind(k domain.Kind) int {
	switch k {
	case domain.KindNotFound:
		return CodeNotFound
	case domain.KindBadRequest:
		return CodeBadRequest
	case domain.KindForbidden:
		return CodeForbidden
	case domain.KindNotAuthorized:
		return CodeUnauthorized
	}
	return CodeServerError
}
