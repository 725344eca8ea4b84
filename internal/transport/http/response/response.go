package response

import "secret-nick/internal/domain"

type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// FailData 校验失败时放在 data 中的字段明细
type FailData struct {
	Errors []domain.FieldFailure `json:"errors"`
}

// New 构造函数（保证 data 不为 null）
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

// OK 成功响应
func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// Validation 领域校验失败：code 取自分类，字段明细放入 data.errors
func Validation(ve *domain.ValidationError) Resp {
	code := CodeOfKind(ve.Kind)
	msg := CodeMsgMap[code]
	if len(ve.Failures) > 0 {
		msg = ve.Failures[0].Message
	}
	return New(code, msg, FailData{Errors: ve.Failures})
}
