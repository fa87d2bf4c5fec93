package util

import "errors"

var (
	ErrUnauthenticated    = errors.New("需要登录")
	ErrForbidden          = errors.New("permission denied")
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("resource already exists")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrGroupFull          = errors.New("group is full")
)

// FieldError 某个请求字段的校验错误
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError 输入校验失败，操作未产生任何修改
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, fields ...FieldError) error {
	return &ValidationError{Err: err, Fields: fields}
}

// Invalid 单字段校验失败的快捷构造
func Invalid(field, msg string) error {
	return NewValidationError(errors.New("validation failed"), FieldError{Field: field, Error: msg})
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
