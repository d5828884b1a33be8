package service

import "errors"

// 业务层通用错误，handler 根据错误类型映射到 HTTP 状态码或表单提示。
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserBanned         = errors.New("user banned")
	ErrUsernameTaken      = errors.New("username taken")
	ErrInviteInvalid      = errors.New("invite invalid")
	ErrNotFound           = errors.New("not found")
	ErrNotOwner           = errors.New("not owner")
	ErrInvalidMove        = errors.New("invalid move")
)

// ValidationError 携带重渲染表单时展示给用户的提示文案。
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validation(msg string) error { return &ValidationError{Msg: msg} }

// AsValidation 取出校验错误的文案，非校验错误返回 false。
func AsValidation(err error) (string, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Msg, true
	}
	return "", false
}
