package util

import "errors"

var (
	ErrUserNotFound        = errors.New("用户不存在")
	ErrEmailRegistered     = errors.New("该邮箱已被注册")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrQuestionSetNotFound = errors.New("question set not found")
	ErrResultNotFound      = errors.New("result not found")
	ErrInvalidQuestionFile = errors.New("invalid question file")
)
