package myErrors

import (
	"errors"
	"fmt"
)

// 仓库层错误：只描述存储层面发生了什么，由服务层翻译成业务错误
var (
	// ErrRepoNotFound 查询的记录不存在
	ErrRepoNotFound = errors.New("repo: record not found")
	// ErrRepoDuplicate 违反唯一约束（主键或唯一索引）
	ErrRepoDuplicate = errors.New("repo: duplicate key")
	// ErrRepoNoRowsAffected 带归属条件的更新/删除没有命中任何行
	ErrRepoNoRowsAffected = errors.New("repo: no rows affected")
)

// 业务错误种类，控制器据此决定 HTTP 状态码
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrDuplicateIdentity = errors.New("duplicate identity")
	ErrAlreadyExists     = errors.New("already exists")
	ErrConflict          = errors.New("conflict")
	ErrInvalidOperation  = errors.New("invalid operation")
)

// AppError 携带一个错误种类和一条可以直接返回给客户端的消息。
type AppError struct {
	Kind    error
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Kind
}

// New 构造一个业务错误
func New(kind error, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func InvalidInput(message string) *AppError      { return New(ErrInvalidInput, message) }
func Forbidden(message string) *AppError         { return New(ErrForbidden, message) }
func NotFound(message string) *AppError          { return New(ErrNotFound, message) }
func Conflict(message string) *AppError          { return New(ErrConflict, message) }
func InvalidOperation(message string) *AppError  { return New(ErrInvalidOperation, message) }
func AlreadyExists(message string) *AppError     { return New(ErrAlreadyExists, message) }
func DuplicateIdentity(message string) *AppError { return New(ErrDuplicateIdentity, message) }

// PublicMessage 返回可以暴露给客户端的消息；非业务错误返回空串。
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ""
}
