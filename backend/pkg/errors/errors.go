package errors

import "errors"

// Kind 业务错误分类，Handler 层据此映射 HTTP 状态码
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindPrecondition
	KindValidation
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindPrecondition:
		return "precondition_failed"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// AppError 带分类与业务码的错误
type AppError struct {
	Kind    Kind
	Code    int
	Message string
}

func (e *AppError) Error() string { return e.Message }

// New 创建业务错误
func New(kind Kind, code int, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

// KindOf 返回错误链中第一个 AppError 的分类，未命中时视为内部错误
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// As 提取错误链中的 AppError
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// ErrLockHeld 分布式锁已被其他实例持有
var ErrLockHeld = errors.New("操作正在进行中，请稍后再试")
