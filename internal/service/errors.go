// Package service 包含了应用的业务逻辑层。
package service

import (
	"errors"
	"fmt"
)

// 业务错误的分类哨兵。handler 层据此映射 HTTP 状态码：
// ErrValidation → 400, ErrNotFound → 404, ErrForbidden → 403, ErrConflict → 409，
// 其余错误一律 500。
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
)

// validationf 构造一个带字段说明的校验错误。
func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// notFoundf 构造一个资源不存在错误。
func notFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// forbiddenf 构造一个权限拒绝错误。
func forbiddenf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// conflictf 构造一个并发冲突错误。
func conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}
