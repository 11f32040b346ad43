package usecase

import (
	"errors"
	"fmt"
)

// ステータスがエラーの種別を表す。
// 409は「別のリソースで再試行する意味がある」衝突、
// 400は「このリクエスト自体が不正」、404は対象なし。
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}
