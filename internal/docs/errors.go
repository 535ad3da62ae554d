package docs

import (
	"errors"
	"fmt"
)

var (
	// ErrVersionNotFound 表示远端明确没有该版本，通常是版本号写错。
	ErrVersionNotFound = errors.New("go version not found")
	// ErrUpstream 表示网络、HTTP 或解析层面的暂时性失败。
	ErrUpstream = errors.New("upstream unavailable")
	// ErrInvalidVersion 表示版本标识无法作为缓存分区名使用。
	ErrInvalidVersion = errors.New("invalid go version identifier")
)

// UpstreamError 记录一次失败的远端访问，Kind 为 ErrVersionNotFound 或 ErrUpstream。
type UpstreamError struct {
	Kind       error
	URL        string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%v: GET %s: status %d: %v", e.Kind, e.URL, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%v: GET %s: status %d", e.Kind, e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%v: GET %s: %v", e.Kind, e.URL, e.Err)
	default:
		return fmt.Sprintf("%v: GET %s", e.Kind, e.URL)
	}
}

// Unwrap 同时暴露错误类别与底层原因，便于 errors.Is 判断。
func (e *UpstreamError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// IsNotFound 判断错误是否属于“版本不存在”一类。
func IsNotFound(err error) bool {
	return errors.Is(err, ErrVersionNotFound)
}
