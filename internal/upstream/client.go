// Package upstream holds the shared HTTP client and URL template helpers used
// to reach the documentation host and the source archive mirrors.
package upstream

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/godocs-mcp/godocs-mcp/internal/config"
	"github.com/godocs-mcp/godocs-mcp/internal/version"
)

// Shared HTTP transport tunings，复用长连接并集中配置超时。
var defaultTransport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	MaxIdleConns:          16,
	MaxIdleConnsPerHost:   4,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ForceAttemptHTTP2:     true,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
}

const defaultTimeout = 5 * time.Minute

// NewClient 返回共享 http.Client，整体超时取自 UpstreamTimeout。
func NewClient(cfg *config.Config) *http.Client {
	timeout := defaultTimeout
	if cfg != nil && cfg.Global.UpstreamTimeout.DurationValue() > 0 {
		timeout = cfg.Global.UpstreamTimeout.DurationValue()
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: defaultTransport.Clone(),
	}
}

// Expand 将模板中的 {version} 替换为 go 前缀的发布标签，例如 1.21.0 → go1.21.0。
func Expand(template, canonicalVersion string) string {
	return strings.ReplaceAll(template, config.VersionPlaceholder, ReleaseTag(canonicalVersion))
}

// ReleaseTag 返回规范版本对应的发布标签。
func ReleaseTag(canonicalVersion string) string {
	return "go" + canonicalVersion
}

// NewGetRequest 构造带统一 User-Agent 的 GET 请求。
func NewGetRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", version.UserAgent())
	return req, nil
}

// IsSuccess 判断状态码是否为 2xx。
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
