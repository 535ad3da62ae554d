package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/godocs-mcp/godocs-mcp/internal/policy"
)

var supportedLogLevels = map[string]struct{}{
	"trace": {},
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
	"fatal": {},
	"panic": {},
}

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if _, ok := supportedLogLevels[strings.ToLower(g.LogLevel)]; !ok {
		return newFieldError("Global.LogLevel", "仅支持 trace/debug/info/warn/error/fatal/panic")
	}
	if g.LogMaxSize < 0 {
		return newFieldError("Global.LogMaxSize", "不能为负数")
	}
	if g.LogMaxBackups < 0 {
		return newFieldError("Global.LogMaxBackups", "不能为负数")
	}
	if strings.TrimSpace(g.CacheRoot) == "" {
		return newFieldError("Global.CacheRoot", "不能为空")
	}
	if strings.TrimSpace(g.GoVersion) == "" {
		return newFieldError("Global.GoVersion", "不能为空")
	}
	if _, err := policy.Parse(g.UpdatePolicy); err != nil {
		return newFieldError("Global.UpdatePolicy", "仅支持 "+policy.SupportedList)
	}
	if g.UpstreamTimeout.DurationValue() <= 0 {
		return newFieldError("Global.UpstreamTimeout", "必须大于 0")
	}
	if g.ViewPort <= 0 || g.ViewPort > 65535 {
		return newFieldError("Global.ViewPort", "必须在 1-65535")
	}

	if c.Source.BuiltinDocURL != "" {
		if err := validateTemplate(c.Source.BuiltinDocURL); err != nil {
			return fmt.Errorf("Source.BuiltinDocURL: %w", err)
		}
	}
	for i, mirror := range c.Source.Mirrors {
		if err := validateTemplate(mirror); err != nil {
			return fmt.Errorf("%s: %w", mirrorField(i), err)
		}
	}

	return nil
}

// validateTemplate 校验 URL 模板包含版本占位符且替换后是合法的 http/https 地址。
func validateTemplate(raw string) error {
	if !strings.Contains(raw, VersionPlaceholder) {
		return fmt.Errorf("缺少 %s 占位符: %s", VersionPlaceholder, raw)
	}
	parsed, err := url.Parse(strings.ReplaceAll(raw, VersionPlaceholder, "go0.0.0"))
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("仅支持 http/https: %s", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("缺少 Host: %s", raw)
	}
	return nil
}
