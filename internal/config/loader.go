package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// VersionPlaceholder 出现在 URL 模板中，运行时替换为 go 前缀的版本号（如 go1.21.0）。
const VersionPlaceholder = "{version}"

const (
	defaultGoVersion       = "1.21.0"
	defaultUpdatePolicy    = "manual"
	defaultViewPort        = 8080
	defaultUpstreamTimeout = 5 * time.Minute
	defaultBuiltinDocURL   = "https://pkg.go.dev/builtin@" + VersionPlaceholder
	appCacheDirName        = "godocs-mcp"
)

var defaultMirrors = []string{
	"https://go.dev/dl/" + VersionPlaceholder + ".src.tar.gz",
	"https://dl.google.com/go/" + VersionPlaceholder + ".src.tar.gz",
	"https://golang.google.cn/dl/" + VersionPlaceholder + ".src.tar.gz",
}

// Load 读取并解析 TOML 配置文件，同时注入默认值与校验逻辑。
// path 为空时只使用默认值与环境变量。
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GODOCS")
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置失败: %w", err)
		}
	}

	var cfg Config
	hook := mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
	)
	if err := v.Unmarshal(&cfg, viper.DecodeHook(hook)); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyGlobalDefaults(&cfg.Global)
	applySourceDefaults(&cfg.Source)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(cfg.Global.CacheRoot)
	if err != nil {
		return nil, fmt.Errorf("无法解析缓存目录: %w", err)
	}
	cfg.Global.CacheRoot = absRoot

	return &cfg, nil
}

// DefaultCacheRoot 返回操作系统约定的应用缓存目录，无法获取时退回临时目录。
func DefaultCacheRoot() string {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, appCacheDirName)
}

// DefaultMirrors 返回内置镜像模板的副本。
func DefaultMirrors() []string {
	return append([]string(nil), defaultMirrors...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("CacheRoot", DefaultCacheRoot())
	v.SetDefault("GoVersion", defaultGoVersion)
	v.SetDefault("UpdatePolicy", defaultUpdatePolicy)
	v.SetDefault("UpstreamTimeout", defaultUpstreamTimeout.String())
	v.SetDefault("ViewPort", defaultViewPort)
	v.SetDefault("BuiltinDocURL", defaultBuiltinDocURL)
	v.SetDefault("Mirrors", DefaultMirrors())
}

func applyGlobalDefaults(g *GlobalConfig) {
	if strings.TrimSpace(g.LogLevel) == "" {
		g.LogLevel = "info"
	}
	if strings.TrimSpace(g.CacheRoot) == "" {
		g.CacheRoot = DefaultCacheRoot()
	}
	if strings.TrimSpace(g.GoVersion) == "" {
		g.GoVersion = defaultGoVersion
	}
	if strings.TrimSpace(g.UpdatePolicy) == "" {
		g.UpdatePolicy = defaultUpdatePolicy
	}
	g.UpdatePolicy = strings.ToLower(strings.TrimSpace(g.UpdatePolicy))
	if g.UpstreamTimeout.DurationValue() == 0 {
		g.UpstreamTimeout = Duration(defaultUpstreamTimeout)
	}
	if g.ViewPort == 0 {
		g.ViewPort = defaultViewPort
	}
}

func applySourceDefaults(s *SourceConfig) {
	s.BuiltinDocURL = strings.TrimSpace(s.BuiltinDocURL)
	mirrors := make([]string, 0, len(s.Mirrors))
	for _, m := range s.Mirrors {
		if trimmed := strings.TrimSpace(m); trimmed != "" {
			mirrors = append(mirrors, trimmed)
		}
	}
	s.Mirrors = mirrors
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}
