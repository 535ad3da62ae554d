// Package policy decides whether a version's cached builtin metadata must be
// refreshed. It only reads the freshness marker; writing is the caller's job.
package policy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/godocs-mcp/godocs-mcp/internal/cache"
)

// UpdatePolicy 描述文档元数据的刷新策略。
type UpdatePolicy string

const (
	// Manual 从不主动刷新；缓存缺失时由调用方获取一次。
	Manual UpdatePolicy = "manual"
	// Daily 标记缺失、损坏或超过 24 小时时刷新。
	Daily UpdatePolicy = "daily"
	// Startup 每次启动都刷新。
	Startup UpdatePolicy = "startup"
)

// SupportedList 用于错误提示。
const SupportedList = "manual|daily|startup"

// DailyInterval 是 daily 策略的刷新间隔。
const DailyInterval = 24 * time.Hour

// Parse 将字符串标准化为 UpdatePolicy，未知值返回错误。
func Parse(raw string) (UpdatePolicy, error) {
	switch p := UpdatePolicy(strings.ToLower(strings.TrimSpace(raw))); p {
	case Manual, Daily, Startup:
		return p, nil
	default:
		return "", fmt.Errorf("invalid update policy: %s. Must be one of: manual, daily, startup", raw)
	}
}

// Evaluator 根据策略和标记判断是否需要刷新，时钟可注入。
type Evaluator struct {
	store cache.Store
	now   func() time.Time
}

// NewEvaluator 构造 Evaluator，默认使用 time.Now 作为时钟。
func NewEvaluator(store cache.Store) *Evaluator {
	return &Evaluator{store: store, now: time.Now}
}

// WithClock 返回使用指定时钟的副本，主要用于测试。
func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	clone := *e
	clone.now = now
	return &clone
}

// Now 返回评估器当前使用的时间。
func (e *Evaluator) Now() time.Time {
	return e.now()
}

// ShouldRefresh 返回 version 在 p 策略下是否需要刷新。
// daily 策略下任何读取或解析失败都视为过期，时间戳晚于当前时钟同样视为过期。
func (e *Evaluator) ShouldRefresh(ctx context.Context, version string, p UpdatePolicy) bool {
	switch p {
	case Startup:
		return true
	case Daily:
		marker, err := cache.ReadMarker(ctx, e.store, version)
		if err != nil {
			return true
		}
		now, updated := e.now(), marker.UpdatedAt()
		if now.Before(updated) {
			return true
		}
		return now.Sub(updated) >= DailyInterval
	default:
		return false
	}
}
