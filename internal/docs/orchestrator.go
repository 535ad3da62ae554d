package docs

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/godocs-mcp/godocs-mcp/internal/cache"
	"github.com/godocs-mcp/godocs-mcp/internal/logging"
	"github.com/godocs-mcp/godocs-mcp/internal/policy"
)

// Options 描述 Orchestrator 的依赖。
type Options struct {
	Store     cache.Store
	Evaluator *policy.Evaluator
	Client    *http.Client
	Logger    *logrus.Logger
	// BuiltinDocURL 为 builtin 文档页模板；为空时只使用内置目录，不访问网络。
	BuiltinDocURL string
	// Mirrors 为源码归档模板列表，按顺序尝试。
	Mirrors []string
	// Verbose 为 true 时把进度信息写入日志 info 级别（CLI update 模式）。
	Verbose bool
}

// Orchestrator 负责按版本获取 builtin 元数据与源码归档，并写入缓存。
type Orchestrator struct {
	store     cache.Store
	evaluator *policy.Evaluator
	client    *http.Client
	logger    *logrus.Logger
	docURL    string
	mirrors   []string
	verbose   bool
	group     singleflight.Group
}

// NewOrchestrator 构造 Orchestrator，未提供的依赖使用默认值。
func NewOrchestrator(opts Options) *Orchestrator {
	evaluator := opts.Evaluator
	if evaluator == nil {
		evaluator = policy.NewEvaluator(opts.Store)
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Orchestrator{
		store:     opts.Store,
		evaluator: evaluator,
		client:    client,
		logger:    logger,
		docURL:    opts.BuiltinDocURL,
		mirrors:   append([]string(nil), opts.Mirrors...),
		verbose:   opts.Verbose,
	}
}

// Store 返回底层缓存，供诊断接口复用。
func (o *Orchestrator) Store() cache.Store {
	return o.store
}

func (o *Orchestrator) progress(fields logrus.Fields, msg string) {
	entry := o.logger.WithFields(fields)
	if o.verbose {
		entry.Info(msg)
		return
	}
	entry.Debug(msg)
}

// share 合并同一 key 的并发获取。共享的获取过程不随任一调用方取消而中止，
// 每个调用方只按自己的 ctx 放弃等待；获取本身受 client 超时约束。
func (o *Orchestrator) share(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	detached := context.WithoutCancel(ctx)
	ch := o.group.DoChan(key, func() (interface{}, error) {
		return fn(detached)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}
