package docs

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/godocs-mcp/godocs-mcp/internal/cache"
	"github.com/godocs-mcp/godocs-mcp/internal/policy"
)

func TestEnsureDocsManualIsIdempotent(t *testing.T) {
	stub := newStubServer(t, statusHandler(http.StatusOK, builtinPage))
	store := newTestStore(t)
	orch := newTestOrchestrator(t, store, nil, docURL(stub))
	ctx := context.Background()

	first, err := orch.EnsureDocs(ctx, "go1.21.0", policy.Manual)
	if err != nil {
		t.Fatalf("first ensure error: %v", err)
	}
	if stub.hits.Load() != 1 {
		t.Fatalf("首次获取应访问上游一次，实际 %d", stub.hits.Load())
	}

	second, err := orch.EnsureDocs(ctx, "1.21.0", policy.Manual)
	if err != nil {
		t.Fatalf("second ensure error: %v", err)
	}
	if stub.hits.Load() != 1 {
		t.Fatalf("manual 策略下缓存命中不应访问网络，实际 %d 次", stub.hits.Load())
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("两次结果应一致")
	}

	marker, err := cache.ReadMarker(ctx, store, "1.21.0")
	if err != nil {
		t.Fatalf("marker should exist: %v", err)
	}
	if marker.Version != "1.21.0" || marker.LastUpdate <= 0 {
		t.Fatalf("unexpected marker: %+v", marker)
	}
}

func TestEnsureDocsRequestsReleaseTag(t *testing.T) {
	var gotPath string
	stub := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(builtinPage))
	})
	orch := newTestOrchestrator(t, newTestStore(t), nil, docURL(stub))

	if _, err := orch.EnsureDocs(context.Background(), "1.22.3", policy.Manual); err != nil {
		t.Fatalf("ensure error: %v", err)
	}
	if gotPath != "/builtin@go1.22.3" {
		t.Fatalf("unexpected upstream path: %s", gotPath)
	}
}

func TestEnsureDocsMergesExtractedPage(t *testing.T) {
	stub := newStubServer(t, statusHandler(http.StatusOK, builtinPage))
	orch := newTestOrchestrator(t, newTestStore(t), nil, docURL(stub))

	builtins, err := orch.EnsureDocs(context.Background(), "1.21.0", policy.Manual)
	if err != nil {
		t.Fatalf("ensure error: %v", err)
	}
	lenFn, ok := findFunction(builtins, "len")
	if !ok {
		t.Fatalf("len missing")
	}
	if !strings.Contains(lenFn.Documentation, "length") {
		t.Fatalf("len docs should mention length: %q", lenFn.Documentation)
	}
	if _, ok := findFunction(builtins, "futurefn"); !ok {
		t.Fatalf("页面中额外的函数应被追加")
	}
	if _, ok := findFunction(builtins, "append"); !ok {
		t.Fatalf("目录中的函数应保留")
	}
}

func TestEnsureDocsDistinguishesNotFound(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		notFound bool
	}{
		{name: "not found", status: http.StatusNotFound, notFound: true},
		{name: "gone", status: http.StatusGone, notFound: true},
		{name: "server error", status: http.StatusInternalServerError},
		{name: "bad gateway", status: http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := newStubServer(t, statusHandler(tc.status, "nope"))
			store := newTestStore(t)
			orch := newTestOrchestrator(t, store, nil, docURL(stub))

			_, err := orch.EnsureDocs(context.Background(), "1.21.0", policy.Manual)
			if err == nil {
				t.Fatalf("expected error")
			}
			if IsNotFound(err) != tc.notFound {
				t.Fatalf("IsNotFound mismatch: %v", err)
			}
			if !tc.notFound && !errors.Is(err, ErrUpstream) {
				t.Fatalf("expected ErrUpstream, got %v", err)
			}
			var upErr *UpstreamError
			if !errors.As(err, &upErr) || upErr.StatusCode != tc.status {
				t.Fatalf("expected UpstreamError with status %d, got %v", tc.status, err)
			}
			if _, err := cache.ReadMarker(context.Background(), store, "1.21.0"); !errors.Is(err, cache.ErrNotFound) {
				t.Fatalf("失败时不应写入标记: %v", err)
			}
		})
	}
}

func TestEnsureDocsStoreFailureLeavesNoMarker(t *testing.T) {
	store := newTestStore(t)
	orch := newTestOrchestrator(t, store, nil, "")
	ctx := context.Background()

	// 描述文件位置被目录占据，原子替换必然失败。
	blocked := filepath.Join(store.Root(), "1.21.0", cache.BuiltinsName)
	if err := os.MkdirAll(filepath.Join(blocked, "child"), 0o755); err != nil {
		t.Fatalf("mkdir error: %v", err)
	}

	if _, err := orch.EnsureDocs(ctx, "1.21.0", policy.Startup); err == nil {
		t.Fatalf("描述集合写入失败时应返回错误")
	}
	if _, err := cache.ReadMarker(ctx, store, "1.21.0"); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("描述集合写入失败时不应写入标记: %v", err)
	}
}

func TestEnsureDocsTransportFailureIsUpstream(t *testing.T) {
	stub := newStubServer(t, statusHandler(http.StatusOK, builtinPage))
	target := docURL(stub)
	stub.Close()
	orch := newTestOrchestrator(t, newTestStore(t), nil, target)

	_, err := orch.EnsureDocs(context.Background(), "1.21.0", policy.Manual)
	if !errors.Is(err, ErrUpstream) || IsNotFound(err) {
		t.Fatalf("网络失败应归类为 ErrUpstream: %v", err)
	}
}

func TestEnsureDocsDailyUsesFreshCache(t *testing.T) {
	stub := newStubServer(t, statusHandler(http.StatusOK, builtinPage))
	clock := &testClock{now: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
	orch := newTestOrchestrator(t, newTestStore(t), clock, docURL(stub))
	ctx := context.Background()

	if _, err := orch.EnsureDocs(ctx, "1.21.0", policy.Daily); err != nil {
		t.Fatalf("ensure error: %v", err)
	}
	clock.Advance(time.Hour)
	if _, err := orch.EnsureDocs(ctx, "1.21.0", policy.Daily); err != nil {
		t.Fatalf("ensure error: %v", err)
	}
	if stub.hits.Load() != 1 {
		t.Fatalf("一小时内 daily 策略不应刷新，实际访问 %d 次", stub.hits.Load())
	}

	clock.Advance(24 * time.Hour)
	if _, err := orch.EnsureDocs(ctx, "1.21.0", policy.Daily); err != nil {
		t.Fatalf("ensure error: %v", err)
	}
	if stub.hits.Load() != 2 {
		t.Fatalf("超过 24 小时应刷新，实际访问 %d 次", stub.hits.Load())
	}
}

func TestEnsureDocsStartupAlwaysFetches(t *testing.T) {
	stub := newStubServer(t, statusHandler(http.StatusOK, builtinPage))
	orch := newTestOrchestrator(t, newTestStore(t), nil, docURL(stub))

	for i := 0; i < 3; i++ {
		if _, err := orch.EnsureDocs(context.Background(), "1.21.0", policy.Startup); err != nil {
			t.Fatalf("ensure error: %v", err)
		}
	}
	if stub.hits.Load() != 3 {
		t.Fatalf("startup 策略每次都应获取，实际 %d 次", stub.hits.Load())
	}
}

func TestEnsureDocsCorruptCacheReacquires(t *testing.T) {
	stub := newStubServer(t, statusHandler(http.StatusOK, builtinPage))
	store := newTestStore(t)
	ctx := context.Background()
	if _, err := cache.PutBytes(ctx, store, cache.BuiltinsLocator("1.21.0"), []byte("{not json")); err != nil {
		t.Fatalf("seed error: %v", err)
	}
	if err := cache.WriteMarker(ctx, store, cache.NewMarker("1.21.0", time.Now())); err != nil {
		t.Fatalf("seed marker error: %v", err)
	}
	orch := newTestOrchestrator(t, store, nil, docURL(stub))

	builtins, err := orch.EnsureDocs(ctx, "1.21.0", policy.Manual)
	if err != nil {
		t.Fatalf("损坏的缓存应触发重新获取: %v", err)
	}
	if len(builtins) == 0 || stub.hits.Load() != 1 {
		t.Fatalf("expected re-acquire, hits=%d len=%d", stub.hits.Load(), len(builtins))
	}
}

func TestEnsureDocsOfflineUsesCatalog(t *testing.T) {
	orch := newTestOrchestrator(t, newTestStore(t), nil, "")

	builtins, err := orch.EnsureDocs(context.Background(), "1.21.0", policy.Startup)
	if err != nil {
		t.Fatalf("ensure error: %v", err)
	}
	lenFn, ok := findFunction(builtins, "len")
	if !ok || !strings.Contains(lenFn.Documentation, "length") {
		t.Fatalf("len entry should describe length: %+v", lenFn)
	}
	if _, ok := findFunction(builtins, "min"); !ok {
		t.Fatalf("1.21 应包含 min")
	}

	older, err := orch.EnsureDocs(context.Background(), "1.20.5", policy.Startup)
	if err != nil {
		t.Fatalf("ensure error: %v", err)
	}
	if _, ok := findFunction(older, "clear"); ok {
		t.Fatalf("1.20 不应包含 clear")
	}
}

func TestEnsureDocsRejectsInvalidVersion(t *testing.T) {
	orch := newTestOrchestrator(t, newTestStore(t), nil, "")
	for _, raw := range []string{"", "go", "../etc", "1.21/../../x", "1..2"} {
		if _, err := orch.EnsureDocs(context.Background(), raw, policy.Manual); !errors.Is(err, ErrInvalidVersion) {
			t.Fatalf("%q: expected ErrInvalidVersion, got %v", raw, err)
		}
	}
}

func TestEnsureDocsReturnsIndependentCopies(t *testing.T) {
	orch := newTestOrchestrator(t, newTestStore(t), nil, "")
	first, err := orch.EnsureDocs(context.Background(), "1.21.0", policy.Manual)
	if err != nil {
		t.Fatalf("ensure error: %v", err)
	}
	first[0].Name = "mutated"

	second, err := orch.EnsureDocs(context.Background(), "1.21.0", policy.Manual)
	if err != nil {
		t.Fatalf("ensure error: %v", err)
	}
	if second[0].Name == "mutated" {
		t.Fatalf("调用方修改不应影响后续结果")
	}
}

func TestEnsureDocsCancelledCallerDoesNotFailOthers(t *testing.T) {
	started := make(chan struct{}, 4)
	release := make(chan struct{})
	var releaseOnce sync.Once
	unblock := func() { releaseOnce.Do(func() { close(release) }) }
	t.Cleanup(unblock)

	stub := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		<-release
		_, _ = w.Write([]byte(builtinPage))
	})
	store := newTestStore(t)
	orch := newTestOrchestrator(t, store, nil, docURL(stub))

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := orch.EnsureDocs(leaderCtx, "1.21.0", policy.Startup)
		leaderErr <- err
	}()
	<-started

	type result struct {
		builtins []BuiltinFunction
		err      error
	}
	waiter := make(chan result, 1)
	go func() {
		builtins, err := orch.EnsureDocs(context.Background(), "1.21.0", policy.Startup)
		waiter <- result{builtins, err}
	}()

	cancel()
	select {
	case err := <-leaderErr:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("取消的调用方应返回 context.Canceled，得到 %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("取消的调用方未及时返回")
	}

	time.Sleep(50 * time.Millisecond)
	unblock()

	select {
	case res := <-waiter:
		if res.err != nil {
			t.Fatalf("其他调用方不应受取消影响: %v", res.err)
		}
		if _, ok := findFunction(res.builtins, "len"); !ok {
			t.Fatalf("expected len in result")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("等待中的调用方未返回")
	}
	if _, err := cache.ReadMarker(context.Background(), store, "1.21.0"); err != nil {
		t.Fatalf("共享获取完成后应写入标记: %v", err)
	}
}
