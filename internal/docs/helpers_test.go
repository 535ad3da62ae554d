package docs

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/godocs-mcp/godocs-mcp/internal/cache"
	"github.com/godocs-mcp/godocs-mcp/internal/policy"
)

const builtinPage = `<html><body>
<div class="Documentation-function">
  <h4 id="len" class="Documentation-functionHeader">func len</h4>
  <div class="Documentation-declaration"><pre>func len(v Type) int</pre></div>
  <p>The len built-in function returns the length of v, according to its type.</p>
</div>
<div class="Documentation-function">
  <h4 id="futurefn" class="Documentation-functionHeader">func futurefn</h4>
  <div class="Documentation-declaration"><pre>func futurefn() bool</pre></div>
  <p>The futurefn built-in function is only documented upstream.</p>
</div>
</body></html>`

// stubServer 是带命中计数的上游桩。
type stubServer struct {
	*httptest.Server
	hits atomic.Int32
}

func newStubServer(t *testing.T, handler http.HandlerFunc) *stubServer {
	t.Helper()
	stub := &stubServer{}
	stub.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(stub.Close)
	return stub
}

func statusHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

// testClock 提供可前进的模拟时钟。
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(t *testing.T) cache.Store {
	t.Helper()
	store, err := cache.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("store init error: %v", err)
	}
	return store
}

func newTestOrchestrator(t *testing.T, store cache.Store, clock *testClock, docURL string, mirrors ...string) *Orchestrator {
	t.Helper()
	evaluator := policy.NewEvaluator(store)
	if clock != nil {
		evaluator = evaluator.WithClock(clock.Now)
	}
	return NewOrchestrator(Options{
		Store:         store,
		Evaluator:     evaluator,
		Client:        &http.Client{Timeout: 5 * time.Second},
		BuiltinDocURL: docURL,
		Mirrors:       mirrors,
	})
}

func docURL(stub *stubServer) string {
	return stub.URL + "/builtin@{version}"
}

func mirrorURL(stub *stubServer) string {
	return stub.URL + "/dl/{version}.src.tar.gz"
}

func findFunction(list []BuiltinFunction, name string) (BuiltinFunction, bool) {
	for _, fn := range list {
		if fn.Name == name {
			return fn, true
		}
	}
	return BuiltinFunction{}, false
}
