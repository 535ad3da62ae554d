package stdlib

import "testing"

func mustDefault(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := Default()
	if err != nil {
		t.Fatalf("加载嵌入目录失败: %v", err)
	}
	return catalog
}

func TestDefaultCatalogLoads(t *testing.T) {
	catalog := mustDefault(t)
	if catalog.Len() < 50 {
		t.Fatalf("目录条目过少: %d", catalog.Len())
	}
	for _, item := range catalog.Items() {
		if item.Package == "" || item.Description == "" {
			t.Fatalf("条目字段不完整: %+v", item)
		}
	}
}

func TestPackageDerivedFromName(t *testing.T) {
	catalog := mustDefault(t)
	cases := map[string]string{
		"net/http.Get":                "net/http",
		"encoding/json":               "encoding/json",
		"fmt.Println":                 "fmt",
		"strings.Builder.WriteString": "strings",
	}
	for name, want := range cases {
		item, ok := catalog.Get(name)
		if !ok {
			t.Fatalf("missing %s", name)
		}
		if item.Package != want {
			t.Fatalf("%s package = %s, want %s", name, item.Package, want)
		}
	}
}

func TestGetIsCaseInsensitive(t *testing.T) {
	catalog := mustDefault(t)
	item, ok := catalog.Get("  FMT.println ")
	if !ok || item.Name != "fmt.Println" {
		t.Fatalf("unexpected lookup result: %+v %v", item, ok)
	}
	if _, ok := catalog.Get("fmt.Nope"); ok {
		t.Fatalf("不存在的条目应返回 false")
	}
}

func TestParseRejectsInvalidCatalog(t *testing.T) {
	cases := map[string]string{
		"duplicate":    "- {name: fmt, type: package, description: a}\n- {name: FMT, type: package, description: b}\n",
		"missing name": "- {type: package, description: a}\n",
		"bad type":     "- {name: fmt, type: module, description: a}\n",
		"not yaml":     "name: [",
	}
	for name, body := range cases {
		if _, err := Parse([]byte(body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
