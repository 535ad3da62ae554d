// Package stdlib 提供标准库条目目录及其检索。目录随二进制嵌入，查询不访问网络。
package stdlib

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Item 是一个标准库条目：包、函数、类型、方法、常量或变量。
type Item struct {
	Name        string `yaml:"name" json:"name"`
	Type        string `yaml:"type" json:"type"`
	Package     string `yaml:"package" json:"package"`
	Signature   string `yaml:"signature" json:"signature,omitempty"`
	Description string `yaml:"description" json:"description"`
}

var knownTypes = map[string]struct{}{
	"package":  {},
	"function": {},
	"type":     {},
	"method":   {},
	"const":    {},
	"var":      {},
}

// Catalog 是只读的条目集合，可被多个 goroutine 并发查询。
type Catalog struct {
	items  []Item
	byName map[string]int
	// names 与 descs 为折叠大小写后的检索文本，下标与 items 对齐。
	names []string
	descs []string
}

// Default 解析嵌入的目录。
func Default() (*Catalog, error) {
	return Parse(embeddedCatalog)
}

// Parse 从 YAML 构造目录，条目名重复或缺少必填字段时返回错误。
func Parse(data []byte) (*Catalog, error) {
	var items []Item
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("解析标准库目录失败: %w", err)
	}
	folder := newFolder()
	catalog := &Catalog{
		items:  make([]Item, 0, len(items)),
		byName: make(map[string]int, len(items)),
	}
	for i, item := range items {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			return nil, fmt.Errorf("标准库目录第 %d 项缺少 name", i)
		}
		if _, ok := knownTypes[item.Type]; !ok {
			return nil, fmt.Errorf("标准库条目 %s 的 type 非法: %q", item.Name, item.Type)
		}
		if item.Package == "" {
			item.Package = packageOf(item)
		}
		key := folder.fold(item.Name)
		if _, exists := catalog.byName[key]; exists {
			return nil, fmt.Errorf("标准库条目重复: %s", item.Name)
		}
		catalog.byName[key] = len(catalog.items)
		catalog.items = append(catalog.items, item)
		catalog.names = append(catalog.names, key)
		catalog.descs = append(catalog.descs, folder.fold(item.Description))
	}
	return catalog, nil
}

// packageOf 由条目名推导所属包，例如 net/http.Get → net/http。
func packageOf(item Item) string {
	if item.Type == "package" {
		return item.Name
	}
	slash := strings.LastIndex(item.Name, "/")
	dot := strings.Index(item.Name[slash+1:], ".")
	if dot < 0 {
		return item.Name
	}
	return item.Name[:slash+1+dot]
}

// Len 返回条目数量。
func (c *Catalog) Len() int {
	return len(c.items)
}

// Items 返回全部条目的副本。
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Get 按名称查找条目，大小写不敏感。
func (c *Catalog) Get(name string) (Item, bool) {
	idx, ok := c.byName[newFolder().fold(strings.TrimSpace(name))]
	if !ok {
		return Item{}, false
	}
	return c.items[idx], true
}
