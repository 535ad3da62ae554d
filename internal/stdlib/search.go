package stdlib

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"golang.org/x/text/cases"
)

const (
	// DefaultLimit 为未指定 limit 时返回的条目数。
	DefaultLimit = 20
	// MaxLimit 为单次检索返回条目数上限。
	MaxLimit = 100
)

// 匹配等级，数值越小越靠前。
const (
	rankExact = iota
	rankPrefix
	rankNameContains
	rankDescContains
)

// folder 封装 Unicode 大小写折叠；cases.Caser 不能跨 goroutine 共享。
type folder struct {
	caser cases.Caser
}

func newFolder() *folder {
	return &folder{caser: cases.Fold()}
}

func (f *folder) fold(s string) string {
	return f.caser.String(s)
}

type hit struct {
	index int
	rank  int
	score int
}

// NormalizeLimit 将 limit 约束到 [1, MaxLimit]，非正数取 DefaultLimit。
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// Search 返回名称或描述包含 query 的条目，按完全匹配、前缀、名称包含、描述包含排序，
// 同级再按模糊匹配得分与名称排序。没有子串命中时返回空结果。
func (c *Catalog) Search(query string, limit int) []Item {
	q := newFolder().fold(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	limit = NormalizeLimit(limit)

	scores := make(map[int]int)
	for _, match := range fuzzy.Find(q, c.names) {
		scores[match.Index] = match.Score
	}

	var hits []hit
	for i, name := range c.names {
		rank, ok := c.rankOf(i, name, q)
		if !ok {
			continue
		}
		hits = append(hits, hit{index: i, rank: rank, score: scores[i]})
	}

	if len(hits) == 0 {
		return nil
	}

	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].rank != hits[b].rank {
			return hits[a].rank < hits[b].rank
		}
		if hits[a].score != hits[b].score {
			return hits[a].score > hits[b].score
		}
		return c.items[hits[a].index].Name < c.items[hits[b].index].Name
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]Item, 0, len(hits))
	for _, h := range hits {
		out = append(out, c.items[h.index])
	}
	return out
}

func (c *Catalog) rankOf(i int, name, q string) (int, bool) {
	symbol := name
	if dot := strings.LastIndex(name, "."); dot >= 0 && c.items[i].Type != "package" {
		symbol = name[dot+1:]
	}
	switch {
	case name == q || symbol == q:
		return rankExact, true
	case strings.HasPrefix(name, q) || strings.HasPrefix(symbol, q):
		return rankPrefix, true
	case strings.Contains(name, q):
		return rankNameContains, true
	case strings.Contains(c.descs[i], q):
		return rankDescContains, true
	}
	return 0, false
}

// Suggest 按名称模糊匹配返回候选条目，用于查找失败后的提示，结果不保证包含 query。
func (c *Catalog) Suggest(query string, limit int) []Item {
	q := newFolder().fold(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	limit = NormalizeLimit(limit)
	matches := fuzzy.Find(q, c.names)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]Item, 0, len(matches))
	for _, match := range matches {
		out = append(out, c.items[match.Index])
	}
	return out
}
