// Package query 在内存中的描述集合、源码归档与标准库目录之上提供只读查询，不访问网络。
package query

import (
	"errors"
	"fmt"

	"github.com/godocs-mcp/godocs-mcp/internal/docs"
	"github.com/godocs-mcp/godocs-mcp/internal/stdlib"
)

// ErrNotFound 表示查询的条目不存在。
var ErrNotFound = errors.New("not found")

// ArchiveInfo 概述当前加载的源码归档。
type ArchiveInfo struct {
	Version  string           `json:"version"`
	Kind     docs.ArchiveKind `json:"kind"`
	Size     int              `json:"size"`
	Checksum string           `json:"checksum"`
	Source   string           `json:"source"`
}

// Surface 持有查询所需的全部数据，构造后只读，可并发使用。
type Surface struct {
	builtins []docs.BuiltinFunction
	byName   map[string]int
	archive  *docs.Archive
	catalog  *stdlib.Catalog
}

// NewSurface 构造查询面。catalog 为空时标准库查询始终返回空结果。
func NewSurface(builtins []docs.BuiltinFunction, archive *docs.Archive, catalog *stdlib.Catalog) *Surface {
	s := &Surface{
		builtins: append([]docs.BuiltinFunction(nil), builtins...),
		byName:   make(map[string]int, len(builtins)),
		archive:  archive,
		catalog:  catalog,
	}
	for i, fn := range s.builtins {
		if _, exists := s.byName[fn.Name]; !exists {
			s.byName[fn.Name] = i
		}
	}
	return s
}

// ListBuiltinFunctions 返回全部内置函数描述。
func (s *Surface) ListBuiltinFunctions() []docs.BuiltinFunction {
	return append([]docs.BuiltinFunction(nil), s.builtins...)
}

// GetBuiltinFunction 先精确匹配名称，再尝试大小写不敏感匹配。
func (s *Surface) GetBuiltinFunction(name string) (docs.BuiltinFunction, error) {
	if idx, ok := s.byName[name]; ok {
		return s.builtins[idx], nil
	}
	for _, fn := range s.builtins {
		if equalFold(fn.Name, name) {
			return fn, nil
		}
	}
	return docs.BuiltinFunction{}, fmt.Errorf("builtin function %q: %w", name, ErrNotFound)
}

// SearchStdLib 在标准库目录中检索，limit 非正数时使用默认值。
func (s *Surface) SearchStdLib(q string, limit int) []stdlib.Item {
	if s.catalog == nil {
		return []stdlib.Item{}
	}
	results := s.catalog.Search(q, limit)
	if results == nil {
		return []stdlib.Item{}
	}
	return results
}

// GetStdLibItem 按名称返回标准库条目。
func (s *Surface) GetStdLibItem(name string) (stdlib.Item, error) {
	if s.catalog != nil {
		if item, ok := s.catalog.Get(name); ok {
			return item, nil
		}
	}
	return stdlib.Item{}, fmt.Errorf("standard library item %q: %w", name, ErrNotFound)
}

// ArchiveInfo 返回当前归档的概要，未加载归档时返回 ErrNotFound。
func (s *Surface) ArchiveInfo() (ArchiveInfo, error) {
	if s.archive == nil {
		return ArchiveInfo{}, fmt.Errorf("source archive: %w", ErrNotFound)
	}
	return ArchiveInfo{
		Version:  s.archive.Version,
		Kind:     s.archive.Kind,
		Size:     s.archive.Size(),
		Checksum: fmt.Sprintf("%016x", s.archive.Checksum()),
		Source:   s.archive.Source,
	}, nil
}
