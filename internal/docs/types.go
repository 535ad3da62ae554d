package docs

import (
	"github.com/cespare/xxhash/v2"
)

// BuiltinFunction 描述一个 Go 内置函数。
type BuiltinFunction struct {
	Name          string `json:"func"`
	Signature     string `json:"signature"`
	Documentation string `json:"docs"`
}

// ArchiveKind 区分真实源码归档与合成回退文档。
type ArchiveKind string

const (
	KindArchive           ArchiveKind = "archive"
	KindSyntheticFallback ArchiveKind = "synthetic-fallback"
)

// Archive 是归档流水线的结果，Data 对调用方而言是不透明字节。
type Archive struct {
	Kind    ArchiveKind
	Version string
	Data    []byte
	// Source 记录数据来源：镜像 URL、"cache" 或 "fallback"。
	Source string
}

// IsFallback 返回当前归档是否为合成回退文档。
func (a *Archive) IsFallback() bool {
	return a != nil && a.Kind == KindSyntheticFallback
}

// Size 返回归档字节数。
func (a *Archive) Size() int {
	if a == nil {
		return 0
	}
	return len(a.Data)
}

// Checksum 返回归档内容的 xxhash64 摘要，便于诊断比对。
func (a *Archive) Checksum() uint64 {
	if a == nil {
		return 0
	}
	return xxhash.Sum64(a.Data)
}

const (
	sourceCache    = "cache"
	sourceFallback = "fallback"
)
