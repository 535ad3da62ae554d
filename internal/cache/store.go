package cache

import (
	"context"
	"errors"
	"io"
	"time"
)

// 分区内的固定文件名。
const (
	MarkerName   = "metadata.json"
	BuiltinsName = "builtin-functions.json"
	ArchiveName  = "sources.tar.gz"
)

// Store 负责管理磁盘缓存的读写。磁盘布局遵循：
//
//	<CacheRoot>/<version>/metadata.json           # 新鲜度标记
//	<CacheRoot>/<version>/builtin-functions.json  # builtin 描述集合
//	<CacheRoot>/<version>/sources.tar.gz          # 源码归档或合成回退文档
type Store interface {
	// Get 返回一个可流式读取的缓存条目。若不存在则返回 ErrNotFound。
	Get(ctx context.Context, locator Locator) (*ReadResult, error)

	// Put 写入条目并产出新的 Entry 描述。实现需通过临时文件 + rename
	// 保证写入原子性，并在失败时清理临时文件。
	Put(ctx context.Context, locator Locator, body io.Reader, opts PutOptions) (*Entry, error)

	// Stat 返回条目信息但不打开文件。
	Stat(ctx context.Context, locator Locator) (*Entry, error)

	// Remove 删除条目，不存在时视为成功。
	Remove(ctx context.Context, locator Locator) error

	// Root 返回缓存根目录的绝对路径。
	Root() string
}

// PutOptions 控制写入过程中的可选属性。
type PutOptions struct {
	ModTime time.Time
	// RejectEmpty 为 true 时，空正文视为写入失败，不会替换已有文件。
	RejectEmpty bool
}

// Locator 唯一定位一个缓存条目（版本分区 + 文件名）。
type Locator struct {
	Version string
	Name    string
}

// MarkerLocator 返回版本分区的新鲜度标记位置。
func MarkerLocator(version string) Locator {
	return Locator{Version: version, Name: MarkerName}
}

// BuiltinsLocator 返回版本分区的 builtin 描述集合位置。
func BuiltinsLocator(version string) Locator {
	return Locator{Version: version, Name: BuiltinsName}
}

// ArchiveLocator 返回版本分区的源码归档位置。
func ArchiveLocator(version string) Locator {
	return Locator{Version: version, Name: ArchiveName}
}

// Entry 表示一次缓存命中结果，包含绝对文件路径及文件信息。
type Entry struct {
	Locator   Locator   `json:"locator"`
	FilePath  string    `json:"file_path"`
	SizeBytes int64     `json:"size_bytes"`
	ModTime   time.Time `json:"mod_time"`
}

// ReadResult 组合 Entry 与正文 Reader。
type ReadResult struct {
	Entry  Entry
	Reader io.ReadSeekCloser
}

var (
	// ErrNotFound 表示缓存不存在。
	ErrNotFound = errors.New("cache entry not found")
	// ErrEmptyBody 表示 RejectEmpty 写入时正文为空。
	ErrEmptyBody = errors.New("cache entry body is empty")
	// ErrInvalidLocator 表示版本或文件名不是合法的单级路径。
	ErrInvalidLocator = errors.New("invalid cache locator")
)
