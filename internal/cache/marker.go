package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrCorruptMarker 表示标记文件存在但无法解析或内容不一致。
var ErrCorruptMarker = errors.New("corrupt freshness marker")

// Marker 是分区内的新鲜度标记，lastUpdate 使用毫秒时间戳。
type Marker struct {
	LastUpdate int64  `json:"lastUpdate"`
	Version    string `json:"version"`
}

// NewMarker 以给定时间构造标记。
func NewMarker(version string, at time.Time) Marker {
	return Marker{LastUpdate: at.UnixMilli(), Version: version}
}

// UpdatedAt 返回标记记录的更新时间。
func (m Marker) UpdatedAt() time.Time {
	return time.UnixMilli(m.LastUpdate)
}

// ReadMarker 读取并校验版本分区的标记。
// 不存在返回 ErrNotFound，内容损坏返回包装了 ErrCorruptMarker 的错误。
func ReadMarker(ctx context.Context, store Store, version string) (Marker, error) {
	data, err := ReadBytes(ctx, store, MarkerLocator(version))
	if err != nil {
		return Marker{}, err
	}

	var marker Marker
	if err := json.Unmarshal(data, &marker); err != nil {
		return Marker{}, fmt.Errorf("%w: %v", ErrCorruptMarker, err)
	}
	if marker.LastUpdate <= 0 {
		return Marker{}, fmt.Errorf("%w: missing lastUpdate", ErrCorruptMarker)
	}
	if marker.Version != version {
		return Marker{}, fmt.Errorf("%w: version %q does not match partition %q", ErrCorruptMarker, marker.Version, version)
	}
	return marker, nil
}

// WriteMarker 原子写入标记。调用方应在描述集合落盘之后再调用。
func WriteMarker(ctx context.Context, store Store, marker Marker) error {
	data, err := json.MarshalIndent(marker, "", "  ")
	if err != nil {
		return err
	}
	if _, err := PutBytes(ctx, store, MarkerLocator(marker.Version), data); err != nil {
		return fmt.Errorf("write marker: %w", err)
	}
	return nil
}
