package cache

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sort"
)

// PartitionStatus 汇总一个版本分区的落盘情况，供诊断接口使用。
type PartitionStatus struct {
	Version string  `json:"version"`
	Path    string  `json:"path"`
	Exists  bool    `json:"exists"`
	Entries []Entry `json:"entries"`
	Marker  *Marker `json:"marker,omitempty"`
	// MarkerError 记录标记存在但不可用的原因。
	MarkerError string `json:"marker_error,omitempty"`
}

// Inspect 读取分区内已知文件的状态，不会创建目录。
func Inspect(ctx context.Context, store Store, version string) (PartitionStatus, error) {
	dir, err := PartitionPath(store, version)
	if err != nil {
		return PartitionStatus{}, err
	}
	status := PartitionStatus{Version: version, Path: dir}

	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		status.Exists = true
	case err == nil, errors.Is(err, fs.ErrNotExist):
		return status, nil
	default:
		return status, err
	}

	for _, name := range []string{MarkerName, BuiltinsName, ArchiveName} {
		entry, err := store.Stat(ctx, Locator{Version: version, Name: name})
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return status, err
		}
		status.Entries = append(status.Entries, *entry)
	}

	marker, err := ReadMarker(ctx, store, version)
	switch {
	case err == nil:
		status.Marker = &marker
	case errors.Is(err, ErrNotFound):
	default:
		status.MarkerError = err.Error()
	}
	return status, nil
}

// ListVersions 返回缓存根目录下已经存在的版本分区名，按字典序排列。
func ListVersions(store Store) ([]string, error) {
	entries, err := os.ReadDir(store.Root())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	versions := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() && validSegment(entry.Name()) == nil {
			versions = append(versions, entry.Name())
		}
	}
	sort.Strings(versions)
	return versions, nil
}
