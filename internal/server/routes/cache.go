package routes

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/godocs-mcp/godocs-mcp/internal/cache"
	"github.com/godocs-mcp/godocs-mcp/internal/docs"
)

// RegisterCacheRoutes 暴露 /-/cache 诊断接口，用于查看各版本分区的落盘状态。
func RegisterCacheRoutes(app *fiber.App, store cache.Store, now func() time.Time) {
	if app == nil || store == nil {
		return
	}
	if now == nil {
		now = time.Now
	}

	app.Get("/-/cache", func(c fiber.Ctx) error {
		versions, err := cache.ListVersions(store)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		partitions := make([]partitionPayload, 0, len(versions))
		for _, version := range versions {
			status, err := cache.Inspect(c.Context(), store, version)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
			}
			partitions = append(partitions, encodePartition(c.Context(), store, status, now()))
		}
		return c.JSON(fiber.Map{
			"root":       store.Root(),
			"partitions": partitions,
		})
	})

	app.Get("/-/cache/:version", func(c fiber.Ctx) error {
		version, err := docs.NormalizeVersion(c.Params("version"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_version"})
		}
		status, err := cache.Inspect(c.Context(), store, version)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		if !status.Exists {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "version_not_cached"})
		}
		return c.JSON(encodePartition(c.Context(), store, status, now()))
	})
}

type partitionPayload struct {
	Version          string        `json:"version"`
	Path             string        `json:"path"`
	Files            []filePayload `json:"files"`
	MarkerAgeSeconds *int64        `json:"marker_age_seconds,omitempty"`
	MarkerError      string        `json:"marker_error,omitempty"`
	ArchiveKind      string        `json:"archive_kind,omitempty"`
}

type filePayload struct {
	Name      string    `json:"name"`
	SizeBytes int64     `json:"size_bytes"`
	ModTime   time.Time `json:"mod_time"`
}

func encodePartition(ctx context.Context, store cache.Store, status cache.PartitionStatus, now time.Time) partitionPayload {
	payload := partitionPayload{
		Version:     status.Version,
		Path:        status.Path,
		Files:       make([]filePayload, 0, len(status.Entries)),
		MarkerError: status.MarkerError,
	}
	for _, entry := range status.Entries {
		payload.Files = append(payload.Files, filePayload{
			Name:      entry.Locator.Name,
			SizeBytes: entry.SizeBytes,
			ModTime:   entry.ModTime,
		})
		if entry.Locator.Name == cache.ArchiveName {
			payload.ArchiveKind = string(archiveKind(ctx, store, status.Version))
		}
	}
	if status.Marker != nil {
		age := int64(now.Sub(status.Marker.UpdatedAt()) / time.Second)
		payload.MarkerAgeSeconds = &age
	}
	return payload
}

// archiveKind 只读取判断所需的字节：gzip 魔数命中即返回，否则读取全文解析回退文档。
func archiveKind(ctx context.Context, store cache.Store, version string) docs.ArchiveKind {
	result, err := store.Get(ctx, cache.ArchiveLocator(version))
	if err != nil {
		return ""
	}
	defer result.Reader.Close()

	head := make([]byte, 2)
	n, err := io.ReadFull(result.Reader, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return ""
	}
	if n == 2 && head[0] == 0x1f && head[1] == 0x8b {
		return docs.KindArchive
	}
	rest, err := io.ReadAll(result.Reader)
	if err != nil {
		return ""
	}
	return docs.DetectArchiveKind(append(head[:n], rest...))
}
