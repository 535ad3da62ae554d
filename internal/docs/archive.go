package docs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/godocs-mcp/godocs-mcp/internal/cache"
	"github.com/godocs-mcp/godocs-mcp/internal/logging"
	"github.com/godocs-mcp/godocs-mcp/internal/policy"
	"github.com/godocs-mcp/godocs-mcp/internal/upstream"
)

const artifactArchive = "archive"

// errNoMirrors 表示未配置任何镜像。
var errNoMirrors = errors.New("no archive mirrors configured")

// GetArchive 返回 version 的源码归档。缓存命中直接返回；否则依次尝试镜像，
// 全部失败时生成合成回退文档。只有版本标识非法时才返回错误。
func (o *Orchestrator) GetArchive(ctx context.Context, version string) (*Archive, error) {
	canonical, err := NormalizeVersion(version)
	if err != nil {
		return nil, err
	}
	value, err := o.share(ctx, "archive:"+canonical, func(ctx context.Context) (interface{}, error) {
		return o.getArchive(ctx, canonical), nil
	})
	if err != nil {
		return nil, err
	}
	archive := *value.(*Archive)
	archive.Data = append([]byte(nil), archive.Data...)
	return &archive, nil
}

// DropFallbackArchive 删除缓存中的合成回退文档，使下一次 GetArchive 重新尝试镜像。
// 真实归档保持不变，返回值表示是否删除了文件。
func (o *Orchestrator) DropFallbackArchive(ctx context.Context, version string) (bool, error) {
	canonical, err := NormalizeVersion(version)
	if err != nil {
		return false, err
	}
	data, err := cache.ReadBytes(ctx, o.store, cache.ArchiveLocator(canonical))
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if DetectArchiveKind(data) != KindSyntheticFallback {
		return false, nil
	}
	if err := o.store.Remove(ctx, cache.ArchiveLocator(canonical)); err != nil {
		return false, err
	}
	return true, nil
}

func (o *Orchestrator) getArchive(ctx context.Context, version string) *Archive {
	if archive := o.loadCachedArchive(ctx, version); archive != nil {
		return archive
	}

	archive, lastErr := o.downloadFromMirrors(ctx, version)
	if archive != nil {
		return archive
	}

	o.logger.WithFields(logging.VersionFields("archive_mirrors_exhausted", version, artifactArchive)).
		WithError(lastErr).Warn("archive_mirrors_exhausted")
	return o.synthesizeFallback(ctx, version, lastErr)
}

func (o *Orchestrator) loadCachedArchive(ctx context.Context, version string) *Archive {
	data, err := cache.ReadBytes(ctx, o.store, cache.ArchiveLocator(version))
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			o.logger.WithFields(logging.VersionFields("archive_cache_read_failed", version, artifactArchive)).
				WithError(err).Warn("archive_cache_read_failed")
		}
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	kind := DetectArchiveKind(data)
	o.logger.WithFields(logging.VersionFields("archive_cache_hit", version, artifactArchive)).
		WithField("kind", kind).Debug("archive_cache_hit")
	return &Archive{Kind: kind, Version: version, Data: data, Source: sourceCache}
}

// downloadFromMirrors 按顺序尝试镜像，首个 2xx 且非空的响应即成功，不做重试。
func (o *Orchestrator) downloadFromMirrors(ctx context.Context, version string) (*Archive, error) {
	lastErr := errNoMirrors
	for _, template := range o.mirrors {
		target := upstream.Expand(template, version)
		o.progress(logrus.Fields{
			"action":  "archive_download",
			"version": version,
			"mirror":  target,
		}, "archive_download")

		data, err := o.tryMirror(ctx, version, target)
		if err != nil {
			lastErr = err
			o.logger.WithFields(logrus.Fields{
				"action":  "archive_mirror_failed",
				"version": version,
				"mirror":  target,
			}).WithError(err).Warn("archive_mirror_failed")
			continue
		}
		o.progress(logrus.Fields{
			"action":  "archive_stored",
			"version": version,
			"mirror":  target,
			"bytes":   len(data),
		}, "archive_stored")
		return &Archive{Kind: KindArchive, Version: version, Data: data, Source: target}, nil
	}
	return nil, lastErr
}

func (o *Orchestrator) tryMirror(ctx context.Context, version, target string) ([]byte, error) {
	req, err := upstream.NewGetRequest(ctx, target)
	if err != nil {
		return nil, &UpstreamError{Kind: ErrUpstream, URL: target, Err: err}
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Kind: ErrUpstream, URL: target, Err: err}
	}
	defer resp.Body.Close()

	if !upstream.IsSuccess(resp.StatusCode) {
		kind := ErrUpstream
		if resp.StatusCode == 404 || resp.StatusCode == 410 {
			kind = ErrVersionNotFound
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &UpstreamError{Kind: kind, URL: target, StatusCode: resp.StatusCode}
	}

	var buf bytes.Buffer
	body := io.TeeReader(resp.Body, &buf)
	if _, err := o.store.Put(ctx, cache.ArchiveLocator(version), body, cache.PutOptions{RejectEmpty: true}); err != nil {
		return nil, &UpstreamError{Kind: ErrUpstream, URL: target, StatusCode: resp.StatusCode, Err: err}
	}
	return buf.Bytes(), nil
}

// synthesizeFallback 生成包含 builtin 描述集合的合成文档并尽量落盘。
func (o *Orchestrator) synthesizeFallback(ctx context.Context, version string, cause error) *Archive {
	builtins, err := o.EnsureDocs(ctx, version, policy.Manual)
	if err != nil || len(builtins) == 0 {
		o.logger.WithFields(logging.VersionFields("fallback_catalog", version, artifactArchive)).
			WithError(err).Warn("fallback_catalog")
		builtins = CatalogFor(version)
	}

	reason := "source archive unavailable"
	if cause != nil {
		reason = fmt.Sprintf("source archive unavailable: %v", cause)
	}
	data, err := encodeFallback(version, reason, o.evaluator.Now(), builtins)
	if err != nil {
		// 描述集合总能编码，这里只作兜底。
		data = []byte(fmt.Sprintf(`{"kind":%q,"version":%q,"builtinFunctions":[]}`, KindSyntheticFallback, version))
	}

	if _, err := cache.PutBytes(ctx, o.store, cache.ArchiveLocator(version), data); err != nil {
		o.logger.WithFields(logging.VersionFields("fallback_persist_failed", version, artifactArchive)).
			WithError(err).Warn("fallback_persist_failed")
	}
	return &Archive{Kind: KindSyntheticFallback, Version: version, Data: data, Source: sourceFallback}
}
