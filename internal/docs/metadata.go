package docs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/godocs-mcp/godocs-mcp/internal/cache"
	"github.com/godocs-mcp/godocs-mcp/internal/logging"
	"github.com/godocs-mcp/godocs-mcp/internal/policy"
	"github.com/godocs-mcp/godocs-mcp/internal/upstream"
)

const artifactBuiltins = "builtins"

// EnsureDocs 返回 version 的 builtin 描述集合，必要时按策略重新获取并写入缓存。
// 远端明确缺失该版本时返回 ErrVersionNotFound，其余远端失败返回 ErrUpstream。
func (o *Orchestrator) EnsureDocs(ctx context.Context, version string, p policy.UpdatePolicy) ([]BuiltinFunction, error) {
	canonical, err := NormalizeVersion(version)
	if err != nil {
		return nil, err
	}
	key := "docs:" + canonical + ":" + string(p)
	value, err := o.share(ctx, key, func(ctx context.Context) (interface{}, error) {
		return o.ensureDocs(ctx, canonical, p)
	})
	if err != nil {
		return nil, err
	}
	return cloneFunctions(value.([]BuiltinFunction)), nil
}

func (o *Orchestrator) ensureDocs(ctx context.Context, version string, p policy.UpdatePolicy) ([]BuiltinFunction, error) {
	if !o.evaluator.ShouldRefresh(ctx, version, p) {
		cached, err := o.loadCachedBuiltins(ctx, version)
		if err == nil {
			o.logger.WithFields(logging.VersionFields("docs_cache_hit", version, artifactBuiltins)).Debug("docs_cache_hit")
			return cached, nil
		}
		if !errors.Is(err, cache.ErrNotFound) {
			o.logger.WithFields(logging.VersionFields("docs_cache_corrupt", version, artifactBuiltins)).
				WithError(err).Warn("docs_cache_corrupt")
		}
	}

	o.progress(logging.VersionFields("docs_fetch", version, artifactBuiltins), "docs_fetch")
	builtins, err := o.fetchBuiltins(ctx, version)
	if err != nil {
		return nil, err
	}
	if err := o.persistBuiltins(ctx, version, builtins); err != nil {
		return nil, err
	}
	o.progress(logrus.Fields{
		"action":  "docs_stored",
		"version": version,
		"count":   len(builtins),
	}, "docs_stored")
	return builtins, nil
}

func (o *Orchestrator) loadCachedBuiltins(ctx context.Context, version string) ([]BuiltinFunction, error) {
	data, err := cache.ReadBytes(ctx, o.store, cache.BuiltinsLocator(version))
	if err != nil {
		return nil, err
	}
	var builtins []BuiltinFunction
	if err := json.Unmarshal(data, &builtins); err != nil {
		return nil, fmt.Errorf("decode cached builtins: %w", err)
	}
	if len(builtins) == 0 {
		return nil, fmt.Errorf("decode cached builtins: empty descriptor set")
	}
	return builtins, nil
}

// fetchBuiltins 访问 builtin 文档页并与内置目录合并。
func (o *Orchestrator) fetchBuiltins(ctx context.Context, version string) ([]BuiltinFunction, error) {
	catalog := CatalogFor(version)
	if strings.TrimSpace(o.docURL) == "" {
		return catalog, nil
	}

	target := upstream.Expand(o.docURL, version)
	req, err := upstream.NewGetRequest(ctx, target)
	if err != nil {
		return nil, &UpstreamError{Kind: ErrUpstream, URL: target, Err: err}
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Kind: ErrUpstream, URL: target, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, &UpstreamError{Kind: ErrVersionNotFound, URL: target, StatusCode: resp.StatusCode}
	case !upstream.IsSuccess(resp.StatusCode):
		return nil, &UpstreamError{Kind: ErrUpstream, URL: target, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Kind: ErrUpstream, URL: target, StatusCode: resp.StatusCode, Err: err}
	}
	extracted, err := upstream.ExtractFunctions(bytes.NewReader(body))
	if err != nil {
		return nil, &UpstreamError{Kind: ErrUpstream, URL: target, StatusCode: resp.StatusCode, Err: err}
	}
	return mergeExtracted(catalog, extracted), nil
}

// mergeExtracted 用页面内容覆盖目录中的签名与说明，并追加目录之外的函数。
func mergeExtracted(catalog []BuiltinFunction, extracted []upstream.FunctionDoc) []BuiltinFunction {
	merged := cloneFunctions(catalog)
	index := make(map[string]int, len(merged))
	for i, fn := range merged {
		index[fn.Name] = i
	}
	for _, doc := range extracted {
		if i, ok := index[doc.Name]; ok {
			merged[i].Signature = doc.Signature
			if doc.Docs != "" {
				merged[i].Documentation = doc.Docs
			}
			continue
		}
		index[doc.Name] = len(merged)
		merged = append(merged, BuiltinFunction{
			Name:          doc.Name,
			Signature:     doc.Signature,
			Documentation: doc.Docs,
		})
	}
	return merged
}

// persistBuiltins 先写描述集合，最后写新鲜度标记。
func (o *Orchestrator) persistBuiltins(ctx context.Context, version string, builtins []BuiltinFunction) error {
	data, err := json.MarshalIndent(builtins, "", "  ")
	if err != nil {
		return fmt.Errorf("encode builtins: %w", err)
	}
	if _, err := cache.PutBytes(ctx, o.store, cache.BuiltinsLocator(version), data); err != nil {
		return fmt.Errorf("store builtins: %w", err)
	}
	marker := cache.NewMarker(version, o.evaluator.Now())
	if err := cache.WriteMarker(ctx, o.store, marker); err != nil {
		return fmt.Errorf("store freshness marker: %w", err)
	}
	return nil
}

func cloneFunctions(src []BuiltinFunction) []BuiltinFunction {
	if src == nil {
		return nil
	}
	dst := make([]BuiltinFunction, len(src))
	copy(dst, src)
	return dst
}
