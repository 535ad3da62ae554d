package docs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// fallbackEnvelope 是合成回退文档的落盘格式。
type fallbackEnvelope struct {
	Kind             ArchiveKind       `json:"kind"`
	Version          string            `json:"version"`
	GeneratedAt      string            `json:"generatedAt"`
	Reason           string            `json:"reason"`
	BuiltinFunctions []BuiltinFunction `json:"builtinFunctions"`
}

// Fallback 是解码后的合成回退文档。
type Fallback struct {
	Version          string
	GeneratedAt      time.Time
	Reason           string
	BuiltinFunctions []BuiltinFunction
}

var gzipMagic = []byte{0x1f, 0x8b}

func encodeFallback(version, reason string, at time.Time, builtins []BuiltinFunction) ([]byte, error) {
	envelope := fallbackEnvelope{
		Kind:             KindSyntheticFallback,
		Version:          version,
		GeneratedAt:      at.UTC().Format(time.RFC3339),
		Reason:           reason,
		BuiltinFunctions: builtins,
	}
	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode fallback: %w", err)
	}
	return data, nil
}

// DetectArchiveKind 根据内容判断缓存归档的类型。
// gzip 魔数或无法识别的内容都视为真实归档。
func DetectArchiveKind(data []byte) ArchiveKind {
	if bytes.HasPrefix(data, gzipMagic) {
		return KindArchive
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return KindArchive
	}
	var probe struct {
		Kind ArchiveKind `json:"kind"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return KindArchive
	}
	if probe.Kind == KindSyntheticFallback {
		return KindSyntheticFallback
	}
	return KindArchive
}

// DecodeFallback 解析合成回退文档，非回退内容返回错误。
func DecodeFallback(data []byte) (*Fallback, error) {
	var envelope fallbackEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode fallback: %w", err)
	}
	if envelope.Kind != KindSyntheticFallback {
		return nil, fmt.Errorf("decode fallback: unexpected kind %q", envelope.Kind)
	}
	generated, err := time.Parse(time.RFC3339, envelope.GeneratedAt)
	if err != nil {
		return nil, fmt.Errorf("decode fallback: generatedAt: %w", err)
	}
	return &Fallback{
		Version:          envelope.Version,
		GeneratedAt:      generated,
		Reason:           envelope.Reason,
		BuiltinFunctions: envelope.BuiltinFunctions,
	}, nil
}
