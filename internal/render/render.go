// Package render 将 builtin 函数与标准库条目渲染为终端 Markdown，供 show 命令使用。
package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/godocs-mcp/godocs-mcp/internal/docs"
	"github.com/godocs-mcp/godocs-mcp/internal/stdlib"
)

const (
	// MinWidthForMarkdown 以下宽度直接输出折行纯文本。
	MinWidthForMarkdown = 30
	// DefaultWidth 用于无法探测终端宽度的场景（管道、重定向）。
	DefaultWidth = 80
	// MaxCacheEntries 为缓存条目上限，超过后整体清空。
	MaxCacheEntries = 64
)

// Renderer 封装 glamour 渲染器并按内容 + 宽度缓存结果。
type Renderer struct {
	mu        sync.Mutex
	style     string
	renderer  *glamour.TermRenderer
	lastWidth int
	cache     map[uint64]string
}

// NewRenderer 构造渲染器；style 为 glamour 标准样式名，空串表示自动探测。
func NewRenderer(style string) *Renderer {
	return &Renderer{
		style: style,
		cache: make(map[uint64]string),
	}
}

// Render 将 Markdown 渲染为终端文本。
func (r *Renderer) Render(markdown string, width int) (string, error) {
	if width < MinWidthForMarkdown {
		return strings.Join(WrapText(markdown, width), "\n") + "\n", nil
	}

	key := cacheKey(markdown, width)
	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.cache[key]; ok {
		return cached, nil
	}

	renderer, err := r.rendererFor(width)
	if err != nil {
		return "", fmt.Errorf("创建 Markdown 渲染器失败: %w", err)
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("渲染 Markdown 失败: %w", err)
	}

	if len(r.cache) >= MaxCacheEntries {
		r.cache = make(map[uint64]string)
	}
	r.cache[key] = out
	return out, nil
}

func (r *Renderer) rendererFor(width int) (*glamour.TermRenderer, error) {
	if r.renderer != nil && r.lastWidth == width {
		return r.renderer, nil
	}
	styleOpt := glamour.WithAutoStyle()
	if r.style != "" {
		styleOpt = glamour.WithStandardStyle(r.style)
	}
	renderer, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return nil, err
	}
	r.renderer = renderer
	r.lastWidth = width
	return renderer, nil
}

func cacheKey(content string, width int) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(content)
	_, _ = h.Write([]byte{byte(width >> 8), byte(width)})
	return h.Sum64()
}

// IsTerminal 报告 fd 是否连接到终端。
func IsTerminal(fd int) bool {
	return term.IsTerminal(fd)
}

// TerminalWidth 返回 fd 对应终端的列数，非终端返回 DefaultWidth。
func TerminalWidth(fd int) int {
	if !term.IsTerminal(fd) {
		return DefaultWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	return width
}

// BuiltinMarkdown 生成 builtin 函数的 Markdown 文档。
func BuiltinMarkdown(fn docs.BuiltinFunction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# builtin.%s\n\n", fn.Name)
	fmt.Fprintf(&b, "```go\n%s\n```\n\n", fn.Signature)
	b.WriteString(fn.Documentation)
	b.WriteString("\n")
	return b.String()
}

// ItemMarkdown 生成标准库条目的 Markdown 文档。
func ItemMarkdown(item stdlib.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", item.Name)
	fmt.Fprintf(&b, "*%s* in package `%s`\n\n", item.Type, item.Package)
	if item.Signature != "" {
		fmt.Fprintf(&b, "```go\n%s\n```\n\n", item.Signature)
	}
	b.WriteString(item.Description)
	b.WriteString("\n")
	return b.String()
}

// WrapText 按词折行，用于过窄的终端。
func WrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{text}
	}
	words := strings.Fields(strings.ReplaceAll(text, "\n", " "))
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) <= maxWidth {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}
