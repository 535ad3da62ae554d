package upstream

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FunctionDoc 是从 builtin 文档页中抽取的一条函数说明。
type FunctionDoc struct {
	Name      string
	Signature string
	Docs      string
}

// ExtractFunctions 解析 builtin 包文档页，返回页面中出现的函数说明。
// 先按 pkg.go.dev 的 Documentation-function 区块解析，失败时回退到 godoc 的
// “标题 + pre + 段落”结构。页面结构都不匹配时返回空结果而非错误。
func ExtractFunctions(r io.Reader) ([]FunctionDoc, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse builtin page: %w", err)
	}
	if docs := extractPkgsite(root); len(docs) > 0 {
		return docs, nil
	}
	return extractGodoc(root), nil
}

func extractPkgsite(root *html.Node) []FunctionDoc {
	var result []FunctionDoc
	walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.DataAtom != atom.Div || !hasClass(n, "Documentation-function") {
			return true
		}
		var doc FunctionDoc
		var paragraphs []string
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch {
			case c.DataAtom == atom.H4 && doc.Name == "":
				doc.Name = attr(c, "id")
			case c.DataAtom == atom.Div && hasClass(c, "Documentation-declaration"):
				doc.Signature = strings.TrimSpace(textOf(c))
			case c.DataAtom == atom.P:
				paragraphs = appendText(paragraphs, collapse(textOf(c)))
			case c.DataAtom == atom.Pre:
				paragraphs = appendText(paragraphs, strings.TrimRight(textOf(c), "\n"))
			}
		}
		doc.Docs = strings.Join(paragraphs, "\n\n")
		if doc.Name != "" && strings.HasPrefix(doc.Signature, "func ") {
			result = append(result, doc)
		}
		return false
	})
	return result
}

func extractGodoc(root *html.Node) []FunctionDoc {
	var result []FunctionDoc
	walk(root, func(n *html.Node) bool {
		if !isHeading(n) {
			return true
		}
		name := attr(n, "id")
		if name == "" {
			return false
		}
		var doc FunctionDoc
		var paragraphs []string
		for c := n.NextSibling; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if isHeading(c) {
				break
			}
			switch c.DataAtom {
			case atom.Pre:
				text := strings.TrimSpace(textOf(c))
				if doc.Signature == "" {
					if !strings.HasPrefix(text, "func "+name+"(") && !strings.HasPrefix(text, "func "+name+"[") {
						return false
					}
					doc.Signature = text
					continue
				}
				paragraphs = appendText(paragraphs, text)
			case atom.P:
				if doc.Signature != "" {
					paragraphs = appendText(paragraphs, collapse(textOf(c)))
				}
			}
		}
		if doc.Signature != "" {
			doc.Name = name
			doc.Docs = strings.Join(paragraphs, "\n\n")
			result = append(result, doc)
		}
		return false
	})
	return result
}

// walk 先序遍历节点，visit 返回 false 时不再深入该节点的子树。
func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func isHeading(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.H2, atom.H3, atom.H4:
		return true
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, field := range strings.Fields(attr(n, "class")) {
		if field == class {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func appendText(list []string, text string) []string {
	if text == "" {
		return list
	}
	return append(list, text)
}
