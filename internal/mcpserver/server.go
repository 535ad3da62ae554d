package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/godocs-mcp/godocs-mcp/internal/logging"
	"github.com/godocs-mcp/godocs-mcp/internal/query"
)

const (
	serverName   = "GoDocs"
	instructions = "Retrieves up-to-date documentation for the Go programming language standard library and builtin functions."
)

// Options 描述 MCP 服务的构造参数。
type Options struct {
	// GoVersion 作为 MCP 实现版本上报，同时写入日志。
	GoVersion string
	Surface   *query.Surface
	Logger    *logrus.Logger
}

// Server 包装 mcp.Server 并注册全部文档工具。
type Server struct {
	mcp     *mcp.Server
	surface *query.Surface
	logger  *logrus.Logger
	version string
}

// New 构造 Server 并注册工具。
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    serverName,
			Version: opts.GoVersion,
		}, &mcp.ServerOptions{Instructions: instructions}),
		surface: opts.Surface,
		logger:  logger,
		version: opts.GoVersion,
	}
	s.registerTools()
	return s
}

// MCP 返回底层 mcp.Server，测试中用于连接内存传输。
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Run 在 stdio 上提供服务，直到客户端断开或 ctx 取消。
func (s *Server) Run(ctx context.Context) error {
	s.logger.WithFields(logrus.Fields{
		"action":  "mcp_serve",
		"version": s.version,
	}).Info("mcp_serve")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}
