package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/godocs-mcp/godocs-mcp/internal/docs"
	"github.com/godocs-mcp/godocs-mcp/internal/logging"
)

// ListBuiltinFunctionsInput 无参数。
type ListBuiltinFunctionsInput struct{}

// GetBuiltinFunctionInput 指定内置函数名。
type GetBuiltinFunctionInput struct {
	FunctionName string `json:"function_name" jsonschema:"name of the builtin function, e.g. len or append"`
}

// SearchStdLibInput 为标准库检索参数。
type SearchStdLibInput struct {
	Query string `json:"query" jsonschema:"text to look for in item names and descriptions"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results (default 20, max 100)"`
}

// GetStdLibItemInput 指定标准库条目名。
type GetStdLibItemInput struct {
	Name string `json:"name" jsonschema:"fully qualified item name, e.g. fmt.Println or net/http.Get"`
}

// SourceArchiveInfoInput 无参数。
type SourceArchiveInfoInput struct{}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_builtin_functions",
		Description: "List all Go builtin functions with their signatures and documentation.",
	}, s.listBuiltinFunctions)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_builtin_function",
		Description: "Get the signature and documentation of a single Go builtin function.",
	}, s.getBuiltinFunction)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_std_lib",
		Description: "Search the Go standard library for packages, functions and types.",
	}, s.searchStdLib)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_std_lib_item",
		Description: "Get a single Go standard library item by its fully qualified name.",
	}, s.getStdLibItem)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "source_archive_info",
		Description: "Describe the cached Go source archive: kind (archive or synthetic-fallback), size and checksum.",
	}, s.sourceArchiveInfo)
}

func (s *Server) listBuiltinFunctions(ctx context.Context, req *mcp.CallToolRequest, _ ListBuiltinFunctionsInput) (*mcp.CallToolResult, any, error) {
	s.logTool("list_builtin_functions")
	result, err := jsonResult(s.surface.ListBuiltinFunctions())
	return result, nil, err
}

func (s *Server) getBuiltinFunction(ctx context.Context, req *mcp.CallToolRequest, in GetBuiltinFunctionInput) (*mcp.CallToolResult, any, error) {
	s.logTool("get_builtin_function")
	name := strings.TrimSpace(in.FunctionName)
	if name == "" {
		return errorResult(fmt.Errorf("function_name is required")), nil, nil
	}
	fn, err := s.surface.GetBuiltinFunction(name)
	if err != nil {
		return errorResult(err), nil, nil
	}
	result, err := jsonResult(fn)
	return result, nil, err
}

func (s *Server) searchStdLib(ctx context.Context, req *mcp.CallToolRequest, in SearchStdLibInput) (*mcp.CallToolResult, any, error) {
	s.logTool("search_std_lib")
	if strings.TrimSpace(in.Query) == "" {
		return errorResult(fmt.Errorf("query is required")), nil, nil
	}
	result, err := jsonResult(s.surface.SearchStdLib(in.Query, in.Limit))
	return result, nil, err
}

func (s *Server) getStdLibItem(ctx context.Context, req *mcp.CallToolRequest, in GetStdLibItemInput) (*mcp.CallToolResult, any, error) {
	s.logTool("get_std_lib_item")
	item, err := s.surface.GetStdLibItem(in.Name)
	if err != nil {
		return errorResult(err), nil, nil
	}
	result, err := jsonResult(item)
	return result, nil, err
}

func (s *Server) sourceArchiveInfo(ctx context.Context, req *mcp.CallToolRequest, _ SourceArchiveInfoInput) (*mcp.CallToolResult, any, error) {
	info, err := s.surface.ArchiveInfo()
	if err != nil {
		s.logTool("source_archive_info")
		return errorResult(err), nil, nil
	}
	s.logger.WithFields(logging.ToolFields("source_archive_info", info.Kind == docs.KindSyntheticFallback)).Debug("tool_call")
	result, err := jsonResult(info)
	return result, nil, err
}

func (s *Server) logTool(tool string) {
	s.logger.WithFields(logging.ToolFields(tool, false)).Debug("tool_call")
}
