package main

import (
	"fmt"

	"github.com/godocs-mcp/godocs-mcp/internal/version"
)

// printVersion 输出注入的版本 + 提交信息。
func printVersion() {
	fmt.Fprintln(stdOut, version.Full())
}

// printHelp 输出命令用法与示例。
func printHelp() {
	fmt.Fprint(stdOut, `Usage: godocs-mcp [options] [command]

Commands:
  (none)              Start the MCP server on stdio
  update              Refresh builtin documentation and exit
                      (-go-version accepts a comma separated list)
  view                Start the local documentation viewer
  show <name>         Print a builtin function or standard library item

Options:
  -config <path>          Config file (default ./config.toml, env GODOCS_MCP_CONFIG)
  -go-version <version>   Go version to use (default 1.21.0)
                          Examples: 1.21.0, go1.22.3
  -update-policy <policy> Update policy: manual, daily, startup (default manual)
  -version                Print version information
  -h, -help               Show this help message

Examples:
  godocs-mcp                                   # MCP server for go1.21.0
  godocs-mcp -go-version go1.22.3              # MCP server for a specific version
  godocs-mcp -update-policy daily              # Refresh docs at most once a day
  godocs-mcp update -go-version 1.21.0,1.22.3  # Refresh several versions
  godocs-mcp view                              # Browse docs on http://localhost:8080
  godocs-mcp show append                       # Render a builtin on the terminal
`)
}
