package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/godocs-mcp/godocs-mcp/internal/config"
	"github.com/godocs-mcp/godocs-mcp/internal/docs"
	"github.com/godocs-mcp/godocs-mcp/internal/logging"
	"github.com/godocs-mcp/godocs-mcp/internal/mcpserver"
	"github.com/godocs-mcp/godocs-mcp/internal/policy"
	"github.com/godocs-mcp/godocs-mcp/internal/query"
	"github.com/godocs-mcp/godocs-mcp/internal/render"
	"github.com/godocs-mcp/godocs-mcp/internal/server"
	"github.com/godocs-mcp/godocs-mcp/internal/server/routes"
	"github.com/godocs-mcp/godocs-mcp/internal/stdlib"
)

// runServe 准备文档与归档后在 stdio 上提供 MCP 服务。
func runServe(ctx context.Context, cfg *config.Config, orch *docs.Orchestrator, logger *logrus.Logger) int {
	p, _ := policy.Parse(cfg.Global.UpdatePolicy)
	builtins, err := orch.EnsureDocs(ctx, cfg.Global.GoVersion, p)
	if err != nil {
		reportAcquireError(cfg.Global.GoVersion, err, logger)
		return 1
	}

	archive, err := orch.GetArchive(ctx, cfg.Global.GoVersion)
	if err != nil {
		reportAcquireError(cfg.Global.GoVersion, err, logger)
		return 1
	}
	if archive.IsFallback() {
		logger.WithFields(logging.VersionFields("archive_fallback", archive.Version, "sources")).
			Warn("源码归档不可用，使用合成回退")
	}

	catalog, err := stdlib.Default()
	if err != nil {
		fmt.Fprintf(stdErr, "加载标准库目录失败: %v\n", err)
		return 1
	}

	srv := mcpserver.New(mcpserver.Options{
		GoVersion: archive.Version,
		Surface:   query.NewSurface(builtins, archive, catalog),
		Logger:    logger,
	})
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Error("mcp_serve_failed")
		fmt.Fprintf(stdErr, "MCP 服务异常退出: %v\n", err)
		return 1
	}
	return 0
}

// runUpdate 并行刷新逗号分隔的多个版本，任一失败即返回 1。
func runUpdate(ctx context.Context, orch *docs.Orchestrator, versions string, logger *logrus.Logger) int {
	targets := splitVersions(versions)
	if len(targets) == 0 {
		fmt.Fprintln(stdErr, "未指定需要更新的版本")
		return 1
	}

	var (
		mu     sync.Mutex
		failed bool
	)
	var g errgroup.Group
	for _, target := range targets {
		g.Go(func() error {
			err := updateVersion(ctx, orch, target)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = true
				reportAcquireError(target, err, logger)
				return nil
			}
			fmt.Fprintf(stdOut, "Successfully updated documentation for Go %s\n", target)
			return nil
		})
	}
	_ = g.Wait()

	if failed {
		return 1
	}
	return 0
}

// updateVersion 强制刷新 builtin 文档，并清除合成回退归档以便下次重试镜像。
func updateVersion(ctx context.Context, orch *docs.Orchestrator, version string) error {
	if _, err := orch.EnsureDocs(ctx, version, policy.Startup); err != nil {
		return err
	}
	_, err := orch.DropFallbackArchive(ctx, version)
	return err
}

func splitVersions(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// runView 启动本地文档浏览服务，直到收到退出信号。
func runView(ctx context.Context, cfg *config.Config, orch *docs.Orchestrator, logger *logrus.Logger) int {
	p, _ := policy.Parse(cfg.Global.UpdatePolicy)
	builtins, err := orch.EnsureDocs(ctx, cfg.Global.GoVersion, p)
	if err != nil {
		// 浏览页只依赖标准库目录，builtin 获取失败时退回内置目录。
		logger.WithFields(logging.VersionFields("view_docs_fallback", cfg.Global.GoVersion, "builtins")).
			WithError(err).Warn("view_docs_fallback")
		builtins = docs.CatalogFor(cfg.Global.GoVersion)
	}

	catalog, err := stdlib.Default()
	if err != nil {
		fmt.Fprintf(stdErr, "加载标准库目录失败: %v\n", err)
		return 1
	}

	app, err := server.NewApp(server.AppOptions{
		Logger:  logger,
		Surface: query.NewSurface(builtins, nil, catalog),
	})
	if err != nil {
		fmt.Fprintf(stdErr, "构建浏览服务失败: %v\n", err)
		return 1
	}
	routes.RegisterCacheRoutes(app, orch.Store(), time.Now)

	addr := fmt.Sprintf(":%d", cfg.Global.ViewPort)
	fmt.Fprintf(stdOut, "Documentation server running at http://localhost:%d\n", cfg.Global.ViewPort)
	logger.WithFields(logrus.Fields{
		"action": "view_listen",
		"addr":   addr,
	}).Info("view_listen")

	if err := app.Listen(addr, fiber.ListenConfig{
		GracefulContext:       ctx,
		DisableStartupMessage: true,
	}); err != nil {
		fmt.Fprintf(stdErr, "浏览服务异常退出: %v\n", err)
		return 1
	}
	return 0
}

// runShow 在终端渲染单个 builtin 函数或标准库条目。
func runShow(ctx context.Context, cfg *config.Config, orch *docs.Orchestrator, name string) int {
	builtins, err := orch.EnsureDocs(ctx, cfg.Global.GoVersion, policy.Manual)
	if err != nil {
		builtins = docs.CatalogFor(cfg.Global.GoVersion)
	}

	catalog, err := stdlib.Default()
	if err != nil {
		fmt.Fprintf(stdErr, "加载标准库目录失败: %v\n", err)
		return 1
	}
	surface := query.NewSurface(builtins, nil, catalog)

	var markdown string
	if fn, err := surface.GetBuiltinFunction(name); err == nil {
		markdown = render.BuiltinMarkdown(fn)
	} else if item, err := surface.GetStdLibItem(name); err == nil {
		markdown = render.ItemMarkdown(item)
	} else {
		fmt.Fprintf(stdErr, "未找到条目: %s\n", name)
		if hits := catalog.Suggest(name, 5); len(hits) > 0 {
			names := make([]string, 0, len(hits))
			for _, hit := range hits {
				names = append(names, hit.Name)
			}
			fmt.Fprintf(stdErr, "相近条目: %s\n", strings.Join(names, ", "))
		}
		return 1
	}

	style, width := "notty", render.DefaultWidth
	if stdOut == os.Stdout {
		width = render.TerminalWidth(int(os.Stdout.Fd()))
		// 仅真实终端使用自动配色。
		if render.IsTerminal(int(os.Stdout.Fd())) {
			style = ""
		}
	}

	out, err := render.NewRenderer(style).Render(markdown, width)
	if err != nil {
		fmt.Fprintln(stdOut, markdown)
		return 0
	}
	fmt.Fprint(stdOut, out)
	return 0
}
