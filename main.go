package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/godocs-mcp/godocs-mcp/internal/cache"
	"github.com/godocs-mcp/godocs-mcp/internal/config"
	"github.com/godocs-mcp/godocs-mcp/internal/docs"
	"github.com/godocs-mcp/godocs-mcp/internal/logging"
	"github.com/godocs-mcp/godocs-mcp/internal/policy"
	"github.com/godocs-mcp/godocs-mcp/internal/upstream"
	"github.com/godocs-mcp/godocs-mcp/internal/version"
)

const (
	commandServe  = ""
	commandUpdate = "update"
	commandView   = "view"
	commandShow   = "show"

	defaultConfigPath = "config.toml"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath   string
	goVersion    string
	updatePolicy string
	showVersion  bool
	showHelp     bool
	command      string
	args         []string
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		fmt.Fprintln(stdErr, "使用 -h 查看帮助")
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showHelp {
		printHelp()
		return 0
	}
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	store, err := cache.NewStore(cfg.Global.CacheRoot)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化缓存目录失败: %v\n", err)
		return 1
	}

	// 启动顺序为“配置 → 缓存 → 获取编排 → 命令”，所有命令共享同一缓存实例。
	orch := docs.NewOrchestrator(docs.Options{
		Store:         store,
		Evaluator:     policy.NewEvaluator(store),
		Client:        upstream.NewClient(cfg),
		Logger:        logger,
		BuiltinDocURL: cfg.Source.BuiltinDocURL,
		Mirrors:       cfg.Source.Mirrors,
		Verbose:       opts.command == commandUpdate,
	})

	fields := logging.BaseFields("startup", opts.configPath)
	fields["command"] = commandName(opts.command)
	fields["go_version"] = cfg.Global.GoVersion
	fields["update_policy"] = cfg.Global.UpdatePolicy
	fields["cache_root"] = cfg.Global.CacheRoot
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch opts.command {
	case commandUpdate:
		return runUpdate(ctx, orch, cfg.Global.GoVersion, logger)
	case commandView:
		return runView(ctx, cfg, orch, logger)
	case commandShow:
		return runShow(ctx, cfg, orch, strings.Join(opts.args, " "))
	default:
		return runServe(ctx, cfg, orch, logger)
	}
}

// loadConfig 读取配置并叠加命令行覆盖项。默认配置文件缺失时只使用默认值。
func loadConfig(opts cliOptions) (*config.Config, error) {
	path := opts.configPath
	if path == defaultConfigPath {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if opts.goVersion != "" {
		cfg.Global.GoVersion = opts.goVersion
	}
	if opts.updatePolicy != "" {
		cfg.Global.UpdatePolicy = strings.ToLower(strings.TrimSpace(opts.updatePolicy))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
// 命令之后的标志同样生效，例如 `godocs-mcp update -go-version go1.22.0`。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("godocs-mcp", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		goVersion  string
		policyFlag string
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 GODOCS_MCP_CONFIG 覆盖）")
	fs.StringVar(&goVersion, "go-version", "", "Go 版本，例如 1.21.0 或 go1.21.0（默认取配置 GoVersion）")
	fs.StringVar(&policyFlag, "update-policy", "", "文档更新策略：manual|daily|startup")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cliOptions{showHelp: true}, nil
		}
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	var command string
	var rest []string
	if fs.NArg() > 0 {
		command = fs.Arg(0)
		if err := fs.Parse(fs.Args()[1:]); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return cliOptions{showHelp: true}, nil
			}
			return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
		}
		rest = fs.Args()
	}

	switch command {
	case commandServe, commandUpdate, commandView:
		if len(rest) > 0 {
			return cliOptions{}, fmt.Errorf("命令 %s 不接受参数: %s", commandName(command), strings.Join(rest, " "))
		}
	case commandShow:
		if len(rest) == 0 {
			return cliOptions{}, errors.New("show 命令需要条目名，例如 show len 或 show fmt.Println")
		}
	case "help":
		return cliOptions{showHelp: true}, nil
	default:
		return cliOptions{}, fmt.Errorf("未知命令: %s", command)
	}

	if policyFlag != "" {
		if _, err := policy.Parse(policyFlag); err != nil {
			return cliOptions{}, err
		}
	}

	path := os.Getenv("GODOCS_MCP_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = defaultConfigPath
	}

	return cliOptions{
		configPath:   path,
		goVersion:    goVersion,
		updatePolicy: policyFlag,
		showVersion:  showVer,
		command:      command,
		args:         rest,
	}, nil
}

func commandName(command string) string {
	if command == commandServe {
		return "serve"
	}
	return command
}

// reportAcquireError 将获取失败转换为面向用户的提示。
func reportAcquireError(goVersion string, err error, logger *logrus.Logger) {
	logger.WithFields(logging.VersionFields("docs_acquire_failed", goVersion, "builtins")).
		WithError(err).Error("docs_acquire_failed")
	switch {
	case docs.IsNotFound(err):
		fmt.Fprintf(stdErr, "未找到 Go 版本 %s 的文档，请检查版本号（例如 1.21.0 或 go1.21.0）\n", goVersion)
	case errors.Is(err, docs.ErrInvalidVersion):
		fmt.Fprintf(stdErr, "版本号不合法: %s\n", goVersion)
	default:
		fmt.Fprintf(stdErr, "获取文档失败: %v\n", err)
	}
}
