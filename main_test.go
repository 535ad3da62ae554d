package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseCLIFlagsPriority(t *testing.T) {
	t.Setenv("GODOCS_MCP_CONFIG", "/tmp/env.toml")

	opts, err := parseCLIFlags([]string{})
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if opts.configPath != "/tmp/env.toml" {
		t.Fatalf("应优先使用环境变量，得到 %s", opts.configPath)
	}

	opts, err = parseCLIFlags([]string{"--config", "/tmp/flag.toml"})
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if opts.configPath != "/tmp/flag.toml" {
		t.Fatalf("flag 应高于环境变量，得到 %s", opts.configPath)
	}
}

func TestParseCLIFlagsDefaultConfigPath(t *testing.T) {
	t.Setenv("GODOCS_MCP_CONFIG", "")

	opts, err := parseCLIFlags(nil)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if opts.configPath != defaultConfigPath {
		t.Fatalf("默认配置路径应为 %s，得到 %s", defaultConfigPath, opts.configPath)
	}
	if opts.command != commandServe {
		t.Fatalf("无命令时应启动 MCP 服务，得到 %q", opts.command)
	}
}

func TestParseCLIFlagsCommands(t *testing.T) {
	opts, err := parseCLIFlags([]string{"update", "-go-version", "1.21.0,1.22.3"})
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if opts.command != commandUpdate || opts.goVersion != "1.21.0,1.22.3" {
		t.Fatalf("命令后的标志应生效: %+v", opts)
	}

	opts, err = parseCLIFlags([]string{"-update-policy", "daily", "view"})
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if opts.command != commandView || opts.updatePolicy != "daily" {
		t.Fatalf("unexpected options: %+v", opts)
	}

	opts, err = parseCLIFlags([]string{"show", "fmt.Println"})
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if opts.command != commandShow || len(opts.args) != 1 || opts.args[0] != "fmt.Println" {
		t.Fatalf("show 参数解析错误: %+v", opts)
	}
}

func TestParseCLIFlagsRejectsInvalidInput(t *testing.T) {
	cases := map[string][]string{
		"bad policy":      {"-update-policy", "weekly"},
		"unknown command": {"serve-all"},
		"show no name":    {"show"},
		"update with arg": {"update", "extra"},
		"unknown flag":    {"-port", "80"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := parseCLIFlags(args); err == nil {
				t.Fatalf("%v 应返回错误", args)
			}
		})
	}
}

func TestParseCLIFlagsHelp(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {"--help"}, {"help"}} {
		opts, err := parseCLIFlags(args)
		if err != nil {
			t.Fatalf("%v 不应报错: %v", args, err)
		}
		if !opts.showHelp {
			t.Fatalf("%v 应请求帮助", args)
		}
	}
}

func TestRunHelpOutput(t *testing.T) {
	useBufferWriters(t)
	if code := run(cliOptions{showHelp: true}); code != 0 {
		t.Fatalf("help 模式应成功退出，得到 %d", code)
	}
	out := stdOutBuffer().String()
	for _, want := range []string{"Usage: godocs-mcp", "update", "show <name>", "-update-policy"} {
		if !strings.Contains(out, want) {
			t.Fatalf("帮助信息缺少 %q", want)
		}
	}
}

func TestRunVersionOutput(t *testing.T) {
	useBufferWriters(t)
	code := run(cliOptions{showVersion: true})
	if code != 0 {
		t.Fatalf("version 模式应成功退出，得到 %d", code)
	}
	if !strings.Contains(stdOut.(*bytes.Buffer).String(), "godocs-mcp") {
		t.Fatalf("version 输出应包含 godocs-mcp 标识")
	}
}

func TestLoadConfigAppliesOverrides(t *testing.T) {
	cfg, err := loadConfig(cliOptions{
		configPath:   configFixture(t, "valid.toml"),
		goVersion:    "go1.20.14",
		updatePolicy: "Startup",
	})
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if cfg.Global.GoVersion != "go1.20.14" {
		t.Fatalf("命令行版本应覆盖配置，得到 %s", cfg.Global.GoVersion)
	}
	if cfg.Global.UpdatePolicy != "startup" {
		t.Fatalf("策略应被标准化为小写，得到 %s", cfg.Global.UpdatePolicy)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(cliOptions{configPath: configFixture(t, "missing.toml")}); err == nil {
		t.Fatalf("显式指定的缺失配置应报错")
	}
}

func TestRunUpdateOffline(t *testing.T) {
	cacheRoot := t.TempDir()
	configPath := writeConfigFile(t, offlineConfig(cacheRoot, ""))

	useBufferWriters(t)
	code := run(cliOptions{
		configPath: configPath,
		goVersion:  "1.21.0, go1.22.3",
		command:    commandUpdate,
	})
	if code != 0 {
		t.Fatalf("离线更新应成功，得到 %d，stderr=%s", code, stdErrBuffer().String())
	}

	out := stdOutBuffer().String()
	for _, v := range []string{"1.21.0", "go1.22.3"} {
		if !strings.Contains(out, "Successfully updated documentation for Go "+v) {
			t.Fatalf("缺少 %s 的成功提示: %s", v, out)
		}
	}
	for _, v := range []string{"1.21.0", "1.22.3"} {
		for _, name := range []string{"metadata.json", "builtin-functions.json"} {
			if _, err := os.Stat(filepath.Join(cacheRoot, v, name)); err != nil {
				t.Fatalf("%s/%s 应被写入: %v", v, name, err)
			}
		}
	}
}

func TestRunUpdateReportsMissingVersion(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(upstream.Close)

	configPath := writeConfigFile(t, offlineConfig(t.TempDir(), upstream.URL+"/builtin@{version}"))

	useBufferWriters(t)
	code := run(cliOptions{
		configPath: configPath,
		goVersion:  "9.99.0",
		command:    commandUpdate,
	})
	if code != 1 {
		t.Fatalf("不存在的版本应返回 1，得到 %d", code)
	}
	if !strings.Contains(stdErrBuffer().String(), "请检查版本号") {
		t.Fatalf("stderr 应提示检查版本号: %s", stdErrBuffer().String())
	}
}

func TestRunShowBuiltinOffline(t *testing.T) {
	configPath := writeConfigFile(t, offlineConfig(t.TempDir(), ""))

	useBufferWriters(t)
	code := run(cliOptions{configPath: configPath, command: commandShow, args: []string{"len"}})
	if code != 0 {
		t.Fatalf("show len 应成功，得到 %d，stderr=%s", code, stdErrBuffer().String())
	}
	if !strings.Contains(stdOutBuffer().String(), "len") {
		t.Fatalf("输出应包含 len: %s", stdOutBuffer().String())
	}
}

func TestRunShowUnknownItem(t *testing.T) {
	configPath := writeConfigFile(t, offlineConfig(t.TempDir(), ""))

	useBufferWriters(t)
	code := run(cliOptions{configPath: configPath, command: commandShow, args: []string{"no.SuchThing"}})
	if code != 1 {
		t.Fatalf("未知条目应返回 1，得到 %d", code)
	}
	if !strings.Contains(stdErrBuffer().String(), "未找到条目") {
		t.Fatalf("stderr 应说明未找到: %s", stdErrBuffer().String())
	}
}

func TestRunShowSuggestsSimilarItems(t *testing.T) {
	configPath := writeConfigFile(t, offlineConfig(t.TempDir(), ""))

	useBufferWriters(t)
	code := run(cliOptions{configPath: configPath, command: commandShow, args: []string{"prntln"}})
	if code != 1 {
		t.Fatalf("未知条目应返回 1，得到 %d", code)
	}
	errOut := stdErrBuffer().String()
	if !strings.Contains(errOut, "相近条目") || !strings.Contains(errOut, "fmt.Println") {
		t.Fatalf("stderr 应给出模糊建议: %s", errOut)
	}
}

func TestSplitVersions(t *testing.T) {
	got := splitVersions(" 1.21.0,,go1.22.3 , ")
	if len(got) != 2 || got[0] != "1.21.0" || got[1] != "go1.22.3" {
		t.Fatalf("unexpected versions: %v", got)
	}
}

// offlineConfig 生成不访问外网的配置；docURL 为空表示只使用内置目录。
func offlineConfig(cacheRoot, docURL string) string {
	return fmt.Sprintf(`
LogLevel = "warn"
CacheRoot = %q
GoVersion = "1.21.0"
UpdatePolicy = "manual"
UpstreamTimeout = "5s"
BuiltinDocURL = %q
Mirrors = []
`, cacheRoot, docURL)
}
