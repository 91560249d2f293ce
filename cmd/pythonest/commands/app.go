package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/bbq191/pythonest/internal/catalog"
	"github.com/bbq191/pythonest/internal/config"
	"github.com/bbq191/pythonest/internal/discovery"
	"github.com/bbq191/pythonest/internal/download"
	"github.com/bbq191/pythonest/internal/interactive"
	"github.com/bbq191/pythonest/internal/interpreter"
	"github.com/bbq191/pythonest/internal/mirror"
	"github.com/bbq191/pythonest/internal/platform"
	"github.com/bbq191/pythonest/internal/pyversion"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

var (
	highlight = color.New(color.FgGreen, color.Bold).SprintFunc()
	dim       = color.New(color.Faint).SprintFunc()
	warn      = color.New(color.FgYellow).SprintFunc()
	title     = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// app 命令执行时共享的依赖
type app struct {
	logger   *logrus.Logger
	store    *config.Store
	settings *config.Settings
	runner   platform.CommandRunner
}

// newApp 加载设置并组装共享依赖
func newApp() (*app, error) {
	logger := GetLogger()

	store, err := config.NewStore(configPath(), logger)
	if err != nil {
		return nil, fmt.Errorf("初始化设置失败: %w", err)
	}

	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("加载设置失败: %w", err)
	}

	return &app{
		logger:   logger,
		store:    store,
		settings: settings,
		runner:   platform.NewExecRunner(),
	}, nil
}

// commandContext 收到 Ctrl+C 时取消
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func (a *app) source() mirror.Source {
	return mirror.Current(a.settings.Source)
}

func (a *app) discoverer() *discovery.Runner {
	return discovery.NewRunner(a.settings.Search, a.runner, a.logger)
}

// discover 运行发现并把探测失败以警告形式输出
func (a *app) discover(ctx context.Context) discovery.Report {
	report := a.discoverer().Discover(ctx)
	for _, probeErr := range report.Errors {
		a.logger.Warnf("探测失败: %v", probeErr)
	}
	return report
}

func (a *app) lister() *catalog.Lister {
	return catalog.NewLister(a.source(), a.settings.Download.VerifyTLS, a.logger)
}

func (a *app) downloader() *download.Downloader {
	return download.NewDownloader(a.source(), a.settings.Download, a.logger)
}

func (a *app) picker() *interactive.VersionPicker {
	return interactive.NewVersionPicker(a.settings.Download.SelectionMode, a.logger)
}

// defaultPython 激活的解释器优先，其次是发现到的最高版本
func (a *app) defaultPython(ctx context.Context) (string, error) {
	return interpreter.DefaultPython(a.settings.Active, runtime.GOOS, a.discover(ctx))
}

// pickAvailable 交互式选择一个可安装版本
func (a *app) pickAvailable(ctx context.Context, message string) (pyversion.Version, error) {
	if !interactive.IsEnabled() {
		return pyversion.Version{}, fmt.Errorf("未指定版本，且交互模式不可用: %s", interactive.DisabledReason())
	}

	installed := a.discover(ctx).Versions()
	listing := a.lister().Available(ctx, installed, false)
	if !listing.Fresh {
		fmt.Println(warn("⚠️  " + listing.Reason + "，使用内置版本目录"))
	}
	return a.picker().Pick(message, listing.Versions)
}

// versionArg 解析位置参数中的版本号，缺省时交互选择
func (a *app) versionArg(ctx context.Context, args []string, message string) (pyversion.Version, error) {
	if len(args) == 0 {
		return a.pickAvailable(ctx, message)
	}
	return parseVersion(args[0])
}

func parseVersion(raw string) (pyversion.Version, error) {
	v, err := pyversion.Parse(raw)
	if err != nil {
		return pyversion.Version{}, fmt.Errorf("无效的版本号 %q: %w", raw, err)
	}
	return v, nil
}
