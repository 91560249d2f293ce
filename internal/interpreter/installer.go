package interpreter

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/bbq191/pythonest/internal/platform"
	"github.com/bbq191/pythonest/internal/pyversion"
	"github.com/sirupsen/logrus"
)

// windowsSilentArgs Windows 安装程序的静默安装参数
var windowsSilentArgs = []string{"/quiet", "InstallAllUsers=1", "PrependPath=1"}

// Installer 运行平台安装程序
type Installer struct {
	runner     platform.CommandRunner
	downloader Downloader
	goos       string
	logger     *logrus.Logger
}

// NewInstaller 创建安装器
func NewInstaller(runner platform.CommandRunner, downloader Downloader, logger *logrus.Logger) *Installer {
	return &Installer{
		runner:     runner,
		downloader: downloader,
		goos:       runtime.GOOS,
		logger:     logger,
	}
}

// Install 安装指定版本；没有本地安装包时先下载
func (i *Installer) Install(ctx context.Context, version pyversion.Version, opts InstallOptions) (Launch, error) {
	if i.goos != "windows" && i.goos != "darwin" {
		return Launch{}, fmt.Errorf("安装 Python %s: %w", version, ErrUnsupported)
	}

	file := opts.File
	if file == "" {
		result, err := i.downloader.Download(ctx, version, opts.Progress)
		if err != nil {
			return Launch{}, fmt.Errorf("下载 Python %s 失败: %w", version, err)
		}
		file = result.Path
	}
	if _, err := os.Stat(file); err != nil {
		return Launch{}, fmt.Errorf("安装包不可用: %w", err)
	}

	command, args := i.installCommand(file, opts.Interactive)
	launch := Launch{Command: command, Args: args}

	if opts.Interactive {
		i.logger.Infof("启动安装向导: %s", launch)
		if _, _, err := i.runner.Output(ctx, command, args...); err != nil {
			return launch, fmt.Errorf("安装程序执行失败，可能需要管理员权限: %w", err)
		}
		launch.Waited = true
		return launch, nil
	}

	i.logger.Infof("静默安装 Python %s: %s", version, launch)
	pid, err := i.runner.Start(command, args...)
	if err != nil {
		return launch, fmt.Errorf("启动安装程序失败，可能需要管理员权限: %w", err)
	}
	launch.PID = pid
	return launch, nil
}

func (i *Installer) installCommand(file string, interactive bool) (string, []string) {
	if i.goos == "darwin" {
		if interactive {
			return "open", []string{"-W", file}
		}
		return "installer", []string{"-pkg", file, "-target", "/"}
	}

	if interactive {
		return file, nil
	}
	args := make([]string, len(windowsSilentArgs))
	copy(args, windowsSilentArgs)
	return file, args
}
