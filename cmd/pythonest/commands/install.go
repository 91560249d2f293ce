package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/bbq191/pythonest/internal/download"
	"github.com/bbq191/pythonest/internal/interpreter"
	"github.com/bbq191/pythonest/internal/pyversion"
	"github.com/spf13/cobra"
)

var (
	installInteractive bool
	installFile        string
)

// installCmd 安装解释器命令
var installCmd = &cobra.Command{
	Use:   "install [version]",
	Short: "下载并安装指定版本的 Python",
	Long: `下载 (或复用已下载的) 安装包并运行平台安装程序。

Windows 默认静默安装 (/quiet InstallAllUsers=1 PrependPath=1)，macOS 使用
installer -pkg。静默安装只保证安装程序已启动，完成后请运行 pythonest list 确认。

示例:
  pythonest install 3.12.7                 # 静默安装
  pythonest install 3.12.7 -i              # 打开安装向导
  pythonest install 3.12.7 --file ./py.exe # 使用本地安装包
  pythonest install                        # 交互式选择版本`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)

	installCmd.Flags().BoolVarP(&installInteractive, "interactive", "i", false, "运行安装向导而不是静默安装")
	installCmd.Flags().StringVar(&installFile, "file", "", "使用本地安装包")
}

func runInstall(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	version, err := a.versionArg(ctx, args, "选择要安装的版本:")
	if err != nil {
		return err
	}

	interactiveRun := installInteractive || !a.settings.Download.SilentInstall
	return installVersion(ctx, a, version, installFile, interactiveRun)
}

// installVersion 安装并报告结果，file 为空时先下载
func installVersion(ctx context.Context, a *app, version pyversion.Version, file string, interactiveRun bool) error {
	opts := interpreter.InstallOptions{File: file, Interactive: interactiveRun}

	var finish func()
	if file == "" {
		opts.Progress, finish = download.BarReporter(os.Stderr, fmt.Sprintf("Python %s", version))
	}

	installer := interpreter.NewInstaller(a.runner, a.downloader(), a.logger)
	launch, err := installer.Install(ctx, version, opts)
	if finish != nil {
		finish()
	}
	if errors.Is(err, interpreter.ErrUnsupported) {
		return fmt.Errorf("%w，请使用系统包管理器或从源码安装", err)
	}
	if err != nil {
		return err
	}

	if launch.Waited {
		fmt.Printf("✅ 安装程序已退出: %s\n", launch)
	} else {
		fmt.Printf("🚀 安装程序已在后台启动 (PID %d)，完成后运行 %s 确认\n", launch.PID, highlight("pythonest list"))
	}
	return nil
}
