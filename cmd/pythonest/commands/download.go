package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/bbq191/pythonest/internal/download"
	"github.com/bbq191/pythonest/internal/interpreter"
	"github.com/spf13/cobra"
)

// downloadCmd 下载安装包
var downloadCmd = &cobra.Command{
	Use:   "download [version]",
	Short: "下载指定版本的安装包",
	Long: `从当前下载源下载安装包到下载目录，已下载的文件直接复用。

未指定版本时进入交互式版本选择。设置 download.auto_install 为 true 时，
下载完成后自动安装。

示例:
  pythonest download 3.12.7
  pythonest download`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	version, err := a.versionArg(ctx, args, "选择要下载的版本:")
	if err != nil {
		return err
	}

	source := a.source()
	a.logger.Infof("📥 从 %s 下载 Python %s", source.Name, version)

	progress, finish := download.BarReporter(os.Stderr, fmt.Sprintf("Python %s", version))
	result, err := a.downloader().Download(ctx, version, progress)
	finish()
	if err != nil {
		return err
	}

	switch {
	case result.Cached:
		fmt.Printf("✅ 已存在: %s\n", result.Path)
	case result.FellBack:
		fmt.Printf("✅ 镜像下载失败，已从官网下载: %s\n", result.Path)
	default:
		fmt.Printf("✅ 下载完成: %s\n", result.Path)
	}

	if !a.settings.Download.AutoInstall {
		return nil
	}
	err = installVersion(ctx, a, version, result.Path, !a.settings.Download.SilentInstall)
	if errors.Is(err, interpreter.ErrUnsupported) {
		a.logger.Warnf("当前平台不支持自动安装，安装包已保存: %s", result.Path)
		return nil
	}
	return err
}
