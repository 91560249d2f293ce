package commands

import (
	"fmt"

	"github.com/bbq191/pythonest/internal/mirror"
	"github.com/bbq191/pythonest/internal/platform"
	"github.com/spf13/cobra"
)

// infoCmd 显示系统信息命令
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "显示系统、下载源和设置信息",
	Long: `显示当前系统的详细信息，包括：

• 操作系统和架构
• PowerShell 版本信息
• Linux 发行版信息
• 当前下载源与全部内置镜像
• 设置文件位置与当前激活的版本

该命令主要用于诊断和了解当前运行环境。`,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	a.logger.Info("正在检测平台信息...")
	info, err := platform.NewDetector(a.runner).DetectPlatform(ctx)
	if err != nil {
		return fmt.Errorf("平台检测失败: %w", err)
	}

	fmt.Println(title("=== 平台信息 ==="))
	fmt.Println(info.String())
	fmt.Println()

	fmt.Println(title("=== 功能支持 ==="))
	fmt.Printf("PowerShell 支持: %v\n", info.SupportsPowerShell())
	fmt.Printf("安装/卸载解释器: %v\n", info.SupportsInstall())
	fmt.Printf("切换版本 (修改 PATH): %v\n", info.SupportsActivate())
	fmt.Println()

	current := a.source()
	fmt.Println(title("=== 下载源 ==="))
	for i, source := range mirror.Builtins() {
		line := fmt.Sprintf("[%d] %s  %s", i, source.Name, source.URL)
		if !a.settings.Source.UseCustom && source.URL == current.URL {
			line = highlight(line + "  (当前)")
		}
		fmt.Println(line)
	}
	if a.settings.Source.UseCustom {
		fmt.Println(highlight(fmt.Sprintf("[*] %s  %s  (当前)", current.Name, current.URL)))
	}
	fmt.Println()

	fmt.Println(title("=== 设置 ==="))
	fmt.Printf("设置文件: %s\n", a.store.Path())
	fmt.Printf("下载目录: %s\n", a.settings.Download.Directory)
	if a.settings.Active.Version != "" {
		fmt.Printf("当前激活: %s (%s)\n", highlight(a.settings.Active.Version), a.settings.Active.Path)
	} else {
		fmt.Println("当前激活: " + dim("无"))
	}

	a.logger.Debug("平台信息检测完成")
	return nil
}
