package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// listCmd 列出已安装版本
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "列出本机已安装的 Python 版本",
	Long: `按设置中启用的搜索方式发现已安装的解释器：

• Windows 注册表 (HKLM / HKCU)
• py 启动器 (py -0p)
• PATH 中的 python / python3 / python3.N
• 自定义目录

当前激活的版本会被高亮显示。`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	report := a.discover(ctx)
	if len(report.Records) == 0 {
		fmt.Println("未发现已安装的 Python 版本")
		return nil
	}

	fmt.Printf("已安装 %d 个版本:\n", len(report.Records))
	for _, record := range report.Records {
		marker := "  "
		version := record.Version.String()
		if version == a.settings.Active.Version {
			marker = "* "
			version = highlight(version)
		}
		fmt.Printf("%s%-10s %-10s %s\n", marker, version, dim(record.Source), record.Executable)
	}

	if report.HasErrors() {
		fmt.Println(warn(fmt.Sprintf("\n⚠️  %d 个探测失败，结果可能不完整 (使用 -v 查看详情)", len(report.Errors))))
	}
	return nil
}
