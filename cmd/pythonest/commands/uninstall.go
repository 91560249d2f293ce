package commands

import (
	"fmt"

	"github.com/bbq191/pythonest/internal/interactive"
	"github.com/bbq191/pythonest/internal/interpreter"
	"github.com/spf13/cobra"
)

var uninstallYes bool

// uninstallCmd 卸载解释器命令
var uninstallCmd = &cobra.Command{
	Use:   "uninstall <version>",
	Short: "卸载指定版本的 Python (仅 Windows)",
	Long: `按显示名称 "Python <version>" 查找并卸载已安装的产品。

卸载程序在后台运行，完成后请运行 pythonest list 确认。`,
	Args: cobra.ExactArgs(1),
	RunE: runUninstall,
}

func init() {
	rootCmd.AddCommand(uninstallCmd)

	uninstallCmd.Flags().BoolVarP(&uninstallYes, "yes", "y", false, "跳过确认")
}

func runUninstall(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	version, err := parseVersion(args[0])
	if err != nil {
		return err
	}

	if !uninstallYes && interactive.IsEnabled() {
		ok, err := interactive.ConfirmAction(interactive.SurveyPrompter{}, fmt.Sprintf("确认卸载 Python %s 吗?", version))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("已取消")
			return nil
		}
	}

	launch, err := interpreter.NewUninstaller(a.runner, a.logger).Uninstall(ctx, version)
	if err != nil {
		return err
	}

	if launch.Waited {
		fmt.Printf("✅ 已卸载 Python %s\n", version)
	} else {
		fmt.Printf("🚀 卸载程序已在后台启动 (PID %d)\n", launch.PID)
	}
	return nil
}
