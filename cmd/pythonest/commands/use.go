package commands

import (
	"fmt"

	"github.com/bbq191/pythonest/internal/interactive"
	"github.com/bbq191/pythonest/internal/interpreter"
	"github.com/bbq191/pythonest/internal/pyversion"
	"github.com/spf13/cobra"
)

// useCmd 切换当前使用的版本
var useCmd = &cobra.Command{
	Use:   "use [version]",
	Short: "切换当前使用的 Python 版本 (仅 Windows)",
	Long: `把指定版本的安装目录及其 Scripts 目录放到 PATH 最前面，并移除其他
Python 安装目录。修改同时写入用户环境变量，新开的终端生效。

未指定版本时从已安装的版本中交互选择。`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUse,
}

func init() {
	rootCmd.AddCommand(useCmd)
}

func runUse(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	discoverer := a.discoverer()

	var version pyversion.Version
	if len(args) == 0 {
		if !interactive.IsEnabled() {
			return fmt.Errorf("未指定版本，且交互模式不可用: %s", interactive.DisabledReason())
		}
		version, err = a.picker().Pick("选择要使用的版本:", discoverer.Versions(ctx))
	} else {
		version, err = parseVersion(args[0])
	}
	if err != nil {
		return err
	}

	activator := interpreter.NewActivator(a.runner, a.store, interpreter.NewLocator(discoverer), a.logger)
	activation, err := activator.Activate(ctx, version)
	if err != nil {
		return err
	}

	fmt.Printf("✅ 已切换到 Python %s (%s)\n", highlight(activation.Version), activation.InstallDir)
	if !activation.Persisted {
		fmt.Println(warn(fmt.Sprintf("⚠️  仅对当前进程生效，写入用户 PATH 失败: %v", activation.PersistErr)))
	} else {
		fmt.Println("新开的终端中生效")
	}
	return nil
}
