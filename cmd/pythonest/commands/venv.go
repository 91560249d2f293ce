package commands

import (
	"context"
	"fmt"

	"github.com/bbq191/pythonest/internal/pyversion"
	"github.com/bbq191/pythonest/internal/venv"
	"github.com/spf13/cobra"
)

var venvPython string

// venvCmd 虚拟环境管理命令
var venvCmd = &cobra.Command{
	Use:   "venv",
	Short: "管理虚拟环境",
	Long: `在统一目录 (<data home>/pythonest/venvs) 下管理虚拟环境。

示例:
  pythonest venv create web                  # 使用默认解释器创建
  pythonest venv create legacy --python 3.9.13
  pythonest venv list
  pythonest venv install web requests
  pythonest venv packages web
  pythonest venv delete web`,
}

var venvListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "列出虚拟环境",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, manager, err := newVenvManager()
		if err != nil {
			return err
		}
		envs, err := manager.List()
		if err != nil {
			return err
		}
		if len(envs) == 0 {
			fmt.Printf("%s 下没有虚拟环境\n", manager.Base())
			return nil
		}
		a.logger.Debugf("虚拟环境目录: %s", manager.Base())
		for _, env := range envs {
			fmt.Printf("  %-20s %s\n", highlight(env.Name), dim(env.Path))
		}
		return nil
	},
}

var venvCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "创建虚拟环境",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, manager, err := newVenvManager()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		python, err := resolvePython(ctx, a, venvPython)
		if err != nil {
			return err
		}
		env, err := manager.Create(ctx, args[0], python)
		if err != nil {
			return err
		}
		fmt.Printf("✅ 已创建虚拟环境 %s: %s\n", highlight(env.Name), env.Path)
		return nil
	},
}

var venvDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "删除虚拟环境",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, manager, err := newVenvManager()
		if err != nil {
			return err
		}
		if err := manager.Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("✅ 已删除虚拟环境 %s\n", args[0])
		return nil
	},
}

var venvPackagesCmd = &cobra.Command{
	Use:   "packages <name>",
	Short: "列出虚拟环境中的包",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, manager, err := newVenvManager()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		lines, err := manager.Packages(ctx, args[0])
		if err != nil {
			return err
		}
		for _, line := range lines {
			fmt.Println(line)
		}
		return nil
	},
}

var venvInstallCmd = &cobra.Command{
	Use:   "install <name> <package>...",
	Short: "在虚拟环境中安装包",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, manager, err := newVenvManager()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		for _, pkg := range args[1:] {
			if err := manager.Install(ctx, args[0], pkg); err != nil {
				return err
			}
			fmt.Printf("✅ %s: 已安装 %s\n", args[0], pkg)
		}
		return nil
	},
}

var venvUninstallCmd = &cobra.Command{
	Use:   "uninstall <name> <package>...",
	Short: "从虚拟环境中卸载包",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, manager, err := newVenvManager()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		for _, pkg := range args[1:] {
			if err := manager.Uninstall(ctx, args[0], pkg); err != nil {
				return err
			}
			fmt.Printf("✅ %s: 已卸载 %s\n", args[0], pkg)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(venvCmd)
	venvCmd.AddCommand(venvListCmd, venvCreateCmd, venvDeleteCmd, venvPackagesCmd, venvInstallCmd, venvUninstallCmd)

	venvCreateCmd.Flags().StringVarP(&venvPython, "python", "p", "", "解释器版本号或路径 (默认使用当前激活的解释器)")
}

func newVenvManager() (*app, *venv.Manager, error) {
	a, err := newApp()
	if err != nil {
		return nil, nil, err
	}
	manager, err := venv.NewManager("", a.runner, a.logger)
	if err != nil {
		return nil, nil, err
	}
	return a, manager, nil
}

// resolvePython 把版本号或路径解析为解释器路径，为空时使用默认解释器
func resolvePython(ctx context.Context, a *app, target string) (string, error) {
	if target == "" {
		return a.defaultPython(ctx)
	}

	version, err := pyversion.Parse(target)
	if err != nil {
		// 不是版本号，按路径处理
		return target, nil
	}

	record, ok := a.discover(ctx).Find(version)
	if !ok || record.Executable == "" {
		return "", fmt.Errorf("未安装 Python %s，可先运行 pythonest install %s", version, version)
	}
	return record.Executable, nil
}
