package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/bbq191/pythonest/internal/interactive"
	"github.com/bbq191/pythonest/internal/packages"
	"github.com/bbq191/pythonest/internal/venv"
	"github.com/spf13/cobra"
)

var (
	pkgPython      string
	pkgVenv        string
	pkgParallel    bool
	pkgMaxWorkers  int
	pkgForce       bool
	pkgDryRun      bool
	pkgQuiet       bool
	pkgSearchLimit int
	pkgSearchPick  bool
)

// pkgCmd pip 包管理命令
var pkgCmd = &cobra.Command{
	Use:   "pkg",
	Short: "管理解释器或虚拟环境中的包",
	Long: `通过 <python> -m pip 管理包，默认作用于当前激活的解释器。

使用 --python 指定版本号或解释器路径，使用 --venv 指定虚拟环境。

示例:
  pythonest pkg search requests
  pythonest pkg search http -i           # 从搜索结果中选择并安装
  pythonest pkg info requests
  pythonest pkg install numpy pandas --parallel
  pythonest pkg list --venv web
  pythonest pkg outdated
  pythonest pkg upgrade                  # 升级全部可升级的包`,
}

var pkgSearchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "在 PyPI 上搜索包",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		results, err := packages.NewPyPI("", a.logger).Search(ctx, strings.Join(args, " "), pkgSearchLimit)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("没有找到匹配的包")
			return nil
		}

		if !pkgSearchPick {
			for _, result := range results {
				fmt.Printf("%-30s %-12s %s\n", highlight(result.Name), dim(result.Version), result.Description)
			}
			return nil
		}

		if !interactive.IsEnabled() {
			return fmt.Errorf("交互模式不可用: %s", interactive.DisabledReason())
		}
		names, err := interactive.PickPackages(interactive.SurveyPrompter{}, results)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("未选择任何包")
			return nil
		}
		return installPackages(ctx, a, names)
	},
}

var pkgInfoCmd = &cobra.Command{
	Use:   "info <package>",
	Short: "显示 PyPI 上的包详情",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		info, err := packages.NewPyPI("", a.logger).Info(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s %s\n", title(info.Name), highlight(info.Version))
		fmt.Println(info.Summary)
		fmt.Println()
		printField("作者", info.Author)
		printField("许可证", info.License)
		printField("Python 要求", info.RequiresPython)
		printField("项目地址", info.ProjectURL)
		if len(info.Releases) > 0 {
			recent := info.Releases
			if len(recent) > 10 {
				recent = recent[:10]
			}
			printField("最近版本", strings.Join(recent, " "))
		}
		return nil
	},
}

var pkgInstallCmd = &cobra.Command{
	Use:   "install <package>...",
	Short: "安装包",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		return installPackages(ctx, a, args)
	},
}

var pkgUninstallCmd = &cobra.Command{
	Use:   "uninstall <package>...",
	Short: "卸载包",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		pip, err := pipTarget(ctx, a)
		if err != nil {
			return err
		}
		inst := packages.NewInstaller(pip, a.logger)
		for _, name := range args {
			if err := inst.Uninstall(ctx, name); err != nil {
				return err
			}
			fmt.Printf("✅ 已卸载 %s\n", name)
		}
		return nil
	},
}

var pkgListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "列出已安装的包",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		pip, err := pipTarget(ctx, a)
		if err != nil {
			return err
		}
		pkgs, err := pip.List(ctx)
		if err != nil {
			return err
		}
		fmt.Println(dim(pip.Python()))
		for _, pkg := range pkgs {
			fmt.Printf("  %-30s %s\n", pkg.Name, pkg.Version)
		}
		return nil
	},
}

var pkgOutdatedCmd = &cobra.Command{
	Use:   "outdated",
	Short: "列出可升级的包",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		pip, err := pipTarget(ctx, a)
		if err != nil {
			return err
		}
		pkgs, err := pip.Outdated(ctx)
		if err != nil {
			return err
		}
		if len(pkgs) == 0 {
			fmt.Println("✅ 所有包都是最新版本")
			return nil
		}
		for _, pkg := range pkgs {
			fmt.Printf("  %-30s %s -> %s\n", pkg.Name, pkg.Version, highlight(pkg.LatestVersion))
		}
		return nil
	},
}

var pkgUpgradeCmd = &cobra.Command{
	Use:   "upgrade [package]...",
	Short: "升级包，未指定时升级全部可升级的包",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		names := args
		if len(names) == 0 {
			pip, err := pipTarget(ctx, a)
			if err != nil {
				return err
			}
			outdated, err := pip.Outdated(ctx)
			if err != nil {
				return err
			}
			for _, pkg := range outdated {
				names = append(names, pkg.Name)
			}
			if len(names) == 0 {
				fmt.Println("✅ 所有包都是最新版本")
				return nil
			}
		}

		return runPackageBatch(ctx, a, names, true)
	},
}

func init() {
	rootCmd.AddCommand(pkgCmd)
	pkgCmd.AddCommand(pkgSearchCmd, pkgInfoCmd, pkgInstallCmd, pkgUninstallCmd, pkgListCmd, pkgOutdatedCmd, pkgUpgradeCmd)

	pkgCmd.PersistentFlags().StringVar(&pkgPython, "python", "", "解释器版本号或路径")
	pkgCmd.PersistentFlags().StringVar(&pkgVenv, "venv", "", "虚拟环境名称")

	for _, c := range []*cobra.Command{pkgInstallCmd, pkgUpgradeCmd, pkgSearchCmd} {
		c.Flags().BoolVarP(&pkgParallel, "parallel", "p", false, "并行安装")
		c.Flags().IntVarP(&pkgMaxWorkers, "max-workers", "w", 0, "最大并行工作数 (0=自动)")
		c.Flags().BoolVarP(&pkgForce, "force", "f", false, "已安装也重新安装，失败后继续")
		c.Flags().BoolVar(&pkgDryRun, "dry-run", false, "仅显示将要执行的操作")
		c.Flags().BoolVarP(&pkgQuiet, "quiet", "q", false, "静默模式，不显示进度条")
	}

	pkgSearchCmd.Flags().IntVarP(&pkgSearchLimit, "limit", "n", 20, "最多显示的结果数")
	pkgSearchCmd.Flags().BoolVarP(&pkgSearchPick, "interactive", "i", false, "从结果中选择并安装")
}

// pipTarget 按 --venv / --python / 默认解释器的顺序确定目标
func pipTarget(ctx context.Context, a *app) (*packages.PipManager, error) {
	if pkgVenv != "" {
		manager, err := venv.NewManager("", a.runner, a.logger)
		if err != nil {
			return nil, err
		}
		return manager.Pip(pkgVenv)
	}

	python, err := resolvePython(ctx, a, pkgPython)
	if err != nil {
		return nil, err
	}
	return packages.NewPipManager(python, a.runner, a.logger), nil
}

func installPackages(ctx context.Context, a *app, names []string) error {
	return runPackageBatch(ctx, a, names, false)
}

// runPackageBatch 串行或并行安装一批包并汇总结果
func runPackageBatch(ctx context.Context, a *app, names []string, upgrade bool) error {
	pip, err := pipTarget(ctx, a)
	if err != nil {
		return err
	}

	opts := packages.InstallOptions{
		Force:      pkgForce,
		Upgrade:    upgrade,
		DryRun:     pkgDryRun,
		Quiet:      pkgQuiet,
		Parallel:   pkgParallel,
		MaxWorkers: pkgMaxWorkers,
	}

	names = packages.UniqueNames(names)
	inst := packages.NewInstaller(pip, a.logger)
	a.logger.Infof("📦 准备安装 %d 个包到 %s: %v", len(names), pip.Python(), names)

	var results []*packages.InstallResult
	if opts.Parallel && len(names) > 1 {
		workers := opts.MaxWorkers
		if workers <= 0 {
			workers = packages.GetOptimalWorkerCount(len(names))
		}
		results, err = packages.NewParallelInstaller(inst, workers).InstallPackagesParallel(ctx, names, opts)
	} else {
		results, err = inst.InstallPackages(ctx, names, opts)
	}
	if err != nil {
		return err
	}

	failed := 0
	for _, result := range results {
		if !result.Success {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d 个包安装失败", failed)
	}
	return nil
}

func printField(name, value string) {
	if value == "" {
		return
	}
	fmt.Printf("%-12s %s\n", name+":", value)
}
