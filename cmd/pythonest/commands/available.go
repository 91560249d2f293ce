package commands

import (
	"fmt"
	"strings"

	"github.com/bbq191/pythonest/internal/pyversion"
	"github.com/spf13/cobra"
)

// defaultAvailableLimit 不带 --all 时最多显示的版本数
const defaultAvailableLimit = 20

var (
	availableAll        bool
	availableGrouped    bool
	availablePrerelease bool
)

// availableCmd 列出可安装版本
var availableCmd = &cobra.Command{
	Use:   "available",
	Short: "列出当前下载源可安装的版本",
	Long: `从当前下载源获取可安装的版本列表 (已安装的版本除外)。

下载源不可达或页面无法解析时，使用内置的版本目录并给出提示。

示例:
  pythonest available              # 最新的 20 个版本
  pythonest available --all        # 全部版本
  pythonest available --grouped    # 按 major.minor 分组
  pythonest available --prerelease # 同时列出预发布版本`,
	RunE: runAvailable,
}

func init() {
	rootCmd.AddCommand(availableCmd)

	availableCmd.Flags().BoolVarP(&availableAll, "all", "a", false, "显示全部版本")
	availableCmd.Flags().BoolVarP(&availableGrouped, "grouped", "g", false, "按 major.minor 分组显示")
	availableCmd.Flags().BoolVar(&availablePrerelease, "prerelease", false, "包含预发布版本")
}

func runAvailable(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	installed := a.discover(ctx).Versions()
	listing := a.lister().Available(ctx, installed, availablePrerelease)

	fmt.Printf("下载源: %s (%s)\n", listing.Source.Name, listing.Source.URL)
	if !listing.Fresh {
		fmt.Println(warn("⚠️  " + listing.Reason + "，使用内置版本目录"))
	}
	fmt.Println()

	if availableGrouped {
		for _, group := range listing.Groups() {
			fmt.Printf("%s  %s\n", title(group.Key), strings.Join(pyversion.Strings(group.Versions), " "))
		}
	} else {
		versions := append([]pyversion.Version(nil), listing.Versions...)
		pyversion.SortDesc(versions)
		if !availableAll && len(versions) > defaultAvailableLimit {
			versions = versions[:defaultAvailableLimit]
		}
		for _, v := range versions {
			fmt.Println("  " + v.String())
		}
		if len(versions) < len(listing.Versions) {
			fmt.Println(dim(fmt.Sprintf("  ... 共 %d 个版本，使用 --all 查看全部", len(listing.Versions))))
		}
	}

	if len(listing.Prereleases) > 0 {
		fmt.Println()
		fmt.Println(title("预发布版本:"))
		fmt.Println("  " + strings.Join(listing.Prereleases, " "))
	}
	return nil
}
