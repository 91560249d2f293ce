package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bbq191/pythonest/internal/config"
	"github.com/spf13/cobra"
)

// configCmd 设置管理命令
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "查看和修改设置",
	Long: `查看和修改 settings.json 中的设置。

键使用点分形式，例如 source.index、download.verify_tls、search.custom_paths。
列表类型的值使用系统路径分隔符分隔。

示例:
  pythonest config show
  pythonest config set source.index 1
  pythonest config set download.selection_mode list
  pythonest config get search.launcher
  pythonest config keys`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "显示全部设置",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		settings, err := store.Load()
		if err != nil {
			return fmt.Errorf("加载设置失败，可用 config set 修正: %w", err)
		}
		data, err := json.MarshalIndent(settings, "", "  ")
		if err != nil {
			return fmt.Errorf("序列化设置失败: %w", err)
		}
		fmt.Println(string(data))
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "显示单个设置项",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		value, err := store.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "修改单个设置项",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.Set(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("✅ %s = %s\n", args[0], highlight(args[1]))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "显示设置文件路径",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		fmt.Println(store.Path())
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "列出全部设置项及默认值",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults := config.Defaults()
		data, err := json.Marshal(defaults)
		if err != nil {
			return err
		}
		var tree map[string]map[string]interface{}
		if err := json.Unmarshal(data, &tree); err != nil {
			return err
		}
		for _, key := range config.Keys() {
			fmt.Printf("%-28s %v\n", key, dim(lookupDotted(tree, key)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configGetCmd, configSetCmd, configPathCmd, configKeysCmd)
}

// openStore 直接打开设置存储，不预先校验，设置文件无效时仍可修正
func openStore() (*config.Store, error) {
	store, err := config.NewStore(configPath(), GetLogger())
	if err != nil {
		return nil, fmt.Errorf("初始化设置失败: %w", err)
	}
	return store, nil
}

// lookupDotted 按 group.field 取值
func lookupDotted(tree map[string]map[string]interface{}, key string) interface{} {
	group, field, ok := strings.Cut(key, ".")
	if !ok {
		return nil
	}
	return tree[group][field]
}
