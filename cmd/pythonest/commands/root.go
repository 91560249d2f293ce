package commands

import (
	"github.com/bbq191/pythonest/internal/mirror"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version 构建时通过 -ldflags 注入
var Version = "0.1.0"

var (
	cfgFile    string
	verbose    bool
	rootLogger *logrus.Logger
)

// rootCmd 是应用的根命令
var rootCmd = &cobra.Command{
	Use:   "pythonest",
	Short: "Python 版本管理工具",
	Long: `管理本机的 Python 解释器：发现已安装版本、从官网或国内镜像下载安装、
切换当前使用的版本，并管理包与虚拟环境。

支持功能：
  • 注册表 / py 启动器 / PATH / 自定义目录多路发现
  • 官网与华为云、清华、阿里云、npmmirror 镜像
  • 断点安全的下载缓存
  • pip 包管理与 PyPI 搜索
  • 虚拟环境管理`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger()
		mirror.UserAgent = "pythonest/" + Version
	},
}

// Execute 执行根命令
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径 (默认 <config home>/pythonest/settings.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出")

	// 绑定到 viper
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig 允许通过环境变量覆盖全局参数
func initConfig() {
	viper.SetEnvPrefix("PYTHONEST")
	viper.AutomaticEnv()
}

// initLogger 初始化日志系统
func initLogger() {
	rootLogger = logrus.New()

	// 设置日志级别
	if verbose || viper.GetBool("verbose") {
		rootLogger.SetLevel(logrus.DebugLevel)
	} else {
		rootLogger.SetLevel(logrus.InfoLevel)
	}

	// 设置日志格式
	rootLogger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: false,
		FullTimestamp:    true,
		TimestampFormat:  "15:04:05",
	})

	rootLogger.Debug("日志系统初始化完成")
}

// GetLogger 获取日志实例
func GetLogger() *logrus.Logger {
	if rootLogger == nil {
		initLogger()
	}
	return rootLogger
}

// configPath 命令行参数优先，其次是环境变量 PYTHONEST_CONFIG
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return viper.GetString("config")
}
