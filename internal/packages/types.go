package packages

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Package 已安装的包
type Package struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	LatestVersion string `json:"latest_version,omitempty"`
}

// PackageManager 针对单个解释器的包管理接口
type PackageManager interface {
	// Name 返回包管理器名称
	Name() string

	// IsAvailable 检查包管理器是否可用
	IsAvailable(ctx context.Context) bool

	// Install 安装单个包，opts.Upgrade 升级到最新版本，opts.Force 强制重新安装
	Install(ctx context.Context, packageName string, opts InstallOptions) error

	// Uninstall 卸载单个包
	Uninstall(ctx context.Context, packageName string) error

	// List 列出已安装的包
	List(ctx context.Context) ([]Package, error)

	// Outdated 列出可升级的包
	Outdated(ctx context.Context) ([]Package, error)

	// IsInstalled 检查包是否已安装
	IsInstalled(ctx context.Context, packageName string) bool
}

// InstallOptions 安装选项
type InstallOptions struct {
	Force      bool // 已安装也重新安装，批量安装时失败后继续
	Upgrade    bool // 升级到最新版本
	DryRun     bool // 仅显示将要执行的操作
	Quiet      bool // 静默模式，不显示进度条
	Parallel   bool // 启用并行安装
	MaxWorkers int  // 最大并行工作数
}

// InstallResult 安装结果
type InstallResult struct {
	PackageName string
	Manager     string
	Success     bool
	Skipped     bool // 是否跳过安装（包已存在）
	Error       error
	Duration    float64 // 安装耗时（秒）
}

// Installer 批量安装编排。
// pip 不对 site-packages 加锁，同一解释器上的安装通过 slot 串行执行。
type Installer struct {
	manager PackageManager
	logger  *logrus.Logger
	slot    chan struct{}
}

// NewInstaller 创建新的安装器实例
func NewInstaller(manager PackageManager, logger *logrus.Logger) *Installer {
	return &Installer{
		manager: manager,
		logger:  logger,
		slot:    make(chan struct{}, 1),
	}
}
