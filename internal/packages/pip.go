package packages

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bbq191/pythonest/internal/platform"
	"github.com/sirupsen/logrus"
)

// PipManager 通过 `<python> -m pip` 管理指定解释器的包
type PipManager struct {
	python string
	runner platform.CommandRunner
	logger *logrus.Logger
}

// NewPipManager 创建 pip 包管理器
func NewPipManager(python string, runner platform.CommandRunner, logger *logrus.Logger) *PipManager {
	return &PipManager{
		python: python,
		runner: runner,
		logger: logger,
	}
}

// Name 返回包管理器名称
func (m *PipManager) Name() string {
	return "pip"
}

// Python 返回解释器路径
func (m *PipManager) Python() string {
	return m.python
}

// IsAvailable 检查解释器是否带有 pip
func (m *PipManager) IsAvailable(ctx context.Context) bool {
	_, err := m.pip(ctx, "--version")
	return err == nil
}

// Install 安装包
func (m *PipManager) Install(ctx context.Context, packageName string, opts InstallOptions) error {
	args := []string{"install"}
	if opts.Upgrade {
		args = append(args, "--upgrade")
	}
	if opts.Force {
		args = append(args, "--force-reinstall")
	}
	args = append(args, packageName)

	m.logger.Debugf("执行 pip %s", strings.Join(args, " "))
	if _, err := m.pip(ctx, args...); err != nil {
		return fmt.Errorf("pip install %s 失败: %w", packageName, err)
	}
	return nil
}

// Uninstall 卸载包
func (m *PipManager) Uninstall(ctx context.Context, packageName string) error {
	if _, err := m.pip(ctx, "uninstall", "-y", packageName); err != nil {
		return fmt.Errorf("pip uninstall %s 失败: %w", packageName, err)
	}
	return nil
}

// List 列出已安装的包
func (m *PipManager) List(ctx context.Context) ([]Package, error) {
	return m.list(ctx, "list", "--format=json")
}

// Outdated 列出可升级的包
func (m *PipManager) Outdated(ctx context.Context) ([]Package, error) {
	return m.list(ctx, "list", "--outdated", "--format=json")
}

// IsInstalled 检查包是否已安装
func (m *PipManager) IsInstalled(ctx context.Context, packageName string) bool {
	_, err := m.pip(ctx, "show", "--quiet", packageName)
	return err == nil
}

func (m *PipManager) list(ctx context.Context, args ...string) ([]Package, error) {
	stdout, err := m.pip(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("pip %s 失败: %w", strings.Join(args, " "), err)
	}

	var pkgs []Package
	if err := json.Unmarshal(stdout, &pkgs); err != nil {
		return nil, fmt.Errorf("解析 pip 输出失败: %w", err)
	}
	return pkgs, nil
}

func (m *PipManager) pip(ctx context.Context, args ...string) ([]byte, error) {
	full := append([]string{"-m", "pip", "--disable-pip-version-check"}, args...)
	stdout, _, err := m.runner.Output(ctx, m.python, full...)
	return stdout, err
}

// NormalizeName 按 PEP 503 规范化包名
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("_", "-", ".", "-").Replace(name)
}

// UniqueNames 按规范化包名去重，保留首次出现的写法
func UniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		key := NormalizeName(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, name)
	}
	return result
}
