package venv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"

	"github.com/bbq191/pythonest/internal/packages"
	"github.com/bbq191/pythonest/internal/platform"
	"github.com/bbq191/pythonest/internal/xdg"
	"github.com/sirupsen/logrus"
)

// DirName 虚拟环境在数据目录下的子目录名
const DirName = "venvs"

var (
	// ErrNotFound 虚拟环境不存在
	ErrNotFound = errors.New("虚拟环境不存在")
	// ErrExists 虚拟环境已存在
	ErrExists = errors.New("虚拟环境已存在")
)

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Env 一个虚拟环境
type Env struct {
	Name   string
	Path   string
	Python string
}

// Manager 管理统一目录下的虚拟环境
type Manager struct {
	base   string
	runner platform.CommandRunner
	logger *logrus.Logger
	goos   string
}

// NewManager 创建虚拟环境管理器，base 为空时使用 <data home>/pythonest/venvs
func NewManager(base string, runner platform.CommandRunner, logger *logrus.Logger) (*Manager, error) {
	if base == "" {
		dataDir, err := xdg.NewManager(logger).AppDir(xdg.DataHome)
		if err != nil {
			return nil, fmt.Errorf("获取数据目录失败: %w", err)
		}
		base = filepath.Join(dataDir, DirName)
	}

	return &Manager{
		base:   base,
		runner: runner,
		logger: logger,
		goos:   runtime.GOOS,
	}, nil
}

// Base 返回虚拟环境根目录
func (m *Manager) Base() string {
	return m.base
}

// List 列出所有有效的虚拟环境，按名称排序
func (m *Manager) List() ([]Env, error) {
	entries, err := os.ReadDir(m.base)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取虚拟环境目录失败: %w", err)
	}

	var envs []Env
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		env, ok := m.lookup(entry.Name())
		if !ok {
			m.logger.Debugf("跳过无效的虚拟环境目录: %s", entry.Name())
			continue
		}
		envs = append(envs, env)
	}

	sort.Slice(envs, func(i, j int) bool { return envs[i].Name < envs[j].Name })
	return envs, nil
}

// Get 返回指定名称的虚拟环境
func (m *Manager) Get(name string) (Env, error) {
	if err := checkName(name); err != nil {
		return Env{}, err
	}
	env, ok := m.lookup(name)
	if !ok {
		return Env{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return env, nil
}

// Create 使用指定解释器创建虚拟环境，python 为空时使用 PATH 中的解释器
func (m *Manager) Create(ctx context.Context, name, python string) (Env, error) {
	if err := checkName(name); err != nil {
		return Env{}, err
	}

	path := filepath.Join(m.base, name)
	if _, err := os.Stat(path); err == nil {
		return Env{}, fmt.Errorf("%w: %s", ErrExists, name)
	}

	if python == "" {
		python = m.defaultPython()
	}

	if err := os.MkdirAll(m.base, 0755); err != nil {
		return Env{}, fmt.Errorf("创建虚拟环境目录失败: %w", err)
	}

	m.logger.Infof("使用 %s 创建虚拟环境 %s", python, name)
	if _, _, err := m.runner.Output(ctx, python, "-m", "venv", path); err != nil {
		os.RemoveAll(path)
		return Env{}, fmt.Errorf("创建虚拟环境 %s 失败: %w", name, err)
	}

	env, ok := m.lookup(name)
	if !ok {
		return Env{}, fmt.Errorf("虚拟环境 %s 创建后缺少解释器", name)
	}
	return env, nil
}

// Delete 删除虚拟环境目录，缺少解释器的损坏环境也可以删除
func (m *Manager) Delete(name string) error {
	if err := checkName(name); err != nil {
		return err
	}

	path := filepath.Join(m.base, name)
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("删除虚拟环境 %s 失败: %w", name, err)
	}
	m.logger.Infof("已删除虚拟环境 %s", name)
	return nil
}

// Python 返回虚拟环境的解释器路径
func (m *Manager) Python(name string) (string, error) {
	env, err := m.Get(name)
	if err != nil {
		return "", err
	}
	return env.Python, nil
}

// Pip 返回绑定到虚拟环境解释器的 pip 管理器
func (m *Manager) Pip(name string) (*packages.PipManager, error) {
	python, err := m.Python(name)
	if err != nil {
		return nil, err
	}
	return packages.NewPipManager(python, m.runner, m.logger), nil
}

// Packages 列出虚拟环境中的包，格式为 name==version
func (m *Manager) Packages(ctx context.Context, name string) ([]string, error) {
	pip, err := m.Pip(name)
	if err != nil {
		return nil, err
	}

	pkgs, err := pip.List(ctx)
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(pkgs))
	for _, pkg := range pkgs {
		lines = append(lines, pkg.Name+"=="+pkg.Version)
	}
	return lines, nil
}

// Install 在虚拟环境中安装包
func (m *Manager) Install(ctx context.Context, name, packageName string) error {
	pip, err := m.Pip(name)
	if err != nil {
		return err
	}
	return pip.Install(ctx, packageName, packages.InstallOptions{})
}

// Uninstall 从虚拟环境中卸载包
func (m *Manager) Uninstall(ctx context.Context, name, packageName string) error {
	pip, err := m.Pip(name)
	if err != nil {
		return err
	}
	return pip.Uninstall(ctx, packageName)
}

// lookup 目录中存在解释器时才视为有效的虚拟环境
func (m *Manager) lookup(name string) (Env, bool) {
	path := filepath.Join(m.base, name)
	for _, candidate := range []string{
		filepath.Join(path, "Scripts", "python.exe"),
		filepath.Join(path, "bin", "python"),
	} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return Env{Name: name, Path: path, Python: candidate}, true
		}
	}
	return Env{}, false
}

func (m *Manager) defaultPython() string {
	if m.goos == "windows" {
		return "python"
	}
	return "python3"
}

func checkName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("无效的虚拟环境名称: %q", name)
	}
	return nil
}
