package xdg

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewManager 创建新的XDG管理器
func NewManager(logger *logrus.Logger) *Manager {
	return &Manager{
		logger: logger,
		goos:   runtime.GOOS,
		getenv: os.Getenv,
		home:   os.UserHomeDir,
	}
}

// GetXDGPath 获取指定类型的XDG根目录路径
func (m *Manager) GetXDGPath(dirType XDGDirectory) (string, error) {
	var envVar, defaultPath string

	switch dirType {
	case ConfigHome:
		envVar = "XDG_CONFIG_HOME"
		defaultPath = m.getDefaultConfigHome()
	case DataHome:
		envVar = "XDG_DATA_HOME"
		defaultPath = m.getDefaultDataHome()
	case CacheHome:
		envVar = "XDG_CACHE_HOME"
		defaultPath = m.getDefaultCacheHome()
	default:
		return "", fmt.Errorf("未支持的XDG目录类型: %v", dirType)
	}

	// 优先使用环境变量
	if path := m.getenv(envVar); path != "" {
		return m.expandPath(path), nil
	}

	if defaultPath == "" {
		return "", fmt.Errorf("无法确定%s目录", dirType.String())
	}
	return m.expandPath(defaultPath), nil
}

// AppDir 返回应用在指定XDG根目录下的子目录
func (m *Manager) AppDir(dirType XDGDirectory) (string, error) {
	root, err := m.GetXDGPath(dirType)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, AppName), nil
}

// EnsureDirectories 确保应用的配置和数据目录存在
func (m *Manager) EnsureDirectories() error {
	for _, dirType := range []XDGDirectory{ConfigHome, DataHome} {
		path, err := m.AppDir(dirType)
		if err != nil {
			m.logger.Warnf("获取%s路径失败: %v", dirType.String(), err)
			continue
		}

		if err := os.MkdirAll(path, 0755); err != nil {
			m.logger.Errorf("创建目录失败 %s: %v", path, err)
			return fmt.Errorf("创建XDG目录失败 %s: %w", path, err)
		}

		m.logger.Debugf("确保目录存在: %s", path)
	}

	return nil
}

// ValidateDirectories 验证已存在的应用目录是否可写
func (m *Manager) ValidateDirectories() error {
	for _, dirType := range []XDGDirectory{ConfigHome, DataHome, CacheHome} {
		path, err := m.AppDir(dirType)
		if err != nil {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			m.logger.Debugf("目录尚未创建: %s", path)
			continue
		}

		if !m.isDirectoryWritable(path) {
			return fmt.Errorf("目录不可写: %s", path)
		}
	}

	return nil
}

// expandPath 展开环境变量和用户目录
func (m *Manager) expandPath(path string) string {
	expanded := os.Expand(path, m.getenv)
	if strings.HasPrefix(expanded, "~") {
		if home, err := m.home(); err == nil {
			expanded = filepath.Join(home, expanded[1:])
		}
	}
	return expanded
}

// 平台特定的默认路径实现
func (m *Manager) getDefaultConfigHome() string {
	switch m.goos {
	case "windows":
		return m.getenv("APPDATA")
	default: // linux, darwin
		return m.homeJoin(".config")
	}
}

func (m *Manager) getDefaultDataHome() string {
	switch m.goos {
	case "windows":
		return m.getenv("LOCALAPPDATA")
	default:
		return m.homeJoin(".local", "share")
	}
}

func (m *Manager) getDefaultCacheHome() string {
	switch m.goos {
	case "windows":
		if local := m.getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, "Temp")
		}
		return ""
	default:
		return m.homeJoin(".cache")
	}
}

func (m *Manager) homeJoin(elem ...string) string {
	home, err := m.home()
	if err != nil {
		return ""
	}
	return filepath.Join(append([]string{home}, elem...)...)
}

func (m *Manager) isDirectoryWritable(path string) bool {
	file, err := os.CreateTemp(path, ".pythonest_probe_*")
	if err != nil {
		return false
	}
	name := file.Name()
	file.Close()
	os.Remove(name)
	return true
}
