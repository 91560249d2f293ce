//go:build windows

package discovery

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/bbq191/pythonest/internal/platform"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows/registry"
)

const pythonCoreKey = `SOFTWARE\Python\PythonCore`

// registryTag 注册表中形如 3.11 或 3.11-32 的版本子键
var registryTag = regexp.MustCompile(`^\d+\.\d+(-32|-arm64)?$`)

// registryRoots 所有用户安装与当前用户安装
var registryRoots = []registry.Key{registry.LOCAL_MACHINE, registry.CURRENT_USER}

// RegistryProbe 枚举 PythonCore 注册表子树
type RegistryProbe struct {
	runner platform.CommandRunner
	logger *logrus.Logger
}

// NewRegistryProbe 创建注册表探测
func NewRegistryProbe(runner platform.CommandRunner, logger *logrus.Logger) *RegistryProbe {
	return &RegistryProbe{runner: runner, logger: logger}
}

// Name 返回探测名称
func (p *RegistryProbe) Name() string {
	return SourceRegistry
}

// Probe 对每个版本子键解析安装路径，再运行解释器取得精确版本
func (p *RegistryProbe) Probe(ctx context.Context) ([]Record, error) {
	var records []Record
	opened := false

	for _, root := range registryRoots {
		key, err := registry.OpenKey(root, pythonCoreKey, registry.READ|registry.ENUMERATE_SUB_KEYS)
		if err != nil {
			continue
		}
		opened = true

		tags, err := key.ReadSubKeyNames(-1)
		key.Close()
		if err != nil {
			return records, fmt.Errorf("读取 %s 失败: %w", pythonCoreKey, err)
		}

		for _, tag := range tags {
			if !registryTag.MatchString(tag) {
				continue
			}

			dir, err := readInstallPath(root, tag)
			if err != nil {
				p.logger.Debugf("跳过注册表条目 %s: %v", tag, err)
				continue
			}

			executable := filepath.Join(dir, "python.exe")
			version, err := QueryVersion(ctx, p.runner, executable)
			if err != nil {
				p.logger.Debugf("跳过注册表条目 %s: %v", tag, err)
				continue
			}
			records = append(records, Record{Version: version, Executable: executable, Source: SourceRegistry})
		}
	}

	if !opened {
		return nil, ErrUnavailable
	}
	return records, nil
}

// LookupInstallPath 从注册表读取 major.minor 版本的安装目录
func LookupInstallPath(majorMinor string) (string, error) {
	for _, root := range registryRoots {
		if dir, err := readInstallPath(root, majorMinor); err == nil {
			return dir, nil
		}
	}
	return "", fmt.Errorf("注册表中没有 Python %s 的安装路径", majorMinor)
}

func readInstallPath(root registry.Key, tag string) (string, error) {
	key, err := registry.OpenKey(root, pythonCoreKey+`\`+tag+`\InstallPath`, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer key.Close()

	dir, _, err := key.GetStringValue("")
	if err != nil {
		return "", err
	}
	if dir == "" {
		return "", fmt.Errorf("安装路径为空")
	}
	return dir, nil
}
