//go:build !windows

package discovery

import (
	"context"

	"github.com/bbq191/pythonest/internal/platform"
	"github.com/sirupsen/logrus"
)

// RegistryProbe 非 Windows 平台没有注册表
type RegistryProbe struct{}

// NewRegistryProbe 创建注册表探测
func NewRegistryProbe(runner platform.CommandRunner, logger *logrus.Logger) *RegistryProbe {
	return &RegistryProbe{}
}

// Name 返回探测名称
func (p *RegistryProbe) Name() string {
	return SourceRegistry
}

// Probe 始终报告不可用
func (p *RegistryProbe) Probe(ctx context.Context) ([]Record, error) {
	return nil, ErrUnavailable
}

// LookupInstallPath 非 Windows 平台不可用
func LookupInstallPath(majorMinor string) (string, error) {
	return "", ErrUnavailable
}
