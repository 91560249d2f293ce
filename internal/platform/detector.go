package platform

import (
	"context"
	"fmt"
	"runtime"
	"time"
)

// Detector 平台检测器
type Detector struct {
	runner CommandRunner
}

// NewDetector 创建新的平台检测器
func NewDetector(runner CommandRunner) *Detector {
	return &Detector{runner: runner}
}

// DetectPlatform 检测当前平台的完整信息
func (d *Detector) DetectPlatform(ctx context.Context) (*PlatformInfo, error) {
	info := &PlatformInfo{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
	}

	// PowerShell 探测失败不影响其余信息
	if ps, err := FindPowerShell(d.runner); err == nil {
		probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if psInfo, err := ps.Detect(probeCtx); err == nil {
			info.PowerShell = psInfo
		}
		cancel()
	}

	if runtime.GOOS == "linux" {
		if linuxInfo, err := DetectLinux(); err == nil {
			info.Linux = linuxInfo
		}
	}

	return info, nil
}

// String 返回平台信息的字符串表示
func (info *PlatformInfo) String() string {
	str := fmt.Sprintf("Platform: %s/%s", info.OS, info.Architecture)

	if info.Linux != nil {
		str += fmt.Sprintf("\nLinux: %s %s", info.Linux.Distribution, info.Linux.Version)
	}

	if info.PowerShell != nil {
		str += fmt.Sprintf("\nPowerShell: %s %s (%s)",
			info.PowerShell.Version, info.PowerShell.Edition, info.PowerShell.ExecutablePath)
	}

	return str
}

// SupportsPowerShell 检查是否支持 PowerShell
func (info *PlatformInfo) SupportsPowerShell() bool {
	return info.PowerShell != nil
}

// SupportsInstall 检查当前平台能否运行官方安装程序
func (info *PlatformInfo) SupportsInstall() bool {
	return info.OS == "windows" || info.OS == "darwin"
}

// SupportsActivate 检查当前平台能否持久化修改用户 PATH
func (info *PlatformInfo) SupportsActivate() bool {
	return info.OS == "windows"
}
