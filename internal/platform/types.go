package platform

// PlatformInfo 包含平台相关信息
type PlatformInfo struct {
	OS           string     // 操作系统类型
	Architecture string     // 系统架构
	PowerShell   *PSInfo    // PowerShell 信息（如果适用）
	Linux        *LinuxInfo // Linux 发行版信息（如果适用）
}

// PSInfo PowerShell 相关信息
type PSInfo struct {
	Version        string // PowerShell 版本
	Edition        string // 版本类型 (Desktop/Core)
	ExecutablePath string // 可执行文件路径
}

// LinuxInfo Linux 发行版信息
type LinuxInfo struct {
	Distribution string // 发行版名称 (arch, ubuntu, etc.)
	Version      string // 发行版版本
}
