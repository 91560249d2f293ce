package platform

import (
	"context"
	"fmt"
	"strings"
)

// PowerShell 通过 CommandRunner 执行 PowerShell 脚本
type PowerShell struct {
	runner CommandRunner
	exe    string
}

// FindPowerShell 查找 PowerShell 可执行文件，优先 PowerShell Core (pwsh)
func FindPowerShell(runner CommandRunner) (*PowerShell, error) {
	for _, name := range []string{"pwsh", "powershell"} {
		if path, err := runner.LookPath(name); err == nil {
			return &PowerShell{runner: runner, exe: path}, nil
		}
	}
	return nil, fmt.Errorf("未找到 PowerShell 可执行文件")
}

// Executable 返回 PowerShell 可执行文件路径
func (ps *PowerShell) Executable() string {
	return ps.exe
}

// Run 执行 PowerShell 命令并返回去除首尾空白的标准输出
func (ps *PowerShell) Run(ctx context.Context, command string) (string, error) {
	stdout, _, err := ps.runner.Output(ctx, ps.exe, "-NoProfile", "-NonInteractive", "-ExecutionPolicy", "Bypass", "-Command", command)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(stdout)), nil
}

// Detect 读取 PowerShell 版本信息
func (ps *PowerShell) Detect(ctx context.Context) (*PSInfo, error) {
	version, err := ps.Run(ctx, "$PSVersionTable.PSVersion.ToString()")
	if err != nil {
		return nil, fmt.Errorf("获取 PowerShell 版本失败: %w", err)
	}

	info := &PSInfo{
		Version:        version,
		ExecutablePath: ps.exe,
	}
	if edition, err := ps.Run(ctx, "$PSVersionTable.PSEdition"); err == nil {
		info.Edition = edition
	}
	return info, nil
}

// Quote 生成 PowerShell 单引号字符串字面量
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
