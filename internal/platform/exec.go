package platform

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner 外部命令执行接口，测试中以假实现替换
type CommandRunner interface {
	// Output 运行命令直到退出，分别返回标准输出和标准错误
	Output(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
	// Start 启动命令后立即返回进程号，不等待退出
	Start(name string, args ...string) (int, error)
	// LookPath 在 PATH 中查找可执行文件
	LookPath(file string) (string, error)
}

// ExecRunner 基于 os/exec 的命令执行器
type ExecRunner struct{}

// NewExecRunner 创建新的命令执行器
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Output 运行命令并收集输出
func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), stderr.Bytes(), &CommandError{
			Command: name,
			Args:    args,
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}

	return stdout.Bytes(), stderr.Bytes(), nil
}

// Start 启动进程并释放句柄
func (r *ExecRunner) Start(name string, args ...string) (int, error) {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("启动 %s 失败: %w", name, err)
	}

	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("释放进程句柄失败: %w", err)
	}
	return pid, nil
}

// LookPath 查找可执行文件
func (r *ExecRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// CommandError 外部命令执行失败
type CommandError struct {
	Command string
	Args    []string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("命令执行失败: %s %s: %v", e.Command, strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += "\n" + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
