package interpreter

import (
	"context"
	"fmt"
	"runtime"

	"github.com/bbq191/pythonest/internal/platform"
	"github.com/bbq191/pythonest/internal/pyversion"
	"github.com/sirupsen/logrus"
)

// Uninstaller 按显示名称卸载已安装产品
type Uninstaller struct {
	runner platform.CommandRunner
	goos   string
	logger *logrus.Logger
}

// NewUninstaller 创建卸载器
func NewUninstaller(runner platform.CommandRunner, logger *logrus.Logger) *Uninstaller {
	return &Uninstaller{runner: runner, goos: runtime.GOOS, logger: logger}
}

// Uninstall 启动卸载命令后立即返回，优先 wmic，不可用时改用 PowerShell CIM
func (u *Uninstaller) Uninstall(ctx context.Context, version pyversion.Version) (Launch, error) {
	if u.goos != "windows" {
		return Launch{}, fmt.Errorf("卸载 Python %s: %w", version, ErrUnsupported)
	}

	pattern := fmt.Sprintf("Python %s%%", version)

	var launch Launch
	if wmic, err := u.runner.LookPath("wmic"); err == nil {
		launch = Launch{
			Command: wmic,
			Args:    []string{"product", "where", fmt.Sprintf("name like '%s'", pattern), "call", "uninstall", "/nointeractive"},
		}
	} else {
		ps, err := platform.FindPowerShell(u.runner)
		if err != nil {
			return Launch{}, fmt.Errorf("没有可用的卸载方式: %w", err)
		}
		script := fmt.Sprintf(
			`Get-CimInstance -ClassName Win32_Product -Filter %s | Invoke-CimMethod -MethodName Uninstall`,
			platform.Quote(fmt.Sprintf("Name LIKE '%s'", pattern)))
		launch = Launch{
			Command: ps.Executable(),
			Args:    []string{"-NoProfile", "-NonInteractive", "-Command", script},
		}
	}

	u.logger.Infof("卸载 Python %s: %s", version, launch)
	pid, err := u.runner.Start(launch.Command, launch.Args...)
	if err != nil {
		return launch, fmt.Errorf("启动卸载程序失败，可能需要管理员权限: %w", err)
	}
	launch.PID = pid
	return launch, nil
}
