package interpreter

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/bbq191/pythonest/internal/config"
	"github.com/bbq191/pythonest/internal/discovery"
	"github.com/bbq191/pythonest/internal/platform"
	"github.com/bbq191/pythonest/internal/pyversion"
	"github.com/sirupsen/logrus"
)

// pythonDirPattern PATH 中其他 Python 安装目录（含其 Scripts 子目录）
var pythonDirPattern = regexp.MustCompile(`(?i)\\Python\d+`)

// persistTimeout 持久化用户 PATH 的超时
const persistTimeout = 30 * time.Second

// Environment 进程环境变量
type Environment interface {
	Getenv(key string) string
	Setenv(key, value string) error
}

// processEnv 当前进程的环境变量
type processEnv struct{}

func (processEnv) Getenv(key string) string      { return os.Getenv(key) }
func (processEnv) Setenv(key, value string) error { return os.Setenv(key, value) }

// SettingsStore 记录激活的解释器
type SettingsStore interface {
	Load() (*config.Settings, error)
	Save(settings *config.Settings) error
}

// LocateFunc 查找版本的安装目录
type LocateFunc func(ctx context.Context, version pyversion.Version) (string, error)

// Activation 激活结果
type Activation struct {
	Version    pyversion.Version
	InstallDir string
	Path       string // 新的进程 PATH
	Persisted  bool   // 用户 PATH 已持久化
	PersistErr error  // 持久化失败原因，失败不影响激活结果
}

// Activator 通过调整 PATH 顺序激活解释器
type Activator struct {
	runner platform.CommandRunner
	store  SettingsStore
	locate LocateFunc
	env    Environment
	goos   string
	logger *logrus.Logger
}

// NewActivator 创建激活器
func NewActivator(runner platform.CommandRunner, store SettingsStore, locate LocateFunc, logger *logrus.Logger) *Activator {
	return &Activator{
		runner: runner,
		store:  store,
		locate: locate,
		env:    processEnv{},
		goos:   runtime.GOOS,
		logger: logger,
	}
}

// Activate 把版本的安装目录及其 Scripts 子目录放到 PATH 最前面
func (a *Activator) Activate(ctx context.Context, version pyversion.Version) (Activation, error) {
	if a.goos != "windows" {
		return Activation{}, fmt.Errorf("激活 Python %s: %w", version, ErrUnsupported)
	}

	dir, err := a.locate(ctx, version)
	if err != nil {
		return Activation{}, fmt.Errorf("找不到 Python %s 的安装目录: %w", version, err)
	}

	result := Activation{Version: version, InstallDir: dir}
	result.Path = PrependPath(a.env.Getenv("PATH"), dir)
	if err := a.env.Setenv("PATH", result.Path); err != nil {
		return result, fmt.Errorf("更新进程 PATH 失败: %w", err)
	}

	if err := a.persist(ctx, dir); err != nil {
		a.logger.Warnf("持久化用户 PATH 失败，仅当前进程生效: %v", err)
		result.PersistErr = err
	} else {
		result.Persisted = true
	}

	if err := a.record(version, dir); err != nil {
		return result, err
	}

	a.logger.Infof("已激活 Python %s: %s", version, dir)
	return result, nil
}

// persist 写入用户 PATH：优先 PowerShell（会广播设置变更通知），失败时回退到 setx
func (a *Activator) persist(ctx context.Context, dir string) error {
	ctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()

	current, err := a.readUserPath(ctx)
	if err != nil {
		return fmt.Errorf("读取用户 PATH 失败: %w", err)
	}
	value := PrependPath(current, dir)

	if ps, err := platform.FindPowerShell(a.runner); err == nil {
		script := fmt.Sprintf(`[Environment]::SetEnvironmentVariable('Path', %s, 'User')`, platform.Quote(value))
		if _, err = ps.Run(ctx, script); err == nil {
			return nil
		}
		a.logger.Debugf("PowerShell 持久化失败，改用 setx: %v", err)
	}

	if _, _, err := a.runner.Output(ctx, "setx", "PATH", value); err != nil {
		return fmt.Errorf("setx 失败: %w", err)
	}
	return nil
}

// readUserPath 读取注册表中的用户 PATH（不含系统 PATH）
func (a *Activator) readUserPath(ctx context.Context) (string, error) {
	if ps, err := platform.FindPowerShell(a.runner); err == nil {
		if value, err := ps.Run(ctx, `[Environment]::GetEnvironmentVariable('Path', 'User')`); err == nil {
			return value, nil
		}
	}

	stdout, _, err := a.runner.Output(ctx, "reg", "query", `HKCU\Environment`, "/v", "Path")
	if err != nil {
		return "", err
	}
	return parseRegQuery(string(stdout), "Path"), nil
}

// parseRegQuery 从 reg query 输出中取出指定值
func parseRegQuery(output, name string) string {
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || !strings.EqualFold(fields[0], name) || !strings.HasPrefix(fields[1], "REG_") {
			continue
		}
		i := strings.Index(line, fields[1])
		return strings.TrimSpace(line[i+len(fields[1]):])
	}
	return ""
}

func (a *Activator) record(version pyversion.Version, dir string) error {
	settings, err := a.store.Load()
	if err != nil {
		return fmt.Errorf("读取配置失败: %w", err)
	}
	settings.Active = config.ActiveInterpreter{
		Version: version.String(),
		Path:    dir,
	}
	if err := a.store.Save(settings); err != nil {
		return fmt.Errorf("记录激活版本失败: %w", err)
	}
	return nil
}

// PrependPath 计算新的 Windows PATH：移除其他 Python 目录和重复项，再把安装目录与 Scripts 放到最前
func PrependPath(current, installDir string) string {
	installDir = strings.TrimRight(installDir, `\`)
	scripts := installDir + `\Scripts`

	entries := []string{installDir, scripts}
	for _, entry := range strings.Split(current, ";") {
		trimmed := strings.TrimRight(strings.TrimSpace(entry), `\`)
		if trimmed == "" || pythonDirPattern.MatchString(trimmed) {
			continue
		}
		if strings.EqualFold(trimmed, installDir) || strings.EqualFold(trimmed, scripts) {
			continue
		}
		entries = append(entries, entry)
	}
	return strings.Join(entries, ";")
}

// NewLocator 先查注册表，再使用发现结果中的可执行文件目录
func NewLocator(runner *discovery.Runner) LocateFunc {
	return func(ctx context.Context, version pyversion.Version) (string, error) {
		report := runner.Discover(ctx)
		if record, ok := report.Find(version); ok && record.InstallDir() != "" {
			if record.Source == discovery.SourceRegistry {
				return record.InstallDir(), nil
			}
			if dir, err := discovery.LookupInstallPath(version.MajorMinor()); err == nil {
				return dir, nil
			}
			return record.InstallDir(), nil
		}

		if dir, err := discovery.LookupInstallPath(version.MajorMinor()); err == nil {
			return dir, nil
		}
		return "", fmt.Errorf("Python %s 未安装", version)
	}
}
