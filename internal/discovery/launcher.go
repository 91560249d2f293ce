package discovery

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/bbq191/pythonest/internal/platform"
	"github.com/bbq191/pythonest/internal/pyversion"
	"github.com/sirupsen/logrus"
)

// launcherLine 匹配 `py -0p` 输出行，兼容 " -3.11-64 *  C:\..." 与 " -V:3.11 *  C:\..." 两种格式
var launcherLine = regexp.MustCompile(`^\s*-(?:V:)?(?:[\w.]+/)?(\d+\.\d+(?:\.\d+)?)\S*\s*\*?\s*(.*)$`)

// LauncherProbe 通过 Windows py 启动器列出已安装版本
type LauncherProbe struct {
	runner platform.CommandRunner
	logger *logrus.Logger
}

// NewLauncherProbe 创建启动器探测
func NewLauncherProbe(runner platform.CommandRunner, logger *logrus.Logger) *LauncherProbe {
	return &LauncherProbe{runner: runner, logger: logger}
}

// Name 返回探测名称
func (p *LauncherProbe) Name() string {
	return SourceLauncher
}

// Probe 运行 py -0p 并解析输出
func (p *LauncherProbe) Probe(ctx context.Context) ([]Record, error) {
	py, err := p.runner.LookPath("py")
	if err != nil {
		return nil, ErrUnavailable
	}

	stdout, _, err := p.runner.Output(ctx, py, "-0p")
	if err != nil {
		return nil, fmt.Errorf("运行 py -0p 失败: %w", err)
	}

	var records []Record
	scanner := bufio.NewScanner(bytes.NewReader(stdout))
	for scanner.Scan() {
		line := scanner.Text()
		match := launcherLine.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		executable := strings.TrimSpace(match[2])
		version, err := p.resolveVersion(ctx, match[1], executable)
		if err != nil {
			p.logger.Debugf("跳过启动器条目 %q: %v", strings.TrimSpace(line), err)
			continue
		}

		records = append(records, Record{
			Version:    version,
			Executable: executable,
			Source:     SourceLauncher,
		})
	}

	return records, scanner.Err()
}

// resolveVersion 启动器只报告 major.minor 时，优先运行解释器取得补丁号，否则补 .0
func (p *LauncherProbe) resolveVersion(ctx context.Context, tag, executable string) (pyversion.Version, error) {
	if strings.Count(tag, ".") == 1 && executable != "" {
		if v, err := QueryVersion(ctx, p.runner, executable); err == nil {
			return v, nil
		}
	}
	return pyversion.Parse(tag)
}
