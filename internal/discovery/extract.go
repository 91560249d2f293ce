package discovery

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/bbq191/pythonest/internal/platform"
	"github.com/bbq191/pythonest/internal/pyversion"
)

// versionQueryTimeout 单次 --version 调用的超时
const versionQueryTimeout = 5 * time.Second

var versionOutputPattern = regexp.MustCompile(`Python (\d+\.\d+\.\d+)`)

// ExtractVersion 从 --version 输出中提取版本号，先标准输出后标准错误（旧版本写到标准错误）
func ExtractVersion(stdout, stderr []byte) (pyversion.Version, bool) {
	for _, out := range [][]byte{stdout, stderr} {
		match := versionOutputPattern.FindSubmatch(out)
		if match == nil {
			continue
		}
		if v, err := pyversion.Parse(string(match[1])); err == nil {
			return v, true
		}
	}
	return pyversion.Version{}, false
}

// QueryVersion 运行解释器获取精确版本
func QueryVersion(ctx context.Context, runner platform.CommandRunner, executable string) (pyversion.Version, error) {
	ctx, cancel := context.WithTimeout(ctx, versionQueryTimeout)
	defer cancel()

	stdout, stderr, err := runner.Output(ctx, executable, "--version")
	if err != nil {
		return pyversion.Version{}, err
	}

	v, ok := ExtractVersion(stdout, stderr)
	if !ok {
		return pyversion.Version{}, fmt.Errorf("无法从 %s 的输出中解析版本", executable)
	}
	return v, nil
}
