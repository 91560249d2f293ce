package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"github.com/bbq191/pythonest/internal/platform"
	"github.com/sirupsen/logrus"
)

// pathNames PATH 中固定搜索的可执行文件名，python3.X 形式的文件按目录内容匹配
var pathNames = []string{"python", "python3"}

var (
	versionedName    = regexp.MustCompile(`^python3\.\d+$`)
	versionedNameExe = regexp.MustCompile(`(?i)^python3\.\d+\.exe$`)
)

// PathProbe 在 PATH 的每个目录中查找解释器
type PathProbe struct {
	runner platform.CommandRunner
	logger *logrus.Logger
	goos   string
	getenv func(string) string
}

// NewPathProbe 创建 PATH 探测
func NewPathProbe(runner platform.CommandRunner, logger *logrus.Logger) *PathProbe {
	return &PathProbe{
		runner: runner,
		logger: logger,
		goos:   runtime.GOOS,
		getenv: os.Getenv,
	}
}

// Name 返回探测名称
func (p *PathProbe) Name() string {
	return SourcePath
}

// Probe 遍历 PATH × 可执行文件名
func (p *PathProbe) Probe(ctx context.Context) ([]Record, error) {
	var records []Record
	seen := make(map[string]bool)

	for _, dir := range filepath.SplitList(p.getenv("PATH")) {
		if dir == "" {
			continue
		}
		for _, candidate := range p.candidates(dir) {
			if err := ctx.Err(); err != nil {
				return records, err
			}

			if seen[candidate] || !isExecutable(p.goos, candidate) {
				continue
			}
			seen[candidate] = true

			version, err := QueryVersion(ctx, p.runner, candidate)
			if err != nil {
				p.logger.Debugf("跳过 %s: %v", candidate, err)
				continue
			}
			records = append(records, Record{Version: version, Executable: candidate, Source: SourcePath})
		}
	}

	return records, nil
}

// candidates 返回目录中可能是解释器的路径：固定文件名在前，其后是 python3.X
func (p *PathProbe) candidates(dir string) []string {
	paths := make([]string, 0, len(pathNames))
	for _, name := range pathNames {
		paths = append(paths, filepath.Join(dir, executableName(p.goos, name)))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		p.logger.Debugf("读取 PATH 目录 %s 失败: %v", dir, err)
		return paths
	}

	pattern := versionedName
	if p.goos == "windows" {
		pattern = versionedNameExe
	}
	for _, entry := range entries {
		if !entry.IsDir() && pattern.MatchString(entry.Name()) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths
}

// executableName 返回平台上的可执行文件名
func executableName(goos, name string) string {
	if goos == "windows" {
		return name + ".exe"
	}
	return name
}

// isExecutable 检查文件存在且可执行
func isExecutable(goos, path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if goos == "windows" {
		return true
	}
	return info.Mode().Perm()&0111 != 0
}

// CustomPathProbe 递归遍历用户指定的目录
type CustomPathProbe struct {
	roots  []string
	runner platform.CommandRunner
	logger *logrus.Logger
	goos   string
}

// NewCustomPathProbe 创建自定义目录探测
func NewCustomPathProbe(roots []string, runner platform.CommandRunner, logger *logrus.Logger) *CustomPathProbe {
	return &CustomPathProbe{
		roots:  roots,
		runner: runner,
		logger: logger,
		goos:   runtime.GOOS,
	}
}

// Name 返回探测名称
func (p *CustomPathProbe) Name() string {
	return SourceCustom
}

// Probe 查找每个根目录下的标准解释器文件名
func (p *CustomPathProbe) Probe(ctx context.Context) ([]Record, error) {
	target := "python3"
	if p.goos == "windows" {
		target = "python.exe"
	}

	var records []Record
	for _, root := range p.roots {
		if _, err := os.Stat(root); err != nil {
			p.logger.Debugf("跳过自定义路径 %s: %v", root, err)
			continue
		}

		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				// 无法读取的子目录直接跳过
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if d.IsDir() || d.Name() != target || !isExecutable(p.goos, path) {
				return nil
			}

			version, err := QueryVersion(ctx, p.runner, path)
			if err != nil {
				p.logger.Debugf("跳过 %s: %v", path, err)
				return nil
			}
			records = append(records, Record{Version: version, Executable: path, Source: SourceCustom})
			return nil
		})
		if err != nil {
			return records, fmt.Errorf("遍历 %s 失败: %w", root, err)
		}
	}

	return records, nil
}
