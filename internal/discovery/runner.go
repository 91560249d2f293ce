package discovery

import (
	"context"
	"errors"
	"sort"

	"github.com/bbq191/pythonest/internal/config"
	"github.com/bbq191/pythonest/internal/platform"
	"github.com/bbq191/pythonest/internal/pyversion"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Runner 并发运行已启用的探测方式并合并结果
type Runner struct {
	probes []Probe
	logger *logrus.Logger
}

// NewRunner 按搜索配置组装探测方式
func NewRunner(search config.SearchSettings, runner platform.CommandRunner, logger *logrus.Logger) *Runner {
	var probes []Probe

	if search.Registry {
		probes = append(probes, NewRegistryProbe(runner, logger))
	}
	if search.Launcher {
		probes = append(probes, NewLauncherProbe(runner, logger))
	}
	if search.Path {
		probes = append(probes, NewPathProbe(runner, logger))
	}
	if search.Custom && len(search.CustomPaths) > 0 {
		probes = append(probes, NewCustomPathProbe(search.CustomPaths, runner, logger))
	}

	return NewRunnerWithProbes(probes, logger)
}

// NewRunnerWithProbes 使用指定探测方式创建运行器
func NewRunnerWithProbes(probes []Probe, logger *logrus.Logger) *Runner {
	return &Runner{probes: probes, logger: logger}
}

// Discover 运行所有探测方式，单个探测失败不影响其他探测
func (r *Runner) Discover(ctx context.Context) Report {
	results := make([][]Record, len(r.probes))
	errs := make([]error, len(r.probes))

	var g errgroup.Group
	for i, probe := range r.probes {
		g.Go(func() error {
			records, err := probe.Probe(ctx)
			results[i] = records
			errs[i] = err
			return nil
		})
	}
	g.Wait()

	report := Report{}
	var merged []Record
	for i, probe := range r.probes {
		if err := errs[i]; err != nil {
			if errors.Is(err, ErrUnavailable) {
				r.logger.Debugf("探测方式 %s 不可用", probe.Name())
			} else {
				r.logger.Warnf("探测方式 %s 失败: %v", probe.Name(), err)
				report.Errors = append(report.Errors, ProbeError{Probe: probe.Name(), Err: err})
			}
		}
		r.logger.Debugf("探测方式 %s 找到 %d 个解释器", probe.Name(), len(results[i]))
		merged = append(merged, results[i]...)
	}

	report.Records = mergeRecords(merged)
	return report
}

// Versions 返回去重后的升序已安装版本
func (r *Runner) Versions(ctx context.Context) []pyversion.Version {
	return r.Discover(ctx).Versions()
}

// mergeRecords 按版本去重并升序排列，先出现的记录优先，缺少路径时由后续记录补齐
func mergeRecords(records []Record) []Record {
	index := make(map[string]int)
	var merged []Record

	for _, record := range records {
		key := record.Version.String()
		if i, ok := index[key]; ok {
			if merged[i].Executable == "" && record.Executable != "" {
				merged[i].Executable = record.Executable
			}
			continue
		}
		index[key] = len(merged)
		merged = append(merged, record)
	}

	sortRecords(merged)
	return merged
}

func sortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return pyversion.Compare(records[i].Version, records[j].Version) < 0
	})
}
