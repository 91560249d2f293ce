package packages

import (
	"context"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ParallelInstaller 并行安装器。
// 可用性与已安装检查并发进行，实际的 pip install 由 Installer 按解释器串行执行。
type ParallelInstaller struct {
	installer  *Installer
	logger     *logrus.Logger
	maxWorkers int
}

// NewParallelInstaller 创建并行安装器
func NewParallelInstaller(installer *Installer, maxWorkers int) *ParallelInstaller {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}

	return &ParallelInstaller{
		installer:  installer,
		logger:     installer.logger,
		maxWorkers: maxWorkers,
	}
}

// InstallPackagesParallel 并行安装多个包，单个包失败不影响其他包；结果顺序与输入一致
func (pi *ParallelInstaller) InstallPackagesParallel(ctx context.Context, packages []string, opts InstallOptions) ([]*InstallResult, error) {
	if len(packages) <= 1 {
		return pi.installer.InstallPackages(ctx, packages, opts)
	}

	pi.logger.Infof("启动并行安装模式：%d 个工作协程，安装 %d 个包", pi.maxWorkers, len(packages))

	progress := NewBatchProgress(packages, pi.logger, opts.Quiet)
	if !opts.Quiet {
		progress.Begin()
		defer progress.End()
	}

	results := make([]*InstallResult, len(packages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pi.maxWorkers)

	for idx, pkg := range packages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[idx] = &InstallResult{PackageName: pkg, Manager: pi.installer.manager.Name(), Error: err}
				return err
			}

			progress.Notify(Update{Package: pkg, Stage: StageRunning})
			result, err := pi.installer.InstallPackage(gctx, pkg, opts)
			results[idx] = result
			progress.Record(result)
			progress.Notify(updateFor(result, err))

			if err != nil {
				pi.logger.Errorf("安装包 %s 失败: %v", pkg, err)
			}
			// 单个包失败不取消其他安装
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		pi.logger.Errorf("并行安装过程中出现错误: %v", err)
	}

	successful, failed := countResults(results)
	pi.logger.Infof("并行安装完成 - 成功: %d, 失败: %d", successful, failed)

	return results, ctx.Err()
}

// GetOptimalWorkerCount 获取最佳工作协程数
func GetOptimalWorkerCount(packageCount int) int {
	cpuCount := runtime.NumCPU()

	if packageCount <= 2 {
		return 1 // 包数量很少时，串行更快
	}

	if packageCount <= cpuCount {
		return packageCount
	}

	// 包数量多时，使用CPU核心数的1.5倍（考虑I/O等待）
	return int(float64(cpuCount) * 1.5)
}
