package packages

import (
	"context"
	"fmt"
	"time"
)

// InstallPackage 安装单个包
func (i *Installer) InstallPackage(ctx context.Context, packageName string, opts InstallOptions) (*InstallResult, error) {
	startTime := time.Now()

	result := &InstallResult{
		PackageName: packageName,
		Manager:     i.manager.Name(),
	}

	if !i.manager.IsAvailable(ctx) {
		err := fmt.Errorf("包管理器 %s 不可用", i.manager.Name())
		i.logger.Error(err)
		result.Error = err
		return result, err
	}

	// 检查是否需要跳过已安装的包
	if !opts.Force && !opts.Upgrade && i.manager.IsInstalled(ctx, packageName) {
		i.logger.Infof("包 %s 已安装，跳过安装", packageName)
		result.Success = true
		result.Skipped = true
		result.Duration = time.Since(startTime).Seconds()
		return result, nil
	}

	if opts.DryRun {
		i.logger.Infof("[DRY RUN] 将使用 %s 安装 %s", i.manager.Name(), packageName)
		result.Success = true
		result.Duration = time.Since(startTime).Seconds()
		return result, nil
	}

	err := i.install(ctx, packageName, opts)
	result.Duration = time.Since(startTime).Seconds()

	if err != nil {
		i.logger.Errorf("安装包 %s 失败: %v", packageName, err)
		result.Error = err
		return result, err
	}

	result.Success = true
	i.logger.Infof("成功安装包 %s，耗时: %.2f秒", packageName, result.Duration)

	return result, nil
}

// InstallPackages 串行安装多个包，Force 模式下失败后继续
func (i *Installer) InstallPackages(ctx context.Context, packages []string, opts InstallOptions) ([]*InstallResult, error) {
	results := make([]*InstallResult, 0, len(packages))

	progress := NewBatchProgress(packages, i.logger, opts.Quiet)
	if !opts.Quiet {
		progress.Begin()
		defer progress.End()
	}

	i.logger.Infof("开始批量安装 %d 个包", len(packages))

loop:
	for _, pkg := range packages {
		select {
		case <-ctx.Done():
			i.logger.Warn("安装被取消")
			return results, ctx.Err()
		default:
		}

		progress.Notify(Update{Package: pkg, Stage: StageRunning})

		result, err := i.InstallPackage(ctx, pkg, opts)
		results = append(results, result)
		progress.Record(result)
		progress.Notify(updateFor(result, err))

		if err != nil && !opts.Force {
			i.logger.Errorf("安装包 %s 失败，停止批量安装", pkg)
			break loop
		}
	}

	successful, failed := countResults(results)
	i.logger.Infof("批量安装完成 - 成功: %d, 失败: %d", successful, failed)

	return results, nil
}

// install 独占解释器后调用包管理器
func (i *Installer) install(ctx context.Context, packageName string, opts InstallOptions) error {
	if err := i.acquire(ctx); err != nil {
		return err
	}
	defer i.release()

	return i.manager.Install(ctx, packageName, opts)
}

// acquire 等待解释器空闲，等待期间可被取消
func (i *Installer) acquire(ctx context.Context) error {
	select {
	case i.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (i *Installer) release() {
	<-i.slot
}

// Uninstall 卸载包
func (i *Installer) Uninstall(ctx context.Context, packageName string) error {
	if err := i.acquire(ctx); err != nil {
		return err
	}
	defer i.release()

	if err := i.manager.Uninstall(ctx, packageName); err != nil {
		return fmt.Errorf("卸载包 %s 失败: %w", packageName, err)
	}
	i.logger.Infof("已卸载包 %s", packageName)
	return nil
}

func countResults(results []*InstallResult) (successful, failed int) {
	for _, result := range results {
		if result.Success {
			successful++
		} else {
			failed++
		}
	}
	return successful, failed
}
