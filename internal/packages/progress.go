package packages

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

// Stage 单个包在批量安装中的阶段
type Stage int

const (
	StageRunning Stage = iota // pip 进程运行中
	StageDone                 // 安装成功
	StageFailed               // 安装失败
	StageSkipped              // 已安装，跳过
)

func (s Stage) icon() string {
	switch s {
	case StageDone:
		return "✅"
	case StageFailed:
		return "❌"
	case StageSkipped:
		return "⏭️"
	default:
		return "🔄"
	}
}

// Update 一次阶段变化
type Update struct {
	Package string
	Stage   Stage
	Err     error
	At      time.Time
}

// BatchSummary 批量安装汇总
type BatchSummary struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Results   []*InstallResult // 与输入顺序一致
}

// BatchProgress 批量 pip 安装的进度显示。
// 安装协程通过 Notify 投递阶段变化，由单个协程串行渲染。
type BatchProgress struct {
	names    []string
	updates  chan Update
	finished chan struct{}
	results  map[string]*InstallResult
	bar      *progressbar.ProgressBar
	out      io.Writer
	logger   *logrus.Logger
	mu       sync.Mutex
	active   bool
}

// NewBatchProgress 创建进度显示，quiet 时只记录结果不渲染
func NewBatchProgress(names []string, logger *logrus.Logger, quiet bool) *BatchProgress {
	return newBatchProgress(names, logger, !quiet, os.Stderr)
}

func newBatchProgress(names []string, logger *logrus.Logger, showBar bool, out io.Writer) *BatchProgress {
	bp := &BatchProgress{
		names:    names,
		updates:  make(chan Update, len(names)*2+1),
		finished: make(chan struct{}),
		results:  make(map[string]*InstallResult, len(names)),
		out:      out,
		logger:   logger,
	}

	if showBar {
		bp.bar = progressbar.NewOptions(len(names),
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetDescription("pip install"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetRenderBlankState(true),
		)
	}
	return bp
}

// Begin 开始接收阶段变化
func (bp *BatchProgress) Begin() {
	bp.mu.Lock()
	bp.active = true
	bp.mu.Unlock()

	if bp.bar != nil {
		fmt.Fprintf(bp.out, "准备安装 %d 个包\n", len(bp.names))
	}
	go bp.render()
}

// Notify 投递阶段变化；未开始或已结束时忽略
func (bp *BatchProgress) Notify(u Update) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	if !bp.active {
		return
	}

	u.At = time.Now()
	select {
	case bp.updates <- u:
	default:
		bp.logger.Warnf("进度更新被丢弃: %s", u.Package)
	}
}

// Record 保存单个包的安装结果，按规范化包名匹配输入
func (bp *BatchProgress) Record(result *InstallResult) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	bp.results[NormalizeName(result.PackageName)] = result
}

// End 等待已投递的变化渲染完毕并输出汇总；可重复调用
func (bp *BatchProgress) End() {
	bp.mu.Lock()
	if !bp.active {
		bp.mu.Unlock()
		return
	}
	bp.active = false
	close(bp.updates)
	bp.mu.Unlock()

	<-bp.finished

	if bp.bar != nil {
		bp.bar.Finish()
		bp.writeSummary()
	}
}

// Summary 按输入顺序汇总结果
func (bp *BatchProgress) Summary() BatchSummary {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	summary := BatchSummary{Total: len(bp.names)}
	for _, name := range bp.names {
		result, ok := bp.results[NormalizeName(name)]
		if !ok {
			continue
		}
		summary.Results = append(summary.Results, result)
		switch {
		case result.Skipped:
			summary.Skipped++
			summary.Succeeded++
		case result.Success:
			summary.Succeeded++
		default:
			summary.Failed++
		}
	}
	return summary
}

func (bp *BatchProgress) render() {
	defer close(bp.finished)
	for u := range bp.updates {
		bp.apply(u)
	}
}

func (bp *BatchProgress) apply(u Update) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.bar != nil {
		fmt.Fprintf(bp.out, "\r%s %s\n", u.Stage.icon(), u.Package)
	}
	if u.Stage != StageRunning && bp.bar != nil {
		bp.bar.Add(1)
	}
}

func (bp *BatchProgress) writeSummary() {
	summary := bp.Summary()

	w := tabwriter.NewWriter(bp.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\n包\t结果\t耗时(秒)")
	var elapsed float64
	for _, result := range summary.Results {
		outcome := StageDone
		switch {
		case result.Skipped:
			outcome = StageSkipped
		case !result.Success:
			outcome = StageFailed
		}
		elapsed += result.Duration
		fmt.Fprintf(w, "%s\t%s\t%.2f\n", result.PackageName, outcome.icon(), result.Duration)
	}
	w.Flush()

	fmt.Fprintf(bp.out, "成功 %d (跳过 %d)，失败 %d，共 %.2f 秒\n",
		summary.Succeeded, summary.Skipped, summary.Failed, elapsed)
}

// updateFor 根据安装结果生成最终阶段
func updateFor(result *InstallResult, err error) Update {
	u := Update{Package: result.PackageName, Stage: StageDone}
	switch {
	case err != nil:
		u.Stage = StageFailed
		u.Err = err
	case result.Skipped:
		u.Stage = StageSkipped
	}
	return u
}
