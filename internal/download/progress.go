package download

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// BarReporter 把进度快照渲染为终端进度条，返回回调与收尾函数
func BarReporter(w io.Writer, description string) (ProgressFunc, func()) {
	var bar *progressbar.ProgressBar

	report := func(s Snapshot) {
		if bar == nil {
			size := s.Total
			if size <= 0 {
				size = -1 // 总大小未知时显示为 spinner
			}
			bar = progressbar.NewOptions64(size,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetDescription(description),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowBytes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionThrottle(100*time.Millisecond),
				progressbar.OptionSpinnerType(14),
				progressbar.OptionSetRenderBlankState(true),
			)
		}
		bar.Set64(s.Downloaded)
	}

	finish := func() {
		if bar != nil {
			bar.Finish()
			io.WriteString(w, "\n")
		}
	}

	return report, finish
}
