package interpreter

import (
	"context"
	"errors"
	"strings"

	"github.com/bbq191/pythonest/internal/download"
	"github.com/bbq191/pythonest/internal/pyversion"
)

// ErrUnsupported 当前平台不支持该操作
var ErrUnsupported = errors.New("operation not supported on this platform")

// Launch 已启动的外部进程。
//
// 静默安装与卸载只保证进程已启动，不保证安装或卸载完成：调用方拿到 Launch 时，
// 安装程序可能仍在运行，也可能随后失败。Waited 为 true 时进程已经退出。
type Launch struct {
	PID     int
	Command string
	Args    []string
	Waited  bool
}

// String 返回命令行
func (l Launch) String() string {
	return strings.TrimSpace(l.Command + " " + strings.Join(l.Args, " "))
}

// Downloader 安装前获取安装包
type Downloader interface {
	Download(ctx context.Context, version pyversion.Version, onProgress download.ProgressFunc) (download.Result, error)
}

// InstallOptions 安装选项
type InstallOptions struct {
	File        string                // 本地安装包，为空时先下载
	Interactive bool                  // 前台运行安装向导
	Progress    download.ProgressFunc // 下载进度回调
}
