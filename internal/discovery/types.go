package discovery

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/bbq191/pythonest/internal/pyversion"
)

// 探测来源名称
const (
	SourceRegistry = "registry"
	SourceLauncher = "launcher"
	SourcePath     = "path"
	SourceCustom   = "custom"
)

// ErrUnavailable 探测方式在当前系统不可用（非 Windows 的注册表、未安装 py 启动器等）
var ErrUnavailable = errors.New("discovery probe not available on this system")

// Record 已安装解释器记录
type Record struct {
	Version    pyversion.Version `json:"version"`
	Executable string            `json:"executable,omitempty"` // 解释器可执行文件，未知时为空
	Source     string            `json:"source"`               // 发现该记录的探测方式
}

// InstallDir 返回解释器所在安装目录
func (r Record) InstallDir() string {
	if r.Executable == "" {
		return ""
	}
	return filepath.Dir(r.Executable)
}

// Probe 一种独立的已安装解释器探测方式
type Probe interface {
	Name() string
	Probe(ctx context.Context) ([]Record, error)
}

// ProbeError 单个探测方式失败的原因
type ProbeError struct {
	Probe string
	Err   error
}

func (e ProbeError) Error() string {
	return fmt.Sprintf("%s 探测失败: %v", e.Probe, e.Err)
}

func (e ProbeError) Unwrap() error {
	return e.Err
}

// Report 一次发现的完整结果，区分“没有找到”和“探测失败”
type Report struct {
	Records []Record     // 按版本升序、版本唯一
	Errors  []ProbeError // 失败的探测方式
}

// Versions 返回升序版本列表
func (r Report) Versions() []pyversion.Version {
	versions := make([]pyversion.Version, 0, len(r.Records))
	for _, record := range r.Records {
		versions = append(versions, record.Version)
	}
	return versions
}

// Find 查找指定版本的记录
func (r Report) Find(version pyversion.Version) (Record, bool) {
	for _, record := range r.Records {
		if record.Version == version {
			return record, true
		}
	}
	return Record{}, false
}

// HasErrors 是否有探测方式失败
func (r Report) HasErrors() bool {
	return len(r.Errors) > 0
}
