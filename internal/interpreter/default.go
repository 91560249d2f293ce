package interpreter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bbq191/pythonest/internal/config"
	"github.com/bbq191/pythonest/internal/discovery"
)

// DefaultPython 返回默认解释器：激活的解释器优先，其次是发现到的最高版本
func DefaultPython(active config.ActiveInterpreter, goos string, report discovery.Report) (string, error) {
	if active.Path != "" {
		for _, name := range executableNames(goos) {
			candidate := filepath.Join(active.Path, name)
			if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
				return candidate, nil
			}
		}
	}

	for i := len(report.Records) - 1; i >= 0; i-- {
		if exe := report.Records[i].Executable; exe != "" {
			return exe, nil
		}
	}

	return "", fmt.Errorf("没有找到可用的 Python 解释器，请先安装或激活一个版本")
}

func executableNames(goos string) []string {
	if goos == "windows" {
		return []string{"python.exe"}
	}
	return []string{filepath.Join("bin", "python3"), "python3", "python"}
}
