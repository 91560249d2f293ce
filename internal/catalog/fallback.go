package catalog

import (
	"fmt"

	"github.com/bbq191/pythonest/internal/pyversion"
)

// fallbackSeries 内置目录覆盖的系列及其最新补丁号
var fallbackSeries = []struct {
	minor     int
	lastPatch int
}{
	{12, 7},
	{11, 9},
	{10, 11},
	{9, 13},
	{8, 10},
	{7, 14},
}

// Fallback 内置版本目录，网络或解析失败时使用（70 个版本，3.7 到 3.12）
func Fallback() []pyversion.Version {
	var versions []pyversion.Version
	for _, series := range fallbackSeries {
		for patch := series.lastPatch; patch >= 0; patch-- {
			versions = append(versions, pyversion.MustParse(fmt.Sprintf("3.%d.%d", series.minor, patch)))
		}
	}
	pyversion.Sort(versions)
	return versions
}
