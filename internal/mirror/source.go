package mirror

import (
	"github.com/bbq191/pythonest/internal/config"
)

// Source 下载源：显示名称 + 基础地址
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Kind Kind   `json:"-"`
}

// Official 官网下载源
var Official = Source{Name: "Python官网", URL: "https://www.python.org/downloads/", Kind: KindOfficial}

// builtins 内置下载源，顺序即配置中的索引
var builtins = []Source{
	Official,
	{Name: "华为云镜像", URL: "https://mirrors.huaweicloud.com/python/", Kind: KindHuawei},
	{Name: "清华大学镜像", URL: "https://mirrors.tuna.tsinghua.edu.cn/python/", Kind: KindTsinghua},
	{Name: "阿里云镜像", URL: "https://mirrors.aliyun.com/python-release/", Kind: KindAliyun},
	{Name: "npmmirror镜像", URL: "https://registry.npmmirror.com/-/binary/python/", Kind: KindNpmMirror},
}

// CustomName 自定义下载源的显示名称
const CustomName = "自定义源"

// Builtins 返回内置下载源列表的副本
func Builtins() []Source {
	out := make([]Source, len(builtins))
	copy(out, builtins)
	return out
}

// Current 根据配置选出当前下载源；自定义源优先，索引越界时回退到官网
func Current(settings config.SourceSettings) Source {
	if settings.UseCustom && settings.CustomURL != "" {
		return Source{Name: CustomName, URL: settings.CustomURL, Kind: KindOf(settings.CustomURL)}
	}
	if settings.Index < 0 || settings.Index >= len(builtins) {
		return Official
	}
	return builtins[settings.Index]
}

// Policy 返回下载源的处理策略
func (s Source) Policy() Policy {
	return s.Kind.Policy()
}

