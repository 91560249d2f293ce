package mirror

import (
	"net/url"
	"strings"
)

// Kind 下载源类型，每种类型拥有固定的下载地址模板
type Kind int

const (
	KindOfficial Kind = iota
	KindHuawei
	KindTsinghua
	KindAliyun
	KindNpmMirror
	KindCustom
)

// Policy 下载源的特殊处理策略
type Policy struct {
	InsecureTLS        bool // 证书有问题，强制跳过 TLS 校验
	FallbackToOfficial bool // 下载失败时回退到官网重试一次
	StaticCatalog      bool // 不抓取目录，直接使用内置版本目录
}

type kindInfo struct {
	name     string
	host     string
	template string
	listing  string
	policy   Policy
}

var kinds = map[Kind]kindInfo{
	KindOfficial: {
		name:     "official",
		host:     "python.org",
		template: `https://www.python.org/ftp/python/{{ .Version }}/{{ .Installer }}`,
		listing:  `{{ .Base }}`,
	},
	KindHuawei: {
		name:     "huawei",
		host:     "huaweicloud.com",
		template: `{{ .Base | trimSuffix "/" }}/{{ .Version }}/{{ .Installer }}`,
		listing:  `{{ .Base | trimSuffix "/" }}/`,
		policy:   Policy{InsecureTLS: true, FallbackToOfficial: true},
	},
	KindTsinghua: {
		name:     "tsinghua",
		host:     "tuna.tsinghua.edu.cn",
		template: `{{ .Base | trimSuffix "/" }}/{{ .Version }}/{{ .Installer }}`,
		listing:  `{{ .Base | trimSuffix "/" }}/`,
		policy:   Policy{StaticCatalog: true},
	},
	// 阿里云只同步了 Windows 安装包，DownloadURLFor 拒绝其他平台
	KindAliyun: {
		name:     "aliyun",
		host:     "aliyun.com",
		template: `{{ .Base | trimSuffix "/" }}/windows/{{ .Installer }}`,
		listing:  `{{ .Base | trimSuffix "/" }}/windows/`,
	},
	KindNpmMirror: {
		name:     "npmmirror",
		host:     "npmmirror.com",
		template: `{{ .Base | trimSuffix "/" }}/{{ .Version }}/{{ .Installer }}`,
		listing:  `{{ .Base | trimSuffix "/" }}/`,
	},
	KindCustom: {
		name:     "custom",
		template: `{{ .Base | trimSuffix "/" }}/{{ .Version }}/{{ .Installer }}`,
		listing:  `{{ .Base | trimSuffix "/" }}/`,
	},
}

// String 返回类型名称
func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return "unknown"
}

// Policy 返回类型的处理策略
func (k Kind) Policy() Policy {
	return kinds[k].policy
}

// Host 返回类型对应的主机名片段，自定义源为空
func (k Kind) Host() string {
	return kinds[k].host
}

// KindOf 按主机名将任意地址映射到下载源类型，无法识别时为 KindCustom
func KindOf(rawURL string) Kind {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return KindCustom
	}
	host := strings.ToLower(u.Hostname())

	for _, k := range []Kind{KindOfficial, KindHuawei, KindTsinghua, KindAliyun, KindNpmMirror} {
		suffix := kinds[k].host
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return k
		}
	}
	return KindCustom
}
