package xdg

import (
	"github.com/sirupsen/logrus"
)

// AppName 应用目录名，位于各 XDG 根目录之下
const AppName = "pythonest"

// XDGDirectory XDG目录类型枚举
type XDGDirectory int

const (
	ConfigHome XDGDirectory = iota
	DataHome
	CacheHome
)

// String 返回XDG目录类型的字符串表示
func (d XDGDirectory) String() string {
	switch d {
	case ConfigHome:
		return "config"
	case DataHome:
		return "data"
	case CacheHome:
		return "cache"
	default:
		return "unknown"
	}
}

// Manager XDG目录解析器
type Manager struct {
	logger *logrus.Logger
	goos   string
	getenv func(string) string
	home   func() (string, error)
}
