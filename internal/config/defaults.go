package config

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/viper"
)

// defaultValues 每个配置键的默认值；旧版本配置缺失的键在加载时统一补齐
func defaultValues() map[string]interface{} {
	return map[string]interface{}{
		"search.registry":         true,
		"search.launcher":         true,
		"search.path":             true,
		"search.custom":           false,
		"search.custom_paths":     []string{},
		"source.index":            0,
		"source.use_custom":       false,
		"source.custom_url":       "",
		"download.directory":      filepath.Join(os.TempDir(), "pythonest"),
		"download.auto_install":   true,
		"download.verify_tls":     true,
		"download.silent_install": true,
		"download.selection_mode": SelectionGrouped,
		"active.version":          "",
		"active.path":             "",
	}
}

func applyDefaults(v *viper.Viper) {
	for key, value := range defaultValues() {
		v.SetDefault(key, value)
	}
}

// Defaults 返回完全由默认值构成的配置
func Defaults() *Settings {
	return &Settings{
		Search: SearchSettings{
			Registry:    true,
			Launcher:    true,
			Path:        true,
			CustomPaths: []string{},
		},
		Download: DownloadSettings{
			Directory:     filepath.Join(os.TempDir(), "pythonest"),
			AutoInstall:   true,
			VerifyTLS:     true,
			SilentInstall: true,
			SelectionMode: SelectionGrouped,
		},
	}
}

// Keys 返回所有可配置键
func Keys() []string {
	keys := make([]string, 0, len(defaultValues()))
	for key := range defaultValues() {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
