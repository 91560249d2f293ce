package config

// Settings 主配置结构，持久化为单个 JSON 文档
type Settings struct {
	Search   SearchSettings    `json:"search" mapstructure:"search"`
	Source   SourceSettings    `json:"source" mapstructure:"source"`
	Download DownloadSettings  `json:"download" mapstructure:"download"`
	Active   ActiveInterpreter `json:"active" mapstructure:"active"`
}

// SearchSettings 已安装解释器的搜索策略开关
type SearchSettings struct {
	Registry    bool     `json:"registry" mapstructure:"registry"`
	Launcher    bool     `json:"launcher" mapstructure:"launcher"`
	Path        bool     `json:"path" mapstructure:"path"`
	Custom      bool     `json:"custom" mapstructure:"custom"`
	CustomPaths []string `json:"custom_paths" mapstructure:"custom_paths" validate:"dive,required"`
}

// SourceSettings 下载源选择
type SourceSettings struct {
	Index     int    `json:"index" mapstructure:"index" validate:"gte=0,lte=4"`
	UseCustom bool   `json:"use_custom" mapstructure:"use_custom"`
	CustomURL string `json:"custom_url" mapstructure:"custom_url" validate:"omitempty,url"`
}

// DownloadSettings 下载与安装行为
type DownloadSettings struct {
	Directory     string `json:"directory" mapstructure:"directory" validate:"required"`
	AutoInstall   bool   `json:"auto_install" mapstructure:"auto_install"`
	VerifyTLS     bool   `json:"verify_tls" mapstructure:"verify_tls"`
	SilentInstall bool   `json:"silent_install" mapstructure:"silent_install"`
	SelectionMode string `json:"selection_mode" mapstructure:"selection_mode" validate:"oneof=list grouped"`
}

// ActiveInterpreter 当前激活的解释器，供 venv/pip 等组件作为默认解释器
type ActiveInterpreter struct {
	Version string `json:"version" mapstructure:"version" validate:"omitempty,pyversion"`
	Path    string `json:"path" mapstructure:"path"`
}

// 版本选择界面模式
const (
	SelectionList    = "list"
	SelectionGrouped = "grouped"
)
