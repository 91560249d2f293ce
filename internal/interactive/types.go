package interactive

import (
	"errors"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

// EnvInteractive 强制开启或关闭交互模式的环境变量
const EnvInteractive = "PYTHONEST_INTERACTIVE"

// ErrNoChoices 没有可供选择的选项
var ErrNoChoices = errors.New("没有可供选择的选项")

// Prompter 终端提问接口，测试中可替换
type Prompter interface {
	Select(message string, options []string, help string) (string, error)
	MultiSelect(message string, options []string) ([]string, error)
	Confirm(message string, def bool) (bool, error)
}

// SurveyPrompter 基于 survey 的终端提问实现
type SurveyPrompter struct {
	PageSize int
}

// Select 单选
func (p SurveyPrompter) Select(message string, options []string, help string) (string, error) {
	prompt := &survey.Select{
		Message:  message,
		Options:  options,
		Help:     help,
		PageSize: p.pageSize(),
	}

	var selection string
	if err := survey.AskOne(prompt, &selection); err != nil {
		return "", err
	}
	return selection, nil
}

// MultiSelect 多选
func (p SurveyPrompter) MultiSelect(message string, options []string) ([]string, error) {
	prompt := &survey.MultiSelect{
		Message:  message,
		Options:  options,
		PageSize: p.pageSize(),
	}

	var selected []string
	if err := survey.AskOne(prompt, &selected); err != nil {
		return nil, err
	}
	return selected, nil
}

// Confirm 确认
func (p SurveyPrompter) Confirm(message string, def bool) (bool, error) {
	prompt := &survey.Confirm{
		Message: message,
		Default: def,
	}

	var confirm bool
	if err := survey.AskOne(prompt, &confirm); err != nil {
		return false, err
	}
	return confirm, nil
}

func (p SurveyPrompter) pageSize() int {
	if p.PageSize <= 0 {
		return 15
	}
	return p.PageSize
}

// IsEnabled 检查当前终端是否支持交互
func IsEnabled() bool {
	if value := os.Getenv(EnvInteractive); value != "" {
		return strings.ToLower(value) != "false" && value != "0"
	}
	return isatty()
}

// DisabledReason 返回交互模式不可用的原因
func DisabledReason() string {
	if value := os.Getenv(EnvInteractive); value != "" {
		if strings.ToLower(value) == "false" || value == "0" {
			return "环境变量 " + EnvInteractive + " 被设置为禁用"
		}
	}

	if !isCharDevice(os.Stdin) {
		return "标准输入不是终端设备，请在真正的终端中运行此命令"
	}
	if !isCharDevice(os.Stdout) {
		return "标准输出不是终端设备，当前环境不支持交互模式"
	}
	return "未知原因"
}

// isatty 标准输入输出都是终端时 survey 才能正常工作
func isatty() bool {
	return isCharDevice(os.Stdin) && isCharDevice(os.Stdout) && isCharDevice(os.Stderr)
}

func isCharDevice(f *os.File) bool {
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
