package interactive

import (
	"fmt"
	"strings"

	"github.com/bbq191/pythonest/internal/config"
	"github.com/bbq191/pythonest/internal/packages"
	"github.com/bbq191/pythonest/internal/pyversion"
	"github.com/sirupsen/logrus"
)

// VersionPicker 按配置的选择方式让用户挑选一个版本
type VersionPicker struct {
	prompter Prompter
	mode     string
	logger   *logrus.Logger
}

// NewVersionPicker 创建版本选择器，mode 为 list 或 grouped
func NewVersionPicker(mode string, logger *logrus.Logger) *VersionPicker {
	if mode != config.SelectionList {
		mode = config.SelectionGrouped
	}
	return &VersionPicker{
		prompter: SurveyPrompter{},
		mode:     mode,
		logger:   logger,
	}
}

// WithPrompter 替换提问实现
func (p *VersionPicker) WithPrompter(prompter Prompter) *VersionPicker {
	p.prompter = prompter
	return p
}

// Mode 返回当前选择方式
func (p *VersionPicker) Mode() string {
	return p.mode
}

// Pick 从给定版本中挑选一个
func (p *VersionPicker) Pick(message string, versions []pyversion.Version) (pyversion.Version, error) {
	if len(versions) == 0 {
		return pyversion.Version{}, ErrNoChoices
	}

	p.logger.Debugf("选择方式: %s，共 %d 个版本", p.mode, len(versions))
	if p.mode == config.SelectionList {
		return p.pickFromList(message, versions)
	}
	return p.pickGrouped(message, versions)
}

func (p *VersionPicker) pickFromList(message string, versions []pyversion.Version) (pyversion.Version, error) {
	sorted := append([]pyversion.Version(nil), versions...)
	pyversion.SortDesc(sorted)

	selection, err := p.prompter.Select(message, pyversion.Strings(sorted), "")
	if err != nil {
		return pyversion.Version{}, err
	}
	return pyversion.Parse(selection)
}

func (p *VersionPicker) pickGrouped(message string, versions []pyversion.Version) (pyversion.Version, error) {
	groups := pyversion.GroupByMinor(versions)

	options := make([]string, 0, len(groups))
	for _, group := range groups {
		options = append(options, groupLabel(group))
	}

	selection, err := p.prompter.Select("选择 Python 主版本:", options, "先选择 major.minor，再选择具体版本")
	if err != nil {
		return pyversion.Version{}, err
	}

	key, _, _ := strings.Cut(selection, " ")
	for _, group := range groups {
		if group.Key != key {
			continue
		}
		if len(group.Versions) == 1 {
			return group.Versions[0], nil
		}
		return p.pickFromList(message, group.Versions)
	}

	return pyversion.Version{}, fmt.Errorf("未知的版本分组: %s", selection)
}

func groupLabel(group pyversion.Group) string {
	return fmt.Sprintf("%s (%d 个版本，最新 %s)", group.Key, len(group.Versions), group.Versions[0])
}

// PickPackages 从搜索结果中多选要安装的包
func PickPackages(prompter Prompter, results []packages.SearchResult) ([]string, error) {
	if len(results) == 0 {
		return nil, ErrNoChoices
	}

	options := make([]string, 0, len(results))
	for _, result := range results {
		options = append(options, fmt.Sprintf("%s - %s", result.Name, result.Description))
	}

	selected, err := prompter.MultiSelect("从搜索结果中选择要安装的包:", options)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(selected))
	for _, option := range selected {
		name, _, _ := strings.Cut(option, " - ")
		names = append(names, name)
	}
	return names, nil
}

// ConfirmAction 请求用户确认
func ConfirmAction(prompter Prompter, message string) (bool, error) {
	return prompter.Confirm(message, false)
}
