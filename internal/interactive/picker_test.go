package interactive

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/bbq191/pythonest/internal/config"
	"github.com/bbq191/pythonest/internal/packages"
	"github.com/bbq191/pythonest/internal/pyversion"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// scriptedPrompter 按顺序返回预设答案并记录提问
type scriptedPrompter struct {
	answers  []string
	multi    []string
	confirm  bool
	err      error
	asked    [][]string
	messages []string
}

func (p *scriptedPrompter) Select(message string, options []string, help string) (string, error) {
	p.messages = append(p.messages, message)
	p.asked = append(p.asked, options)
	if p.err != nil {
		return "", p.err
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	for _, option := range options {
		if strings.HasPrefix(option, answer) {
			return option, nil
		}
	}
	return answer, nil
}

func (p *scriptedPrompter) MultiSelect(message string, options []string) ([]string, error) {
	p.asked = append(p.asked, options)
	var selected []string
	for _, want := range p.multi {
		for _, option := range options {
			if strings.HasPrefix(option, want+" ") {
				selected = append(selected, option)
			}
		}
	}
	return selected, p.err
}

func (p *scriptedPrompter) Confirm(message string, def bool) (bool, error) {
	return p.confirm, p.err
}

func versions(raws ...string) []pyversion.Version {
	return pyversion.ParseAll(raws)
}

// TestPick_List 测试列表模式
func TestPick_List(t *testing.T) {
	prompter := &scriptedPrompter{answers: []string{"3.11.4"}}
	picker := NewVersionPicker(config.SelectionList, testLogger()).WithPrompter(prompter)

	got, err := picker.Pick("选择版本:", versions("3.10.1", "3.11.4", "3.12.0"))
	if err != nil {
		t.Fatalf("选择失败: %v", err)
	}
	if got.String() != "3.11.4" {
		t.Errorf("期望 3.11.4，实际为 %s", got)
	}
	if len(prompter.asked) != 1 {
		t.Fatalf("列表模式应该只提问一次，实际 %d 次", len(prompter.asked))
	}
	if strings.Join(prompter.asked[0], ",") != "3.12.0,3.11.4,3.10.1" {
		t.Errorf("选项应按降序排列: %v", prompter.asked[0])
	}
}

// TestPick_Grouped 测试分组模式
func TestPick_Grouped(t *testing.T) {
	prompter := &scriptedPrompter{answers: []string{"3.11 ", "3.11.2"}}
	picker := NewVersionPicker(config.SelectionGrouped, testLogger()).WithPrompter(prompter)

	got, err := picker.Pick("选择版本:", versions("3.10.1", "3.11.2", "3.11.4", "3.12.0"))
	if err != nil {
		t.Fatalf("选择失败: %v", err)
	}
	if got.String() != "3.11.2" {
		t.Errorf("期望 3.11.2，实际为 %s", got)
	}
	if len(prompter.asked) != 2 {
		t.Fatalf("分组模式应该提问两次，实际 %d 次", len(prompter.asked))
	}
	if !strings.HasPrefix(prompter.asked[0][0], "3.12 ") {
		t.Errorf("分组应按降序排列: %v", prompter.asked[0])
	}
	if strings.Join(prompter.asked[1], ",") != "3.11.4,3.11.2" {
		t.Errorf("组内版本错误: %v", prompter.asked[1])
	}
}

// TestPick_GroupedSingle 测试只有一个版本的分组直接返回
func TestPick_GroupedSingle(t *testing.T) {
	prompter := &scriptedPrompter{answers: []string{"3.10 "}}
	picker := NewVersionPicker("", testLogger()).WithPrompter(prompter)

	if picker.Mode() != config.SelectionGrouped {
		t.Errorf("未知模式应回退到 grouped，实际为 %s", picker.Mode())
	}

	got, err := picker.Pick("选择版本:", versions("3.10.1", "3.11.4"))
	if err != nil {
		t.Fatalf("选择失败: %v", err)
	}
	if got.String() != "3.10.1" || len(prompter.asked) != 1 {
		t.Errorf("期望直接返回 3.10.1，实际为 %s (提问 %d 次)", got, len(prompter.asked))
	}
}

// TestPick_Errors 测试空选项与取消
func TestPick_Errors(t *testing.T) {
	picker := NewVersionPicker(config.SelectionList, testLogger()).WithPrompter(&scriptedPrompter{})
	if _, err := picker.Pick("选择版本:", nil); !errors.Is(err, ErrNoChoices) {
		t.Errorf("空版本列表应该返回 ErrNoChoices，实际为 %v", err)
	}

	interrupted := errors.New("interrupt")
	picker.WithPrompter(&scriptedPrompter{err: interrupted})
	if _, err := picker.Pick("选择版本:", versions("3.12.0")); !errors.Is(err, interrupted) {
		t.Errorf("提问失败应原样返回错误，实际为 %v", err)
	}
}

// TestPickPackages 测试从搜索结果中多选
func TestPickPackages(t *testing.T) {
	prompter := &scriptedPrompter{multi: []string{"requests", "httpx"}}
	results := []packages.SearchResult{
		{Name: "requests", Description: "HTTP for Humans"},
		{Name: "requests-mock", Description: "Mock requests"},
		{Name: "httpx", Description: "The next generation HTTP client"},
	}

	names, err := PickPackages(prompter, results)
	if err != nil {
		t.Fatalf("选择失败: %v", err)
	}
	if strings.Join(names, ",") != "requests,httpx" {
		t.Errorf("选择结果错误: %v", names)
	}

	if _, err := PickPackages(prompter, nil); !errors.Is(err, ErrNoChoices) {
		t.Errorf("空结果应该返回 ErrNoChoices，实际为 %v", err)
	}
}

// TestIsEnabled_Env 测试环境变量覆盖
func TestIsEnabled_Env(t *testing.T) {
	t.Setenv(EnvInteractive, "0")
	if IsEnabled() {
		t.Error("环境变量为 0 时应禁用交互")
	}
	if !strings.Contains(DisabledReason(), EnvInteractive) {
		t.Errorf("禁用原因应提到环境变量: %s", DisabledReason())
	}

	t.Setenv(EnvInteractive, "true")
	if !IsEnabled() {
		t.Error("环境变量为 true 时应启用交互")
	}
}
