package discovery

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bbq191/pythonest/internal/pyversion"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeRunner 按可执行文件返回预设输出
type fakeRunner struct {
	mu      sync.Mutex
	paths   map[string]string
	stdout  map[string]string
	stderr  map[string]string
	failing map[string]bool
	calls   []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		paths:   make(map[string]string),
		stdout:  make(map[string]string),
		stderr:  make(map[string]string),
		failing: make(map[string]bool),
	}
}

func (f *fakeRunner) Output(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if f.failing[name] {
		return nil, nil, errors.New("exit status 1")
	}
	return []byte(f.stdout[name]), []byte(f.stderr[name]), nil
}

func (f *fakeRunner) Start(name string, args ...string) (int, error) {
	return 0, errors.New("not supported")
}

func (f *fakeRunner) LookPath(file string) (string, error) {
	if path, ok := f.paths[file]; ok {
		return path, nil
	}
	return "", errors.New("not found")
}

// fakeProbe 返回固定结果的探测
type fakeProbe struct {
	name    string
	records []Record
	err     error
}

func (p *fakeProbe) Name() string { return p.name }

func (p *fakeProbe) Probe(ctx context.Context) ([]Record, error) {
	return p.records, p.err
}

func record(version, exe, source string) Record {
	return Record{Version: pyversion.MustParse(version), Executable: exe, Source: source}
}

func writeExecutable(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
}

// TestExtractVersion 测试从标准输出或标准错误提取版本
func TestExtractVersion(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		stderr string
		want   string
		ok     bool
	}{
		{"标准输出", "Python 3.11.5\n", "", "3.11.5", true},
		{"标准错误", "", "Python 2.7.18\n", "2.7.18", true},
		{"预发布版本", "Python 3.13.0rc1\n", "", "3.13.0", true},
		{"无版本", "command not found", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := ExtractVersion([]byte(tt.stdout), []byte(tt.stderr))
			if ok != tt.ok {
				t.Fatalf("ok = %v, 期望 %v", ok, tt.ok)
			}
			if ok && v.String() != tt.want {
				t.Errorf("版本 = %s, 期望 %s", v, tt.want)
			}
		})
	}
}

// TestLauncherProbe 测试 py -0p 输出解析
func TestLauncherProbe(t *testing.T) {
	runner := newFakeRunner()
	runner.paths["py"] = `C:\Windows\py.exe`
	runner.stdout[`C:\Windows\py.exe`] = "Installed Pythons found by py Launcher for Windows\n" +
		" -V:3.12 *        C:\\Python312\\python.exe\n" +
		" -3.10-64         C:\\Python310\\python.exe\n" +
		" -V:ContinuumAnalytics/Anaconda39-64 C:\\Anaconda3\\python.exe\n" +
		" -3.8\n"
	runner.stdout[`C:\Python312\python.exe`] = "Python 3.12.1"
	runner.failing[`C:\Python310\python.exe`] = true

	records, err := NewLauncherProbe(runner, testLogger()).Probe(context.Background())
	if err != nil {
		t.Fatalf("探测失败: %v", err)
	}

	want := []string{"3.12.1", "3.10.0", "3.8.0"}
	if len(records) != len(want) {
		t.Fatalf("记录数 = %d, 期望 %d: %+v", len(records), len(want), records)
	}
	for i, w := range want {
		if records[i].Version.String() != w {
			t.Errorf("records[%d] = %s, 期望 %s", i, records[i].Version, w)
		}
		if records[i].Source != SourceLauncher {
			t.Errorf("来源 = %s, 期望 launcher", records[i].Source)
		}
	}
	if records[0].Executable != `C:\Python312\python.exe` {
		t.Errorf("可执行文件 = %q", records[0].Executable)
	}
}

// TestLauncherProbe_Unavailable 测试没有 py 启动器
func TestLauncherProbe_Unavailable(t *testing.T) {
	_, err := NewLauncherProbe(newFakeRunner(), testLogger()).Probe(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, 期望 ErrUnavailable", err)
	}
}

// TestPathProbe 测试 PATH 扫描
func TestPathProbe(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	python3 := filepath.Join(dirA, "python3")
	python311 := filepath.Join(dirB, "python3.11")
	python314 := filepath.Join(dirB, "python3.14")
	configScript := filepath.Join(dirB, "python3.11-config")
	broken := filepath.Join(dirB, "python")
	writeExecutable(t, python3)
	writeExecutable(t, python311)
	writeExecutable(t, python314)
	writeExecutable(t, configScript)
	writeExecutable(t, broken)

	// 不可执行的文件应被忽略
	if err := os.WriteFile(filepath.Join(dirA, "python"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	runner := newFakeRunner()
	runner.stdout[python3] = "Python 3.12.0\n"
	runner.stderr[python311] = "Python 3.11.5\n"
	runner.stdout[python314] = "Python 3.14.0\n"
	runner.stdout[broken] = "garbage"

	probe := NewPathProbe(runner, testLogger())
	probe.goos = "linux"
	probe.getenv = func(key string) string {
		if key == "PATH" {
			return dirA + string(os.PathListSeparator) + string(os.PathListSeparator) + dirB
		}
		return ""
	}

	records, err := probe.Probe(context.Background())
	if err != nil {
		t.Fatalf("探测失败: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("记录数 = %d, 期望 3: %+v", len(records), records)
	}
	if records[0].Version.String() != "3.12.0" || records[0].Executable != python3 {
		t.Errorf("records[0] = %+v", records[0])
	}
	if records[1].Version.String() != "3.11.5" {
		t.Errorf("records[1] = %+v", records[1])
	}
	if records[2].Version.String() != "3.14.0" || records[2].Executable != python314 {
		t.Errorf("python3.X 形式的新版本应该被发现: %+v", records[2])
	}
	for _, call := range runner.calls {
		if call == filepath.Join(dirA, "python") {
			t.Error("不可执行的文件不应该被运行")
		}
		if call == configScript {
			t.Error("python3.X-config 不应该被当作解释器运行")
		}
	}
}

// TestCustomPathProbe 测试递归遍历自定义目录
func TestCustomPathProbe(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "envs", "tools", "bin", "python3")
	writeExecutable(t, nested)
	writeExecutable(t, filepath.Join(root, "other", "python2"))

	runner := newFakeRunner()
	runner.stdout[nested] = "Python 3.9.18"

	probe := NewCustomPathProbe([]string{root, filepath.Join(root, "missing")}, runner, testLogger())
	probe.goos = "linux"

	records, err := probe.Probe(context.Background())
	if err != nil {
		t.Fatalf("探测失败: %v", err)
	}
	if len(records) != 1 || records[0].Version.String() != "3.9.18" || records[0].Source != SourceCustom {
		t.Errorf("records = %+v", records)
	}
	if records[0].InstallDir() != filepath.Dir(nested) {
		t.Errorf("InstallDir = %q", records[0].InstallDir())
	}
}

// TestRunner_MergeAndSort 测试合并去重与数值排序
func TestRunner_MergeAndSort(t *testing.T) {
	probes := []Probe{
		&fakeProbe{name: SourceRegistry, records: []Record{
			record("3.10.0", "", SourceRegistry),
			record("3.9.10", `C:\Python39\python.exe`, SourceRegistry),
		}},
		&fakeProbe{name: SourceLauncher, err: ErrUnavailable},
		&fakeProbe{name: SourcePath, records: []Record{
			record("3.9.9", "/usr/bin/python3.9", SourcePath),
			record("3.10.0", "/usr/bin/python3.10", SourcePath),
			record("3.9.10", "/usr/local/bin/python3", SourcePath),
		}},
	}

	report := NewRunnerWithProbes(probes, testLogger()).Discover(context.Background())

	got := pyversion.Strings(report.Versions())
	want := []string{"3.9.9", "3.9.10", "3.10.0"}
	if len(got) != len(want) {
		t.Fatalf("版本 = %v, 期望 %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("版本 = %v, 期望 %v", got, want)
			break
		}
	}

	if report.HasErrors() {
		t.Errorf("不可用的探测不应计为失败: %v", report.Errors)
	}

	r, ok := report.Find(pyversion.MustParse("3.10.0"))
	if !ok || r.Executable != "/usr/bin/python3.10" || r.Source != SourceRegistry {
		t.Errorf("缺少路径的记录应由后续记录补齐: %+v", r)
	}
	r, _ = report.Find(pyversion.MustParse("3.9.10"))
	if r.Executable != `C:\Python39\python.exe` {
		t.Errorf("先出现的记录应该优先: %+v", r)
	}
}

// TestRunner_ProbeErrorReported 测试探测失败被报告而不是吞掉
func TestRunner_ProbeErrorReported(t *testing.T) {
	probes := []Probe{
		&fakeProbe{name: SourceCustom, records: []Record{record("3.8.10", "/opt/py/bin/python3", SourceCustom)}, err: errors.New("permission denied")},
		&fakeProbe{name: SourcePath},
	}

	runner := NewRunnerWithProbes(probes, testLogger())
	report := runner.Discover(context.Background())

	if len(report.Errors) != 1 || report.Errors[0].Probe != SourceCustom {
		t.Fatalf("Errors = %+v", report.Errors)
	}
	if len(report.Records) != 1 {
		t.Errorf("部分结果应该保留: %+v", report.Records)
	}

	versions := runner.Versions(context.Background())
	if len(versions) != 1 || versions[0].String() != "3.8.10" {
		t.Errorf("Versions = %v", versions)
	}
}
