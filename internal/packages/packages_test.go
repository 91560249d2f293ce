package packages

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// MockPackageManager 模拟包管理器
type MockPackageManager struct {
	name         string
	available    bool
	installed    map[string]bool
	failOn       map[string]bool
	installDelay time.Duration
	upgrades     []string
	forced       []string
	running      int
	maxRunning   int
	mu           sync.Mutex
}

func NewMockPackageManager(name string) *MockPackageManager {
	return &MockPackageManager{
		name:      name,
		available: true,
		installed: make(map[string]bool),
		failOn:    make(map[string]bool),
	}
}

func (m *MockPackageManager) Name() string { return m.name }

func (m *MockPackageManager) IsAvailable(ctx context.Context) bool { return m.available }

func (m *MockPackageManager) Install(ctx context.Context, packageName string, opts InstallOptions) error {
	m.mu.Lock()
	m.running++
	if m.running > m.maxRunning {
		m.maxRunning = m.running
	}
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.running--
		m.mu.Unlock()
	}()

	if m.installDelay > 0 {
		select {
		case <-time.After(m.installDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn[packageName] {
		return fmt.Errorf("模拟安装失败: %s", packageName)
	}
	if opts.Upgrade {
		m.upgrades = append(m.upgrades, packageName)
	}
	if opts.Force {
		m.forced = append(m.forced, packageName)
	}
	m.installed[packageName] = true
	return nil
}

func (m *MockPackageManager) Uninstall(ctx context.Context, packageName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.installed[packageName] {
		return errors.New("包未安装")
	}
	delete(m.installed, packageName)
	return nil
}

func (m *MockPackageManager) List(ctx context.Context) ([]Package, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pkgs []Package
	for name := range m.installed {
		pkgs = append(pkgs, Package{Name: name, Version: "1.0"})
	}
	return pkgs, nil
}

func (m *MockPackageManager) Outdated(ctx context.Context) ([]Package, error) {
	return nil, nil
}

func (m *MockPackageManager) IsInstalled(ctx context.Context, packageName string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.installed[packageName]
}

func (m *MockPackageManager) SetInstalled(packageName string, installed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.installed[packageName] = installed
}

// TestInstallPackage_Success 测试成功安装包
func TestInstallPackage_Success(t *testing.T) {
	mockManager := NewMockPackageManager("test")
	installer := NewInstaller(mockManager, testLogger())

	result, err := installer.InstallPackage(context.Background(), "requests", InstallOptions{})
	if err != nil {
		t.Fatalf("安装应该成功，但返回错误: %v", err)
	}
	if !result.Success || result.Skipped {
		t.Errorf("安装结果异常: %+v", result)
	}
	if result.Manager != "test" {
		t.Errorf("期望管理器为 'test'，实际为 '%s'", result.Manager)
	}
	if !mockManager.IsInstalled(context.Background(), "requests") {
		t.Error("包应该已被安装")
	}
}

// TestInstallPackage_AlreadyInstalled 测试跳过已安装包
func TestInstallPackage_AlreadyInstalled(t *testing.T) {
	mockManager := NewMockPackageManager("test")
	mockManager.SetInstalled("requests", true)
	installer := NewInstaller(mockManager, testLogger())

	result, err := installer.InstallPackage(context.Background(), "requests", InstallOptions{})
	if err != nil {
		t.Fatalf("跳过已安装包应该成功，但返回错误: %v", err)
	}
	if !result.Skipped {
		t.Error("已安装的包应该被跳过")
	}

	result, err = installer.InstallPackage(context.Background(), "requests", InstallOptions{Upgrade: true})
	if err != nil {
		t.Fatalf("升级应该成功，但返回错误: %v", err)
	}
	if result.Skipped {
		t.Error("升级模式不应该跳过已安装包")
	}
	if len(mockManager.upgrades) != 1 || mockManager.upgrades[0] != "requests" {
		t.Errorf("期望升级 requests，实际为 %v", mockManager.upgrades)
	}
}

// TestInstallPackage_Force 测试强制模式重新安装已安装的包
func TestInstallPackage_Force(t *testing.T) {
	mockManager := NewMockPackageManager("test")
	mockManager.SetInstalled("requests", true)
	installer := NewInstaller(mockManager, testLogger())

	result, err := installer.InstallPackage(context.Background(), "requests", InstallOptions{Force: true})
	if err != nil {
		t.Fatalf("强制安装应该成功，但返回错误: %v", err)
	}
	if result.Skipped {
		t.Error("强制模式不应该跳过已安装包")
	}
	if len(mockManager.forced) != 1 || mockManager.forced[0] != "requests" {
		t.Errorf("强制选项应该传给包管理器，实际为 %v", mockManager.forced)
	}
}

// TestInstallPackage_DryRun 测试预览模式
func TestInstallPackage_DryRun(t *testing.T) {
	mockManager := NewMockPackageManager("test")
	installer := NewInstaller(mockManager, testLogger())

	result, err := installer.InstallPackage(context.Background(), "requests", InstallOptions{DryRun: true})
	if err != nil {
		t.Fatalf("预览模式应该成功，但返回错误: %v", err)
	}
	if !result.Success {
		t.Error("预览模式应该标记为成功")
	}
	if mockManager.IsInstalled(context.Background(), "requests") {
		t.Error("预览模式不应该实际安装包")
	}
}

// TestInstallPackage_Unavailable 测试包管理器不可用
func TestInstallPackage_Unavailable(t *testing.T) {
	mockManager := NewMockPackageManager("test")
	mockManager.available = false
	installer := NewInstaller(mockManager, testLogger())

	result, err := installer.InstallPackage(context.Background(), "requests", InstallOptions{})
	if err == nil {
		t.Fatal("包管理器不可用时应该返回错误")
	}
	if result.Success || result.Error == nil {
		t.Errorf("结果应该标记为失败: %+v", result)
	}
}

// TestInstallPackages_StopsOnFailure 测试批量安装遇到失败时停止
func TestInstallPackages_StopsOnFailure(t *testing.T) {
	mockManager := NewMockPackageManager("test")
	mockManager.failOn["pkg2"] = true
	installer := NewInstaller(mockManager, testLogger())

	results, err := installer.InstallPackages(context.Background(), []string{"pkg1", "pkg2", "pkg3"}, InstallOptions{Quiet: true})
	if err != nil {
		t.Fatalf("批量安装不应该返回错误: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("期望 2 个结果，实际获得 %d 个", len(results))
	}
	if results[1].Success {
		t.Error("pkg2 应该安装失败")
	}
	if mockManager.IsInstalled(context.Background(), "pkg3") {
		t.Error("失败后不应该继续安装 pkg3")
	}
}

// TestInstallPackages_ForceContinues 测试 Force 模式失败后继续
func TestInstallPackages_ForceContinues(t *testing.T) {
	mockManager := NewMockPackageManager("test")
	mockManager.failOn["pkg2"] = true
	installer := NewInstaller(mockManager, testLogger())

	packages := []string{"pkg1", "pkg2", "pkg3"}
	results, err := installer.InstallPackages(context.Background(), packages, InstallOptions{Quiet: true, Force: true})
	if err != nil {
		t.Fatalf("批量安装不应该返回错误: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("期望 3 个结果，实际获得 %d 个", len(results))
	}
	for i, result := range results {
		if result.PackageName != packages[i] {
			t.Errorf("结果 %d 的包名应该是 '%s'，实际为 '%s'", i, packages[i], result.PackageName)
		}
	}
	successful, failed := countResults(results)
	if successful != 2 || failed != 1 {
		t.Errorf("期望成功 2 失败 1，实际成功 %d 失败 %d", successful, failed)
	}
}

// TestInstallPackages_Cancelled 测试取消批量安装
func TestInstallPackages_Cancelled(t *testing.T) {
	installer := NewInstaller(NewMockPackageManager("test"), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := installer.InstallPackages(ctx, []string{"pkg1"}, InstallOptions{Quiet: true})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("期望 context.Canceled，实际为 %v", err)
	}
	if len(results) != 0 {
		t.Errorf("取消后不应该有结果，实际 %d 个", len(results))
	}
}

// TestUninstall 测试卸载
func TestUninstall(t *testing.T) {
	mockManager := NewMockPackageManager("test")
	mockManager.SetInstalled("requests", true)
	installer := NewInstaller(mockManager, testLogger())

	if err := installer.Uninstall(context.Background(), "requests"); err != nil {
		t.Fatalf("卸载失败: %v", err)
	}
	if err := installer.Uninstall(context.Background(), "requests"); err == nil {
		t.Error("卸载未安装的包应该返回错误")
	}
}

// TestParallelInstaller 测试并行安装保持输入顺序
func TestParallelInstaller(t *testing.T) {
	mockManager := NewMockPackageManager("test")
	mockManager.installDelay = 20 * time.Millisecond
	mockManager.failOn["broken"] = true
	installer := NewInstaller(mockManager, testLogger())

	parallelInst := NewParallelInstaller(installer, 3)
	packages := []string{"numpy", "broken", "pandas", "requests"}

	start := time.Now()
	results, err := parallelInst.InstallPackagesParallel(context.Background(), packages, InstallOptions{Quiet: true})
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("并行安装不应该返回错误: %v", err)
	}
	if len(results) != len(packages) {
		t.Fatalf("期望 %d 个结果，实际获得 %d 个", len(packages), len(results))
	}
	for i, result := range results {
		if result.PackageName != packages[i] {
			t.Errorf("结果 %d 的包名应该是 '%s'，实际为 '%s'", i, packages[i], result.PackageName)
		}
		wantSuccess := packages[i] != "broken"
		if result.Success != wantSuccess {
			t.Errorf("包 %s 的成功状态应为 %v", packages[i], wantSuccess)
		}
	}
	if elapsed > time.Second {
		t.Errorf("并行安装耗时过长: %v", elapsed)
	}
}

// TestParallelInstaller_SerializesInstalls 测试同一解释器上的 pip 安装不会并发执行
func TestParallelInstaller_SerializesInstalls(t *testing.T) {
	mockManager := NewMockPackageManager("test")
	mockManager.installDelay = 10 * time.Millisecond
	installer := NewInstaller(mockManager, testLogger())

	packages := []string{"pandas", "scipy", "numpy", "matplotlib", "seaborn"}
	results, err := NewParallelInstaller(installer, 4).InstallPackagesParallel(context.Background(), packages, InstallOptions{Quiet: true})
	if err != nil {
		t.Fatalf("并行安装不应该返回错误: %v", err)
	}
	successful, failed := countResults(results)
	if successful != len(packages) || failed != 0 {
		t.Errorf("期望全部成功，实际成功 %d 失败 %d", successful, failed)
	}
	if mockManager.maxRunning != 1 {
		t.Errorf("同一时刻最多只能有 1 个安装进程，实际为 %d", mockManager.maxRunning)
	}
}

// TestNewParallelInstaller_DefaultWorkers 测试默认工作协程数
func TestNewParallelInstaller_DefaultWorkers(t *testing.T) {
	parallelInst := NewParallelInstaller(NewInstaller(NewMockPackageManager("test"), testLogger()), 0)
	if parallelInst.maxWorkers <= 0 {
		t.Error("默认工作协程数应该大于 0")
	}
}

// TestGetOptimalWorkerCount 测试最佳工作协程数计算
func TestGetOptimalWorkerCount(t *testing.T) {
	if got := GetOptimalWorkerCount(1); got != 1 {
		t.Errorf("单包应该使用 1 个协程，实际 %d", got)
	}
	if got := GetOptimalWorkerCount(2); got != 1 {
		t.Errorf("2 个包应该使用 1 个协程，实际 %d", got)
	}
	if got := GetOptimalWorkerCount(100); got < 1 {
		t.Errorf("协程数应该大于 0，实际 %d", got)
	}
}

// TestBatchProgress 测试进度显示输出汇总
func TestBatchProgress(t *testing.T) {
	var out bytes.Buffer
	bp := newBatchProgress([]string{"numpy", "pandas"}, testLogger(), true, &out)
	bp.Begin()

	bp.Notify(Update{Package: "numpy", Stage: StageRunning})
	numpy := &InstallResult{PackageName: "numpy", Success: true, Duration: 1.5}
	bp.Record(numpy)
	bp.Notify(updateFor(numpy, nil))
	pandas := &InstallResult{PackageName: "pandas", Error: errors.New("boom")}
	bp.Record(pandas)
	bp.Notify(updateFor(pandas, pandas.Error))
	bp.End()

	summary := bp.Summary()
	if summary.Succeeded != 1 || summary.Failed != 1 {
		t.Errorf("期望成功 1 失败 1，实际 %+v", summary)
	}
	if summary.Results[0].PackageName != "numpy" {
		t.Errorf("汇总应保持输入顺序: %+v", summary.Results)
	}
	if !strings.Contains(out.String(), "失败 1") {
		t.Errorf("输出中应该包含汇总: %s", out.String())
	}

	// 重复结束不应 panic，结束后的更新被忽略
	bp.End()
	bp.Notify(Update{Package: "late"})
}

// TestBatchProgress_NormalizedNames 测试结果按规范化包名匹配输入
func TestBatchProgress_NormalizedNames(t *testing.T) {
	bp := newBatchProgress([]string{"Django", "zope.interface"}, testLogger(), false, io.Discard)
	bp.Record(&InstallResult{PackageName: "django", Success: true})
	bp.Record(&InstallResult{PackageName: "zope-interface", Error: errors.New("boom")})

	summary := bp.Summary()
	if len(summary.Results) != 2 || summary.Succeeded != 1 || summary.Failed != 1 {
		t.Errorf("大小写或分隔符不同的包名应该匹配输入: %+v", summary)
	}
}

// TestUpdateFor 测试结果到阶段的映射
func TestUpdateFor(t *testing.T) {
	if u := updateFor(&InstallResult{PackageName: "a", Success: true, Skipped: true}, nil); u.Stage != StageSkipped {
		t.Errorf("跳过的包阶段应为 StageSkipped，实际 %v", u.Stage)
	}
	if u := updateFor(&InstallResult{PackageName: "a"}, errors.New("x")); u.Stage != StageFailed || u.Err == nil {
		t.Errorf("失败的包阶段应为 StageFailed，实际 %+v", u)
	}
}

// pipRunner 模拟 pip 命令输出
type pipRunner struct {
	outputs map[string]string
	failing map[string]bool
	calls   [][]string
}

func (r *pipRunner) Output(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	key := strings.Join(args[3:], " ")
	if r.failing[key] {
		return nil, []byte("ERROR"), errors.New("exit status 1")
	}
	return []byte(r.outputs[key]), nil, nil
}

func (r *pipRunner) Start(name string, args ...string) (int, error) { return 0, nil }

func (r *pipRunner) LookPath(file string) (string, error) { return "", errors.New("not found") }

// TestPipManager 测试 pip 命令构造与输出解析
func TestPipManager(t *testing.T) {
	runner := &pipRunner{
		outputs: map[string]string{
			"list --format=json":            `[{"name":"requests","version":"2.31.0"},{"name":"pip","version":"23.2"}]`,
			"list --outdated --format=json": `[{"name":"pip","version":"23.2","latest_version":"24.0"}]`,
		},
		failing: map[string]bool{"show --quiet missing": true},
	}
	pip := NewPipManager("/usr/bin/python3", runner, testLogger())
	ctx := context.Background()

	if !pip.IsAvailable(ctx) {
		t.Error("pip 应该可用")
	}

	pkgs, err := pip.List(ctx)
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(pkgs) != 2 || pkgs[0].Name != "requests" || pkgs[0].Version != "2.31.0" {
		t.Errorf("List 结果错误: %+v", pkgs)
	}

	outdated, err := pip.Outdated(ctx)
	if err != nil {
		t.Fatalf("Outdated 失败: %v", err)
	}
	if len(outdated) != 1 || outdated[0].LatestVersion != "24.0" {
		t.Errorf("Outdated 结果错误: %+v", outdated)
	}

	if !pip.IsInstalled(ctx, "requests") {
		t.Error("requests 应该已安装")
	}
	if pip.IsInstalled(ctx, "missing") {
		t.Error("missing 不应该已安装")
	}

	runner.calls = nil
	if err := pip.Install(ctx, "numpy", InstallOptions{Upgrade: true}); err != nil {
		t.Fatalf("Install 失败: %v", err)
	}
	want := "/usr/bin/python3 -m pip --disable-pip-version-check install --upgrade numpy"
	if got := strings.Join(runner.calls[0], " "); got != want {
		t.Errorf("命令应为 %q，实际为 %q", want, got)
	}

	runner.calls = nil
	if err := pip.Install(ctx, "requests", InstallOptions{Force: true}); err != nil {
		t.Fatalf("强制安装失败: %v", err)
	}
	want = "/usr/bin/python3 -m pip --disable-pip-version-check install --force-reinstall requests"
	if got := strings.Join(runner.calls[0], " "); got != want {
		t.Errorf("命令应为 %q，实际为 %q", want, got)
	}

	runner.calls = nil
	if err := pip.Uninstall(ctx, "numpy"); err != nil {
		t.Fatalf("Uninstall 失败: %v", err)
	}
	if got := strings.Join(runner.calls[0][4:], " "); got != "uninstall -y numpy" {
		t.Errorf("卸载参数错误: %s", got)
	}
}

// TestPipManager_BadOutput 测试无法解析的输出
func TestPipManager_BadOutput(t *testing.T) {
	runner := &pipRunner{outputs: map[string]string{"list --format=json": "not json"}}
	pip := NewPipManager("python", runner, testLogger())

	if _, err := pip.List(context.Background()); err == nil {
		t.Error("无法解析的输出应该返回错误")
	}
}

// TestUniqueNames 测试按规范化包名去重
func TestUniqueNames(t *testing.T) {
	got := UniqueNames([]string{"Requests", "numpy", "requests", "typing_extensions", "typing-extensions", " "})
	want := []string{"Requests", "numpy", "typing_extensions"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("UniqueNames = %v，期望 %v", got, want)
	}
}

// TestNormalizeName 测试包名规范化
func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"Requests":            "requests",
		"zope.interface":      "zope-interface",
		" typing_Extensions ": "typing-extensions",
	}
	for input, want := range tests {
		if got := NormalizeName(input); got != want {
			t.Errorf("NormalizeName(%q) = %q，期望 %q", input, got, want)
		}
	}
}

const searchPage = `<html><body><ul>
<li><a class="package-snippet" href="/project/requests/">
  <span class="package-snippet__name">requests</span>
  <span class="package-snippet__version">2.31.0</span>
  <p class="package-snippet__description">Python HTTP for Humans.</p>
</a></li>
<li><a class="package-snippet" href="/project/requests-mock/">
  <span class="package-snippet__name">requests-mock</span>
  <span class="package-snippet__version">1.11.0</span>
  <p class="package-snippet__description">Mock out responses from the requests package</p>
</a></li>
<li><a class="package-snippet" href="/project/requests-oauthlib/">
  <span class="package-snippet__name">requests-oauthlib</span>
  <span class="package-snippet__version">1.3.1</span>
  <p class="package-snippet__description">OAuthlib authentication support for Requests.</p>
</a></li>
</ul></body></html>`

const infoPayload = `{
  "info": {"name": "requests", "version": "2.31.0", "summary": "Python HTTP for Humans.", "license": "Apache 2.0", "requires_python": ">=3.7"},
  "releases": {"2.9.0": [], "2.31.0": [], "2.10.0": [], "weird-tag": []}
}`

func newPyPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "requests" {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, searchPage)
	})
	mux.HandleFunc("/pypi/requests/json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, infoPayload)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// TestPyPISearch 测试搜索结果解析
func TestPyPISearch(t *testing.T) {
	server := newPyPIServer(t)
	pypi := NewPyPI(server.URL+"/", testLogger()).WithClient(server.Client())

	results, err := pypi.Search(context.Background(), "requests", 2)
	if err != nil {
		t.Fatalf("搜索失败: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("期望 2 个结果，实际 %d 个", len(results))
	}
	if results[0].Name != "requests" || results[0].Version != "2.31.0" || results[0].Description != "Python HTTP for Humans." {
		t.Errorf("第一个结果错误: %+v", results[0])
	}

	if _, err := pypi.Search(context.Background(), "  ", 10); err == nil {
		t.Error("空关键词应该返回错误")
	}
}

// TestPyPIInfo 测试包详情解析
func TestPyPIInfo(t *testing.T) {
	server := newPyPIServer(t)
	pypi := NewPyPI(server.URL, testLogger()).WithClient(server.Client())

	info, err := pypi.Info(context.Background(), "requests")
	if err != nil {
		t.Fatalf("获取包详情失败: %v", err)
	}
	if info.Name != "requests" || info.RequiresPython != ">=3.7" {
		t.Errorf("包详情错误: %+v", info)
	}
	want := []string{"2.31.0", "2.10.0", "2.9.0", "weird-tag"}
	if strings.Join(info.Releases, ",") != strings.Join(want, ",") {
		t.Errorf("版本排序应为 %v，实际为 %v", want, info.Releases)
	}

	if _, err := pypi.Info(context.Background(), "missing"); err == nil {
		t.Error("不存在的包应该返回错误")
	}
}
