package mirror

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/bbq191/pythonest/internal/pyversion"
)

// urlData 地址模板的渲染上下文
type urlData struct {
	Base       string
	Version    string
	MajorMinor string
	Installer  string
}

var (
	urlTemplates     = make(map[Kind]*template.Template)
	listingTemplates = make(map[Kind]*template.Template)
)

func init() {
	funcMap := sprig.TxtFuncMap() // 加载 Sprig 标准函数库

	for kind, info := range kinds {
		urlTemplates[kind] = template.Must(template.New(info.name).Funcs(funcMap).Parse(info.template))
		listingTemplates[kind] = template.Must(template.New(info.name + "-listing").Funcs(funcMap).Parse(info.listing))
	}
}

// InstallerName 返回平台安装包文件名
func InstallerName(goos string, version pyversion.Version) string {
	switch goos {
	case "windows":
		return fmt.Sprintf("python-%s-amd64.exe", version)
	case "darwin":
		return fmt.Sprintf("python-%s-macos11.pkg", version)
	default:
		return fmt.Sprintf("Python-%s.tgz", version)
	}
}

// DownloadURL 构造 Windows 安装包的下载地址
func DownloadURL(sourceURL string, version pyversion.Version) (string, error) {
	return DownloadURLFor("windows", sourceURL, version)
}

// DownloadURLFor 按平台安装包命名构造下载地址
func DownloadURLFor(goos, sourceURL string, version pyversion.Version) (string, error) {
	if version.IsZero() {
		return "", fmt.Errorf("无效的版本号")
	}
	if strings.TrimSpace(sourceURL) == "" {
		return "", fmt.Errorf("下载源地址为空")
	}

	kind := KindOf(sourceURL)
	if kind == KindAliyun && goos != "windows" {
		return "", fmt.Errorf("阿里云镜像只提供 Windows 安装包，请为 %s 选择其他下载源", goos)
	}
	data := urlData{
		Base:       strings.TrimSpace(sourceURL),
		Version:    version.String(),
		MajorMinor: version.MajorMinor(),
		Installer:  InstallerName(goos, version),
	}
	return render(urlTemplates[kind], data)
}

// OfficialURL 官网下载地址，用于不可靠镜像失败后的回退
func OfficialURL(goos string, version pyversion.Version) string {
	url, _ := DownloadURLFor(goos, Official.URL, version)
	return url
}

// ListingURL 返回下载源的版本目录页地址
func (s Source) ListingURL() (string, error) {
	tmpl, ok := listingTemplates[s.Kind]
	if !ok {
		return "", fmt.Errorf("未知的下载源类型: %d", s.Kind)
	}
	return render(tmpl, urlData{Base: strings.TrimSpace(s.URL)})
}

func render(tmpl *template.Template, data urlData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("渲染下载地址失败: %w", err)
	}
	return buf.String(), nil
}
