package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bbq191/pythonest/internal/mirror"
	"github.com/bbq191/pythonest/internal/pyversion"
	"github.com/sirupsen/logrus"
)

const (
	defaultTimeout = 15 * time.Second
	maxPageSize    = 8 << 20
)

var (
	// officialPattern 官网下载页上的版本号，预发布标签一并捕获以便过滤
	officialPattern = regexp.MustCompile(`Python (\d+\.\d+\.\d+(?:(?:a|b|rc)\d+)?)`)

	// directoryHref 目录列表中的版本子目录
	directoryHref = regexp.MustCompile(`^(\d+\.\d+\.\d+(?:(?:a|b|rc)\d+)?)$`)

	// installerHref 平铺的安装包文件
	installerHref = regexp.MustCompile(`^python-(\d+\.\d+\.\d+(?:(?:a|b|rc)\d+)?)-amd64\.exe$`)

	// genericPatterns 无法识别页面结构时依次尝试
	genericPatterns = []*regexp.Regexp{
		regexp.MustCompile(`href="(\d+\.\d+\.\d+)/"`),
		regexp.MustCompile(`"name"\s*:\s*"(\d+\.\d+\.\d+)/?"`),
		regexp.MustCompile(`>(\d+\.\d+\.\d+)/?<`),
		regexp.MustCompile(`python-(\d+\.\d+\.\d+)`),
	}
)

// Listing 可安装版本列表及其新鲜度
type Listing struct {
	Versions    []pyversion.Version // 升序，不含已安装版本
	Prereleases []string            // 仅在请求包含预发布版本时填充
	Fresh       bool                // 来自下载源的实时数据
	Reason      string              // 使用内置目录的原因
	Source      mirror.Source
}

// Groups 按 major.minor 分组
func (l Listing) Groups() []pyversion.Group {
	return pyversion.GroupByMinor(l.Versions)
}

// Lister 从下载源获取可安装版本，任何失败都降级为内置目录
type Lister struct {
	source mirror.Source
	client *http.Client
	logger *logrus.Logger
}

// NewLister 创建版本列表器
func NewLister(source mirror.Source, verifyTLS bool, logger *logrus.Logger) *Lister {
	return &Lister{
		source: source,
		client: mirror.ClientFor(source, verifyTLS, defaultTimeout),
		logger: logger,
	}
}

// WithClient 替换 HTTP 客户端
func (l *Lister) WithClient(client *http.Client) *Lister {
	l.client = client
	return l
}

// Available 返回未安装的可用版本；该方法不会失败，只会降级
func (l *Lister) Available(ctx context.Context, installed []pyversion.Version, includePrerelease bool) Listing {
	listing := Listing{Source: l.source}

	raws, err := l.fetch(ctx)
	if err != nil {
		l.logger.Warnf("获取 %s 版本列表失败，使用内置目录: %v", l.source.Name, err)
		listing.Reason = err.Error()
		listing.Versions = pyversion.Exclude(Fallback(), installed)
		return listing
	}

	if includePrerelease {
		seenPre := make(map[string]bool)
		for _, raw := range raws {
			if pyversion.IsPrerelease(raw) && !seenPre[raw] {
				seenPre[raw] = true
				listing.Prereleases = append(listing.Prereleases, raw)
			}
		}
	}

	releases := pyversion.Unique(pyversion.ParseAll(raws))
	pyversion.Sort(releases)

	listing.Fresh = true
	listing.Versions = pyversion.Exclude(releases, installed)
	l.logger.Debugf("从 %s 获取到 %d 个版本", l.source.Name, len(releases))
	return listing
}

// fetch 获取原始版本字符串
func (l *Lister) fetch(ctx context.Context) ([]string, error) {
	if l.source.Policy().StaticCatalog {
		return nil, fmt.Errorf("%s 不提供可解析的版本目录", l.source.Name)
	}

	listingURL, err := l.source.ListingURL()
	if err != nil {
		return nil, err
	}

	page, err := l.get(ctx, listingURL)
	if err != nil {
		return nil, err
	}

	var raws []string
	switch l.source.Kind {
	case mirror.KindOfficial:
		raws = matchAll(officialPattern, page)
	case mirror.KindAliyun:
		raws, err = scrapeAnchors(page, installerHref)
	default:
		raws, err = scrapeAnchors(page, directoryHref)
	}
	if err != nil {
		return nil, err
	}

	if len(raws) == 0 {
		for _, pattern := range genericPatterns {
			if raws = matchAll(pattern, page); len(raws) > 0 {
				break
			}
		}
	}

	if len(raws) == 0 {
		return nil, fmt.Errorf("%s 页面中没有找到版本号", listingURL)
	}
	return raws, nil
}

func (l *Lister) get(ctx context.Context, url string) ([]byte, error) {
	req, err := mirror.NewRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求 %s 失败: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("请求 %s 返回状态码 %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("读取 %s 失败: %w", url, err)
	}
	return body, nil
}

// scrapeAnchors 解析目录列表中的链接
func scrapeAnchors(page []byte, pattern *regexp.Regexp) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("解析目录页失败: %w", err)
	}

	var raws []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		name := path.Base(strings.TrimSuffix(strings.TrimSpace(href), "/"))
		if match := pattern.FindStringSubmatch(name); match != nil {
			raws = append(raws, match[1])
		}
	})
	return raws, nil
}

func matchAll(pattern *regexp.Regexp, page []byte) []string {
	var raws []string
	for _, match := range pattern.FindAllSubmatch(page, -1) {
		raws = append(raws, string(match[1]))
	}
	return raws
}
