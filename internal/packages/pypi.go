package packages

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bbq191/pythonest/internal/mirror"
	"github.com/bbq191/pythonest/internal/pyversion"
	"github.com/sirupsen/logrus"
)

// DefaultPyPIURL PyPI 站点地址
const DefaultPyPIURL = "https://pypi.org"

// SearchResult 搜索结果中的一个包
type SearchResult struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// PackageInfo PyPI 包详情
type PackageInfo struct {
	Name           string   `json:"name"`
	Version        string   `json:"version"`
	Summary        string   `json:"summary"`
	Author         string   `json:"author"`
	AuthorEmail    string   `json:"author_email"`
	License        string   `json:"license"`
	ProjectURL     string   `json:"project_url"`
	RequiresPython string   `json:"requires_python"`
	Classifiers    []string `json:"classifiers"`
	Releases       []string `json:"-"`
}

// PyPI PyPI 客户端
type PyPI struct {
	baseURL string
	client  *http.Client
	logger  *logrus.Logger
}

// NewPyPI 创建 PyPI 客户端
func NewPyPI(baseURL string, logger *logrus.Logger) *PyPI {
	if baseURL == "" {
		baseURL = DefaultPyPIURL
	}
	return &PyPI{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  mirror.NewHTTPClient(false, 20*time.Second),
		logger:  logger,
	}
}

// WithClient 替换 HTTP 客户端
func (p *PyPI) WithClient(client *http.Client) *PyPI {
	p.client = client
	return p
}

// Search 搜索包，最多返回 limit 个结果
func (p *PyPI) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("搜索关键词为空")
	}

	resp, err := p.get(ctx, p.baseURL+"/search/?q="+url.QueryEscape(query))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("解析搜索结果失败: %w", err)
	}

	var results []SearchResult
	doc.Find(".package-snippet").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if limit > 0 && len(results) >= limit {
			return false
		}
		name := strings.TrimSpace(s.Find(".package-snippet__name").Text())
		if name == "" {
			return true
		}
		results = append(results, SearchResult{
			Name:        name,
			Version:     strings.TrimSpace(s.Find(".package-snippet__version").Text()),
			Description: strings.TrimSpace(s.Find(".package-snippet__description").Text()),
		})
		return true
	})

	p.logger.Debugf("PyPI 搜索 %q 得到 %d 个结果", query, len(results))
	return results, nil
}

// Info 获取包详情
func (p *PyPI) Info(ctx context.Context, name string) (*PackageInfo, error) {
	resp, err := p.get(ctx, p.baseURL+"/pypi/"+url.PathEscape(strings.TrimSpace(name))+"/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Info     PackageInfo                `json:"info"`
		Releases map[string]json.RawMessage `json:"releases"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("解析包信息失败: %w", err)
	}

	info := payload.Info
	for release := range payload.Releases {
		info.Releases = append(info.Releases, release)
	}
	sortReleases(info.Releases)
	return &info, nil
}

func (p *PyPI) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := mirror.NewRequest(ctx, target)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求 %s 失败: %w", target, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("PyPI 上没有找到 %s", target)
		}
		return nil, fmt.Errorf("请求 %s 返回状态码 %d", target, resp.StatusCode)
	}
	return resp, nil
}

// sortReleases 可解析的版本按数值降序排在前面，其余按字符串排序
func sortReleases(releases []string) {
	sort.SliceStable(releases, func(i, j int) bool {
		vi, erri := pyversion.Parse(releases[i])
		vj, errj := pyversion.Parse(releases[j])
		switch {
		case erri == nil && errj == nil:
			return pyversion.Compare(vi, vj) > 0
		case erri == nil:
			return true
		case errj == nil:
			return false
		default:
			return releases[i] > releases[j]
		}
	})
}
