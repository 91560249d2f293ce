package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/bbq191/pythonest/internal/config"
	"github.com/bbq191/pythonest/internal/mirror"
	"github.com/bbq191/pythonest/internal/pyversion"
	"github.com/sirupsen/logrus"
)

// ChunkSize 每次读取的固定块大小
const ChunkSize = 32 * 1024

// ErrCancelled 下载在开始前被取消
var ErrCancelled = errors.New("download cancelled")

// Snapshot 下载进度快照；总大小未知时 Total 与 Percent 为 0
type Snapshot struct {
	Downloaded int64
	Total      int64
	Percent    float64
}

// ProgressFunc 每写入一块后回调
type ProgressFunc func(Snapshot)

// Result 下载结果
type Result struct {
	Path     string // 本地安装包路径
	URL      string // 实际使用的下载地址，命中缓存时为空
	Cached   bool   // 文件已存在，未发生网络传输
	FellBack bool   // 镜像失败后从官网下载
}

// HTTPClient 下载所需的 HTTP 客户端能力
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Downloader 将安装包流式下载到本地缓存目录
type Downloader struct {
	source         mirror.Source
	dir            string
	goos           string
	client         HTTPClient
	fallbackClient HTTPClient
	fallbackURL    func(goos string, version pyversion.Version) string
	logger         *logrus.Logger
	cancelled      atomic.Bool
}

// Option 配置 Downloader
type Option func(*Downloader)

// WithHTTPClient 指定访问下载源的客户端
func WithHTTPClient(client HTTPClient) Option {
	return func(d *Downloader) {
		if client != nil {
			d.client = client
		}
	}
}

// WithFallback 指定回退到官网时使用的客户端和地址构造函数
func WithFallback(client HTTPClient, urlFn func(goos string, version pyversion.Version) string) Option {
	return func(d *Downloader) {
		if client != nil {
			d.fallbackClient = client
		}
		if urlFn != nil {
			d.fallbackURL = urlFn
		}
	}
}

// WithGOOS 指定目标平台（决定安装包命名）
func WithGOOS(goos string) Option {
	return func(d *Downloader) {
		if goos != "" {
			d.goos = goos
		}
	}
}

// NewDownloader 创建下载器；TLS 校验由设置控制，但对证书有问题的镜像强制关闭
func NewDownloader(source mirror.Source, settings config.DownloadSettings, logger *logrus.Logger, opts ...Option) *Downloader {
	d := &Downloader{
		source:         source,
		dir:            settings.Directory,
		goos:           runtime.GOOS,
		client:         mirror.ClientFor(source, settings.VerifyTLS, 0),
		fallbackClient: mirror.ClientFor(mirror.Official, settings.VerifyTLS, 0),
		fallbackURL:    mirror.OfficialURL,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Path 返回版本安装包的缓存路径
func (d *Downloader) Path(version pyversion.Version) string {
	return filepath.Join(d.dir, mirror.InstallerName(d.goos, version))
}

// Cancel 请求取消；只在下次 Download 开始时检查
func (d *Downloader) Cancel() {
	d.cancelled.Store(true)
}

// Download 下载指定版本的安装包，已缓存时直接返回
func (d *Downloader) Download(ctx context.Context, version pyversion.Version, onProgress ProgressFunc) (Result, error) {
	if d.cancelled.Load() {
		return Result{}, ErrCancelled
	}
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrCancelled, err)
	}

	path := d.Path(version)
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		d.logger.Infof("使用已缓存的安装包: %s", path)
		return Result{Path: path, Cached: true}, nil
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return Result{}, fmt.Errorf("创建下载目录失败: %w", err)
	}

	url, err := mirror.DownloadURLFor(d.goos, d.source.URL, version)
	if err != nil {
		return Result{}, err
	}

	d.logger.Infof("从 %s 下载 Python %s: %s", d.source.Name, version, url)
	err = d.fetch(ctx, d.client, url, path, onProgress)
	if err == nil {
		return Result{Path: path, URL: url}, nil
	}

	if !d.source.Policy().FallbackToOfficial {
		return Result{}, err
	}

	officialURL := d.fallbackURL(d.goos, version)
	d.logger.Warnf("%s 下载失败 (%v)，改用官网重试: %s", d.source.Name, err, officialURL)
	if ferr := d.fetch(ctx, d.fallbackClient, officialURL, path, onProgress); ferr != nil {
		return Result{}, fmt.Errorf("官网下载也失败: %w", ferr)
	}
	return Result{Path: path, URL: officialURL, FellBack: true}, nil
}

// fetch 流式写入 <path>.tmp，成功后重命名为最终文件，失败时删除临时文件
func (d *Downloader) fetch(ctx context.Context, client HTTPClient, url, path string, onProgress ProgressFunc) (err error) {
	req, err := mirror.NewRequest(ctx, url)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("请求 %s 失败: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("请求 %s 返回状态码 %d", url, resp.StatusCode)
	}

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	defer func() {
		if err != nil {
			file.Close()
			os.Remove(tmpPath)
		}
	}()

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}

	start := time.Now()
	var downloaded int64
	buf := make([]byte, ChunkSize)
	for {
		n, rerr := io.ReadFull(resp.Body, buf)
		if n > 0 {
			if _, werr := file.Write(buf[:n]); werr != nil {
				return fmt.Errorf("写入文件失败: %w", werr)
			}
			downloaded += int64(n)
			if onProgress != nil {
				onProgress(newSnapshot(downloaded, total))
			}
		}
		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			break
		}
		if rerr != nil {
			return fmt.Errorf("读取响应失败: %w", rerr)
		}
	}

	if total > 0 && downloaded != total {
		return fmt.Errorf("下载不完整: %d/%d 字节", downloaded, total)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("关闭临时文件失败: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("重命名安装包失败: %w", err)
	}

	d.logger.Debugf("下载完成: %s (%d 字节, %s)", path, downloaded, time.Since(start).Round(time.Millisecond))
	return nil
}

func newSnapshot(downloaded, total int64) Snapshot {
	s := Snapshot{Downloaded: downloaded, Total: total}
	if total > 0 {
		s.Percent = float64(downloaded) * 100 / float64(total)
	}
	return s
}
