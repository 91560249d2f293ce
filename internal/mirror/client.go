package mirror

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"
)

// UserAgent 所有请求使用的固定 User-Agent
var UserAgent = "pythonest/dev"

// NewHTTPClient 创建 HTTP 客户端；insecure 为 true 时跳过证书校验
func NewHTTPClient(insecure bool, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// ClientFor 按设置与下载源策略创建客户端
func ClientFor(source Source, verifyTLS bool, timeout time.Duration) *http.Client {
	return NewHTTPClient(!verifyTLS || source.Policy().InsecureTLS, timeout)
}

// NewRequest 创建带 User-Agent 的 GET 请求
func NewRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	return req, nil
}
