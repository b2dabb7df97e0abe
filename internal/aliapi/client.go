package aliapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"alipan-client/internal/config"
	"alipan-client/internal/logger"
	"alipan-client/internal/models"

	"github.com/google/uuid"
	"golang.org/x/net/proxy"
)

const (
	AuthBase   = "https://auth.alipan.com"
	APIBase    = "https://api.alipan.com"
	OpenBase   = "https://openapi.alipan.com"
	MemberBase = "https://member.alipan.com"
	UserBase   = "https://user.alipan.com"

	TokenURL      = AuthBase + "/v2/account/token"
	SessionURL    = APIBase + "/users/v1/users/device/create_session"
	OpenTokenURL  = OpenBase + "/oauth/access_token"
	UserInfoURL   = UserBase + "/v2/user/get"
	SpaceInfoURL  = APIBase + "/v2/databox/get_personal_info"
	AlbumsInfoURL = APIBase + "/adrive/v1/user/albums_info"
	VipInfoURL    = APIBase + "/business/v1.0/users/vip/info"
	SignInListURL = MemberBase + "/v1/activity/sign_in_list"
	DefaultUA     = "AliApp(AYSD/4.9.0) com.alicloud.databox/32 Channel/36176727979800@rimet_android_4.9.0"
)

// Client 阿里云盘账号服务客户端
type Client struct {
	httpClient *http.Client
	cfg        *config.Config
}

// NewClient 创建账号服务客户端，支持 http/https/socks5 代理
func NewClient(cfg *config.Config) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			logger.Error("代理 URL 解析失败: %v", err)
		} else if proxyURL.Scheme == "socks5" {
			dialer, err := proxy.FromURL(proxyURL, proxy.Direct)
			if err != nil {
				logger.Error("SOCKS5 代理配置失败: %v", err)
			} else {
				transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
					return dialer.Dial(network, addr)
				}
				logger.Info("已配置 SOCKS5 代理: %s", cfg.HTTPProxy)
			}
		} else {
			transport.Proxy = http.ProxyURL(proxyURL)
			logger.Info("已配置 HTTP/HTTPS 代理: %s", cfg.HTTPProxy)
		}
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
		cfg: cfg,
	}
}

// EnsureDevice 补全记录的 device_id 与请求签名（每个安装一份，稳定不变）
func (c *Client) EnsureDevice(token *models.TokenInfo) {
	if token.DeviceID == "" {
		token.DeviceID = strings.ReplaceAll(uuid.New().String(), "-", "")
	}
	if token.Signature == "" {
		token.Signature = deviceSignature(token.DeviceID, token.UserID, 0)
	}
}

// postJSON 发送 POST 请求并解析响应
// 返回值：HTTP 状态码、响应体、传输错误；状态码 >= 400 不视为传输错误
func (c *Client) postJSON(ctx context.Context, rawURL string, payload interface{}, token *models.TokenInfo) (int, []byte, error) {
	logger.Debug("账号服务: 发送 POST 请求 - URL: %s", rawURL)

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", rawURL, bytes.NewReader(payloadBytes))
	if err != nil {
		return 0, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", DefaultUA)
	if token != nil {
		if token.AccessToken != "" {
			req.Header.Set("Authorization", token.TokenType+" "+token.AccessToken)
		}
		if token.DeviceID != "" {
			req.Header.Set("x-device-id", token.DeviceID)
		}
		if token.Signature != "" {
			req.Header.Set("x-signature", token.Signature)
		}
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)
	if err != nil {
		logger.Error("账号服务: HTTP 请求失败 - URL: %s, 耗时: %v, 错误: %v", rawURL, duration, err)
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}

	logger.Debug("账号服务: 收到响应 - 状态码: %d, 耗时: %v", resp.StatusCode, duration)
	return resp.StatusCode, body, nil
}
