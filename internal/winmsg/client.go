package winmsg

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"alipan-client/internal/logger"
	"alipan-client/internal/user"
)

// Client 向兄弟窗口/进程发送广播消息
// 所有发送都是尽力而为：后台 goroutine 发送，失败只记录调试日志
type Client struct {
	endpoints  []string
	httpClient *http.Client
}

// NewClient 创建广播客户端，endpoints 为各兄弟进程的消息接收地址
func NewClient(endpoints []string) *Client {
	return &Client{
		endpoints: endpoints,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// message 广播消息结构
type message struct {
	Cmd  string      `json:"cmd"`
	Data interface{} `json:"data,omitempty"`
}

// ClearUserToken 通知兄弟窗口凭证已变更，需要失效本地缓存视图
func (c *Client) ClearUserToken() {
	c.send(message{Cmd: "ClearUserToken"})
}

// SendUserToken 通知兄弟窗口当前活跃账号标识
func (c *Client) SendUserToken(msg user.UserTokenMessage) {
	c.send(message{Cmd: "UserToken", Data: msg})
}

func (c *Client) send(msg message) {
	for _, endpoint := range c.endpoints {
		endpoint := endpoint
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := c.post(ctx, endpoint, msg); err != nil {
				logger.Debug("窗口广播失败 - 端点: %s, 错误: %v", endpoint, err)
			}
		}()
	}
}

func (c *Client) post(ctx context.Context, endpoint string, msg message) error {
	jsonData, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}
