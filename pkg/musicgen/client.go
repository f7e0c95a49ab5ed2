// Package musicgen provides a client for asynchronous music generation services
// that follow a submit-then-poll protocol (e.g. TopMediai-style APIs).
package musicgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"momcare-go/internal/config"
	"momcare-go/pkg/log"
	"net/http"
	"time"
)

// Client defines the interface for a music generation client.
type Client interface {
	// GenerateMusic 提交生成请求并轮询至完成，返回音频字节。
	GenerateMusic(ctx context.Context, prompt, style string) ([]byte, error)
}

type pollClient struct {
	cfg    config.MusicGenConfig
	client *http.Client
}

// NewClient creates a new music generation client based on the config.
func NewClient(cfg config.MusicGenConfig) Client {
	return &pollClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

type submitRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style,omitempty"`
}

type submitResponse struct {
	TaskID string `json:"task_id"`
}

type statusResponse struct {
	Status   string `json:"status"` // queued | running | succeeded | failed
	AudioURL string `json:"audio_url"`
	Message  string `json:"message"`
}

// GenerateMusic submits the job and polls until the upstream reports a result.
func (c *pollClient) GenerateMusic(ctx context.Context, prompt, style string) ([]byte, error) {
	log.Infof("[MusicGenClient] 提交音乐生成请求, prompt_len: %d, style: %s", len(prompt), style)

	taskID, err := c.submit(ctx, prompt, style)
	if err != nil {
		return nil, err
	}
	log.Infof("[MusicGenClient] 请求已受理, task_id: %s", taskID)

	interval := time.Duration(c.cfg.PollIntervalSec) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	timeout := time.Duration(c.cfg.PollTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}

	deadline := time.Now().Add(timeout)
	for {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("music generation timed out after %s, task_id: %s", timeout, taskID)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}

		st, err := c.status(ctx, taskID)
		if err != nil {
			// 单次查询失败不终止轮询
			log.Warnf("[MusicGenClient] 查询任务状态失败, task_id: %s, error: %v", taskID, err)
			continue
		}

		switch st.Status {
		case "succeeded":
			log.Infof("[MusicGenClient] 任务完成, task_id: %s", taskID)
			return c.download(ctx, st.AudioURL)
		case "failed":
			return nil, fmt.Errorf("music generation failed: %s", st.Message)
		default:
			log.Debugf("[MusicGenClient] 任务进行中, task_id: %s, status: %s", taskID, st.Status)
		}
	}
}

// submit 提交生成任务，返回上游分配的 task_id。
func (c *pollClient) submit(ctx context.Context, prompt, style string) (string, error) {
	reqBytes, err := json.Marshal(submitRequest{Prompt: prompt, Style: style})
	if err != nil {
		return "", fmt.Errorf("failed to marshal music request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/v1/music", bytes.NewReader(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create music request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call music api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("music api returned non-200 status: %s, body: %s", resp.Status, string(bodyBytes))
	}

	var submitResp submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&submitResp); err != nil {
		return "", fmt.Errorf("failed to decode music response: %w", err)
	}
	if submitResp.TaskID == "" {
		return "", fmt.Errorf("music api returned empty task_id")
	}
	return submitResp.TaskID, nil
}

// status 查询任务状态。
func (c *pollClient) status(ctx context.Context, taskID string) (*statusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.cfg.BaseURL+"/v1/music/"+taskID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("music status api returned non-200 status: %s", resp.Status)
	}

	var st statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}
	return &st, nil
}

// download 拉取生成的音频内容。
func (c *pollClient) download(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("music api reported success without audio_url")
	}
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download audio: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("audio download returned non-200 status: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
