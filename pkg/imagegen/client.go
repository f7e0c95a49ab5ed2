// Package imagegen provides a client for OpenAI-compatible image generation APIs.
package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"momcare-go/internal/config"
	"momcare-go/pkg/log"
	"net/http"
	"time"
)

// Client defines the interface for an image generation client.
type Client interface {
	// GenerateImage 根据 prompt 生成一张图片并返回其 PNG 字节。
	GenerateImage(ctx context.Context, prompt, style string) ([]byte, error)
}

type openAICompatibleClient struct {
	cfg    config.ImageGenConfig
	client *http.Client
}

// NewClient creates a new image generation client based on the config.
func NewClient(cfg config.ImageGenConfig) Client {
	return &openAICompatibleClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size,omitempty"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
}

// GenerateImage calls the OpenAI-compatible images API and returns the image bytes.
func (c *openAICompatibleClient) GenerateImage(ctx context.Context, prompt, style string) ([]byte, error) {
	fullPrompt := prompt
	if style != "" {
		fullPrompt = fmt.Sprintf("%s, style: %s", prompt, style)
	}
	log.Infof("[ImageGenClient] 开始调用图片生成 API, model: %s, prompt_len: %d", c.cfg.Model, len(fullPrompt))

	reqBody := imageRequest{
		Model:          c.cfg.Model,
		Prompt:         fullPrompt,
		N:              1,
		Size:           c.cfg.Size,
		ResponseFormat: "b64_json",
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal image request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/images/generations", bytes.NewReader(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		log.Errorf("[ImageGenClient] 调用图片生成 API 失败, error: %v", err)
		return nil, fmt.Errorf("failed to call image api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		log.Errorf("[ImageGenClient] 图片生成 API 返回非 200 状态码: %s", resp.Status)
		return nil, fmt.Errorf("image api returned non-200 status: %s, body: %s", resp.Status, string(bodyBytes))
	}

	var imageResp imageResponse
	if err := json.NewDecoder(resp.Body).Decode(&imageResp); err != nil {
		return nil, fmt.Errorf("failed to decode image response: %w", err)
	}

	if len(imageResp.Data) == 0 {
		return nil, fmt.Errorf("received empty image data from api")
	}

	// 优先使用 b64_json；部分兼容实现只回传 URL
	if imageResp.Data[0].B64JSON != "" {
		imgBytes, err := base64.StdEncoding.DecodeString(imageResp.Data[0].B64JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 image: %w", err)
		}
		log.Infof("[ImageGenClient] 成功生成图片, 大小: %d 字节", len(imgBytes))
		return imgBytes, nil
	}

	if imageResp.Data[0].URL != "" {
		return c.download(ctx, imageResp.Data[0].URL)
	}

	return nil, fmt.Errorf("image api returned neither b64_json nor url")
}

// download 拉取上游返回的图片 URL 内容。
func (c *openAICompatibleClient) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download returned non-200 status: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
