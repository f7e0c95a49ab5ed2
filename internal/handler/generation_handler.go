// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"
	"strconv"
	"time"

	"momcare-go/internal/model"
	"momcare-go/internal/service"
	"momcare-go/pkg/log"
	"momcare-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// GenerationHandler 负责处理 AI 生成请求与进度推送。
type GenerationHandler struct {
	generationService service.GenerationService
	jwtManager        *token.JWTManager
	// pollInterval 是 WebSocket 进度推送的轮询间隔。
	pollInterval time.Duration
}

// NewGenerationHandler 创建一个新的 GenerationHandler 实例。
func NewGenerationHandler(generationService service.GenerationService, jwtManager *token.JWTManager) *GenerationHandler {
	return &GenerationHandler{
		generationService: generationService,
		jwtManager:        jwtManager,
		pollInterval:      2 * time.Second,
	}
}

// GenerateRequest 定义了发起 AI 生成 API 的请求体结构。
type GenerateRequest struct {
	Prompt string `json:"prompt" binding:"required"`
	Style  string `json:"style"`
}

// GenerateImage 处理发起图片生成的请求。
func (h *GenerationHandler) GenerateImage(c *gin.Context) {
	h.generate(c, model.GenerationKindImage)
}

// GenerateMusic 处理发起音乐生成的请求。
func (h *GenerationHandler) GenerateMusic(c *gin.Context) {
	h.generate(c, model.GenerationKindMusic)
}

// generate 落库并投递异步任务。
func (h *GenerationHandler) generate(c *gin.Context, kind string) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Generate: Invalid request payload, error: %v", err)
		respondBadRequest(c, "无效的请求负载：prompt 不能为空")
		return
	}

	generation, err := h.generationService.RequestGeneration(user.ID, kind, req.Prompt, req.Style)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Infof("User %d requested %s generation, id: %d", user.ID, kind, generation.ID)
	respondOK(c, generation)
}

// GetGeneration 返回一条生成记录的当前状态与结果。
func (h *GenerationHandler) GetGeneration(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	generation, err := h.generationService.GetGeneration(user.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, generation)
}

// ListMyGenerations 返回当前用户的所有生成记录。
func (h *GenerationHandler) ListMyGenerations(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	generations, err := h.generationService.ListMyGenerations(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, generations)
}

// progressMessage 是进度推送的 WebSocket 消息结构。
type progressMessage struct {
	GenerationID uint   `json:"generationId"`
	Status       string `json:"status"`
	ResultURL    string `json:"resultUrl,omitempty"`
	ErrorMsg     string `json:"errorMsg,omitempty"`
}

// Progress 通过 WebSocket 推送生成进度，直到任务到达终态。
// WebSocket 无法携带 Authorization 头，token 放在路径参数中。
func (h *GenerationHandler) Progress(c *gin.Context) {
	claims, err := h.jwtManager.VerifyToken(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "无效的 token"})
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "无效的路径参数: id")
		return
	}

	// 升级前先确认记录存在且属于调用者
	generation, err := h.generationService.GetGeneration(claims.UserID, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	log.Infof("Generation progress stream opened, user: %d, generation: %d", claims.UserID, generation.ID)

	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	for {
		msg := progressMessage{
			GenerationID: generation.ID,
			Status:       generation.Status,
			ResultURL:    generation.ResultURL,
			ErrorMsg:     generation.ErrorMsg,
		}
		if err := conn.WriteJSON(msg); err != nil {
			log.Warnf("进度推送写入失败: %v", err)
			return
		}
		if generation.IsTerminal() {
			return
		}

		select {
		case <-ticker.C:
		case <-c.Request.Context().Done():
			return
		}

		generation, err = h.generationService.GetGeneration(claims.UserID, uint(id))
		if err != nil {
			log.Warnf("进度推送读取生成记录失败: %v", err)
			return
		}
	}
}
