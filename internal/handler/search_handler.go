// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"momcare-go/internal/model"
	"momcare-go/internal/service"

	"github.com/gin-gonic/gin"
)

// SearchHandler 负责处理任务全文检索的 API 请求。
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler 创建一个新的 SearchHandler 实例。
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search 按关键词检索任务。
// superadmin 检索全部；hospital_admin 的结果被限制在自己的医院与公开任务。
func (h *SearchHandler) Search(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var hospitalID uint
	if !user.IsSuperAdmin() {
		if user.HospitalID == nil {
			respondOK(c, []model.MissionSearchHit{})
			return
		}
		hospitalID = *user.HospitalID
	}

	hits, err := h.searchService.Search(c.Request.Context(), c.Query("q"), hospitalID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, hits)
}
