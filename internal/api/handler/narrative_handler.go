package handler

import (
	"github.com/gin-gonic/gin"

	"rapor-paud/backend/internal/dto"
	"rapor-paud/backend/internal/service"
	"rapor-paud/backend/pkg/response"
)

// NarrativeHandler 叙述生成 HTTP 处理器
// 生成接口总是返回文本：外部服务不可用时退回模板，失败原因放在 failure 字段
type NarrativeHandler struct {
	narrativeSvc service.NarrativeService
}

// NewNarrativeHandler 创建 NarrativeHandler
func NewNarrativeHandler(narrativeSvc service.NarrativeService) *NarrativeHandler {
	return &NarrativeHandler{narrativeSvc: narrativeSvc}
}

// GenerateCategory POST /api/v1/narrative/category
func (h *NarrativeHandler) GenerateCategory(c *gin.Context) {
	var req dto.CategoryNarrativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	response.OK(c, h.narrativeSvc.GenerateCategory(c.Request.Context(), &req))
}

// GenerateP5 POST /api/v1/narrative/p5
func (h *NarrativeHandler) GenerateP5(c *gin.Context) {
	var req dto.P5NarrativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	response.OK(c, h.narrativeSvc.GenerateP5(c.Request.Context(), &req))
}

// SuggestCategory 基于已保存评估生成类别描述
// POST /api/v1/narrative/suggest/category
func (h *NarrativeHandler) SuggestCategory(c *gin.Context) {
	var req dto.SuggestCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if !req.Category.Valid() {
		response.BadRequest(c, 10001, "category 无效")
		return
	}
	result, err := h.narrativeSvc.SuggestCategory(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}

// SuggestP5 POST /api/v1/narrative/suggest/p5
func (h *NarrativeHandler) SuggestP5(c *gin.Context) {
	var req dto.SuggestP5Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	result, err := h.narrativeSvc.SuggestP5(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}
