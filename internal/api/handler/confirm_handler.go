package handler

import (
	"github.com/gin-gonic/gin"

	"rapor-paud/backend/internal/dto"
	"rapor-paud/backend/internal/service"
	"rapor-paud/backend/pkg/response"
)

// ConfirmHandler 破坏性操作确认 HTTP 处理器
type ConfirmHandler struct {
	confirmSvc service.ConfirmService
}

// NewConfirmHandler 创建 ConfirmHandler
func NewConfirmHandler(confirmSvc service.ConfirmService) *ConfirmHandler {
	return &ConfirmHandler{confirmSvc: confirmSvc}
}

// Request 发起确认请求并阻塞等待决定；客户端断开视为取消
// POST /api/v1/confirmations
func (h *ConfirmHandler) Request(c *gin.Context) {
	var req dto.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	confirmed, err := h.confirmSvc.ConfirmAction(c.Request.Context(), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, dto.ConfirmResult{Confirmed: confirmed})
}

// List 全部待决确认（FIFO）
// GET /api/v1/confirmations
func (h *ConfirmHandler) List(c *gin.Context) {
	response.OK(c, h.confirmSvc.Pending())
}

// Current 当前展示的确认（队首）
// GET /api/v1/confirmations/current
func (h *ConfirmHandler) Current(c *gin.Context) {
	cur, ok := h.confirmSvc.Current()
	if !ok {
		response.OK(c, nil)
		return
	}
	response.OK(c, cur)
}

// Resolve 确认或取消指定请求
// POST /api/v1/confirmations/:id/resolve
func (h *ConfirmHandler) Resolve(c *gin.Context) {
	var req dto.ResolveConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.confirmSvc.Resolve(c.Param("id"), *req.Confirmed); err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, nil)
}
