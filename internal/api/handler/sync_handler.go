package handler

import (
	"github.com/gin-gonic/gin"

	"rapor-paud/backend/internal/dto"
	"rapor-paud/backend/internal/service"
	"rapor-paud/backend/pkg/response"
)

// SyncHandler 同步状态与本地连接配置 HTTP 处理器
type SyncHandler struct {
	syncSvc      service.SyncService
	narrativeSvc service.NarrativeService
}

// NewSyncHandler 创建 SyncHandler
func NewSyncHandler(syncSvc service.SyncService, narrativeSvc service.NarrativeService) *SyncHandler {
	return &SyncHandler{syncSvc: syncSvc, narrativeSvc: narrativeSvc}
}

// GetState 返回完整应用状态
// GET /api/v1/state
func (h *SyncHandler) GetState(c *gin.Context) {
	state, err := h.syncSvc.State()
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, state)
}

// GetStatus 同步状态
// GET /api/v1/sync/status
func (h *SyncHandler) GetStatus(c *gin.Context) {
	response.OK(c, h.syncSvc.Status())
}

// Refresh 重新拉取远端数据
// POST /api/v1/sync/refresh
func (h *SyncHandler) Refresh(c *gin.Context) {
	adopted, err := h.syncSvc.RefreshData(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	msg := "Data berhasil dimuat ulang dari Database"
	if !adopted {
		msg = "Mode offline: data lokal tetap digunakan"
	}
	response.OK(c, dto.RefreshResponse{Adopted: adopted, Message: msg})
}

// ListFailures 最近的远端写入失败
// GET /api/v1/sync/failures
func (h *SyncHandler) ListFailures(c *gin.Context) {
	failures := h.syncSvc.Failures()
	items := make([]dto.FailureItem, 0, len(failures))
	for _, f := range failures {
		items = append(items, dto.FailureItem{SyncFailure: f, Text: f.UserMessage()})
	}
	response.OK(c, dto.FailureListResponse{Failures: items})
}

// GetConfig 本地连接配置概况（不返回密钥本身）
// GET /api/v1/config
func (h *SyncHandler) GetConfig(c *gin.Context) {
	storeURL, storeKeySet, storeLocked := h.syncSvc.StoreConfig()
	provider, keySet, locked := h.narrativeSvc.CredentialStatus(c.Request.Context())
	response.OK(c, dto.LocalConfigResponse{
		StoreURL:          storeURL,
		StoreKeySet:       storeKeySet,
		StoreLocked:       storeLocked,
		NarrativeProvider: provider,
		NarrativeKeySet:   keySet,
		NarrativeLocked:   locked,
	})
}

// SaveStoreConfig 保存远端存储连接信息
// PUT /api/v1/config/store
func (h *SyncHandler) SaveStoreConfig(c *gin.Context) {
	var req dto.SaveStoreConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if err := h.syncSvc.SaveStoreConfig(c.Request.Context(), req.URL, req.Key); err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, h.syncSvc.Status())
}

// ClearStoreConfig 清除本地保存的连接信息
// DELETE /api/v1/config/store
func (h *SyncHandler) ClearStoreConfig(c *gin.Context) {
	if err := h.syncSvc.ClearStoreConfig(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, h.syncSvc.Status())
}

// SaveNarrativeConfig 保存叙述生成凭据
// PUT /api/v1/config/narrative
func (h *SyncHandler) SaveNarrativeConfig(c *gin.Context) {
	var req dto.SaveNarrativeConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if err := h.narrativeSvc.SaveCredentials(c.Request.Context(), req.Provider, req.APIKey); err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, nil)
}

// ClearNarrativeConfig 清除叙述生成凭据
// DELETE /api/v1/config/narrative
func (h *SyncHandler) ClearNarrativeConfig(c *gin.Context) {
	if err := h.narrativeSvc.ClearCredentials(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, nil)
}
