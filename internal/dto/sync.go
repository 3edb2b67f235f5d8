package dto

import "rapor-paud/backend/internal/model"

// SyncStatusResponse 同步核心状态（isLoading / isOnline）
type SyncStatusResponse struct {
	IsLoading    bool   `json:"isLoading"`
	IsOnline     bool   `json:"isOnline"`
	WritePolicy  string `json:"writePolicy"`
	InFlight     int    `json:"inFlight"`
	FailureCount int    `json:"failureCount"`
}

// RefreshResponse 手动刷新（测试连接）结果
type RefreshResponse struct {
	Adopted bool   `json:"adopted"`
	Message string `json:"message"`
}

// SaveStoreConfigRequest 保存远端存储连接信息（设置页）
type SaveStoreConfigRequest struct {
	URL string `json:"url" binding:"required"`
	Key string `json:"key" binding:"required"`
}

// SaveNarrativeConfigRequest 保存叙述生成凭据（设置页）
type SaveNarrativeConfigRequest struct {
	Provider model.AIProvider `json:"provider" binding:"required,oneof=gemini groq"`
	APIKey   string           `json:"apiKey"   binding:"required"`
}

// LocalConfigResponse 当前生效的连接信息（密钥脱敏）
type LocalConfigResponse struct {
	StoreURL          string           `json:"storeUrl"`
	StoreKeySet       bool             `json:"storeKeySet"`
	StoreLocked       bool             `json:"storeLocked"`
	NarrativeProvider model.AIProvider `json:"narrativeProvider"`
	NarrativeKeySet   bool             `json:"narrativeKeySet"`
	NarrativeLocked   bool             `json:"narrativeLocked"`
}

// FailureListResponse 最近的远端写入失败
type FailureListResponse struct {
	Failures []FailureItem `json:"failures"`
}

// FailureItem 单条失败通知
type FailureItem struct {
	model.SyncFailure
	Text string `json:"text"`
}
