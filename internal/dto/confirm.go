package dto

import "time"

// ConfirmRequest 发起破坏性操作确认
type ConfirmRequest struct {
	Message string `json:"message" binding:"required"`
}

// ResolveConfirmRequest 对确认请求作出决定
type ResolveConfirmRequest struct {
	Confirmed *bool `json:"confirmed" binding:"required"`
}

// ConfirmationResponse 待决确认
type ConfirmationResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConfirmResult 确认请求的最终决定
type ConfirmResult struct {
	Confirmed bool `json:"confirmed"`
}
