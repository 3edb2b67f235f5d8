package model

import (
	"fmt"
	"time"
)

// SyncFailure 远端写入失败通知（本地状态已更新，不自动回滚）
type SyncFailure struct {
	Collection Collection `json:"collection"`
	EntityID   ID         `json:"entityId"`
	Message    string     `json:"message"`
	At         time.Time  `json:"at"`
}

// UserMessage 面向教师的提示文字
func (f SyncFailure) UserMessage() string {
	return fmt.Sprintf("Gagal menyimpan ke Database: %s (Collection: %s, ID: %s)", f.Message, f.Collection, f.EntityID)
}
