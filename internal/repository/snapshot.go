package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"rapor-paud/backend/internal/model"
)

// SnapshotStore 在本地槽位中以单个 JSON 值保存完整 AppState
type SnapshotStore struct {
	local LocalStore
	key   string
}

// NewSnapshotStore 创建快照存储
func NewSnapshotStore(local LocalStore, key string) *SnapshotStore {
	return &SnapshotStore{local: local, key: key}
}

// Key 快照所在槽位
func (s *SnapshotStore) Key() string { return s.key }

// Encode 序列化（字段顺序固定，同一状态输出逐字节一致）
func (s *SnapshotStore) Encode(state *model.AppState) ([]byte, error) {
	return json.Marshal(state)
}

// Save 写入快照
func (s *SnapshotStore) Save(ctx context.Context, state *model.AppState) error {
	raw, err := s.Encode(state)
	if err != nil {
		return fmt.Errorf("序列化快照失败: %w", err)
	}
	return s.local.Set(ctx, s.key, string(raw))
}

// Load 读取快照，不存在时 ok=false
func (s *SnapshotStore) Load(ctx context.Context) (*model.AppState, bool, error) {
	raw, ok, err := s.local.Get(ctx, s.key)
	if err != nil || !ok {
		return nil, false, err
	}
	var state model.AppState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, false, fmt.Errorf("快照格式错误: %w", err)
	}
	state.EnsureCollections()
	return &state, true, nil
}
