package service

import (
	"fmt"

	"rapor-paud/backend/internal/model"
)

// WritePolicy 远端写入失败后的本地处理策略
type WritePolicy interface {
	Name() string
	// RollbackOnFailure 返回 true 时撤销该实体的本地修改
	RollbackOnFailure(f model.SyncFailure) bool
}

const (
	PolicyOptimistic = "optimistic"
	PolicyRollback   = "rollback"
)

// optimisticPolicy 本地状态即用户可见的事实，远端失败只通知不回滚
type optimisticPolicy struct{}

func (optimisticPolicy) Name() string                             { return PolicyOptimistic }
func (optimisticPolicy) RollbackOnFailure(model.SyncFailure) bool { return false }

// rollbackPolicy 远端失败时将实体恢复为修改前的值
type rollbackPolicy struct{}

func (rollbackPolicy) Name() string                             { return PolicyRollback }
func (rollbackPolicy) RollbackOnFailure(model.SyncFailure) bool { return true }

// NewWritePolicy 按名称创建策略，空名称等同 optimistic
func NewWritePolicy(name string) (WritePolicy, error) {
	switch name {
	case "", PolicyOptimistic:
		return optimisticPolicy{}, nil
	case PolicyRollback:
		return rollbackPolicy{}, nil
	default:
		return nil, fmt.Errorf("未知写入策略: %q", name)
	}
}
