package service

import (
	"fmt"

	"go.uber.org/zap"

	"rapor-paud/backend/config"
	"rapor-paud/backend/internal/repository"
	"rapor-paud/backend/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Sync      SyncService
	Confirm   ConfirmService
	Narrative NarrativeService
	Report    ReportService
	Export    ExportService
	Import    ImportService
	Auth      AuthService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) (*Service, error) {
	policy, err := NewWritePolicy(cfg.Sync.WritePolicy)
	if err != nil {
		return nil, fmt.Errorf("初始化写入策略失败: %w", err)
	}

	syncSvc := NewSyncService(cfg, repo, policy, logger)
	return &Service{
		Sync:      syncSvc,
		Confirm:   NewConfirmService(cfg.Sync.ConfirmQueueSize, logger),
		Narrative: NewNarrativeService(&cfg.Narrative, repo, syncSvc, nil, logger),
		Report:    NewReportService(syncSvc, logger),
		Export:    NewExportService(syncSvc, logger),
		Import:    NewImportService(syncSvc, logger),
		Auth:      NewAuthService(&cfg.Auth, jwtMgr, blacklist, logger),
	}, nil
}
