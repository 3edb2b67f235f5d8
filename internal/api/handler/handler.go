package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rapor-paud/backend/internal/service"
	pkgerrors "rapor-paud/backend/pkg/errors"
	"rapor-paud/backend/pkg/response"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Sync       *SyncHandler
	Collection *CollectionHandler
	Confirm    *ConfirmHandler
	Narrative  *NarrativeHandler
	Report     *ReportHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Sync:       NewSyncHandler(svc.Sync, svc.Narrative),
		Collection: NewCollectionHandler(svc.Sync),
		Confirm:    NewConfirmHandler(svc.Confirm),
		Narrative:  NewNarrativeHandler(svc.Narrative),
		Report:     NewReportHandler(svc.Report),
		Export:     NewExportHandler(svc.Export, svc.Import),
	}
}

// ── 错误码 ──
//
// 100xx 通用 / 110xx 认证 / 200xx 同步核心 / 210xx 确认 / 220xx 叙述 / 230xx 报告与导入导出

// respondError 将跨模块共享的业务错误映射为 HTTP 响应
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrNotInitialized):
		response.ServiceUnavailable(c, 20001, "数据尚未加载完成")
	case errors.Is(err, service.ErrEntityNotFound):
		response.NotFound(c, 20002, "记录不存在")
	case errors.Is(err, service.ErrEntityExists):
		response.Conflict(c, 20005, "记录 ID 已存在")
	case errors.Is(err, pkgerrors.ErrConfigLocked):
		response.Conflict(c, 20003, "配置已由服务器环境给出，无法修改")
	case errors.Is(err, pkgerrors.ErrRemoteUnavailable):
		response.ErrorWithDetails(c, http.StatusBadGateway, 20004, "远端数据库连接失败", err.Error())
	case errors.Is(err, pkgerrors.ErrConfirmQueueFull):
		response.TooManyRequests(c, 21001, "待确认操作过多")
	case errors.Is(err, pkgerrors.ErrConfirmationNotFound):
		response.NotFound(c, 21002, "确认请求不存在或已处理")
	case errors.Is(err, service.ErrInvalidProvider):
		response.BadRequest(c, 22001, "不支持的叙述生成提供方")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 23001, "学生不存在")
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 23002, "班级不存在")
	case errors.Is(err, service.ErrCriteriaNotFound):
		response.NotFound(c, 23003, "P5 评价标准不存在")
	case errors.Is(err, service.ErrImportInvalidFile):
		response.BadRequest(c, 23101, "无法读取 Excel 文件")
	case errors.Is(err, service.ErrImportNoHeader):
		response.BadRequest(c, 23102, "表头缺少 Nama 列")
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
