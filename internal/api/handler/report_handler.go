package handler

import (
	"github.com/gin-gonic/gin"

	"rapor-paud/backend/internal/model"
	"rapor-paud/backend/internal/service"
	"rapor-paud/backend/pkg/response"
)

// ReportHandler 仪表盘与学生报告 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Dashboard GET /api/v1/dashboard
func (h *ReportHandler) Dashboard(c *gin.Context) {
	stats, err := h.reportSvc.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, stats)
}

// StudentReport 单个学生的完整报告数据
// GET /api/v1/reports/students/:id
func (h *ReportHandler) StudentReport(c *gin.Context) {
	report, err := h.reportSvc.StudentReport(c.Request.Context(), model.ID(c.Param("id")).Normalize())
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, report)
}
