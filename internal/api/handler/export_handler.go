package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"rapor-paud/backend/internal/model"
	"rapor-paud/backend/internal/service"
	"rapor-paud/backend/pkg/response"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导入导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
	importSvc service.ImportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, importSvc service.ImportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, importSvc: importSvc}
}

// ExportClassRecap 导出班级成绩汇总表
// GET /api/v1/export/classes/:id/recap
func (h *ExportHandler) ExportClassRecap(c *gin.Context) {
	classID := model.ID(c.Param("id")).Normalize()

	buf, filename, err := h.exportSvc.ExportClassRecap(c.Request.Context(), classID)
	if err != nil {
		if errors.Is(err, service.ErrExportGenerateFail) {
			response.InternalError(c)
			return
		}
		respondError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", xlsxMIME)
	c.Data(http.StatusOK, xlsxMIME, buf.Bytes())
}

// ImportRoster 从 Excel 批量导入学生
// POST /api/v1/import/classes/:id/students  (multipart, 字段 file)
func (h *ExportHandler) ImportRoster(c *gin.Context) {
	classID := model.ID(c.Param("id")).Normalize()

	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "缺少上传文件 file")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 23101, "无法读取 Excel 文件")
		return
	}
	defer f.Close()

	summary, err := h.importSvc.ImportRoster(c.Request.Context(), classID, f)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, summary)
}
