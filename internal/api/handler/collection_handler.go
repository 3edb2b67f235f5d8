package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"rapor-paud/backend/internal/model"
	"rapor-paud/backend/internal/service"
	"rapor-paud/backend/pkg/response"
)

// CollectionHandler 各集合的增删改 HTTP 处理器
// 修改立即作用于本地状态，响应不等待远端写入
type CollectionHandler struct {
	syncSvc service.SyncService
}

// NewCollectionHandler 创建 CollectionHandler
func NewCollectionHandler(syncSvc service.SyncService) *CollectionHandler {
	return &CollectionHandler{syncSvc: syncSvc}
}

// ── 通用绑定 ──

func createEntity[T model.Entity[T]](c *gin.Context, fn func(context.Context, T) (T, error)) {
	var in T
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	out, err := fn(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, out)
}

// updateEntity 路径中的 id 覆盖请求体中的 id
func updateEntity[T model.Entity[T]](c *gin.Context, fn func(context.Context, T) (T, error)) {
	var in T
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	in = in.WithID(model.ID(c.Param("id")).Normalize())
	out, err := fn(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, out)
}

// upsertEntity 按自然键新增或覆盖
func upsertEntity[T model.Keyed[T]](c *gin.Context, fn func(context.Context, T) (T, error)) {
	var in T
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	out, err := fn(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, out)
}

func deleteEntity(c *gin.Context, fn func(context.Context, model.ID) error) {
	id := model.ID(c.Param("id")).Normalize()
	if id == "" {
		response.BadRequest(c, 10001, "id 不能为空")
		return
	}
	if err := fn(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}

// ── 班级 ──

// CreateClass POST /api/v1/classes
func (h *CollectionHandler) CreateClass(c *gin.Context) { createEntity(c, h.syncSvc.AddClass) }

// UpdateClass PUT /api/v1/classes/:id
func (h *CollectionHandler) UpdateClass(c *gin.Context) { updateEntity(c, h.syncSvc.UpdateClass) }

// DeleteClass DELETE /api/v1/classes/:id
func (h *CollectionHandler) DeleteClass(c *gin.Context) { deleteEntity(c, h.syncSvc.DeleteClass) }

// ── 学生 ──

// CreateStudent POST /api/v1/students
func (h *CollectionHandler) CreateStudent(c *gin.Context) { createEntity(c, h.syncSvc.AddStudent) }

// UpdateStudent PUT /api/v1/students/:id
func (h *CollectionHandler) UpdateStudent(c *gin.Context) { updateEntity(c, h.syncSvc.UpdateStudent) }

// DeleteStudent DELETE /api/v1/students/:id
func (h *CollectionHandler) DeleteStudent(c *gin.Context) { deleteEntity(c, h.syncSvc.DeleteStudent) }

// ── 学习目标 ──

// CreateTP POST /api/v1/tps
func (h *CollectionHandler) CreateTP(c *gin.Context) { createEntity(c, h.syncSvc.AddTP) }

// UpdateTP PUT /api/v1/tps/:id
func (h *CollectionHandler) UpdateTP(c *gin.Context) { updateEntity(c, h.syncSvc.UpdateTP) }

// DeleteTP DELETE /api/v1/tps/:id
func (h *CollectionHandler) DeleteTP(c *gin.Context) { deleteEntity(c, h.syncSvc.DeleteTP) }

// ── P5 评价标准 ──

// CreateP5Criteria POST /api/v1/p5-criteria
func (h *CollectionHandler) CreateP5Criteria(c *gin.Context) {
	createEntity(c, h.syncSvc.AddP5Criteria)
}

// UpdateP5Criteria PUT /api/v1/p5-criteria/:id
func (h *CollectionHandler) UpdateP5Criteria(c *gin.Context) {
	updateEntity(c, h.syncSvc.UpdateP5Criteria)
}

// DeleteP5Criteria DELETE /api/v1/p5-criteria/:id
func (h *CollectionHandler) DeleteP5Criteria(c *gin.Context) {
	deleteEntity(c, h.syncSvc.DeleteP5Criteria)
}

// ── 反思 ──

// CreateReflection POST /api/v1/reflections
func (h *CollectionHandler) CreateReflection(c *gin.Context) {
	createEntity(c, h.syncSvc.AddReflection)
}

// UpdateReflection PUT /api/v1/reflections/:id
func (h *CollectionHandler) UpdateReflection(c *gin.Context) {
	updateEntity(c, h.syncSvc.UpdateReflection)
}

// DeleteReflection DELETE /api/v1/reflections/:id
func (h *CollectionHandler) DeleteReflection(c *gin.Context) {
	deleteEntity(c, h.syncSvc.DeleteReflection)
}

// ── 按自然键覆盖的记录 ──

// UpsertAssessment PUT /api/v1/assessments
func (h *CollectionHandler) UpsertAssessment(c *gin.Context) {
	upsertEntity(c, h.syncSvc.UpsertAssessment)
}

// UpsertCategoryResult PUT /api/v1/category-results
func (h *CollectionHandler) UpsertCategoryResult(c *gin.Context) {
	upsertEntity(c, h.syncSvc.UpsertCategoryResult)
}

// UpsertP5Assessment PUT /api/v1/p5-assessments
func (h *CollectionHandler) UpsertP5Assessment(c *gin.Context) {
	upsertEntity(c, h.syncSvc.UpsertP5Assessment)
}

// UpsertNote PUT /api/v1/notes
func (h *CollectionHandler) UpsertNote(c *gin.Context) { upsertEntity(c, h.syncSvc.UpsertNote) }

// UpsertAttendance PUT /api/v1/attendance
func (h *CollectionHandler) UpsertAttendance(c *gin.Context) {
	upsertEntity(c, h.syncSvc.UpsertAttendance)
}

// ── 学校设置 ──

// GetSettings GET /api/v1/settings
func (h *CollectionHandler) GetSettings(c *gin.Context) {
	state, err := h.syncSvc.State()
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, state.Settings)
}

// SetSettings PUT /api/v1/settings
func (h *CollectionHandler) SetSettings(c *gin.Context) {
	var in model.SchoolSettings
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	out, err := h.syncSvc.SetSettings(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, out)
}
