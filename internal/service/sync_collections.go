package service

import (
	"context"
	"slices"

	"rapor-paud/backend/internal/model"
	"rapor-paud/backend/internal/repository"
)

// collection 集合描述：名称 + AppState 上的存取函数
type collection[T model.Entity[T]] struct {
	name model.Collection
	get  func(*model.AppState) []T
	set  func(*model.AppState, []T)
}

var (
	classesCol = collection[model.ClassData]{
		name: model.CollectionClasses,
		get:  func(s *model.AppState) []model.ClassData { return s.Classes },
		set:  func(s *model.AppState, v []model.ClassData) { s.Classes = v },
	}
	studentsCol = collection[model.Student]{
		name: model.CollectionStudents,
		get:  func(s *model.AppState) []model.Student { return s.Students },
		set:  func(s *model.AppState, v []model.Student) { s.Students = v },
	}
	tpsCol = collection[model.LearningObjective]{
		name: model.CollectionTPs,
		get:  func(s *model.AppState) []model.LearningObjective { return s.TPs },
		set:  func(s *model.AppState, v []model.LearningObjective) { s.TPs = v },
	}
	assessmentsCol = collection[model.Assessment]{
		name: model.CollectionAssessments,
		get:  func(s *model.AppState) []model.Assessment { return s.Assessments },
		set:  func(s *model.AppState, v []model.Assessment) { s.Assessments = v },
	}
	categoryResultsCol = collection[model.CategoryResult]{
		name: model.CollectionCategoryResults,
		get:  func(s *model.AppState) []model.CategoryResult { return s.CategoryResults },
		set:  func(s *model.AppState, v []model.CategoryResult) { s.CategoryResults = v },
	}
	p5CriteriaCol = collection[model.P5Criteria]{
		name: model.CollectionP5Criteria,
		get:  func(s *model.AppState) []model.P5Criteria { return s.P5Criteria },
		set:  func(s *model.AppState, v []model.P5Criteria) { s.P5Criteria = v },
	}
	p5AssessmentsCol = collection[model.P5Assessment]{
		name: model.CollectionP5Assessments,
		get:  func(s *model.AppState) []model.P5Assessment { return s.P5Assessments },
		set:  func(s *model.AppState, v []model.P5Assessment) { s.P5Assessments = v },
	}
	reflectionsCol = collection[model.Reflection]{
		name: model.CollectionReflections,
		get:  func(s *model.AppState) []model.Reflection { return s.Reflections },
		set:  func(s *model.AppState, v []model.Reflection) { s.Reflections = v },
	}
	notesCol = collection[model.StudentNote]{
		name: model.CollectionNotes,
		get:  func(s *model.AppState) []model.StudentNote { return s.Notes },
		set:  func(s *model.AppState, v []model.StudentNote) { s.Notes = v },
	}
	attendanceCol = collection[model.AttendanceData]{
		name: model.CollectionAttendance,
		get:  func(s *model.AppState) []model.AttendanceData { return s.Attendance },
		set:  func(s *model.AppState, v []model.AttendanceData) { s.Attendance = v },
	}
)

// ── 切片辅助（均返回新切片，不修改已发布的底层数组） ──

func indexByID[T model.Entity[T]](items []T, id model.ID) int {
	return slices.IndexFunc(items, func(it T) bool { return it.EntityID() == id })
}

func indexByKey[T model.Keyed[T]](items []T, key string) int {
	return slices.IndexFunc(items, func(it T) bool { return it.NaturalKey() == key })
}

func replaceAt[T any](items []T, idx int, v T) []T {
	out := slices.Clone(items)
	out[idx] = v
	return out
}

func withoutID[T model.Entity[T]](items []T, id model.ID) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if it.EntityID() != id {
			out = append(out, it)
		}
	}
	return out
}

// undo 实体级撤销：恢复 id 对应实体修改前的值（had=false 表示修改前不存在）
func (c collection[T]) undo(id model.ID, prev T, had bool) func(*model.AppState) {
	return func(st *model.AppState) {
		items := c.get(st)
		idx := indexByID(items, id)
		switch {
		case had && idx >= 0:
			c.set(st, replaceAt(items, idx, prev))
		case had:
			c.set(st, append(slices.Clip(items), prev))
		case idx >= 0:
			c.set(st, withoutID(items, id))
		}
	}
}

// ── 通用操作 ──

func addEntity[T model.Entity[T]](s *syncService, c collection[T], item T) (T, error) {
	item = item.Normalized()
	if item.EntityID() == "" {
		item = item.WithID(s.newID())
	}

	err := s.mutate(c.name, func(st *model.AppState) (mutation, error) {
		items := c.get(st)
		if indexByID(items, item.EntityID()) >= 0 {
			return mutation{}, ErrEntityExists
		}
		c.set(st, append(slices.Clip(items), item))
		var zero T
		return mutation{
			id: item.EntityID(),
			remote: func(ctx context.Context, r repository.RemoteStore) repository.Result {
				return r.Insert(ctx, c.name, item)
			},
			undo: c.undo(item.EntityID(), zero, false),
		}, nil
	})
	return item, err
}

func updateEntity[T model.Entity[T]](s *syncService, c collection[T], item T) (T, error) {
	item = item.Normalized()

	err := s.mutate(c.name, func(st *model.AppState) (mutation, error) {
		items := c.get(st)
		idx := indexByID(items, item.EntityID())
		if idx < 0 {
			return mutation{}, ErrEntityNotFound
		}
		prev := items[idx]
		c.set(st, replaceAt(items, idx, item))
		return mutation{
			id: item.EntityID(),
			remote: func(ctx context.Context, r repository.RemoteStore) repository.Result {
				return r.Update(ctx, c.name, item)
			},
			undo: c.undo(item.EntityID(), prev, true),
		}, nil
	})
	return item, err
}

// deleteEntity 本地不存在时同样下发远端删除，结果与远端是否存在无关
func deleteEntity[T model.Entity[T]](s *syncService, c collection[T], id model.ID) error {
	id = id.Normalize()

	return s.mutate(c.name, func(st *model.AppState) (mutation, error) {
		items := c.get(st)
		idx := indexByID(items, id)
		var (
			prev T
			had  bool
		)
		if idx >= 0 {
			prev, had = items[idx], true
		}
		c.set(st, withoutID(items, id))
		return mutation{
			id: id,
			remote: func(ctx context.Context, r repository.RemoteStore) repository.Result {
				return r.Remove(ctx, c.name, id)
			},
			undo: c.undo(id, prev, had),
		}, nil
	})
}

// upsertEntity 按自然键决定插入或更新：以修改前的内存集合为准。
// 命中已有记录时沿用其 ID，远端按该 ID 更新。
func upsertEntity[T model.Keyed[T]](s *syncService, c collection[T], item T) (T, error) {
	item = item.Normalized()

	err := s.mutate(c.name, func(st *model.AppState) (mutation, error) {
		items := c.get(st)
		if idx := indexByKey(items, item.NaturalKey()); idx >= 0 {
			prev := items[idx]
			item = item.WithID(prev.EntityID())
			saved := item
			c.set(st, replaceAt(items, idx, saved))
			return mutation{
				id: saved.EntityID(),
				remote: func(ctx context.Context, r repository.RemoteStore) repository.Result {
					return r.Update(ctx, c.name, saved)
				},
				undo: c.undo(saved.EntityID(), prev, true),
			}, nil
		}

		if item.EntityID() == "" {
			item = item.WithID(s.newID())
		} else if indexByID(items, item.EntityID()) >= 0 {
			// 自然键不同但 ID 已被占用
			return mutation{}, ErrEntityExists
		}
		saved := item
		c.set(st, append(slices.Clip(items), saved))
		var zero T
		return mutation{
			id: saved.EntityID(),
			remote: func(ctx context.Context, r repository.RemoteStore) repository.Result {
				return r.Insert(ctx, c.name, saved)
			},
			undo: c.undo(saved.EntityID(), zero, false),
		}, nil
	})
	return item, err
}

// ════════════════════════ 班级 ════════════════════════

func (s *syncService) AddClass(_ context.Context, v model.ClassData) (model.ClassData, error) {
	return addEntity(s, classesCol, v)
}

func (s *syncService) UpdateClass(_ context.Context, v model.ClassData) (model.ClassData, error) {
	return updateEntity(s, classesCol, v)
}

func (s *syncService) DeleteClass(_ context.Context, id model.ID) error {
	return deleteEntity(s, classesCol, id)
}

// ════════════════════════ 学生 ════════════════════════

func (s *syncService) AddStudent(_ context.Context, v model.Student) (model.Student, error) {
	return addEntity(s, studentsCol, v)
}

func (s *syncService) UpdateStudent(_ context.Context, v model.Student) (model.Student, error) {
	return updateEntity(s, studentsCol, v)
}

func (s *syncService) DeleteStudent(_ context.Context, id model.ID) error {
	return deleteEntity(s, studentsCol, id)
}

// ════════════════════════ 学习目标 ════════════════════════

func (s *syncService) AddTP(_ context.Context, v model.LearningObjective) (model.LearningObjective, error) {
	return addEntity(s, tpsCol, v)
}

func (s *syncService) UpdateTP(_ context.Context, v model.LearningObjective) (model.LearningObjective, error) {
	return updateEntity(s, tpsCol, v)
}

func (s *syncService) DeleteTP(_ context.Context, id model.ID) error {
	return deleteEntity(s, tpsCol, id)
}

// ════════════════════════ 评分与类别结果 ════════════════════════

func (s *syncService) UpsertAssessment(_ context.Context, v model.Assessment) (model.Assessment, error) {
	return upsertEntity(s, assessmentsCol, v)
}

func (s *syncService) UpsertCategoryResult(_ context.Context, v model.CategoryResult) (model.CategoryResult, error) {
	return upsertEntity(s, categoryResultsCol, v)
}

// ════════════════════════ 学校设置 ════════════════════════

func (s *syncService) SetSettings(_ context.Context, v model.SchoolSettings) (model.SchoolSettings, error) {
	err := s.mutate(model.CollectionSettings, func(st *model.AppState) (mutation, error) {
		prev := st.Settings
		st.Settings = v
		return mutation{
			id: model.SettingsRowID,
			remote: func(ctx context.Context, r repository.RemoteStore) repository.Result {
				return r.Upsert(ctx, model.CollectionSettings, v)
			},
			undo: func(st *model.AppState) { st.Settings = prev },
		}, nil
	})
	return v, err
}

// ════════════════════════ P5 ════════════════════════

func (s *syncService) AddP5Criteria(_ context.Context, v model.P5Criteria) (model.P5Criteria, error) {
	return addEntity(s, p5CriteriaCol, v)
}

func (s *syncService) UpdateP5Criteria(_ context.Context, v model.P5Criteria) (model.P5Criteria, error) {
	return updateEntity(s, p5CriteriaCol, v)
}

func (s *syncService) DeleteP5Criteria(_ context.Context, id model.ID) error {
	return deleteEntity(s, p5CriteriaCol, id)
}

func (s *syncService) UpsertP5Assessment(_ context.Context, v model.P5Assessment) (model.P5Assessment, error) {
	return upsertEntity(s, p5AssessmentsCol, v)
}

// ════════════════════════ 反思 / 备注 / 出勤 ════════════════════════

func (s *syncService) AddReflection(_ context.Context, v model.Reflection) (model.Reflection, error) {
	return addEntity(s, reflectionsCol, v)
}

func (s *syncService) UpdateReflection(_ context.Context, v model.Reflection) (model.Reflection, error) {
	return updateEntity(s, reflectionsCol, v)
}

func (s *syncService) DeleteReflection(_ context.Context, id model.ID) error {
	return deleteEntity(s, reflectionsCol, id)
}

func (s *syncService) UpsertNote(_ context.Context, v model.StudentNote) (model.StudentNote, error) {
	return upsertEntity(s, notesCol, v)
}

func (s *syncService) UpsertAttendance(_ context.Context, v model.AttendanceData) (model.AttendanceData, error) {
	return upsertEntity(s, attendanceCol, v)
}
