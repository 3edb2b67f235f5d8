package service

import (
	"context"

	"go.uber.org/zap"

	"rapor-paud/backend/internal/dto"
	"rapor-paud/backend/internal/model"
)

// ReportService 报告数据组装（只读，基于同步核心的当前状态）
type ReportService interface {
	Dashboard(ctx context.Context) (*dto.DashboardStats, error)
	// StudentReport 单个学生打印视图所需的全部数据
	StudentReport(ctx context.Context, studentID model.ID) (*dto.StudentReport, error)
}

type reportService struct {
	sync   SyncService
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(syncSvc SyncService, logger *zap.Logger) ReportService {
	return &reportService{sync: syncSvc, logger: logger}
}

func (s *reportService) Dashboard(ctx context.Context) (*dto.DashboardStats, error) {
	state, err := s.sync.State()
	if err != nil {
		return nil, err
	}

	assessed := make(map[model.ID]struct{})
	for _, a := range state.Assessments {
		assessed[a.StudentID] = struct{}{}
	}

	return &dto.DashboardStats{
		Students:           len(state.Students),
		Classes:            len(state.Classes),
		LearningObjectives: len(state.TPs),
		AssessedStudents:   len(assessed),
	}, nil
}

func (s *reportService) StudentReport(ctx context.Context, studentID model.ID) (*dto.StudentReport, error) {
	state, err := s.sync.State()
	if err != nil {
		return nil, err
	}
	return BuildStudentReport(state, studentID.Normalize())
}

// BuildStudentReport 从状态组装报告
func BuildStudentReport(state *model.AppState, studentID model.ID) (*dto.StudentReport, error) {
	student, ok := state.FindStudent(studentID)
	if !ok {
		return nil, ErrStudentNotFound
	}

	report := &dto.StudentReport{
		Student:     student,
		TeacherName: state.Settings.Teacher,
		Settings:    state.Settings,
		Categories:  make([]dto.CategorySection, 0, len(model.TPCategories)),
		P5:          make([]dto.P5Section, 0),
		Reflections: make([]model.Reflection, 0),
		Attendance:  model.AttendanceData{StudentID: student.ID},
	}

	if class, ok := state.FindClass(student.ClassID); ok {
		report.Class = &class
		if class.TeacherName != "" {
			report.TeacherName = class.TeacherName
		}
	}

	// 1. 三个发展类别
	for _, category := range model.TPCategories {
		section := dto.CategorySection{Category: category, Objectives: make([]dto.ObjectiveScore, 0)}
		for _, tp := range state.TPsOf(student.ClassID, category) {
			item := dto.ObjectiveScore{TP: tp, ScoreLabel: model.AssessmentLevel(0).ShortLabel()}
			if a, ok := state.AssessmentOf(student.ID, tp.ID); ok {
				item.Score = a.Score
				item.ScoreLabel = a.Score.ShortLabel()
			}
			section.Objectives = append(section.Objectives, item)
		}
		for i := range state.CategoryResults {
			r := state.CategoryResults[i]
			if r.StudentID == student.ID && r.Category == string(category) {
				section.Result = &r
				section.Description = firstNonEmpty(r.TeacherNote, r.GeneratedDescription)
				break
			}
		}
		report.Categories = append(report.Categories, section)
	}

	// 2. P5：班级的评价标准（未归属班级的标准对所有班级可见）
	for _, c := range state.P5Criteria {
		if c.ClassID != "" && c.ClassID != student.ClassID {
			continue
		}
		section := dto.P5Section{Criteria: c, ScoreLabel: model.AssessmentLevel(0).ShortLabel()}
		for i := range state.P5Assessments {
			a := state.P5Assessments[i]
			if a.StudentID == student.ID && a.CriteriaID == c.ID {
				section.Assessment = &a
				section.ScoreLabel = a.Score.ShortLabel()
				section.Description = firstNonEmpty(a.TeacherNote, a.GeneratedDescription, c.DescriptionFor(a.Score))
				break
			}
		}
		report.P5 = append(report.P5, section)
	}

	// 3. 家长反思、成长记录、出勤
	for _, r := range state.Reflections {
		if r.StudentID == student.ID {
			report.Reflections = append(report.Reflections, r)
		}
	}
	for _, n := range state.Notes {
		if n.StudentID == student.ID {
			report.Note = n.Note
			break
		}
	}
	for _, a := range state.Attendance {
		if a.StudentID == student.ID {
			report.Attendance = a
			break
		}
	}

	return report, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
