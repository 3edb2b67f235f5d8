package dto

import "rapor-paud/backend/internal/model"

// DashboardStats 首页统计
type DashboardStats struct {
	Students           int `json:"students"`
	Classes            int `json:"classes"`
	LearningObjectives int `json:"learningObjectives"`
	AssessedStudents   int `json:"assessedStudents"`
}

// StudentReport 单个学生的成绩报告（打印视图的数据部分）
type StudentReport struct {
	Student     model.Student        `json:"student"`
	Class       *model.ClassData     `json:"class,omitempty"`
	TeacherName string               `json:"teacherName"`
	Settings    model.SchoolSettings `json:"settings"`
	Categories  []CategorySection    `json:"categories"`
	P5          []P5Section          `json:"p5"`
	Reflections []model.Reflection   `json:"reflections"`
	Note        string               `json:"note"`
	Attendance  model.AttendanceData `json:"attendance"`
}

// CategorySection 报告中的一个发展类别
type CategorySection struct {
	Category    model.TPType          `json:"category"`
	Objectives  []ObjectiveScore      `json:"objectives"`
	Result      *model.CategoryResult `json:"result,omitempty"`
	Description string                `json:"description"`
}

// ObjectiveScore 学习目标及学生得分（未评分时 Score 为 0）
type ObjectiveScore struct {
	TP         model.LearningObjective `json:"tp"`
	Score      model.AssessmentLevel   `json:"score"`
	ScoreLabel string                  `json:"scoreLabel"`
}

// P5Section 报告中的一个 P5 子维度
type P5Section struct {
	Criteria    model.P5Criteria    `json:"criteria"`
	Assessment  *model.P5Assessment `json:"assessment,omitempty"`
	ScoreLabel  string              `json:"scoreLabel"`
	Description string              `json:"description"`
}

// ImportSummary 花名册导入结果
type ImportSummary struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
