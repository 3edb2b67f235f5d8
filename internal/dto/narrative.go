package dto

import "rapor-paud/backend/internal/model"

// NarrativeSource 叙述文本来源
type NarrativeSource string

const (
	SourceTemplate NarrativeSource = "template"
	SourceGemini   NarrativeSource = "gemini"
	SourceGroq     NarrativeSource = "groq"
)

// NarrativeFailure 叙述生成失败分类
type NarrativeFailure string

const (
	FailureNone              NarrativeFailure = ""
	FailureQuotaExhausted    NarrativeFailure = "quota_exhausted"
	FailureInvalidCredential NarrativeFailure = "invalid_credential"
	FailureOther             NarrativeFailure = "other"
)

// AssessmentFact 单个学习目标的评分事实
type AssessmentFact struct {
	TP       string                `json:"tp"`
	Activity string                `json:"activity"`
	Score    model.AssessmentLevel `json:"score"`
}

// CategoryNarrativeRequest 类别叙述生成（事实由调用方给出）
type CategoryNarrativeRequest struct {
	StudentName string           `json:"studentName" binding:"required"`
	Category    string           `json:"category"    binding:"required"`
	Facts       []AssessmentFact `json:"facts"`
	Keywords    string           `json:"keywords"`
}

// P5NarrativeRequest P5 叙述生成
type P5NarrativeRequest struct {
	StudentName  string                `json:"studentName"  binding:"required"`
	SubDimension string                `json:"subDimension" binding:"required"`
	Score        model.AssessmentLevel `json:"score"        binding:"required,min=1,max=3"`
	Keywords     string                `json:"keywords"`
}

// SuggestCategoryRequest 根据当前状态为学生生成类别叙述
type SuggestCategoryRequest struct {
	StudentID model.ID     `json:"studentId" binding:"required"`
	Category  model.TPType `json:"category"  binding:"required"`
	Keywords  string       `json:"keywords"`
}

// SuggestP5Request 根据当前状态为学生生成 P5 叙述
type SuggestP5Request struct {
	StudentID  model.ID `json:"studentId"  binding:"required"`
	CriteriaID model.ID `json:"criteriaId" binding:"required"`
	Keywords   string   `json:"keywords"`
}

// NarrativeResult 叙述生成结果。
// Failure 非空时 Text 为面向教师的提示文字，而非叙述本身。
type NarrativeResult struct {
	Text    string           `json:"text"`
	Source  NarrativeSource  `json:"source"`
	Failure NarrativeFailure `json:"failure,omitempty"`
}

// OK 是否为可直接采用的叙述
func (r NarrativeResult) OK() bool { return r.Failure == FailureNone }
