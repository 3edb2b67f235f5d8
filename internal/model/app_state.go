package model

import "time"

// AppState 应用内存状态聚合：11 个集合 + 学校设置。
// 要么完整加载，要么为零值状态（空集合 + 默认设置），不存在部分加载。
type AppState struct {
	Classes         []ClassData         `json:"classes"`
	Students        []Student           `json:"students"`
	TPs             []LearningObjective `json:"tps"`
	Assessments     []Assessment        `json:"assessments"`
	CategoryResults []CategoryResult    `json:"categoryResults"`
	Settings        SchoolSettings      `json:"settings"`
	P5Criteria      []P5Criteria        `json:"p5Criteria"`
	P5Assessments   []P5Assessment      `json:"p5Assessments"`
	Reflections     []Reflection        `json:"reflections"`
	Notes           []StudentNote       `json:"notes"`
	Attendance      []AttendanceData    `json:"attendance"`
}

// NewAppState 零值状态
func NewAppState(now time.Time) *AppState {
	s := &AppState{Settings: DefaultSettings(now)}
	s.EnsureCollections()
	return s
}

// EnsureCollections 将 nil 集合替换为空切片，保证序列化结果为 [] 而非 null
func (s *AppState) EnsureCollections() {
	if s.Classes == nil {
		s.Classes = []ClassData{}
	}
	if s.Students == nil {
		s.Students = []Student{}
	}
	if s.TPs == nil {
		s.TPs = []LearningObjective{}
	}
	if s.Assessments == nil {
		s.Assessments = []Assessment{}
	}
	if s.CategoryResults == nil {
		s.CategoryResults = []CategoryResult{}
	}
	if s.P5Criteria == nil {
		s.P5Criteria = []P5Criteria{}
	}
	if s.P5Assessments == nil {
		s.P5Assessments = []P5Assessment{}
	}
	if s.Reflections == nil {
		s.Reflections = []Reflection{}
	}
	if s.Notes == nil {
		s.Notes = []StudentNote{}
	}
	if s.Attendance == nil {
		s.Attendance = []AttendanceData{}
	}
}

// NormalizeIDs 规范化全部集合内的主键与外键
func (s *AppState) NormalizeIDs() {
	s.EnsureCollections()
	s.Classes = normalizeAll(s.Classes)
	s.Students = normalizeAll(s.Students)
	s.TPs = normalizeAll(s.TPs)
	s.Assessments = normalizeAll(s.Assessments)
	s.CategoryResults = normalizeAll(s.CategoryResults)
	s.P5Criteria = normalizeAll(s.P5Criteria)
	s.P5Assessments = normalizeAll(s.P5Assessments)
	s.Reflections = normalizeAll(s.Reflections)
	s.Notes = normalizeAll(s.Notes)
	s.Attendance = normalizeAll(s.Attendance)
}

// Clone 深拷贝（实体均为值类型，复制切片即可）
func (s *AppState) Clone() *AppState {
	c := *s
	c.Classes = append([]ClassData{}, s.Classes...)
	c.Students = append([]Student{}, s.Students...)
	c.TPs = append([]LearningObjective{}, s.TPs...)
	c.Assessments = append([]Assessment{}, s.Assessments...)
	c.CategoryResults = append([]CategoryResult{}, s.CategoryResults...)
	c.P5Criteria = append([]P5Criteria{}, s.P5Criteria...)
	c.P5Assessments = append([]P5Assessment{}, s.P5Assessments...)
	c.Reflections = append([]Reflection{}, s.Reflections...)
	c.Notes = append([]StudentNote{}, s.Notes...)
	c.Attendance = append([]AttendanceData{}, s.Attendance...)
	return &c
}

func normalizeAll[T Entity[T]](items []T) []T {
	out := make([]T, len(items))
	for i, it := range items {
		out[i] = it.Normalized()
	}
	return out
}

// ── 查询辅助 ──

// FindStudent 按 ID 查找学生
func (s *AppState) FindStudent(id ID) (Student, bool) {
	for _, st := range s.Students {
		if st.ID == id {
			return st, true
		}
	}
	return Student{}, false
}

// FindClass 按 ID 查找班级
func (s *AppState) FindClass(id ID) (ClassData, bool) {
	for _, c := range s.Classes {
		if c.ID == id {
			return c, true
		}
	}
	return ClassData{}, false
}

// StudentsOfClass 班级内学生（保持原顺序）
func (s *AppState) StudentsOfClass(classID ID) []Student {
	result := make([]Student, 0)
	for _, st := range s.Students {
		if st.ClassID == classID {
			result = append(result, st)
		}
	}
	return result
}

// TPsOf 班级在某类别下的学习目标
func (s *AppState) TPsOf(classID ID, category TPType) []LearningObjective {
	result := make([]LearningObjective, 0)
	for _, tp := range s.TPs {
		if tp.ClassID == classID && tp.Category == category {
			result = append(result, tp)
		}
	}
	return result
}

// AssessmentOf 学生在某学习目标上的评分
func (s *AppState) AssessmentOf(studentID, tpID ID) (Assessment, bool) {
	for _, a := range s.Assessments {
		if a.StudentID == studentID && a.TPID == tpID {
			return a, true
		}
	}
	return Assessment{}, false
}
