package model

// LearningObjective 学习目标（按班级划分），对应表 tps
type LearningObjective struct {
	ID          ID     `json:"id"`
	ClassID     ID     `json:"classId"`
	Category    TPType `json:"category"    binding:"required"`
	Description string `json:"description" binding:"required"`
	Activity    string `json:"activity"`
}

func (t LearningObjective) EntityID() ID { return t.ID }

func (t LearningObjective) WithID(id ID) LearningObjective { t.ID = id; return t }

func (t LearningObjective) Normalized() LearningObjective {
	t.ID = t.ID.Normalize()
	t.ClassID = t.ClassID.Normalize()
	return t
}

// Assessment 学生在单个学习目标上的评分，(StudentID, TPID) 唯一
type Assessment struct {
	ID           ID              `json:"id"`
	StudentID    ID              `json:"studentId"    binding:"required"`
	TPID         ID              `json:"tpId"         binding:"required"`
	Score        AssessmentLevel `json:"score"        binding:"required,min=1,max=3"`
	Semester     string          `json:"semester"`
	AcademicYear string          `json:"academicYear"`
}

func (a Assessment) EntityID() ID { return a.ID }

func (a Assessment) WithID(id ID) Assessment { a.ID = id; return a }

func (a Assessment) Normalized() Assessment {
	a.ID = a.ID.Normalize()
	a.StudentID = a.StudentID.Normalize()
	a.TPID = a.TPID.Normalize()
	return a
}

func (a Assessment) NaturalKey() string {
	return naturalKey(string(a.StudentID), string(a.TPID))
}

// CategoryResult 类别叙述汇总（AI 生成或教师编辑），(StudentID, Category) 唯一
type CategoryResult struct {
	ID                   ID     `json:"id"`
	StudentID            ID     `json:"studentId"            binding:"required"`
	Category             string `json:"category"             binding:"required"`
	TeacherNote          string `json:"teacherNote"`
	GeneratedDescription string `json:"generatedDescription"`
	Semester             string `json:"semester"`
	AcademicYear         string `json:"academicYear"`
}

func (r CategoryResult) EntityID() ID { return r.ID }

func (r CategoryResult) WithID(id ID) CategoryResult { r.ID = id; return r }

func (r CategoryResult) Normalized() CategoryResult {
	r.ID = r.ID.Normalize()
	r.StudentID = r.StudentID.Normalize()
	return r
}

func (r CategoryResult) NaturalKey() string {
	return naturalKey(string(r.StudentID), r.Category)
}
