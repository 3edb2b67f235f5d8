package model

// ── 课外项目（P5） ──

// P5Criteria P5 子维度及三档描述模板，对应表 p5_criteria
type P5Criteria struct {
	ID             ID     `json:"id"`
	ClassID        ID     `json:"classId"`
	SubDimension   string `json:"subDimension"   binding:"required"`
	DescBerkembang string `json:"descBerkembang"` // 等级 1 描述
	DescCakap      string `json:"descCakap"`      // 等级 2 描述
	DescMahir      string `json:"descMahir"`      // 等级 3 描述
}

func (c P5Criteria) EntityID() ID { return c.ID }

func (c P5Criteria) WithID(id ID) P5Criteria { c.ID = id; return c }

func (c P5Criteria) Normalized() P5Criteria {
	c.ID = c.ID.Normalize()
	c.ClassID = c.ClassID.Normalize()
	return c
}

// DescriptionFor 按等级取模板描述
func (c P5Criteria) DescriptionFor(level AssessmentLevel) string {
	switch level {
	case LevelBerkembang:
		return c.DescBerkembang
	case LevelCakap:
		return c.DescCakap
	case LevelMahir:
		return c.DescMahir
	default:
		return ""
	}
}

// P5Assessment 学生在 P5 子维度上的评分，(StudentID, CriteriaID) 唯一
type P5Assessment struct {
	ID                   ID              `json:"id"`
	StudentID            ID              `json:"studentId"  binding:"required"`
	CriteriaID           ID              `json:"criteriaId" binding:"required"`
	Score                AssessmentLevel `json:"score"      binding:"required,min=1,max=3"`
	TeacherNote          string          `json:"teacherNote,omitempty"`
	GeneratedDescription string          `json:"generatedDescription,omitempty"`
}

func (a P5Assessment) EntityID() ID { return a.ID }

func (a P5Assessment) WithID(id ID) P5Assessment { a.ID = id; return a }

func (a P5Assessment) Normalized() P5Assessment {
	a.ID = a.ID.Normalize()
	a.StudentID = a.StudentID.Normalize()
	a.CriteriaID = a.CriteriaID.Normalize()
	return a
}

func (a P5Assessment) NaturalKey() string {
	return naturalKey(string(a.StudentID), string(a.CriteriaID))
}
