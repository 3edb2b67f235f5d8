package model

// ClassData 班级（分组），对应表 classes
type ClassData struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"        binding:"required"`
	TeacherName string `json:"teacherName"`
	NUPTK       string `json:"nuptk"` // 教师编号
}

func (c ClassData) EntityID() ID { return c.ID }

func (c ClassData) WithID(id ID) ClassData { c.ID = id; return c }

func (c ClassData) Normalized() ClassData {
	c.ID = c.ID.Normalize()
	return c
}

// Student 学生，对应表 students
type Student struct {
	ID         ID      `json:"id"`
	NISN       string  `json:"nisn"` // 国家学生编号
	Name       string  `json:"name"       binding:"required"`
	ClassID    ID      `json:"classId"`
	POB        string  `json:"pob"` // 出生地
	DOB        string  `json:"dob"` // 出生日期
	Religion   string  `json:"religion"`
	ChildOrder int     `json:"childOrder"`
	Gender     string  `json:"gender"     binding:"omitempty,oneof=L P"`
	Phone      string  `json:"phone"`
	FatherName string  `json:"fatherName"`
	MotherName string  `json:"motherName"`
	FatherJob  string  `json:"fatherJob"`
	MotherJob  string  `json:"motherJob"`
	Address    string  `json:"address"`
	PhotoURL   string  `json:"photoUrl,omitempty"`
	Height     float64 `json:"height,omitempty"` // cm
	Weight     float64 `json:"weight,omitempty"` // kg
}

func (s Student) EntityID() ID { return s.ID }

func (s Student) WithID(id ID) Student { s.ID = id; return s }

func (s Student) Normalized() Student {
	s.ID = s.ID.Normalize()
	s.ClassID = s.ClassID.Normalize()
	return s
}
