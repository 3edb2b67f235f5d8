package model

// Reflection 家长反思问答，每名学生可有多条
type Reflection struct {
	ID        ID     `json:"id"`
	StudentID ID     `json:"studentId" binding:"required"`
	Question  string `json:"question"  binding:"required"`
	Answer    string `json:"answer"`
}

func (r Reflection) EntityID() ID { return r.ID }

func (r Reflection) WithID(id ID) Reflection { r.ID = id; return r }

func (r Reflection) Normalized() Reflection {
	r.ID = r.ID.Normalize()
	r.StudentID = r.StudentID.Normalize()
	return r
}

// StudentNote 成长记录，每名学生一条
type StudentNote struct {
	ID        ID     `json:"id"`
	StudentID ID     `json:"studentId" binding:"required"`
	Note      string `json:"note"`
}

func (n StudentNote) EntityID() ID { return n.ID }

func (n StudentNote) WithID(id ID) StudentNote { n.ID = id; return n }

func (n StudentNote) Normalized() StudentNote {
	n.ID = n.ID.Normalize()
	n.StudentID = n.StudentID.Normalize()
	return n
}

func (n StudentNote) NaturalKey() string { return string(n.StudentID) }

// AttendanceData 出勤统计（病假/事假/无故缺勤次数），每名学生一条
type AttendanceData struct {
	ID         ID  `json:"id"`
	StudentID  ID  `json:"studentId"  binding:"required"`
	Sick       int `json:"sick"       binding:"min=0"`
	Permission int `json:"permission" binding:"min=0"`
	Alpha      int `json:"alpha"      binding:"min=0"`
}

func (a AttendanceData) EntityID() ID { return a.ID }

func (a AttendanceData) WithID(id ID) AttendanceData { a.ID = id; return a }

func (a AttendanceData) Normalized() AttendanceData {
	a.ID = a.ID.Normalize()
	a.StudentID = a.StudentID.Normalize()
	return a
}

func (a AttendanceData) NaturalKey() string { return string(a.StudentID) }
