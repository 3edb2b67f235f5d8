package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"rapor-paud/backend/internal/model"
)

// ── 集合 → 表 显式映射 ──
//
// 每个集合声明表名与 字段 → 列 的对应关系。TPs → tps 是唯一不规则的表名，
// 在此直接声明；未声明的字段不会写入远端。

type column struct {
	Field  string // 应用侧 JSON 字段
	Column string // 远端列名
	IsID   bool   // 主键或外键：读写时一律转成字符串
}

type tableMapping struct {
	Collection model.Collection
	Table      string
	Columns    []column
}

func idCol(field, col string) column { return column{Field: field, Column: col, IsID: true} }
func col(field, name string) column  { return column{Field: field, Column: name} }

var tableMappings = map[model.Collection]tableMapping{
	model.CollectionClasses: {
		Collection: model.CollectionClasses,
		Table:      "classes",
		Columns: []column{
			idCol("id", "id"),
			col("name", "name"),
			col("teacherName", "teacher_name"),
			col("nuptk", "nuptk"),
		},
	},
	model.CollectionStudents: {
		Collection: model.CollectionStudents,
		Table:      "students",
		Columns: []column{
			idCol("id", "id"),
			col("nisn", "nisn"),
			col("name", "name"),
			idCol("classId", "class_id"),
			col("pob", "pob"),
			col("dob", "dob"),
			col("religion", "religion"),
			col("childOrder", "child_order"),
			col("gender", "gender"),
			col("phone", "phone"),
			col("fatherName", "father_name"),
			col("motherName", "mother_name"),
			col("fatherJob", "father_job"),
			col("motherJob", "mother_job"),
			col("address", "address"),
			col("photoUrl", "photo_url"),
			col("height", "height"),
			col("weight", "weight"),
		},
	},
	model.CollectionTPs: {
		Collection: model.CollectionTPs,
		Table:      "tps",
		Columns: []column{
			idCol("id", "id"),
			idCol("classId", "class_id"),
			col("category", "category"),
			col("description", "description"),
			col("activity", "activity"),
		},
	},
	model.CollectionAssessments: {
		Collection: model.CollectionAssessments,
		Table:      "assessments",
		Columns: []column{
			idCol("id", "id"),
			idCol("studentId", "student_id"),
			idCol("tpId", "tp_id"),
			col("score", "score"),
			col("semester", "semester"),
			col("academicYear", "academic_year"),
		},
	},
	model.CollectionCategoryResults: {
		Collection: model.CollectionCategoryResults,
		Table:      "category_results",
		Columns: []column{
			idCol("id", "id"),
			idCol("studentId", "student_id"),
			col("category", "category"),
			col("teacherNote", "teacher_note"),
			col("generatedDescription", "generated_description"),
			col("semester", "semester"),
			col("academicYear", "academic_year"),
		},
	},
	model.CollectionSettings: {
		Collection: model.CollectionSettings,
		Table:      "settings",
		Columns: []column{
			idCol("id", "id"),
			col("name", "name"),
			col("npsn", "npsn"),
			col("address", "address"),
			col("postalCode", "postal_code"),
			col("village", "village"),
			col("district", "district"),
			col("regency", "regency"),
			col("province", "province"),
			col("website", "website"),
			col("email", "email"),
			col("headmaster", "headmaster"),
			col("teacher", "teacher"),
			col("currentClass", "current_class"),
			col("semester", "semester"),
			col("academicYear", "academic_year"),
			col("reportDate", "report_date"),
			col("reportPlace", "report_place"),
			col("logoUrl", "logo_url"),
			col("aiProvider", "ai_provider"),
			col("aiApiKey", "ai_api_key"),
		},
	},
	model.CollectionP5Criteria: {
		Collection: model.CollectionP5Criteria,
		Table:      "p5_criteria",
		Columns: []column{
			idCol("id", "id"),
			idCol("classId", "class_id"),
			col("subDimension", "sub_dimension"),
			col("descBerkembang", "desc_berkembang"),
			col("descCakap", "desc_cakap"),
			col("descMahir", "desc_mahir"),
		},
	},
	model.CollectionP5Assessments: {
		Collection: model.CollectionP5Assessments,
		Table:      "p5_assessments",
		Columns: []column{
			idCol("id", "id"),
			idCol("studentId", "student_id"),
			idCol("criteriaId", "criteria_id"),
			col("score", "score"),
			col("teacherNote", "teacher_note"),
			col("generatedDescription", "generated_description"),
		},
	},
	model.CollectionReflections: {
		Collection: model.CollectionReflections,
		Table:      "reflections",
		Columns: []column{
			idCol("id", "id"),
			idCol("studentId", "student_id"),
			col("question", "question"),
			col("answer", "answer"),
		},
	},
	model.CollectionNotes: {
		Collection: model.CollectionNotes,
		Table:      "notes",
		Columns: []column{
			idCol("id", "id"),
			idCol("studentId", "student_id"),
			col("note", "note"),
		},
	},
	model.CollectionAttendance: {
		Collection: model.CollectionAttendance,
		Table:      "attendance",
		Columns: []column{
			idCol("id", "id"),
			idCol("studentId", "student_id"),
			col("sick", "sick"),
			col("permission", "permission"),
			col("alpha", "alpha"),
		},
	},
}

// mappingFor 查找集合映射
func mappingFor(c model.Collection) (tableMapping, error) {
	m, ok := tableMappings[c]
	if !ok {
		return tableMapping{}, fmt.Errorf("未知集合: %s", c)
	}
	return m, nil
}

// TableName 集合对应的远端表名
func TableName(c model.Collection) (string, error) {
	m, err := mappingFor(c)
	if err != nil {
		return "", err
	}
	return m.Table, nil
}

// columnNames 全部列名（upsert 冲突时更新除 id 外的列）
func (m tableMapping) columnNames(withID bool) []string {
	names := make([]string, 0, len(m.Columns))
	for _, c := range m.Columns {
		if !withID && c.Column == "id" {
			continue
		}
		names = append(names, c.Column)
	}
	return names
}

// ── 编码：实体 → 行 ──

// toRow 将实体按映射转换为 列 → 值。
// 组合 JSON 编码 + 显式列表，实体缺失的字段写 nil。
func (m tableMapping) toRow(entity interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("编码 %s 失败: %w", m.Collection, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	fields := make(map[string]interface{})
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("编码 %s 失败: %w", m.Collection, err)
	}

	row := make(map[string]interface{}, len(m.Columns))
	for _, c := range m.Columns {
		v, ok := fields[c.Field]
		if !ok {
			row[c.Column] = nil
			continue
		}
		if c.IsID {
			row[c.Column] = string(model.IDFrom(v))
			continue
		}
		row[c.Column] = driverValue(v)
	}
	return row, nil
}

// driverValue json.Number 转为驱动可接受的整数或浮点
func driverValue(v interface{}) interface{} {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// ── 解码：行 → 实体 ──

// fromRow 将远端行按映射还原为应用侧字段，ID 类字段强制为字符串
func (m tableMapping) fromRow(row map[string]interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(m.Columns))
	for _, c := range m.Columns {
		v, ok := row[c.Column]
		if !ok || v == nil {
			continue
		}
		if c.IsID {
			fields[c.Field] = string(model.IDFrom(v))
			continue
		}
		switch x := v.(type) {
		case []byte:
			fields[c.Field] = string(x)
		case time.Time:
			fields[c.Field] = x.Format("2006-01-02")
		default:
			fields[c.Field] = x
		}
	}
	return fields
}

// decodeRows 行集合 → 实体切片
func decodeRows[T any](m tableMapping, rows []map[string]interface{}) ([]T, error) {
	fields := make([]map[string]interface{}, 0, len(rows))
	for _, r := range rows {
		fields = append(fields, m.fromRow(r))
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("解码 %s 失败: %w", m.Collection, err)
	}
	out := make([]T, 0, len(rows))
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("解码 %s 失败: %w", m.Collection, err)
	}
	return out, nil
}

// decodeState 将全部集合的行数据组装为 AppState。
// 缺少设置行时使用默认设置；任一集合解码失败即整体失败。
func decodeState(rows map[model.Collection][]map[string]interface{}, now time.Time) (*model.AppState, error) {
	state := model.NewAppState(now)
	var err error

	if state.Classes, err = decodeRows[model.ClassData](tableMappings[model.CollectionClasses], rows[model.CollectionClasses]); err != nil {
		return nil, err
	}
	if state.Students, err = decodeRows[model.Student](tableMappings[model.CollectionStudents], rows[model.CollectionStudents]); err != nil {
		return nil, err
	}
	if state.TPs, err = decodeRows[model.LearningObjective](tableMappings[model.CollectionTPs], rows[model.CollectionTPs]); err != nil {
		return nil, err
	}
	if state.Assessments, err = decodeRows[model.Assessment](tableMappings[model.CollectionAssessments], rows[model.CollectionAssessments]); err != nil {
		return nil, err
	}
	if state.CategoryResults, err = decodeRows[model.CategoryResult](tableMappings[model.CollectionCategoryResults], rows[model.CollectionCategoryResults]); err != nil {
		return nil, err
	}
	if state.P5Criteria, err = decodeRows[model.P5Criteria](tableMappings[model.CollectionP5Criteria], rows[model.CollectionP5Criteria]); err != nil {
		return nil, err
	}
	if state.P5Assessments, err = decodeRows[model.P5Assessment](tableMappings[model.CollectionP5Assessments], rows[model.CollectionP5Assessments]); err != nil {
		return nil, err
	}
	if state.Reflections, err = decodeRows[model.Reflection](tableMappings[model.CollectionReflections], rows[model.CollectionReflections]); err != nil {
		return nil, err
	}
	if state.Notes, err = decodeRows[model.StudentNote](tableMappings[model.CollectionNotes], rows[model.CollectionNotes]); err != nil {
		return nil, err
	}
	if state.Attendance, err = decodeRows[model.AttendanceData](tableMappings[model.CollectionAttendance], rows[model.CollectionAttendance]); err != nil {
		return nil, err
	}

	if settingsRows := rows[model.CollectionSettings]; len(settingsRows) > 0 {
		items, err := decodeRows[model.SchoolSettings](tableMappings[model.CollectionSettings], settingsRows[:1])
		if err != nil {
			return nil, err
		}
		state.Settings = items[0]
	}

	state.NormalizeIDs()
	return state, nil
}
