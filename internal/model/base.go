package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ── 标识符 ──

// ID 实体标识（主键与外键统一使用）。
// 远端存储可能把数字主键原样返回，解码时一律转为字符串，保证内存中的比较稳定。
type ID string

// UnmarshalJSON 同时接受 JSON 字符串与数字
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("model.ID: 无法解析 %s: %w", b, err)
	}
	*id = ID(n.String())
	return nil
}

// String 实现 fmt.Stringer
func (id ID) String() string { return string(id) }

// Normalize 去除首尾空白
func (id ID) Normalize() ID {
	return ID(strings.TrimSpace(string(id)))
}

// IDFrom 将任意标量转换为 ID（远端行数据解码使用）
func IDFrom(v interface{}) ID {
	switch x := v.(type) {
	case nil:
		return ""
	case ID:
		return x.Normalize()
	case string:
		return ID(x).Normalize()
	case []byte:
		return ID(x).Normalize()
	case json.Number:
		return ID(x.String())
	case int:
		return ID(strconv.Itoa(x))
	case int32:
		return ID(strconv.FormatInt(int64(x), 10))
	case int64:
		return ID(strconv.FormatInt(x, 10))
	case uint64:
		return ID(strconv.FormatUint(x, 10))
	case float32:
		return ID(strconv.FormatFloat(float64(x), 'f', -1, 32))
	case float64:
		return ID(strconv.FormatFloat(x, 'f', -1, 64))
	default:
		return ID(fmt.Sprint(x)).Normalize()
	}
}

// ── 集合 ──

// Collection 应用侧集合名称（与前端约定保持一致）
type Collection string

const (
	CollectionClasses         Collection = "classes"
	CollectionStudents        Collection = "students"
	CollectionTPs             Collection = "TPs"
	CollectionAssessments     Collection = "assessments"
	CollectionCategoryResults Collection = "categoryResults"
	CollectionSettings        Collection = "settings"
	CollectionP5Criteria      Collection = "p5Criteria"
	CollectionP5Assessments   Collection = "p5Assessments"
	CollectionReflections     Collection = "reflections"
	CollectionNotes           Collection = "notes"
	CollectionAttendance      Collection = "attendance"
)

// Collections 全部 11 个集合（设置单例在内）
var Collections = []Collection{
	CollectionClasses,
	CollectionStudents,
	CollectionTPs,
	CollectionAssessments,
	CollectionCategoryResults,
	CollectionSettings,
	CollectionP5Criteria,
	CollectionP5Assessments,
	CollectionReflections,
	CollectionNotes,
	CollectionAttendance,
}

// ── 实体约束 ──

// Entity 集合中的实体：可取主键，可规范化所有标识字段
type Entity[T any] interface {
	EntityID() ID
	WithID(id ID) T
	Normalized() T
}

// Keyed 以自然键去重的实体（upsert 语义）
type Keyed[T any] interface {
	Entity[T]
	NaturalKey() string
}

// naturalKey 拼接多段自然键
func naturalKey(parts ...string) string {
	return strings.Join(parts, "\x1f")
}

// [自证通过] internal/model/base.go
