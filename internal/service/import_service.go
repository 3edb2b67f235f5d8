package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"rapor-paud/backend/internal/dto"
	"rapor-paud/backend/internal/model"
)

// ── 导入模块业务错误 ──

var (
	ErrImportInvalidFile = errors.New("无法读取 Excel 文件")
	ErrImportNoHeader    = errors.New("表头缺少 Nama 列")
)

// ImportService 花名册导入
type ImportService interface {
	// ImportRoster 读取首个 Sheet，第一行为表头，逐行经同步核心新增学生
	ImportRoster(ctx context.Context, classID model.ID, r io.Reader) (*dto.ImportSummary, error)
}

type importService struct {
	sync   SyncService
	logger *zap.Logger
}

// NewImportService 创建 ImportService 实例
func NewImportService(syncSvc SyncService, logger *zap.Logger) ImportService {
	return &importService{sync: syncSvc, logger: logger}
}

// rosterColumn 表头文字（小写）→ 字段写入函数
type rosterColumn func(st *model.Student, v string) error

var rosterColumns = map[string]rosterColumn{
	"nisn":           func(st *model.Student, v string) error { st.NISN = v; return nil },
	"nama":           func(st *model.Student, v string) error { st.Name = v; return nil },
	"tempat lahir":   func(st *model.Student, v string) error { st.POB = v; return nil },
	"tanggal lahir":  func(st *model.Student, v string) error { st.DOB = v; return nil },
	"agama":          func(st *model.Student, v string) error { st.Religion = v; return nil },
	"alamat":         func(st *model.Student, v string) error { st.Address = v; return nil },
	"no hp":          func(st *model.Student, v string) error { st.Phone = v; return nil },
	"nama ayah":      func(st *model.Student, v string) error { st.FatherName = v; return nil },
	"nama ibu":       func(st *model.Student, v string) error { st.MotherName = v; return nil },
	"pekerjaan ayah": func(st *model.Student, v string) error { st.FatherJob = v; return nil },
	"pekerjaan ibu":  func(st *model.Student, v string) error { st.MotherJob = v; return nil },
	"jenis kelamin": func(st *model.Student, v string) error {
		g := strings.ToUpper(v)
		if g != "" && g != "L" && g != "P" {
			return fmt.Errorf("jenis kelamin %q tidak valid", v)
		}
		st.Gender = g
		return nil
	},
	"anak ke": func(st *model.Student, v string) error {
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("anak ke %q bukan angka", v)
		}
		st.ChildOrder = n
		return nil
	},
}

func (s *importService) ImportRoster(ctx context.Context, classID model.ID, r io.Reader) (*dto.ImportSummary, error) {
	state, err := s.sync.State()
	if err != nil {
		return nil, err
	}
	class, ok := state.FindClass(classID.Normalize())
	if !ok {
		return nil, ErrClassNotFound
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		s.logger.Warn("打开导入文件失败", zap.Error(err))
		return nil, ErrImportInvalidFile
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrImportInvalidFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, ErrImportInvalidFile
	}
	if len(rows) == 0 {
		return nil, ErrImportNoHeader
	}

	// 1. 解析表头
	columns := make([]rosterColumn, len(rows[0]))
	hasName := false
	for i, h := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(h))
		columns[i] = rosterColumns[key]
		if key == "nama" {
			hasName = true
		}
	}
	if !hasName {
		return nil, ErrImportNoHeader
	}

	// 2. 班级内已有 NISN 不重复导入
	seen := make(map[string]struct{})
	for _, st := range state.StudentsOfClass(class.ID) {
		if st.NISN != "" {
			seen[st.NISN] = struct{}{}
		}
	}

	summary := &dto.ImportSummary{}
	for i, row := range rows[1:] {
		line := i + 2
		st := model.Student{ClassID: class.ID}

		var rowErr error
		for j, v := range row {
			if j >= len(columns) || columns[j] == nil {
				continue
			}
			if err := columns[j](&st, strings.TrimSpace(v)); err != nil {
				rowErr = err
				break
			}
		}
		if rowErr != nil {
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("Baris %d: %v", line, rowErr))
			continue
		}
		if st.Name == "" {
			summary.Skipped++
			continue
		}
		if _, dup := seen[st.NISN]; dup && st.NISN != "" {
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("Baris %d: NISN %s sudah terdaftar", line, st.NISN))
			continue
		}

		if _, err := s.sync.AddStudent(ctx, st); err != nil {
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("Baris %d: %v", line, err))
			continue
		}
		if st.NISN != "" {
			seen[st.NISN] = struct{}{}
		}
		summary.Imported++
	}

	s.logger.Info("花名册导入完成",
		zap.String("class_id", string(class.ID)),
		zap.Int("imported", summary.Imported),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}
