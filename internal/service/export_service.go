package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"rapor-paud/backend/internal/model"
)

// ── 导出模块业务错误 ──

var (
	ErrClassNotFound      = errors.New("班级不存在")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
// Excel 格式：每个发展类别一个 Sheet，行 = 学生，列 = 学习目标，单元格 = 等级文字。
type ExportService interface {
	// ExportClassRecap 导出班级成绩汇总
	ExportClassRecap(ctx context.Context, classID model.ID) (*bytes.Buffer, string, error)
}

type exportService struct {
	sync   SyncService
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(syncSvc SyncService, logger *zap.Logger) ExportService {
	return &exportService{sync: syncSvc, logger: logger}
}

// categorySheetNames Sheet 名称不能超过 31 字符
var categorySheetNames = map[model.TPType]string{
	model.TPTypeABP:   "Agama dan Budi Pekerti",
	model.TPTypeJD:    "Jati Diri",
	model.TPTypeIMTAK: "Literasi dan STEAM",
}

// fixedColumns 学习目标列之前的固定列：No / NISN / Nama
const fixedColumns = 3

func (s *exportService) ExportClassRecap(ctx context.Context, classID model.ID) (*bytes.Buffer, string, error) {
	state, err := s.sync.State()
	if err != nil {
		return nil, "", err
	}
	class, ok := state.FindClass(classID.Normalize())
	if !ok {
		return nil, "", ErrClassNotFound
	}
	students := state.StudentsOfClass(class.ID)

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#C6E0B4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})

	for i, category := range model.TPCategories {
		sheet := categorySheetNames[category]
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				s.logger.Error("重命名 Sheet 失败", zap.Error(err))
				return nil, "", ErrExportGenerateFail
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			s.logger.Error("创建 Sheet 失败", zap.String("sheet", sheet), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}

		tps := state.TPsOf(class.ID, category)
		lastCol := colName(fixedColumns + len(tps) - 1)
		if len(tps) == 0 {
			lastCol = colName(fixedColumns - 1)
		}

		// 标题行
		f.SetCellValue(sheet, "A1", fmt.Sprintf("Rekap Nilai %s - %s", class.Name, category))
		f.MergeCell(sheet, "A1", cell(lastCol, 1))
		f.SetCellStyle(sheet, "A1", "A1", headerStyle)

		// 表头
		f.SetColWidth(sheet, "A", "A", 5)
		f.SetColWidth(sheet, "B", "B", 14)
		f.SetColWidth(sheet, "C", "C", 24)
		f.SetCellValue(sheet, "A2", "No")
		f.SetCellValue(sheet, "B2", "NISN")
		f.SetCellValue(sheet, "C2", "Nama")
		for j, tp := range tps {
			col := colName(fixedColumns + j)
			f.SetColWidth(sheet, col, col, 20)
			f.SetCellValue(sheet, cell(col, 2), tp.Description)
		}
		f.SetCellStyle(sheet, "A2", cell(lastCol, 2), headerStyle)

		// 数据行
		for r, st := range students {
			row := 3 + r
			f.SetCellValue(sheet, cell("A", row), r+1)
			f.SetCellValue(sheet, cell("B", row), st.NISN)
			f.SetCellValue(sheet, cell("C", row), st.Name)
			for j, tp := range tps {
				label := "-"
				if a, ok := state.AssessmentOf(st.ID, tp.ID); ok {
					label = a.Score.ShortLabel()
				}
				f.SetCellValue(sheet, cell(colName(fixedColumns+j), row), label)
			}
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("Rekap_%s.xlsx", strings.ReplaceAll(class.Name, " ", "_"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
