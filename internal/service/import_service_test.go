package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"rapor-paud/backend/internal/model"
)

// rosterFile 构造花名册工作簿
func rosterFile(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cellName, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cellName, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		t.Fatal(err)
	}
	return buf
}

func TestImportService_ImportRoster(t *testing.T) {
	env := newTestEnv(false)
	s := env.startedSync(t, nil)
	ctx := context.Background()
	class, _ := s.AddClass(ctx, model.ClassData{Name: "A"})
	s.AddStudent(ctx, model.Student{Name: "Lama", NISN: "100", ClassID: class.ID})

	buf := rosterFile(t, [][]interface{}{
		{"NISN", "Nama", "Jenis Kelamin", "Anak Ke", "Nama Ibu"},
		{"200", "Citra", "p", "2", "Ibu Citra"},
		{"100", "Duplikat", "L", "1", ""},
		{"300", "", "L", "", ""},
		{"400", "Eko", "X", "", ""},
		{"500", "Fajar", "L", "satu", ""},
		{"", "Gita", "", "", ""},
	})

	summary, err := NewImportService(s, zap.NewNop()).ImportRoster(ctx, class.ID, buf)
	if err != nil {
		t.Fatalf("ImportRoster: %v", err)
	}
	if summary.Imported != 2 || summary.Skipped != 4 {
		t.Errorf("导入结果不符: %+v", summary)
	}
	if len(summary.Errors) != 3 || !strings.HasPrefix(summary.Errors[0], "Baris 3:") {
		t.Errorf("错误列表不符: %v", summary.Errors)
	}

	state, _ := s.State()
	var citra model.Student
	for _, st := range state.StudentsOfClass(class.ID) {
		if st.Name == "Citra" {
			citra = st
		}
	}
	if citra.ID == "" || citra.Gender != "P" || citra.ChildOrder != 2 || citra.MotherName != "Ibu Citra" || citra.ClassID != class.ID {
		t.Errorf("导入的学生字段不符: %+v", citra)
	}
}

func TestImportService_Errors(t *testing.T) {
	env := newTestEnv(false)
	s := env.startedSync(t, nil)
	ctx := context.Background()
	class, _ := s.AddClass(ctx, model.ClassData{Name: "A"})
	svc := NewImportService(s, zap.NewNop())

	if _, err := svc.ImportRoster(ctx, "ghost", rosterFile(t, nil)); !errors.Is(err, ErrClassNotFound) {
		t.Errorf("期望 ErrClassNotFound，实际: %v", err)
	}
	if _, err := svc.ImportRoster(ctx, class.ID, bytes.NewBufferString("not a workbook")); !errors.Is(err, ErrImportInvalidFile) {
		t.Errorf("期望 ErrImportInvalidFile，实际: %v", err)
	}
	noName := rosterFile(t, [][]interface{}{{"NISN", "Alamat"}, {"1", "Jl"}})
	if _, err := svc.ImportRoster(ctx, class.ID, noName); !errors.Is(err, ErrImportNoHeader) {
		t.Errorf("期望 ErrImportNoHeader，实际: %v", err)
	}
}
