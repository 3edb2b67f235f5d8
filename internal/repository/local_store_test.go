package repository

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"rapor-paud/backend/internal/model"
)

func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "rapor-local-test-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func openTestLocal(t *testing.T) LocalStore {
	t.Helper()
	store, err := OpenSQLiteLocalStore(filepath.Join(tempDir(t), "nested", "rapor.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteLocalStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteLocalStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	store := openTestLocal(t)

	if _, ok, err := store.Get(ctx, KeyStoreURL); err != nil || ok {
		t.Fatalf("空槽位应返回 ok=false，实际 ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, KeyStoreURL, "postgres://a"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(ctx, KeyStoreURL, "postgres://b"); err != nil {
		t.Fatalf("覆盖 Set: %v", err)
	}

	v, ok, err := store.Get(ctx, KeyStoreURL)
	if err != nil || !ok {
		t.Fatalf("Get 应命中，ok=%v err=%v", ok, err)
	}
	if v != "postgres://b" {
		t.Errorf("期望覆盖后的值，实际=%s", v)
	}

	if err := store.Delete(ctx, KeyStoreURL); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, KeyStoreURL); ok {
		t.Error("删除后不应命中")
	}
}

func sampleState() *model.AppState {
	s := model.NewAppState(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	s.Classes = append(s.Classes, model.ClassData{ID: "c1", Name: "Group A", TeacherName: "X"})
	s.Students = append(s.Students, model.Student{ID: "s1", Name: "Y", ClassID: "c1", Height: 98.5})
	s.TPs = append(s.TPs, model.LearningObjective{ID: "t1", ClassID: "c1", Category: model.TPTypeJD, Description: "D", Activity: "A"})
	s.Assessments = append(s.Assessments, model.Assessment{ID: "a1", StudentID: "s1", TPID: "t1", Score: model.LevelMahir})
	s.Attendance = append(s.Attendance, model.AttendanceData{ID: "at1", StudentID: "s1", Sick: 2})
	s.Settings.AIProvider = model.AIProviderGroq
	return s
}

func TestSnapshotStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	snap := NewSnapshotStore(openTestLocal(t), "raporPaudData")

	want := sampleState()
	if err := snap.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := snap.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load 应命中，ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("快照往返后应相等\n期望=%+v\n实际=%+v", want, got)
	}
}

func TestSnapshotStore_EncodeIdempotent(t *testing.T) {
	snap := NewSnapshotStore(nil, "raporPaudData")
	state := sampleState()

	a, err := snap.Encode(state)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, _ := snap.Encode(state)
	if string(a) != string(b) {
		t.Error("同一状态两次序列化应逐字节一致")
	}
}

func TestSnapshotStore_LoadNumericIDs(t *testing.T) {
	ctx := context.Background()
	local := openTestLocal(t)
	snap := NewSnapshotStore(local, "raporPaudData")

	raw := `{"classes":[{"id":1,"name":"A"}],"students":[{"id":2,"classId":1,"name":"B"}]}`
	if err := local.Set(ctx, "raporPaudData", raw); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := snap.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load 应命中，ok=%v err=%v", ok, err)
	}
	if got.Students[0].ClassID != "1" || got.Classes[0].ID != "1" {
		t.Errorf("数字 ID 应转为字符串: %+v", got)
	}
	if got.TPs == nil || got.Notes == nil {
		t.Error("缺失的集合应补为空切片")
	}
}
