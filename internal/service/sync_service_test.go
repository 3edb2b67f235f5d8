package service

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"rapor-paud/backend/internal/model"
	"rapor-paud/backend/internal/repository"
	pkgerrors "rapor-paud/backend/pkg/errors"
)

// ── 初始化 ──

func TestSyncService_NotInitialized(t *testing.T) {
	env := newTestEnv(false)
	s := env.newSync(nil)

	if _, err := s.State(); !errors.Is(err, pkgerrors.ErrNotInitialized) {
		t.Errorf("期望 ErrNotInitialized，实际: %v", err)
	}
	if _, err := s.AddClass(context.Background(), model.ClassData{Name: "A"}); !errors.Is(err, pkgerrors.ErrNotInitialized) {
		t.Errorf("期望 ErrNotInitialized，实际: %v", err)
	}
	if _, err := s.RefreshData(context.Background()); !errors.Is(err, pkgerrors.ErrNotInitialized) {
		t.Errorf("期望 ErrNotInitialized，实际: %v", err)
	}
}

func TestSyncService_StartOffline_ZeroState(t *testing.T) {
	env := newTestEnv(false)
	s := env.startedSync(t, nil)

	if s.IsOnline() {
		t.Fatal("未配置连接信息时应为离线模式")
	}
	state, err := s.State()
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if state.Settings.Name != "TK Pertiwi Harapan" {
		t.Errorf("期望默认学校名称，实际: %q", state.Settings.Name)
	}
	if state.Settings.ReportDate != "2024-07-15" {
		t.Errorf("期望报告日期为启动当天，实际: %q", state.Settings.ReportDate)
	}
	if state.Classes == nil || state.Students == nil || state.Attendance == nil {
		t.Error("零值状态的集合应为空切片")
	}
	if _, ok, _ := env.repo.Snapshot.Load(context.Background()); !ok {
		t.Error("启动后应写入本地快照")
	}
}

func TestSyncService_StartOnline_AdoptsRemote(t *testing.T) {
	env := newTestEnv(true)
	env.remote.state.Classes = []model.ClassData{{ID: " 7 ", Name: "Kelompok B"}}
	env.remote.state.Students = []model.Student{{ID: "12", Name: "Rina", ClassID: "7 "}}

	s := env.startedSync(t, nil)

	state, _ := s.State()
	if len(state.Classes) != 1 || state.Classes[0].ID != "7" {
		t.Fatalf("期望采用远端班级且 ID 规范化为 \"7\"，实际: %+v", state.Classes)
	}
	if state.Students[0].ClassID != "7" {
		t.Errorf("外键应规范化，实际: %q", state.Students[0].ClassID)
	}
	if env.dialCount() != 1 {
		t.Errorf("期望拨号 1 次，实际: %d", env.dialCount())
	}

	snap, ok, err := env.repo.Snapshot.Load(context.Background())
	if err != nil || !ok {
		t.Fatalf("读取快照失败: ok=%v err=%v", ok, err)
	}
	if len(snap.Classes) != 1 {
		t.Error("远端数据应写入本地快照")
	}
}

func TestSyncService_StartOnline_FetchFailureFallsBackToSnapshot(t *testing.T) {
	env := newTestEnv(true)
	saved := model.NewAppState(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	saved.Classes = []model.ClassData{{ID: "c-local", Name: "Lokal"}}
	if err := env.repo.Snapshot.Save(context.Background(), saved); err != nil {
		t.Fatal(err)
	}
	env.remote.fetchErr = errors.New("relation \"classes\" does not exist")

	s := env.startedSync(t, nil)

	state, _ := s.State()
	if len(state.Classes) != 1 || state.Classes[0].ID != "c-local" {
		t.Errorf("远端读取失败时应回退到本地快照，实际: %+v", state.Classes)
	}
}

func TestSyncService_StartOnline_FetchFailureWithoutSnapshot(t *testing.T) {
	env := newTestEnv(true)
	env.remote.fetchErr = errors.New("timeout")

	s := env.startedSync(t, nil)

	state, _ := s.State()
	if len(state.Classes) != 0 || state.Settings.NPSN != "12345678" {
		t.Errorf("无快照时应使用零值状态，实际: %+v", state)
	}
}

// ── 离线修改 ──

func TestSyncService_Offline_NoRemoteCall(t *testing.T) {
	env := newTestEnv(false)
	s := env.startedSync(t, nil)
	ctx := context.Background()

	class, err := s.AddClass(ctx, model.ClassData{Name: "Kelompok A"})
	if err != nil {
		t.Fatalf("AddClass: %v", err)
	}
	if class.ID == "" {
		t.Fatal("未提供 ID 时应生成")
	}
	if _, err := s.AddStudent(ctx, model.Student{Name: "Budi", ClassID: class.ID}); err != nil {
		t.Fatalf("AddStudent: %v", err)
	}
	if err := s.DeleteStudent(ctx, "missing"); err != nil {
		t.Fatalf("DeleteStudent: %v", err)
	}
	flush(t, s)

	if env.dialCount() != 0 {
		t.Errorf("离线模式不应拨号，实际: %d", env.dialCount())
	}
	if calls := env.remote.recorded(); len(calls) != 0 {
		t.Errorf("离线模式不应调用远端，实际: %+v", calls)
	}

	snap, _, _ := env.repo.Snapshot.Load(ctx)
	if len(snap.Classes) != 1 || len(snap.Students) != 1 {
		t.Errorf("离线修改应写入快照，实际: classes=%d students=%d", len(snap.Classes), len(snap.Students))
	}
}

func TestSyncService_IDsStayStrings(t *testing.T) {
	env := newTestEnv(false)
	s := env.startedSync(t, nil)
	ctx := context.Background()

	class, _ := s.AddClass(ctx, model.ClassData{ID: " 42 ", Name: "A"})
	st, _ := s.AddStudent(ctx, model.Student{Name: "B", ClassID: " 42"})
	tp, _ := s.AddTP(ctx, model.LearningObjective{ClassID: "42 ", Category: model.TPTypeJD, Description: "D"})
	a, _ := s.UpsertAssessment(ctx, model.Assessment{StudentID: st.ID, TPID: tp.ID, Score: model.LevelCakap})
	s.UpsertCategoryResult(ctx, model.CategoryResult{StudentID: st.ID, Category: string(model.TPTypeJD)})
	crit, _ := s.AddP5Criteria(ctx, model.P5Criteria{ClassID: class.ID, SubDimension: "Mandiri"})
	s.UpsertP5Assessment(ctx, model.P5Assessment{StudentID: st.ID, CriteriaID: crit.ID, Score: model.LevelMahir})
	s.AddReflection(ctx, model.Reflection{StudentID: st.ID, Question: "Q"})
	s.UpsertNote(ctx, model.StudentNote{StudentID: st.ID, Note: "N"})
	s.UpsertAttendance(ctx, model.AttendanceData{StudentID: st.ID, Sick: 1})
	s.UpdateTP(ctx, tp)
	s.DeleteReflection(ctx, "nope")

	if class.ID != "42" || st.ClassID != "42" || tp.ClassID != "42" {
		t.Errorf("标识字段应去除空白: class=%q student.classId=%q tp.classId=%q", class.ID, st.ClassID, tp.ClassID)
	}
	if a.ID == "" || a.StudentID != st.ID || a.TPID != tp.ID {
		t.Errorf("评分标识不一致: %+v", a)
	}

	state, _ := s.State()
	ids := []model.ID{}
	for _, v := range state.Classes {
		ids = append(ids, v.ID)
	}
	for _, v := range state.Students {
		ids = append(ids, v.ID, v.ClassID)
	}
	for _, v := range state.TPs {
		ids = append(ids, v.ID, v.ClassID)
	}
	for _, v := range state.Assessments {
		ids = append(ids, v.ID, v.StudentID, v.TPID)
	}
	for _, v := range state.CategoryResults {
		ids = append(ids, v.ID, v.StudentID)
	}
	for _, v := range state.P5Criteria {
		ids = append(ids, v.ID, v.ClassID)
	}
	for _, v := range state.P5Assessments {
		ids = append(ids, v.ID, v.StudentID, v.CriteriaID)
	}
	for _, v := range state.Reflections {
		ids = append(ids, v.ID, v.StudentID)
	}
	for _, v := range state.Notes {
		ids = append(ids, v.ID, v.StudentID)
	}
	for _, v := range state.Attendance {
		ids = append(ids, v.ID, v.StudentID)
	}
	if len(ids) != 21 {
		t.Fatalf("期望 21 个标识字段，实际: %d", len(ids))
	}
	for _, id := range ids {
		if id == "" || id != id.Normalize() {
			t.Errorf("标识应为非空且规范化的字符串，实际: %q", id)
		}
	}
}

// ── 远端写入 ──

func TestSyncService_Online_OperationsReachRemote(t *testing.T) {
	env := newTestEnv(true)
	s := env.startedSync(t, nil)
	ctx := context.Background()

	class, _ := s.AddClass(ctx, model.ClassData{Name: "A"})
	flush(t, s)
	class.Name = "A1"
	if _, err := s.UpdateClass(ctx, class); err != nil {
		t.Fatalf("UpdateClass: %v", err)
	}
	flush(t, s)
	if _, err := s.SetSettings(ctx, model.DefaultSettings(time.Now())); err != nil {
		t.Fatalf("SetSettings: %v", err)
	}
	flush(t, s)
	s.DeleteClass(ctx, class.ID)
	flush(t, s)

	want := []remoteCall{
		{op: "insert", collection: model.CollectionClasses, id: class.ID},
		{op: "update", collection: model.CollectionClasses, id: class.ID},
		{op: "upsert", collection: model.CollectionSettings, id: model.SettingsRowID},
		{op: "remove", collection: model.CollectionClasses, id: class.ID},
	}
	if got := env.remote.recorded(); !reflect.DeepEqual(got, want) {
		t.Errorf("远端调用不符\n期望: %+v\n实际: %+v", want, got)
	}
}

func TestSyncService_UpdateUnknownID(t *testing.T) {
	env := newTestEnv(true)
	s := env.startedSync(t, nil)

	_, err := s.UpdateStudent(context.Background(), model.Student{ID: "ghost", Name: "X"})
	if !errors.Is(err, ErrEntityNotFound) {
		t.Errorf("期望 ErrEntityNotFound，实际: %v", err)
	}
	flush(t, s)
	if calls := env.remote.recorded(); len(calls) != 0 {
		t.Errorf("更新不存在的记录不应调用远端，实际: %+v", calls)
	}
}

func TestSyncService_DuplicateIDRejected(t *testing.T) {
	env := newTestEnv(true)
	s := env.startedSync(t, nil)
	ctx := context.Background()

	if _, err := s.AddClass(ctx, model.ClassData{ID: "c1", Name: "A"}); err != nil {
		t.Fatalf("AddClass: %v", err)
	}
	if _, err := s.AddClass(ctx, model.ClassData{ID: " c1 ", Name: "B"}); !errors.Is(err, ErrEntityExists) {
		t.Errorf("重复 ID 期望 ErrEntityExists，实际: %v", err)
	}

	// 自然键不同但 ID 相同的 upsert 走插入分支，同样拒绝
	if _, err := s.UpsertAssessment(ctx, model.Assessment{ID: "a1", StudentID: "s1", TPID: "o1", Score: model.LevelCakap}); err != nil {
		t.Fatalf("UpsertAssessment: %v", err)
	}
	if _, err := s.UpsertAssessment(ctx, model.Assessment{ID: "a1", StudentID: "s2", TPID: "o1", Score: model.LevelMahir}); !errors.Is(err, ErrEntityExists) {
		t.Errorf("upsert 重复 ID 期望 ErrEntityExists，实际: %v", err)
	}
	flush(t, s)

	state, _ := s.State()
	if len(state.Classes) != 1 || state.Classes[0].Name != "A" {
		t.Errorf("班级不应被重复添加: %+v", state.Classes)
	}
	if len(state.Assessments) != 1 || state.Assessments[0].StudentID != "s1" {
		t.Errorf("评估不应被重复添加: %+v", state.Assessments)
	}
	if calls := env.remote.recorded(); len(calls) != 2 {
		t.Errorf("被拒绝的写入不应调用远端，实际: %+v", calls)
	}
}

func TestSyncService_DeleteUnknownID_StillRemovesRemotely(t *testing.T) {
	env := newTestEnv(true)
	s := env.startedSync(t, nil)

	if err := s.DeleteTP(context.Background(), " tp-9 "); err != nil {
		t.Fatalf("DeleteTP: %v", err)
	}
	flush(t, s)

	calls := env.remote.recorded()
	if len(calls) != 1 || calls[0].op != "remove" || calls[0].id != "tp-9" || calls[0].collection != model.CollectionTPs {
		t.Errorf("期望远端删除 tp-9，实际: %+v", calls)
	}
}

func TestSyncService_UpsertAssessment_SingleRecord(t *testing.T) {
	env := newTestEnv(true)
	s := env.startedSync(t, nil)
	ctx := context.Background()

	first, _ := s.UpsertAssessment(ctx, model.Assessment{StudentID: "s1", TPID: "o1", Score: model.LevelBerkembang})
	flush(t, s)
	second, err := s.UpsertAssessment(ctx, model.Assessment{StudentID: "s1", TPID: "o1", Score: model.LevelMahir})
	if err != nil {
		t.Fatalf("UpsertAssessment: %v", err)
	}
	flush(t, s)

	if second.ID != first.ID {
		t.Errorf("命中自然键时应沿用原 ID: first=%q second=%q", first.ID, second.ID)
	}

	state, _ := s.State()
	if len(state.Assessments) != 1 {
		t.Fatalf("期望 1 条评分，实际: %d", len(state.Assessments))
	}
	if state.Assessments[0].Score != model.LevelMahir {
		t.Errorf("期望分数更新为 3，实际: %d", state.Assessments[0].Score)
	}

	calls := env.remote.recorded()
	if len(calls) != 2 || calls[0].op != "insert" || calls[1].op != "update" || calls[1].id != first.ID {
		t.Errorf("期望先 insert 后按原 ID update，实际: %+v", calls)
	}
}

func TestSyncService_UpsertNoteAndAttendance_OnePerStudent(t *testing.T) {
	env := newTestEnv(false)
	s := env.startedSync(t, nil)
	ctx := context.Background()

	s.UpsertNote(ctx, model.StudentNote{StudentID: "s1", Note: "a"})
	s.UpsertNote(ctx, model.StudentNote{StudentID: "s1", Note: "b"})
	s.UpsertNote(ctx, model.StudentNote{StudentID: "s2", Note: "c"})
	s.UpsertAttendance(ctx, model.AttendanceData{StudentID: "s1", Sick: 1})
	s.UpsertAttendance(ctx, model.AttendanceData{StudentID: "s1", Sick: 2, Alpha: 1})

	state, _ := s.State()
	if len(state.Notes) != 2 {
		t.Errorf("期望 2 条成长记录，实际: %d", len(state.Notes))
	}
	if len(state.Attendance) != 1 || state.Attendance[0].Sick != 2 || state.Attendance[0].Alpha != 1 {
		t.Errorf("出勤应被覆盖更新，实际: %+v", state.Attendance)
	}
}

// ── 远端失败 ──

func TestSyncService_OptimisticWriteSurvivesRemoteFailure(t *testing.T) {
	env := newTestEnv(true)
	env.remote.setFailure("connection refused")
	s := env.startedSync(t, nil)

	var (
		mu       sync.Mutex
		notified []model.SyncFailure
	)
	s.SetNotifier(func(f model.SyncFailure) {
		mu.Lock()
		notified = append(notified, f)
		mu.Unlock()
	})

	st, err := s.AddStudent(context.Background(), model.Student{Name: "Sari"})
	if err != nil {
		t.Fatalf("远端失败不应使操作返回错误: %v", err)
	}
	flush(t, s)

	state, _ := s.State()
	if _, ok := state.FindStudent(st.ID); !ok {
		t.Error("远端失败后本地状态应保留新学生")
	}
	snap, _, _ := env.repo.Snapshot.Load(context.Background())
	if _, ok := snap.FindStudent(st.ID); !ok {
		t.Error("远端失败后本地快照应保留新学生")
	}

	failures := s.Failures()
	if len(failures) != 1 {
		t.Fatalf("期望 1 条失败记录，实际: %d", len(failures))
	}
	f := failures[0]
	if f.Collection != model.CollectionStudents || f.EntityID != st.ID || f.Message != "connection refused" {
		t.Errorf("失败记录不符: %+v", f)
	}
	want := "Gagal menyimpan ke Database: connection refused (Collection: students, ID: " + string(st.ID) + ")"
	if f.UserMessage() != want {
		t.Errorf("提示文字不符\n期望: %s\n实际: %s", want, f.UserMessage())
	}

	mu.Lock()
	defer mu.Unlock()
	if len(notified) != 1 {
		t.Errorf("期望通知 1 次，实际: %d", len(notified))
	}
	if got := s.Status().FailureCount; got != 1 {
		t.Errorf("Status.FailureCount 期望 1，实际: %d", got)
	}
}

func TestSyncService_FailureHistoryBounded(t *testing.T) {
	env := newTestEnv(true)
	env.remote.setFailure("boom")
	s := env.startedSync(t, nil)

	for i := 0; i < 12; i++ {
		s.AddReflection(context.Background(), model.Reflection{StudentID: "s1", Question: "q"})
	}
	flush(t, s)

	if got := len(s.Failures()); got != env.cfg.Sync.FailureHistory {
		t.Errorf("失败记录应限制为 %d 条，实际: %d", env.cfg.Sync.FailureHistory, got)
	}
}

func TestSyncService_RollbackPolicy(t *testing.T) {
	env := newTestEnv(true)
	s := env.startedSync(t, rollbackPolicy{})
	ctx := context.Background()

	kept, _ := s.AddClass(ctx, model.ClassData{Name: "Asli"})
	flush(t, s)

	env.remote.setFailure("permission denied")

	// 1. 更新失败：恢复旧值
	changed := kept
	changed.Name = "Diubah"
	s.UpdateClass(ctx, changed)
	flush(t, s)
	state, _ := s.State()
	if c, _ := state.FindClass(kept.ID); c.Name != "Asli" {
		t.Errorf("更新失败后应恢复旧值，实际: %q", c.Name)
	}

	// 2. 新增失败：移除
	added, _ := s.AddClass(ctx, model.ClassData{Name: "Baru"})
	flush(t, s)
	state, _ = s.State()
	if _, ok := state.FindClass(added.ID); ok {
		t.Error("新增失败后应移除")
	}

	// 3. 删除失败：恢复
	s.DeleteClass(ctx, kept.ID)
	flush(t, s)
	state, _ = s.State()
	if _, ok := state.FindClass(kept.ID); !ok {
		t.Error("删除失败后应恢复")
	}

	// 4. 设置失败：恢复旧设置
	before := state.Settings
	next := before
	next.Name = "TK Lain"
	s.SetSettings(ctx, next)
	flush(t, s)
	state, _ = s.State()
	if state.Settings != before {
		t.Errorf("设置写入失败后应恢复，实际: %q", state.Settings.Name)
	}

	snap, _, _ := env.repo.Snapshot.Load(ctx)
	if len(snap.Classes) != 1 || snap.Classes[0].Name != "Asli" {
		t.Errorf("撤销后应写入快照，实际: %+v", snap.Classes)
	}
	if len(s.Failures()) != 4 {
		t.Errorf("期望 4 条失败记录，实际: %d", len(s.Failures()))
	}
}

func TestSyncService_FlushWaitsForInFlight(t *testing.T) {
	env := newTestEnv(true)
	s := env.startedSync(t, nil)
	env.remote.block = make(chan struct{})

	s.AddClass(context.Background(), model.ClassData{Name: "A"})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := s.Flush(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("远端阻塞时 Flush 应超时，实际: %v", err)
	}
	if got := s.Status().InFlight; got != 1 {
		t.Errorf("期望 1 个在途写入，实际: %d", got)
	}

	close(env.remote.block)
	flush(t, s)
	if got := s.Status().InFlight; got != 0 {
		t.Errorf("期望 0 个在途写入，实际: %d", got)
	}
}

func TestSyncService_Close(t *testing.T) {
	env := newTestEnv(true)
	s := env.newSync(nil)
	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	s.AddClass(ctx, model.ClassData{Name: "A"})

	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(env.remote.recorded()) != 1 {
		t.Error("Close 应等待在途写入完成")
	}
	if !env.remote.closed {
		t.Error("Close 应关闭远端连接")
	}
	if _, err := s.AddClass(ctx, model.ClassData{Name: "B"}); !errors.Is(err, pkgerrors.ErrNotInitialized) {
		t.Errorf("关闭后修改应返回 ErrNotInitialized，实际: %v", err)
	}
	if err := s.Close(ctx); err != nil {
		t.Errorf("重复 Close 应无副作用，实际: %v", err)
	}
}

// ── 快照 ──

func TestSyncService_SnapshotIdempotentAndRoundTrip(t *testing.T) {
	env := newTestEnv(false)
	s := env.startedSync(t, nil)
	ctx := context.Background()

	class, _ := s.AddClass(ctx, model.ClassData{Name: "A", TeacherName: "X", NUPTK: "998"})
	st, _ := s.AddStudent(ctx, model.Student{Name: "Y", ClassID: class.ID, Height: 101.5, ChildOrder: 2})
	s.UpsertAttendance(ctx, model.AttendanceData{StudentID: st.ID, Permission: 3})

	state, _ := s.State()
	first, err := env.repo.Snapshot.Encode(state)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := env.repo.Snapshot.Encode(state)
	if !bytes.Equal(first, second) {
		t.Error("相同状态两次序列化结果应完全一致")
	}

	loaded, ok, err := env.repo.Snapshot.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(loaded, state) {
		t.Errorf("快照往返应得到相同状态\n期望: %+v\n实际: %+v", state, loaded)
	}
}

// ── 连接配置 ──

func TestSyncService_SaveAndClearStoreConfig(t *testing.T) {
	env := newTestEnv(false)
	s := env.startedSync(t, nil)
	ctx := context.Background()

	if err := s.SaveStoreConfig(ctx, " postgres://postgres@db.example.test/rapor ", " k1 "); err != nil {
		t.Fatalf("SaveStoreConfig: %v", err)
	}
	if !s.IsOnline() {
		t.Fatal("保存连接信息后应进入在线模式")
	}
	if v, _, _ := env.local.Get(ctx, repository.KeyStoreKey); v != "k1" {
		t.Errorf("密钥应去除空白后保存，实际: %q", v)
	}
	url, keySet, locked := s.StoreConfig()
	if url != "postgres://postgres@db.example.test/rapor" || !keySet || locked {
		t.Errorf("StoreConfig 不符: url=%q keySet=%v locked=%v", url, keySet, locked)
	}

	s.AddClass(ctx, model.ClassData{Name: "A"})
	flush(t, s)
	if env.dialCount() != 1 || len(env.remote.recorded()) != 1 {
		t.Errorf("在线后修改应拨号并写远端: dials=%d calls=%d", env.dialCount(), len(env.remote.recorded()))
	}

	if err := s.ClearStoreConfig(ctx); err != nil {
		t.Fatalf("ClearStoreConfig: %v", err)
	}
	if s.IsOnline() {
		t.Error("清除连接信息后应回到离线模式")
	}
	if !env.remote.closed {
		t.Error("清除连接信息应关闭现有连接")
	}
}

func TestSyncService_SaveStoreConfig_Locked(t *testing.T) {
	env := newTestEnv(true)
	s := env.startedSync(t, nil)

	err := s.SaveStoreConfig(context.Background(), "postgres://other/db", "k")
	if !errors.Is(err, pkgerrors.ErrConfigLocked) {
		t.Errorf("期望 ErrConfigLocked，实际: %v", err)
	}
	if _, ok, _ := env.local.Get(context.Background(), repository.KeyStoreURL); ok {
		t.Error("配置锁定时不应写入本地")
	}
}

func TestSyncService_StartUsesSavedCredentials(t *testing.T) {
	env := newTestEnv(false)
	env.local.values[repository.KeyStoreURL] = "postgres://postgres@saved/rapor"
	env.local.values[repository.KeyStoreKey] = "saved-key"
	env.remote.state.Classes = []model.ClassData{{ID: "c1", Name: "Remote"}}

	s := env.startedSync(t, nil)

	if !s.IsOnline() {
		t.Fatal("本地保存了完整连接信息时应为在线模式")
	}
	state, _ := s.State()
	if len(state.Classes) != 1 || state.Classes[0].Name != "Remote" {
		t.Errorf("应采用远端数据，实际: %+v", state.Classes)
	}
}

// ── 刷新 ──

func TestSyncService_RefreshData(t *testing.T) {
	t.Run("离线不刷新", func(t *testing.T) {
		env := newTestEnv(false)
		s := env.startedSync(t, nil)
		adopted, err := s.RefreshData(context.Background())
		if adopted || err != nil {
			t.Errorf("期望 (false, nil)，实际: (%v, %v)", adopted, err)
		}
	})

	t.Run("采用远端数据", func(t *testing.T) {
		env := newTestEnv(true)
		s := env.startedSync(t, nil)
		env.remote.mu.Lock()
		env.remote.state.TPs = []model.LearningObjective{{ID: "tp1", Description: "D"}}
		env.remote.mu.Unlock()

		adopted, err := s.RefreshData(context.Background())
		if !adopted || err != nil {
			t.Fatalf("期望 (true, nil)，实际: (%v, %v)", adopted, err)
		}
		state, _ := s.State()
		if len(state.TPs) != 1 {
			t.Errorf("刷新后应包含远端学习目标，实际: %d", len(state.TPs))
		}
	})

	t.Run("远端失败保留本地", func(t *testing.T) {
		env := newTestEnv(true)
		s := env.startedSync(t, nil)
		s.AddClass(context.Background(), model.ClassData{Name: "Lokal"})
		flush(t, s)
		env.remote.mu.Lock()
		env.remote.fetchErr = errors.New("network down")
		env.remote.mu.Unlock()

		adopted, err := s.RefreshData(context.Background())
		if adopted || !errors.Is(err, pkgerrors.ErrRemoteUnavailable) {
			t.Errorf("期望 ErrRemoteUnavailable，实际: (%v, %v)", adopted, err)
		}
		state, _ := s.State()
		if len(state.Classes) != 1 {
			t.Error("刷新失败不应改变本地状态")
		}
	})
}

// ── 场景 ──

func TestSyncService_Scenario(t *testing.T) {
	env := newTestEnv(false)
	s := env.startedSync(t, nil)
	ctx := context.Background()

	class, _ := s.AddClass(ctx, model.ClassData{Name: "Group A", TeacherName: "X"})
	st, _ := s.AddStudent(ctx, model.Student{Name: "Y", ClassID: class.ID})
	tp, _ := s.AddTP(ctx, model.LearningObjective{ClassID: class.ID, Category: "cat1", Description: "D", Activity: "A"})
	s.UpsertAssessment(ctx, model.Assessment{StudentID: st.ID, TPID: tp.ID, Score: model.LevelMahir})

	state, _ := s.State()
	if len(state.Classes) != 1 || len(state.Students) != 1 || len(state.TPs) != 1 || len(state.Assessments) != 1 {
		t.Fatalf("集合数量不符: classes=%d students=%d tps=%d assessments=%d",
			len(state.Classes), len(state.Students), len(state.TPs), len(state.Assessments))
	}
	if state.Students[0].ClassID != state.Classes[0].ID {
		t.Errorf("学生 classId 应与班级 ID 一致: %q != %q", state.Students[0].ClassID, state.Classes[0].ID)
	}
	if a := state.Assessments[0]; a.Score != model.LevelMahir || a.StudentID != st.ID || a.TPID != tp.ID {
		t.Errorf("评分不符: %+v", a)
	}
}
