package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"rapor-paud/backend/config"
	"rapor-paud/backend/internal/model"
	"rapor-paud/backend/internal/repository"
)

// ── Mock LocalStore ──

type mockLocalStore struct {
	mu     sync.Mutex
	values map[string]string
	sets   int
}

func newMockLocalStore() *mockLocalStore {
	return &mockLocalStore{values: make(map[string]string)}
}

func (m *mockLocalStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mockLocalStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.sets++
	return nil
}

func (m *mockLocalStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *mockLocalStore) Close() error { return nil }

// ── Mock RemoteStore ──

type remoteCall struct {
	op         string // insert | update | upsert | remove
	collection model.Collection
	id         model.ID
}

type mockRemoteStore struct {
	mu       sync.Mutex
	state    *model.AppState // FetchAll 返回值
	fetchErr error
	failWith string        // 非空时所有写操作失败
	block    chan struct{} // 非 nil 时写操作等待其关闭
	calls    []remoteCall
	closed   bool
}

func newMockRemoteStore() *mockRemoteStore {
	return &mockRemoteStore{state: model.NewAppState(time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC))}
}

func (m *mockRemoteStore) FetchAll(_ context.Context) (*model.AppState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.state.Clone(), nil
}

func (m *mockRemoteStore) write(ctx context.Context, op string, c model.Collection, id model.ID) repository.Result {
	m.mu.Lock()
	block := m.block
	m.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return repository.Failure(ctx.Err().Error())
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, remoteCall{op: op, collection: c, id: id})
	if m.failWith != "" {
		return repository.Failure(m.failWith)
	}
	return repository.Success()
}

func (m *mockRemoteStore) Insert(ctx context.Context, c model.Collection, entity interface{}) repository.Result {
	return m.write(ctx, "insert", c, entityIDOf(entity))
}

func (m *mockRemoteStore) Update(ctx context.Context, c model.Collection, entity interface{}) repository.Result {
	return m.write(ctx, "update", c, entityIDOf(entity))
}

func (m *mockRemoteStore) Upsert(ctx context.Context, c model.Collection, entity interface{}) repository.Result {
	return m.write(ctx, "upsert", c, model.SettingsRowID)
}

func (m *mockRemoteStore) Remove(ctx context.Context, c model.Collection, id model.ID) repository.Result {
	return m.write(ctx, "remove", c, id)
}

func (m *mockRemoteStore) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func (m *mockRemoteStore) setFailure(msg string) {
	m.mu.Lock()
	m.failWith = msg
	m.mu.Unlock()
}

func (m *mockRemoteStore) recorded() []remoteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]remoteCall(nil), m.calls...)
}

func entityIDOf(entity interface{}) model.ID {
	if e, ok := entity.(interface{ EntityID() model.ID }); ok {
		return e.EntityID()
	}
	return ""
}

// ── 测试装配 ──

// testEnv 同步核心及其依赖
type testEnv struct {
	cfg    *config.Config
	local  *mockLocalStore
	remote *mockRemoteStore
	repo   *repository.Repository
	dials  int
	dialMu sync.Mutex
}

func newTestConfig(online bool) *config.Config {
	cfg := &config.Config{
		Store: config.StoreConfig{Timeout: 2 * time.Second},
		Local: config.LocalConfig{SnapshotKey: "raporPaudData"},
		Sync:  config.SyncConfig{WritePolicy: PolicyOptimistic, ConfirmQueueSize: 4, FailureHistory: 10},
	}
	if online {
		cfg.Store.URL = "postgres://postgres@db.example.test:5432/rapor"
		cfg.Store.Key = "secret"
	}
	return cfg
}

func newTestEnv(online bool) *testEnv {
	env := &testEnv{
		cfg:    newTestConfig(online),
		local:  newMockLocalStore(),
		remote: newMockRemoteStore(),
	}
	env.repo = repository.NewRepository(env.local, env.cfg.Local.SnapshotKey,
		func(_ context.Context, endpoint, key string) (repository.RemoteStore, error) {
			env.dialMu.Lock()
			env.dials++
			env.dialMu.Unlock()
			if endpoint == "" || key == "" {
				return nil, errors.New("missing credentials")
			}
			return env.remote, nil
		})
	return env
}

func (e *testEnv) dialCount() int {
	e.dialMu.Lock()
	defer e.dialMu.Unlock()
	return e.dials
}

// newSync 创建同步核心；ID 生成器按序产生 id-1, id-2...
func (e *testEnv) newSync(policy WritePolicy) *syncService {
	s := newSyncService(e.cfg, e.repo, policy, zap.NewNop())
	s.now = func() time.Time { return time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC) }
	var mu sync.Mutex
	n := 0
	s.newID = func() model.ID {
		mu.Lock()
		defer mu.Unlock()
		n++
		return model.ID("id-" + strconv.Itoa(n))
	}
	return s
}

// startedSync 创建并启动同步核心
func (e *testEnv) startedSync(t *testing.T, policy WritePolicy) *syncService {
	t.Helper()
	s := e.newSync(policy)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func flush(t *testing.T, s SyncService) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}
