package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rapor-paud/backend/config"
	"rapor-paud/backend/internal/dto"
	"rapor-paud/backend/internal/model"
	"rapor-paud/backend/internal/repository"
	pkgerrors "rapor-paud/backend/pkg/errors"
)

// ── 同步核心业务错误 ──

var (
	ErrEntityNotFound = errors.New("记录不存在")
	ErrEntityExists   = errors.New("记录 ID 已存在")
)

// FailureNotifier 远端写入失败回调（在后台 goroutine 中调用）
type FailureNotifier func(model.SyncFailure)

// SyncService 状态同步核心：AppState 的唯一持有者
//
// 所有修改先同步作用于内存状态并写入本地快照，随后在线时异步写远端；
// 方法返回时本地修改已提交，远端结果通过 Failures / 通知回调获知。
type SyncService interface {
	Start(ctx context.Context) error
	// RefreshData 重新执行全量读取；adopted 表示是否采用了远端数据
	RefreshData(ctx context.Context) (adopted bool, err error)
	State() (*model.AppState, error)
	Status() dto.SyncStatusResponse
	IsOnline() bool
	Failures() []model.SyncFailure
	SetNotifier(fn FailureNotifier)
	// Flush 等待当前所有远端写入结束
	Flush(ctx context.Context) error
	Close(ctx context.Context) error

	SaveStoreConfig(ctx context.Context, url, key string) error
	ClearStoreConfig(ctx context.Context) error
	StoreConfig() (url string, keySet, locked bool)

	AddClass(ctx context.Context, c model.ClassData) (model.ClassData, error)
	UpdateClass(ctx context.Context, c model.ClassData) (model.ClassData, error)
	DeleteClass(ctx context.Context, id model.ID) error

	AddStudent(ctx context.Context, st model.Student) (model.Student, error)
	UpdateStudent(ctx context.Context, st model.Student) (model.Student, error)
	DeleteStudent(ctx context.Context, id model.ID) error

	AddTP(ctx context.Context, tp model.LearningObjective) (model.LearningObjective, error)
	UpdateTP(ctx context.Context, tp model.LearningObjective) (model.LearningObjective, error)
	DeleteTP(ctx context.Context, id model.ID) error

	UpsertAssessment(ctx context.Context, a model.Assessment) (model.Assessment, error)
	UpsertCategoryResult(ctx context.Context, r model.CategoryResult) (model.CategoryResult, error)

	SetSettings(ctx context.Context, s model.SchoolSettings) (model.SchoolSettings, error)

	AddP5Criteria(ctx context.Context, c model.P5Criteria) (model.P5Criteria, error)
	UpdateP5Criteria(ctx context.Context, c model.P5Criteria) (model.P5Criteria, error)
	DeleteP5Criteria(ctx context.Context, id model.ID) error
	UpsertP5Assessment(ctx context.Context, a model.P5Assessment) (model.P5Assessment, error)

	AddReflection(ctx context.Context, r model.Reflection) (model.Reflection, error)
	UpdateReflection(ctx context.Context, r model.Reflection) (model.Reflection, error)
	DeleteReflection(ctx context.Context, id model.ID) error

	UpsertNote(ctx context.Context, n model.StudentNote) (model.StudentNote, error)
	UpsertAttendance(ctx context.Context, a model.AttendanceData) (model.AttendanceData, error)
}

type storeCredentials struct {
	url string
	key string
}

func (c storeCredentials) complete() bool { return c.url != "" && c.key != "" }

type syncService struct {
	cfg    *config.Config
	repo   *repository.Repository
	policy WritePolicy
	logger *zap.Logger
	now    func() time.Time
	newID  func() model.ID

	// mu 保护 state / started；本地修改与快照写入在同一临界区内完成，保证顺序
	mu      sync.Mutex
	state   *model.AppState
	started bool

	loading atomic.Bool

	credMu sync.RWMutex
	creds  storeCredentials

	// remoteMu 只保护远端连接本身，拨号期间不阻塞本地修改
	remoteMu sync.Mutex
	remote   repository.RemoteStore

	inflight *inflightTracker

	failMu   sync.Mutex
	failures []model.SyncFailure
	notifier FailureNotifier

	baseCtx context.Context
	cancel  context.CancelFunc
}

// NewSyncService 创建 SyncService 实例
func NewSyncService(cfg *config.Config, repo *repository.Repository, policy WritePolicy, logger *zap.Logger) SyncService {
	return newSyncService(cfg, repo, policy, logger)
}

func newSyncService(cfg *config.Config, repo *repository.Repository, policy WritePolicy, logger *zap.Logger) *syncService {
	if policy == nil {
		policy = optimisticPolicy{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &syncService{
		cfg:      cfg,
		repo:     repo,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
		newID:    func() model.ID { return model.ID(uuid.NewString()) },
		inflight: newInflightTracker(),
		baseCtx:  ctx,
		cancel:   cancel,
	}
}

// ═══════════════════════════════════════════════════════════
// 启动与刷新
// ═══════════════════════════════════════════════════════════
//
// 在线判定只看连接信息是否齐全，不做网络探测。
// 在线时读取远端；远端读取失败则回退到本地快照，再无快照时使用零值状态。

func (s *syncService) Start(ctx context.Context) error {
	creds, err := s.resolveCredentials(ctx)
	if err != nil {
		s.logger.Warn("读取本地连接配置失败", zap.Error(err))
	}
	s.credMu.Lock()
	s.creds = creds
	s.credMu.Unlock()

	state := s.loadInitial(ctx)

	s.mu.Lock()
	s.state = state
	s.started = true
	s.persistLocked()
	s.mu.Unlock()

	s.logger.Info("同步核心已启动",
		zap.Bool("online", s.IsOnline()),
		zap.String("write_policy", s.policy.Name()),
		zap.Int("students", len(state.Students)),
	)
	return nil
}

func (s *syncService) loadInitial(ctx context.Context) *model.AppState {
	if s.IsOnline() {
		state, err := s.fetchRemote(ctx)
		if err == nil {
			return state
		}
		s.logger.Warn("远端全量读取失败，回退到本地快照", zap.Error(err))
	}

	snap, ok, err := s.repo.Snapshot.Load(ctx)
	if err != nil {
		s.logger.Warn("读取本地快照失败", zap.Error(err))
	}
	if ok {
		return snap
	}
	return model.NewAppState(s.now())
}

func (s *syncService) fetchRemote(ctx context.Context) (*model.AppState, error) {
	s.loading.Store(true)
	defer s.loading.Store(false)

	remote, err := s.remoteStore(ctx)
	if err != nil {
		return nil, err
	}
	state, err := remote.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	state.NormalizeIDs()
	return state, nil
}

func (s *syncService) RefreshData(ctx context.Context) (bool, error) {
	if !s.isStarted() {
		return false, pkgerrors.ErrNotInitialized
	}
	if !s.IsOnline() {
		return false, nil
	}

	state, err := s.fetchRemote(ctx)
	if err != nil {
		s.logger.Warn("刷新远端数据失败", zap.Error(err))
		return false, fmt.Errorf("%w: %v", pkgerrors.ErrRemoteUnavailable, err)
	}

	s.mu.Lock()
	s.state = state
	s.persistLocked()
	s.mu.Unlock()
	return true, nil
}

// ═══════════════════════════════════════════════════════════
// 读取
// ═══════════════════════════════════════════════════════════

func (s *syncService) State() (*model.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil, pkgerrors.ErrNotInitialized
	}
	return s.state.Clone(), nil
}

func (s *syncService) Status() dto.SyncStatusResponse {
	s.failMu.Lock()
	failures := len(s.failures)
	s.failMu.Unlock()

	return dto.SyncStatusResponse{
		IsLoading:    s.loading.Load(),
		IsOnline:     s.IsOnline(),
		WritePolicy:  s.policy.Name(),
		InFlight:     s.inflight.count(),
		FailureCount: failures,
	}
}

func (s *syncService) IsOnline() bool {
	s.credMu.RLock()
	defer s.credMu.RUnlock()
	return s.creds.complete() && s.repo.Dial != nil
}

func (s *syncService) isStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

func (s *syncService) Failures() []model.SyncFailure {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	return append([]model.SyncFailure(nil), s.failures...)
}

func (s *syncService) SetNotifier(fn FailureNotifier) {
	s.failMu.Lock()
	s.notifier = fn
	s.failMu.Unlock()
}

func (s *syncService) recordFailure(f model.SyncFailure) {
	limit := s.cfg.Sync.FailureHistory
	if limit <= 0 {
		limit = 50
	}

	s.failMu.Lock()
	s.failures = append(s.failures, f)
	if len(s.failures) > limit {
		s.failures = append([]model.SyncFailure(nil), s.failures[len(s.failures)-limit:]...)
	}
	notify := s.notifier
	s.failMu.Unlock()

	if notify != nil {
		notify(f)
	}
}

// ═══════════════════════════════════════════════════════════
// 修改协议
// ═══════════════════════════════════════════════════════════

// remoteOp 对远端执行的一次写操作
type remoteOp func(ctx context.Context, r repository.RemoteStore) repository.Result

// mutation 一次本地修改产生的远端操作与实体级撤销
type mutation struct {
	id     model.ID
	remote remoteOp
	undo   func(*model.AppState)
}

// mutate 在临界区内应用本地修改并写快照；在线时登记并派发远端写入
func (s *syncService) mutate(c model.Collection, apply func(*model.AppState) (mutation, error)) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return pkgerrors.ErrNotInitialized
	}
	m, err := apply(s.state)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.persistLocked()

	dispatch := m.remote != nil && s.IsOnline()
	if dispatch {
		s.inflight.add()
	}
	s.mu.Unlock()

	if dispatch {
		go s.confirmRemote(c, m)
	}
	return nil
}

// confirmRemote 执行远端写入；失败时记录通知，并按策略决定是否撤销
func (s *syncService) confirmRemote(c model.Collection, m mutation) {
	defer s.inflight.done()

	res := s.runRemote(m.remote)
	if res.OK() {
		s.logger.Debug("远端已保存", zap.String("collection", string(c)), zap.String("id", m.id.String()))
		return
	}

	f := model.SyncFailure{Collection: c, EntityID: m.id, Message: res.Message, At: s.now()}
	s.logger.Error("远端写入失败",
		zap.String("collection", string(c)),
		zap.String("id", m.id.String()),
		zap.String("message", res.Message),
	)

	if s.policy.RollbackOnFailure(f) && m.undo != nil {
		s.mu.Lock()
		m.undo(s.state)
		s.persistLocked()
		s.mu.Unlock()
		s.logger.Info("已撤销本地修改", zap.String("collection", string(c)), zap.String("id", m.id.String()))
	}
	s.recordFailure(f)
}

func (s *syncService) runRemote(op remoteOp) (res repository.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = repository.Failure(fmt.Sprint(r))
		}
	}()

	ctx := s.baseCtx
	if t := s.cfg.Store.Timeout; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}

	remote, err := s.remoteStore(ctx)
	if err != nil {
		return repository.Failure(err.Error())
	}
	return op(ctx, remote)
}

// persistLocked 写入完整快照；调用方必须持有 mu
func (s *syncService) persistLocked() {
	if s.state == nil {
		return
	}
	if err := s.repo.Snapshot.Save(s.baseCtx, s.state); err != nil {
		s.logger.Error("写入本地快照失败", zap.Error(err))
	}
}

// ═══════════════════════════════════════════════════════════
// 远端连接
// ═══════════════════════════════════════════════════════════

// resolveCredentials 配置值优先，缺失的项再读取用户保存在本地的值
func (s *syncService) resolveCredentials(ctx context.Context) (storeCredentials, error) {
	c := storeCredentials{url: strings.TrimSpace(s.cfg.Store.URL), key: strings.TrimSpace(s.cfg.Store.Key)}
	if c.complete() || s.repo.Local == nil {
		return c, nil
	}

	if c.url == "" {
		v, ok, err := s.repo.Local.Get(ctx, repository.KeyStoreURL)
		if err != nil {
			return c, err
		}
		if ok {
			c.url = strings.TrimSpace(v)
		}
	}
	if c.key == "" {
		v, ok, err := s.repo.Local.Get(ctx, repository.KeyStoreKey)
		if err != nil {
			return c, err
		}
		if ok {
			c.key = strings.TrimSpace(v)
		}
	}
	return c, nil
}

// remoteStore 首次使用时拨号；拨号失败不缓存，下次重试
func (s *syncService) remoteStore(ctx context.Context) (repository.RemoteStore, error) {
	s.remoteMu.Lock()
	defer s.remoteMu.Unlock()

	if s.remote != nil {
		return s.remote, nil
	}

	s.credMu.RLock()
	creds := s.creds
	s.credMu.RUnlock()
	if !creds.complete() || s.repo.Dial == nil {
		return nil, pkgerrors.ErrRemoteUnavailable
	}

	r, err := s.repo.Dial(ctx, creds.url, creds.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrRemoteUnavailable, err)
	}
	s.remote = r
	return r, nil
}

// resetRemote 更新连接信息并丢弃现有连接
func (s *syncService) resetRemote(creds storeCredentials) {
	s.remoteMu.Lock()
	old := s.remote
	s.remote = nil
	s.credMu.Lock()
	s.creds = creds
	s.credMu.Unlock()
	s.remoteMu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			s.logger.Warn("关闭远端连接失败", zap.Error(err))
		}
	}
}

func (s *syncService) SaveStoreConfig(ctx context.Context, url, key string) error {
	if s.cfg.Store.Locked() {
		return pkgerrors.ErrConfigLocked
	}
	url, key = strings.TrimSpace(url), strings.TrimSpace(key)
	if err := s.repo.Local.Set(ctx, repository.KeyStoreURL, url); err != nil {
		return err
	}
	if err := s.repo.Local.Set(ctx, repository.KeyStoreKey, key); err != nil {
		return err
	}

	creds, err := s.resolveCredentials(ctx)
	if err != nil {
		return err
	}
	s.resetRemote(creds)
	s.logger.Info("已保存远端连接配置", zap.Bool("online", s.IsOnline()))
	return nil
}

func (s *syncService) ClearStoreConfig(ctx context.Context) error {
	if err := s.repo.Local.Delete(ctx, repository.KeyStoreURL); err != nil {
		return err
	}
	if err := s.repo.Local.Delete(ctx, repository.KeyStoreKey); err != nil {
		return err
	}

	creds, err := s.resolveCredentials(ctx)
	if err != nil {
		return err
	}
	s.resetRemote(creds)
	s.logger.Info("已清除本地保存的远端连接配置", zap.Bool("online", s.IsOnline()))
	return nil
}

func (s *syncService) StoreConfig() (string, bool, bool) {
	s.credMu.RLock()
	defer s.credMu.RUnlock()
	return s.creds.url, s.creds.key != "", s.cfg.Store.Locked()
}

// ═══════════════════════════════════════════════════════════
// 关闭
// ═══════════════════════════════════════════════════════════

func (s *syncService) Flush(ctx context.Context) error {
	return s.inflight.wait(ctx)
}

// Close 停止接受修改，等待在途远端写入，写最后一次快照并断开远端
func (s *syncService) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.mu.Unlock()

	waitErr := s.inflight.wait(ctx)
	if waitErr != nil {
		s.logger.Warn("等待远端写入结束超时", zap.Int("in_flight", s.inflight.count()), zap.Error(waitErr))
	}

	s.mu.Lock()
	s.persistLocked()
	s.mu.Unlock()

	s.cancel()

	s.remoteMu.Lock()
	if s.remote != nil {
		if err := s.remote.Close(); err != nil {
			s.logger.Warn("关闭远端连接失败", zap.Error(err))
		}
		s.remote = nil
	}
	s.remoteMu.Unlock()

	return waitErr
}

// ── 在途写入计数 ──

type inflightTracker struct {
	mu   sync.Mutex
	n    int
	idle chan struct{} // n 归零时关闭
}

func newInflightTracker() *inflightTracker {
	t := &inflightTracker{idle: make(chan struct{})}
	close(t.idle)
	return t
}

func (t *inflightTracker) add() {
	t.mu.Lock()
	if t.n == 0 {
		t.idle = make(chan struct{})
	}
	t.n++
	t.mu.Unlock()
}

func (t *inflightTracker) done() {
	t.mu.Lock()
	t.n--
	if t.n == 0 {
		close(t.idle)
	}
	t.mu.Unlock()
}

func (t *inflightTracker) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.n
}

func (t *inflightTracker) wait(ctx context.Context) error {
	t.mu.Lock()
	ch := t.idle
	t.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
