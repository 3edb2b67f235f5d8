package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"rapor-paud/backend/config"
	"rapor-paud/backend/internal/dto"
	"rapor-paud/backend/internal/model"
	"rapor-paud/backend/internal/repository"
	pkgerrors "rapor-paud/backend/pkg/errors"
)

// ── 叙述模块业务错误 ──

var (
	ErrStudentNotFound  = errors.New("学生不存在")
	ErrCriteriaNotFound = errors.New("P5 评价标准不存在")
	ErrInvalidProvider  = errors.New("不支持的叙述生成提供方")
)

// NarrativeService 叙述生成适配器
//
// 生成失败不返回 error：结果中的 Failure 标明分类，Text 为提示文字。
// 未配置任何凭据时使用离线模板。
type NarrativeService interface {
	GenerateCategory(ctx context.Context, req *dto.CategoryNarrativeRequest) dto.NarrativeResult
	GenerateP5(ctx context.Context, req *dto.P5NarrativeRequest) dto.NarrativeResult
	// SuggestCategory 从当前状态收集学生在该类别下的评分事实后生成
	SuggestCategory(ctx context.Context, req *dto.SuggestCategoryRequest) (dto.NarrativeResult, error)
	SuggestP5(ctx context.Context, req *dto.SuggestP5Request) (dto.NarrativeResult, error)

	SaveCredentials(ctx context.Context, provider model.AIProvider, apiKey string) error
	ClearCredentials(ctx context.Context) error
	CredentialStatus(ctx context.Context) (provider model.AIProvider, keySet, locked bool)
}

type narrativeCredentials struct {
	provider model.AIProvider
	apiKey   string
}

type narrativeService struct {
	cfg     *config.NarrativeConfig
	repo    *repository.Repository
	sync    SyncService
	factory ProviderFactory
	logger  *zap.Logger

	// 同一凭据复用客户端
	mu       sync.Mutex
	cached   NarrativeProvider
	cachedBy narrativeCredentials
}

// NewNarrativeService 创建 NarrativeService 实例
func NewNarrativeService(cfg *config.NarrativeConfig, repo *repository.Repository, syncSvc SyncService, factory ProviderFactory, logger *zap.Logger) NarrativeService {
	if factory == nil {
		factory = NewProviderFactory(cfg)
	}
	return &narrativeService{cfg: cfg, repo: repo, sync: syncSvc, factory: factory, logger: logger}
}

// ────────────────────── 生成 ──────────────────────

func (s *narrativeService) GenerateCategory(ctx context.Context, req *dto.CategoryNarrativeRequest) dto.NarrativeResult {
	return s.generate(ctx,
		func() string { return TemplateCategoryDescription(req.StudentName, req.Category, req.Facts) },
		func() string { return categoryPrompt(req.StudentName, req.Category, req.Facts, req.Keywords) },
	)
}

func (s *narrativeService) GenerateP5(ctx context.Context, req *dto.P5NarrativeRequest) dto.NarrativeResult {
	return s.generate(ctx,
		func() string { return TemplateP5Description(req.StudentName, req.SubDimension, req.Keywords) },
		func() string { return p5Prompt(req.StudentName, req.SubDimension, req.Score, req.Keywords) },
	)
}

func (s *narrativeService) generate(ctx context.Context, template, prompt func() string) dto.NarrativeResult {
	creds := s.resolve(ctx)
	if creds.apiKey == "" {
		return dto.NarrativeResult{Text: template(), Source: dto.SourceTemplate}
	}

	provider, err := s.provider(ctx, creds)
	if err != nil {
		s.logger.Warn("初始化叙述生成客户端失败", zap.String("provider", string(creds.provider)), zap.Error(err))
		return dto.NarrativeResult{Text: adviceInit, Source: dto.NarrativeSource(creds.provider), Failure: dto.FailureOther}
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	text, err := provider.Generate(ctx, prompt())
	if err != nil {
		failure, advice := classifyNarrativeError(err)
		s.logger.Warn("叙述生成失败",
			zap.String("provider", string(provider.Source())),
			zap.String("failure", string(failure)),
			zap.Error(err),
		)
		return dto.NarrativeResult{Text: advice, Source: provider.Source(), Failure: failure}
	}
	if text == "" {
		return dto.NarrativeResult{Text: adviceEmpty, Source: provider.Source(), Failure: dto.FailureOther}
	}
	return dto.NarrativeResult{Text: text, Source: provider.Source()}
}

func (s *narrativeService) provider(ctx context.Context, creds narrativeCredentials) (NarrativeProvider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && s.cachedBy == creds {
		return s.cached, nil
	}
	p, err := s.factory(ctx, creds.provider, creds.apiKey)
	if err != nil {
		return nil, err
	}
	s.cached, s.cachedBy = p, creds
	return p, nil
}

// ────────────────────── 基于状态的建议 ──────────────────────

func (s *narrativeService) SuggestCategory(ctx context.Context, req *dto.SuggestCategoryRequest) (dto.NarrativeResult, error) {
	state, err := s.sync.State()
	if err != nil {
		return dto.NarrativeResult{}, err
	}
	student, ok := state.FindStudent(req.StudentID.Normalize())
	if !ok {
		return dto.NarrativeResult{}, ErrStudentNotFound
	}

	return s.GenerateCategory(ctx, &dto.CategoryNarrativeRequest{
		StudentName: student.Name,
		Category:    string(req.Category),
		Facts:       CategoryFacts(state, student, req.Category),
		Keywords:    req.Keywords,
	}), nil
}

func (s *narrativeService) SuggestP5(ctx context.Context, req *dto.SuggestP5Request) (dto.NarrativeResult, error) {
	state, err := s.sync.State()
	if err != nil {
		return dto.NarrativeResult{}, err
	}
	student, ok := state.FindStudent(req.StudentID.Normalize())
	if !ok {
		return dto.NarrativeResult{}, ErrStudentNotFound
	}

	criteriaID := req.CriteriaID.Normalize()
	var criteria *model.P5Criteria
	for i := range state.P5Criteria {
		if state.P5Criteria[i].ID == criteriaID {
			criteria = &state.P5Criteria[i]
			break
		}
	}
	if criteria == nil {
		return dto.NarrativeResult{}, ErrCriteriaNotFound
	}

	score := model.LevelBerkembang
	for _, a := range state.P5Assessments {
		if a.StudentID == student.ID && a.CriteriaID == criteriaID {
			score = a.Score
			break
		}
	}

	return s.GenerateP5(ctx, &dto.P5NarrativeRequest{
		StudentName:  student.Name,
		SubDimension: criteria.SubDimension,
		Score:        score,
		Keywords:     req.Keywords,
	}), nil
}

// CategoryFacts 学生所在班级在该类别下已评分的学习目标（按学习目标顺序）
func CategoryFacts(state *model.AppState, student model.Student, category model.TPType) []dto.AssessmentFact {
	facts := make([]dto.AssessmentFact, 0)
	for _, tp := range state.TPsOf(student.ClassID, category) {
		a, ok := state.AssessmentOf(student.ID, tp.ID)
		if !ok {
			continue
		}
		facts = append(facts, dto.AssessmentFact{TP: tp.Description, Activity: tp.Activity, Score: a.Score})
	}
	return facts
}

// ────────────────────── 凭据 ──────────────────────

// resolve 依次取：配置（环境变量 / 文件）→ 学校设置 → 本地保存的用户输入。
// 未显式指定提供方时按旧版密钥前缀推断。
func (s *narrativeService) resolve(ctx context.Context) narrativeCredentials {
	if key := strings.TrimSpace(s.cfg.APIKey); key != "" {
		return withProvider(model.AIProvider(s.cfg.Provider), key)
	}

	if state, err := s.sync.State(); err == nil {
		if key := strings.TrimSpace(state.Settings.AIAPIKey); key != "" {
			return withProvider(state.Settings.AIProvider, key)
		}
	}

	if s.repo != nil && s.repo.Local != nil {
		key, ok, err := s.repo.Local.Get(ctx, repository.KeyAIAPIKey)
		if err != nil {
			s.logger.Warn("读取本地叙述生成凭据失败", zap.Error(err))
			return narrativeCredentials{}
		}
		if ok && strings.TrimSpace(key) != "" {
			provider, _, _ := s.repo.Local.Get(ctx, repository.KeyAIProvider)
			return withProvider(model.AIProvider(provider), strings.TrimSpace(key))
		}
	}
	return narrativeCredentials{}
}

func withProvider(p model.AIProvider, key string) narrativeCredentials {
	if !p.Valid() {
		p = model.DetectAIProvider(key)
	}
	return narrativeCredentials{provider: p, apiKey: key}
}

func (s *narrativeService) SaveCredentials(ctx context.Context, provider model.AIProvider, apiKey string) error {
	if s.cfg.APIKey != "" {
		return pkgerrors.ErrConfigLocked
	}
	if !provider.Valid() {
		return ErrInvalidProvider
	}
	if err := s.repo.Local.Set(ctx, repository.KeyAIProvider, string(provider)); err != nil {
		return err
	}
	return s.repo.Local.Set(ctx, repository.KeyAIAPIKey, strings.TrimSpace(apiKey))
}

func (s *narrativeService) ClearCredentials(ctx context.Context) error {
	if err := s.repo.Local.Delete(ctx, repository.KeyAIProvider); err != nil {
		return err
	}
	return s.repo.Local.Delete(ctx, repository.KeyAIAPIKey)
}

func (s *narrativeService) CredentialStatus(ctx context.Context) (model.AIProvider, bool, bool) {
	creds := s.resolve(ctx)
	return creds.provider, creds.apiKey != "", s.cfg.APIKey != ""
}
