package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rapor-paud/backend/internal/dto"
	pkgerrors "rapor-paud/backend/pkg/errors"
)

// ConfirmService 破坏性操作确认
//
// 待决确认按 FIFO 排队，界面始终展示队首；每个请求恰好被决定一次：
// 用户确认 / 取消，或调用方 ctx 结束（按取消处理）。
type ConfirmService interface {
	// ConfirmAction 阻塞直到该请求被决定
	ConfirmAction(ctx context.Context, message string) (bool, error)
	Pending() []dto.ConfirmationResponse
	Current() (dto.ConfirmationResponse, bool)
	Resolve(id string, confirmed bool) error
	ResolveCurrent(confirmed bool) error
}

type confirmation struct {
	id        string
	message   string
	createdAt time.Time
	result    chan bool // 容量 1
	once      sync.Once
}

func (c *confirmation) resolve(v bool) {
	c.once.Do(func() { c.result <- v })
}

func (c *confirmation) view() dto.ConfirmationResponse {
	return dto.ConfirmationResponse{ID: c.id, Message: c.message, CreatedAt: c.createdAt}
}

type confirmService struct {
	mu     sync.Mutex
	queue  []*confirmation
	limit  int
	logger *zap.Logger
}

// NewConfirmService 创建 ConfirmService 实例，limit<=0 时使用 16
func NewConfirmService(limit int, logger *zap.Logger) ConfirmService {
	if limit <= 0 {
		limit = 16
	}
	return &confirmService{limit: limit, logger: logger}
}

func (s *confirmService) ConfirmAction(ctx context.Context, message string) (bool, error) {
	c := &confirmation{
		id:        uuid.NewString(),
		message:   message,
		createdAt: time.Now(),
		result:    make(chan bool, 1),
	}

	s.mu.Lock()
	if len(s.queue) >= s.limit {
		s.mu.Unlock()
		return false, pkgerrors.ErrConfirmQueueFull
	}
	s.queue = append(s.queue, c)
	s.mu.Unlock()

	select {
	case v := <-c.result:
		return v, nil
	case <-ctx.Done():
		// 已被 Resolve 摘除时以其决定为准
		if s.remove(c.id) == nil {
			return <-c.result, nil
		}
		c.resolve(false)
		return false, ctx.Err()
	}
}

func (s *confirmService) Pending() []dto.ConfirmationResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]dto.ConfirmationResponse, 0, len(s.queue))
	for _, c := range s.queue {
		out = append(out, c.view())
	}
	return out
}

func (s *confirmService) Current() (dto.ConfirmationResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return dto.ConfirmationResponse{}, false
	}
	return s.queue[0].view(), true
}

func (s *confirmService) Resolve(id string, confirmed bool) error {
	c := s.remove(id)
	if c == nil {
		return pkgerrors.ErrConfirmationNotFound
	}
	c.resolve(confirmed)
	s.logger.Debug("确认请求已决定", zap.String("id", id), zap.Bool("confirmed", confirmed))
	return nil
}

func (s *confirmService) ResolveCurrent(confirmed bool) error {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return pkgerrors.ErrConfirmationNotFound
	}
	id := s.queue[0].id
	s.mu.Unlock()
	return s.Resolve(id, confirmed)
}

// remove 从队列中摘除，已不在队列中时返回 nil
func (s *confirmService) remove(id string) *confirmation {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.queue {
		if c.id == id {
			s.queue = append(s.queue[:i:i], s.queue[i+1:]...)
			return c
		}
	}
	return nil
}
