package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rapor-paud/backend/config"
	"rapor-paud/backend/internal/model"
	"rapor-paud/backend/pkg/database"
)

// RemoteStore 远端关系型存储客户端
//
// 写操作一律返回 Result，不返回 error；FetchAll 任一集合失败即整体失败。
type RemoteStore interface {
	FetchAll(ctx context.Context) (*model.AppState, error)
	Insert(ctx context.Context, c model.Collection, entity interface{}) Result
	Update(ctx context.Context, c model.Collection, entity interface{}) Result
	// Upsert 仅用于设置单例，主键固定为 model.SettingsRowID
	Upsert(ctx context.Context, c model.Collection, entity interface{}) Result
	Remove(ctx context.Context, c model.Collection, id model.ID) Result
	Close() error
}

// RemoteDialer 按端点与密钥建立远端连接（首次使用时才拨号）
type RemoteDialer func(ctx context.Context, endpoint, key string) (RemoteStore, error)

// NewGormDialer 基于 gorm + PostgreSQL 的拨号器
func NewGormDialer(cfg *config.StoreConfig, logLevel string, logger *zap.Logger) RemoteDialer {
	return func(ctx context.Context, endpoint, key string) (RemoteStore, error) {
		dsn, err := database.BuildDSN(endpoint, key)
		if err != nil {
			return nil, err
		}
		db, err := database.NewDB(cfg, dsn, logLevel, logger)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			sqlDB, err := db.DB()
			if err != nil {
				return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
			}
			if err := database.RunMigrations(sqlDB, logger); err != nil {
				_ = sqlDB.Close()
				return nil, err
			}
		}
		return NewGormRemoteStore(db, cfg.Timeout, logger), nil
	}
}

type gormRemoteStore struct {
	db      *gorm.DB
	timeout time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewGormRemoteStore 创建 RemoteStore 实例
func NewGormRemoteStore(db *gorm.DB, timeout time.Duration, logger *zap.Logger) RemoteStore {
	return &gormRemoteStore{db: db, timeout: timeout, now: time.Now, logger: logger}
}

func (s *gormRemoteStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// ────────────────────── FetchAll ──────────────────────

func (s *gormRemoteStore) FetchAll(ctx context.Context) (*model.AppState, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var mu sync.Mutex
	rows := make(map[model.Collection][]map[string]interface{}, len(model.Collections))

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range model.Collections {
		m := tableMappings[c]
		g.Go(func() error {
			var result []map[string]interface{}
			q := s.db.WithContext(gctx).Table(m.Table)
			if m.Collection == model.CollectionSettings {
				q = q.Where("id = ?", model.SettingsRowID).Limit(1)
			}
			if err := q.Find(&result).Error; err != nil {
				return fmt.Errorf("读取 %s 失败: %w", m.Table, err)
			}
			mu.Lock()
			rows[m.Collection] = result
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("远端全量读取失败", zap.Error(err))
		return nil, err
	}

	return decodeState(rows, s.now())
}

// ────────────────────── 写操作 ──────────────────────

func (s *gormRemoteStore) Insert(ctx context.Context, c model.Collection, entity interface{}) Result {
	return s.write(ctx, "insert", c, func(db *gorm.DB, m tableMapping) error {
		row, err := m.toRow(entity)
		if err != nil {
			return err
		}
		return db.Table(m.Table).Create(row).Error
	})
}

func (s *gormRemoteStore) Update(ctx context.Context, c model.Collection, entity interface{}) Result {
	return s.write(ctx, "update", c, func(db *gorm.DB, m tableMapping) error {
		row, err := m.toRow(entity)
		if err != nil {
			return err
		}
		id, _ := row["id"].(string)
		if id == "" {
			return fmt.Errorf("%s 缺少 id", c)
		}
		delete(row, "id")
		tx := db.Table(m.Table).Where("id = ?", id).Updates(row)
		if tx.Error != nil {
			return tx.Error
		}
		if tx.RowsAffected == 0 {
			return fmt.Errorf("%s id=%s tidak ditemukan", c, id)
		}
		return nil
	})
}

func (s *gormRemoteStore) Upsert(ctx context.Context, c model.Collection, entity interface{}) Result {
	return s.write(ctx, "upsert", c, func(db *gorm.DB, m tableMapping) error {
		row, err := m.toRow(entity)
		if err != nil {
			return err
		}
		if c == model.CollectionSettings {
			row["id"] = model.SettingsRowID
		}
		return db.Table(m.Table).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(m.columnNames(false)),
		}).Create(row).Error
	})
}

func (s *gormRemoteStore) Remove(ctx context.Context, c model.Collection, id model.ID) Result {
	return s.write(ctx, "delete", c, func(db *gorm.DB, m tableMapping) error {
		// 表名来自映射常量，不含用户输入
		return db.Exec("DELETE FROM "+m.Table+" WHERE id = ?", id.String()).Error
	})
}

// write 统一处理超时、映射查找与 panic 兜底，错误一律转为 Result
func (s *gormRemoteStore) write(ctx context.Context, op string, c model.Collection, fn func(*gorm.DB, tableMapping) error) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("远端写入异常", zap.String("op", op), zap.String("collection", string(c)), zap.Any("panic", r))
			res = Failure(fmt.Sprint(r))
		}
	}()

	m, err := mappingFor(c)
	if err != nil {
		return Failure(err.Error())
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := fn(s.db.WithContext(ctx), m); err != nil {
		return Failure(err.Error())
	}
	return Success()
}

func (s *gormRemoteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
