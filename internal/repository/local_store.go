package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"rapor-paud/backend/pkg/redis"
)

// 本地键值槽位中保存的用户配置键
const (
	KeyStoreURL   = "store_url"
	KeyStoreKey   = "store_key"
	KeyAIProvider = "ai_provider"
	KeyAIAPIKey   = "ai_api_key"
)

// LocalStore 本地持久化键值槽位（快照与用户配置）
type LocalStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ── SQLite 实现（默认） ──

const localSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);`

type sqliteLocalStore struct {
	db *sql.DB
}

// OpenSQLiteLocalStore 打开（或创建）本地 SQLite 文件
func OpenSQLiteLocalStore(path string) (LocalStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("创建本地数据目录失败: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("打开本地存储失败: %w", err)
	}
	if _, err := db.Exec(localSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("初始化本地存储失败: %w", err)
	}
	return &sqliteLocalStore{db: db}, nil
}

func (s *sqliteLocalStore) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("读取本地槽位 %s 失败: %w", key, err)
	}
	return v, true, nil
}

func (s *sqliteLocalStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value,
		 updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("写入本地槽位 %s 失败: %w", key, err)
	}
	return nil
}

func (s *sqliteLocalStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("删除本地槽位 %s 失败: %w", key, err)
	}
	return nil
}

func (s *sqliteLocalStore) Close() error {
	return s.db.Close()
}

// ── Redis 实现（local.driver=redis） ──

type redisLocalStore struct {
	rdb *redis.Client
}

// NewRedisLocalStore 以 Redis 作为本地槽位
func NewRedisLocalStore(rdb *redis.Client) LocalStore {
	return &redisLocalStore{rdb: rdb}
}

func (s *redisLocalStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.rdb.GetValue(ctx, key)
}

func (s *redisLocalStore) Set(ctx context.Context, key, value string) error {
	return s.rdb.SetValue(ctx, key, value)
}

func (s *redisLocalStore) Delete(ctx context.Context, key string) error {
	return s.rdb.DeleteValue(ctx, key)
}

// Close 连接由调用方持有的 redis.Client 统一关闭
func (s *redisLocalStore) Close() error { return nil }
