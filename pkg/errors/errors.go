package errors

import "errors"

// ── 跨模块共享错误 ──

var (
	// ErrNotInitialized 在 Start 之前调用同步核心（属于调用方编程错误）
	ErrNotInitialized = errors.New("同步核心尚未初始化")

	// ErrRemoteUnavailable 未配置远端存储或连接失败
	ErrRemoteUnavailable = errors.New("远端存储不可用")

	// ErrConfigLocked 连接信息已由配置文件或环境变量给出，不接受用户输入覆盖
	ErrConfigLocked = errors.New("配置已锁定")

	// ErrConfirmQueueFull 待确认队列已满
	ErrConfirmQueueFull = errors.New("待确认操作过多")

	// ErrConfirmationNotFound 确认请求不存在或已被处理
	ErrConfirmationNotFound = errors.New("确认请求不存在或已处理")
)
