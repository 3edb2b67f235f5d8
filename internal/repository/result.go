package repository

// Status 远端操作结果状态
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result 远端存储边界的唯一返回形态：驱动错误在此转换为文字，不向上层抛出
type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// OK 是否成功
func (r Result) OK() bool { return r.Status == StatusSuccess }

// Success 成功结果
func Success() Result { return Result{Status: StatusSuccess} }

// Failure 失败结果，空消息时使用通用文字
func Failure(message string) Result {
	if message == "" {
		message = "Database Error"
	}
	return Result{Status: StatusError, Message: message}
}
