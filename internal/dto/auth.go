package dto

// LoginRequest 编辑者登录
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// TokenResponse 访问令牌
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}
