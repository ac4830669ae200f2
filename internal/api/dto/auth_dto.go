package dto

import "time"

// RegisterRequest 用户注册请求
type RegisterRequest struct {
	UserName string `json:"username" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=6,max=64"`
}

// LoginRequest 用户登录请求
type LoginRequest struct {
	UserName string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserInfo 用户公开信息
type UserInfo struct {
	ID        int64     `json:"id"`
	UserName  string    `json:"username"`
	UserRole  string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthData 登录/注册成功后的响应数据
type AuthData struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}
