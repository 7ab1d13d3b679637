package handler

import (
	"github.com/gin-gonic/gin"

	"eco-award/backend/internal/model"
	"eco-award/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// GetSchoolID 从 Gin 上下文中提取 school_id。
// 教师携带所属学校；审核员/管理员为空字符串。
func GetSchoolID(c *gin.Context) string {
	v, exists := c.Get("school_id")
	if !exists {
		return ""
	}
	s, _ := v.(string)
	return s
}

// CheckSchoolAccess 校验调用方对目标学校的访问权。
// 教师只能访问自己所属的学校；审核员/管理员不受限。
// 无权访问时写入 403 响应并返回 false。
func CheckSchoolAccess(c *gin.Context, targetSchoolID string) bool {
	role, ok := MustGetRole(c)
	if !ok {
		return false
	}
	if role != model.RoleTeacher {
		return true
	}
	if GetSchoolID(c) != targetSchoolID {
		response.Forbidden(c, 10003, "无权访问该学校的数据")
		return false
	}
	return true
}
