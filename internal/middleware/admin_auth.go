// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"net/http"

	"momcare-go/internal/model"

	"github.com/gin-gonic/gin"
)

// AdminAuthMiddleware 检查用户是否具有管理员权限。
// superadmin 与 hospital_admin 都可以通过；审核数据的医院范围在 service 层裁决。
// 此中间件必须在 AuthMiddleware 之后使用。
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := c.Get("user")
		if !exists {
			// user 对象不存在说明 AuthMiddleware 未能成功解析
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    http.StatusInternalServerError,
				"message": "无法获取用户信息",
			})
			return
		}

		currentUser, ok := user.(*model.User)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    http.StatusInternalServerError,
				"message": "用户数据类型错误",
			})
			return
		}

		switch currentUser.MemberType {
		case model.MemberTypeSuperAdmin, model.MemberTypeHospitalAdmin:
			c.Next()
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    http.StatusForbidden,
				"message": "权限不足，需要管理员权限",
			})
		}
	}
}

// SuperAdminMiddleware 只允许 superadmin 通过，用于全局配置类接口。
// 此中间件必须在 AuthMiddleware 之后使用。
func SuperAdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := c.Get("user")
		if !exists {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    http.StatusInternalServerError,
				"message": "无法获取用户信息",
			})
			return
		}
		currentUser, ok := user.(*model.User)
		if !ok || !currentUser.IsSuperAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    http.StatusForbidden,
				"message": "权限不足，需要超级管理员权限",
			})
			return
		}
		c.Next()
	}
}
