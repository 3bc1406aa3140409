package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一错误响应结构
// 成功响应直接平铺业务字段，前端按 success 判断
type Response struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`    // 业务码
	Message string `json:"message"` // 提示信息
}

// Success 成功响应，fields 平铺到顶层
func Success(c *gin.Context, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		if k == "success" {
			continue
		}
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, errCode int, msg string) {
	c.JSON(httpCode, Response{
		Success: false,
		Code:    errCode,
		Message: msg,
	})
}

// Fail 业务失败响应 (HTTP 200, success=false)
func Fail(c *gin.Context, errCode int, msg string) {
	Error(c, http.StatusOK, errCode, msg)
}
