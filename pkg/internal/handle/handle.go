// Package handle 提供 HTTP 请求处理器，参数在这里解析一次后交给服务层.
package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/reportvault/pkg/context"
	"github.com/yeisme/reportvault/pkg/internal/service"
	"github.com/yeisme/reportvault/pkg/internal/types"
	nlog "github.com/yeisme/reportvault/pkg/log"
	"github.com/yeisme/reportvault/pkg/middleware"
)

// writeError 按错误类别输出状态码与可展示的文本，存储错误只记录日志不外泄.
func writeError(c *gin.Context, op string, err error) {
	status := service.StatusCode(err)
	l := ctxPkg.Logger(c.Request.Context(), nlog.Component("http"))

	if status >= http.StatusInternalServerError {
		l.Error().Err(err).Str("op", op).Msg("request failed")
	} else {
		l.Debug().Err(err).Str("op", op).Int("status", status).Msg("request rejected")
	}

	c.JSON(status, types.ErrorResponse{Error: service.PublicMessage(err)})
}

// bindError 请求体或查询参数无法解析.
func bindError(c *gin.Context, op string, err error) {
	writeError(c, op, &service.ValidationError{Field: "body", Message: "Invalid request parameters."})
	_ = c.Error(err)
}

// currentUser 返回已认证用户，未认证时写入 401.
func currentUser(c *gin.Context) (string, bool) {
	user := middleware.CurrentUser(c)
	if user == "" {
		c.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "Authentication required."})

		return "", false
	}

	return user, true
}
