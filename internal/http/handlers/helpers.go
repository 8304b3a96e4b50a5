package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ubc/tlef-engeai-sub001/internal/http/middleware"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/dbctx"
)

func requestDBC(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

func authUserID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserIDKey)
}
