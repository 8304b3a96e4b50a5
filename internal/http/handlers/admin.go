package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ubc/tlef-engeai-sub001/internal/http/response"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/logger"
	"github.com/ubc/tlef-engeai-sub001/internal/services"
)

type AdminHandler struct {
	log          *logger.Logger
	indexService services.IndexService
}

func NewAdminHandler(log *logger.Logger, indexService services.IndexService) *AdminHandler {
	return &AdminHandler{
		log:          log.With("handler", "AdminHandler"),
		indexService: indexService,
	}
}

// EnsureFlagIndexes reports every index attempt; a partial failure is a
// 200 with the failing entries marked, not an error response.
func (h *AdminHandler) EnsureFlagIndexes(c *gin.Context) {
	results := h.indexService.EnsureFlagIndexes(requestDBC(c))
	response.RespondOK(c, gin.H{"indexes": results})
}
