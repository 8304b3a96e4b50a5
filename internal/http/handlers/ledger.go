package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ubc/tlef-engeai-sub001/internal/http/response"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/logger"
	"github.com/ubc/tlef-engeai-sub001/internal/services"
)

type LedgerHandler struct {
	log           *logger.Logger
	ledgerService services.StruggleLedgerService
}

func NewLedgerHandler(log *logger.Logger, ledgerService services.StruggleLedgerService) *LedgerHandler {
	return &LedgerHandler{
		log:           log.With("handler", "LedgerHandler"),
		ledgerService: ledgerService,
	}
}

func (h *LedgerHandler) GetTopics(c *gin.Context) {
	topics, err := h.ledgerService.GetTopics(requestDBC(c), c.Param("course"), c.Param("userId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"topics": topics})
}

type analyzeConversationRequest struct {
	ConversationText string `json:"conversationText"`
}

func (h *LedgerHandler) AnalyzeConversation(c *gin.Context) {
	var req analyzeConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	topics, err := h.ledgerService.AnalyzeConversation(
		requestDBC(c),
		c.Param("course"),
		c.Param("userId"),
		req.ConversationText,
	)
	if err != nil {
		h.log.Error("AnalyzeConversation failed",
			"error", err,
			"course", c.Param("course"),
			"user_id", c.Param("userId"),
		)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"topics": topics})
}

type mergeTopicsRequest struct {
	Labels []string `json:"labels"`
}

func (h *LedgerHandler) MergeTopics(c *gin.Context) {
	var req mergeTopicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	topics, wrote, err := h.ledgerService.MergeTopics(requestDBC(c), c.Param("course"), c.Param("userId"), req.Labels)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"topics": topics, "updated": wrote})
}

func (h *LedgerHandler) RemoveTopic(c *gin.Context) {
	topics, removed, err := h.ledgerService.RemoveTopic(requestDBC(c), c.Param("course"), c.Param("userId"), c.Param("topic"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"topics": topics, "removed": removed})
}
