package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ubc/tlef-engeai-sub001/internal/domain"
	"github.com/ubc/tlef-engeai-sub001/internal/http/response"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/logger"
	"github.com/ubc/tlef-engeai-sub001/internal/services"
)

type FlagHandler struct {
	log         *logger.Logger
	flagService services.FlagService
}

func NewFlagHandler(log *logger.Logger, flagService services.FlagService) *FlagHandler {
	return &FlagHandler{
		log:         log.With("handler", "FlagHandler"),
		flagService: flagService,
	}
}

type submitFlagRequest struct {
	FlagType    string `json:"flagType"`
	ReportType  string `json:"reportType"`
	ChatContent string `json:"chatContent"`
	UserID      string `json:"userId"`
}

func (h *FlagHandler) SubmitFlag(c *gin.Context) {
	var req submitFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = authUserID(c)
	}

	flag, err := h.flagService.SubmitFlag(requestDBC(c), services.SubmitFlagInput{
		CourseName:  c.Param("course"),
		FlagType:    domain.FlagType(req.FlagType),
		ReportType:  req.ReportType,
		ChatContent: req.ChatContent,
		UserID:      userID,
	})
	if err != nil {
		h.log.Error("SubmitFlag failed", "error", err, "course", c.Param("course"))
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"flag": flag})
}

func (h *FlagHandler) GetFlag(c *gin.Context) {
	flag, err := h.flagService.GetFlag(requestDBC(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"flag": flag})
}

func (h *FlagHandler) ListFlags(c *gin.Context) {
	var statusFilter domain.FlagStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		statusFilter = domain.FlagStatus(raw)
		if !statusFilter.Valid() {
			response.RespondError(c, http.StatusBadRequest, "invalid_status", fmt.Errorf("unknown flag status %q", raw))
			return
		}
	}

	flags, err := h.flagService.ListFlags(requestDBC(c), c.Param("course"))
	if err != nil {
		h.log.Error("ListFlags failed", "error", err, "course", c.Param("course"))
		respondServiceError(c, err)
		return
	}
	if statusFilter != "" {
		filtered := flags[:0]
		for _, flag := range flags {
			if flag.Status == statusFilter {
				filtered = append(filtered, flag)
			}
		}
		flags = filtered
	}
	response.RespondOK(c, gin.H{"flags": flags})
}

type flagStatusRequest struct {
	Status   string  `json:"status"`
	Response *string `json:"response"`
}

func (h *FlagHandler) UpdateFlagStatus(c *gin.Context) {
	var req flagStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	var actorID *string
	if actor := authUserID(c); actor != "" {
		actorID = &actor
	}

	flag, err := h.flagService.ApplyStatusChange(
		requestDBC(c),
		c.Param("id"),
		domain.FlagStatus(req.Status),
		req.Response,
		actorID,
	)
	if err != nil {
		h.log.Warn("UpdateFlagStatus rejected", "error", err, "flag_id", c.Param("id"))
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"flag": flag})
}

func (h *FlagHandler) FlagStatistics(c *gin.Context) {
	stats, err := h.flagService.ComputeStatistics(requestDBC(c), c.Param("course"))
	if err != nil {
		h.log.Error("FlagStatistics failed", "error", err, "course", c.Param("course"))
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"statistics": stats})
}
