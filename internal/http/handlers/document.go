package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ubc/tlef-engeai-sub001/internal/http/response"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/logger"
	"github.com/ubc/tlef-engeai-sub001/internal/services"
)

type DocumentHandler struct {
	log             *logger.Logger
	documentService services.DocumentService
}

func NewDocumentHandler(log *logger.Logger, documentService services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		log:             log.With("handler", "DocumentHandler"),
		documentService: documentService,
	}
}

type uploadTextRequest struct {
	TopicOrWeekTitle string `json:"topicOrWeekTitle"`
	ItemTitle        string `json:"itemTitle"`
	Text             string `json:"text"`
}

// UploadDocument accepts either a JSON body with raw text or a multipart
// form with a source file.
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	input := services.UploadDocumentInput{CourseName: c.Param("course")}

	contentType := c.GetHeader("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
		defer file.Close()

		input.File = file
		input.FileName = fileHeader.Filename
		input.TopicOrWeekTitle = c.PostForm("topicOrWeekTitle")
		input.ItemTitle = c.PostForm("itemTitle")
	} else {
		var req uploadTextRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
		input.TopicOrWeekTitle = req.TopicOrWeekTitle
		input.ItemTitle = req.ItemTitle
		input.Text = req.Text
	}

	doc, err := h.documentService.Upload(requestDBC(c), input)
	if err != nil {
		h.log.Error("UploadDocument failed", "error", err, "course", c.Param("course"))
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"document": doc})
}

func (h *DocumentHandler) GetDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	doc, err := h.documentService.Get(requestDBC(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"document": doc})
}

func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	docs, err := h.documentService.List(requestDBC(c), c.Param("course"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"documents": docs})
}

func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := h.documentService.Delete(requestDBC(c), id); err != nil {
		h.log.Error("DeleteDocument failed", "error", err, "document_id", id)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

func (h *DocumentHandler) WipeCourseDocuments(c *gin.Context) {
	result, err := h.documentService.WipeCourse(requestDBC(c), c.Param("course"))
	if err != nil {
		h.log.Error("WipeCourseDocuments failed", "error", err, "course", c.Param("course"))
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"result": result})
}

func (h *DocumentHandler) NuclearReset(c *gin.Context) {
	if err := h.documentService.NuclearReset(requestDBC(c)); err != nil {
		h.log.Error("NuclearReset failed", "error", err)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reset": true})
}
