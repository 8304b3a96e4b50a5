package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ubc/tlef-engeai-sub001/internal/http/response"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/logger"
	"github.com/ubc/tlef-engeai-sub001/internal/services"
)

type CourseHandler struct {
	log           *logger.Logger
	courseService services.CourseService
}

func NewCourseHandler(log *logger.Logger, courseService services.CourseService) *CourseHandler {
	return &CourseHandler{
		log:           log.With("handler", "CourseHandler"),
		courseService: courseService,
	}
}

type createCourseRequest struct {
	Name             string  `json:"name"`
	FlagCollection   *string `json:"flagCollection"`
	UserCollection   *string `json:"userCollection"`
	LedgerCollection *string `json:"ledgerCollection"`
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	course, err := h.courseService.Create(requestDBC(c), services.CreateCourseInput{
		Name:             req.Name,
		FlagCollection:   req.FlagCollection,
		UserCollection:   req.UserCollection,
		LedgerCollection: req.LedgerCollection,
	})
	if err != nil {
		h.log.Error("CreateCourse failed", "error", err, "name", req.Name)
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"course": course})
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courseService.Get(requestDBC(c), c.Param("course"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseService.List(requestDBC(c))
	if err != nil {
		h.log.Error("ListCourses failed", "error", err)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"courses": courses})
}
