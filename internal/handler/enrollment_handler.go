package handler

import (
	"net/http"

	"github.com/Baaaki/course-hub/internal/models"
	"github.com/Baaaki/course-hub/internal/service"
	"github.com/gin-gonic/gin"
)

type EnrollmentHandler struct {
	enrollmentService *service.EnrollmentService
}

func NewEnrollmentHandler(enrollmentService *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollmentService: enrollmentService,
	}
}

type UpdateEnrollmentStatusRequest struct {
	Status models.EnrollmentStatus `json:"status" binding:"required"`
}

func (h *EnrollmentHandler) GetAll(c *gin.Context) {
	enrollments, err := h.enrollmentService.GetAllEnrollments()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollments)
}

func (h *EnrollmentHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	enrollment, err := h.enrollmentService.GetEnrollmentByID(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

func (h *EnrollmentHandler) GetByUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	enrollments, err := h.enrollmentService.GetEnrollmentsByUser(userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollments)
}

func (h *EnrollmentHandler) GetByCourse(c *gin.Context) {
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}

	enrollments, err := h.enrollmentService.GetEnrollmentsByCourse(courseID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollments)
}

func (h *EnrollmentHandler) GetActiveCount(c *gin.Context) {
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}

	count, err := h.enrollmentService.CountActiveByCourse(courseID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"course_id": courseID, "active_count": count})
}

func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req service.CreateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	enrollment, err := h.enrollmentService.CreateEnrollment(req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

func (h *EnrollmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateEnrollmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	enrollment, err := h.enrollmentService.UpdateEnrollmentStatus(id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

func (h *EnrollmentHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.enrollmentService.DeleteEnrollment(id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
