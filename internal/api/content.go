package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schooladmin/internal/school"
)

type homeworkRequest struct {
	ClassName   string `json:"className" form:"className"`
	Subject     string `json:"subject" form:"subject"`
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	DueDate     string `json:"dueDate" form:"dueDate"`
}

// CreateHomework accepts JSON or a multipart form with an optional "file".
func (h *Handler) CreateHomework(c *gin.Context) {
	var req homeworkRequest
	if !bind(c, &req) {
		return
	}
	up, closer, err := formFile(c, "file")
	if err != nil {
		badRequest(c, "invalid attachment")
		return
	}
	if closer != nil {
		defer closer.Close()
	}
	hw, err := h.School.CreateHomework(c.Request.Context(), school.Homework{
		ClassName:   req.ClassName,
		Subject:     req.Subject,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}, up)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, hw)
}

func (h *Handler) ListHomework(c *gin.Context) {
	hw, err := h.School.ListHomework(c.Request.Context(), c.Query("class"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"homework": hw})
}

func (h *Handler) DeleteHomework(c *gin.Context) {
	if err := h.School.DeleteHomework(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type noticeRequest struct {
	ClassName string `json:"className" form:"className"`
	Title     string `json:"title" form:"title"`
	Body      string `json:"body" form:"body"`
}

func (h *Handler) CreateNotice(c *gin.Context) {
	var req noticeRequest
	if !bind(c, &req) {
		return
	}
	up, closer, err := formFile(c, "file")
	if err != nil {
		badRequest(c, "invalid attachment")
		return
	}
	if closer != nil {
		defer closer.Close()
	}
	n, err := h.School.CreateNotice(c.Request.Context(), school.Notice{
		ClassName: req.ClassName,
		Title:     req.Title,
		Body:      req.Body,
	}, up)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (h *Handler) ListNotices(c *gin.Context) {
	notices, err := h.School.ListNotices(c.Request.Context(), c.Query("class"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notices": notices})
}

func (h *Handler) DeleteNotice(c *gin.Context) {
	if err := h.School.DeleteNotice(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetTimetable(c *gin.Context) {
	t, err := h.School.GetTimetable(c.Request.Context(), c.Param("class"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) SaveTimetable(c *gin.Context) {
	var req struct {
		Exams []school.TimetableEntry `json:"exams"`
	}
	if !bind(c, &req) {
		return
	}
	t, err := h.School.SaveTimetable(c.Request.Context(), c.Param("class"), req.Exams)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) SchoolDetails(c *gin.Context) {
	d, err := h.School.SchoolDetails(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) SaveSchoolDetails(c *gin.Context) {
	var d school.SchoolDetails
	if !bind(c, &d) {
		return
	}
	d, err := h.School.SaveSchoolDetails(c.Request.Context(), d)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) ListApplications(c *gin.Context) {
	apps, err := h.School.ListApplications(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

func (h *Handler) CreateApplication(c *gin.Context) {
	var a school.Application
	if !bind(c, &a) {
		return
	}
	a, err := h.School.CreateApplication(c.Request.Context(), a)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *Handler) DeleteApplication(c *gin.Context) {
	if err := h.School.DeleteApplication(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Upload stores a file in one of the upload folders and returns its URL.
func (h *Handler) Upload(c *gin.Context) {
	up, closer, err := formFile(c, "file")
	if err != nil || up == nil {
		badRequest(c, "file field required")
		return
	}
	defer closer.Close()
	url, err := h.School.UploadPhoto(c.Request.Context(), c.Param("folder"), *up)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *Handler) DashboardSummary(c *gin.Context) {
	s, err := h.Dashboard.Summary(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
