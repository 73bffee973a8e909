package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schooladmin/internal/school"
)

func (h *Handler) ListTeachers(c *gin.Context) {
	teachers, err := h.School.ListTeachers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"teachers": teachers})
}

func (h *Handler) CreateTeacher(c *gin.Context) {
	var in school.NewTeacher
	if !bind(c, &in) {
		return
	}
	t, err := h.School.CreateTeacher(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) GetTeacher(c *gin.Context) {
	t, err := h.School.GetTeacher(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) UpdateTeacher(c *gin.Context) {
	var p school.TeacherProfile
	if !bind(c, &p) {
		return
	}
	t, err := h.School.UpdateTeacher(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTeacher(c *gin.Context) {
	if err := h.School.DeleteTeacher(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) TeacherPhoto(c *gin.Context) {
	up, closer, err := formFile(c, "file")
	if err != nil || up == nil {
		badRequest(c, "file field required")
		return
	}
	defer closer.Close()
	url, err := h.School.SetTeacherPhoto(c.Request.Context(), c.Param("id"), *up)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *Handler) MarkTeacherDay(c *gin.Context) {
	var req markRequest
	if !bind(c, &req) {
		return
	}
	if err := h.School.MarkTeacherDay(c.Request.Context(), c.Param("id"), c.Param("day"), req.Status); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) TeacherMonth(c *gin.Context) {
	year, ok := yearParam(c)
	if !ok {
		return
	}
	m, err := h.School.TeacherMonth(c.Request.Context(), c.Param("id"), c.Param("month"), year)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) SalaryQuote(c *gin.Context) {
	year, ok := yearParam(c)
	if !ok {
		return
	}
	q, err := h.School.SalaryQuote(c.Request.Context(), c.Param("id"), c.Param("month"), year)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *Handler) PaySalary(c *gin.Context) {
	year, ok := yearParam(c)
	if !ok {
		return
	}
	e, err := h.School.PaySalary(c.Request.Context(), c.Param("id"), c.Param("month"), year)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}
