package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schooladmin/internal/school"
)

func (h *Handler) ListStudents(c *gin.Context) {
	students, err := h.School.ListStudents(c.Request.Context(), c.Query("class"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}

func (h *Handler) CreateStudent(c *gin.Context) {
	var in school.NewStudent
	if !bind(c, &in) {
		return
	}
	st, err := h.School.CreateStudent(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (h *Handler) GetStudent(c *gin.Context) {
	st, err := h.School.GetStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) UpdateStudent(c *gin.Context) {
	var p school.StudentProfile
	if !bind(c, &p) {
		return
	}
	st, err := h.School.UpdateStudent(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) DeleteStudent(c *gin.Context) {
	if err := h.School.DeleteStudent(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) StudentPhoto(c *gin.Context) {
	up, closer, err := formFile(c, "file")
	if err != nil || up == nil {
		badRequest(c, "file field required")
		return
	}
	defer closer.Close()
	url, err := h.School.SetStudentPhoto(c.Request.Context(), c.Param("id"), *up)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *Handler) FeeStatement(c *gin.Context) {
	stmt, err := h.School.FeeStatement(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stmt)
}

func (h *Handler) PayFee(c *gin.Context) {
	e, err := h.School.PayFee(c.Request.Context(), c.Param("id"), c.Param("month"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

type markRequest struct {
	Status string `json:"status"`
}

func (h *Handler) MarkStudentDay(c *gin.Context) {
	var req markRequest
	if !bind(c, &req) {
		return
	}
	if err := h.School.MarkStudentDay(c.Request.Context(), c.Param("id"), c.Param("day"), req.Status); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) StudentMonth(c *gin.Context) {
	year, ok := yearParam(c)
	if !ok {
		return
	}
	m, err := h.School.StudentMonth(c.Request.Context(), c.Param("id"), c.Param("month"), year)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) MarkClassDay(c *gin.Context) {
	var req struct {
		ClassName string            `json:"className"`
		DayKey    string            `json:"dayKey"`
		Marks     map[string]string `json:"marks"`
	}
	if !bind(c, &req) {
		return
	}
	n, err := h.School.MarkClassDay(c.Request.Context(), req.ClassName, req.DayKey, req.Marks)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": n})
}

func (h *Handler) AbsentStudents(c *gin.Context) {
	students, err := h.School.AbsentStudents(c.Request.Context(), c.Query("class"), c.Query("day"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}

func (h *Handler) Marksheet(c *gin.Context) {
	sheet, err := h.School.Marksheet(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sheet)
}
