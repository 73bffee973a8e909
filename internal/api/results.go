package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schooladmin/internal/results"
)

func (h *Handler) ListResults(c *gin.Context) {
	rs, err := h.School.ListResults(c.Request.Context(), c.Query("class"), c.Query("exam"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": rs})
}

// ClassReport backs the all-report print view.
func (h *Handler) ClassReport(c *gin.Context) {
	reports, err := h.School.ClassReport(c.Request.Context(), c.Param("class"), c.Query("exam"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

func (h *Handler) SaveResult(c *gin.Context) {
	var req struct {
		Rows []results.Row `json:"rows"`
	}
	if !bind(c, &req) {
		return
	}
	r, err := h.School.SaveResult(c.Request.Context(), c.Param("student"), c.Param("exam"), req.Rows)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) ResultSummary(c *gin.Context) {
	r, err := h.School.ResultSummary(c.Request.Context(), c.Param("student"), c.Param("exam"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) DeleteResult(c *gin.Context) {
	if err := h.School.DeleteResult(c.Request.Context(), c.Param("student"), c.Param("exam")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
