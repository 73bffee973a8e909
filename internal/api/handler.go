// Package api exposes the admin console over HTTP.
package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"schooladmin/internal/auth"
	"schooladmin/internal/dashboard"
	"schooladmin/internal/docstore"
	"schooladmin/internal/ledger"
	"schooladmin/internal/live"
	"schooladmin/internal/school"
)

// Handler holds the services behind the HTTP routes.
type Handler struct {
	School    *school.Service
	Dashboard *dashboard.Service
	Accounts  *auth.Accounts
	Signer    *auth.Signer
	Store     docstore.Store
	Broker    live.Broker
	Log       *zap.Logger
}

// fail maps a service error to a status and an opaque message.
func (h *Handler) fail(c *gin.Context, err error) {
	var verr *school.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, school.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, ledger.ErrAlreadyPaid):
		c.JSON(http.StatusConflict, gin.H{"error": "already paid"})
	default:
		h.Log.Error("request failed",
			zap.String("method", c.Request.Method), zap.String("route", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong, please try again"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// bind decodes the request body, answering 400 on failure.
func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBind(v); err != nil {
		badRequest(c, "invalid request body")
		return false
	}
	return true
}

// yearParam reads the optional academic start year; zero means current.
func yearParam(c *gin.Context) (int, bool) {
	v := c.Query("year")
	if v == "" {
		return 0, true
	}
	year, err := strconv.Atoi(v)
	if err != nil || year < 1900 {
		badRequest(c, "invalid year")
		return 0, false
	}
	return year, true
}

// formFile returns the named multipart file, or nil when none was sent.
func formFile(c *gin.Context, field string) (*school.Upload, io.Closer, error) {
	if c.ContentType() != "multipart/form-data" {
		return nil, nil, nil
	}
	file, header, err := c.Request.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return &school.Upload{Filename: header.Filename, Body: file}, file, nil
}
