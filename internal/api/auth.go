package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"schooladmin/internal/auth"
)

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

func (h *Handler) SignIn(c *gin.Context) {
	var req signInRequest
	if !bind(c, &req) {
		return
	}
	email, err := h.Accounts.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	pair, err := h.Signer.Issue(email, req.Remember)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.Log.Info("admin signed in", zap.String("email", email), zap.Bool("remember", req.Remember))
	c.JSON(http.StatusOK, pair)
}

func (h *Handler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !bind(c, &req) {
		return
	}
	pair, err := h.Signer.Refresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired, sign in again"})
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !bind(c, &req) {
		return
	}
	if err := h.Accounts.ChangePassword(c.Request.Context(), auth.Subject(c), req.CurrentPassword, req.NewPassword); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
