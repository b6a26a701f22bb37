package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/theme"
)

// ThemeResponse is the resolved theme.
type ThemeResponse struct {
	Palette theme.Palette `json:"palette"`
	Mode    string        `json:"themeMode"`
	IsDark  bool          `json:"isDarkTheme"`
}

// SetThemeRequest is the body of PUT /theme.
type SetThemeRequest struct {
	Mode string `json:"themeMode" binding:"required"`
}

func (s *Server) themeResponse() ThemeResponse {
	t := s.theme.Theme()
	return ThemeResponse{
		Mode:    string(t.Mode),
		IsDark:  t.IsDark,
		Palette: t.Palette,
	}
}

func (s *Server) getTheme(c *gin.Context) {
	c.JSON(http.StatusOK, s.themeResponse())
}

func (s *Server) setTheme(c *gin.Context) {
	var req SetThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, fmt.Errorf("%w: %s", common.ErrInvalidInput, err.Error()))
		return
	}

	mode, err := theme.ParseMode(req.Mode)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := s.theme.SetMode(c.Request.Context(), mode); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.themeResponse())
}

func (s *Server) toggleTheme(c *gin.Context) {
	s.theme.Toggle(c.Request.Context())
	c.JSON(http.StatusOK, s.themeResponse())
}
