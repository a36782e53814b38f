package rest

import (
	"net/http"

	"github.com/dmitrijs2005/upscaler/internal/api"
	"github.com/gin-gonic/gin"
)

func (s *Server) createSession(c *gin.Context) {
	sess, token, err := s.sessions.Create(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, api.SessionResponse{SessionID: sess.ID, Token: token})
}

func (s *Server) clearSession(c *gin.Context) {
	if err := s.sessions.Clear(c.Request.Context(), currentSession(c).ID); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
