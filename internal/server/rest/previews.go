package rest

import (
	"net/http"

	"github.com/dmitrijs2005/upscaler/internal/common"
	"github.com/dmitrijs2005/upscaler/internal/cryptox"
	"github.com/gin-gonic/gin"
)

// getPreview serves in-process previews. Tokens are unguessable, so no
// session is required. The digest doubles as ETag.
func (s *Server) getPreview(c *gin.Context) {
	if s.previews == nil {
		abortWithError(c, common.ErrorNotFound)
		return
	}

	p, ok := s.previews.Open(c.Param("token"))
	if !ok {
		abortWithError(c, common.ErrorNotFound)
		return
	}

	etag := cryptox.ETag(p.Digest)
	c.Header("ETag", etag)
	c.Header("Cache-Control", "no-cache")
	if cryptox.MatchETag(c.GetHeader("If-None-Match"), etag) {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, p.ContentType, p.Data)
}
