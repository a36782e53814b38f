package rest

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/dmitrijs2005/upscaler/internal/api"
	"github.com/dmitrijs2005/upscaler/internal/common"
	"github.com/dmitrijs2005/upscaler/internal/cryptox"
	"github.com/dmitrijs2005/upscaler/internal/server/assets"
	"github.com/gin-gonic/gin"
)

// settingsFrom overlays the request onto the defaults. An empty body means
// defaults.
func settingsFrom(c *gin.Context) (assets.ProcessingSettings, error) {
	settings := assets.DefaultSettings()

	var req api.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		return settings, err
	}

	if req.ScaleFactor != nil {
		settings.ScaleFactor = *req.ScaleFactor
	}
	if req.Algorithm != nil {
		alg, err := assets.ParseAlgorithm(*req.Algorithm)
		if err != nil {
			return settings, err
		}
		settings.Algorithm = alg
	}
	if req.Quality != nil {
		settings.Quality = *req.Quality
	}
	return settings, nil
}

func (s *Server) startProcessing(c *gin.Context) {
	sess := currentSession(c)
	id := c.Param("id")

	settings, err := settingsFrom(c)
	if err != nil {
		if errors.Is(err, common.ErrorInvalidSettings) {
			abortWithError(c, err)
			return
		}
		badRequest(c, err)
		return
	}

	if err := s.processor.Start(sess.ID, sess.Store, id, settings); err != nil {
		abortWithError(c, err)
		return
	}

	a, err := sess.Store.Get(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, assetView(a))
}

func (s *Server) cancelProcessing(c *gin.Context) {
	sess := currentSession(c)
	cancelled := s.processor.Cancel(sess.ID, c.Param("id"))
	c.JSON(http.StatusOK, api.CancelResponse{Cancelled: cancelled})
}

func (s *Server) listProcessed(c *gin.Context) {
	list := currentSession(c).Store.ProcessedAssets()

	out := make([]api.ProcessedAsset, len(list))
	for i, p := range list {
		out[i] = processedView(p)
	}
	c.JSON(http.StatusOK, api.ProcessedList{Processed: out})
}

// downloadProcessed sends the result bytes as an attachment named after the
// source file with the download prefix.
func (s *Server) downloadProcessed(c *gin.Context) {
	p, err := currentSession(c).Store.GetProcessed(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !p.HasResult() {
		abortWithError(c, common.ErrorNoResult)
		return
	}

	name := common.DownloadPrefix + p.FileName
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	c.Header("ETag", cryptox.ETag(p.Digest))
	c.Data(http.StatusOK, p.Metadata.MimeType, p.ResultBytes)
}
