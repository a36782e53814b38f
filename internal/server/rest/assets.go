package rest

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/dmitrijs2005/upscaler/internal/api"
	"github.com/dmitrijs2005/upscaler/internal/server/intake"
	"github.com/gin-gonic/gin"
)

const uploadField = "files"

func (s *Server) listAssets(c *gin.Context) {
	store := currentSession(c).Store

	resp := api.AssetList{
		Assets:     assetViews(store.Assets()),
		Processing: store.IsProcessing(),
	}
	if sel, ok := store.Selected(); ok {
		resp.SelectedID = sel.ID
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getAsset(c *gin.Context) {
	a, err := currentSession(c).Store.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, assetView(a))
}

// uploadAssets runs every multipart file through intake, adds the accepted
// ones to the store and then decodes their dimensions.
func (s *Server) uploadAssets(c *gin.Context) {
	ctx := c.Request.Context()
	store := currentSession(c).Store

	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, fmt.Errorf("multipart form: %w", err))
		return
	}

	headers := form.File[uploadField]
	candidates := make([]intake.Candidate, 0, len(headers))
	for _, fh := range headers {
		cand := intake.Candidate{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
		}
		// oversized or mistyped files are rejected without reading them
		if s.validator.Precheck(cand) == nil {
			data, err := readPart(fh, s.validator.MaxSize())
			if err != nil {
				abortWithError(c, err)
				return
			}
			cand.Data = data
		}
		candidates = append(candidates, cand)
	}

	result := s.validator.Filter(ctx, candidates)

	resp := api.UploadResponse{
		Accepted: []api.Asset{},
		Rejected: rejectionViews(result.Rejected),
	}

	if len(result.Accepted) > 0 {
		added, err := store.AddAssets(ctx, result.Accepted)
		if err != nil {
			abortWithError(c, err)
			return
		}
		for _, a := range added {
			w, h, err := intake.Dimensions(a.SourceBytes)
			if err != nil {
				s.logger.Warn(ctx, "dimension decode failed", "id", a.ID, "name", a.FileName, "error", err)
				continue
			}
			if err := store.UpdateMetadata(a.ID, w, h); err != nil {
				s.logger.Warn(ctx, "metadata update failed", "id", a.ID, "error", err)
			}
		}
		for _, a := range added {
			if fresh, err := store.Get(a.ID); err == nil {
				a = fresh
			}
			resp.Accepted = append(resp.Accepted, assetView(a))
		}
	}

	c.JSON(http.StatusOK, resp)
}

func readPart(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open part %q: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read part %q: %w", fh.Filename, err)
	}
	return data, nil
}

// removeAsset cancels any run for the asset and removes it. Removing an
// unknown id is not an error.
func (s *Server) removeAsset(c *gin.Context) {
	sess := currentSession(c)
	id := c.Param("id")

	s.processor.Cancel(sess.ID, id)
	removed := sess.Store.RemoveAsset(c.Request.Context(), id)

	c.JSON(http.StatusOK, api.RemoveResponse{Removed: removed})
}

func (s *Server) getSelection(c *gin.Context) {
	var resp api.SelectionResponse
	if a, ok := currentSession(c).Store.Selected(); ok {
		v := assetView(a)
		resp.Asset = &v
	}
	c.JSON(http.StatusOK, resp)
}

// putSelection selects by id. An empty id clears the selection.
func (s *Server) putSelection(c *gin.Context) {
	store := currentSession(c).Store

	var req api.SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if req.ID == "" {
		store.ClearSelection()
		c.JSON(http.StatusOK, api.SelectionResponse{})
		return
	}

	a, err := store.Get(req.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	store.SelectAsset(a)

	v := assetView(a)
	c.JSON(http.StatusOK, api.SelectionResponse{Asset: &v})
}

func (s *Server) putProcessing(c *gin.Context) {
	store := currentSession(c).Store

	var req api.ProcessingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	store.SetProcessing(req.Processing)

	c.JSON(http.StatusOK, api.ProcessingResponse{Processing: store.IsProcessing()})
}
