// Package client is a typed HTTP client for the upscaler API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"github.com/dmitrijs2005/upscaler/internal/api"
	"github.com/dmitrijs2005/upscaler/internal/common"
	"github.com/dmitrijs2005/upscaler/internal/netx"
	"github.com/gabriel-vasile/mimetype"
)

type Client interface {
	CreateSession(ctx context.Context) (api.SessionResponse, error)
	ClearSession(ctx context.Context) error
	Upload(ctx context.Context, files []UploadFile) (api.UploadResponse, error)
	ListAssets(ctx context.Context) (api.AssetList, error)
	GetAsset(ctx context.Context, id string) (api.Asset, error)
	Select(ctx context.Context, id string) (api.SelectionResponse, error)
	Selection(ctx context.Context) (api.SelectionResponse, error)
	Remove(ctx context.Context, id string) (bool, error)
	SetProcessing(ctx context.Context, processing bool) (bool, error)
	Process(ctx context.Context, id string, req api.ProcessRequest) (api.Asset, error)
	Cancel(ctx context.Context, id string) (bool, error)
	Processed(ctx context.Context) (api.ProcessedList, error)
	Download(ctx context.Context, id string) (Download, error)
}

// UploadFile is one local file to send. An empty ContentType is detected
// from the content.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Download is a fetched result.
type Download struct {
	FileName    string
	ContentType string
	Data        []byte
}

type HTTPClient struct {
	base  string
	token string
	http  *http.Client
}

func NewHTTPClient(server, token string, timeout time.Duration) (*HTTPClient, error) {
	base, err := netx.BaseURL(server)
	if err != nil {
		return nil, err
	}
	return &HTTPClient{base: base, token: token, http: &http.Client{Timeout: timeout}}, nil
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+c.token)
	}
	return req, nil
}

func (c *HTTPClient) send(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err := netx.CheckResponse(resp); err != nil {
		resp.Body.Close()
		return nil, classify(err)
	}
	return resp, nil
}

// doJSON sends in (when not nil) as JSON and decodes the response into out
// (when not nil).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func assetPath(id string) string {
	return "/api/assets/" + url.PathEscape(id)
}

func (c *HTTPClient) CreateSession(ctx context.Context) (api.SessionResponse, error) {
	var out api.SessionResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/session", nil, &out)
	return out, err
}

func (c *HTTPClient) ClearSession(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/session", nil, nil)
}

func (c *HTTPClient) Upload(ctx context.Context, files []UploadFile) (api.UploadResponse, error) {
	var out api.UploadResponse

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		ct := f.ContentType
		if ct == "" {
			ct = mimetype.Detect(f.Data).String()
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{"name": "files", "filename": f.Name}))
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return out, err
		}
		if _, err := part.Write(f.Data); err != nil {
			return out, err
		}
	}
	if err := w.Close(); err != nil {
		return out, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/assets", &buf, w.FormDataContentType())
	if err != nil {
		return out, err
	}
	resp, err := c.send(req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

func (c *HTTPClient) ListAssets(ctx context.Context) (api.AssetList, error) {
	var out api.AssetList
	err := c.doJSON(ctx, http.MethodGet, "/api/assets", nil, &out)
	return out, err
}

func (c *HTTPClient) GetAsset(ctx context.Context, id string) (api.Asset, error) {
	var out api.Asset
	err := c.doJSON(ctx, http.MethodGet, assetPath(id), nil, &out)
	return out, err
}

func (c *HTTPClient) Select(ctx context.Context, id string) (api.SelectionResponse, error) {
	var out api.SelectionResponse
	err := c.doJSON(ctx, http.MethodPut, "/api/selection", api.SelectRequest{ID: id}, &out)
	return out, err
}

func (c *HTTPClient) Selection(ctx context.Context) (api.SelectionResponse, error) {
	var out api.SelectionResponse
	err := c.doJSON(ctx, http.MethodGet, "/api/selection", nil, &out)
	return out, err
}

func (c *HTTPClient) Remove(ctx context.Context, id string) (bool, error) {
	var out api.RemoveResponse
	err := c.doJSON(ctx, http.MethodDelete, assetPath(id), nil, &out)
	return out.Removed, err
}

func (c *HTTPClient) SetProcessing(ctx context.Context, processing bool) (bool, error) {
	var out api.ProcessingResponse
	err := c.doJSON(ctx, http.MethodPut, "/api/processing", api.ProcessingRequest{Processing: processing}, &out)
	return out.Processing, err
}

func (c *HTTPClient) Process(ctx context.Context, id string, req api.ProcessRequest) (api.Asset, error) {
	var out api.Asset
	err := c.doJSON(ctx, http.MethodPost, assetPath(id)+"/process", req, &out)
	return out, err
}

func (c *HTTPClient) Cancel(ctx context.Context, id string) (bool, error) {
	var out api.CancelResponse
	err := c.doJSON(ctx, http.MethodDelete, assetPath(id)+"/process", nil, &out)
	return out.Cancelled, err
}

func (c *HTTPClient) Processed(ctx context.Context) (api.ProcessedList, error) {
	var out api.ProcessedList
	err := c.doJSON(ctx, http.MethodGet, "/api/processed", nil, &out)
	return out, err
}

// Download fetches result bytes. The file name comes from
// Content-Disposition, falling back to the id.
func (c *HTTPClient) Download(ctx context.Context, id string) (Download, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/processed/"+url.PathEscape(id)+"/download", nil, "")
	if err != nil {
		return Download{}, err
	}
	resp, err := c.send(req)
	if err != nil {
		return Download{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Download{}, fmt.Errorf("read body: %w", err)
	}

	name := common.DownloadPrefix + id
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}

	return Download{FileName: name, ContentType: resp.Header.Get("Content-Type"), Data: data}, nil
}
