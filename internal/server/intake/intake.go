// Package intake is the upload boundary in front of the asset store. It
// rejects files that are not images, are too large, or carry an extension
// outside the allowlist, and reports every rejection to the caller.
package intake

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dmitrijs2005/upscaler/internal/common"
	"github.com/dmitrijs2005/upscaler/internal/logging"
	"github.com/dmitrijs2005/upscaler/internal/server/assets"
	"github.com/gabriel-vasile/mimetype"
)

// MaxFileSize is the default per-file ceiling (50 MiB).
const MaxFileSize int64 = 50 << 20

// AllowedExtensions lists the accepted file extensions, lower case.
var AllowedExtensions = []string{".jpeg", ".jpg", ".png", ".webp", ".gif", ".bmp", ".tiff"}

const genericContentType = "application/octet-stream"

// Candidate is an upload waiting for a verdict. Size is the declared size and
// may be checked before Data is read.
type Candidate struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// Rejection records why a candidate was turned away. Reason wraps one of the
// common.Error* intake sentinels.
type Rejection struct {
	Name   string
	Size   int64
	Reason error
}

// Result splits candidates into accepted files and rejections.
type Result struct {
	Accepted []assets.File
	Rejected []Rejection
}

type Validator struct {
	maxSize int64
	logger  logging.Logger
}

func NewValidator(maxSize int64, logger logging.Logger) *Validator {
	if maxSize <= 0 {
		maxSize = MaxFileSize
	}
	return &Validator{maxSize: maxSize, logger: logger.With("module", "intake")}
}

// MaxSize returns the per-file ceiling in bytes.
func (v *Validator) MaxSize() int64 {
	return v.maxSize
}

// Precheck applies the checks that need no content: size, extension, and a
// declared non-image type. Callers use it to skip reading oversized bodies.
func (v *Validator) Precheck(c Candidate) error {
	if c.Size > v.maxSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", common.ErrorTooLarge, c.Size, v.maxSize)
	}
	ext := strings.ToLower(filepath.Ext(c.Name))
	if !slices.Contains(AllowedExtensions, ext) {
		return fmt.Errorf("%w: %q", common.ErrorBadExtension, ext)
	}
	if declared := declaredType(c.ContentType); declared != "" && !isImage(declared) {
		return fmt.Errorf("%w: %s", common.ErrorUnsupportedType, declared)
	}
	return nil
}

// Check runs every rule and returns the file ready for the store. When the
// declared type is missing or generic the content is sniffed.
func (v *Validator) Check(c Candidate) (assets.File, error) {
	if n := int64(len(c.Data)); n > c.Size {
		c.Size = n
	}
	if err := v.Precheck(c); err != nil {
		return assets.File{}, err
	}
	if c.Size == 0 {
		return assets.File{}, common.ErrorEmptyFile
	}

	contentType := declaredType(c.ContentType)
	if contentType == "" {
		contentType = mimetype.Detect(c.Data).String()
		if !isImage(contentType) {
			return assets.File{}, fmt.Errorf("%w: sniffed %s", common.ErrorUnsupportedType, contentType)
		}
	}

	return assets.File{Name: c.Name, ContentType: contentType, Data: c.Data}, nil
}

// Filter checks every candidate. Order of accepted files follows the input.
func (v *Validator) Filter(ctx context.Context, candidates []Candidate) Result {
	var res Result
	for _, c := range candidates {
		f, err := v.Check(c)
		if err != nil {
			v.logger.Info(ctx, "upload rejected", "name", c.Name, "size", c.Size, "reason", err.Error())
			res.Rejected = append(res.Rejected, Rejection{Name: c.Name, Size: max(c.Size, int64(len(c.Data))), Reason: err})
			continue
		}
		res.Accepted = append(res.Accepted, f)
	}
	return res
}

func declaredType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == genericContentType {
		return ""
	}
	return ct
}

func isImage(ct string) bool {
	return strings.HasPrefix(ct, "image/")
}
