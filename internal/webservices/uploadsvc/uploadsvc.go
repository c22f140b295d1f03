// Package uploadsvc reports what a multipart upload contains, one entry per
// file, with array fields ("images[]") merged under their plain name.
package uploadsvc

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/remiges-tech/leu/service"
	"github.com/remiges-tech/leu/uploads"
	"github.com/remiges-tech/leu/wscutils"
)

// DefaultMaxMemory is the part of the form kept in memory when no
// service.DepUploadLimit is registered; the rest goes to temporary files.
const DefaultMaxMemory int64 = 32 << 20

// FileInfo describes one uploaded file in the response.
type FileInfo struct {
	Name         string `json:"name"`
	Type         string `json:"type,omitempty"`
	DetectedType string `json:"detected_type,omitempty"`
	Size         int64  `json:"size"`
	Error        string `json:"error,omitempty"`
}

func RegisterRoutes(s *service.Service) {
	s.RegisterRoute(http.MethodPost, "/uploads/inspect", HandleInspect)
}

// HandleInspect handles POST /uploads/inspect.
func HandleInspect(c *gin.Context, s *service.Service) {
	lh := s.Logger.WithModule("uploadsvc").WithOp("inspect")

	maxMemory, err := service.Dependency[int64](s, service.DepUploadLimit)
	if err != nil {
		maxMemory = DefaultMaxMemory
	}

	files, err := uploads.FromRequest(c.Request, maxMemory)
	if errors.Is(err, uploads.ErrNoMultipartForm) {
		wscutils.SendErrorResponse(c, wscutils.NewErrorResponse(wscutils.ErrcodeNotMultipart))
		return
	}
	if err != nil {
		lh.Error(err).LogActivity("Upload could not be parsed", nil)
		wscutils.SendErrorResponse(c, wscutils.NewErrorResponse(wscutils.ErrcodeUnknown))
		return
	}
	defer c.Request.MultipartForm.RemoveAll()

	out := make(map[string][]FileInfo, len(files))
	count := 0
	for field, list := range files {
		for _, f := range list {
			info := FileInfo{
				Name:         f.Name,
				Type:         f.Type,
				DetectedType: f.DetectedType,
				Size:         f.Size,
			}
			if f.Err != nil {
				info.Error = f.Err.Error()
			}
			out[field] = append(out[field], info)
			count++
		}
	}

	lh.Debug0().LogActivity("Upload inspected", map[string]any{"fields": len(out), "files": count})
	wscutils.SendSuccessResponse(c, wscutils.NewSuccessResponse(out))
}
