// Package uploads flattens multipart file uploads into one record per file.
//
// A form with <input type="file" name="images[]" multiple> arrives with the
// files under the key "images[]". Normalize files them under "images", in
// upload order, next to any single-file fields.
package uploads

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrNoMultipartForm is returned by FromRequest when the request carries no
// multipart body.
var ErrNoMultipartForm = errors.New("request has no multipart form")

// File describes one uploaded file.
type File struct {
	Name string
	// Type is the content type the client declared.
	Type string
	// DetectedType is sniffed from the content.
	DetectedType string
	Size         int64
	Header       *multipart.FileHeader
	// Err is set when the file could not be opened for sniffing.
	Err error
}

// Normalize returns the files of form keyed by field name, array suffix
// removed. A nil form yields an empty map.
func Normalize(form *multipart.Form) map[string][]File {
	files := make(map[string][]File)
	if form == nil {
		return files
	}

	// "x" sorts before "x[]" so merged fields keep a stable order
	fields := make([]string, 0, len(form.File))
	for field := range form.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		name := FieldName(field)
		for _, fh := range form.File[field] {
			files[name] = append(files[name], describe(fh))
		}
	}
	return files
}

// FromRequest parses r as a multipart form and normalises its files.
func FromRequest(r *http.Request, maxMemory int64) (map[string][]File, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, ErrNoMultipartForm
		}
		return nil, fmt.Errorf("parsing multipart form: %w", err)
	}
	return Normalize(r.MultipartForm), nil
}

// FieldName strips the array suffix from a form field name.
func FieldName(field string) string {
	return strings.TrimSuffix(field, "[]")
}

func describe(fh *multipart.FileHeader) File {
	f := File{
		Name:   fh.Filename,
		Type:   fh.Header.Get("Content-Type"),
		Size:   fh.Size,
		Header: fh,
	}

	r, err := fh.Open()
	if err != nil {
		f.Err = fmt.Errorf("opening %s: %w", fh.Filename, err)
		return f
	}
	defer r.Close()

	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		f.Err = fmt.Errorf("sniffing %s: %w", fh.Filename, err)
		return f
	}
	f.DetectedType = refine(mtype.String(), fh.Filename)
	return f
}

// refine replaces generic sniffing results with what the file extension
// says, for the text formats the sniffer cannot tell apart.
func refine(detected, filename string) string {
	base := strings.TrimSpace(strings.SplitN(detected, ";", 2)[0])
	if base != "application/octet-stream" && base != "text/plain" {
		return detected
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return "text/csv"
	case ".tsv":
		return "text/tab-separated-values"
	case ".json":
		return "application/json"
	case ".xml":
		return "application/xml"
	case ".yaml", ".yml":
		return "application/x-yaml"
	}
	return detected
}
