package api

import (
	"context"
	"mime"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"

	"terrepro/internal/models"
)

// ExportFile is a generated file, opaque to the front-end.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (c *Client) Export(ctx context.Context, token, cultureID string, fileType models.FileType) (*ExportFile, error) {
	req := Request{
		Method: http.MethodPost,
		Path:   "/api/cultures/" + url.PathEscape(cultureID) + "/exports",
		Body:   models.ExportRequest{CultureID: cultureID, TypeFichier: fileType},
		Kind:   Binary,
	}

	resp, err := c.Do(ctx, token, req, nil)
	if err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &ExportFile{
		Filename:    ExportFilename(resp.Header.Get("Content-Disposition"), fileType),
		ContentType: contentType,
		Data:        resp.Body,
	}, nil
}

var looseFilename = regexp.MustCompile(`filename="?([^";]+)"?`)

// ExportFilename names a downloaded export: the Content-Disposition filename
// when present, else "export.<ext>" for the requested type.
func ExportFilename(disposition string, fileType models.FileType) string {
	if name := filenameFromDisposition(disposition); name != "" {
		return name
	}
	return "export." + fileType.Extension()
}

func filenameFromDisposition(disposition string) string {
	disposition = strings.TrimSpace(disposition)
	if disposition == "" {
		return ""
	}

	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := sanitizeFilename(params["filename"]); name != "" {
			return name
		}
	}

	if m := looseFilename.FindStringSubmatch(disposition); len(m) == 2 {
		return sanitizeFilename(m[1])
	}
	return ""
}

// sanitizeFilename drops any directory part so the name is safe to send back
// in our own Content-Disposition header.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	if name == "" {
		return ""
	}
	name = path.Base(name)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
