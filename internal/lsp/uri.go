package lsp

import (
	"net/url"
	"path/filepath"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// uriToPath maps a file URI to a clean slash path. Other schemes map to "".
func uriToPath(uri protocol.DocumentUri) string {
	if uri == "" {
		return ""
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	path := parsed.Path
	switch parsed.Scheme {
	case "file":
	case "":
		path = uri
	default:
		return ""
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	if abs, err := filepath.Abs(filepath.FromSlash(path)); err == nil {
		path = abs
	}
	return filepath.ToSlash(filepath.Clean(path))
}

func pathToURI(path string) protocol.DocumentUri {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(filepath.FromSlash(path)); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}
