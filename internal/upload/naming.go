package upload

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const randomNameLen = 8

// RandomName returns an 8 character lowercase hex name
func RandomName() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return id[:randomNameLen]
}

// Extension returns the extension of the request filename, falling back to
// the extension of the sniffed content type
func Extension(req *Request) string {
	if ext := filepath.Ext(req.Filename()); ext != "" {
		return ext
	}
	return mimetype.Detect(req.Payload()).Extension()
}

// ContentType sniffs the MIME type of the payload
func ContentType(req *Request) string {
	return mimetype.Detect(req.Payload()).String()
}

// RemoteName picks the object name used by storage backends. User chosen
// names are kept verbatim; otherwise a random name keeps the extension.
func RemoteName(req *Request, randomize bool) string {
	if req.ExplicitName() || !randomize {
		return path.Base(filepath.ToSlash(req.Filename()))
	}
	return RandomName() + Extension(req)
}

// joinURL joins a base URL and a path without doubling slashes
func joinURL(base string, elems ...string) string {
	out := strings.TrimRight(base, "/")
	for _, e := range elems {
		e = strings.Trim(e, "/")
		if e == "" {
			continue
		}
		out += "/" + e
	}
	return out
}
