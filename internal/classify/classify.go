// Package classify decides whether a payload is a text paste or a binary
// file and picks its effective filename.
package classify

import (
	"errors"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/zinc-sig/pst/internal/upload"
)

// Suggested provider groups
const (
	GroupPastes = "pastes"
	GroupImages = "images"
	GroupFiles  = "files"
)

// Default filenames when none is supplied
const (
	DefaultTextName   = "paste.txt"
	DefaultBinaryName = "file.bin"
)

// sampleSize bounds how much of the payload is sniffed
const sampleSize = 8192

// ErrEmptyInput is returned for an empty payload without a filename
var ErrEmptyInput = errors.New("input is empty and no filename was given")

var textExtensions = map[string]bool{
	"txt": true, "md": true, "rs": true, "py": true, "js": true, "json": true,
	"toml": true, "yaml": true, "yml": true, "html": true, "css": true, "log": true,
	"xml": true, "csv": true, "ini": true, "conf": true, "sh": true, "bat": true,
	"go": true,
}

var imageExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "webp": true, "svg": true,
	"ico": true, "bmp": true, "tif": true, "tiff": true,
}

// Classification is the outcome of classifying one payload
type Classification struct {
	Kind           upload.Kind
	Filename       string
	Image          bool
	MIME           string
	SuggestedGroup string
}

// Classify inspects data once and returns its kind and effective filename.
// A non-empty filename is kept verbatim and its extension decides the kind
// when it is a known text or image extension; otherwise the content is
// sniffed.
func Classify(data []byte, filename string) (Classification, error) {
	if len(data) == 0 && filename == "" {
		return Classification{}, ErrEmptyInput
	}

	mime := mimetype.Detect(data)
	c := Classification{Filename: filename, MIME: mime.String()}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	switch {
	case textExtensions[ext]:
		c.Kind = upload.KindText
	case imageExtensions[ext]:
		c.Kind = upload.KindBinary
		c.Image = true
	case IsText(data):
		c.Kind = upload.KindText
	default:
		c.Kind = upload.KindBinary
		c.Image = strings.HasPrefix(mime.String(), "image/")
	}

	switch {
	case c.Kind == upload.KindText:
		c.SuggestedGroup = GroupPastes
	case c.Image:
		c.SuggestedGroup = GroupImages
	default:
		c.SuggestedGroup = GroupFiles
	}

	if c.Filename == "" {
		c.Filename = defaultName(c.Kind, mime)
	}
	return c, nil
}

func defaultName(kind upload.Kind, mime *mimetype.MIME) string {
	if kind == upload.KindText {
		return DefaultTextName
	}
	if ext := mime.Extension(); ext != "" && !strings.HasPrefix(mime.String(), "text/") {
		return "file" + ext
	}
	return DefaultBinaryName
}

// IsText reports whether data looks like text. The first 8 KiB are
// sampled: more than 1% NUL bytes means binary, otherwise the sample must
// be valid UTF-8 without control bytes other than common whitespace and
// ESC.
func IsText(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	sample := data
	if len(sample) > sampleSize {
		sample = trimPartialRune(sample[:sampleSize])
	}

	nul := 0
	for _, b := range sample {
		if b == 0 {
			nul++
		}
	}
	if nul*100 > len(sample) {
		return false
	}

	if !utf8.Valid(sample) {
		return false
	}
	for _, b := range sample {
		if isDisallowedControl(b) {
			return false
		}
	}
	return true
}

func isDisallowedControl(b byte) bool {
	switch b {
	case '\t', '\n', '\r', '\f', '\v', 0x1b:
		return false
	}
	return b < 0x20 || b == 0x7f
}

// trimPartialRune drops an incomplete UTF-8 sequence cut off at the end of
// the sample
func trimPartialRune(sample []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(sample); i++ {
		b := sample[len(sample)-i]
		if !utf8.RuneStart(b) {
			continue
		}
		if !utf8.FullRune(sample[len(sample)-i:]) {
			return sample[:len(sample)-i]
		}
		break
	}
	return sample
}
