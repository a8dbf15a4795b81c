// Package exif removes embedded EXIF metadata from JPEG and PNG images
// without re-encoding them.
package exif

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	jpegSOI      = []byte{0xFF, 0xD8}
	pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}
	exifHeader   = []byte("Exif\x00\x00")

	// ErrMalformed is returned when the image structure cannot be walked
	ErrMalformed = errors.New("malformed image")
)

const (
	markerAPP1 = 0xE1
	markerSOS  = 0xDA
	markerEOI  = 0xD9
)

// Strip returns data without EXIF metadata. Formats other than JPEG and
// PNG are returned unchanged. The second result reports whether anything
// was removed.
func Strip(data []byte) ([]byte, bool, error) {
	switch {
	case bytes.HasPrefix(data, jpegSOI):
		return stripJPEG(data)
	case bytes.HasPrefix(data, pngSignature):
		return stripPNG(data)
	}
	return data, false, nil
}

func stripJPEG(data []byte) ([]byte, bool, error) {
	out := make([]byte, 0, len(data))
	out = append(out, jpegSOI...)
	removed := false
	i := len(jpegSOI)
	for i < len(data) {
		if data[i] != 0xFF {
			return nil, false, fmt.Errorf("%w: expected marker at offset %d", ErrMalformed, i)
		}
		// fill bytes
		for i+1 < len(data) && data[i+1] == 0xFF {
			i++
		}
		if i+1 >= len(data) {
			return nil, false, fmt.Errorf("%w: truncated marker", ErrMalformed)
		}
		marker := data[i+1]
		switch {
		case marker == markerEOI || marker == markerSOS:
			// entropy coded data follows, nothing more to strip
			out = append(out, data[i:]...)
			return out, removed, nil
		case marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7):
			out = append(out, data[i:i+2]...)
			i += 2
			continue
		}
		if i+4 > len(data) {
			return nil, false, fmt.Errorf("%w: truncated segment header", ErrMalformed)
		}
		length := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		end := i + 2 + length
		if length < 2 || end > len(data) {
			return nil, false, fmt.Errorf("%w: segment length %d at offset %d", ErrMalformed, length, i)
		}
		if marker == markerAPP1 && bytes.HasPrefix(data[i+4:end], exifHeader) {
			removed = true
		} else {
			out = append(out, data[i:end]...)
		}
		i = end
	}
	return out, removed, nil
}

func stripPNG(data []byte) ([]byte, bool, error) {
	out := make([]byte, 0, len(data))
	out = append(out, pngSignature...)
	removed := false
	i := len(pngSignature)
	for i < len(data) {
		if i+8 > len(data) {
			return nil, false, fmt.Errorf("%w: truncated chunk header", ErrMalformed)
		}
		length := int(binary.BigEndian.Uint32(data[i : i+4]))
		typ := string(data[i+4 : i+8])
		end := i + 12 + length
		if length < 0 || end > len(data) || end < i {
			return nil, false, fmt.Errorf("%w: chunk %q length %d", ErrMalformed, typ, length)
		}
		if typ == "eXIf" {
			removed = true
		} else {
			out = append(out, data[i:end]...)
		}
		i = end
		if typ == "IEND" {
			break
		}
	}
	// Trailing bytes after IEND are not chunks and are kept as they are
	out = append(out, data[i:]...)
	return out, removed, nil
}
