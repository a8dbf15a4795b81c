package exif

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"testing"
)

func segment(marker byte, payload []byte) []byte {
	b := []byte{0xFF, marker, 0, 0}
	binary.BigEndian.PutUint16(b[2:], uint16(len(payload)+2))
	return append(b, payload...)
}

func chunk(typ string, payload []byte) []byte {
	b := make([]byte, 8, 12+len(payload))
	binary.BigEndian.PutUint32(b, uint32(len(payload)))
	copy(b[4:], typ)
	b = append(b, payload...)
	crc := crc32.ChecksumIEEE(append([]byte(typ), payload...))
	return binary.BigEndian.AppendUint32(b, crc)
}

func join(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func TestStripJPEG(t *testing.T) {
	app0 := segment(0xE0, []byte("JFIF\x00\x01\x02"))
	exifSeg := segment(markerAPP1, append([]byte("Exif\x00\x00"), "MM\x00*GPSDATA"...))
	xmp := segment(markerAPP1, []byte("http://ns.adobe.com/xap/1.0/\x00<x/>"))
	scan := []byte{0xFF, markerSOS, 0x00, 0x02, 0x12, 0x34, 0xFF, 0x00, 0xFF, markerEOI}

	in := join(jpegSOI, app0, exifSeg, xmp, scan)
	got, removed, err := Strip(in)
	if err != nil {
		t.Fatalf("Strip failed: %v", err)
	}
	if !removed {
		t.Error("Expected EXIF segment to be reported as removed")
	}
	want := join(jpegSOI, app0, xmp, scan)
	if !bytes.Equal(got, want) {
		t.Errorf("Strip() = %x, want %x", got, want)
	}
	if bytes.Contains(got, []byte("GPSDATA")) {
		t.Error("EXIF payload survived")
	}
}

func TestStripJPEGWithoutExif(t *testing.T) {
	in := join(jpegSOI, segment(0xE0, []byte("JFIF\x00")), []byte{0xFF, markerEOI})
	got, removed, err := Strip(in)
	if err != nil {
		t.Fatal(err)
	}
	if removed || !bytes.Equal(got, in) {
		t.Error("Expected image without EXIF to be unchanged")
	}
}

func TestStripPNG(t *testing.T) {
	ihdr := chunk("IHDR", make([]byte, 13))
	exifChunk := chunk("eXIf", []byte("MM\x00*secret"))
	idat := chunk("IDAT", []byte{1, 2, 3})
	iend := chunk("IEND", nil)

	got, removed, err := Strip(join(pngSignature, ihdr, exifChunk, idat, iend))
	if err != nil {
		t.Fatalf("Strip failed: %v", err)
	}
	if !removed {
		t.Error("Expected eXIf chunk to be removed")
	}
	if want := join(pngSignature, ihdr, idat, iend); !bytes.Equal(got, want) {
		t.Errorf("Strip() = %x, want %x", got, want)
	}
}

func TestStripPNGKeepsTrailingData(t *testing.T) {
	ihdr := chunk("IHDR", make([]byte, 13))
	exifChunk := chunk("eXIf", []byte("MM\x00*secret"))
	iend := chunk("IEND", nil)
	trailer := []byte("appended zip or signature data")

	got, removed, err := Strip(join(pngSignature, ihdr, exifChunk, iend, trailer))
	if err != nil {
		t.Fatalf("Strip failed: %v", err)
	}
	if !removed {
		t.Error("Expected eXIf chunk to be removed")
	}
	if want := join(pngSignature, ihdr, iend, trailer); !bytes.Equal(got, want) {
		t.Errorf("Strip() = %x, want %x", got, want)
	}
}

func TestStripOtherFormatsUnchanged(t *testing.T) {
	in := []byte("GIF89a....")
	got, removed, err := Strip(in)
	if err != nil || removed || !bytes.Equal(got, in) {
		t.Errorf("Strip() = %q, %v, %v; want input unchanged", got, removed, err)
	}
}

func TestStripMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{"jpeg segment overruns", join(jpegSOI, []byte{0xFF, 0xE1, 0xFF, 0xFF, 'E'})},
		{"jpeg garbage between segments", join(jpegSOI, []byte{0x00, 0x01})},
		{"png truncated chunk", join(pngSignature, []byte{0, 0, 0, 50, 'I', 'D', 'A', 'T', 1})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Strip(tt.in); !errors.Is(err, ErrMalformed) {
				t.Errorf("Expected ErrMalformed, got %v", err)
			}
		})
	}
}
