package imagecheck

import "bytes"

// Leading-byte signatures for the accepted raster formats. The declared
// content type and filename extension are client-controlled and ignored.
var signatures = []struct {
	format string
	magic  []byte
}{
	{"jpg", []byte{0xFF, 0xD8, 0xFF}},
	{"png", []byte{0x89, 0x50, 0x4E, 0x47}},
	{"gif", []byte{0x47, 0x49, 0x46, 0x38}},
}

// IsImage reports whether data starts with a JPEG, PNG or GIF signature.
// Buffers shorter than 4 bytes are never accepted.
func IsImage(data []byte) bool {
	return Format(data) != ""
}

// Format returns "jpg", "png" or "gif" for a recognised buffer, "" otherwise.
func Format(data []byte) string {
	if len(data) < 4 {
		return ""
	}
	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig.magic) {
			return sig.format
		}
	}
	return ""
}
