package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFolderName(t *testing.T) {
	cases := map[string]string{
		"John Doe":       "john-doe",
		"  John   Doe  ": "john-doe",
		"O'Brien, Pat":   "o-brien-pat",
		"":               "unknown",
		"!!!":            "unknown",
	}
	for input, want := range cases {
		assert.Equal(t, want, sanitizeFolderName(input), "input=%q", input)
	}
}

func TestGetContentType(t *testing.T) {
	cases := map[string]string{
		"photo.jpg":  "image/jpeg",
		"photo.JPEG": "image/jpeg",
		"shot.png":   "image/png",
		"anim.gif":   "image/gif",
		"pic.webp":   "image/webp",
		"evidence":   "application/octet-stream",
		"doc.pdf":    "application/octet-stream",
	}
	for filename, want := range cases {
		assert.Equal(t, want, getContentType(filename), "filename=%q", filename)
	}
}
