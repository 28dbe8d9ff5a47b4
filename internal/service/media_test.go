package service

import (
	"strings"
	"testing"
)

func TestStoragePathFor(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		wantExt  string
	}{
		{"keeps extension", "IMG_4021.jpg", ".jpg"},
		{"lowercases extension", "photo.JPEG", ".jpeg"},
		{"no extension", "rawfile", ""},
		{"keeps only the last extension", "archive.tar.png", ".png"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := storagePathFor(tc.fileName)

			if !strings.HasPrefix(path, "runs/pending/") {
				t.Errorf("path %q must live under runs/pending/", path)
			}
			if !strings.HasSuffix(path, tc.wantExt) {
				t.Errorf("path %q: want extension %q", path, tc.wantExt)
			}
			// The original file name must not leak into the key.
			if strings.Contains(path, "IMG_4021") || strings.Contains(path, "rawfile") {
				t.Errorf("path %q leaks the client file name", path)
			}
		})
	}

	t.Run("unique per call", func(t *testing.T) {
		a := storagePathFor("same.jpg")
		b := storagePathFor("same.jpg")
		if a == b {
			t.Error("two uploads of the same file name must get distinct keys")
		}
	})
}
