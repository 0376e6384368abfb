package attachment

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEncode(t *testing.T) {
	dir := t.TempDir()

	t.Run("encodes file contents", func(t *testing.T) {
		path := writeFile(t, dir, "notes.txt", []byte("hello"))

		att, err := Encode(path)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		if att.Name != "notes.txt" {
			t.Errorf("Name = %q", att.Name)
		}
		if att.MimeType != "text/plain" {
			t.Errorf("MimeType = %q, want text/plain", att.MimeType)
		}
		decoded, err := base64.StdEncoding.DecodeString(att.Data)
		if err != nil {
			t.Fatalf("Data is not valid base64: %v", err)
		}
		if string(decoded) != "hello" {
			t.Errorf("decoded = %q, want hello", decoded)
		}
	})

	t.Run("detects image type", func(t *testing.T) {
		path := writeFile(t, dir, "pic.png", []byte{0x89, 0x50, 0x4e, 0x47})

		att, err := Encode(path)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		if att.MimeType != "image/png" {
			t.Errorf("MimeType = %q, want image/png", att.MimeType)
		}
	})

	t.Run("unknown extension defaults to text/plain", func(t *testing.T) {
		path := writeFile(t, dir, "data.xyzzy", []byte("x"))

		att, err := Encode(path)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		if att.MimeType != DefaultMimeType {
			t.Errorf("MimeType = %q, want %q", att.MimeType, DefaultMimeType)
		}
	})

	t.Run("rejects audio and video", func(t *testing.T) {
		for _, name := range []string{"clip.mp4", "clip.MOV", "song.mp3", "voice.m4a", "sound.wav", "movie.avi"} {
			path := writeFile(t, dir, name, []byte("media"))
			if _, err := Encode(path); !errors.Is(err, ErrRestrictedType) {
				t.Errorf("Encode(%s) error = %v, want ErrRestrictedType", name, err)
			}
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Encode(filepath.Join(dir, "absent.txt")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestEncodeAll(t *testing.T) {
	dir := t.TempDir()

	good := writeFile(t, dir, "pic.png", []byte("png-bytes"))
	bad := writeFile(t, dir, "song.mp3", []byte("mp3-bytes"))

	attachments, errs := EncodeAll([]string{bad, good})

	if len(attachments) != 1 {
		t.Fatalf("len(attachments) = %d, want 1", len(attachments))
	}
	if attachments[0].Name != "pic.png" {
		t.Errorf("Name = %q, want pic.png", attachments[0].Name)
	}

	if len(errs) != 1 {
		t.Fatalf("len(errs) = %d, want 1", len(errs))
	}
	if !errors.Is(errs[0], ErrRestrictedType) {
		t.Errorf("errs[0] = %v, want ErrRestrictedType", errs[0])
	}
}
