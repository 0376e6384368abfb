// Package attachment encodes local files for inclusion in chat turns.
package attachment

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/prateeksi/gupshup/internal/debug"
	"github.com/prateeksi/gupshup/internal/message"
)

// ErrRestrictedType is returned for audio and video files, which the
// model endpoint does not accept inline.
var ErrRestrictedType = errors.New("audio and video attachments are not supported")

// DefaultMimeType is used when a file's type cannot be determined.
const DefaultMimeType = "text/plain"

// restrictedExts are rejected before any file I/O happens.
var restrictedExts = map[string]struct{}{
	".mp4": {},
	".mov": {},
	".avi": {},
	".mp3": {},
	".wav": {},
	".m4a": {},
}

// Encode reads and base64-encodes a single file.
func Encode(path string) (message.Attachment, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, restricted := restrictedExts[ext]; restricted {
		return message.Attachment{}, fmt.Errorf("%s: %w", filepath.Base(path), ErrRestrictedType)
	}

	data, err := os.ReadFile(path) //nolint:gosec // User-chosen attachment path.
	if err != nil {
		return message.Attachment{}, fmt.Errorf("reading attachment: %w", err)
	}

	return message.Attachment{
		Name:     filepath.Base(path),
		MimeType: mimeTypeFor(ext),
		Data:     base64.StdEncoding.EncodeToString(data),
	}, nil
}

// EncodeAll encodes a batch of files. A file that fails is skipped and
// its error collected; the rest of the batch still encodes.
func EncodeAll(paths []string) ([]message.Attachment, []error) {
	var (
		attachments []message.Attachment
		errs        []error
	)

	for _, path := range paths {
		att, err := Encode(path)
		if err != nil {
			debug.Error("attachment", err, path)
			errs = append(errs, err)
			continue
		}
		attachments = append(attachments, att)
	}

	return attachments, errs
}

func mimeTypeFor(ext string) string {
	if t := mime.TypeByExtension(ext); t != "" {
		// Strip any charset parameter; the wire format wants a bare type.
		if i := strings.IndexByte(t, ';'); i >= 0 {
			t = t[:i]
		}
		return t
	}
	return DefaultMimeType
}
