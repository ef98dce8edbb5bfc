package services

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
)

const contentTypePDF = "application/pdf"

var pdfMagic = []byte("%PDF-")

// Upload is a file received from a multipart request.
type Upload struct {
	Filename string
	Data     []byte
}

// validatePDF checks that an uploaded document is a PDF: non-empty, a
// .pdf filename and the PDF magic bytes up front.
func validatePDF(filename string, data []byte) error {
	if len(data) == 0 {
		return errors.New("empty file")
	}
	if !strings.HasSuffix(strings.ToLower(strings.TrimSpace(filename)), ".pdf") {
		return errors.New("file must be a PDF")
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return errors.New("file must be a PDF")
	}
	return nil
}

// validateImage checks that an upload is an image and returns its sniffed
// content type.
func validateImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty file")
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", errors.New("file must be an image")
	}
	return contentType, nil
}

// documentKey builds the object-storage key for a user document. The
// filename is reduced to its base so client-supplied paths cannot escape
// the user's prefix.
func documentKey(kind string, userID int, filename string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	return fmt.Sprintf("%s/%d/%s", kind, userID, base)
}
