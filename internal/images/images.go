// Package images stores circle banner and icon images.
//
// The DataURIStore keeps images inline as data URIs and exists for tests and
// single-binary setups; FTPStore writes them to an FTP-served directory and
// returns public URLs.
package images

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// MaxImageSize is the largest accepted upload, in bytes.
const MaxImageSize = 5 * 1024 * 1024

var (
	ErrTooLarge   = fmt.Errorf("image exceeds %dMB", MaxImageSize/1024/1024)
	ErrNotImage   = errors.New("file is not an image")
	ErrEmptyImage = errors.New("image is empty")
	ErrBadDataURI = errors.New("malformed data URI")
)

// Store uploads image bytes and returns a URL that can be stored on a circle.
type Store interface {
	Upload(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// checkImage validates data and returns its effective content type.
func checkImage(contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	if len(data) > MaxImageSize {
		return "", ErrTooLarge
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotImage, mediaType)
	}
	return mediaType, nil
}

// IsDataURI reports whether s is an inline data URI.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// EncodeDataURI builds a base64 data URI.
func EncodeDataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURI decodes a base64 data URI into its content type and bytes.
func ParseDataURI(uri string) (string, []byte, error) {
	if !IsDataURI(uri) {
		return "", nil, ErrBadDataURI
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return "", nil, ErrBadDataURI
	}
	contentType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("%w: only base64 payloads are supported", ErrBadDataURI)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadDataURI, err)
	}
	return contentType, data, nil
}

// DataURIStore "uploads" by encoding the image inline.
type DataURIStore struct{}

// NewDataURIStore creates an inline image store.
func NewDataURIStore() *DataURIStore {
	return &DataURIStore{}
}

func (DataURIStore) Upload(_ context.Context, _ string, contentType string, data []byte) (string, error) {
	mediaType, err := checkImage(contentType, data)
	if err != nil {
		return "", err
	}
	return EncodeDataURI(mediaType, data), nil
}
