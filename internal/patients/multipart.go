package patients

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"strings"
)

const (
	avatarField    = "avatar"
	avatarFilename = "avatar.jpg"

	// methodOverrideField tells the backend the semantic verb of a
	// multipart POST. Its multipart parser only runs on POST bodies,
	// so file-bearing updates cannot use a genuine PUT.
	methodOverrideField = "_method"
)

// isInlineAvatar reports whether the avatar value is an inline base64
// payload pending upload rather than a remote URL.
func isInlineAvatar(avatar *string) bool {
	return avatar != nil && strings.HasPrefix(*avatar, "data:")
}

// decodeDataURI extracts the binary content of a
// data:<mediatype>;base64,<payload> URI.
func decodeDataURI(uri string) ([]byte, error) {
	head, encoded, found := strings.Cut(uri, ",")
	if !found {
		return nil, fmt.Errorf("malformed data URI")
	}
	if !strings.HasSuffix(head, ";base64") {
		return nil, fmt.Errorf("data URI is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode avatar payload: %w", err)
	}
	return data, nil
}

// buildMultipart encodes the avatar bytes as a file field and every
// other field as a string field. methodOverride, when non-empty, is
// added as the _method field.
func buildMultipart(avatar []byte, fields map[string]string, methodOverride string) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	part, err := writer.CreateFormFile(avatarField, avatarFilename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create avatar field: %w", err)
	}
	if _, err := part.Write(avatar); err != nil {
		return nil, "", fmt.Errorf("failed to write avatar payload: %w", err)
	}

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}

	if methodOverride != "" {
		if err := writer.WriteField(methodOverrideField, methodOverride); err != nil {
			return nil, "", fmt.Errorf("failed to write method override: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	return buf, writer.FormDataContentType(), nil
}
