package patients

import (
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
)

func TestIsInlineAvatar(t *testing.T) {
	tests := []struct {
		name     string
		avatar   *string
		expected bool
	}{
		{"Nil avatar", nil, false},
		{"Remote URL", strPtr("https://cdn.clinic.example/avatars/1.jpg"), false},
		{"Inline base64", strPtr("data:image/jpeg;base64,aGVsbG8="), true},
		{"Empty string", strPtr(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isInlineAvatar(tt.avatar); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestDecodeDataURI(t *testing.T) {
	data, err := decodeDataURI("data:image/jpeg;base64,aGVsbG8=")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("Expected decoded payload 'hello', got %q", string(data))
	}

	if _, err := decodeDataURI("data:image/jpeg;base64"); err == nil {
		t.Error("Expected error for URI without payload")
	}
	if _, err := decodeDataURI("data:image/jpeg,plaintext"); err == nil {
		t.Error("Expected error for non-base64 URI")
	}
	if _, err := decodeDataURI("data:image/jpeg;base64,!!!"); err == nil {
		t.Error("Expected error for invalid base64")
	}
}

func TestBuildMultipart(t *testing.T) {
	fields := map[string]string{
		"fullname": "Omar Haddad",
		"gender":   GenderMale,
	}

	body, contentType, err := buildMultipart([]byte("imagebytes"), fields, http.MethodPut)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if mediaType != "multipart/form-data" {
		t.Fatalf("Expected multipart/form-data, got %q", mediaType)
	}

	reader := multipart.NewReader(body, params["boundary"])
	form, err := reader.ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("Failed to parse multipart body: %v", err)
	}

	if len(form.File["avatar"]) != 1 {
		t.Fatal("Expected avatar to be a file field")
	}
	if form.File["avatar"][0].Filename != "avatar.jpg" {
		t.Errorf("Expected filename avatar.jpg, got %q", form.File["avatar"][0].Filename)
	}
	if len(form.Value["avatar"]) != 0 {
		t.Error("Avatar must never appear as a string field")
	}

	if got := form.Value["fullname"]; len(got) != 1 || got[0] != "Omar Haddad" {
		t.Errorf("Unexpected fullname field: %v", got)
	}
	if got := form.Value["_method"]; len(got) != 1 || got[0] != http.MethodPut {
		t.Errorf("Expected _method=PUT field, got %v", got)
	}

	file, err := form.File["avatar"][0].Open()
	if err != nil {
		t.Fatalf("Failed to open avatar part: %v", err)
	}
	defer file.Close()

	buf := new(strings.Builder)
	if _, err := io.Copy(buf, file); err != nil {
		t.Fatalf("Failed to read avatar part: %v", err)
	}
	if buf.String() != "imagebytes" {
		t.Errorf("Expected avatar bytes to round-trip, got %q", buf.String())
	}
}

func TestBuildMultipartWithoutOverride(t *testing.T) {
	body, contentType, err := buildMultipart([]byte("x"), map[string]string{}, "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	form, err := multipart.NewReader(body, params["boundary"]).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("Failed to parse multipart body: %v", err)
	}

	if len(form.Value["_method"]) != 0 {
		t.Error("Create must not carry a method override")
	}
}

func strPtr(s string) *string { return &s }
