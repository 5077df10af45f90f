package upload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"strconv"
	"strings"
)

const authHint = " The client expects token, signature, and expire for authentication."

// PostTransformation is a derived asset generated after upload.
type PostTransformation struct {
	// Type is "transformation", "gif-to-video", "thumbnail" or "abs".
	Type     string `json:"type"`
	Value    string `json:"value,omitempty"`
	Protocol string `json:"protocol,omitempty"`
}

// Transformation requests pre-upload and post-upload processing.
type Transformation struct {
	Pre  string               `json:"pre,omitempty"`
	Post []PostTransformation `json:"post,omitempty"`
}

// ProgressFunc receives the number of body bytes sent so far. total is -1
// when the body size is not known in advance.
type ProgressFunc func(sent, total int64)

// Request describes one upload. Exactly one of File or FileContent is used;
// FileContent holds a remote URL or base64 data and is sent as a plain field.
type Request struct {
	File        io.Reader
	FileContent string
	FileName    string

	PublicKey string
	Token     string
	Signature string
	Expire    int64

	UseUniqueFileName       *bool
	Tags                    []string
	Folder                  string
	IsPrivateFile           *bool
	CustomCoordinates       string
	ResponseFields          []string
	Extensions              []map[string]any
	WebhookURL              string
	OverwriteFile           *bool
	OverwriteAITags         *bool
	OverwriteTags           *bool
	OverwriteCustomMetadata *bool
	CustomMetadata          map[string]any
	Transformation          *Transformation
	Checks                  string
	IsPublished             *bool
	Description             string

	Progress ProgressFunc
}

// Bool returns a pointer to v for the optional flag fields of Request.
func Bool(v bool) *bool {
	return &v
}

// Validate checks the request in the order the upload API documents its
// required fields and returns the first problem as an ErrInvalidRequest.
func (r *Request) Validate() error {
	if r.File == nil && r.FileContent == "" {
		return invalid("Missing file parameter for upload")
	}
	if r.FileName == "" {
		return invalid("Missing fileName parameter for upload")
	}
	if r.PublicKey == "" {
		return invalid("Missing public key for upload")
	}
	if r.Token == "" {
		return invalid("Missing token for upload." + authHint)
	}
	if r.Signature == "" {
		return invalid("Missing signature for upload." + authHint)
	}
	if r.Expire == 0 {
		return invalid("Missing expire for upload." + authHint)
	}
	if r.Transformation != nil {
		return r.Transformation.validate()
	}
	return nil
}

func (t *Transformation) validate() error {
	if t.Pre == "" && len(t.Post) == 0 {
		return invalid("Invalid transformation parameter. Please include at least pre, post, or both.")
	}
	if t.Pre != "" && strings.TrimSpace(t.Pre) == "" {
		return invalid("Invalid pre transformation parameter.")
	}
	for _, post := range t.Post {
		switch post.Type {
		case "abs":
			if post.Protocol == "" && post.Value == "" {
				return invalid("Invalid post transformation parameter.")
			}
		case "transformation":
			if post.Value == "" {
				return invalid("Invalid post transformation parameter.")
			}
		case "gif-to-video", "thumbnail":
		default:
			return invalid("Invalid post transformation parameter.")
		}
	}
	return nil
}

// body is an encoded multipart request. The file part, when present, is
// streamed between prefix and suffix.
type body struct {
	contentType string
	prefix      []byte
	file        io.Reader
	suffix      []byte
	size        int64
}

func (b *body) reader() io.Reader {
	if b.file == nil {
		return bytes.NewReader(b.prefix)
	}
	return io.MultiReader(bytes.NewReader(b.prefix), b.file, bytes.NewReader(b.suffix))
}

// encode writes every form field. Text fields come first and the file part
// last so the file can be streamed without buffering.
func (r *Request) encode() (*body, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct {
		name  string
		value string
		set   bool
	}{
		{"fileName", r.FileName, true},
		{"useUniqueFileName", formatBool(r.UseUniqueFileName), r.UseUniqueFileName != nil},
		{"tags", strings.Join(r.Tags, ","), len(r.Tags) > 0},
		{"folder", r.Folder, r.Folder != ""},
		{"isPrivateFile", formatBool(r.IsPrivateFile), r.IsPrivateFile != nil},
		{"customCoordinates", r.CustomCoordinates, r.CustomCoordinates != ""},
		{"responseFields", strings.Join(r.ResponseFields, ","), len(r.ResponseFields) > 0},
		{"webhookUrl", r.WebhookURL, r.WebhookURL != ""},
		{"overwriteFile", formatBool(r.OverwriteFile), r.OverwriteFile != nil},
		{"overwriteAITags", formatBool(r.OverwriteAITags), r.OverwriteAITags != nil},
		{"overwriteTags", formatBool(r.OverwriteTags), r.OverwriteTags != nil},
		{"overwriteCustomMetadata", formatBool(r.OverwriteCustomMetadata), r.OverwriteCustomMetadata != nil},
		{"checks", r.Checks, r.Checks != ""},
		{"isPublished", formatBool(r.IsPublished), r.IsPublished != nil},
		{"description", r.Description, r.Description != ""},
		{"publicKey", r.PublicKey, true},
		{"signature", r.Signature, true},
		{"expire", strconv.FormatInt(r.Expire, 10), true},
		{"token", r.Token, true},
	}
	for _, f := range fields {
		if !f.set {
			continue
		}
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("upload: write field %s: %w", f.name, err)
		}
	}

	jsonFields := []struct {
		name  string
		value any
		set   bool
	}{
		{"extensions", r.Extensions, len(r.Extensions) > 0},
		{"customMetadata", r.CustomMetadata, r.CustomMetadata != nil},
		{"transformation", r.Transformation, r.Transformation != nil},
	}
	for _, f := range jsonFields {
		if !f.set {
			continue
		}
		data, err := json.Marshal(f.value)
		if err != nil {
			return nil, fmt.Errorf("upload: encode %s: %w", f.name, err)
		}
		if err := w.WriteField(f.name, string(data)); err != nil {
			return nil, fmt.Errorf("upload: write field %s: %w", f.name, err)
		}
	}

	out := &body{contentType: w.FormDataContentType(), size: -1}
	if r.File == nil {
		if err := w.WriteField("file", r.FileContent); err != nil {
			return nil, fmt.Errorf("upload: write field file: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("upload: close form: %w", err)
		}
		out.prefix = buf.Bytes()
		out.size = int64(len(out.prefix))
		return out, nil
	}

	if _, err := w.CreateFormFile("file", r.FileName); err != nil {
		return nil, fmt.Errorf("upload: create file part: %w", err)
	}
	out.prefix = append([]byte(nil), buf.Bytes()...)
	buf.Reset()
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("upload: close form: %w", err)
	}
	out.suffix = append([]byte(nil), buf.Bytes()...)
	out.file = r.File
	if n, ok := readerSize(r.File); ok {
		out.size = int64(len(out.prefix)) + n + int64(len(out.suffix))
	}
	return out, nil
}

func formatBool(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}

// readerSize reports the remaining length of readers that know it.
func readerSize(r io.Reader) (int64, bool) {
	switch v := r.(type) {
	case interface{ Len() int }:
		return int64(v.Len()), true
	case *os.File:
		info, err := v.Stat()
		if err != nil || !info.Mode().IsRegular() {
			return 0, false
		}
		offset, err := v.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, false
		}
		return info.Size() - offset, true
	}
	return 0, false
}
