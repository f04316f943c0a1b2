package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// Request is one logical API call. The client may send it twice: once, and once more after
// a credential refresh.
type Request struct {
	Method string
	Path   string // Relative to the base URL, e.g. "/restaurants"
	Query  url.Values
	Header http.Header

	// Body is JSON encoded when set. RawBody is sent verbatim with ContentType instead.
	Body        any
	RawBody     []byte
	ContentType string

	// SkipRefresh turns a 401 into a plain RequestFailedError. Used for the auth endpoints,
	// where 401 means wrong credentials rather than a stale session.
	SkipRefresh bool
}

// Response is a successful (< 400) API response with its body read into memory.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v. Empty bodies and a nil v are no-ops.
func (r *Response) Decode(v any) error {
	if r == nil || v == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// encode returns the body bytes and content type once, so a retry resends identical bytes.
func (r *Request) encode() ([]byte, string, error) {
	if r.RawBody != nil {
		return r.RawBody, r.ContentType, nil
	}
	if r.Body == nil {
		return nil, "", nil
	}
	data, err := json.Marshal(r.Body)
	if err != nil {
		return nil, "", fmt.Errorf("encode request body: %w", err)
	}
	return data, "application/json", nil
}

// MultipartFile is a file part for NewMultipartRequest.
type MultipartFile struct {
	Field    string
	FileName string
	Content  io.Reader
}

// NewMultipartRequest builds a multipart/form-data POST. The body is buffered in memory so
// the request can be resent after a refresh.
func NewMultipartRequest(path string, fields map[string]string, file MultipartFile) (*Request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if file.Content != nil {
		part, err := w.CreateFormFile(file.Field, file.FileName)
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, fmt.Errorf("copy %s: %w", file.FileName, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	return &Request{
		Method:      http.MethodPost,
		Path:        path,
		RawBody:     buf.Bytes(),
		ContentType: w.FormDataContentType(),
	}, nil
}
