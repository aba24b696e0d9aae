package httpx

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestNewRequest_SetsBrowserHeaders(t *testing.T) {
	req, err := NewRequest(context.Background(), "https://example.com/page")
	if err != nil {
		t.Fatal(err)
	}
	if req.Method != http.MethodGet {
		t.Errorf("method = %s", req.Method)
	}
	if ua := req.Header.Get("User-Agent"); !strings.Contains(ua, "Firefox") {
		t.Errorf("User-Agent = %q", ua)
	}
	if enc := req.Header.Get("Accept-Encoding"); enc != "gzip, deflate" {
		t.Errorf("Accept-Encoding = %q", enc)
	}
	if lang := req.Header.Get("Accept-Language"); lang == "" {
		t.Error("Accept-Language not set")
	}
}

func TestNewRequest_InvalidURL(t *testing.T) {
	if _, err := NewRequest(context.Background(), "://bad"); err == nil {
		t.Error("expected error for malformed URL")
	}
}

func TestReadBody_Plain(t *testing.T) {
	resp := &http.Response{
		Header: http.Header{},
		Body:   io.NopCloser(strings.NewReader("hello body")),
	}
	got, err := ReadBody(resp, 1024)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello body" {
		t.Errorf("body = %q", got)
	}
}

func TestReadBody_Gzip(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write([]byte("compressed payload"))
	gz.Close()

	resp := &http.Response{
		Header: http.Header{"Content-Encoding": []string{"gzip"}},
		Body:   io.NopCloser(&buf),
	}
	got, err := ReadBody(resp, 1024)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "compressed payload" {
		t.Errorf("body = %q", got)
	}
}

func TestReadBody_LimitTruncates(t *testing.T) {
	resp := &http.Response{
		Header: http.Header{},
		Body:   io.NopCloser(strings.NewReader(strings.Repeat("x", 100))),
	}
	got, err := ReadBody(resp, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 10 {
		t.Errorf("len = %d, want 10", len(got))
	}
}

func TestReadBody_BadGzip(t *testing.T) {
	resp := &http.Response{
		Header: http.Header{"Content-Encoding": []string{"gzip"}},
		Body:   io.NopCloser(strings.NewReader("not gzip at all")),
	}
	if _, err := ReadBody(resp, 1024); err == nil {
		t.Error("expected error for corrupt gzip stream")
	}
}

func TestStatusErrorClassification(t *testing.T) {
	cases := []struct {
		code       int
		client     bool
		permission bool
	}{
		{http.StatusOK, false, false},
		{http.StatusBadRequest, true, false},
		{http.StatusUnauthorized, true, true},
		{http.StatusForbidden, true, true},
		{http.StatusNotFound, true, false},
		{http.StatusTooManyRequests, true, false},
		{http.StatusInternalServerError, false, false},
		{http.StatusBadGateway, false, false},
	}
	for _, tc := range cases {
		err := &StatusError{Code: tc.code, URL: "https://example.com"}
		if got := IsClientError(err); got != tc.client {
			t.Errorf("IsClientError(%d) = %v, want %v", tc.code, got, tc.client)
		}
		if got := IsPermissionDenied(err); got != tc.permission {
			t.Errorf("IsPermissionDenied(%d) = %v, want %v", tc.code, got, tc.permission)
		}
	}
}

func TestStatusClassifiersRejectOtherErrors(t *testing.T) {
	err := io.ErrUnexpectedEOF
	if IsClientError(err) {
		t.Error("IsClientError matched a non-status error")
	}
	if IsPermissionDenied(err) {
		t.Error("IsPermissionDenied matched a non-status error")
	}
}
