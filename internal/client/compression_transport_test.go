package client

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

const episodesPayload = `[{"id":1,"name":"Pilot","season":1,"number":1}]`

func compress(t *testing.T, encoding string, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	var w io.WriteCloser
	switch encoding {
	case "gzip":
		w = gzip.NewWriter(&buf)
	case "br":
		w = brotli.NewWriter(&buf)
	case "zstd":
		zw, err := zstd.NewWriter(&buf)
		if err != nil {
			t.Fatalf("zstd writer: %v", err)
		}
		w = zw
	default:
		return data
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("compress %s: %v", encoding, err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close %s writer: %v", encoding, err)
	}
	return buf.Bytes()
}

func TestCompressionTransport_Decodes(t *testing.T) {
	tests := []struct {
		name           string
		headerEncoding string
		bodyEncoding   string
	}{
		{"gzip", "gzip", "gzip"},
		{"brotli", "br", "br"},
		{"zstd", "zstd", "zstd"},
		{"identity", "", ""},
		{"comma list uses outermost", "identity, gzip", "gzip"},
		{"whitespace and case", " GZIP ", "gzip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := compress(t, tt.bodyEncoding, []byte(episodesPayload))
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Accept-Encoding") != acceptEncoding {
					t.Errorf("Expected Accept-Encoding %q, got %q", acceptEncoding, r.Header.Get("Accept-Encoding"))
				}
				if tt.headerEncoding != "" {
					w.Header().Set("Content-Encoding", tt.headerEncoding)
				}
				_, _ = w.Write(payload)
			}))
			defer server.Close()

			httpClient := &http.Client{Transport: newCompressionTransport(nil)}
			resp, err := httpClient.Get(server.URL)
			if err != nil {
				t.Fatalf("Failed to make request: %v", err)
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("Failed to read response body: %v", err)
			}
			if string(body) != episodesPayload {
				t.Errorf("Expected body %q, got %q", episodesPayload, body)
			}
			if tt.bodyEncoding != "" && resp.Header.Get("Content-Encoding") != "" {
				t.Errorf("Expected Content-Encoding to be removed, got %q", resp.Header.Get("Content-Encoding"))
			}
		})
	}
}

func TestCompressionTransport_PreserveExistingAcceptEncoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept-Encoding") != "identity" {
			t.Errorf("Expected caller's Accept-Encoding to be kept, got %q", r.Header.Get("Accept-Encoding"))
		}
		_, _ = w.Write([]byte(episodesPayload))
	}))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := (&http.Client{Transport: newCompressionTransport(nil)}).Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	resp.Body.Close()

	if req.Header.Get("Accept-Encoding") != "identity" {
		t.Error("Transport must not modify the caller's request")
	}
}

func TestCompressionTransport_UnknownEncoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "compress")
		_, _ = w.Write([]byte("raw"))
	}))
	defer server.Close()

	resp, err := (&http.Client{Transport: newCompressionTransport(nil)}).Get(server.URL)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "raw" {
		t.Errorf("Expected body returned as-is, got %q", body)
	}
	if resp.Header.Get("Content-Encoding") != "compress" {
		t.Errorf("Expected unknown Content-Encoding to be kept, got %q", resp.Header.Get("Content-Encoding"))
	}
}

func TestCompressionTransport_NoBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	resp, err := (&http.Client{Transport: newCompressionTransport(nil)}).Get(server.URL)
	if err != nil {
		t.Fatalf("Expected no error for empty body, got %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", resp.StatusCode)
	}
}

func TestCompressionTransport_CorruptGzip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write([]byte("definitely not gzip"))
	}))
	defer server.Close()

	if _, err := (&http.Client{Transport: newCompressionTransport(nil)}).Get(server.URL); err == nil {
		t.Fatal("Expected error for corrupt gzip body")
	}
}

func TestParseContentEncoding(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"   ", ""},
		{"gzip", "gzip"},
		{"BR", "br"},
		{"gzip, zstd", "zstd"},
		{"zstd ,", ""},
	}

	for _, tt := range tests {
		if got := parseContentEncoding(tt.header); got != tt.want {
			t.Errorf("parseContentEncoding(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
