package netx

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDownloadFromPresignedURL(t *testing.T) {
	t.Run("success 200 OK", func(t *testing.T) {
		var gotMethod, gotQuery string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotQuery = r.URL.RawQuery
			_, _ = w.Write([]byte("%PDF-1.7 lesson"))
		}))
		defer ts.Close()

		var buf bytes.Buffer
		n, err := DownloadFromPresignedURL(context.Background(), ts.URL+"/mod_02/x.pdf?X-Amz-Signature=abc", &buf)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotMethod != http.MethodGet {
			t.Fatalf("method = %q, want GET", gotMethod)
		}
		if gotQuery != "X-Amz-Signature=abc" {
			t.Fatalf("query = %q", gotQuery)
		}
		if n != int64(buf.Len()) || buf.String() != "%PDF-1.7 lesson" {
			t.Fatalf("got %d bytes %q", n, buf.String())
		}
	})

	t.Run("expired signature", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("<Error><Code>AccessDenied</Code></Error>"))
		}))
		defer ts.Close()

		var buf bytes.Buffer
		_, err := DownloadFromPresignedURL(context.Background(), ts.URL, &buf)
		if err == nil {
			t.Fatalf("expected error")
		}
		if !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "AccessDenied") {
			t.Fatalf("error = %v", err)
		}
		if buf.Len() != 0 {
			t.Fatalf("nothing should be written on failure")
		}
	})

	t.Run("bad url", func(t *testing.T) {
		if _, err := DownloadFromPresignedURL(context.Background(), "://bad", &bytes.Buffer{}); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer ts.Close()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := DownloadFromPresignedURL(ctx, ts.URL, &bytes.Buffer{}); err == nil {
			t.Fatalf("expected error")
		}
	})
}
