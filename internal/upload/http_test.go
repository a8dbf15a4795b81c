package upload

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/zinc-sig/pst/internal/config"
)

func newTestHTTPAdapter(t *testing.T, service, endpoint string) Adapter {
	t.Helper()
	a, err := NewAdapter(config.Provider{
		Name:     service,
		Type:     config.TypeHTTP,
		Service:  service,
		Endpoint: endpoint,
	}, BuildOptions{UserAgent: "pst-test"})
	if err != nil {
		t.Fatalf("NewAdapter failed: %v", err)
	}
	return a
}

func TestHTTPAdapter0x0st(t *testing.T) {
	var gotName, gotBody, gotExpires, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		gotAgent = r.Header.Get("User-Agent")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("Failed to parse multipart form: %v", err)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("Missing file field: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		gotName = hdr.Filename
		gotBody = string(data)
		gotExpires = r.FormValue("expires")
		_, _ = io.WriteString(w, "https://0x0.st/abc.bin\n")
	}))
	defer server.Close()

	a := newTestHTTPAdapter(t, Service0x0st, server.URL)
	req := NewRequest(RequestParams{
		Payload:  []byte{0x00, 0x01, 0x02},
		Filename: "blob.bin",
		Kind:     KindBinary,
		Expires:  "48h",
	})

	res, err := a.Upload(context.Background(), req)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if res.URL != "https://0x0.st/abc.bin" {
		t.Errorf("Expected trimmed URL, got %q", res.URL)
	}
	if res.Provider != Service0x0st {
		t.Errorf("Expected provider %s, got %s", Service0x0st, res.Provider)
	}
	if gotName != "blob.bin" || gotBody != "\x00\x01\x02" {
		t.Errorf("Unexpected upload: name=%q body=%q", gotName, gotBody)
	}
	if gotExpires != "48" {
		t.Errorf("Expected expires=48, got %q", gotExpires)
	}
	if gotAgent != "pst-test" {
		t.Errorf("Expected user agent pst-test, got %q", gotAgent)
	}
}

func TestHTTPAdapterPasteRs(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantURL string
		wantErr ErrorKind
	}{
		{name: "full url", status: http.StatusCreated, body: "https://paste.rs/Xyz", wantURL: "https://paste.rs/Xyz"},
		{name: "bare id", status: http.StatusCreated, body: "Xyz\n", wantURL: "{server}/Xyz"},
		{name: "partial paste", status: http.StatusPartialContent, body: "https://paste.rs/Abc", wantURL: "https://paste.rs/Abc"},
		{name: "plain 200 is not accepted", status: http.StatusOK, body: "https://paste.rs/Q", wantErr: ErrRemoteRejected},
		{name: "empty body", status: http.StatusCreated, body: "", wantErr: ErrRemoteRejected},
		{name: "payload too large", status: http.StatusRequestEntityTooLarge, body: "too big", wantErr: ErrSizeExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var received string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				data, _ := io.ReadAll(r.Body)
				received = string(data)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			a := newTestHTTPAdapter(t, ServicePasteRs, server.URL)
			res, err := a.Upload(context.Background(), NewRequest(RequestParams{
				Payload: []byte("hello paste"), Filename: "paste.txt", Kind: KindText,
			}))

			if tt.wantErr != "" {
				if KindOf(err) != tt.wantErr {
					t.Fatalf("Expected %s, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Upload failed: %v", err)
			}
			want := strings.ReplaceAll(tt.wantURL, "{server}", server.URL)
			if res.URL != want {
				t.Errorf("Expected %s, got %s", want, res.URL)
			}
			if received != "hello paste" {
				t.Errorf("Expected raw body, got %q", received)
			}
		})
	}
}

func TestHTTPAdapterUguu(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("output") != "json" {
			t.Errorf("Expected output=json, got %q", r.URL.RawQuery)
		}
		if _, _, err := r.FormFile("files[]"); err != nil {
			t.Errorf("Missing files[] field: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"files":[{"url":"https://a.uguu.se/xyz.txt","name":"xyz.txt"}]}`)
	}))
	defer server.Close()

	a := newTestHTTPAdapter(t, ServiceUguu, server.URL)
	res, err := a.Upload(context.Background(), NewRequest(RequestParams{
		Payload: []byte("text"), Filename: "a.txt", Kind: KindText,
	}))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if res.URL != "https://a.uguu.se/xyz.txt" {
		t.Errorf("Unexpected URL %s", res.URL)
	}
}

func TestHTTPAdapterUguuFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"description":"file type not allowed"}`)
	}))
	defer server.Close()

	a := newTestHTTPAdapter(t, ServiceUguu, server.URL)
	_, err := a.Upload(context.Background(), NewRequest(RequestParams{Payload: []byte("x"), Filename: "a.exe"}))
	if KindOf(err) != ErrRemoteRejected {
		t.Fatalf("Expected RemoteRejected, got %v", err)
	}
	if !strings.Contains(err.Error(), "file type not allowed") {
		t.Errorf("Expected service description in error, got %v", err)
	}
}

func TestHTTPAdapterStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{http.StatusUnauthorized, ErrAuthFailure},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusServiceUnavailable, ErrTransport},
		{http.StatusGatewayTimeout, ErrTimeout},
		{http.StatusTeapot, ErrRemoteRejected},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "3")
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			a := newTestHTTPAdapter(t, ServiceX0at, server.URL)
			_, err := a.Upload(context.Background(), NewRequest(RequestParams{Payload: []byte("x"), Filename: "x.txt"}))
			pe, ok := err.(*ProviderError)
			if !ok {
				t.Fatalf("Expected *ProviderError, got %T", err)
			}
			if pe.Kind != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, pe.Kind)
			}
			if pe.Provider != ServiceX0at {
				t.Errorf("Expected provider name on error, got %q", pe.Provider)
			}
			if tt.want == ErrRateLimited && pe.RetryAfter != 3*time.Second {
				t.Errorf("Expected Retry-After 3s, got %v", pe.RetryAfter)
			}
		})
	}
}

func TestHTTPAdapterNonURLBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>maintenance</html>")
	}))
	defer server.Close()

	a := newTestHTTPAdapter(t, ServiceX0at, server.URL)
	_, err := a.Upload(context.Background(), NewRequest(RequestParams{Payload: []byte("x"), Filename: "x.txt"}))
	if KindOf(err) != ErrRemoteRejected {
		t.Errorf("Expected RemoteRejected, got %v", err)
	}
}

func TestHTTPAdapterSizeExceeded(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	a := newTestHTTPAdapter(t, ServicePasteRs, server.URL)
	big := make([]byte, 10*mib+1)
	_, err := a.Upload(context.Background(), NewRequest(RequestParams{Payload: big, Filename: "big.txt"}))
	if KindOf(err) != ErrSizeExceeded {
		t.Errorf("Expected SizeExceeded, got %v", err)
	}
	if called {
		t.Error("oversized payload must not reach the server")
	}
}

func TestHTTPAdapterTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	a := newTestHTTPAdapter(t, ServiceX0at, server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := a.Upload(ctx, NewRequest(RequestParams{Payload: []byte("x"), Filename: "x.txt"}))
	if KindOf(err) != ErrTimeout {
		t.Errorf("Expected Timeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Upload should return promptly after the timeout, took %v", elapsed)
	}
}

func TestHTTPAdapterConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	a := newTestHTTPAdapter(t, ServiceX0at, url)
	_, err := a.Upload(context.Background(), NewRequest(RequestParams{Payload: []byte("x"), Filename: "x.txt"}))
	if KindOf(err) != ErrTransport {
		t.Errorf("Expected Transport, got %v", err)
	}
}
