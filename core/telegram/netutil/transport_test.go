package netutil

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
)

type scripted struct {
	errs  []error
	calls int
	body  []string
}

func (s *scripted) RoundTrip(req *http.Request) (*http.Response, error) {
	s.calls++
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		s.body = append(s.body, string(b))
	}
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: req}, nil
}

func TestRetryTransportRetriesIdempotentTimeout(t *testing.T) {
	base := &scripted{errs: []error{timeoutErr{}, nil}}
	rt := &RetryTransport{Base: base, MaxRetries: 2}
	req, _ := http.NewRequest(http.MethodGet, "http://example.test/api", nil)

	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	resp.Body.Close()
	if base.calls != 2 {
		t.Fatalf("calls = %d, want 2", base.calls)
	}
}

func TestRetryTransportPostRetriesOnlyDial(t *testing.T) {
	base := &scripted{errs: []error{timeoutErr{}}}
	rt := &RetryTransport{Base: base, MaxRetries: 2}
	req, _ := http.NewRequest(http.MethodPost, "http://example.test/api", strings.NewReader(`{"a":1}`))

	if _, err := rt.RoundTrip(req); err == nil {
		t.Fatal("expected error")
	}
	if base.calls != 1 {
		t.Fatalf("calls = %d, want 1", base.calls)
	}

	base = &scripted{errs: []error{&net.OpError{Op: "dial", Err: errors.New("refused")}, nil}}
	rt.Base = base
	req, _ = http.NewRequest(http.MethodPost, "http://example.test/api", strings.NewReader(`{"a":1}`))
	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	resp.Body.Close()
	if base.calls != 2 || base.body[1] != `{"a":1}` {
		t.Fatalf("calls = %d bodies = %q", base.calls, base.body)
	}
}
