package api

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
)

// The stream handler hijacks the connection for the websocket upgrade, so the
// status-capturing wrappers installed by the metrics and logging middleware
// must expose Hijack on the real connection underneath.
func TestStatusCaptureHijacksThroughChain(t *testing.T) {
	var _ http.Hijacker = (*statusCapture)(nil)

	hijacked := make(chan error, 1)
	h := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			hijacked <- http.ErrNotSupported
			return
		}
		conn, _, err := hj.Hijack()
		if err == nil {
			conn.Close()
		}
		hijacked <- err
	}), recoveryMiddleware, requestIDMiddleware, loggerMiddleware,
		metricsMiddleware(NewMetrics()), loggingMiddleware)

	ts := httptest.NewServer(h)
	defer ts.Close()

	// Raw request: the client side of a hijacked connection never gets a
	// normal HTTP response, so http.Client would choke on it.
	conn, err := net.Dial("tcp", ts.Listener.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("GET / HTTP/1.1\r\nHost: test\r\n\r\n")); err != nil {
		t.Fatalf("write request: %v", err)
	}

	if err := <-hijacked; err != nil {
		t.Fatalf("hijack through middleware chain: %v", err)
	}
}
