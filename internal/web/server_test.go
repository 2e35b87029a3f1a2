package web

import (
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"weatherstation/internal/reading"
	"weatherstation/internal/state"
)

func startServer(t *testing.T, cfg Config, store *state.Store) *Server {
	t.Helper()
	srv := NewServer(cfg, store)
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(); err != nil {
			t.Errorf("Serve: %v", err)
		}
	}()
	t.Cleanup(func() {
		if err := srv.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
		<-done
	})
	return srv
}

// tryGet dials the server and reads the whole response; the server
// closes the connection after writing, so reading to EOF captures it all.
func tryGet(addr net.Addr) (string, error) {
	port := addr.(*net.TCPAddr).Port
	conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return "", fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()
	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return "", fmt.Errorf("set read deadline: %w", err)
	}
	data, err := io.ReadAll(conn)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return string(data), nil
}

func get(t *testing.T, addr net.Addr) string {
	t.Helper()
	resp, err := tryGet(addr)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

var testCfg = Config{
	Port:         0,
	Backlog:      5,
	LockWait:     100 * time.Millisecond,
	WriteTimeout: 5 * time.Second,
}

func TestHandleServesCurrentReading(t *testing.T) {
	store := state.New()
	r := reading.Reading{
		Temperature: reading.Value{Int: 23, Micro: 456000},
		Pressure:    reading.Value{Int: 101, Micro: 325000},
		Humidity:    reading.Value{Int: 45, Micro: 120000},
	}
	if !store.Publish(r, time.Second) {
		t.Fatal("publish failed")
	}
	srv := startServer(t, testCfg, store)

	resp := get(t, srv.Addr())

	want := "HTTP/1.1 200 OK\r\nContent-Type: text/html\r\n\r\n" +
		string(reading.RenderPage(r))
	if resp != want {
		t.Errorf("response = %q; want %q", resp, want)
	}
	if !strings.Contains(resp, "Temperature: 23.456000 C") {
		t.Errorf("response missing temperature line: %q", resp)
	}
}

// Before the first sample lands the server still answers 200 with the
// default zero reading.
func TestHandleServesDefaultReading(t *testing.T) {
	srv := startServer(t, testCfg, state.New())

	resp := get(t, srv.Addr())

	if !strings.HasPrefix(resp, "HTTP/1.1 200 OK\r\n") {
		t.Fatalf("response = %q; want 200", resp)
	}
	if !strings.Contains(resp, "Temperature: 0.000000 C") {
		t.Errorf("response missing zero temperature: %q", resp)
	}
}

func TestHandleLockTimeout503(t *testing.T) {
	store := state.New()
	if !store.TryLock(0) {
		t.Fatal("TryLock failed")
	}
	defer store.Unlock()
	srv := startServer(t, testCfg, store)

	start := time.Now()
	resp := get(t, srv.Addr())
	elapsed := time.Since(start)

	if resp != "HTTP/1.1 503 Service Unavailable\r\n\r\n" {
		t.Errorf("response = %q; want bare 503", resp)
	}
	if elapsed < testCfg.LockWait {
		t.Errorf("responded after %v; want at least the %v lock wait", elapsed, testCfg.LockWait)
	}
	if elapsed > testCfg.LockWait+2*time.Second {
		t.Errorf("responded after %v; want close to the %v lock wait", elapsed, testCfg.LockWait)
	}
}

// With the lock held, every request spends the full lock wait inside the
// handler. Two concurrent clients must therefore take at least two lock
// waits end to end, proving connections are handled one at a time.
func TestServeHandlesConnectionsSequentially(t *testing.T) {
	store := state.New()
	if !store.TryLock(0) {
		t.Fatal("TryLock failed")
	}
	defer store.Unlock()
	srv := startServer(t, testCfg, store)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := tryGet(srv.Addr())
			if err != nil {
				t.Error(err)
				return
			}
			if !strings.HasPrefix(resp, "HTTP/1.1 503") {
				t.Errorf("response = %q; want 503", resp)
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	if elapsed < 2*testCfg.LockWait {
		t.Errorf("two requests finished in %v; sequential handling needs at least %v",
			elapsed, 2*testCfg.LockWait)
	}
}

func TestServeSurvivesManyClients(t *testing.T) {
	srv := startServer(t, testCfg, state.New())
	for i := 0; i < 5; i++ {
		if resp := get(t, srv.Addr()); !strings.HasPrefix(resp, "HTTP/1.1 200 OK\r\n") {
			t.Fatalf("request %d: response = %q; want 200", i, resp)
		}
	}
}

func TestListenBacklogUsesRequestedPort(t *testing.T) {
	ln, err := listenBacklog(0, 5)
	if err != nil {
		t.Fatalf("listenBacklog: %v", err)
	}
	defer ln.Close()
	addr, ok := ln.Addr().(*net.TCPAddr)
	if !ok {
		t.Fatalf("Addr() = %T; want *net.TCPAddr", ln.Addr())
	}
	if addr.Port == 0 {
		t.Error("expected kernel-assigned port, got 0")
	}
}
