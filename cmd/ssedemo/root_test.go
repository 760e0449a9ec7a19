package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRootCommand_RequiresExactlyOneArg(t *testing.T) {
	for _, args := range [][]string{{}, {"http://a", "http://b"}} {
		var out bytes.Buffer
		cmd := newRootCommand(&out)
		cmd.SetArgs(args)
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		if err := cmd.Execute(); err == nil {
			t.Errorf("expected error for args %v", args)
		}
	}
}

func TestRootCommand_InvalidURL(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand(&out)
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "none.yml"), "ftp://example.com"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for ftp url")
	}
	if !strings.Contains(err.Error(), "http or https") {
		t.Errorf("unexpected error %q", err.Error())
	}
}

func TestRootCommand_PrintsEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: hello\n\ndata: world\n\n")
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "ssedemo.yml")
	if err := os.WriteFile(cfgPath, []byte("reconnect:\n  disabled: true\nlog:\n  level: error\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out bytes.Buffer
	cmd := newRootCommand(&out)
	cmd.SetArgs([]string{"--config", cfgPath, "--env-file", filepath.Join(dir, "none.env"), srv.URL})
	if err := cmd.ExecuteContext(ctx); err != nil {
		t.Fatalf("execute: %v", err)
	}

	want := "Received Opened\nReceived Message(\"hello\")\nReceived Message(\"world\")\nReceived Closed\n"
	if out.String() != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, serveFlags{addr: "127.0.0.1:0", path: "/events", interval: 10 * time.Millisecond})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestRootCommand_Version(t *testing.T) {
	var stdout bytes.Buffer
	cmd := newRootCommand(io.Discard)
	cmd.SetArgs([]string{"--version"})
	cmd.SetOut(&stdout)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), appName+" version ") {
		t.Errorf("unexpected version output %q", stdout.String())
	}
}
