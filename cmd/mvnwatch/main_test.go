package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mvnwatch.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_RejectsConfigPlusWatchArgs(t *testing.T) {
	path := writeConfig(t, "targets:\n  - g1:a1\n")
	logger := log.New(io.Discard, "", 0)

	err := run(context.Background(), logger, path, "", time.Second, "", "", []string{"g2:a2"})
	if err == nil {
		t.Fatal("expected error when -config and watch coordinates are combined")
	}
}

func TestRun_AwaitAllowedWithConfig(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/com/example/demo/maven-metadata.xml", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<metadata>
  <versioning>
    <release>1.0</release>
    <versions><version>1.0</version></versions>
  </versioning>
</metadata>`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	path := writeConfig(t, "repository: "+server.URL+"\ntargets: []\n")
	logger := log.New(io.Discard, "", 0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, logger, path, "", time.Millisecond, "", "", []string{"com.example:demo:1.0"})
	if err != nil {
		t.Fatalf("await with config settings failed: %v", err)
	}
}
