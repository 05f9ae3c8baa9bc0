//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const sampleCSV = "internal/modules/weather/dataset/testdata/sample.csv"

// TestSmoke_Dashboard imports the sample dataset into a container-provisioned
// SQLite file and walks the dashboard pages, charts and JSON API.
func TestSmoke_Dashboard(t *testing.T) {
	root, err := filepath.Abs("..")
	if err != nil {
		t.Fatalf("abs: %v", err)
	}

	dbPath := sqliteFile(t)
	bin := filepath.Join(t.TempDir(), "weatherdash")
	build := exec.Command("go", "build", "-o", bin, "./cmd")
	build.Dir = root
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("go build: %v\n%s", err, out)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	server := exec.Command(bin)
	server.Env = append(os.Environ(),
		"APP_ENV=dev",
		"HTTP_ADDR="+addr,
		"DB_DRIVER=sqlite3",
		"SQLITE_PATH="+dbPath,
		"DATA_PATH="+filepath.Join(root, sampleCSV),
		"DATA_IMPORT_ON_START=true",
	)
	server.Stdout = os.Stdout
	server.Stderr = os.Stderr
	if err := server.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- server.Wait() }()
	t.Cleanup(func() { _ = server.Process.Kill() })

	base := "http://" + addr
	client := &http.Client{Timeout: 2 * time.Second}
	waitReady(t, client, base+"/readyz")

	checks := []struct {
		path, contentType, body string
	}{
		{"/", "text/html", "Weather"},
		{"/data", "text/html", "temperature_2m"},
		{"/visualization?variable=all&from=1&to=2", "text/html", "/charts/all?from=1&amp;to=2"},
		{"/charts/temperature?from=1&to=2", "image/png", "\x89PNG"},
		{"/charts/wind-direction", "image/png", "\x89PNG"},
		{"/api/v1/summary?from=1&to=1", "application/json", `"key":"temperature"`},
	}
	for _, c := range checks {
		body, ctype := get(t, client, base+c.path)
		if !strings.HasPrefix(ctype, c.contentType) {
			t.Errorf("GET %s content-type=%q want %s", c.path, ctype, c.contentType)
		}
		if !strings.Contains(body, c.body) {
			t.Errorf("GET %s body lacks %q", c.path, c.body)
		}
	}

	raw, _ := get(t, client, base+"/api/v1/dataset")
	var info struct {
		Rows int `json:"rows"`
	}
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		t.Fatalf("decode dataset info: %v", err)
	}
	if info.Rows != 6 {
		t.Errorf("dataset rows=%d want 6", info.Rows)
	}

	_ = server.Process.Signal(syscall.SIGTERM)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("server exit: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down after SIGTERM")
	}
}

// sqliteFile has a sqlite3 container create an empty WAL database in a bind
// mounted temp dir and returns its host path.
func sqliteFile(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	ctx := context.Background()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:      "nouchka/sqlite3:latest",
			Entrypoint: []string{"sh", "-c"},
			Cmd:        []string{`sqlite3 /data/weather.db "PRAGMA journal_mode=WAL;" && echo ready && tail -f /dev/null`},
			HostConfigModifier: func(hc *container.HostConfig) {
				hc.Binds = append(hc.Binds, dir+":/data")
			},
			WaitingFor: wait.ForLog("ready").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("sqlite container: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	path := filepath.Join(dir, "weather.db")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file: %v", err)
	}
	return path
}

func waitReady(t *testing.T, client *http.Client, url string) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if resp, err := client.Get(url); err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("%s never returned 200", url)
}

func get(t *testing.T, client *http.Client, url string) (string, string) {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s status=%d", url, resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", url, err)
	}
	return string(b), resp.Header.Get("Content-Type")
}
