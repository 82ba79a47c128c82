package local

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/crimson-sun/apptimeline/internal/connector"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListMatchesTwoLevels(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "data", "application_1_0001", "stderr"), "x")
	writeFile(t, filepath.Join(root, "data", "application_1_0002", "stdout"), "x")
	writeFile(t, filepath.Join(root, "data", "application_1_0002", "nested", "deep"), "x")
	writeFile(t, filepath.Join(root, "data", "top-level"), "x")

	c := &Connector{}
	got, err := c.List(context.Background(), filepath.Join(root, "data", "*", "*"))
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	want := []string{
		filepath.Join(root, "data", "application_1_0001", "stderr"),
		filepath.Join(root, "data", "application_1_0002", "stdout"),
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestListSkipsHiddenAndMetadataFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "data", "application_1_0001", "stderr"), "15/09/10 10:00:00 INFO\n")
	writeFile(t, filepath.Join(root, "data", "application_1_0001", ".stderr.crc"), "crc")
	writeFile(t, filepath.Join(root, "data", "application_1_0001", "_SUCCESS"), "")

	got, err := (&Connector{}).List(context.Background(), filepath.Join(root, "data", "*", "*"))
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	want := filepath.Join(root, "data", "application_1_0001", "stderr")
	if len(got) != 1 || got[0] != want {
		t.Fatalf("got %v, want [%s]", got, want)
	}
}

func TestListFileScheme(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.log"), "x")

	c := &Connector{}
	got, err := c.List(context.Background(), "file://"+filepath.Join(root, "*.log"))
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %v, want one file", got)
	}
}

func TestListNoMatches(t *testing.T) {
	c := &Connector{}
	got, err := c.List(context.Background(), filepath.Join(t.TempDir(), "*", "*"))
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no files, got %v", got)
	}
}

func TestOpenTextGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stderr.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte("15/09/10 10:33:01 INFO compressed\n")); err != nil {
		t.Fatal(err)
	}
	zw.Close()
	f.Close()

	rc, err := connector.OpenText(context.Background(), &Connector{}, path)
	if err != nil {
		t.Fatalf("OpenText error: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if string(data) != "15/09/10 10:33:01 INFO compressed\n" {
		t.Fatalf("got %q", data)
	}
}

func TestRegistered(t *testing.T) {
	ctor, err := connector.Resolve("/var/log/*")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	c, err := ctor(connector.ConnectorConfig{})
	if err != nil {
		t.Fatalf("constructor error: %v", err)
	}
	if _, ok := c.(*Connector); !ok {
		t.Fatalf("got %T, want *local.Connector", c)
	}
}
