package transport

import (
	"net"
	"os"
	"path/filepath"
	"testing"
)

func TestUnlinkIfSocketRemovesStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stale.sock")
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	ln.Close() // leaves the socket file behind, as an unclean shutdown would

	if err := unlinkIfSocket(path); err != nil {
		t.Fatalf("unlinkIfSocket: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("want the stale socket file removed")
	}
}

func TestUnlinkIfSocketRefusesNonSocketFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-socket")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := unlinkIfSocket(path); err != nil {
		t.Fatalf("unlinkIfSocket: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal("want a non-socket file left untouched")
	}
}

func TestUnlinkIfSocketMissingPathIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.sock")
	if err := unlinkIfSocket(path); err != nil {
		t.Fatalf("want no error for a missing path, got %v", err)
	}
}
