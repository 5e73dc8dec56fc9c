package bayesian

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func zipDocument(t *testing.T, members map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range members {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("failed to create zip member: %v", err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write zip member: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to finish zip: %v", err)
	}
	return buf.Bytes()
}

func TestLoadBytesPlainJSON(t *testing.T) {
	bn := mustLoadNetwork(t, twoNodeNetwork)
	if got := len(bn.Nodes()); got != 2 {
		t.Fatalf("loaded %d nodes, want 2", got)
	}
	node, ok := bn.Node("B")
	if !ok {
		t.Fatal("node B missing after load")
	}
	if len(node.ParentNames) != 1 || node.ParentNames[0] != "A" {
		t.Errorf("node B parents = %v, want [A]", node.ParentNames)
	}
}

func TestLoadBytesZip(t *testing.T) {
	data := zipDocument(t, map[string]string{"network.json": twoNodeNetwork})
	bn, err := LoadBytes(data)
	if err != nil {
		t.Fatalf("LoadBytes failed on zip input: %v", err)
	}
	if got := len(bn.Nodes()); got != 2 {
		t.Errorf("loaded %d nodes, want 2", got)
	}
}

func TestLoadBytesZipMultipleMembers(t *testing.T) {
	data := zipDocument(t, map[string]string{
		"network.json": twoNodeNetwork,
		"extra.json":   "{}",
	})
	if _, err := LoadBytes(data); !errors.Is(err, ErrMalformedModel) {
		t.Errorf("expected ErrMalformedModel for multi-member archive, got %v", err)
	}
}

func TestLoadBytesMalformedJSON(t *testing.T) {
	if _, err := LoadBytes([]byte(`{"nodes": [`)); !errors.Is(err, ErrMalformedModel) {
		t.Errorf("expected ErrMalformedModel, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "network.json")
	if err := os.WriteFile(plain, []byte(twoNodeNetwork), 0o644); err != nil {
		t.Fatalf("failed to write model file: %v", err)
	}
	if _, err := Load(plain); err != nil {
		t.Errorf("Load failed on JSON file: %v", err)
	}

	zipped := filepath.Join(dir, "network.zip")
	if err := os.WriteFile(zipped, zipDocument(t, map[string]string{"network.json": twoNodeNetwork}), 0o644); err != nil {
		t.Fatalf("failed to write zip file: %v", err)
	}
	if _, err := Load(zipped); err != nil {
		t.Errorf("Load failed on zip file: %v", err)
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
