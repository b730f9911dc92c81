package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseConfig_ValidMinimal(t *testing.T) {
	yaml := `
snippets:
  - ./add.json
  - ./sub.json
`
	cfg, err := ParseConfig([]byte(yaml), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Snippets) != 2 {
		t.Fatalf("expected 2 snippets, got %d", len(cfg.Snippets))
	}
	if cfg.Storage.Driver != DefaultStorageDriver {
		t.Errorf("expected default storage driver %q, got %q", DefaultStorageDriver, cfg.Storage.Driver)
	}
}

func TestParseConfig_RejectsEmptySnippetList(t *testing.T) {
	if _, err := ParseConfig([]byte("snippets: []"), "test.yaml"); err == nil {
		t.Fatal("expected an error for an empty snippets list")
	}
}

func TestParseConfig_RejectsUnsupportedStorageDriver(t *testing.T) {
	yaml := `
snippets: ["./a.json"]
storage:
  driver: postgres
`
	if _, err := ParseConfig([]byte(yaml), "test.yaml"); err == nil {
		t.Fatal("expected an error for an unsupported storage driver")
	}
}

func TestParseConfig_CarriesStorageDSN(t *testing.T) {
	yaml := `
snippets: ["./a.json"]
storage:
  dsn: "file:covenant.db"
`
	cfg, err := ParseConfig([]byte(yaml), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.DSN != "file:covenant.db" {
		t.Errorf("dsn = %q, want file:covenant.db", cfg.Storage.DSN)
	}
}

func TestFindConfig_WalksUpToParentDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "covenant.yaml"), []byte("snippets: [\"a.json\"]"), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	found, err := FindConfig(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantAbs, _ := filepath.Abs(filepath.Join(root, "covenant.yaml"))
	if found != wantAbs {
		t.Errorf("found = %q, want %q", found, wantAbs)
	}
}

func TestFindConfig_ReturnsEmptyWhenNotFound(t *testing.T) {
	found, err := FindConfig(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != "" {
		t.Errorf("expected empty path, got %q", found)
	}
}

func TestSnippetPaths_ResolvesRelativeToConfigDir(t *testing.T) {
	cfg := &Config{Snippets: []string{"a.json", "/abs/b.json"}}
	got := cfg.SnippetPaths("/proj")
	want := []string{"/proj/a.json", "/abs/b.json"}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("SnippetPaths[%d] = %q, want %q", i, got[i], w)
		}
	}
}
