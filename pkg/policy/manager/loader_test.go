package manager

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoaderLoadFile(t *testing.T) {
	dir := writePolicyDir(t, map[string]string{"leave.yaml": validPolicyYAML})
	loader := NewLoader(nil)

	policy, data, err := loader.LoadFile(filepath.Join(dir, "leave.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if policy.ID != "leave-policy" {
		t.Errorf("ID = %q", policy.ID)
	}
	if len(data) == 0 {
		t.Error("raw source is empty")
	}
}

func TestLoaderLoadFileMissing(t *testing.T) {
	loader := NewLoader(nil)
	_, _, err := loader.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("LoadFile() missing file expected error, got nil")
	}
	if !strings.Contains(err.Error(), "file not found") {
		t.Errorf("error = %v, want file not found", err)
	}
}

func TestLoaderRejectsOversizedFile(t *testing.T) {
	dir := writePolicyDir(t, map[string]string{"leave.yaml": validPolicyYAML})
	loader := NewLoader(&LoaderConfig{
		MaxFileSize:       10,
		AllowedExtensions: []string{".yaml"},
	})

	_, _, err := loader.LoadFile(filepath.Join(dir, "leave.yaml"))
	if err == nil {
		t.Fatal("LoadFile() oversized expected error, got nil")
	}
	if !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("error = %v, want size message", err)
	}
}

func TestLoaderRejectsInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0xfd}, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, _, err := NewLoader(nil).LoadFile(path)
	if err == nil {
		t.Fatal("LoadFile() with invalid UTF-8 expected error, got nil")
	}
	if !strings.Contains(err.Error(), "UTF-8") {
		t.Errorf("error = %v, want UTF-8 message", err)
	}
}

func TestLoaderLoadDirectory(t *testing.T) {
	dir := writePolicyDir(t, map[string]string{
		"leave.yaml":  validPolicyYAML,
		"notes.txt":   "not a policy",
		".hidden.yml": validPolicyYAML,
	})

	policies, sources, err := NewLoader(nil).LoadDirectory(dir)
	if err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}
	if len(policies) != 1 {
		t.Fatalf("len(policies) = %d, want 1 (txt and hidden skipped)", len(policies))
	}
	if _, ok := sources["leave-policy"]; !ok {
		t.Error("sources missing leave-policy")
	}
}

func TestLoaderLoadDirectoryEmpty(t *testing.T) {
	_, _, err := NewLoader(nil).LoadDirectory(t.TempDir())
	if err == nil {
		t.Fatal("LoadDirectory() on empty dir expected error, got nil")
	}
	if !strings.Contains(err.Error(), "no policy files") {
		t.Errorf("error = %v, want no-policy-files message", err)
	}
}

func TestLoaderLoadDirectoryPartialFailure(t *testing.T) {
	dir := writePolicyDir(t, map[string]string{
		"good.yaml": validPolicyYAML,
		"bad.yaml":  "rules: [unclosed",
	})

	policies, _, err := NewLoader(nil).LoadDirectory(dir)
	if err == nil {
		t.Fatal("LoadDirectory() with broken file expected error, got nil")
	}
	if _, ok := err.(*ErrorList); !ok {
		t.Fatalf("error type = %T, want *ErrorList", err)
	}
	if len(policies) != 1 {
		t.Errorf("len(policies) = %d, want the good file loaded", len(policies))
	}
}
