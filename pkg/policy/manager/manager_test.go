package manager

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"veritor-hq/veritor/pkg/pcl/ast"
	"veritor-hq/veritor/pkg/policy/store"
	"veritor-hq/veritor/pkg/verify"
)

const validPolicyYAML = `
id: leave-policy
name: Leave Policy
version: "1.0.0"
variables:
  - name: employee_type
    type: enum
    possible_values: [permanent, contractor]
  - name: requested_days
    type: number
rules:
  - id: contractor-cap
    description: Contractors may take at most ten days
    condition: employee_type == "contractor" AND requested_days > 10
    conclusion: invalid
    priority: 10
constraints:
  - requested_days > 0
examples:
  - name: short leave is fine
    variables:
      employee_type: permanent
      requested_days: 3
    expected_result: valid
  - name: contractor over cap
    variables:
      employee_type: contractor
      requested_days: 12
    expected_result: invalid
`

const brokenPolicyYAML = `
id: leave-policy
name: Leave Policy
version: "2.0.0"
variables:
  - name: requested_days
    type: number
rules:
  - id: broken
    condition: requsted_days >
    conclusion: invalid
`

func writePolicyDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile(%q) error = %v", name, err)
		}
	}
	return dir
}

func TestManagerLoadAll(t *testing.T) {
	dir := writePolicyDir(t, map[string]string{"leave.yaml": validPolicyYAML})
	m := New(&Config{PolicyPath: dir})

	if err := m.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if m.Registry().Count() != 1 {
		t.Fatalf("Count() = %d, want 1", m.Registry().Count())
	}
	compiled, ok := m.Registry().Get("leave-policy")
	if !ok {
		t.Fatal("Get(leave-policy) returned false")
	}
	if compiled.PolicyVersion != "1.0.0" {
		t.Errorf("PolicyVersion = %q", compiled.PolicyVersion)
	}
}

func TestManagerVerify(t *testing.T) {
	dir := writePolicyDir(t, map[string]string{"leave.yaml": validPolicyYAML})
	m := New(&Config{PolicyPath: dir})
	if err := m.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}

	result, err := m.VerifyRaw(context.Background(), "leave-policy", map[string]any{
		"employee_type":  "contractor",
		"requested_days": 12,
	})
	if err != nil {
		t.Fatalf("VerifyRaw() error = %v", err)
	}
	if result.Classification != verify.ClassificationInvalid {
		t.Errorf("Classification = %q, want invalid", result.Classification)
	}

	if _, err := m.VerifyRaw(context.Background(), "no-such-policy", nil); err == nil {
		t.Error("VerifyRaw() with unknown policy expected error, got nil")
	}
}

func TestManagerVerifyTyped(t *testing.T) {
	dir := writePolicyDir(t, map[string]string{"leave.yaml": validPolicyYAML})
	m := New(&Config{PolicyPath: dir})
	if err := m.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}

	result, err := m.Verify(context.Background(), "leave-policy", verify.Assignment{
		"employee_type":  ast.EnumVal("permanent"),
		"requested_days": ast.NumberVal(3),
	})
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if result.Classification != verify.ClassificationValid {
		t.Errorf("Classification = %q, want valid", result.Classification)
	}
}

func TestManagerReloadKeepsPriorOnCompileFailure(t *testing.T) {
	dir := writePolicyDir(t, map[string]string{"leave.yaml": validPolicyYAML})
	m := New(&Config{PolicyPath: dir})
	if err := m.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	prior, _ := m.Registry().Get("leave-policy")

	// Replace the definition with one that fails to compile.
	if err := os.WriteFile(filepath.Join(dir, "leave.yaml"), []byte(brokenPolicyYAML), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	err := m.Reload(context.Background())
	if err == nil {
		t.Fatal("Reload() with broken definition expected error, got nil")
	}

	kept, ok := m.Registry().Get("leave-policy")
	if !ok {
		t.Fatal("policy vanished after failed reload")
	}
	if kept.CompilationID != prior.CompilationID {
		t.Errorf("CompilationID = %q, want prior %q", kept.CompilationID, prior.CompilationID)
	}
	if kept.PolicyVersion != "1.0.0" {
		t.Errorf("PolicyVersion = %q, want prior 1.0.0", kept.PolicyVersion)
	}
}

func TestManagerReloadSwapsOnSuccess(t *testing.T) {
	dir := writePolicyDir(t, map[string]string{"leave.yaml": validPolicyYAML})
	m := New(&Config{PolicyPath: dir})
	if err := m.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	prior, _ := m.Registry().Get("leave-policy")

	if err := m.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	next, _ := m.Registry().Get("leave-policy")
	if next.CompilationID == prior.CompilationID {
		t.Error("CompilationID unchanged after reload, want a fresh compilation")
	}
}

func TestManagerRunExamples(t *testing.T) {
	dir := writePolicyDir(t, map[string]string{"leave.yaml": validPolicyYAML})
	m := New(&Config{PolicyPath: dir})
	if err := m.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}

	results, err := m.RunExamples(context.Background(), "leave-policy")
	if err != nil {
		t.Fatalf("RunExamples() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("example %q failed: expected %q, got %q", r.Name, r.Expected, r.Actual)
		}
	}
}

func TestManagerPersistsToStore(t *testing.T) {
	dir := writePolicyDir(t, map[string]string{"leave.yaml": validPolicyYAML})
	backend := store.NewMemoryBackend()
	m := New(&Config{PolicyPath: dir, Store: backend})
	if err := m.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}

	record, err := backend.Get(context.Background(), "leave-policy")
	if err != nil {
		t.Fatalf("store Get() error = %v", err)
	}
	if record.Version != "1.0.0" {
		t.Errorf("stored Version = %q", record.Version)
	}
	if len(record.Source) == 0 {
		t.Error("stored Source is empty")
	}
	compiled, _ := m.Registry().Get("leave-policy")
	if record.CompilationID != compiled.CompilationID {
		t.Errorf("stored CompilationID = %q, want %q", record.CompilationID, compiled.CompilationID)
	}
}

type captureAuditor struct {
	mu      sync.Mutex
	results []*verify.Result
}

func (c *captureAuditor) RecordVerification(_ context.Context, result *verify.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
}

func TestManagerAuditsVerifications(t *testing.T) {
	dir := writePolicyDir(t, map[string]string{"leave.yaml": validPolicyYAML})
	auditor := &captureAuditor{}
	m := New(&Config{PolicyPath: dir, Auditor: auditor})
	if err := m.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}

	if _, err := m.VerifyRaw(context.Background(), "leave-policy", map[string]any{
		"employee_type":  "permanent",
		"requested_days": 3,
	}); err != nil {
		t.Fatalf("VerifyRaw() error = %v", err)
	}

	auditor.mu.Lock()
	defer auditor.mu.Unlock()
	if len(auditor.results) != 1 {
		t.Fatalf("auditor captured %d results, want 1", len(auditor.results))
	}
	if auditor.results[0].PolicyID != "leave-policy" {
		t.Errorf("audited PolicyID = %q", auditor.results[0].PolicyID)
	}
}

func TestManagerLoadAllAggregatesPartialFailures(t *testing.T) {
	dir := writePolicyDir(t, map[string]string{
		"good.yaml": validPolicyYAML,
		"bad.yaml":  "id: bad\nrules: [unclosed",
	})
	m := New(&Config{PolicyPath: dir})

	err := m.LoadAll(context.Background())
	if err == nil {
		t.Fatal("LoadAll() with a broken file expected error, got nil")
	}
	// The good policy is still published.
	if _, ok := m.Registry().Get("leave-policy"); !ok {
		t.Error("good policy not published despite partial failure")
	}
}

func TestManagerSingleFilePath(t *testing.T) {
	dir := writePolicyDir(t, map[string]string{"leave.yaml": validPolicyYAML})
	m := New(&Config{PolicyPath: filepath.Join(dir, "leave.yaml")})

	if err := m.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if m.Registry().Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Registry().Count())
	}
}
