package manager

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"veritor-hq/veritor/pkg/pcl/ast"
	"veritor-hq/veritor/pkg/pcl/compiler"
	"veritor-hq/veritor/pkg/policy/store"
	"veritor-hq/veritor/pkg/telemetry/metrics"
	"veritor-hq/veritor/pkg/verify"
)

// Auditor receives verification outcomes for durable recording.
// A nil auditor disables auditing.
type Auditor interface {
	RecordVerification(ctx context.Context, result *verify.Result)
}

// Config configures a Manager.
type Config struct {
	// PolicyPath is the policy definition file or directory.
	PolicyPath string

	// Loader controls file discovery and validation. Nil uses defaults.
	Loader *LoaderConfig

	// WatchDebounce is the watcher quiet period before a reload. Zero
	// uses the watcher default.
	WatchDebounce time.Duration

	// Store persists policy definitions across restarts. Nil disables
	// persistence.
	Store store.Backend

	// Auditor records verification outcomes. Nil disables auditing.
	Auditor Auditor

	// Metrics receives compilation and verification telemetry. Nil
	// disables metrics.
	Metrics *metrics.Metrics
}

// Manager owns the policy lifecycle: load, compile, publish, verify.
type Manager struct {
	config   *Config
	loader   *Loader
	compiler *compiler.Compiler
	engine   *verify.Engine
	registry *Registry
	logger   *slog.Logger

	mu          sync.RWMutex
	definitions map[string]*ast.Policy
}

// New creates a manager. Policies are not loaded until LoadAll or
// Reload is called.
func New(config *Config) *Manager {
	if config == nil {
		config = &Config{}
	}
	return &Manager{
		config:      config,
		loader:      NewLoader(config.Loader),
		compiler:    compiler.New(),
		engine:      verify.NewEngine(),
		registry:    NewRegistry(),
		logger:      slog.Default().With("component", "policy.manager"),
		definitions: make(map[string]*ast.Policy),
	}
}

// Registry exposes the compiled policy registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// LoadAll loads and compiles every policy under the configured path and
// publishes the compiled set atomically. Per-policy compile failures
// are aggregated; successfully compiled policies are still published.
func (m *Manager) LoadAll(ctx context.Context) error {
	return m.load(ctx, false)
}

// Reload re-runs LoadAll with rollback semantics: a policy whose new
// definition fails to compile keeps its previously published version
// instead of disappearing from the registry.
func (m *Manager) Reload(ctx context.Context) error {
	return m.load(ctx, true)
}

func (m *Manager) load(ctx context.Context, keepPrior bool) error {
	if m.config.PolicyPath == "" {
		return &LoadError{Message: "policy path is not configured"}
	}

	start := time.Now()
	policies, sources, loadErr := m.loadDefinitions()
	if policies == nil && loadErr != nil {
		return loadErr
	}

	errList := &ErrorList{}
	if le, ok := loadErr.(*ErrorList); ok {
		errList.Errors = append(errList.Errors, le.Errors...)
	} else if loadErr != nil {
		errList.Add(loadErr)
	}

	var compiled []*compiler.CompiledPolicy
	definitions := make(map[string]*ast.Policy, len(policies))
	for _, policy := range policies {
		compileStart := time.Now()
		cp, err := m.compiler.Compile(policy)
		if m.config.Metrics != nil {
			status := "ok"
			if err != nil {
				status = "error"
			}
			m.config.Metrics.RecordCompilation(policy.ID, status, time.Since(compileStart))
		}
		if err != nil {
			errList.Add(fmt.Errorf("policy %q: %w", policy.ID, err))
			if keepPrior {
				if prior, ok := m.registry.Get(policy.ID); ok {
					m.logger.Warn("recompilation failed, keeping prior version",
						"policy_id", policy.ID,
						"prior_compilation_id", prior.CompilationID,
					)
					compiled = append(compiled, prior)
					if def := m.definition(policy.ID); def != nil {
						definitions[policy.ID] = def
					}
				}
			}
			continue
		}
		compiled = append(compiled, cp)
		definitions[policy.ID] = policy

		if m.config.Store != nil {
			record := &store.PolicyRecord{
				ID:            cp.PolicyID,
				Version:       cp.PolicyVersion,
				Source:        sources[cp.PolicyID],
				SourceFile:    policy.SourceFile,
				CompilationID: cp.CompilationID,
				CompiledAt:    cp.CompiledAt,
			}
			if err := m.config.Store.Save(ctx, record); err != nil {
				m.logger.Error("failed to persist policy definition",
					"policy_id", cp.PolicyID,
					"error", err,
				)
			}
		}
	}

	if err := m.registry.Replace(compiled); err != nil {
		return err
	}
	if m.config.Metrics != nil {
		m.config.Metrics.SetRegisteredPolicies(m.registry.Count())
	}

	m.mu.Lock()
	m.definitions = definitions
	m.mu.Unlock()

	m.logger.Info("policy set published",
		"policies", len(compiled),
		"failures", len(errList.Errors),
		"registry_version", m.registry.Version(),
		"duration", time.Since(start),
	)

	if errList.HasErrors() {
		return errList
	}
	return nil
}

// loadDefinitions reads definitions from the configured path, which may
// be a single file or a directory.
func (m *Manager) loadDefinitions() ([]*ast.Policy, map[string][]byte, error) {
	info, err := os.Stat(m.config.PolicyPath)
	if err != nil {
		return nil, nil, &LoadError{FilePath: m.config.PolicyPath, Message: "failed to access path", Cause: err}
	}
	if info.IsDir() {
		return m.loader.LoadDirectory(m.config.PolicyPath)
	}

	policy, data, err := m.loader.LoadFile(m.config.PolicyPath)
	if err != nil {
		return nil, nil, err
	}
	return []*ast.Policy{policy}, map[string][]byte{policy.ID: data}, nil
}

// Verify runs a typed assignment against a registered policy.
func (m *Manager) Verify(ctx context.Context, policyID string, assignment verify.Assignment) (*verify.Result, error) {
	compiled, ok := m.registry.Get(policyID)
	if !ok {
		return nil, &RegistryError{PolicyID: policyID, Operation: "verify", Message: "policy not found"}
	}

	start := time.Now()
	result := m.engine.Verify(compiled, assignment)
	m.observe(ctx, result, time.Since(start))
	return result, nil
}

// VerifyRaw runs a loosely typed assignment against a registered policy.
func (m *Manager) VerifyRaw(ctx context.Context, policyID string, raw map[string]any) (*verify.Result, error) {
	compiled, ok := m.registry.Get(policyID)
	if !ok {
		return nil, &RegistryError{PolicyID: policyID, Operation: "verify", Message: "policy not found"}
	}

	start := time.Now()
	result := m.engine.VerifyRaw(compiled, raw)
	m.observe(ctx, result, time.Since(start))
	return result, nil
}

// observe fans a verification result out to the auditor and metrics.
func (m *Manager) observe(ctx context.Context, result *verify.Result, duration time.Duration) {
	if m.config.Auditor != nil {
		m.config.Auditor.RecordVerification(ctx, result)
	}
	if m.config.Metrics != nil {
		m.config.Metrics.RecordVerification(result.PolicyID, string(result.Classification), duration)
	}
}

// ExampleResult is the outcome of replaying one definition example.
type ExampleResult struct {
	Name     string
	Expected verify.Classification
	Actual   verify.Classification
	Passed   bool
	Detail   string
}

// RunExamples replays every example embedded in a policy definition
// against the current compiled version and reports pass/fail per
// example. Policies without examples return an empty slice.
func (m *Manager) RunExamples(ctx context.Context, policyID string) ([]ExampleResult, error) {
	compiled, ok := m.registry.Get(policyID)
	if !ok {
		return nil, &RegistryError{PolicyID: policyID, Operation: "run_examples", Message: "policy not found"}
	}
	definition := m.definition(policyID)
	if definition == nil {
		return nil, &RegistryError{PolicyID: policyID, Operation: "run_examples", Message: "definition not retained"}
	}

	results := make([]ExampleResult, 0, len(definition.Examples))
	for _, example := range definition.Examples {
		result := m.engine.VerifyRaw(compiled, example.Variables)
		expected := verify.Classification(strings.ToLower(example.ExpectedResult))
		er := ExampleResult{
			Name:     example.Name,
			Expected: expected,
			Actual:   result.Classification,
			Passed:   result.Classification == expected,
			Detail:   result.Explanation,
		}
		if !er.Passed {
			m.logger.Warn("example regression",
				"policy_id", policyID,
				"example", example.Name,
				"expected", expected,
				"actual", result.Classification,
			)
		}
		results = append(results, er)
	}
	return results, nil
}

// Watch blocks watching the policy path and reloading on changes until
// the context is cancelled.
func (m *Manager) Watch(ctx context.Context) error {
	watcher, err := NewFileWatcher(&FileWatcherConfig{
		Path:             m.config.PolicyPath,
		DebounceInterval: m.config.WatchDebounce,
	}, m.logger)
	if err != nil {
		return err
	}
	return watcher.Watch(ctx, func() error {
		return m.Reload(ctx)
	})
}

func (m *Manager) definition(policyID string) *ast.Policy {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.definitions[policyID]
}
