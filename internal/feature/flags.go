package feature

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Flag represents a feature flag
type Flag string

// Feature flags for QuantaOpt
const (
	// Optimizer rules
	ColumnPruning     Flag = "column_pruning"
	RemoveNoopProject Flag = "remove_noop_project"

	// Validation
	PlanValidation Flag = "plan_validation"
)

// FlagMetadata contains metadata about a feature flag
type FlagMetadata struct {
	Name         Flag
	Description  string
	DefaultValue bool
	Category     string
	Stability    string // "stable", "beta", "experimental"
}

// Manager manages feature flags
type Manager struct {
	flags    map[Flag]*flagState
	mu       sync.RWMutex
	onChange []func(Flag, bool)
	metadata map[Flag]*FlagMetadata
}

// flagState represents the state of a single flag
type flagState struct {
	enabled    atomic.Bool
	overridden bool
	envVar     string
}

// Global feature flag manager
var globalManager = NewManager()

// NewManager creates a feature flag manager with every flag registered at its
// default value and environment overrides applied.
func NewManager() *Manager {
	m := &Manager{
		flags:    make(map[Flag]*flagState),
		metadata: make(map[Flag]*FlagMetadata),
		onChange: make([]func(Flag, bool), 0),
	}

	m.registerFlags()
	m.loadFromEnvironment()

	return m
}

// Global returns the process-wide manager.
func Global() *Manager {
	return globalManager
}

// registerFlags registers all feature flags with their metadata
func (m *Manager) registerFlags() {
	m.register(ColumnPruning, &FlagMetadata{
		Name:         ColumnPruning,
		Description:  "Prune unreferenced columns by inserting projections",
		DefaultValue: true,
		Category:     "rules",
		Stability:    "stable",
	})

	m.register(RemoveNoopProject, &FlagMetadata{
		Name:         RemoveNoopProject,
		Description:  "Remove projections that return their child's output unchanged",
		DefaultValue: true,
		Category:     "rules",
		Stability:    "stable",
	})

	m.register(PlanValidation, &FlagMetadata{
		Name:         PlanValidation,
		Description:  "Check plan resolution and root schema after every batch",
		DefaultValue: true,
		Category:     "validation",
		Stability:    "stable",
	})
}

// register adds a flag to the manager
func (m *Manager) register(flag Flag, metadata *FlagMetadata) {
	state := &flagState{
		envVar: flagToEnvVar(flag),
	}
	state.enabled.Store(metadata.DefaultValue)

	m.flags[flag] = state
	m.metadata[flag] = metadata
}

// loadFromEnvironment loads flag values from environment variables
func (m *Manager) loadFromEnvironment() {
	for _, state := range m.flags {
		if val := os.Getenv(state.envVar); val != "" {
			if enabled, err := strconv.ParseBool(val); err == nil {
				state.enabled.Store(enabled)
				state.overridden = true
			}
		}
	}
}

// IsEnabled checks if a feature flag is enabled
func IsEnabled(flag Flag) bool {
	return globalManager.IsEnabled(flag)
}

// IsEnabled checks if a feature flag is enabled
func (m *Manager) IsEnabled(flag Flag) bool {
	enabled, _ := m.Lookup(flag)
	return enabled
}

// Lookup returns the flag state and whether the flag is registered.
func (m *Manager) Lookup(flag Flag) (enabled bool, registered bool) {
	m.mu.RLock()
	state, exists := m.flags[flag]
	m.mu.RUnlock()

	if !exists {
		return false, false
	}
	return state.enabled.Load(), true
}

// Enable enables a feature flag
func Enable(flag Flag) {
	globalManager.Enable(flag)
}

// Enable enables a feature flag
func (m *Manager) Enable(flag Flag) {
	m.setFlag(flag, true)
}

// Disable disables a feature flag
func Disable(flag Flag) {
	globalManager.Disable(flag)
}

// Disable disables a feature flag
func (m *Manager) Disable(flag Flag) {
	m.setFlag(flag, false)
}

// Apply sets several flags by name, typically from a configuration file.
// Unknown names are rejected before any flag is changed.
func (m *Manager) Apply(values map[string]bool) error {
	m.mu.RLock()
	for name := range values {
		if _, exists := m.flags[Flag(name)]; !exists {
			m.mu.RUnlock()
			return fmt.Errorf("unknown feature flag %q", name)
		}
	}
	m.mu.RUnlock()

	for name, enabled := range values {
		m.setFlag(Flag(name), enabled)
	}
	return nil
}

// setFlag sets a flag value and notifies listeners
func (m *Manager) setFlag(flag Flag, enabled bool) {
	m.mu.RLock()
	state, exists := m.flags[flag]
	callbacks := m.onChange
	m.mu.RUnlock()

	if !exists {
		return
	}

	if state.enabled.Swap(enabled) != enabled {
		for _, cb := range callbacks {
			cb(flag, enabled)
		}
	}
}

// OnChange registers a callback for flag changes
func (m *Manager) OnChange(callback func(Flag, bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, callback)
}

// GetMetadata returns metadata for a flag
func (m *Manager) GetMetadata(flag Flag) (*FlagMetadata, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	metadata, exists := m.metadata[flag]
	return metadata, exists
}

// GetByCategory returns all flags in a category, sorted by name
func (m *Manager) GetByCategory(category string) []Flag {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Flag
	for flag, metadata := range m.metadata {
		if metadata.Category == category {
			result = append(result, flag)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// Reset resets all flags to their default values
func (m *Manager) Reset() {
	m.mu.RLock()
	flagsCopy := make(map[Flag]*flagState, len(m.flags))
	for k, v := range m.flags {
		flagsCopy[k] = v
	}
	m.mu.RUnlock()

	for flag, state := range flagsCopy {
		if metadata, exists := m.metadata[flag]; exists {
			m.setFlag(flag, metadata.DefaultValue)
			state.overridden = false
		}
	}
}

// flagToEnvVar converts a flag name to an environment variable name
func flagToEnvVar(flag Flag) string {
	return "QUANTAOPT_FEATURE_" + strings.ToUpper(string(flag))
}

// DebugString returns a debug string with all flag states
func (m *Manager) DebugString() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]Flag, 0, len(m.metadata))
	for flag := range m.metadata {
		names = append(names, flag)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	var b strings.Builder
	b.WriteString("Feature Flags:\n")
	for _, flag := range names {
		state := m.flags[flag]
		metadata := m.metadata[flag]

		status := "disabled"
		if state.enabled.Load() {
			status = "enabled"
		}
		override := ""
		if state.overridden {
			override = " (overridden)"
		}
		fmt.Fprintf(&b, "  %-24s: %-8s [%s/%s]%s - %s\n",
			flag, status, metadata.Category, metadata.Stability, override, metadata.Description)
	}

	return b.String()
}
