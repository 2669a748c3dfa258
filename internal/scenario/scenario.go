package scenario

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/arrayvc/internal/changeset"
	"github.com/roach88/arrayvc/internal/format"
)

// Scenario is one concurrent-commit fixture.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description,omitempty"`

	// Base is the tree both writers started from. Defaults to Snapshot.
	Base []Node `yaml:"base,omitempty"`

	// Snapshot is the tree produced by the previous commit.
	Snapshot []Node `yaml:"snapshot"`

	// PreviousLog states the previous commit's transaction log directly.
	PreviousLog *Log `yaml:"previous_log,omitempty"`

	// PreviousChanges is the previous commit's change set; its log is derived.
	PreviousChanges *Changes `yaml:"previous_changes,omitempty"`

	// Pending is the change set being committed.
	Pending Changes `yaml:"pending"`

	// Expect is checked by Check. If nil, any outcome passes.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Node is one entry of a snapshot listing.
type Node struct {
	ID   string `yaml:"id"`
	Path string `yaml:"path"`
	Type string `yaml:"type"`
}

// Changes is the YAML form of a change set.
type Changes struct {
	NewGroups         []NewNode          `yaml:"new_groups,omitempty"`
	NewArrays         []NewNode          `yaml:"new_arrays,omitempty"`
	UpdatedMetadata   []MetadataUpdate   `yaml:"updated_metadata,omitempty"`
	UpdatedAttributes []AttributesUpdate `yaml:"updated_attributes,omitempty"`
	Chunks            []ChunkWrite       `yaml:"chunks,omitempty"`
	DeletedGroups     []DeletedNode      `yaml:"deleted_groups,omitempty"`
	DeletedArrays     []DeletedNode      `yaml:"deleted_arrays,omitempty"`
}

// NewNode creates a group or array. Metadata is only used for arrays.
type NewNode struct {
	ID       string         `yaml:"id"`
	Path     string         `yaml:"path"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

// MetadataUpdate replaces an existing array's metadata.
type MetadataUpdate struct {
	ID       string         `yaml:"id"`
	Metadata map[string]any `yaml:"metadata"`
}

// AttributesUpdate sets a node's user attributes. Nil clears them.
type AttributesUpdate struct {
	ID         string         `yaml:"id"`
	Attributes map[string]any `yaml:"attributes,omitempty"`
}

// ChunkWrite writes one chunk. A nil Ref deletes it.
type ChunkWrite struct {
	ID    string              `yaml:"id"`
	Index []uint32            `yaml:"index"`
	Ref   *changeset.ChunkRef `yaml:"ref,omitempty"`
}

// DeletedNode deletes an existing group or array.
type DeletedNode struct {
	ID   string `yaml:"id"`
	Path string `yaml:"path"`
}

// Log is the YAML form of a transaction log.
type Log struct {
	NewGroups             map[string]string     `yaml:"new_groups,omitempty"`
	NewArrays             map[string]string     `yaml:"new_arrays,omitempty"`
	UpdatedUserAttributes []string              `yaml:"updated_user_attributes,omitempty"`
	UpdatedZarrMetadata   []string              `yaml:"updated_zarr_metadata,omitempty"`
	UpdatedChunks         map[string][][]uint32 `yaml:"updated_chunks,omitempty"`
	DeletedPaths          []string              `yaml:"deleted_paths,omitempty"`
	DeletedGroups         map[string]string     `yaml:"deleted_groups,omitempty"`
	DeletedArrays         map[string]string     `yaml:"deleted_arrays,omitempty"`
}

// Expect is the outcome a scenario asserts.
type Expect struct {
	// Outcome is "patched" or "failure".
	Outcome string `yaml:"outcome"`

	// Reasons are the expected conflict codes, in order. Only checked for
	// failures.
	Reasons []string `yaml:"reasons,omitempty"`

	// PendingChunks is the expected number of chunk writes left in a patched
	// change set.
	PendingChunks *int `yaml:"pending_chunks,omitempty"`
}

// Outcome values.
const (
	OutcomePatched = "patched"
	OutcomeFailure = "failure"
)

// Load reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a scenario.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario %q: %w", s.Name, err)
	}
	return &s, nil
}

// validateScenario checks required fields and converts every section once so
// later accessors only fail on programming errors.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if (s.PreviousLog == nil) == (s.PreviousChanges == nil) {
		return fmt.Errorf("exactly one of previous_log and previous_changes is required")
	}
	nodes, err := s.SnapshotNodes()
	if err != nil {
		return err
	}
	if _, err := s.BaseNodes(); err != nil {
		return err
	}
	log, err := s.PreviousTransactionLog()
	if err != nil {
		return err
	}
	if missing := log.UnlistedNodes(nodes); len(missing) > 0 {
		return fmt.Errorf("previous commit updated nodes missing from snapshot: %v", missing)
	}
	if _, err := s.Pending.ChangeSet(); err != nil {
		return fmt.Errorf("pending: %w", err)
	}
	if s.Expect != nil {
		switch s.Expect.Outcome {
		case OutcomePatched, OutcomeFailure:
		default:
			return fmt.Errorf("expect.outcome must be %s or %s, got %q", OutcomePatched, OutcomeFailure, s.Expect.Outcome)
		}
	}
	return nil
}

// SnapshotNodes returns the listing produced by the previous commit.
func (s *Scenario) SnapshotNodes() ([]format.NodeSnapshot, error) {
	nodes, err := convertNodes(s.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return nodes, nil
}

// BaseNodes returns the listing both writers started from.
func (s *Scenario) BaseNodes() ([]format.NodeSnapshot, error) {
	if s.Base == nil {
		return s.SnapshotNodes()
	}
	nodes, err := convertNodes(s.Base)
	if err != nil {
		return nil, fmt.Errorf("base: %w", err)
	}
	return nodes, nil
}

// PreviousTransactionLog returns the previous commit's log, stated or derived.
func (s *Scenario) PreviousTransactionLog() (*format.TransactionLog, error) {
	if s.PreviousLog != nil {
		log, err := s.PreviousLog.TransactionLog()
		if err != nil {
			return nil, fmt.Errorf("previous_log: %w", err)
		}
		return log, nil
	}
	if s.PreviousChanges == nil {
		return nil, fmt.Errorf("no previous commit")
	}
	cs, err := s.PreviousChanges.ChangeSet()
	if err != nil {
		return nil, fmt.Errorf("previous_changes: %w", err)
	}
	return cs.TransactionLog(), nil
}

func convertNodes(in []Node) ([]format.NodeSnapshot, error) {
	nodes := make([]format.NodeSnapshot, 0, len(in))
	seen := make(map[format.NodeID]bool, len(in))
	for i, n := range in {
		if n.ID == "" {
			return nil, fmt.Errorf("node %d: id is required", i)
		}
		id := format.NodeID(n.ID)
		if seen[id] {
			return nil, fmt.Errorf("node %d: duplicate id %s", i, n.ID)
		}
		seen[id] = true

		path, err := format.NewPath(n.Path)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
		typ := format.NodeType(n.Type)
		if !typ.Valid() {
			return nil, fmt.Errorf("node %s: type must be group or array, got %q", n.ID, n.Type)
		}
		nodes = append(nodes, format.NodeSnapshot{ID: id, Path: path, Type: typ})
	}
	return nodes, nil
}
