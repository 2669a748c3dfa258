package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/arrayvc/internal/conflict"
)

//go:embed schema.cue
var schemaCUE string

// Solver kinds.
const (
	KindBasic         = "basic"
	KindNoFastForward = "no_fast_forward"
)

// SolverConfig selects and configures a conflict.Solver.
type SolverConfig struct {
	Kind                     string
	OnChunkWriteConflicts    conflict.VersionSelection
	OnUserAttributesConflict conflict.VersionSelection
	OnZarrMetadataConflict   conflict.VersionSelection
	OnGroupCreationConflict  conflict.VersionSelection
	OnArrayCreationConflict  conflict.VersionSelection
}

// Default returns the configuration of an empty file: a basic solver that
// fails on every conflict.
func Default() SolverConfig {
	return SolverConfig{Kind: KindBasic}
}

// ConfigError is a configuration problem with its source position when CUE
// reports one.
type ConfigError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *ConfigError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads and parses a CUE configuration file.
func Load(path string) (SolverConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SolverConfig{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data, path)
	if err != nil {
		return SolverConfig{}, err
	}
	slog.Debug("solver config loaded", "path", path, "kind", cfg.Kind, "on_chunk_write_conflicts", cfg.OnChunkWriteConflicts)
	return cfg, nil
}

// Parse unifies CUE source with the embedded schema and decodes the solver
// section. filename is only used in error positions.
func Parse(data []byte, filename string) (SolverConfig, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		// The schema is embedded; failing to compile it is a build defect.
		panic(fmt.Sprintf("config: invalid embedded schema: %v", err))
	}

	user := ctx.CompileBytes(data, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return SolverConfig{}, formatCUEError(err)
	}

	v := schema.Unify(user)
	if err := v.Validate(); err != nil {
		return SolverConfig{}, formatCUEError(err)
	}

	solverVal := v.LookupPath(cue.ParsePath("solver"))

	kind, err := lookupString(solverVal, "kind")
	if err != nil {
		return SolverConfig{}, err
	}
	cfg := SolverConfig{Kind: kind}

	policies := []struct {
		field string
		dst   *conflict.VersionSelection
	}{
		{"on_chunk_write_conflicts", &cfg.OnChunkWriteConflicts},
		{"on_user_attributes_conflict", &cfg.OnUserAttributesConflict},
		{"on_zarr_metadata_conflict", &cfg.OnZarrMetadataConflict},
		{"on_group_creation_conflict", &cfg.OnGroupCreationConflict},
		{"on_array_creation_conflict", &cfg.OnArrayCreationConflict},
	}
	for _, p := range policies {
		s, err := lookupString(solverVal, p.field)
		if err != nil {
			return SolverConfig{}, err
		}
		sel, err := conflict.ParseVersionSelection(s)
		if err != nil {
			return SolverConfig{}, &ConfigError{Field: "solver." + p.field, Message: err.Error()}
		}
		*p.dst = sel
	}

	return cfg, nil
}

// Override applies command-line overrides. Empty strings leave the value
// unchanged.
func (c *SolverConfig) Override(kind, chunks string) error {
	if kind != "" {
		if kind != KindBasic && kind != KindNoFastForward {
			return &ConfigError{Field: "kind", Message: fmt.Sprintf("unknown solver kind %q: must be %s or %s", kind, KindBasic, KindNoFastForward)}
		}
		c.Kind = kind
	}
	if chunks != "" {
		sel, err := conflict.ParseVersionSelection(chunks)
		if err != nil {
			return &ConfigError{Field: "on_chunk_write_conflicts", Message: err.Error()}
		}
		c.OnChunkWriteConflicts = sel
	}
	return nil
}

// Solver builds the configured solver.
func (c SolverConfig) Solver() conflict.Solver {
	if c.Kind == KindNoFastForward {
		return conflict.NoFastForward{}
	}
	return &conflict.BasicSolver{
		OnChunkWriteConflicts:    c.OnChunkWriteConflicts,
		OnUserAttributesConflict: c.OnUserAttributesConflict,
		OnZarrMetadataConflict:   c.OnZarrMetadataConflict,
		OnGroupCreationConflict:  c.OnGroupCreationConflict,
		OnArrayCreationConflict:  c.OnArrayCreationConflict,
	}
}

// lookupString resolves a field to its concrete string, taking the schema
// default when the file leaves it open.
func lookupString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &ConfigError{Field: "solver." + field, Message: "missing", Pos: v.Pos()}
	}
	if def, ok := fv.Default(); ok {
		fv = def
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &ConfigError{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return &ConfigError{Field: "cue", Message: first.Error()}
}
