package scenario

import (
	"fmt"

	"github.com/roach88/arrayvc/internal/changeset"
	"github.com/roach88/arrayvc/internal/format"
)

// ChangeSet builds a change set by applying each section in order: creations,
// updates, chunk writes, then deletions.
func (c Changes) ChangeSet() (*changeset.ChangeSet, error) {
	cs := changeset.New()

	for _, g := range c.NewGroups {
		path, err := format.NewPath(g.Path)
		if err != nil {
			return nil, fmt.Errorf("new group: %w", err)
		}
		cs.AddGroup(path, format.NodeID(g.ID))
	}
	for _, a := range c.NewArrays {
		path, err := format.NewPath(a.Path)
		if err != nil {
			return nil, fmt.Errorf("new array: %w", err)
		}
		cs.AddArray(path, format.NodeID(a.ID), changeset.ArrayMetadata(a.Metadata))
	}
	for _, u := range c.UpdatedMetadata {
		if u.ID == "" {
			return nil, fmt.Errorf("metadata update: id is required")
		}
		cs.UpdateArray(format.NodeID(u.ID), changeset.ArrayMetadata(u.Metadata))
	}
	for _, u := range c.UpdatedAttributes {
		if u.ID == "" {
			return nil, fmt.Errorf("attributes update: id is required")
		}
		var attrs changeset.UserAttributes
		if u.Attributes != nil {
			attrs = changeset.UserAttributes(u.Attributes)
		}
		cs.UpdateUserAttributes(format.NodeID(u.ID), attrs)
	}
	for _, w := range c.Chunks {
		if w.ID == "" {
			return nil, fmt.Errorf("chunk write: id is required")
		}
		cs.SetChunkRef(format.NodeID(w.ID), format.ChunkIndices(w.Index), w.Ref)
	}
	for _, d := range c.DeletedGroups {
		path, err := format.NewPath(d.Path)
		if err != nil {
			return nil, fmt.Errorf("deleted group: %w", err)
		}
		cs.DeleteGroup(path, format.NodeID(d.ID))
	}
	for _, d := range c.DeletedArrays {
		path, err := format.NewPath(d.Path)
		if err != nil {
			return nil, fmt.Errorf("deleted array: %w", err)
		}
		cs.DeleteArray(path, format.NodeID(d.ID))
	}
	return cs, nil
}

// TransactionLog converts the YAML log to its typed form.
func (l Log) TransactionLog() (*format.TransactionLog, error) {
	log := format.NewTransactionLog()

	if err := convertPathIDs(l.NewGroups, log.NewGroups); err != nil {
		return nil, fmt.Errorf("new_groups: %w", err)
	}
	if err := convertPathIDs(l.NewArrays, log.NewArrays); err != nil {
		return nil, fmt.Errorf("new_arrays: %w", err)
	}
	for _, id := range l.UpdatedUserAttributes {
		log.UpdatedUserAttributes.Add(format.NodeID(id))
	}
	for _, id := range l.UpdatedZarrMetadata {
		log.UpdatedZarrMetadata.Add(format.NodeID(id))
	}
	for id, indices := range l.UpdatedChunks {
		set := format.NewChunkSet()
		for _, idx := range indices {
			set.Add(format.ChunkIndices(idx))
		}
		log.UpdatedChunks[format.NodeID(id)] = set
	}
	for _, p := range l.DeletedPaths {
		path, err := format.NewPath(p)
		if err != nil {
			return nil, fmt.Errorf("deleted_paths: %w", err)
		}
		log.DeletedPaths.Add(path)
	}
	if err := convertIDPaths(l.DeletedGroups, log.DeletedGroups); err != nil {
		return nil, fmt.Errorf("deleted_groups: %w", err)
	}
	if err := convertIDPaths(l.DeletedArrays, log.DeletedArrays); err != nil {
		return nil, fmt.Errorf("deleted_arrays: %w", err)
	}
	return log, nil
}

func convertPathIDs(in map[string]string, out map[format.Path]format.NodeID) error {
	for p, id := range in {
		path, err := format.NewPath(p)
		if err != nil {
			return err
		}
		out[path] = format.NodeID(id)
	}
	return nil
}

func convertIDPaths(in map[string]string, out map[format.NodeID]format.Path) error {
	for id, p := range in {
		path, err := format.NewPath(p)
		if err != nil {
			return err
		}
		out[format.NodeID(id)] = path
	}
	return nil
}
