package reconcile

import (
	"fmt"
	"slices"
)

// SchemaChange is the outcome of reconciling a batch against the store header.
type SchemaChange struct {
	// Header is the canonical HeaderSet for the pass.
	Header HeaderSet

	// KeyColumn is the index of the key field within Header.
	KeyColumn int

	// Initialized is true when the store had no header and Header must be written.
	Initialized bool

	// Added lists fields appended to an existing header.
	Added []string
}

// NeedsWrite reports whether the header row must be written back.
func (c SchemaChange) NeedsWrite() bool {
	return c.Initialized || len(c.Added) > 0
}

// BatchFields returns the field names of a batch: the first record's fields
// in order, then fields first seen in later records.
func BatchFields(batch []Record) []string {
	seen := make(map[string]struct{})
	var fields []string
	for _, rec := range batch {
		for _, name := range rec.names {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			fields = append(fields, name)
		}
	}
	return fields
}

// SyncSchema computes the canonical header for a pass.
//
// An empty existing header yields the batch field order verbatim. Otherwise
// the existing header keeps its order and, under SchemaGrow, fields unknown
// to it are appended in batch order. The existing order is never replaced by
// the batch's.
func SyncSchema(existing HeaderSet, batchFields []string, keyField string, policy SchemaPolicy) (SchemaChange, error) {
	var change SchemaChange

	if len(existing) == 0 {
		change.Header = HeaderSet(batchFields).Clone()
		change.Initialized = true
	} else {
		change.Header = existing.Clone()
		if policy != SchemaStrict {
			for _, name := range batchFields {
				if !change.Header.Contains(name) {
					change.Header = append(change.Header, name)
					change.Added = append(change.Added, name)
				}
			}
		}
	}

	change.KeyColumn = change.Header.Index(keyField)
	if change.KeyColumn < 0 {
		if policy == SchemaStrict && slices.Contains(batchFields, keyField) {
			return change, fmt.Errorf("%w: key field %q is absent from the store header (strict schema)", ErrSchemaConflict, keyField)
		}
		return change, fmt.Errorf("%w: key field %q is absent from the store header and the batch", ErrSchemaConflict, keyField)
	}

	return change, nil
}
