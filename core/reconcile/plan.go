package reconcile

import "fmt"

// PlanUpserts classifies every record of a batch as an update or an insert
// and projects it onto the canonical header.
//
// Records without a key are skipped. Records sharing a key collapse into one
// operation carrying the last record's values, placed where the key first
// appeared. Under SchemaStrict, records with fields outside the header are
// skipped as well.
func PlanUpserts(batch []Record, change SchemaChange, keyField string, index *KeyIndex, policy SchemaPolicy) *Plan {
	plan := &Plan{
		Header:    change.Header,
		KeyColumn: change.KeyColumn,
	}
	plan.Summary.Records = len(batch)

	byKey := make(map[string]int, len(batch))

	for i, rec := range batch {
		key := rec.Key(keyField)
		if key == "" {
			plan.Skipped = append(plan.Skipped, RecordFailure{
				Index:  i,
				Reason: fmt.Sprintf("record has no value for key field %s", keyField),
				Err:    ErrMissingKey,
			})
			continue
		}

		if policy == SchemaStrict {
			if unknown := unknownFields(rec, change.Header); len(unknown) > 0 {
				plan.Skipped = append(plan.Skipped, RecordFailure{
					Index:  i,
					Key:    key,
					Reason: fmt.Sprintf("fields not in header: %v", unknown),
					Err:    ErrUnknownField,
				})
				continue
			}
		}

		values := change.Header.Project(rec)

		if j, seen := byKey[key]; seen {
			plan.Operations[j].Values = values
			plan.Summary.Duplicates++
			continue
		}

		op := Operation{Type: OpInsert, Key: key, Values: values}
		if pos, ok := index.Lookup(key); ok {
			op.Type = OpUpdate
			op.Position = pos
		}
		byKey[key] = len(plan.Operations)
		plan.Operations = append(plan.Operations, op)
	}

	for _, op := range plan.Operations {
		switch op.Type {
		case OpUpdate:
			plan.Summary.Updates++
		case OpInsert:
			plan.Summary.Inserts++
		}
	}
	plan.Summary.Skipped = len(plan.Skipped)

	return plan
}

func unknownFields(rec Record, header HeaderSet) []string {
	var unknown []string
	for _, name := range rec.names {
		if !header.Contains(name) {
			unknown = append(unknown, name)
		}
	}
	return unknown
}
