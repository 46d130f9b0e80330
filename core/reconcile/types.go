package reconcile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MultiValueSeparator joins the values of a multi-valued field into one cell.
const MultiValueSeparator = "\n"

// DefaultKeyField is the field that identifies a machine when none is configured.
const DefaultKeyField = "ComputerName"

// Field is a single named value of a Record.
type Field struct {
	Name  string
	Value string
}

// Record is an ordered set of named string fields captured from one machine
// at one point in time. The zero value is an empty record ready to use.
type Record struct {
	names  []string
	values map[string]string
}

// NewRecord builds a record from fields, keeping their order.
// A repeated field name overwrites the earlier value but keeps its position.
func NewRecord(fields ...Field) Record {
	var r Record
	for _, f := range fields {
		r.Set(f.Name, f.Value)
	}
	return r
}

// Set assigns a field value, appending the name if it is new.
func (r *Record) Set(name, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, exists := r.values[name]; !exists {
		r.names = append(r.names, name)
	}
	r.values[name] = value
}

// Get returns the value of a field and whether the record carries it.
func (r Record) Get(name string) (string, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Value returns the value of a field, or "" when the record lacks it.
func (r Record) Value(name string) string {
	return r.values[name]
}

// Key returns the record's identity under keyField.
// Whitespace-only values count as missing and yield "".
func (r Record) Key(keyField string) string {
	v := r.values[keyField]
	if strings.TrimSpace(v) == "" {
		return ""
	}
	return v
}

// Names returns the field names in capture order.
func (r Record) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Fields returns the fields in capture order.
func (r Record) Fields() []Field {
	out := make([]Field, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, Field{Name: name, Value: r.values[name]})
	}
	return out
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.names)
}

// MarshalJSON encodes the record as a JSON object in field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the record, keeping key order.
// Non-string scalars keep their literal text, arrays are joined with
// MultiValueSeparator and null becomes "".
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record must be a JSON object")
	}

	*r = Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in record", tok)
		}

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		value, err := FieldValue(raw)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		r.Set(name, value)
	}

	_, err = dec.Token()
	return err
}

// FieldValue converts a decoded JSON or YAML value into a cell string.
func FieldValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case time.Time:
		return val.UTC().Format(time.RFC3339), nil
	case []string:
		return strings.Join(val, MultiValueSeparator), nil
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			s, err := FieldValue(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, MultiValueSeparator), nil
	default:
		return "", fmt.Errorf("unsupported value of type %T", v)
	}
}

// HeaderSet is the ordered, unique list of column names of a store.
type HeaderSet []string

// Index returns the column of name, or -1.
func (h HeaderSet) Index(name string) int {
	for i, n := range h {
		if n == name {
			return i
		}
	}
	return -1
}

// Contains reports whether name is a column.
func (h HeaderSet) Contains(name string) bool {
	return h.Index(name) >= 0
}

// Project lays a record out in header order. Missing fields become "".
func (h HeaderSet) Project(r Record) []string {
	out := make([]string, len(h))
	for i, name := range h {
		out[i] = r.Value(name)
	}
	return out
}

// Clone returns a copy that can be extended without aliasing.
func (h HeaderSet) Clone() HeaderSet {
	out := make(HeaderSet, len(h))
	copy(out, h)
	return out
}

// Row is one data row of a store. Position is the 1-based data-row offset;
// the physical row is Position+1 because row 0 holds the header.
type Row struct {
	Position int
	Values   []string
}

// Value returns the cell at column, or "" when the row is shorter.
func (r Row) Value(column int) string {
	if column < 0 || column >= len(r.Values) {
		return ""
	}
	return r.Values[column]
}

// OperationType represents the type of a planned row mutation.
type OperationType string

const (
	// OpUpdate overwrites an existing row in place.
	OpUpdate OperationType = "update"
	// OpInsert appends a new row.
	OpInsert OperationType = "insert"
)

// Operation is a planned row mutation.
type Operation struct {
	// Type specifies the mutation to perform.
	Type OperationType `json:"type"`

	// Key is the machine identity of the row.
	Key string `json:"key"`

	// Position is the data-row offset to overwrite. Zero for inserts.
	Position int `json:"position,omitempty"`

	// Values is the record projected onto the canonical header.
	Values []string `json:"values"`
}

// RecordFailure describes an incoming record that was skipped.
type RecordFailure struct {
	// Index is the record's position in the batch.
	Index int `json:"index"`

	// Key is the record's key value, if it had one.
	Key string `json:"key,omitempty"`

	// Reason is a human-readable explanation.
	Reason string `json:"reason"`

	// Err is the underlying error, matchable with errors.Is.
	Err error `json:"-"`
}

// RowFailure describes a planned operation the store rejected.
type RowFailure struct {
	Operation OperationType `json:"operation"`
	Key       string        `json:"key"`
	Position  int           `json:"position,omitempty"`
	Reason    string        `json:"reason"`
	Err       error         `json:"-"`
}

// Plan contains the canonical header and the operations of one sync pass.
type Plan struct {
	// Header is the canonical HeaderSet every operation is projected onto.
	Header HeaderSet `json:"header"`

	// KeyColumn is the index of the key field within Header.
	KeyColumn int `json:"key_column"`

	// Operations holds at most one operation per key.
	Operations []Operation `json:"operations"`

	// Skipped lists records that could not be planned.
	Skipped []RecordFailure `json:"skipped,omitempty"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate statistics for a plan.
type PlanSummary struct {
	// Records is the number of records in the batch.
	Records int `json:"records"`

	// Updates counts planned in-place overwrites.
	Updates int `json:"updates"`

	// Inserts counts planned appends.
	Inserts int `json:"inserts"`

	// Skipped counts records that failed validation.
	Skipped int `json:"skipped"`

	// Duplicates counts records superseded by a later record with the same key.
	Duplicates int `json:"duplicates"`
}

// SyncResult holds the counts surfaced to callers.
type SyncResult struct {
	Updated int `json:"updated"`
	Added   int `json:"added"`
	Total   int `json:"total"`
}

// Report is the structured outcome of one sync invocation.
// Every path through Engine.Sync produces one.
type Report struct {
	// Success is false when the invocation aborted.
	Success bool `json:"success"`

	// Message is a human-readable summary or failure description.
	Message string `json:"message,omitempty"`

	SyncResult

	// Header is the canonical HeaderSet used for the pass.
	Header HeaderSet `json:"header,omitempty"`

	// Skipped lists records rejected before planning.
	Skipped []RecordFailure `json:"skipped,omitempty"`

	// Failed lists row writes the store rejected.
	Failed []RowFailure `json:"failed,omitempty"`

	// Warnings holds non-fatal problems such as a failed sort.
	Warnings []string `json:"warnings,omitempty"`

	// DryRun is set when no mutation was attempted.
	DryRun bool `json:"dry_run,omitempty"`

	err error
}

// Err returns the invocation-level error, or nil on success.
func (r *Report) Err() error {
	return r.err
}

// FailedReport builds the report of an invocation that could not start,
// for callers that fail before an engine runs.
func FailedReport(err error) *Report {
	return (&Report{}).fail(err)
}

func (r *Report) fail(err error) *Report {
	r.Success = false
	r.Message = err.Error()
	r.err = err
	return r
}

// SchemaPolicy decides what happens to fields missing from the store header.
type SchemaPolicy string

const (
	// SchemaGrow appends unknown fields to the header.
	SchemaGrow SchemaPolicy = "grow"
	// SchemaStrict rejects records that carry unknown fields.
	SchemaStrict SchemaPolicy = "strict"
)

// HeaderStyle is the one-time formatting applied to a freshly written header row.
type HeaderStyle struct {
	Bold       bool   `json:"bold"`
	Background string `json:"background,omitempty"`
	Foreground string `json:"foreground,omitempty"`
}

// DefaultHeaderStyle is bold white text on blue.
var DefaultHeaderStyle = HeaderStyle{Bold: true, Background: "#4A86E8", Foreground: "#FFFFFF"}

// Options controls engine behavior.
type Options struct {
	// KeyField names the machine identity field. Defaults to DefaultKeyField.
	KeyField string

	// SchemaPolicy defaults to SchemaGrow.
	SchemaPolicy SchemaPolicy

	// WriteInterval paces row writes. Zero disables pacing.
	WriteInterval time.Duration

	// DryRun plans the pass without mutating the store.
	DryRun bool

	// HeaderStyle is applied once when the header row is first written.
	// Nil selects DefaultHeaderStyle.
	HeaderStyle *HeaderStyle
}

func (o Options) withDefaults() Options {
	if o.KeyField == "" {
		o.KeyField = DefaultKeyField
	}
	if o.SchemaPolicy == "" {
		o.SchemaPolicy = SchemaGrow
	}
	if o.HeaderStyle == nil {
		style := DefaultHeaderStyle
		o.HeaderStyle = &style
	}
	return o
}
