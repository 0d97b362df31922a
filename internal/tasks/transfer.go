package tasks

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fentz26/tickit/internal/models"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Format is an export/import file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat accepts json, yaml/yml or toml. Empty input yields JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath guesses the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return FormatJSON
	}
	return f
}

//go:embed schema/appstate.json
var appStateSchema string

var importSchema = jsonschema.MustCompileString("appstate.json", appStateSchema)

// Encode writes st in format f.
func Encode(w io.Writer, st models.AppState, f Format) error {
	switch f {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(st); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(st)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Decode parses an AppState in format f and checks its shape. Every failure
// is an *ImportError.
func Decode(r io.Reader, f Format) (models.AppState, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.AppState{}, &ImportError{Reason: "read failed", Err: err}
	}

	doc, err := toJSONDocument(data, f)
	if err != nil {
		return models.AppState{}, err
	}

	var generic interface{}
	if err := json.Unmarshal(doc, &generic); err != nil {
		return models.AppState{}, &ImportError{Reason: "not a document", Err: err}
	}
	if err := importSchema.Validate(generic); err != nil {
		ie := &ImportError{Reason: "unexpected shape", Err: err}
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			collectSchemaErrors(ie, ve)
		}
		return models.AppState{}, ie
	}

	var st models.AppState
	if err := json.Unmarshal(doc, &st); err != nil {
		return models.AppState{}, &ImportError{Reason: "unexpected field value", Err: err}
	}
	st.Normalize()
	return st, nil
}

// toJSONDocument re-encodes YAML and TOML as JSON so that one schema and one
// decoder cover every format.
func toJSONDocument(data []byte, f Format) ([]byte, error) {
	var v interface{}
	switch f {
	case FormatJSON, "":
		return data, nil
	case FormatYAML:
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, &ImportError{Reason: "invalid yaml", Err: err}
		}
	case FormatTOML:
		m := map[string]interface{}{}
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
			return nil, &ImportError{Reason: "invalid toml", Err: err}
		}
		v = m
	default:
		return nil, &ImportError{Reason: "unsupported format", Err: fmt.Errorf("%w: %q", ErrUnknownFormat, f)}
	}
	doc, err := json.Marshal(v)
	if err != nil {
		return nil, &ImportError{Reason: "unsupported value", Err: err}
	}
	return doc, nil
}

func collectSchemaErrors(ie *ImportError, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		loc := err.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		ie.Details = append(ie.Details, fmt.Sprintf("%s: %s", loc, err.Message))
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(ie, cause)
	}
}

// Export writes the live state in format f.
func (r *Repository) Export(w io.Writer, f Format) error {
	return Encode(w, r.State(), f)
}

// ImportResult reports the outcome of a merge.
type ImportResult struct {
	Added   int
	Skipped int
}

// Import merges tasks from r by id. Tasks whose id is already present, or
// repeated within the file, are skipped; the rest are appended unchanged.
// A malformed file is rejected whole.
func (r *Repository) Import(in io.Reader, f Format) (ImportResult, error) {
	incoming, err := Decode(in, f)
	if err != nil {
		return ImportResult{}, err
	}

	s := r.container.Get()
	seen := make(map[string]bool, len(s.Tasks)+len(incoming.Tasks))
	for _, t := range s.Tasks {
		seen[t.ID] = true
	}

	var res ImportResult
	var fresh []models.Task
	for _, t := range incoming.Tasks {
		if seen[t.ID] {
			res.Skipped++
			continue
		}
		seen[t.ID] = true
		fresh = append(fresh, t)
	}
	res.Added = len(fresh)
	if res.Added == 0 {
		return res, nil
	}

	r.begin()
	s.Tasks = append(s.Tasks, fresh...)
	r.commit("task.import", res, "")
	return res, nil
}
