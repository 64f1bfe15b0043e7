package level

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON string

// Store loads level configuration documents by id from a filesystem.
// Documents are YAML, validated against the embedded JSON schema
// before decoding so malformed content fails with a precise location
// instead of a half-populated Config.
type Store struct {
	fsys   fs.FS
	schema *jsonschema.Schema
	log    *zap.Logger
}

// NewStore builds a store over fsys. log may be nil.
func NewStore(fsys fs.FS, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("level-schema.json", strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("level: add schema resource: %w", err)
	}
	schema, err := compiler.Compile("level-schema.json")
	if err != nil {
		return nil, fmt.Errorf("level: compile schema: %w", err)
	}
	return &Store{fsys: fsys, schema: schema, log: log}, nil
}

// Load reads, validates and decodes the document for id. The file is
// <id>.yaml (or .yml) at the store root.
func (s *Store) Load(id string) (*Config, error) {
	if s == nil {
		return nil, fmt.Errorf("level: nil store")
	}
	data, err := s.read(id)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("level %q: parse document: %w", id, err)
	}
	if err := s.schema.Validate(jsonRoundTrip(doc)); err != nil {
		return nil, fmt.Errorf("level %q: document invalid: %w", id, err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}
	if cfg.ID != id {
		s.log.Warn("level: document id does not match file name",
			zap.String("file", id), zap.String("id", cfg.ID))
	}
	return cfg, nil
}

// IDs lists every level id the store can load, sorted.
func (s *Store) IDs() ([]string, error) {
	if s == nil {
		return nil, fmt.Errorf("level: nil store")
	}
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("level: list store: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := path.Ext(name)
		if ext == ".yaml" || ext == ".yml" {
			ids = append(ids, strings.TrimSuffix(name, ext))
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) read(id string) ([]byte, error) {
	for _, ext := range []string{".yaml", ".yml"} {
		data, err := fs.ReadFile(s.fsys, id+ext)
		if err == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("level %q: not found in store", id)
}

// jsonRoundTrip canonicalizes a YAML-decoded document into the value
// shapes the schema validator expects (json.Unmarshal output).
func jsonRoundTrip(doc any) any {
	raw, err := json.Marshal(doc)
	if err != nil {
		return doc
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return doc
	}
	return out
}
