package editor

import (
	"bytes"
	stderrors "errors"
	"io"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/craftgraph/pkg/errors"
	"github.com/matzehuels/craftgraph/pkg/recipe"
)

// scriptFile is the on-disk form of an edit script.
//
// TOML:
//
//	[[edit]]
//	op = "expand"
//	node = 2
//
//	[[edit]]
//	op = "merge"
//	node = 4
//	with = 7
//
// YAML uses a top-level "edits" list with the same keys.
type scriptFile struct {
	Edits []Intent `toml:"edit" yaml:"edits"`
}

// LoadScript reads an edit script from a .toml, .yaml or .yml file.
func LoadScript(path string) ([]Intent, error) {
	format, err := recipe.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "edit script %s not found", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read edit script %s", path)
	}
	intents, err := ParseScript(data, format)
	if err != nil {
		return nil, errors.Context(err, "load %s", path)
	}
	return intents, nil
}

// ParseScript decodes and validates an edit script.
func ParseScript(data []byte, format recipe.Format) ([]Intent, error) {
	var f scriptFile
	switch format {
	case recipe.FormatTOML:
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&f)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse TOML script")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown key %q in TOML script", undecoded[0].String())
		}
	case recipe.FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !stderrors.Is(err, io.EOF) {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse YAML script")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported script format %q", format)
	}

	for i, in := range f.Edits {
		op, err := ParseOp(string(in.Op))
		if err != nil {
			return nil, errors.Context(err, "edit %d", i+1)
		}
		f.Edits[i].Op = op
		if err := f.Edits[i].Validate(); err != nil {
			return nil, errors.Context(err, "edit %d", i+1)
		}
	}
	return f.Edits, nil
}
