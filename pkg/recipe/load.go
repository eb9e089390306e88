package recipe

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/craftgraph/pkg/errors"
)

// Format is the encoding of a recipe book file.
type Format string

// Supported book formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported book format %q (must be .toml, .yaml or .yml)", filepath.Ext(path))
	}
}

// bookValidate checks decoded book files before they are converted.
var bookValidate = validator.New(validator.WithRequiredStructEnabled())

// bookFile is the on-disk schema shared by TOML and YAML books.
//
// TOML:
//
//	[[machine]]
//	name = "assembler"
//	speed = 0.75
//	categories = ["crafting"]
//
//	[[recipe]]
//	name = "gear"
//	time = 0.5
//	ingredients = [{ name = "iron-plate", amount = 2 }]
//	results = [{ name = "gear", amount = 1 }]
type bookFile struct {
	Recipes  []recipeEntry  `toml:"recipe" yaml:"recipes" validate:"dive"`
	Machines []machineEntry `toml:"machine" yaml:"machines" validate:"dive"`
}

type recipeEntry struct {
	Name        string        `toml:"name" yaml:"name" validate:"required"`
	Category    string        `toml:"category" yaml:"category"`
	Time        float64       `toml:"time" yaml:"time" validate:"gt=0"`
	MainProduct string        `toml:"main_product" yaml:"main_product"`
	Ingredients []amountEntry `toml:"ingredients" yaml:"ingredients" validate:"dive"`
	Results     []amountEntry `toml:"results" yaml:"results" validate:"required,min=1,dive"`
}

type amountEntry struct {
	Name   string  `toml:"name" yaml:"name" validate:"required"`
	Kind   string  `toml:"kind" yaml:"kind" validate:"omitempty,oneof=item fluid"`
	Amount float64 `toml:"amount" yaml:"amount" validate:"gt=0"`
}

type machineEntry struct {
	Name       string   `toml:"name" yaml:"name" validate:"required"`
	Speed      float64  `toml:"speed" yaml:"speed" validate:"gt=0"`
	Categories []string `toml:"categories" yaml:"categories" validate:"required,min=1,dive,required"`
}

// Load reads a recipe book from path. The format is chosen by extension.
func Load(path string) (*Book, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "recipe book %s not found", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read recipe book %s", path)
	}
	b, err := Decode(data, format)
	if err != nil {
		return nil, errors.Context(err, "load %s", path)
	}
	return b, nil
}

// Decode parses and validates a recipe book encoded in format.
func Decode(data []byte, format Format) (*Book, error) {
	var f bookFile
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&f)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse TOML book")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown key %q in TOML book", undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !stderrors.Is(err, io.EOF) {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse YAML book")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported book format %q", format)
	}

	if err := bookValidate.Struct(&f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid recipe book")
	}
	return f.build()
}

func (f *bookFile) build() (*Book, error) {
	recipes := make([]*Recipe, 0, len(f.Recipes))
	for _, e := range f.Recipes {
		r := &Recipe{
			Name:         e.Name,
			Category:     e.Category,
			CraftingTime: e.Time,
			MainProduct:  e.MainProduct,
		}
		for _, in := range e.Ingredients {
			item, err := in.item()
			if err != nil {
				return nil, errors.Context(err, "recipe %q", e.Name)
			}
			r.Ingredients = append(r.Ingredients, Ingredient{Item: item, Amount: in.Amount})
		}
		for _, out := range e.Results {
			item, err := out.item()
			if err != nil {
				return nil, errors.Context(err, "recipe %q", e.Name)
			}
			r.Results = append(r.Results, Product{Item: item, Amount: out.Amount})
		}
		recipes = append(recipes, r)
	}

	machines := make([]*Machine, 0, len(f.Machines))
	for _, e := range f.Machines {
		machines = append(machines, &Machine{Name: e.Name, CraftingSpeed: e.Speed, Categories: e.Categories})
	}
	return NewBook(recipes, machines)
}

func (e amountEntry) item() (Item, error) {
	kind, err := ParseItemKind(e.Kind)
	if err != nil {
		return Item{}, err
	}
	return Item{Name: e.Name, Kind: kind}, nil
}

// String summarizes the book for logs.
func (b *Book) String() string {
	return fmt.Sprintf("%d recipes, %d machines", len(b.recipes), len(b.machines))
}
