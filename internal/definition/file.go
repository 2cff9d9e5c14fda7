// internal/definition/file.go
// Package: definition
package definition

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mwiater/benchrunner/internal/timeunit"
)

// Extension marks benchmark definition files inside a directory.
const Extension = ".bench.yaml"

// MaxFileSize bounds a single definition file.
const MaxFileSize = 1 << 20

// ErrNoDefinitions is returned when a path yields no definition file.
var ErrNoDefinitions = errors.New("no benchmark definitions found")

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("timeunit", func(fl validator.FieldLevel) bool {
		return timeunit.ValidUnit(fl.Field().String())
	})
	_ = validate.RegisterValidation("outputmode", func(fl validator.FieldLevel) bool {
		return timeunit.ValidMode(fl.Field().String())
	})
}

// File is one decoded benchmark definition file.
type File struct {
	Class     string       `yaml:"class" validate:"required"`
	Command   []string     `yaml:"command" validate:"required,min=1,dive,required"`
	Hierarchy []TypeDef    `yaml:"hierarchy" validate:"dive"`
	Subjects  []SubjectDef `yaml:"subjects" validate:"required,min=1,dive"`

	// Path is the file the definition was loaded from.
	Path string `yaml:"-"`
}

// TypeDef declares the methods of one type of the subject hierarchy, most
// derived first.
type TypeDef struct {
	Name    string   `yaml:"name" validate:"required"`
	Methods []string `yaml:"methods"`
}

// SubjectDef configures one benchmarked method.
type SubjectDef struct {
	Name                string           `yaml:"name" validate:"required"`
	Revs                []int            `yaml:"revs" validate:"dive,gt=0"`
	Iterations          int              `yaml:"iterations" validate:"gte=0"`
	Warmup              int              `yaml:"warmup" validate:"gte=0"`
	Sleep               int              `yaml:"sleep" validate:"gte=0"`
	Groups              []string         `yaml:"groups"`
	Before              []string         `yaml:"before"`
	After               []string         `yaml:"after"`
	RetryThreshold      *float64         `yaml:"retry_threshold" validate:"omitempty,gt=0"`
	OutputTimeUnit      string           `yaml:"output_time_unit" validate:"omitempty,timeunit"`
	OutputTimePrecision *int             `yaml:"output_time_precision" validate:"omitempty,gte=0"`
	OutputMode          string           `yaml:"output_mode" validate:"omitempty,outputmode"`
	Timeout             time.Duration    `yaml:"timeout" validate:"gte=0"`
	Params              []map[string]any `yaml:"params"`
	Assert              []AssertionDef   `yaml:"assert" validate:"dive"`
}

// AssertionDef names an asserter kind and its options.
type AssertionDef struct {
	Kind    string         `yaml:"kind" json:"kind"`
	Options map[string]any `yaml:"options" json:"options" validate:"required"`
}

// Load reads the definition file at path, or every *.bench.yaml file of
// the directory at path in lexical order.
func Load(path string) ([]*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load definitions: %w", err)
	}

	paths := []string{path}
	if info.IsDir() {
		paths, err = filepath.Glob(filepath.Join(path, "*"+Extension))
		if err != nil {
			return nil, fmt.Errorf("load definitions: %w", err)
		}
		sort.Strings(paths)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDefinitions, path)
	}

	files := make([]*File, 0, len(paths))
	for _, p := range paths {
		f, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// LoadFile reads and validates a single definition file.
func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load definition: %w", err)
	}
	defer fh.Close()

	data, err := io.ReadAll(io.LimitReader(fh, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("load definition %s: %w", path, err)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("load definition %s: file exceeds %d bytes", path, MaxFileSize)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load definition %s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Parse decodes and validates a definition document. Unknown keys are
// rejected.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty definition")
		}
		return nil, err
	}
	if err := validate.Struct(f); err != nil {
		return nil, err
	}
	return &f, nil
}
