// internal/assertion/comparator.go
// Package: assertion
package assertion

import (
	"fmt"
	"math"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"github.com/mwiater/benchrunner/internal/stats"
)

// Option keys understood by the comparator asserter.
const (
	OptionStat       = "stat"
	OptionComparator = "comparator"
	OptionValue      = "value"
	OptionTolerance  = "tolerance"
)

// DefaultComparator is used when no comparator option is given.
const DefaultComparator = "<"

var comparatorWords = map[string]string{
	"<":  "less than",
	"<=": "less than or equal to",
	">":  "greater than",
	">=": "greater than or equal to",
	"=":  "equal to",
}

// ComparatorConfig is the decoded option map of a comparator assertion.
type ComparatorConfig struct {
	Stat       string   `mapstructure:"stat" validate:"required"`
	Comparator string   `mapstructure:"comparator" validate:"oneof=< <= > >= ="`
	Value      *float64 `mapstructure:"value" validate:"required"`
	Tolerance  *float64 `mapstructure:"tolerance" validate:"omitempty,gte=0"`
}

// ComparatorAsserter compares one stat of a distribution with a threshold.
type ComparatorAsserter struct {
	validate *validator.Validate
}

// NewComparatorAsserter returns a comparator asserter.
func NewComparatorAsserter() *ComparatorAsserter {
	return &ComparatorAsserter{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Configure decodes and validates options. Unknown option keys, an
// unknown stat or comparator and a missing value are rejected.
func (a *ComparatorAsserter) Configure(options map[string]any) (Assertion, error) {
	cfg := ComparatorConfig{Comparator: DefaultComparator}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(options); err != nil {
		return nil, fmt.Errorf("invalid comparator options: %w", err)
	}
	if err := a.validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid comparator options: %w", err)
	}
	if !stats.IsStat(cfg.Stat) {
		return nil, fmt.Errorf("invalid comparator options: %w %q (available: %v)", stats.ErrUnknownStat, cfg.Stat, stats.StatNames())
	}
	return &comparatorAssertion{cfg: cfg}, nil
}

type comparatorAssertion struct {
	cfg ComparatorConfig
}

// Config returns the resolved configuration.
func (c *comparatorAssertion) Config() ComparatorConfig { return c.cfg }

func (c *comparatorAssertion) Evaluate(d *stats.Distribution) error {
	actual, err := d.Stat(c.cfg.Stat)
	if err != nil {
		return err
	}
	expected := *c.cfg.Value
	var tol float64
	if c.cfg.Tolerance != nil {
		tol = *c.cfg.Tolerance
	}

	var ok bool
	switch c.cfg.Comparator {
	case "<":
		ok = actual < expected+tol
	case "<=":
		ok = actual <= expected+tol
	case ">":
		ok = actual > expected-tol
	case ">=":
		ok = actual >= expected-tol
	case "=":
		ok = math.Abs(actual-expected) <= tol
	default:
		return fmt.Errorf("unknown comparator %q", c.cfg.Comparator)
	}
	if ok {
		return nil
	}
	return &Failure{Message: fmt.Sprintf(
		"%s is not %s %s, it was %s",
		c.cfg.Stat,
		comparatorWords[c.cfg.Comparator],
		formatNumber(expected),
		formatNumber(actual),
	)}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
