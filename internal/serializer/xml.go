// internal/serializer/xml.go
// Package: serializer
package serializer

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mwiater/benchrunner/internal/model"
	"github.com/mwiater/benchrunner/internal/timeunit"
)

// XMLEncoder writes suites as a suite document.
type XMLEncoder struct {
	// Version is written on the root element.
	Version string
}

// Encode writes suites to w. Output is deterministic: the same suites
// always produce the same bytes.
func (e XMLEncoder) Encode(w io.Writer, suites ...*model.Suite) error {
	doc := document{Version: e.Version}
	for _, s := range suites {
		sd, err := encodeSuite(s)
		if err != nil {
			return err
		}
		doc.Suites = append(doc.Suites, sd)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode suite document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// EncodeFile writes suites to path.
func (e XMLEncoder) EncodeFile(path string, suites ...*model.Suite) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := e.Encode(f, suites...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encodeSuite(s *model.Suite) (suiteDoc, error) {
	sd := suiteDoc{
		Context:    s.ContextName,
		Date:       s.Date.Format(DateLayout),
		ConfigPath: s.ConfigPath,
		UUID:       s.UUID,
		Name:       s.Name,
	}
	for _, info := range s.EnvInformations() {
		id := infoDoc{XMLName: xml.Name{Local: info.Name}}
		for _, k := range info.Keys() {
			v, _ := info.Get(k)
			id.Attrs = append(id.Attrs, attr(k, v))
		}
		sd.Env.Infos = append(sd.Env.Infos, id)
	}

	registry := &resultRegistry{}
	for _, rc := range s.ResultClasses() {
		registry.add(rc)
	}

	for _, b := range s.Benchmarks() {
		bd := benchmarkDoc{Class: b.Class}
		for _, subj := range b.Subjects() {
			sub := subjectDoc{Name: subj.Name}
			for _, g := range subj.Groups {
				sub.Groups = append(sub.Groups, groupDoc{Name: g})
			}
			for _, v := range subj.Variants() {
				vd, err := encodeVariant(subj, v, registry)
				if err != nil {
					return suiteDoc{}, err
				}
				sub.Variants = append(sub.Variants, vd)
			}
			bd.Subjects = append(bd.Subjects, sub)
		}
		sd.Benchmarks = append(sd.Benchmarks, bd)
	}

	for _, rc := range registry.classes {
		sd.Results = append(sd.Results, resultDoc{Key: rc.Key, Class: rc.Class})
	}
	return sd, nil
}

// resultRegistry keeps the first class seen for every result key.
type resultRegistry struct {
	classes []model.ResultClass
}

func (r *resultRegistry) add(rc model.ResultClass) {
	for _, c := range r.classes {
		if c.Key == rc.Key {
			return
		}
	}
	r.classes = append(r.classes, rc)
}

func encodeVariant(subj *model.Subject, v *model.Variant, registry *resultRegistry) (variantDoc, error) {
	vd := variantDoc{
		Sleep:               subj.Sleep,
		OutputTimeUnit:      subj.OutputTimeUnit,
		OutputTimePrecision: subj.OutputTimePrecision,
		OutputMode:          subj.OutputMode,
		Revs:                v.Revolutions,
		Iterations:          v.IterationCount,
		Warmup:              v.Warmup,
		RetryThreshold:      subj.RetryThreshold,
		Retries:             v.Retries,
	}
	if vd.OutputTimeUnit == "" {
		vd.OutputTimeUnit = timeunit.DefaultUnit
	}
	if vd.OutputMode == "" {
		vd.OutputMode = timeunit.DefaultMode
	}
	for _, p := range v.ParameterSet.Params() {
		vd.Parameters = append(vd.Parameters, encodeParameter(p))
	}

	if v.HasErrorStack() {
		if v.HasFailed() {
			return variantDoc{}, fmt.Errorf("variant %s: %w", v.Name(), model.ErrVariantState)
		}
		ed := &errorsDoc{}
		for _, e := range v.ErrorStack() {
			ed.Errors = append(ed.Errors, errorDoc{Class: e.Class, Code: e.Code, File: e.File, Line: e.Line, Message: e.Message})
		}
		vd.Errors = ed
		return vd, nil
	}

	if v.HasFailed() {
		fd := &failuresDoc{}
		for _, f := range v.Failures() {
			fd.Failures = append(fd.Failures, failureDoc{Message: f.Message})
		}
		vd.Failures = fd
	}

	for _, it := range v.Iterations() {
		var ad attrsDoc
		for _, r := range it.Results() {
			registry.add(model.ResultClass{Key: r.Key(), Class: r.TypeName()})
			metrics := r.Metrics()
			for _, name := range model.SortedMetricNames(r) {
				ad.Attrs = append(ad.Attrs, attr(r.Key()+"-"+strings.ReplaceAll(name, "_", "-"), formatFloat(metrics[name])))
			}
		}
		sortAttrs(ad.Attrs)
		vd.Iteration = append(vd.Iteration, ad)
	}

	stats := &attrsDoc{}
	for name, value := range v.Stats() {
		stats.Attrs = append(stats.Attrs, attr(name, formatFloat(value)))
	}
	sortAttrs(stats.Attrs)
	vd.Stats = stats
	return vd, nil
}

func encodeParameter(p model.Param) parameterDoc {
	pd := parameterDoc{Name: p.Name}
	if p.Value.IsList() {
		pd.Type = typeCollection
		for _, item := range p.Value.Items() {
			pd.Children = append(pd.Children, encodeParameter(item))
		}
		return pd
	}
	s := p.Value.String()
	pd.Value = &s
	return pd
}

// Decode reads a suite document.
func Decode(r io.Reader) ([]*model.Suite, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode suite document: %w", err)
	}
	suites := make([]*model.Suite, 0, len(doc.Suites))
	for i, sd := range doc.Suites {
		s, err := decodeSuite(sd)
		if err != nil {
			return nil, fmt.Errorf("suite %d: %w", i, err)
		}
		suites = append(suites, s)
	}
	return suites, nil
}

// DecodeFile reads the suite document at path.
func DecodeFile(path string) ([]*model.Suite, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	suites, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return suites, nil
}

func decodeSuite(sd suiteDoc) (*model.Suite, error) {
	date, err := time.ParseInLocation(DateLayout, sd.Date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}
	s := model.NewSuite(sd.Context, date, sd.ConfigPath, sd.UUID)
	s.Name = sd.Name

	for _, id := range sd.Env.Infos {
		info := model.NewInformation(id.XMLName.Local, nil)
		for _, a := range id.Attrs {
			info.Set(a.Name.Local, a.Value)
		}
		s.AddEnvInformation(info)
	}

	classes := make(map[string]string, len(sd.Results))
	for _, rd := range sd.Results {
		s.RegisterResultClass(model.ResultClass{Key: rd.Key, Class: rd.Class})
		classes[rd.Key] = rd.Class
	}

	for _, bd := range sd.Benchmarks {
		b := s.CreateBenchmark(bd.Class)
		for _, sub := range bd.Subjects {
			subj := b.CreateSubject(sub.Name)
			for _, g := range sub.Groups {
				subj.Groups = append(subj.Groups, g.Name)
			}
			for _, vd := range sub.Variants {
				if err := decodeVariant(subj, vd, classes); err != nil {
					return nil, fmt.Errorf("%s: %w", subj.FullName(), err)
				}
			}
		}
	}
	return s, nil
}

func decodeVariant(subj *model.Subject, vd variantDoc, classes map[string]string) error {
	// Subject settings are repeated on every variant; the first one wins.
	if len(subj.Variants()) == 0 {
		subj.Sleep = vd.Sleep
		subj.OutputTimeUnit = vd.OutputTimeUnit
		subj.OutputTimePrecision = vd.OutputTimePrecision
		subj.OutputMode = vd.OutputMode
		subj.RetryThreshold = vd.RetryThreshold
	}

	ps := model.ParameterSet{}
	for _, pd := range vd.Parameters {
		value, err := decodeParameter(pd)
		if err != nil {
			return err
		}
		ps.Set(pd.Name, value)
	}

	v := subj.CreateVariant(ps, vd.Revs, vd.Warmup, vd.Iterations)
	v.Retries = vd.Retries

	if vd.Errors != nil {
		stack := make(model.ErrorStack, 0, len(vd.Errors.Errors))
		for _, ed := range vd.Errors.Errors {
			stack = append(stack, model.Error{Class: ed.Class, Message: ed.Message, Code: ed.Code, File: ed.File, Line: ed.Line})
		}
		return v.SetErrorStack(stack)
	}

	for _, ad := range vd.Iteration {
		it := v.CreateIteration()
		metrics := map[string]map[string]float64{}
		var kinds []string
		for _, a := range ad.Attrs {
			kind, metric, ok := strings.Cut(a.Name.Local, "-")
			if !ok {
				return fmt.Errorf("iteration %d: malformed attribute %q", it.Index, a.Name.Local)
			}
			f, err := strconv.ParseFloat(a.Value, 64)
			if err != nil {
				return fmt.Errorf("iteration %d: %s: %w", it.Index, a.Name.Local, err)
			}
			if _, seen := metrics[kind]; !seen {
				metrics[kind] = map[string]float64{}
				kinds = append(kinds, kind)
			}
			metrics[kind][strings.ReplaceAll(metric, "-", "_")] = f
		}
		for _, kind := range kinds {
			class, ok := classes[kind]
			if !ok {
				it.SetResult(model.ResultFromMetrics(kind, metrics[kind]))
				continue
			}
			r, err := model.NewResult(class, kind, metrics[kind])
			if err != nil {
				return err
			}
			it.SetResult(r)
		}
	}

	if vd.Stats != nil && len(vd.Stats.Attrs) > 0 {
		stats := make(map[string]float64, len(vd.Stats.Attrs))
		for _, a := range vd.Stats.Attrs {
			f, err := strconv.ParseFloat(a.Value, 64)
			if err != nil {
				return fmt.Errorf("stats: %s: %w", a.Name.Local, err)
			}
			stats[a.Name.Local] = f
		}
		v.SetStats(stats)
	}

	v.Status = model.StatusCompleted
	if vd.Failures != nil {
		failures := make([]model.Failure, 0, len(vd.Failures.Failures))
		for _, fd := range vd.Failures.Failures {
			failures = append(failures, model.Failure{Message: fd.Message})
		}
		return v.SetFailures(failures)
	}
	return nil
}

// decodeParameter rebuilds a parameter value. Collections whose children
// are named 0..n-1 become lists, others keyed collections. Scalars are
// read back as the narrowest of integer, float, bool and string.
func decodeParameter(pd parameterDoc) (model.Value, error) {
	if pd.Type == typeCollection {
		keyed := false
		for i, c := range pd.Children {
			if c.Name != strconv.Itoa(i) {
				keyed = true
				break
			}
		}
		if !keyed {
			items := make([]any, 0, len(pd.Children))
			for _, c := range pd.Children {
				v, err := decodeParameter(c)
				if err != nil {
					return model.Value{}, err
				}
				items = append(items, v.Interface())
			}
			return model.ValueOf(items)
		}
		m := make(map[string]any, len(pd.Children))
		for _, c := range pd.Children {
			v, err := decodeParameter(c)
			if err != nil {
				return model.Value{}, err
			}
			m[c.Name] = v.Interface()
		}
		return model.ValueOf(m)
	}
	if pd.Value == nil {
		return model.Value{}, fmt.Errorf("parameter %q: %w, got: no value", pd.Name, model.ErrInvalidParameter)
	}
	return model.Scalar(parseScalar(*pd.Value))
}

func parseScalar(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
		return b
	}
	return s
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func sortAttrs(attrs []xml.Attr) {
	slices.SortFunc(attrs, func(a, b xml.Attr) int { return strings.Compare(a.Name.Local, b.Name.Local) })
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
