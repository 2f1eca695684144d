// Copyright 2014 The Chihaya Authors. All rights reserved.
// Use of this source code is governed by the BSD 2-Clause license,
// which can be found in the LICENSE file.

// Package format renders a stats.Report for people and for machines.
package format

import (
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/chihaya/incstats/stats"
)

// Names of the supported output formats.
const (
	Text = "text"
	JSON = "json"
	YAML = "yaml"
)

// ErrUnknownFormat is returned by Write for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown output format")

// Labels maps every report key to a human readable label.
var Labels = map[string]string{
	stats.KeyCount:  "Count",
	stats.KeyMean:   "Mean",
	stats.KeyStd:    "Standard deviation",
	stats.KeyVar:    "Variance",
	stats.KeyMedian: "Median",
	stats.KeyQ1:     "First quartile",
	stats.KeyQ3:     "Third quartile",
	stats.KeyMin:    "Minimum",
	stats.KeyMax:    "Maximum",
}

// Options control the text rendering of a report.
type Options struct {
	// Precision is the number of decimals values are rounded to. A negative
	// Precision prints the shortest exact representation.
	Precision int `yaml:"precision"`

	// Prefix is written at the start of every line.
	Prefix string `yaml:"prefix"`

	// Terminator ends every line. Defaults to "\n".
	Terminator string `yaml:"terminator"`

	// Missing is printed for statistics without a value. Defaults to "-".
	Missing string `yaml:"missing"`

	// GroupDigits separates thousands in the sample count.
	GroupDigits bool `yaml:"group_digits"`
}

// DefaultOptions prints unrounded values one per line.
var DefaultOptions = Options{Precision: -1}

func (o Options) withDefaults() Options {
	if o.Terminator == "" {
		o.Terminator = "\n"
	}
	if o.Missing == "" {
		o.Missing = "-"
	}
	return o
}

// Value renders a single statistic according to opts.
func Value(v *float64, opts Options) string {
	opts = opts.withDefaults()
	if v == nil {
		return opts.Missing
	}
	return round(*v, opts.Precision)
}

func round(v float64, precision int) string {
	if precision < 0 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	s := strconv.FormatFloat(v, 'f', precision, 64)
	if strings.ContainsRune(s, '.') {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

// WriteText writes one "<prefix><label>: <value><terminator>" line per
// statistic of r, in report order.
func WriteText(w io.Writer, r stats.Report, opts Options) error {
	opts = opts.withDefaults()

	var b strings.Builder
	for _, f := range r.Fields() {
		b.WriteString(opts.Prefix)
		b.WriteString(Labels[f.Key])
		b.WriteString(": ")
		if f.Key == stats.KeyCount {
			if opts.GroupDigits {
				b.WriteString(humanize.Comma(r.Count))
			} else {
				b.WriteString(strconv.FormatInt(r.Count, 10))
			}
		} else {
			b.WriteString(Value(f.Value, opts))
		}
		b.WriteString(opts.Terminator)
	}

	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "failed to write report")
}

// WriteJSON writes r as a JSON object keeping report order. Missing
// statistics are null.
func WriteJSON(w io.Writer, r stats.Report) error {
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	return errors.Wrap(enc.Encode(r), "failed to encode report as JSON")
}

// WriteYAML writes r as a YAML mapping keeping report order. Missing
// statistics are null.
func WriteYAML(w io.Writer, r stats.Report) error {
	out, err := yaml.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "failed to encode report as YAML")
	}

	_, err = w.Write(out)
	return errors.Wrap(err, "failed to write report")
}

// Write renders r in the named format. opts only apply to Text.
func Write(w io.Writer, format string, r stats.Report, opts Options) error {
	switch format {
	case Text, "":
		return WriteText(w, r, opts)
	case JSON:
		return WriteJSON(w, r)
	case YAML:
		return WriteYAML(w, r)
	default:
		return errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
}
