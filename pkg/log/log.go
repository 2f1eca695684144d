// Copyright 2014 The Chihaya Authors. All rights reserved.
// Use of this source code is governed by the BSD 2-Clause license,
// which can be found in the LICENSE file.

// Package log adds a thin wrapper around logrus shared by the ingestion
// layer, the server and the command line.
package log

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

var l = logrus.New()

// SetDebug controls debug logging.
func SetDebug(to bool) {
	if to {
		l.SetLevel(logrus.DebugLevel)
		return
	}
	l.SetLevel(logrus.InfoLevel)
}

// SetLevel parses a logrus level name ("debug", "info", "warn", ...) and
// applies it.
func SetLevel(name string) error {
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		return err
	}
	l.SetLevel(lvl)
	return nil
}

// SetFormatter sets the formatter.
func SetFormatter(to logrus.Formatter) {
	l.SetFormatter(to)
}

// SetOutput sets the output.
func SetOutput(to io.Writer) {
	l.SetOutput(to)
}

// Fields is a map of logging fields.
type Fields map[string]interface{}

// LogFields implements Fielder for Fields.
func (f Fields) LogFields() Fields {
	return f
}

// A Fielder provides Fields via the LogFields method.
type Fielder interface {
	LogFields() Fields
}

type err struct {
	e error
}

func (e err) LogFields() Fields {
	return Fields{
		"error": e.e.Error(),
		"type":  fmt.Sprintf("%T", e.e),
	}
}

// Err is a wrapper around errors that implements Fielder.
func Err(e error) Fielder {
	return err{e}
}

// merge flattens fielders into one set of logrus fields. Later fielders
// overwrite keys of earlier ones.
func merge(fielders []Fielder) logrus.Fields {
	fields := logrus.Fields{}
	for _, f := range fielders {
		if f == nil {
			continue
		}
		for k, v := range f.LogFields() {
			fields[k] = v
		}
	}
	return fields
}

func entry(fielders []Fielder) logrus.FieldLogger {
	if len(fielders) == 0 {
		return l
	}
	return l.WithFields(merge(fielders))
}

// Debug logs at the debug level if debug logging is enabled.
func Debug(v interface{}, fielders ...Fielder) {
	if !l.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	entry(fielders).Debug(v)
}

// Info logs at the info level.
func Info(v interface{}, fielders ...Fielder) {
	entry(fielders).Info(v)
}

// Warn logs at the warning level.
func Warn(v interface{}, fielders ...Fielder) {
	entry(fielders).Warn(v)
}

// Error logs at the error level.
func Error(v interface{}, fielders ...Fielder) {
	entry(fielders).Error(v)
}

// Fatal logs at the fatal level and exits with a status code != 0.
func Fatal(v interface{}, fielders ...Fielder) {
	entry(fielders).Fatal(v)
}
