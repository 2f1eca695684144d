// Copyright 2014 The Chihaya Authors. All rights reserved.
// Use of this source code is governed by the BSD 2-Clause license,
// which can be found in the LICENSE file.

package main

import (
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/chihaya/incstats/format"
	httpfrontend "github.com/chihaya/incstats/frontend/http"
	"github.com/chihaya/incstats/ingest"
	"github.com/chihaya/incstats/pkg/log"
	"github.com/chihaya/incstats/storage/memory"
)

type storageConfig struct {
	Name   string      `yaml:"name"`
	Config interface{} `yaml:"config"`
}

// ReportConfig controls how the report command renders its output.
type ReportConfig struct {
	Format         string `yaml:"format"`
	format.Options `yaml:",inline"`
}

// Config represents the configuration used for executing incstats.
type Config struct {
	LogLevel    string              `yaml:"log_level"`
	MetricsAddr string              `yaml:"metrics_addr"`
	Namespace   string              `yaml:"namespace"`
	Report      ReportConfig        `yaml:"report"`
	Ingest      ingest.Config       `yaml:"ingest"`
	HTTPConfig  httpfrontend.Config `yaml:"http"`
	Storage     storageConfig       `yaml:"storage"`
}

// LogFields renders the current config as a set of Logrus fields.
func (cfg Config) LogFields() log.Fields {
	return log.Fields{
		"logLevel":    cfg.LogLevel,
		"metricsAddr": cfg.MetricsAddr,
		"namespace":   cfg.Namespace,
		"format":      cfg.Report.Format,
		"storage":     cfg.Storage.Name,
	}
}

// DefaultConfig is used when no configuration file is provided.
var DefaultConfig = Config{
	LogLevel:  "info",
	Namespace: "incstats",
	Report: ReportConfig{
		Format:  format.Text,
		Options: format.DefaultOptions,
	},
	HTTPConfig: httpfrontend.Config{
		Addr: "localhost:6880",
	},
	Storage: storageConfig{
		Name: memory.Name,
	},
}

// ConfigFile represents a namespaced YAML configuration file.
type ConfigFile struct {
	Incstats Config `yaml:"incstats"`
}

// ParseConfigFile returns a new ConfigFile given the path to a YAML
// configuration file. Values missing from the file keep their DefaultConfig
// value.
//
// It supports relative and absolute paths and environment variables. An empty
// path yields DefaultConfig.
func ParseConfigFile(path string) (*ConfigFile, error) {
	cfgFile := ConfigFile{Incstats: DefaultConfig}
	if path == "" {
		return &cfgFile, nil
	}

	f, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	contents, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(contents, &cfgFile)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}

	return &cfgFile, nil
}
