// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

// config is the optional YAML document --config loads: endpoint and
// filepath defaults so a caller need not repeat them on every
// invocation. A flag, when given, takes precedence over the
// corresponding field in the file.
type config struct {
	Endpoint string `yaml:"endpoint"`
	Filepath string `yaml:"filepath"`
}

// loadConfigYaml reads and parses a YAML config file, mirroring the
// daemon's own global-configuration loader.
func loadConfigYaml(filename string) (config, error) {
	var result config
	bytes, err := ioutil.ReadFile(filename)
	if err != nil {
		return result, err
	}
	err = yaml.Unmarshal(bytes, &result)
	return result, err
}
