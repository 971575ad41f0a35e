package main

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl"
	yaml "gopkg.in/yaml.v2"
)

const (
	configYmlFile = "walrestore.yml"
	configHclFile = "walrestore.hcl" // DEPRECATED
)

// `Config` is read from the data directory.  Command line options take
// precedence.
type Config struct {
	RestoreCommand string `yaml:"restoreCommand" hcl:"restore_command"`
	Log            string `yaml:"log" hcl:"log"`
}

// `loadConfig()` returns an empty config if `dir` contains neither
// `walrestore.yml` nor `walrestore.hcl`.
func loadConfig(dir string) (*Config, error) {
	var cfg Config

	ymlPath := filepath.Join(dir, configYmlFile)
	hclPath := filepath.Join(dir, configHclFile)
	switch {
	case exists(ymlPath):
		dat, err := ioutil.ReadFile(ymlPath)
		if err != nil {
			return nil, err
		}
		if err := yaml.UnmarshalStrict(dat, &cfg); err != nil {
			return nil, err
		}
	case exists(hclPath):
		dat, err := ioutil.ReadFile(hclPath)
		if err != nil {
			return nil, err
		}
		if err := hcl.Unmarshal(dat, &cfg); err != nil {
			return nil, err
		}
		lg.Warnw(
			"DEPRECATED `walrestore.hcl` config.  " +
				"You should migrate to `walrestore.yml`.",
		)
	}

	return &cfg, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
