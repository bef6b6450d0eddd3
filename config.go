// config.go
//
// Optional TOML configuration for the web server and JIRA integration.
// Command line flags win over the file; built-in defaults apply when the
// file is absent.
package main

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"
)

const defaultConfigFile = "nvmeDiags.toml"

type Config struct {
	WebPort     int    `toml:"web_port"`
	UploadDir   string `toml:"upload_dir"`
	JiraBaseURL string `toml:"jira_base_url"`
}

// Process-wide configuration, set once in main before any server starts
var config Config

func loadConfig(path string) Config {
	cfg := Config{
		WebPort:   8000,
		UploadDir: "uploads",
	}

	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if explicit || !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", path).Msg("config not loaded")
		}
		return cfg
	}
	log.Info().Str("file", path).Msg("config loaded")
	return cfg
}
