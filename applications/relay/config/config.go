package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

type Server struct {
	API      Api      `yaml:"api"`
	Workflow Workflow `yaml:"workflow"`
}

type Api struct {
	HTTPAddr string `yaml:"http_addr" validate:"required,hostname_port"`
}

// Workflow points at the external workflow trigger submissions are relayed to.
type Workflow struct {
	URL string `yaml:"url" validate:"required,url"`
}

func Parse(path string) (Server, error) {
	var cfg Server

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("can't read config file: %w", err)
	}

	if err = yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("can't unmarshal config: %w", err)
	}

	return cfg, nil
}

func (s Server) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}
