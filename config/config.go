package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/bookwyrm/catalog/pkg/kafka"
	"github.com/bookwyrm/catalog/pkg/logger"
	"github.com/bookwyrm/catalog/pkg/postgres"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"CATALOG_HTTP_HOST"`
	Port         string        `yaml:"port" envconfig:"CATALOG_HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"30s"`
	WriteTimeout time.Duration
}

type Config struct {
	Server   HTTPServer   `yaml:"server"`
	Kafka    kafka.Config `yaml:"kafka"`
	Database postgres.DB  `yaml:"db"`
	Log      logger.Log   `yaml:"log"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = &config
		printConfig(cfg)
	})

	return cfg
}

func printConfig(cfg *Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
