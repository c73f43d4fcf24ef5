package observability

import (
	"strings"

	"github.com/smallbiznis/revshare/internal/config"
)

// Config carries the observability settings shared by logger and metrics.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	MetricsEnabled       bool
	TracingEnabled       bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
}

func LoadConfig(cfg config.Config) Config {
	return Config{
		ServiceName:          cfg.AppName,
		Environment:          cfg.Environment,
		Version:              cfg.AppVersion,
		LogLevel:             cfg.LogLevel,
		LogFormat:            cfg.LogFormat,
		MetricsEnabled:       cfg.MetricsEnabled,
		TracingEnabled:       cfg.TracingEnabled,
		OtelExporterEndpoint: cfg.OTLPEndpoint,
		OtelExporterProtocol: strings.ToLower(cfg.OTLPProtocol),
	}
}

func (c Config) Debug() bool {
	return c.Environment != "production"
}
