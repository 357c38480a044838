// Package config holds the CLI client configuration.
package config

import (
	"flag"
	"os"

	"github.com/avolkovs/codepad/internal/flagx"
)

type Config struct {
	ServerAddr string
}

func defaultConfig() *Config {
	return &Config{
		ServerAddr: "http://localhost:8080",
	}
}

func parseEnv(c *Config) {
	if addr, ok := os.LookupEnv("SERVER_ADDRESS"); ok {
		c.ServerAddr = addr
	}
}

func parseFlags(c *Config) {
	fs := flag.NewFlagSet("client", flag.ExitOnError)
	fs.StringVar(&c.ServerAddr, "a", c.ServerAddr, "server base URL")

	allowed := []string{"-a"}
	fs.Parse(flagx.FilterArgs(os.Args[1:], allowed))
}

func LoadConfig() *Config {
	c := defaultConfig()
	parseEnv(c)
	parseFlags(c)
	return c
}
