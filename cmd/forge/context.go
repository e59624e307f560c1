package main

import (
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dadolfin1208/signalforge/internal/client"
)

var errNotLoggedIn = errors.New("not logged in; run `forge login --token <token>`")

type commandContext struct {
	configFlag *string
	serverFlag *string
	verbose    *bool

	configOnce sync.Once
	configPath string
	config     *forgeConfig
	configErr  error

	loggerOnce sync.Once
	logger     *zap.Logger
}

func newCommandContext(configFlag, serverFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		serverFlag: serverFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*forgeConfig, error) {
	c.configOnce.Do(func() {
		path := strings.TrimSpace(*c.configFlag)
		if path == "" {
			path, c.configErr = defaultConfigPath()
			if c.configErr != nil {
				return
			}
		}
		c.configPath = path

		cfg, err := loadConfig(path)
		if err != nil {
			c.configErr = err
			return
		}
		if server := strings.TrimSpace(*c.serverFlag); server != "" {
			cfg.Server = server
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) log() *zap.Logger {
	c.loggerOnce.Do(func() {
		c.logger = zap.NewNop()
		if c.verbose != nil && *c.verbose {
			cfg := zap.NewDevelopmentConfig()
			cfg.OutputPaths = []string{"stderr"}
			if logger, err := cfg.Build(); err == nil {
				c.logger = logger
			}
		}
	})
	return c.logger
}

// client returns an API client for the signed-in user.
func (c *commandContext) client() (*client.DashboardClient, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Token == "" {
		return nil, errNotLoggedIn
	}
	return c.clientWithToken(cfg.Token), nil
}

func (c *commandContext) clientWithToken(token string) *client.DashboardClient {
	cfg, _ := c.ensureConfig()
	return client.NewDashboardClient(cfg.Server, token, cfg.timeout(), c.log())
}

func seconds(n int, fallback time.Duration) time.Duration {
	if n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}
