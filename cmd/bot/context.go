package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/PoluyanbIch/tabibot/internal/config"
	"github.com/PoluyanbIch/tabibot/internal/content"
	"github.com/PoluyanbIch/tabibot/internal/logging"
	"github.com/PoluyanbIch/tabibot/internal/quiz"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger builds the configured logger writing to out. The returned func
// flushes and closes any log file.
func (c *commandContext) logger(out io.Writer) (*slog.Logger, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	return logging.NewFromConfig(cfg, out)
}

func (c *commandContext) course(logger *slog.Logger) (*content.Course, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return content.LoadOrDefault(cfg.Content.Path, logger), nil
}

func (c *commandContext) engine(logger *slog.Logger) (*quiz.Engine, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	course, err := c.course(logger)
	if err != nil {
		return nil, err
	}
	return quiz.NewEngine(course, quiz.EngineOptions{
		RandomCount: cfg.Quiz.RandomCount,
		Logger:      logger,
	}), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
