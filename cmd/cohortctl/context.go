package main

import (
	"errors"
	"fmt"
	"os/user"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dtroode/cohort-migrator/internal/app"
	"github.com/dtroode/cohort-migrator/internal/config"
	"github.com/dtroode/cohort-migrator/internal/logger"
	"github.com/dtroode/cohort-migrator/internal/monitor"
)

type commandContext struct {
	envFile *string
	jsonOut *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	// currentUser is replaced in tests.
	currentUser func() (string, error)
}

func newCommandContext(envFile *string, jsonOut *bool) *commandContext {
	return &commandContext{
		envFile:     envFile,
		jsonOut:     jsonOut,
		currentUser: osUser,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var files []string
		if c.envFile != nil && strings.TrimSpace(*c.envFile) != "" {
			files = append(files, strings.TrimSpace(*c.envFile))
		}
		c.config, c.configErr = config.Load(files...)
	})
	return c.config, c.configErr
}

// logger writes to stderr so reports on stdout stay machine readable.
func (c *commandContext) logger(cmd *cobra.Command) (*logger.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logger.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel), nil
}

func (c *commandContext) withApp(cmd *cobra.Command, fn func(*app.App) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	lg, err := c.logger(cmd)
	if err != nil {
		return err
	}
	a, err := app.New(cmd.Context(), cfg, lg)
	if err != nil {
		return err
	}
	defer a.Close()

	a.VerifyRegistry(cmd.Context(), monitor.ScopeCLI, commandPaths(cmd.Root()))
	return fn(a)
}

// commandPaths lists every runnable command below root, such as
// "cohortctl execute", in sorted order.
func commandPaths(root *cobra.Command) []string {
	var out []string
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		if c.Runnable() && c != root {
			out = append(out, c.CommandPath())
		}
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(root)
	slices.Sort(out)
	return out
}

// actor is the operating system account running the CLI. It is the identity
// checked against the operator allow-list.
func (c *commandContext) actor() (string, error) {
	name, err := c.currentUser()
	if err != nil {
		return "", fmt.Errorf("resolve operator: %w", err)
	}
	if strings.TrimSpace(name) == "" {
		return "", errors.New("resolve operator: empty user name")
	}
	return name, nil
}

func (c *commandContext) json() bool {
	return c.jsonOut != nil && *c.jsonOut
}

func osUser() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return u.Username, nil
}
