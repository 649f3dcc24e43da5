package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	querylens "github.com/querylens/querylens"
	"github.com/querylens/querylens/driver"
)

// Context carries the global flags into every command.
type Context struct {
	Config  string
	Profile string
	Verbose bool
	Quiet   bool
}

// CLI represents the command-line interface
var CLI struct {
	Config  string `help:"Configuration file path" default:"querylens.yaml"`
	Profile string `help:"Connection profile name from configuration" short:"p"`
	EnvFile string `help:"Env file to load before reading the configuration"`
	Verbose bool   `help:"Enable verbose output" short:"v"`
	Quiet   bool   `help:"Suppress output" short:"q"`

	Query     QueryCmd     `cmd:"" help:"Execute a query or command batch against a profile"`
	Databases DatabasesCmd `cmd:"" help:"List databases visible to the connection"`
	Schemas   SchemasCmd   `cmd:"" help:"List schemas in the connected database"`
	Tables    TablesCmd    `cmd:"" help:"List tables and views in a schema"`
	Describe  DescribeCmd  `cmd:"" help:"Show the full schema of one table"`
	DDL       DDLCmd       `cmd:"" help:"Generate dialect-specific DDL from a portable definition"`
	Version   VersionCmd   `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

func (cmd *VersionCmd) Run() error {
	fmt.Println("QueryLens v0.1.0")
	return nil
}

// openDriver resolves the selected profile and opens a connection to it.
// The returned context carries the profile's timeout and must be used for
// every call on the driver.
func openDriver(appCtx *Context) (driver.Driver, context.Context, context.CancelFunc, error) {
	config, err := querylens.LoadConfig(appCtx.Config)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	profile, err := config.Profile(appCtx.Profile)
	if err != nil {
		return nil, nil, nil, err
	}

	dialect, err := querylens.ParseDialect(profile.Dialect)
	if err != nil {
		return nil, nil, nil, err
	}

	timeout := time.Duration(profile.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	d, err := driver.Connect(ctx, dialect, driver.ConnectionOptions{
		Host:     profile.Host,
		Port:     profile.Port,
		Username: profile.Username,
		Password: profile.Password,
		Database: profile.Database,
		FilePath: profile.Path,
		Timeout:  timeout,
	})
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}

	return d, ctx, cancel, nil
}

func main() {
	ctx := kong.Parse(&CLI)

	appCtx := &Context{
		Config:  CLI.Config,
		Profile: CLI.Profile,
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
	}

	if CLI.EnvFile != "" {
		if err := querylens.LoadEnvFile(CLI.EnvFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
