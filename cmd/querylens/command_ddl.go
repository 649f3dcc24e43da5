package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"

	querylens "github.com/querylens/querylens"
	"github.com/querylens/querylens/ddl"
	"github.com/querylens/querylens/driver"
)

// DDLCmd groups the DDL generation subcommands. Each one reads a portable
// definition from a JSON file, prints the generated statements, and only
// touches the database when --apply is set.
type DDLCmd struct {
	Create DDLCreateCmd `cmd:"" help:"Generate CREATE TABLE from a table definition file"`
	Alter  DDLAlterCmd  `cmd:"" help:"Generate ALTER TABLE from an alteration definition file"`
	Drop   DDLDropCmd   `cmd:"" help:"Generate DROP TABLE from a drop definition file"`
}

// DDLCreateCmd represents the ddl create command
type DDLCreateCmd struct {
	File    string `arg:"" help:"Table definition file (JSON)" type:"path"`
	Dialect string `short:"d" help:"Target dialect (defaults to the selected profile's dialect)"`
	Apply   bool   `help:"Execute the generated statements against the profile"`
}

func (cmd *DDLCreateCmd) Run(ctx *Context) error {
	var def ddl.TableDefinition
	if err := readDefinition(cmd.File, &def); err != nil {
		return err
	}

	return runDDL(ctx, cmd.Dialect, cmd.Apply, func(g ddl.Generator) (*ddl.Result, error) {
		return g.CreateTable(&def)
	})
}

// DDLAlterCmd represents the ddl alter command
type DDLAlterCmd struct {
	File    string `arg:"" help:"Alteration definition file (JSON)" type:"path"`
	Dialect string `short:"d" help:"Target dialect (defaults to the selected profile's dialect)"`
	Apply   bool   `help:"Execute the generated statements against the profile"`
}

func (cmd *DDLAlterCmd) Run(ctx *Context) error {
	var def ddl.AlterTableDefinition
	if err := readDefinition(cmd.File, &def); err != nil {
		return err
	}

	return runDDL(ctx, cmd.Dialect, cmd.Apply, func(g ddl.Generator) (*ddl.Result, error) {
		return g.AlterTable(&def)
	})
}

// DDLDropCmd represents the ddl drop command
type DDLDropCmd struct {
	File    string `arg:"" help:"Drop definition file (JSON)" type:"path"`
	Dialect string `short:"d" help:"Target dialect (defaults to the selected profile's dialect)"`
	Apply   bool   `help:"Execute the generated statements against the profile"`
}

func (cmd *DDLDropCmd) Run(ctx *Context) error {
	var def ddl.DropTableDefinition
	if err := readDefinition(cmd.File, &def); err != nil {
		return err
	}

	return runDDL(ctx, cmd.Dialect, cmd.Apply, func(g ddl.Generator) (*ddl.Result, error) {
		return g.DropTable(&def)
	})
}

func readDefinition(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read definition file: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return querylens.WrapError(querylens.ErrorKindInvalidInput, "", fmt.Errorf("invalid definition file: %w", err))
	}
	return nil
}

// runDDL resolves the target dialect, generates the statements, prints
// them, and optionally applies them one by one over the profile connection.
func runDDL(ctx *Context, dialectFlag string, apply bool, generate func(ddl.Generator) (*ddl.Result, error)) error {
	dialect, err := resolveDialect(ctx, dialectFlag)
	if err != nil {
		return err
	}

	generator, err := ddl.New(dialect)
	if err != nil {
		return err
	}

	result, err := generate(generator)
	if err != nil {
		return err
	}

	if !ctx.Quiet {
		for _, stmt := range result.SQL {
			fmt.Println(stmt + ";")
		}
		color.Green(result.Message)
	}

	if !apply {
		return nil
	}

	return withDriver(ctx, func(runCtx context.Context, d driver.Driver) error {
		for _, stmt := range result.SQL {
			if _, err := d.ExecuteQuery(runCtx, stmt); err != nil {
				return err
			}
		}
		if !ctx.Quiet {
			color.Green("applied %d statement(s)", len(result.SQL))
		}
		return nil
	})
}

// resolveDialect prefers the explicit flag over the selected profile.
func resolveDialect(ctx *Context, flag string) (querylens.Dialect, error) {
	if flag != "" {
		return querylens.ParseDialect(flag)
	}

	config, err := querylens.LoadConfig(ctx.Config)
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}

	profile, err := config.Profile(ctx.Profile)
	if err != nil {
		return "", err
	}

	return querylens.ParseDialect(profile.Dialect)
}
