package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Sentinel errors
var (
	ErrNoQueryText         = errors.New("either a query argument or --file must be provided")
	ErrQueryAndFile        = errors.New("query argument and --file are mutually exclusive")
	ErrInvalidOutputFormat = errors.New("invalid output format")
)

// QueryCmd represents the query command
type QueryCmd struct {
	SQL    string `arg:"" optional:"" help:"Query text (SQL, or db.<collection>.<op>(...) for MongoDB)"`
	File   string `short:"f" help:"Read the query text from a file" type:"path"`
	Format string `help:"Output format (table, json, csv, yaml)" default:"table"`
}

func (q *QueryCmd) Run(ctx *Context) error {
	text, err := q.queryText()
	if err != nil {
		return err
	}

	format := strings.ToLower(q.Format)
	if !isValidFormat(format) {
		return fmt.Errorf("%w: %s", ErrInvalidOutputFormat, q.Format)
	}

	d, runCtx, cancel, err := openDriver(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	defer d.Close()

	if ctx.Verbose {
		color.Blue("Executing against %s", d.Dialect())
	}

	result, err := d.ExecuteQuery(runCtx, text)
	if err != nil {
		return err
	}

	if ctx.Quiet {
		return nil
	}

	return renderResult(os.Stdout, result, format)
}

func (q *QueryCmd) queryText() (string, error) {
	if q.SQL != "" && q.File != "" {
		return "", ErrQueryAndFile
	}

	if q.File != "" {
		data, err := os.ReadFile(q.File)
		if err != nil {
			return "", fmt.Errorf("failed to read query file: %w", err)
		}
		return string(data), nil
	}

	if strings.TrimSpace(q.SQL) == "" {
		return "", ErrNoQueryText
	}

	return q.SQL, nil
}
