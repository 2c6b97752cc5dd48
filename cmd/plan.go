package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ridoystarlord/schemasync/database"
	"github.com/ridoystarlord/schemasync/diff"
	"github.com/ridoystarlord/schemasync/generator"
	"github.com/ridoystarlord/schemasync/introspect"
	"github.com/ridoystarlord/schemasync/loader"
	"github.com/ridoystarlord/schemasync/migration"
	"github.com/ridoystarlord/schemasync/schema"
)

// plan is a diff between the database and the declaration, rendered both ways.
type plan struct {
	Current   *schema.Schema
	Desired   *schema.Schema
	Migration *migration.Migration
	Up        []string
	Down      []string
}

// loadDeclaration reads the declared schema from file, the configured models
// directory, or the configured schema file, in that order.
func loadDeclaration(file string) (schema.Definition, error) {
	switch {
	case file != "":
		return loader.LoadYAML(file)
	case cfg.Schema.ModelsDir != "":
		return loader.LoadStructs(cfg.Schema.ModelsDir)
	default:
		return loader.LoadYAML(cfg.Schema.File)
	}
}

func loadDesired(file string) (*schema.Schema, error) {
	def, err := loadDeclaration(file)
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}
	s, err := schema.New(def, cfg.SchemaOptions()...)
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}
	return s, nil
}

// withClient connects, runs fn, and always releases the connection.
func withClient(ctx context.Context, fn func(database.Client) error) error {
	client := database.NewPgxClient(cfg.Database.URL)
	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		if err := client.End(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("closing connection", "error", err)
		}
	}()
	return fn(client)
}

func buildPlan(ctx context.Context, client database.Client, file string) (*plan, error) {
	desired, err := loadDesired(file)
	if err != nil {
		return nil, err
	}
	current, err := introspect.FromDatabase(ctx, client, cfg.Schema.Name, cfg.SchemaOptions()...)
	if err != nil {
		return nil, fmt.Errorf("introspecting database: %w", err)
	}
	return renderPlan(current, desired)
}

func renderPlan(current, desired *schema.Schema) (*plan, error) {
	d := diff.New(current, desired)

	m, err := d.Migration()
	if err != nil {
		return nil, fmt.Errorf("comparing schemas: %w", err)
	}
	up, err := generator.GenerateSQL(m)
	if err != nil {
		return nil, fmt.Errorf("generating SQL: %w", err)
	}

	rollback, err := d.Rollback()
	if err != nil {
		return nil, fmt.Errorf("comparing schemas: %w", err)
	}
	down, err := generator.GenerateSQL(rollback)
	if err != nil {
		return nil, fmt.Errorf("generating rollback SQL: %w", err)
	}

	if err := generator.Check(up); err != nil {
		return nil, fmt.Errorf("checking SQL: %w", err)
	}
	if err := generator.Check(down); err != nil {
		return nil, fmt.Errorf("checking rollback SQL: %w", err)
	}

	slog.Debug("planned migration", "operations", m.Len(), "statements", len(up))
	return &plan{Current: current, Desired: desired, Migration: m, Up: up, Down: down}, nil
}
