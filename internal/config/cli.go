// Package config holds the kong command-line layout of dbtools.
package config

import "github.com/epics-go/dbtools/internal/cmd"

// LogConfig configures the global logger.
type LogConfig struct {
	Level string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"DBTOOLS_LOG_LEVEL"`
	File  string `help:"Also write logs to this file" env:"DBTOOLS_LOG_FILE"`
	Color string `help:"Colorize level names" enum:"auto,always,never" default:"auto" env:"DBTOOLS_LOG_COLOR"`
}

type CLI struct {
	Log    LogConfig `embed:"" prefix:"log."`
	Config string    `help:"Configuration file (JSON, YAML or TOML)" type:"path" env:"DBTOOLS_CONFIG"`

	Paramdefs cmd.Paramdefs     `cmd:"" help:"Generate asyn parameter definitions from a template or model file"`
	Model     cmd.Model         `cmd:"" help:"Print the parameter model derived from an input"`
	Db        cmd.Db            `cmd:"" help:"Load database files and print the combined records"`
	Subst     cmd.Subst         `cmd:"" help:"Expand substitution files into a database"`
	Cfg       cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`
	Version   cmd.Version       `cmd:"" help:"Print the version"`
}
