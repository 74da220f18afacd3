package cmd

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/retain/pkg/config"
)

func init() {
	RegisterCommand(&Command{
		Name:  "config",
		Short: "Check, show or create retain.yaml",
		Long: `Work with the retain.yaml input configuration.

Subcommands:
  check [dir]            Validate dir/retain.yaml (default: current directory)
  show [dir]             Print the effective configuration, defaults filled in
  init [dir] [--force]   Write a retain.yaml holding the defaults

A missing retain.yaml is not an error: every setting has a default.`,
		Usage: "retain config <check|show|init> [dir]",
		Run:   runConfig,
	})
}

const configHeader = `# retain input configuration.
# keys: gestures per focus request, e.g. "Tab", "Shift+Tab", "Ctrl+n".
# An empty list disables a request.
`

func runConfig(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand is required (check, show or init)\n\nUsage: retain config <check|show|init> [dir]")
	}
	sub, rest := args[0], args[1:]

	force := false
	var positional []string
	for _, arg := range rest {
		switch arg {
		case "--force", "-f":
			force = true
		default:
			positional = append(positional, arg)
		}
	}
	if len(positional) > 1 {
		return fmt.Errorf("too many arguments: %v", positional[1:])
	}
	dir := "."
	if len(positional) == 1 {
		dir = positional[0]
	}

	switch sub {
	case "check":
		return configCheck(dir)
	case "show":
		return configShow(dir)
	case "init":
		return configInit(dir, force)
	default:
		return fmt.Errorf("unknown config subcommand %q (use check, show or init)", sub)
	}
}

func configCheck(dir string) error {
	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); stderrors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(stdout, "%s not found; defaults apply\n", path)
		return nil
	}
	cfg, err := config.LoadOptional(dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s is valid (schema %s)\n", path, cfg.Version)
	return nil
}

func configShow(dir string) error {
	cfg, err := config.LoadOptional(dir)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, err = stdout.Write(data)
	return err
}

func configInit(dir string, force bool) error {
	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	data, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(stdout, "Wrote %s\n", path)
	return nil
}
