package main

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nao1215/a11yscan/internal/config"
)

//go:embed templates/a11yscan.yaml
var configTemplate embed.FS

const (
	// configFileName is the default configuration file name.
	configFileName = config.DefaultConfigFile

	templatePath = "templates/a11yscan.yaml"
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented a11yscan configuration file",
		Long: `Init writes a commented configuration file holding every setting at its
default value. Selected settings can be filled in from flags; the result is
validated before anything is written.

API tokens are never written to the file. Set REPLICATE_API_TOKEN or
OPENAI_API_KEY in the environment instead.

Examples:
  # Write .a11yscan in the current directory
  a11yscan init

  # Production server on port 8080 without a model
  a11yscan init --env production --port 8080 --provider none

  # Print the file instead of writing it
  a11yscan init --stdout`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName, "Path of the configuration file to write")
	cmd.Flags().BoolP("force", "f", false, "Replace an existing file")
	cmd.Flags().Bool("stdout", false, "Print the configuration instead of writing it")
	cmd.Flags().Int("port", 0, "Server port to write (default keeps the template value)")
	cmd.Flags().String("env", "", "Server environment to write: development or production")
	cmd.Flags().String("provider", "", "Recommendation provider to write: auto, replicate, openai or none")
	cmd.Flags().Bool("no-history", false, "Write the file with result history disabled")

	return cmd
}

// templateOverrides holds the values init substitutes into the template.
// Zero fields keep the template value.
type templateOverrides struct {
	port        int
	environment string
	provider    string
	noHistory   bool
}

func (o templateOverrides) empty() bool {
	return o == templateOverrides{}
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	outputPath, err := flags.GetString("output")
	if err != nil {
		return err
	}
	force, err := flags.GetBool("force")
	if err != nil {
		return err
	}
	toStdout, err := flags.GetBool("stdout")
	if err != nil {
		return err
	}

	var o templateOverrides
	if o.port, err = flags.GetInt("port"); err != nil {
		return err
	}
	if o.environment, err = flags.GetString("env"); err != nil {
		return err
	}
	if o.provider, err = flags.GetString("provider"); err != nil {
		return err
	}
	if o.noHistory, err = flags.GetBool("no-history"); err != nil {
		return err
	}

	content, err := renderConfigTemplate(o)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if toStdout {
		_, err := out.Write(content)
		return err
	}

	if err := writeConfigFile(outputPath, content, force); err != nil {
		return err
	}

	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintf(out, "Use it with: a11yscan serve --config %s\n", outputPath)
	fmt.Fprintln(out, "API tokens are read from REPLICATE_API_TOKEN and OPENAI_API_KEY.")
	return nil
}

// renderConfigTemplate returns the embedded template with o applied. The
// template bytes are returned untouched when there is nothing to apply, so
// its layout survives. Otherwise the YAML tree is edited in place, which
// keeps the comments, and the result must pass config validation.
func renderConfigTemplate(o templateOverrides) ([]byte, error) {
	content, err := configTemplate.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config template: %w", err)
	}
	if o.empty() {
		return content, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config template: %w", err)
	}

	edits := []struct {
		set   bool
		value string
		path  []string
	}{
		{o.port != 0, strconv.Itoa(o.port), []string{"server", "port"}},
		{o.environment != "", o.environment, []string{"server", "environment"}},
		{o.provider != "", o.provider, []string{"recommendations", "provider"}},
		{o.noHistory, "false", []string{"history", "enabled"}},
	}
	for _, e := range edits {
		if !e.set {
			continue
		}
		if err := setScalar(&doc, e.value, e.path...); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}

	var f config.File
	if err := yaml.Unmarshal(buf.Bytes(), &f); err != nil {
		return nil, fmt.Errorf("failed to parse generated configuration: %w", err)
	}
	cfg := config.NewConfig()
	f.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return buf.Bytes(), nil
}

// setScalar replaces the value at path in a YAML mapping tree.
func setScalar(node *yaml.Node, value string, path ...string) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	for i, key := range path {
		next := mappingValue(node, key)
		if next == nil {
			return fmt.Errorf("config template has no %q key", key)
		}
		if i == len(path)-1 {
			if next.Kind != yaml.ScalarNode {
				return fmt.Errorf("config template key %q is not a scalar", key)
			}
			next.Value = value
			return nil
		}
		node = next
	}
	return nil
}

// mappingValue returns the value node stored under key, or nil.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// writeConfigFile writes content with owner-only permissions. Without force
// the file is created exclusively, so an existing file is never truncated.
func writeConfigFile(path string, content []byte, force bool) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	mode := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		mode = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(filepath.Clean(path), mode, 0600)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", path)
	}
	if err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	// A replaced file keeps its old mode unless it is reset.
	if force {
		if err := f.Chmod(0600); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to set configuration file mode: %w", err)
		}
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return f.Close()
}
