package main

import (
	"testing"

	"github.com/spf13/cobra"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "a11yscan" {
			t.Errorf("expected use 'a11yscan', got %q", cmd.Use)
		}
	})

	t.Run("has descriptions and version", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" || cmd.Long == "" {
			t.Error("expected non-empty descriptions")
		}
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	flagTests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{name: "verbose", shorthand: "v", defValue: "false"},
		{name: "config", shorthand: "c", defValue: ""},
	}
	for _, tt := range flagTests {
		t.Run("has persistent "+tt.name+" flag", func(t *testing.T) {
			t.Parallel()
			flag := cmd.PersistentFlags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()

		want := map[string]bool{
			"check":   false,
			"serve":   false,
			"history": false,
			"mcp":     false,
			"init":    false,
			"version": false,
		}
		for _, sub := range cmd.Commands() {
			if _, ok := want[sub.Name()]; ok {
				want[sub.Name()] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("expected %s subcommand", name)
			}
		}
	})

	t.Run("silences usage and errors", func(t *testing.T) {
		t.Parallel()
		if !cmd.SilenceUsage {
			t.Error("expected SilenceUsage to be true")
		}
		if !cmd.SilenceErrors {
			t.Error("expected SilenceErrors to be true")
		}
	})
}

func TestGetVerboseFlag(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	root.SetArgs([]string{"version", "-v"})
	var verbose bool
	for _, sub := range root.Commands() {
		if sub.Name() == "version" {
			sub.RunE = func(cmd *cobra.Command, _ []string) error {
				verbose = getVerboseFlag(cmd)
				return nil
			}
		}
	}
	if err := root.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verbose {
		t.Error("expected verbose to be read from the root flag")
	}

	if getVerboseFlag(NewCheckCmd()) {
		t.Error("expected false for a command without the flag")
	}
}
