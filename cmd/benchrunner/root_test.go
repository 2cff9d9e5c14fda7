package benchrunner

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestRoot_SubcommandsPresent(t *testing.T) {
	have := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
		if c.Name() == "list" {
			// list should have subcommands 'benchmarks' and 'commands'
			sub := map[string]bool{}
			for _, sc := range c.Commands() {
				sub[sc.Name()] = true
			}
			if !sub["benchmarks"] || !sub["commands"] {
				t.Fatalf("list subcommands missing: %v", sub)
			}
		}
		if c.Name() == "config" {
			sub := map[string]bool{}
			for _, sc := range c.Commands() {
				sub[sc.Name()] = true
			}
			if !sub["show"] {
				t.Fatalf("config must have show subcommand")
			}
		}
	}
	for _, want := range []string{"run", "report", "list", "config"} {
		if !have[want] {
			t.Fatalf("missing subcommand %s", want)
		}
	}
}

func TestCommands_HaveDescriptions(t *testing.T) {
	var check func(*cobra.Command)
	check = func(cmd *cobra.Command) {
		if cmd.Short == "" || cmd.Long == "" {
			t.Fatalf("command %s missing Short/Long", cmd.Name())
		}
		for _, sc := range cmd.Commands() {
			check(sc)
		}
	}
	check(rootCmd)
}

func TestListCommands_PrintsTree(t *testing.T) {
	var buf bytes.Buffer
	listAllCommands(&buf, rootCmd)
	out := buf.String()
	if !strings.Contains(out, "benchrunner run") {
		t.Fatalf("expected command path in output, got: %s", out)
	}
	if !strings.Contains(out, "    benchrunner list benchmarks") {
		t.Fatalf("expected nested command to be indented, got: %s", out)
	}
}

func TestRunFlags_BoundToConfigKeys(t *testing.T) {
	for name := range flagKeys {
		if name == "verbose" {
			continue
		}
		if runCmd.Flags().Lookup(name) == nil {
			t.Fatalf("run has no --%s flag", name)
		}
	}
}

func TestList_DescribesItsSubcommands(t *testing.T) {
	for _, want := range []string{"list benchmarks", "list commands"} {
		if !strings.Contains(listCmd.Long, want) {
			t.Fatalf("list description does not mention %q: %s", want, listCmd.Long)
		}
	}
}
