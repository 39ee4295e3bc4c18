// Command typecheck is the CLI entry point for the inference engine:
// it validates and inspects external-environment manifests (spec.md
// §6). It does not itself read program source — an on-disk
// reader/parser is a separate collaborator — so its commands operate
// on manifests and report the schemes they declare.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sunholo/ailang-infer/internal/alias"
	"github.com/sunholo/ailang-infer/internal/fresh"
	"github.com/sunholo/ailang-infer/internal/manifest"
	"github.com/sunholo/ailang-infer/internal/schema"
	"github.com/sunholo/ailang-infer/internal/types"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

// Version is set by ldflags at build time.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var engineVersion string

	root := &cobra.Command{
		Use:     "typecheck",
		Short:   "Inspect and validate external-environment manifests",
		Version: Version,
	}

	manifestCmd := &cobra.Command{
		Use:   "manifest",
		Short: "Work with external-environment manifests",
	}
	manifestCmd.PersistentFlags().StringVar(&engineVersion, "engine-version", "", "engine version to check the manifest's constraint against")

	validateCmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate a manifest file's schema, version constraint, and alias bodies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0], engineVersion)
		},
	}

	var asJSON bool
	schemesCmd := &cobra.Command{
		Use:   "schemes <path>",
		Short: "Print the resolved type scheme of every primitive and alias in a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchemes(args[0], engineVersion, asJSON)
		},
	}
	schemesCmd.Flags().BoolVar(&asJSON, "json", false, "emit a structured ailang.manifest-plan/v1 report instead of plain text")

	manifestCmd.AddCommand(validateCmd, schemesCmd)
	root.AddCommand(manifestCmd)
	return root
}

func runValidate(path, engineVersion string) error {
	m, err := manifest.Load(path, engineVersion)
	if err != nil {
		return err
	}
	if _, err := m.AliasDecls(); err != nil {
		return fmt.Errorf("alias bodies: %w", err)
	}
	fmt.Printf("%s %s (%d primitive(s), %d alias(es))\n",
		green("valid"), bold(path), len(m.Primitives), len(m.Aliases))
	return nil
}

func runSchemes(path, engineVersion string, asJSON bool) error {
	m, err := manifest.Load(path, engineVersion)
	if err != nil {
		return err
	}

	decls, err := m.AliasDecls()
	if err != nil {
		return fmt.Errorf("alias bodies: %w", err)
	}
	table, err := alias.NewTable(decls)
	if err != nil {
		return err
	}
	if err := table.CheckCycles(); err != nil {
		return err
	}

	freshSrc := fresh.NewSource()
	schemes, err := m.Schemes(freshSrc, table)
	if err != nil {
		return err
	}

	if asJSON {
		return printSchemesJSON(path, m, schemes)
	}
	return printSchemesText(m, schemes)
}

func printSchemesText(m *manifest.Manifest, schemes map[string]*types.Scheme) error {
	for _, name := range sortedSchemeNames(schemes) {
		fmt.Printf("%s :: %s\n", bold(name), types.PrintScheme(schemes[name]))
	}
	for name, entry := range m.Aliases {
		params := joinStrings(entry.Params)
		if params != "" {
			params = " " + params
		}
		fmt.Printf("type %s%s = %s\n", bold(name), params, entry.Body)
	}
	return nil
}

// printSchemesJSON reports the same information as a schema.Plan, the
// teacher's own structured-report shape, retargeted from a
// code-generation plan to a resolved-manifest report.
func printSchemesJSON(path string, m *manifest.Manifest, schemes map[string]*types.Scheme) error {
	plan := schema.NewPlan(fmt.Sprintf("manifest report: %s", path))
	for _, name := range sortedSchemeNames(schemes) {
		plan.AddFunction(name, types.PrintScheme(schemes[name]), path, nil)
	}
	for name, entry := range m.Aliases {
		plan.AddType(name, "alias", entry.Body, path)
	}
	data, err := plan.ToJSON()
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func sortedSchemeNames(schemes map[string]*types.Scheme) []string {
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func joinStrings(ss []string) string {
	return strings.Join(ss, " ")
}