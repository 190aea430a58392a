package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/coolbeans/lexunit/pkg/parser"
	"github.com/coolbeans/lexunit/pkg/unit"
	"github.com/coolbeans/lexunit/pkg/validate"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "lexunit",
		Short: "EUR-Lex legal text structure parser",
		Long: `Lexunit parses EUR-Lex HTML documents (Official Journal and
consolidated formats) into a hierarchical JSON unit tree with stable ids,
extracted citations, and a structural validation report.`,
		Version: version,
	}

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(validateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseCmd() *cobra.Command {
	var output string
	var validationOut string

	cmd := &cobra.Command{
		Use:   "parse <file.html>",
		Short: "Parse an EUR-Lex HTML file into the unit-tree JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			p := parser.New(filepath.Base(args[0]))
			result, err := p.Parse(string(data))
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			encoded, err := unit.EncodeDocument(result)
			if err != nil {
				return err
			}

			if validationOut != "" {
				gate := validate.Evaluate(result, nil)
				gateJSON, err := gate.ToJSON()
				if err != nil {
					return err
				}
				if err := os.WriteFile(validationOut, append(gateJSON, '\n'), 0o644); err != nil {
					return err
				}
			}

			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
				return nil
			}
			if err := os.WriteFile(output, append(encoded, '\n'), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d units to %s\n", len(result.Units), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write JSON to file instead of stdout")
	cmd.Flags().StringVar(&validationOut, "validation", "", "also write the gate result JSON to this file")
	return cmd
}

func validateCmd() *cobra.Command {
	var profilePath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "validate <file.html>",
		Short: "Parse a file and run the structural gate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			profile := validate.DefaultProfile()
			if profilePath != "" {
				profile, err = validate.LoadProfile(profilePath)
				if err != nil {
					return err
				}
			}

			p := parser.New(filepath.Base(args[0]))
			result, err := p.Parse(string(data))
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			gate := validate.Evaluate(result, profile)
			if asJSON {
				out, err := gate.ToJSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			} else {
				fmt.Fprint(cmd.OutOrStdout(), gate.String())
			}
			if !gate.Passed {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&profilePath, "profile", "", "YAML validation profile")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the gate result as JSON")
	return cmd
}
