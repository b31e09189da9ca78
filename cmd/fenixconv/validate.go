package main

import (
	"fmt"
	"strings"

	"github.com/dyuri/fenixconv/pkg/fenixconv"
	"github.com/spf13/cobra"
)

// validate command
var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate file structure",
	Long: `Validate the structure and contents of a palette or graphic file.

The file must parse. Graphics are also checked for names that do not fit
or are not plain ASCII, sequences without keyframes, and frames that no
sequence shows.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().Bool("strict", false, "Fail on warnings")
}

func runValidate(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	strict, _ := cmd.Flags().GetBool("strict")

	format, v, err := fenixconv.ReadFile(inputPath)
	if err != nil {
		return err
	}

	var issues []fenixconv.ValidationError
	if g, ok := v.(*fenixconv.Graphic); ok {
		issues = fenixconv.Validate(g)
	}

	var errs, warnings []fenixconv.ValidationError
	for _, issue := range issues {
		if issue.Level == fenixconv.LevelError {
			errs = append(errs, issue)
		} else {
			warnings = append(warnings, issue)
		}
	}

	printResults(inputPath, format, errs, warnings, strict)

	if len(errs) > 0 || (strict && len(warnings) > 0) {
		return fmt.Errorf("validation failed")
	}
	return nil
}

func printResults(file string, format fenixconv.Format, errs, warnings []fenixconv.ValidationError, strict bool) {
	fmt.Printf("Validating: %s\n", file)
	fmt.Println(strings.Repeat("=", 50))

	if len(errs) == 0 && len(warnings) == 0 {
		fmt.Printf("✓ Valid %s file - no issues found\n", strings.ToUpper(format.String()))
		return
	}

	if len(errs) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(errs))
		for _, err := range errs {
			fmt.Printf("  ✗ %s\n", err)
		}
	}

	if len(warnings) > 0 {
		fmt.Printf("\nWarnings (%d):\n", len(warnings))
		for _, warn := range warnings {
			fmt.Printf("  ⚠ %s\n", warn)
		}
	}

	fmt.Println()
	if len(errs) > 0 {
		fmt.Printf("Validation failed: %d error(s)", len(errs))
		if len(warnings) > 0 {
			fmt.Printf(", %d warning(s)", len(warnings))
		}
		fmt.Println()
	} else {
		fmt.Printf("Validation passed with %d warning(s)\n", len(warnings))
		if strict {
			fmt.Println("(use without --strict to ignore warnings)")
		}
	}
}
