package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyuri/fenixconv/pkg/fenixconv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// anim command group
var animCmd = &cobra.Command{
	Use:   "anim",
	Short: "Edit animation data as text",
	Long: `Dump the descriptor, palette, control points and sequences of a graphic
as editable text, and apply an edited description back onto the graphic.

Pixel data never leaves the binary file.`,
}

func init() {
	animCmd.AddCommand(animDumpCmd)
	animCmd.AddCommand(animApplyCmd)
}

var animDumpCmd = &cobra.Command{
	Use:   "dump <graphic>",
	Short: "Write the text description of a graphic",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnimDump,
}

func init() {
	animDumpCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
}

func runAnimDump(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")

	g, err := fenixconv.ReadGraphicFile(args[0])
	if err != nil {
		return err
	}

	output := os.Stdout
	if outputPath != "" {
		output, err = os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer output.Close()
	}

	if err := fenixconv.WriteDescription(output, g); err != nil {
		return fmt.Errorf("write description: %w", err)
	}
	if outputPath != "" {
		return output.Close()
	}
	return nil
}

var animApplyCmd = &cobra.Command{
	Use:   "apply <graphic> <description.txt>",
	Short: "Apply a text description to a graphic",
	Long: `Replace the descriptor, palette, control points and sequences of a
graphic with those of a text description and write the result.

The description must match the graphic's size and depth, and may only
reference frames the graphic has. The output format comes from --format,
the output extension, or else the input format.`,
	Args: cobra.ExactArgs(2),
	RunE: runAnimApply,
}

func init() {
	animApplyCmd.Flags().StringP("output", "o", "", "Output file (default: overwrite the input graphic)")
	animApplyCmd.Flags().String("format", "", "Output format: map, fbm")
}

func runAnimApply(cmd *cobra.Command, args []string) error {
	graphicPath, descPath := args[0], args[1]
	outputPath, _ := cmd.Flags().GetString("output")
	formatName, _ := cmd.Flags().GetString("format")
	if outputPath == "" {
		outputPath = graphicPath
	}

	format, g, err := fenixconv.ReadFile(graphicPath)
	if err != nil {
		return err
	}
	graphic, ok := g.(*fenixconv.Graphic)
	if !ok {
		return fmt.Errorf("%s: %w: %s file is not a graphic", graphicPath, fenixconv.ErrFormatMismatch, format)
	}

	f, err := os.Open(descPath)
	if err != nil {
		return fmt.Errorf("open description: %w", err)
	}
	defer f.Close()

	desc, err := fenixconv.ReadDescription(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", descPath, err)
	}
	if err := desc.Apply(graphic); err != nil {
		return fmt.Errorf("apply %s: %w", descPath, err)
	}

	if formatName != "" || filepath.Ext(outputPath) != filepath.Ext(graphicPath) {
		if format, err = outputFormat(formatName, outputPath); err != nil {
			return err
		}
	}
	if err := fenixconv.WriteFile(outputPath, format, graphic); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"sequences": graphic.NumSequences(),
		"keyframes": graphic.NumKeyFrames(),
	}).Infof("applied %s to %s", descPath, outputPath)
	return nil
}
