package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyuri/fenixconv/pkg/fenixconv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var log = logrus.New()

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fenixconv",
	Short: "Inspect and convert Fenix palette and graphic files",
	Long: `fenixconv is a tool for working with Fenix/Bennu game asset files.

It reads and writes PAL and FPL palettes, MAP/M16 static graphics and FBM
animated graphics, plain or gzip-compressed. It can convert between them,
dump and re-apply animation data as editable text, and validate files.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		setupLogging(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug information to stderr")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(paletteCmd)
	rootCmd.AddCommand(animCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(versionCmd)
}

func setupLogging(verbose bool) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.InfoLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	fenixconv.Logger = log
}

// outputFormat picks the format to write: the explicit flag value, else the
// output file extension
func outputFormat(explicit, outputPath string) (fenixconv.Format, error) {
	name := explicit
	if name == "" {
		name = filepath.Ext(outputPath)
	}
	format, err := fenixconv.ParseFormat(name)
	if err != nil {
		return fenixconv.FormatUnknown, fmt.Errorf("output format (use --format): %w", err)
	}
	return format, nil
}

// convert command
var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Convert between Fenix formats",
	Long: `Convert a palette or graphic file to another Fenix format.

Graphics convert to graphics (a MAP holds exactly one frame), 8bpp graphics
to palettes (their color table), and palettes to palettes. The output
format comes from --format or the output file extension.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringP("output", "o", "", "Output file (required)")
	convertCmd.MarkFlagRequired("output")
	convertCmd.Flags().String("format", "", "Output format: pal, fpl, map, fbm")
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	outputPath, _ := cmd.Flags().GetString("output")
	formatName, _ := cmd.Flags().GetString("format")

	format, err := outputFormat(formatName, outputPath)
	if err != nil {
		return err
	}

	inFormat, v, err := fenixconv.ReadFile(inputPath)
	if err != nil {
		return err
	}
	if err := fenixconv.WriteFile(outputPath, format, v); err != nil {
		return fmt.Errorf("convert %s to %s: %w", inFormat, format, err)
	}

	log.WithFields(logrus.Fields{"from": inFormat, "to": format}).Infof("converted %s to %s", inputPath, outputPath)
	return nil
}

// palette command
var paletteCmd = &cobra.Command{
	Use:   "palette <file>",
	Short: "Print the colors of a palette or 8bpp graphic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, v, err := fenixconv.ReadFile(args[0])
		if err != nil {
			return err
		}
		var p *fenixconv.Palette
		switch t := v.(type) {
		case *fenixconv.Palette:
			p = t
		case *fenixconv.Graphic:
			if t.Palette() == nil {
				return fmt.Errorf("%s: %dbpp graphic has no palette", args[0], t.Depth())
			}
			p = t.Palette()
		}
		return fenixconv.WritePaletteDescription(os.Stdout, p)
	},
}

// version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fenixconv version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
	},
}
