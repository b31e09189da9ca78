package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/djherbis/times"
	"github.com/dustin/go-humanize"
	"github.com/dyuri/fenixconv/pkg/fenixconv"
	"github.com/spf13/cobra"
)

// info command
var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Display file information",
	Long: `Display metadata and statistics about a palette or graphic file.

Shows the format, dimensions, depth, descriptor fields and counts of
frames, sequences, keyframes and control points.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().Bool("json", false, "Output as JSON")
	infoCmd.Flags().Bool("brief", false, "Show only summary")
}

// fileInfo is the JSON form of the info output
type fileInfo struct {
	File      string         `json:"file"`
	Format    string         `json:"format"`
	Size      int64          `json:"fileSize"`
	Modified  time.Time      `json:"modified"`
	Created   *time.Time     `json:"created,omitempty"`
	Graphic   *graphicInfo   `json:"graphic,omitempty"`
	Sequences []sequenceInfo `json:"sequences,omitempty"`
}

type graphicInfo struct {
	Name          string `json:"name"`
	ID            int32  `json:"id"`
	Flags         int32  `json:"flags"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Depth         int    `json:"depth"`
	Frames        int    `json:"frames"`
	KeyFrames     int    `json:"keyframes"`
	ControlPoints int    `json:"controlPoints"`
}

type sequenceInfo struct {
	Name      string `json:"name"`
	KeyFrames int    `json:"keyframes"`
	Next      int    `json:"next"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	jsonOutput, _ := cmd.Flags().GetBool("json")
	brief, _ := cmd.Flags().GetBool("brief")

	stat, err := os.Stat(inputPath)
	if err != nil {
		return fmt.Errorf("stat input file: %w", err)
	}

	format, v, err := fenixconv.ReadFile(inputPath)
	if err != nil {
		return err
	}

	info := fileInfo{
		File:     inputPath,
		Format:   format.String(),
		Size:     stat.Size(),
		Modified: stat.ModTime(),
	}
	if ts, err := times.Stat(inputPath); err == nil && ts.HasBirthTime() {
		created := ts.BirthTime()
		info.Created = &created
	}
	if g, ok := v.(*fenixconv.Graphic); ok {
		info.Graphic = describeGraphic(g)
		for _, seq := range g.Sequences() {
			info.Sequences = append(info.Sequences, sequenceInfo{Name: seq.Name, KeyFrames: len(seq.KeyFrames), Next: seq.Next})
		}
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(info)
	}
	outputInfoText(info, brief)
	return nil
}

func describeGraphic(g *fenixconv.Graphic) *graphicInfo {
	return &graphicInfo{
		Name:          g.Name,
		ID:            g.ID,
		Flags:         g.Flags,
		Width:         g.Width(),
		Height:        g.Height(),
		Depth:         int(g.Depth()),
		Frames:        g.NumFrames(),
		KeyFrames:     g.NumKeyFrames(),
		ControlPoints: g.ControlPoints.Len(),
	}
}

func outputInfoText(info fileInfo, brief bool) {
	g := info.Graphic
	if brief {
		if g == nil {
			fmt.Printf("%s: %s palette\n", info.File, strings.ToUpper(info.Format))
			return
		}
		fmt.Printf("%s: %s %dx%d@%d Frames=%d Sequences=%d Points=%d\n",
			info.File, strings.ToUpper(info.Format), g.Width, g.Height, g.Depth,
			g.Frames, len(info.Sequences), g.ControlPoints)
		return
	}

	fmt.Printf("File: %s\n", info.File)
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println()

	fmt.Printf("Format:             %s\n", strings.ToUpper(info.Format))
	fmt.Printf("File Size:          %s (%d bytes)\n", humanize.Bytes(uint64(info.Size)), info.Size)
	fmt.Printf("Modified:           %s (%s)\n", info.Modified.Format(time.RFC3339), humanize.Time(info.Modified))
	if info.Created != nil {
		fmt.Printf("Created:            %s\n", info.Created.Format(time.RFC3339))
	}
	fmt.Println()

	if g == nil {
		fmt.Println("Palette with 256 colors")
		return
	}

	fmt.Println("Graphic:")
	fmt.Printf("  Name:             %s\n", g.Name)
	fmt.Printf("  ID:               %d\n", g.ID)
	fmt.Printf("  Flags:            0x%x\n", g.Flags)
	fmt.Printf("  Size:             %dx%d\n", g.Width, g.Height)
	fmt.Printf("  Depth:            %d bpp\n", g.Depth)
	fmt.Println()

	fmt.Println("Contents:")
	fmt.Printf("  Frames:           %d\n", g.Frames)
	fmt.Printf("  Sequences:        %d\n", len(info.Sequences))
	fmt.Printf("  Keyframes:        %d\n", g.KeyFrames)
	fmt.Printf("  Control points:   %d\n", g.ControlPoints)

	if len(info.Sequences) > 0 && len(info.Sequences) <= 20 {
		fmt.Println()
		fmt.Println("Sequences:")
		for i, seq := range info.Sequences {
			fmt.Printf("  %3d %-32s %d keyframes", i, seq.Name, seq.KeyFrames)
			if seq.Next != fenixconv.NoSequence {
				fmt.Printf(" -> %d", seq.Next)
			}
			fmt.Println()
		}
	}
}
