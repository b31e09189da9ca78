package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dyuri/fenixconv/internal/config"
	"github.com/dyuri/fenixconv/pkg/fenixconv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// batch command
var batchCmd = &cobra.Command{
	Use:   "batch <manifest.toml>",
	Short: "Run the conversions listed in a manifest",
	Long: `Run every conversion job of a TOML manifest:

    overwrite = false

    [[job]]
    input = "hero.fbm"
    output = "hero.fpl"

    [[job]]
    input = "tiles/grass.map"
    output = "tiles/grass.out"
    format = "fbm"

Relative paths are resolved against the manifest directory. Existing
outputs are skipped unless overwrite is set. A failed job does not stop
the others.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	manifest, err := config.LoadManifest(args[0])
	if err != nil {
		return err
	}

	var failed, skipped int
	for i, job := range manifest.Jobs {
		entry := log.WithFields(logrus.Fields{
			"job":    i + 1,
			"input":  job.Input,
			"output": job.Output,
			"format": job.Format,
		})

		if !manifest.Overwrite {
			if _, err := os.Stat(job.Output); err == nil {
				entry.Warn("output exists, skipping")
				skipped++
				continue
			} else if !errors.Is(err, fs.ErrNotExist) {
				entry.WithError(err).Error("stat output")
				failed++
				continue
			}
		}

		if err := runJob(job); err != nil {
			entry.WithError(err).Error("job failed")
			failed++
			continue
		}
		entry.Info("converted")
	}

	log.Infof("%d job(s): %d converted, %d skipped, %d failed",
		len(manifest.Jobs), len(manifest.Jobs)-skipped-failed, skipped, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d job(s) failed", failed, len(manifest.Jobs))
	}
	return nil
}

func runJob(job config.Job) error {
	_, v, err := fenixconv.ReadFile(job.Input)
	if err != nil {
		return err
	}
	return fenixconv.WriteFile(job.Output, job.Format, v)
}
