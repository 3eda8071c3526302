package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/structio/pkg/pipeline"
)

type convertOpts struct {
	output   string // output file (single input) or directory
	version  int
	compress bool
	workers  int
	refresh  bool
}

// convertCommand re-encodes structure files at another format version.
func (c *CLI) convertCommand() *cobra.Command {
	opts := convertOpts{workers: pipeline.DefaultWorkers}

	cmd := &cobra.Command{
		Use:   "convert <file>...",
		Short: "Re-encode structure files at another format version",
		Long: `Decode structure files of any supported version and re-encode them at the
target version. Downgrades drop whatever the older layout cannot carry.

With one input, --output names the output file. With several, --output names
a directory; without it, outputs are written next to the inputs as
<name>.v<version>.bin.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := c.version(cmd, opts.version)
			if err != nil {
				return err
			}
			jobs, err := convertJobs(args, opts.output, v)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			batch := newBatchLog(c.Logger)
			spin := startSpinner(cmd.Context(), fmt.Sprintf("Converting %d file(s) to v%d", len(jobs), v))
			results, err := runner.ConvertAll(cmd.Context(), jobs, pipeline.ConvertOptions{
				Version:  v,
				Compress: c.compress(cmd, opts.compress),
				Refresh:  opts.refresh,
			}, opts.workers)
			spin.Stop()
			if err != nil {
				return err
			}

			for _, r := range results {
				batch.add(r.InSize, r.OutSize, r.Err)
				if r.Err != nil {
					printError("%s: %v", r.Input, r.Err)
					continue
				}
				status := iconFresh
				if r.Cached {
					status = iconCached
				}
				printSuccess("%s", r.Input)
				printDetail("%s → %s (%s)", humanize.Bytes(uint64(r.InSize)), humanize.Bytes(uint64(r.OutSize)), status)
				printFile(r.Output)
			}
			batch.done()
			if failed := batch.failed(); failed > 0 {
				return fmt.Errorf("%d of %d conversions failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (one input) or directory (several)")
	cmd.Flags().IntVar(&opts.version, "version", 0, "target format version (default from config, else latest)")
	cmd.Flags().BoolVar(&opts.compress, "compress", false, "wrap outputs in a zstd frame")
	cmd.Flags().IntVarP(&opts.workers, "workers", "j", opts.workers, "parallel conversions")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached conversions")
	return cmd
}

func convertJobs(inputs []string, output string, version uint8) ([]pipeline.Job, error) {
	suffix := ".v" + strconv.Itoa(int(version)) + ".bin"
	if len(inputs) == 1 && output != "" {
		if fi, err := os.Stat(output); err != nil || !fi.IsDir() {
			return []pipeline.Job{{Input: inputs[0], Output: output}}, nil
		}
	}
	if output != "" {
		if err := os.MkdirAll(output, 0o755); err != nil {
			return nil, err
		}
	}

	jobs := make([]pipeline.Job, len(inputs))
	for i, in := range inputs {
		out := replaceExt(in, suffix)
		if output != "" {
			out = filepath.Join(output, filepath.Base(out))
		}
		jobs[i] = pipeline.Job{Input: in, Output: out}
	}
	return jobs, nil
}
