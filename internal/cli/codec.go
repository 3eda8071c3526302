package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	sio "github.com/matzehuels/structio/pkg/io"
)

// decodeCommand creates the "decode" command: structure file to JSON.
func (c *CLI) decodeCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Decode a structure file to JSON",
		Long:  `Decode a binary structure file (any supported version, compressed or not) and write it as JSON. Without --output the JSON goes to stdout.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.codecOptions()
			if err != nil {
				return err
			}
			b, info, err := sio.ImportStructure(args[0], opts...)
			if err != nil {
				return err
			}
			c.Logger.Debug("decoded", "path", args[0], "version", info.Version, "blocks", info.Blocks)

			if output == "" {
				return sio.WriteJSON(b, cmd.OutOrStdout())
			}
			if err := sio.ExportJSON(b, output); err != nil {
				return err
			}
			printSuccess("Decoded %s", args[0])
			printStats(info.Version, info.Roots, info.Blocks, false)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output JSON file (default stdout)")
	return cmd
}

// encodeCommand creates the "encode" command: JSON to structure file.
func (c *CLI) encodeCommand() *cobra.Command {
	var (
		output   string
		version  int
		compress bool
	)

	cmd := &cobra.Command{
		Use:   "encode <file.json>",
		Short: "Encode a JSON building as a structure file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := c.version(cmd, version)
			if err != nil {
				return err
			}
			opts, err := c.codecOptions()
			if err != nil {
				return err
			}
			b, err := sio.ImportJSON(args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = replaceExt(args[0], ".bin")
			}
			if err := sio.ExportStructure(b, output, v, c.compress(cmd, compress), opts...); err != nil {
				return err
			}

			printSuccess("Encoded %s", args[0])
			printStats(v, len(b.Roots), len(b.Blocks), false)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: input with .bin extension)")
	cmd.Flags().IntVar(&version, "version", 0, "format version to write (default from config, else latest)")
	cmd.Flags().BoolVar(&compress, "compress", false, "wrap the output in a zstd frame")
	return cmd
}

// inspectCommand creates the "inspect" command.
func (c *CLI) inspectCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize a structure file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			s, hit, err := runner.Inspect(cmd.Context(), data)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), s)
			}

			fmt.Fprintln(stdout, StyleTitle.Render(args[0]))
			printStats(s.Version, s.Roots, s.Blocks, hit)
			printNewline()
			size := humanize.Bytes(uint64(s.FileSize))
			if s.Compressed {
				size = fmt.Sprintf("%s (zstd, %s decoded)", size, humanize.Bytes(uint64(s.Size)))
			}
			printKeyValue("Size", size)
			printKeyValue("Rotations", catalogLabel(s.RotationCatalog))
			printKeyValue("Colors", catalogLabel(s.ColorCatalog))
			if len(s.Types) > 0 {
				printNewline()
				fmt.Fprintln(stdout, typeCountTable(s.Types))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func catalogLabel(n int) string {
	if n < 0 {
		return "inline"
	}
	return fmt.Sprintf("catalog of %s", humanize.Comma(int64(n)))
}

// exampleCommand writes one of the built-in sample buildings.
func (c *CLI) exampleCommand() *cobra.Command {
	var (
		output   string
		version  int
		compress bool
		blocks   int
		typeName string
	)

	cmd := &cobra.Command{
		Use:       "example <snake|vehicle>",
		Short:     "Write a sample building",
		ValidArgs: []string{"snake", "vehicle"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := c.version(cmd, version)
			if err != nil {
				return err
			}
			b, err := c.example(args[0], blocks, typeName)
			if err != nil {
				return err
			}
			if output == "" {
				output = args[0] + ".bin"
			}
			opts, err := c.codecOptions()
			if err != nil {
				return err
			}
			if err := sio.Export(b, output, "", v, c.compress(cmd, compress), opts...); err != nil {
				return err
			}
			printSuccess("Wrote %s example", args[0])
			printStats(v, len(b.Roots), len(b.Blocks), false)
			printFile(output)
			printNextStep("Inspect it", fmt.Sprintf("%s inspect %s", appName, output))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file; .json writes JSON (default <name>.bin)")
	cmd.Flags().IntVar(&version, "version", 0, "format version to write (default from config, else latest)")
	cmd.Flags().BoolVar(&compress, "compress", false, "wrap the output in a zstd frame")
	cmd.Flags().IntVar(&blocks, "blocks", 64, "number of blocks (snake)")
	cmd.Flags().StringVar(&typeName, "block-type", "", "block type name or id for the snake (default: first plain type)")
	return cmd
}
