package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/revlog/internal/codec"
	"github.com/sprite-ai/revlog/internal/vocab"
)

var convertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Convert a review log between encodings",
	Long: `Read a review log in one encoding and write it in another. Formats
are detected from file extensions; --to overrides the output format.
The conversion is semantic: field values, activity order, and reply
nesting survive, byte layout does not.

Examples:
  revlog convert review.yaml review.json
  revlog convert review.json review.dat --to xml`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("to", "", "output format: yaml, json, or xml (default: by extension)")
	convertCmd.Flags().BoolP("force", "f", false, "overwrite the output file if it exists")
	convertCmd.Flags().Bool("context", false, "stamp the default @context vocabulary pointer (JSON output only)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	in, out := args[0], args[1]

	review, _, err := codec.Load(in)
	if err != nil {
		return err
	}

	outFormat := codec.DetectFormat(out)
	if to, _ := cmd.Flags().GetString("to"); to != "" {
		outFormat, err = codec.ParseFormat(to)
		if err != nil {
			return err
		}
	}

	if stamp, _ := cmd.Flags().GetBool("context"); stamp {
		if outFormat != codec.FormatJSON {
			return fmt.Errorf("--context only applies to JSON output")
		}
		if review.Context == "" {
			review.Context = vocab.DefaultContext
		}
	}

	force, _ := cmd.Flags().GetBool("force")
	if !force {
		if _, err := os.Stat(out); err == nil {
			return fmt.Errorf("%s already exists (use -f to overwrite)", out)
		}
	}

	if err := codec.Save(out, review, outFormat); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%s)\n", out, outFormat)
	return nil
}
