package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/greenusek/greensite/toc"
)

var (
	tocLevels    []int
	tocHTML      bool
	tocOffsets   string
	tocScroll    []float64
	tocLookahead float64
)

var tocCmd = &cobra.Command{
	Use:   "toc FILE",
	Short: "Extract the table of contents of an HTML post body",
	Long: `Reads an HTML fragment (or - for stdin) and prints its headings and
sections as JSON. With --html the annotated HTML is printed instead.

--offsets takes a JSON object of heading id to top offset, as captured from a
rendered page, and --scroll replays scroll positions through the outline
tracker, printing the active heading after each one.`,
	Args: cobra.ExactArgs(1),
	RunE: runTOC,
}

func init() {
	tocCmd.Flags().IntSliceVarP(&tocLevels, "levels", "l", []int{1, 2, 3, 4, 5, 6}, "heading levels to include")
	tocCmd.Flags().BoolVar(&tocHTML, "html", false, "print the annotated HTML")
	tocCmd.Flags().StringVar(&tocOffsets, "offsets", "", "JSON file of heading offsets")
	tocCmd.Flags().Float64SliceVar(&tocScroll, "scroll", nil, "scroll positions to replay (requires --offsets)")
	tocCmd.Flags().Float64Var(&tocLookahead, "lookahead", toc.DefaultLookahead, "tracker lookahead in pixels")
	rootCmd.AddCommand(tocCmd)
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}

func levelsConfig(levels []int) (toc.HeaderConfig, error) {
	var cfg toc.HeaderConfig
	for _, l := range levels {
		switch l {
		case 1:
			cfg.H1 = true
		case 2:
			cfg.H2 = true
		case 3:
			cfg.H3 = true
		case 4:
			cfg.H4 = true
		case 5:
			cfg.H5 = true
		case 6:
			cfg.H6 = true
		default:
			return cfg, fmt.Errorf("invalid heading level %d", l)
		}
	}
	return cfg, nil
}

type scrollStep struct {
	ScrollY float64 `json:"scrollY"`
	Active  string  `json:"active"`
}

type tocOutput struct {
	Headings []toc.Heading `json:"headings"`
	Sections []toc.Section `json:"sections"`
	Replay   []scrollStep  `json:"replay,omitempty"`
}

func runTOC(cmd *cobra.Command, args []string) error {
	raw, err := readInput(cmd, args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	cfg, err := levelsConfig(tocLevels)
	if err != nil {
		return err
	}

	processed := toc.Extract(string(raw), cfg)
	if tocHTML {
		cmd.Print(processed.HTML)
		return nil
	}

	out := tocOutput{Headings: processed.Headings, Sections: toc.Group(processed.Headings)}
	if len(tocScroll) > 0 {
		if tocOffsets == "" {
			return fmt.Errorf("--scroll requires --offsets")
		}
		out.Replay, err = replay(processed.Headings, tocOffsets, tocScroll)
		if err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal outline: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// replay feeds positions through a tracker attached to a scroll feed laid out
// by the offsets file.
func replay(headings []toc.Heading, offsetsFile string, positions []float64) ([]scrollStep, error) {
	data, err := os.ReadFile(offsetsFile)
	if err != nil {
		return nil, fmt.Errorf("read offsets: %w", err)
	}
	var layout toc.Offsets
	if err := json.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("parse offsets %s: %w", offsetsFile, err)
	}

	feed := &toc.ScrollFeed{}
	tracker := toc.NewTracker(tocLookahead)
	tracker.SetHeadings(headings)
	tracker.Attach(feed, layout)
	defer tracker.Detach()

	steps := make([]scrollStep, 0, len(positions))
	for _, y := range positions {
		feed.Scroll(y)
		steps = append(steps, scrollStep{ScrollY: y, Active: tracker.Active()})
	}
	return steps, nil
}
