package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"gopetro/adapters/excel"
	"gopetro/domain/sample"
	"gopetro/domain/view"
	"gopetro/internal"
	"gopetro/internal/dataset"
	"gopetro/internal/testkit"
	viewctl "gopetro/internal/view"
	"gopetro/ui/services"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

// sourceFlags selects the sample file shared by every subcommand
type sourceFlags struct {
	file  string
	sheet string
	seed  int64
	count int
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "file", "", "xlsx or csv file with id, CV, HI, RQI, FZI columns (synthetic data when empty)")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "xlsx sheet to read (first sheet when empty)")
	cmd.Flags().Int64Var(&f.seed, "seed", 42, "Random seed for synthetic data")
	cmd.Flags().IntVar(&f.count, "count", 200, "Number of synthetic samples")
}

// load builds the dataset once. Excluded samples are reported on stderr.
func (f *sourceFlags) load(cmd *cobra.Command, logger *internal.Logger) (*dataset.Dataset, error) {
	var store *dataset.Store
	if f.file != "" {
		cfg := excel.DefaultExcelConfig(f.file)
		cfg.Sheet = f.sheet
		store = dataset.NewStore(excel.NewSampleSource(cfg, logger), logger)
	} else {
		cfg := testkit.DefaultCoreConfig()
		cfg.Seed = f.seed
		cfg.Count = f.count
		store = dataset.NewStore(testkit.NewSyntheticSource(cfg), logger)
	}

	ds, err := store.Refresh(cmd.Context())
	if err != nil {
		return nil, err
	}
	for _, ex := range ds.Excluded() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: excluded %s: %s\n", ex.SampleID, ex.Reason)
	}
	return ds, nil
}

func main() {
	logger := internal.NewDefaultLogger()
	defer logger.Sync()

	if err := newRootCmd(logger).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(logger *internal.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "gopetro-cli",
		Short:        "Categorize core samples and render scatter plot descriptions",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newCategorizeCmd(logger),
		newRenderCmd(logger),
		newSummaryCmd(logger),
		newExportCmd(logger),
		newTUICmd(logger),
	)
	return rootCmd
}

func newCategorizeCmd(logger *internal.Logger) *cobra.Command {
	var src sourceFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Print every sample with its category",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := src.load(cmd, logger)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(ds.Samples())
			}
			return writeTable(cmd.OutOrStdout(), ds)
		},
	}
	src.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func writeTable(out io.Writer, ds *dataset.Dataset) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	header := []string{"ID"}
	for _, v := range sample.Variables() {
		header = append(header, string(v))
	}
	header = append(header, "CATEGORY")
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, s := range ds.Samples() {
		fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\t%s\n", s.ID, s.CV, s.HI, s.RQI, s.FZI, s.Category)
	}
	return w.Flush()
}

func newRenderCmd(logger *internal.Logger) *cobra.Command {
	var src sourceFlags
	var x, y string
	var ascii bool

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the render description for an axis selection",
		Example: `gopetro-cli render --file cores.xlsx --x RQI --y FZI
gopetro-cli render --x CV --y HI --ascii`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := src.load(cmd, logger)
			if err != nil {
				return err
			}

			ctl := viewctl.NewController(logger)
			if _, err := ctl.Initialize(dataset.NewStaticStore(ds)); err != nil {
				return err
			}
			rd, err := ctl.SetSelection(view.AxisSelection{X: sample.Variable(x), Y: sample.Variable(y)})
			if err != nil {
				return err
			}

			if ascii {
				fmt.Fprint(cmd.OutOrStdout(), services.NewRenderService(72, 20).Scatter(rd))
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rd)
		},
	}
	src.register(cmd)
	def := view.DefaultSelection()
	cmd.Flags().StringVar(&x, "x", string(def.X), "Variable for the x axis")
	cmd.Flags().StringVar(&y, "y", string(def.Y), "Variable for the y axis")
	cmd.Flags().BoolVar(&ascii, "ascii", false, "Draw the plot as text instead of JSON")
	return cmd
}

func newSummaryCmd(logger *internal.Logger) *cobra.Command {
	var src sourceFlags
	var pretty bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print a markdown summary of the dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := src.load(cmd, logger)
			if err != nil {
				return err
			}
			md := dataset.Summarize(ds).Markdown()
			if pretty {
				renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
				if err != nil {
					return err
				}
				if md, err = renderer.Render(md); err != nil {
					return err
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Render the markdown for the terminal")
	return cmd
}

func newExportCmd(logger *internal.Logger) *cobra.Command {
	var src sourceFlags
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the categorized dataset to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := src.load(cmd, logger)
			if err != nil {
				return err
			}
			if err := excel.WriteWorkbook(out, ds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d samples to %s\n", ds.Len(), out)
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().StringVar(&out, "out", "categorized.xlsx", "Output workbook path")
	return cmd
}

func newTUICmd(logger *internal.Logger) *cobra.Command {
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Explore the scatter plot interactively in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := src.load(cmd, internal.NewNopLogger())
			if err != nil {
				return err
			}
			model, err := newTUIModel(dataset.NewStaticStore(ds))
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	src.register(cmd)
	return cmd
}
