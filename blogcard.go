package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newRootCmd(nil).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	siteConfPath string
	verbose      bool
	outDir       string
	in           postInput
}

// newRootCmd builds the blogcard command. A nil logger is built from the
// --verbose flag when the command runs.
func newRootCmd(logger *zap.Logger) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "blogcard",
		Short: "Publish a post page and keep its card in the blog index",
		Long: `blogcard writes <outdir>/posts/<slug>.html for one post and inserts a
summary card for it at the top of <outdir>/index.html, creating the index if
needed. Publishing the same title again replaces the post's card.`,
		Example: `  blogcard --title "Hello, World!" --category Essays --subcategory "Personal Opinions" \
    --also "Global Trends|" --date "May 2024" --content_text "First post."`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logger != nil {
				return nil
			}
			config := zap.NewProductionConfig()
			if opts.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd, opts, logger)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.in.Title, "title", "", "Post title; its slug names the post file")
	f.StringVar(&opts.in.Category, "category", "", "Primary category")
	f.StringVar(&opts.in.Subcategory, "subcategory", "", "Subcategory of the primary category")
	f.StringArrayVar(&opts.in.Also, "also", nil, `Additional "Category|Subcategory" pair (repeatable)`)
	f.StringVar(&opts.in.Date, "date", "", "Date label shown on the post, not parsed")
	f.StringVar(&opts.in.ContentFile, "content_file", "", "File holding the post body, optionally with YAML front matter")
	f.StringVar(&opts.in.ContentText, "content_text", "", "Post body given inline")
	f.StringVar(&opts.in.Format, "format", "", `Body format, "text" or "markdown" (default: body_format, else by file extension)`)
	f.StringVar(&opts.outDir, "outdir", "", "Output directory (default: out_dir from config, else .)")
	cmd.MarkFlagsMutuallyExclusive("content_file", "content_text")

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.siteConfPath, "config", "", "Config file (default is ./blogcard.yaml if present)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output")

	return cmd
}

func runPublish(cmd *cobra.Command, opts *rootOptions, logger *zap.Logger) error {
	conf, err := readConf(opts.siteConfPath, logger)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("outdir") {
		conf.OutDir = opts.outDir
	}

	in := opts.in
	if in.Format == "" {
		in.Format = conf.BodyFormat
	}
	p, err := readPost(in)
	if err != nil {
		return err
	}
	logger.Debug("Read post", zap.Stringer("post", p))

	res, err := NewSite(conf, logger).Publish(p)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Created:", res.PostPath)
	fmt.Fprintln(out, "Updated:", res.IndexPath)
	return nil
}
