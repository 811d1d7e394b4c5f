package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"docremedy/headings"
	"docremedy/observability"
	"docremedy/pipeline"
	"docremedy/report"
)

type runFlags struct {
	title         string
	language      string
	headingPolicy string
	reportFormat  string
	reportFile    string
	out           string
	verbose       bool
}

func (f *runFlags) register(cmd *cobra.Command, repairing bool) {
	cmd.Flags().StringVar(&f.title, "title", "", "title applied when the document has none")
	cmd.Flags().StringVar(&f.language, "language", "en", "language tag applied when the document declares none")
	cmd.Flags().StringVar(&f.headingPolicy, "heading-policy", "convert", "first-heading repair policy: convert|insert")
	cmd.Flags().StringVar(&f.reportFormat, "report-format", "text", "report output format: text|json|html")
	cmd.Flags().StringVar(&f.reportFile, "report-file", "", "write the report to a file instead of stdout")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "log progress to stderr")
	if repairing {
		cmd.Flags().StringVarP(&f.out, "out", "o", "", "write the repaired document to a file")
	}
}

func (f *runFlags) options(source string) ([]pipeline.Option, error) {
	opts := []pipeline.Option{
		pipeline.WithTitle(f.title),
		pipeline.WithLanguage(f.language),
		pipeline.WithSource(filepath.Base(source)),
	}
	switch f.headingPolicy {
	case "convert":
		opts = append(opts, pipeline.WithHeadingPolicy(headings.PolicyConvert))
	case "insert":
		opts = append(opts, pipeline.WithHeadingPolicy(headings.PolicyInsert))
	default:
		return nil, fmt.Errorf("unknown heading policy %q", f.headingPolicy)
	}
	if f.verbose {
		opts = append(opts, pipeline.WithLogger(observability.NewWriterLogger(os.Stderr, true)))
	}
	return opts, nil
}

func remediateCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "remediate <document>",
		Short: "Repair a document and report its compliance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], flags, false)
		},
	}
	flags.register(cmd, true)
	return cmd
}

func checkCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "check <document>",
		Short: "Check a document without modifying it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], flags, true)
		},
	}
	flags.register(cmd, false)
	return cmd
}

func run(cmd *cobra.Command, source string, flags *runFlags, checkOnly bool) error {
	opts, err := flags.options(source)
	if err != nil {
		return err
	}
	if checkOnly {
		opts = append(opts, pipeline.CheckOnly())
	}

	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer in.Close()

	doc, err := html.Parse(in)
	if err != nil {
		return fmt.Errorf("parse document: %w", err)
	}

	res, err := pipeline.New(opts...).RunParsed(cmd.Context(), doc)
	if err != nil {
		return err
	}

	if flags.out != "" {
		out, err := os.Create(flags.out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer out.Close()
		if err := html.Render(out, doc); err != nil {
			return fmt.Errorf("write repaired document: %w", err)
		}
	}

	return writeReport(cmd, res.Report, flags)
}

func writeReport(cmd *cobra.Command, rep *report.Remediation, flags *runFlags) error {
	var w io.Writer = cmd.OutOrStdout()
	if flags.reportFile != "" {
		f, err := os.Create(flags.reportFile)
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch flags.reportFormat {
	case "text":
		return rep.Text(w)
	case "json":
		return rep.JSON(w)
	case "html":
		return rep.HTML(w)
	default:
		return fmt.Errorf("unknown report format %q", flags.reportFormat)
	}
}
