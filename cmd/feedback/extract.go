package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/assignment-feedback/internal/chunk"
)

func newExtractCmd() *cobra.Command {
	var (
		showText     bool
		maxChunkSize int
	)
	cmd := &cobra.Command{
		Use:   "extract <document>",
		Short: "Show what the text extractor and chunker make of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadExtractOnlyConfig()
			if err != nil {
				return err
			}
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			text := newExtractor(cfg.Extract, nil).Extract(cmd.Context(), doc)
			if maxChunkSize <= 0 {
				maxChunkSize = cfg.Analysis.MaxChunkSize
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "document\t%s\n", doc.Name)
			fmt.Fprintf(w, "format\t%s\n", text.Format)
			fmt.Fprintf(w, "usable\t%t\n", text.OK)
			fmt.Fprintf(w, "method\t%s\n", text.Method)
			fmt.Fprintf(w, "pages\t%d\n", text.Pages)
			fmt.Fprintf(w, "characters\t%d\n", text.Length)
			fmt.Fprintf(w, "words\t%d\n", len(strings.Fields(text.Text)))
			fmt.Fprintf(w, "elapsed\t%s\n", text.Duration)
			for _, warn := range text.Warnings {
				fmt.Fprintf(w, "warning\t%s\n", warn)
			}
			if text.OK {
				strategy := "direct"
				if text.Length > cfg.Analysis.SinglePassThreshold {
					chunks, err := chunk.NewParagraphChunker().Chunk(text.Text, maxChunkSize)
					if err != nil {
						return err
					}
					strategy = fmt.Sprintf("chunked (%d chunks)", len(chunks))
					for _, c := range chunks {
						fmt.Fprintf(w, "chunk %d\t%d characters\n", c.Index+1, c.Length)
					}
				}
				fmt.Fprintf(w, "strategy\t%s\n", strategy)
			} else {
				fmt.Fprintf(w, "strategy\tnative ingestion\n")
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if showText && text.OK {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", text.Text)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&showText, "text", false, "print the extracted text")
	cmd.Flags().IntVar(&maxChunkSize, "max-chunk-size", 0, "override FEEDBACK_MAX_CHUNK_SIZE for the chunk preview")
	return cmd
}
