package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cwbudde/algo-eeg/pipeline"
)

func printSummary(w io.Writer, r pipeline.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintf(tw, "Phase\tTask\tWindows\tDuration [s]\n"); err != nil {
		return err
	}

	for _, ph := range r.Phases {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%d\t%.1f\n", ph.Phase, ph.TaskID, ph.Windows, ph.DurationSeconds); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(tw, "\nTask\tSig. features\tSummed p\tThreshold\tEffect\tCosine sim\tCosine p\n"); err != nil {
		return err
	}

	for _, t := range r.Tasks {
		s := t.Summary
		if _, err := fmt.Fprintf(tw, "%s\t%d\t%.4f\t%.4f\t%s\t%.4f\t%.4f\n",
			t.TaskID,
			s.Significance.SignificantFeatureCount,
			s.Significance.SummedP,
			s.Significance.Threshold,
			s.Significance.EffectMagnitude,
			s.Cosine.Similarity,
			s.Cosine.PValue,
		); err != nil {
			return err
		}
	}

	return tw.Flush()
}
