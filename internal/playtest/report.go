package playtest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// WriteReport prints the per-player results and the leaderboard as tables.
func WriteReport(w io.Writer, rep *Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "PLAYER\tSTATE\tSCORE\tPASSED\tFAILED\tACCURACY")
	for _, r := range rep.Results {
		state := r.State
		if r.Error != "" {
			state = "error: " + r.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n", r.Name, state, r.Score, r.Passed, r.Failed, joinInts(r.Accuracies))
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "RANK\tNAME\tSCORE\tACCURACY\tATTEMPTS")
	for _, e := range rep.Leaderboard {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\n", e.Rank, e.Name, e.Score, e.Accuracy, e.Attempts)
	}
	return tw.Flush()
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ",")
}

// saveReport writes the report as indented JSON.
func saveReport(ctx context.Context, filename string, rep *Report) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), filePermission); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	logger.Get().Info(ctx, "report saved to file", logger.String("filename", filename))
	return nil
}

// logFinalStats logs the run statistics.
func logFinalStats(ctx context.Context, stats Stats) {
	var refusedRate float64
	if stats.SamplesSent > 0 {
		refusedRate = float64(stats.SamplesRefused) / float64(stats.SamplesSent) * 100
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("playersStarted", stats.PlayersStarted),
		logger.Int("playersCompleted", stats.PlayersCompleted),
		logger.Int("playersFailed", stats.PlayersFailed),
		logger.Int("samplesSent", int(stats.SamplesSent)),
		logger.Float64("samplesRefusedPct", refusedRate),
		logger.Duration("duration", stats.Duration))
}
