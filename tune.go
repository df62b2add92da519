package vitaltrend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/vitaltrend/pkg/core"
	"github.com/raykavin/vitaltrend/pkg/optimizer"
)

// TuneBandwidth cross validates the smoothing bandwidths of one metric and
// returns the best top results, best first
func (t *Tracker) TuneBandwidth(ctx context.Context, metric core.Metric, top int) ([]*optimizer.Result, error) {
	entries, err := t.storage.Logs(t.filters()...)
	if err != nil {
		return nil, fmt.Errorf("failed to load logs: %w", err)
	}

	config := optimizer.NewConfig().
		WithParallelism(runtime.NumCPU()).
		WithLogger(t.log).
		WithTopN(top)

	results, err := optimizer.TuneBandwidth(ctx, core.MetricValues(entries, metric), config, t.trendOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to tune %s: %w", metric, err)
	}
	return results, nil
}

// WriteTuning renders bandwidth tuning results as a table
func WriteTuning(w io.Writer, results []*optimizer.Result) {
	buffer := bytes.NewBuffer(nil)
	table := tablewriter.NewWriter(buffer)
	table.SetHeader([]string{"Rank", "Bandwidth", "RMSE", "Duration"})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})

	for i, result := range results {
		table.Append([]string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(result.Parameters[optimizer.BandwidthParameter], 'f', 2, 64),
			fmt.Sprintf("%.4f", result.Score),
			result.Duration.String(),
		})
	}

	table.Render()
	fmt.Fprintln(w, buffer.String())
}
