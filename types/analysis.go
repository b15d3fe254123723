package types

// Analysis helpers compress episode records into datasets that
// external consumers (stats dumps, plots) can read. Nothing here is
// coupled to a rendering mechanism.

// CumulativeWinRate returns, per episode, the fraction of episodes so
// far that ended with the given outcome.
func CumulativeWinRate(records []EpisodeRecord, outcome string) []float64 {
	rates := make([]float64, len(records))
	count := 0
	for i, record := range records {
		if record.Outcome == outcome {
			count++
		}
		rates[i] = float64(count) / float64(i+1)
	}
	return rates
}

// OutcomeCounts tallies episode outcomes over the whole run.
func OutcomeCounts(records []EpisodeRecord) map[string]int {
	counts := make(map[string]int)
	for _, record := range records {
		counts[record.Outcome]++
	}
	return counts
}

// WindowStats summarizes one window of consecutive episodes.
type WindowStats struct {
	Start    int            `json:"start"`
	End      int            `json:"end"`
	Outcomes map[string]int `json:"outcomes"`
	Epsilon  float64        `json:"epsilon"`
	Steps    int            `json:"steps"`
}

// SummarizeWindows splits the run into windows of the given size and
// tallies each. The epsilon reported is the one of the window's last
// episode.
func SummarizeWindows(records []EpisodeRecord, window int) []WindowStats {
	if window <= 0 || len(records) == 0 {
		return nil
	}
	stats := make([]WindowStats, 0, len(records)/window+1)
	for start := 0; start < len(records); start += window {
		end := start + window
		if end > len(records) {
			end = len(records)
		}
		ws := WindowStats{
			Start:    start,
			End:      end,
			Outcomes: make(map[string]int),
		}
		for _, record := range records[start:end] {
			ws.Outcomes[record.Outcome]++
			ws.Steps += record.Steps
			ws.Epsilon = record.Epsilon
		}
		stats = append(stats, ws)
	}
	return stats
}
