package metrics

import "sort"

var reasonLabels = map[FailureReason]string{
	ReasonTransport:         "Transport failure",
	ReasonTimeout:           "Probe timeout",
	ReasonHTTP:              "HTTP error response",
	ReasonDecode:            "Undecodable response bytes",
	ReasonMalformed:         "Malformed response body",
	ReasonCorrupted:         "Corrupted response content",
	ReasonNoOutput:          "Stream produced no output",
	ReasonUnsupportedFlavor: "Unsupported endpoint flavor",
}

// FriendlyReasonName returns a human-friendly label for a failure reason.
func FriendlyReasonName(reason FailureReason) string {
	if label, ok := reasonLabels[reason]; ok {
		return label
	}
	if reason == "" {
		return "Unknown failure"
	}
	return string(reason)
}

// ReasonBreakdown flattens a failure-reason map into rows sorted by count
// descending, reason ascending on ties, for deterministic report output.
type ReasonRow struct {
	Reason FailureReason
	Label  string
	Count  int
}

func ReasonBreakdown(reasons map[FailureReason]int) []ReasonRow {
	rows := make([]ReasonRow, 0, len(reasons))
	for reason, count := range reasons {
		rows = append(rows, ReasonRow{Reason: reason, Label: FriendlyReasonName(reason), Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Reason < rows[j].Reason
	})
	return rows
}
