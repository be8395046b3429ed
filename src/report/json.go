package report

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"

	"github.com/minio/highwayhash"

	"github.com/iafilius/ScoreDistribution/src/analysis"
	"github.com/iafilius/ScoreDistribution/src/output"
)

// digestKey is fixed so equal score sequences always produce equal digests.
var digestKey = make([]byte, 32)

// BinJSON is one histogram bin in the JSON summary.
type BinJSON struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count uint    `json:"count"`
}

// Summary is the machine-readable report. It carries no timestamps so reruns over the same
// input produce identical files.
type Summary struct {
	Source string `json:"source"`
	Field  string `json:"field"`
	analysis.Summary
	Bins    []BinJSON `json:"bins"`
	PeakBin int       `json:"peak_bin"`
	Digest  string    `json:"digest"`
}

// Digest returns the hex HighwayHash-64 of the scores' IEEE-754 bits in order.
func Digest(scores []float64) (string, error) {
	h, err := highwayhash.New64(digestKey)
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	var buf [8]byte
	for _, v := range scores {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// NewSummary assembles the JSON summary from the pipeline results.
func NewSummary(source, field string, scores []float64, s analysis.Summary, b *analysis.Bins) (Summary, error) {
	digest, err := Digest(scores)
	if err != nil {
		return Summary{}, err
	}
	out := Summary{Source: source, Field: field, Summary: s, PeakBin: b.Peak(), Digest: digest}
	for i := 0; i < b.Len(); i++ {
		out.Bins = append(out.Bins, BinJSON{Lower: b.Edges[i], Upper: b.Edges[i+1], Count: b.Count(i)})
	}
	return out, nil
}

// WriteJSON writes s, indented, to path atomically.
func WriteJSON(path string, s Summary) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	return output.WriteFileAtomic(path, append(b, '\n'), 0o644)
}
