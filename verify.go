package gpak

import (
	"fmt"

	"github.com/meigma/gpak/internal/crc16"
)

// VerifyResult is the outcome of checking one entry.
type VerifyResult struct {
	Entry Entry

	// Computed is the CRC-16 of the stored bytes. Zero when they could not be read.
	Computed uint16

	// Err is nil when the checksum matches. It wraps ErrChecksumMismatch
	// on a mismatch, or the read error.
	Err error
}

// OK reports whether the entry passed.
func (r *VerifyResult) OK() bool {
	return r.Err == nil
}

// VerifyReport collects per-entry verification results in directory order.
type VerifyReport struct {
	Results []VerifyResult
}

// OK reports whether every entry passed.
func (r *VerifyReport) OK() bool {
	for i := range r.Results {
		if r.Results[i].Err != nil {
			return false
		}
	}
	return true
}

// Failed returns the results that did not pass.
func (r *VerifyReport) Failed() []VerifyResult {
	var failed []VerifyResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Verify recomputes the checksum of every entry's stored bytes and compares
// it with the recorded checksum. Nothing is decompressed, and a failing
// entry does not stop the pass.
func (a *Archive) Verify() *VerifyReport {
	report := &VerifyReport{Results: make([]VerifyResult, 0, len(a.entries))}
	for _, e := range a.entries {
		res := VerifyResult{Entry: e}
		stored, err := a.ReadRaw(e)
		if err != nil {
			res.Err = err
		} else {
			res.Computed = crc16.Checksum(stored)
			if res.Computed != e.Checksum {
				res.Err = fmt.Errorf("%s: %w: recorded %d, computed %d",
					e.Path, ErrChecksumMismatch, e.Checksum, res.Computed)
			}
		}
		if res.Err != nil {
			a.log().Warn("entry failed verification", "path", e.Path, "error", res.Err)
		}
		report.Results = append(report.Results, res)
	}
	return report
}
