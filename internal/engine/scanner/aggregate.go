package scanner

import "go.trai.ch/weft/internal/core/domain"

// Aggregate inserts the units of results into lib in order, numbering them
// by discovery. Failed files contribute nothing; their diagnostics are
// returned.
func Aggregate(lib *domain.Library, results []*domain.ScanResult, seq int) (int, []domain.ParseDiagnostic) {
	var diags []domain.ParseDiagnostic
	for _, res := range results {
		if res.Failed() {
			diags = append(diags, res.Diagnostics...)
			continue
		}
		for _, u := range res.Units {
			u.Seq = seq
			seq++
			lib.Insert(u)
		}
	}
	return seq, diags
}
