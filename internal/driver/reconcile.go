package driver

import (
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/augurlint/augur/pkg/models"
)

// reconcile merges per-project warnings into the final report:
// intersect-policy warnings survive only when every configured project
// raised the identical message, suppressions are applied and accounted,
// duplicates collapse to their first occurrence, and the result is
// sorted by severity, stable on arrival order.
func (d *Driver) reconcile(results []projectResult) *models.Report {
	report := &models.Report{}
	for _, r := range results {
		report.Projects = append(report.Projects, r.info)
	}

	raisedBy := make(map[uint64]map[string]bool)
	for _, r := range results {
		for _, w := range r.warnings {
			key := xxhash.Sum64String(w.Message)
			if raisedBy[key] == nil {
				raisedBy[key] = make(map[string]bool)
			}
			raisedBy[key][w.Project] = true
		}
	}

	var kept []models.Warning
	for _, r := range results {
		for _, w := range r.warnings {
			if w.Sharing == models.ShareIntersect &&
				len(raisedBy[xxhash.Sum64String(w.Message)]) != len(d.cfg.Projects) {
				continue
			}
			kept = append(kept, w)
		}
	}

	suppressions := d.cfg.ModelSuppressions()
	used := make([]bool, len(suppressions))
	var unsuppressed []models.Warning
	for _, w := range kept {
		for i, s := range suppressions {
			if s.Matches(w) {
				used[i] = true
				w.Suppressed = true
			}
		}
		if w.Suppressed {
			report.Suppressed = append(report.Suppressed, w)
		} else {
			unsuppressed = append(unsuppressed, w)
		}
	}
	for i, s := range suppressions {
		if !used[i] {
			report.UnusedSuppressions = append(report.UnusedSuppressions, s)
		}
	}

	minSev := d.cfg.MinSeverity()
	seen := make(map[uint64]bool)
	var final []models.Warning
	for _, w := range unsuppressed {
		if w.Severity < minSev {
			continue
		}
		key := xxhash.Sum64String(w.Message)
		if seen[key] {
			continue
		}
		seen[key] = true
		final = append(final, w)
	}

	sort.SliceStable(final, func(i, j int) bool {
		return final[i].Severity > final[j].Severity
	})
	report.Warnings = final
	return report
}
