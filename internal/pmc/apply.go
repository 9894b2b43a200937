// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pmc

import "github.com/pdiddy/research-dashboard/pkg/types"

// Apply returns copies of records with fetched metadata merged in by
// PMCID. Fetched authors and year replace the stored ones. Keywords are
// filled only when a record has none. A fetched abstract replaces a
// missing or placeholder one; placeholders never overwrite a real
// abstract. Records without matching metadata are returned unchanged.
func Apply(records []types.PublicationRecord, meta map[string]Metadata) []types.PublicationRecord {
	out := make([]types.PublicationRecord, len(records))
	for i, rec := range records {
		m, ok := meta[rec.PMCID]
		if !ok || rec.PMCID == "" {
			out[i] = rec
			continue
		}
		if len(m.Authors) > 0 {
			rec.Authors = append([]string(nil), m.Authors...)
		}
		if m.Year != 0 {
			rec.Year = m.Year
		}
		if len(rec.Keywords) == 0 && len(m.Keywords) > 0 {
			rec.Keywords = append([]string(nil), m.Keywords...)
		}
		if !rec.HasAbstract() && (m.Abstract != "" && (!m.Placeholder || rec.Abstract == "")) {
			rec.Abstract = m.Abstract
		}
		if rec.Title == "" {
			rec.Title = m.Title
		}
		out[i] = rec
	}
	return out
}
