package glossai

// QueuePlan partitions a corpus by translation need. This drives
// incremental batches: a re-run only touches what is pending, and
// optionally what went stale after a source edit.
type QueuePlan struct {
	// Pending contains documents with no translation at all.
	Pending []Document

	// Stale contains translated documents whose source text changed
	// since the translation was produced.
	Stale []Document

	// Fresh contains translated documents whose source is unchanged.
	Fresh []Document
}

// QueueStats contains summary counts for a plan.
type QueueStats struct {
	Pending int
	Stale   int
	Fresh   int
}

// Stats returns summary counts for the plan.
func (p *QueuePlan) Stats() QueueStats {
	return QueueStats{
		Pending: len(p.Pending),
		Stale:   len(p.Stale),
		Fresh:   len(p.Fresh),
	}
}

// NeedsTranslation returns the documents a run should queue, in input
// order: pending documents, plus stale ones when includeStale is set.
func (p *QueuePlan) NeedsTranslation(includeStale bool) []Document {
	out := make([]Document, 0, len(p.Pending)+len(p.Stale))
	out = append(out, p.Pending...)
	if includeStale {
		out = append(out, p.Stale...)
	}
	return out
}

// PlanQueue partitions documents by translation need, preserving input
// order within each partition.
func PlanQueue(docs []Document) *QueuePlan {
	plan := &QueuePlan{}
	for _, d := range docs {
		switch {
		case !d.Translated():
			plan.Pending = append(plan.Pending, d)
		case IsStale(d):
			plan.Stale = append(plan.Stale, d)
		default:
			plan.Fresh = append(plan.Fresh, d)
		}
	}
	return plan
}

// IsStale reports whether a translated document's source text changed
// since the translation was produced. Documents translated before
// source hashes were recorded are treated as fresh.
func IsStale(d Document) bool {
	if !d.Translated() || d.SourceHash == "" {
		return false
	}
	return d.SourceHash != HashText(d.SourceText)
}
