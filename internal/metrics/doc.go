// Package metrics aggregates operation latencies and outcomes for a
// benchmark run.
//
// A single [Collector] is shared by every worker. Each recorded operation
// feeds an overall HdrHistogram and one per operation kind:
//
//	collector := metrics.NewCollector()
//	collector.Start()
//	collector.RecordOperation(workload.KindStory, latency, err)
//	stats := collector.Stats(collector.Elapsed())
//
// [Stats.Operations] is sorted by volume, most frequent first. Failures are
// grouped by a readable label of their error type in [Stats.Errors].
package metrics
