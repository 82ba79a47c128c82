// Package apptimeline extracts application timelines from cluster
// container logs.
//
// Quick start:
//
//	rec, ok := apptimeline.ParseLine(
//	    "data/application_1443635451332_0001/container_1443635451332_0001_01_000001/stderr",
//	    "15/09/10 10:33:01 INFO executor started")
//	if ok {
//	    fmt.Println(rec.ClusterID, rec.AppNumber) // 1443635451332 0001
//	}
//
//	rep, err := apptimeline.Analyze(ctx, "s3a://bucket/data/*/*", apptimeline.WithWorkers(8))
//
// Patterns without a scheme are read from the local filesystem; s3, s3a and
// s3n patterns are read from an S3-compatible object store.
package apptimeline
