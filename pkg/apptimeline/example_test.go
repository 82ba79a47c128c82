package apptimeline_test

import (
	"fmt"

	"github.com/crimson-sun/apptimeline/pkg/apptimeline"
)

func ExampleParseLine() {
	rec, ok := apptimeline.ParseLine(
		"s3a://jd-spark-logs/data/application_1485248649253_0052/container_1485248649253_0052_01_000001/stderr",
		"17/03/29 10:04:41 INFO ApplicationMaster: Registered signal handlers",
	)
	fmt.Println(ok)
	fmt.Println(rec.ClusterID, rec.ApplicationID, rec.AppNumber)
	fmt.Println(rec.Timestamp.Format("2006-01-02 15:04:05"))
	// Output:
	// true
	// 1485248649253 application_1485248649253_0052 0052
	// 2017-03-29 10:04:41
}
