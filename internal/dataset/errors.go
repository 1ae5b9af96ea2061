package dataset

import "fmt"

// DataShapeError reports a (key, strategy) combination that is missing from a
// table or whose sequence does not match the length of the other axis.
// Got is -1 when the entry is absent.
type DataShapeError struct {
	Metric   Metric
	KeyName  string
	Key      int
	Strategy Strategy
	Want     int
	Got      int
}

func (e *DataShapeError) Error() string {
	if e.Got < 0 {
		return fmt.Sprintf("%s: no values for %s=%d strategy=%s (want %d)", e.Metric, e.KeyName, e.Key, e.Strategy, e.Want)
	}
	return fmt.Sprintf("%s: %s=%d strategy=%s has %d values, want %d", e.Metric, e.KeyName, e.Key, e.Strategy, e.Got, e.Want)
}
