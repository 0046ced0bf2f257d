package quote

import "time"

// Point is one bucket of the averaged price timeseries.
type Point struct {
	ItemID     int
	Timestamp  time.Time
	Timestep   string
	AvgHigh    *int64
	AvgLow     *int64
	HighVolume int64
	LowVolume  int64
}
