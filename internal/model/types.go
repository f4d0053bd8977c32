// Package model defines shared data structures.
package model

import "time"

// Config defines race settings.
type Config struct {
	Opponents    int
	Pace         float64
	PassagesPath string
	WordsPath    string
	Words        int
	CapsPct      float64
	PunctPct     float64
	Seed         int64
	History      bool
}

// StatsConfig defines filters and options for history output.
type StatsConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
}

// RaceRecord captures a finished race for the history store.
type RaceRecord struct {
	ID             string
	StartedAt      time.Time
	EndedAt        time.Time
	PassageChars   int
	Opponents      int
	WPM            int
	Accuracy       int
	Errors         int
	ElapsedSeconds int
	Place          int
	Winner         string
	Finished       bool
}

// Won reports whether the human took first place.
func (r RaceRecord) Won() bool {
	return r.Place == 1
}
