package race

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

const (
	// DefaultJitter is the opponent perturbation in percentage points.
	DefaultJitter = 0.5

	topSpeed    = 6.0 // chars/sec before the random spread
	speedSpread = 2.0
	speedStep   = 1.0
	minSpeed    = 1.0
)

// Profile describes a simulated opponent for one race.
type Profile struct {
	Name   string
	Speed  float64 // chars per second
	Jitter float64 // percentage points
}

// NewProfiles generates n opponents, fastest first, scaled by pace.
func NewProfiles(rnd *rand.Rand, n int, pace float64) []Profile {
	if pace <= 0 {
		pace = 1
	}
	profiles := make([]Profile, 0, n)
	for i := 0; i < n; i++ {
		speed := pace * (topSpeed - float64(i)*speedStep + rnd.Float64()*speedSpread)
		if speed < minSpeed {
			speed = minSpeed
		}
		profiles = append(profiles, Profile{
			Name:   fmt.Sprintf("Racer %d", i+1),
			Speed:  speed,
			Jitter: DefaultJitter,
		})
	}
	return profiles
}

// Simulator advances opponent completion over elapsed race time.
type Simulator struct {
	profiles   []Profile
	percents   []int
	passageLen int
	rnd        *rand.Rand
}

// NewSimulator creates a simulator with all opponents at zero.
func NewSimulator(profiles []Profile, passageLen int, rnd *rand.Rand) *Simulator {
	if passageLen < 1 {
		passageLen = 1
	}
	return &Simulator{
		profiles:   profiles,
		percents:   make([]int, len(profiles)),
		passageLen: passageLen,
		rnd:        rnd,
	}
}

// Advance moves every opponent to its position at elapsed and returns the
// indexes of opponents at 100.
func (s *Simulator) Advance(elapsed time.Duration) []int {
	var finished []int
	for i, p := range s.profiles {
		raw := p.Speed * elapsed.Seconds() / float64(s.passageLen) * 100
		jitter := 0.0
		if p.Jitter > 0 {
			jitter = (s.rnd.Float64()*2 - 1) * p.Jitter
		}
		next := int(math.Round(math.Min(100, raw+jitter)))
		if raw >= 100 {
			next = 100
		}
		if next < s.percents[i] {
			next = s.percents[i]
		}
		if next > 100 {
			next = 100
		}
		s.percents[i] = next
		if next == 100 {
			finished = append(finished, i)
		}
	}
	return finished
}

// Percent returns the completion of opponent i.
func (s *Simulator) Percent(i int) int {
	return s.percents[i]
}

// Profiles returns the opponents being simulated.
func (s *Simulator) Profiles() []Profile {
	return s.profiles
}
