package seating

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/ironsheep/seatmap/internal/detection"
)

// Profile names a candidate pool built by one detection strategy.
type Profile string

const (
	// ProfileOCR uses OCR digit candidates only.
	ProfileOCR Profile = "ocr"
	// ProfileBlob uses filtered ink-blob candidates only.
	ProfileBlob Profile = "blob"
	// ProfileUnion fuses both pools.
	ProfileUnion Profile = "union"
)

// Profiles lists every profile in default tie-break order.
var Profiles = []Profile{ProfileUnion, ProfileOCR, ProfileBlob}

// Policy decides which profile's pool feeds the refiner.
type Policy string

const (
	// PolicyClosest picks the pool whose size is closest to the capacity.
	PolicyClosest Policy = "closest"
	// PolicyFixed always picks the configured profile.
	PolicyFixed Policy = "fixed"
)

// Pools maps each profile to its candidate pool.
type Pools map[Profile][]detection.Candidate

// Sizes returns the pool size of every profile present.
func (p Pools) Sizes() map[Profile]int {
	return lo.MapValues(p, func(c []detection.Candidate, _ Profile) int { return len(c) })
}

// Selection is the pool chosen for a room.
type Selection struct {
	Profile    Profile
	Candidates []detection.Candidate
	// Sizes holds every pool size that was considered.
	Sizes map[Profile]int
}

// Selector chooses between candidate pools.
type Selector struct {
	Policy Policy `yaml:"policy"`
	// Profile is used by PolicyFixed, and by PolicyClosest when the capacity
	// is unknown.
	Profile Profile `yaml:"profile"`
	// Order breaks ties under PolicyClosest. Empty means Profiles.
	Order []Profile `yaml:"order,omitempty"`
}

// DefaultSelector returns the closest policy with union as the fixed profile.
func DefaultSelector() Selector {
	return Selector{Policy: PolicyClosest, Profile: ProfileUnion}
}

// Validate checks the policy and every profile name.
func (s Selector) Validate() error {
	if s.Policy != PolicyClosest && s.Policy != PolicyFixed {
		return fmt.Errorf("unknown selection policy %q", s.Policy)
	}
	if !lo.Contains(Profiles, s.Profile) {
		return fmt.Errorf("unknown selection profile %q", s.Profile)
	}
	for _, p := range s.Order {
		if !lo.Contains(Profiles, p) {
			return fmt.Errorf("unknown profile %q in selection order", p)
		}
	}
	return nil
}

// Select picks one pool.
//
// Under PolicyClosest with a known capacity, the profile minimising
// |len(pool) - capacity| wins; ties go to the earlier profile in Order.
// Profiles absent from pools are not considered. Otherwise the fixed profile
// is used.
func (s Selector) Select(pools Pools, capacity *int) Selection {
	chosen := s.Profile
	if s.Policy == PolicyClosest && capacity != nil && *capacity >= 1 {
		order := s.Order
		if len(order) == 0 {
			order = Profiles
		}
		present := lo.Filter(order, func(p Profile, _ int) bool {
			_, ok := pools[p]
			return ok
		})
		if len(present) > 0 {
			chosen = lo.MinBy(present, func(a, b Profile) bool {
				return gap(len(pools[a]), *capacity) < gap(len(pools[b]), *capacity)
			})
		}
	}

	return Selection{
		Profile:    chosen,
		Candidates: pools[chosen],
		Sizes:      pools.Sizes(),
	}
}

func gap(n, capacity int) int {
	if n > capacity {
		return n - capacity
	}
	return capacity - n
}
