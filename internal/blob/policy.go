package blob

import "github.com/durablefs/vfs/internal/metadata"

// TierPolicy decides which tier a newly written blob of a given size
// should land in, and which tier to use instead when the preferred one has
// no backend. Placement is size-driven: small blobs stay hot for low-latency access,
// mid-sized blobs go warm, and anything larger goes cold.
type TierPolicy struct {
	HotMax  int64
	WarmMax int64
}

// DefaultTierPolicy matches the host's documented defaults: 1 MiB hot
// ceiling, 100 MiB warm ceiling.
func DefaultTierPolicy() TierPolicy {
	return TierPolicy{
		HotMax:  1 << 20,
		WarmMax: 100 << 20,
	}
}

// PlacementFor returns the tier a newly written blob of the given size
// should be stored in.
func (p TierPolicy) PlacementFor(size int64) metadata.Tier {
	switch {
	case size <= p.HotMax:
		return metadata.TierHot
	case size <= p.WarmMax:
		return metadata.TierWarm
	default:
		return metadata.TierCold
	}
}

// Fallback returns the next tier to try when the preferred tier has no
// configured Backend, walking hot -> warm -> cold -> hot until one is
// found or every tier has been tried.
func (p TierPolicy) Fallback(preferred metadata.Tier, available func(metadata.Tier) bool) (metadata.Tier, bool) {
	order := []metadata.Tier{metadata.TierHot, metadata.TierWarm, metadata.TierCold}
	start := 0
	for i, t := range order {
		if t == preferred {
			start = i
			break
		}
	}
	for i := 0; i < len(order); i++ {
		t := order[(start+i)%len(order)]
		if available(t) {
			return t, true
		}
	}
	return "", false
}
