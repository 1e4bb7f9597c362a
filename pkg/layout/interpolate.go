package layout

// interpolate blends target with previous at progress p. Elements and
// branches missing from previous are new: they grow from zero height at
// their target position. Every returned entry records the snapshot it was
// blended from in Prev.
func interpolate(target, previous *Maps, p float64) *Maps {
	out := newMaps(len(target.Nodes))
	for id, next := range target.Nodes {
		var from Info
		if prev, ok := previous.Nodes[id]; ok {
			from = *prev
		} else {
			from = *next
			from.H, from.JoinOffsetY, from.AddOffset = 0, 0, 0
		}
		from.Prev = nil
		info := lerpInfo(&from, next, p)
		info.Prev = &from
		out.Nodes[id] = info
	}
	for key, next := range target.Branches {
		var from BranchInfo
		if prev, ok := previous.Branches[key]; ok {
			from = *prev
		} else {
			from = *next
			from.H = 0
		}
		from.Prev = nil
		info := lerpBranch(&from, next, p)
		info.Prev = &from
		out.Branches[key] = info
	}
	return out
}

func lerpInfo(a, b *Info, p float64) *Info {
	return &Info{
		X:           lerp(a.X, b.X, p),
		Y:           lerp(a.Y, b.Y, p),
		W:           lerp(a.W, b.W, p),
		H:           lerp(a.H, b.H, p),
		LeftWidth:   lerp(a.LeftWidth, b.LeftWidth, p),
		JoinOffsetY: lerp(a.JoinOffsetY, b.JoinOffsetY, p),
		AddOffset:   lerp(a.AddOffset, b.AddOffset, p),
	}
}

func lerpBranch(a, b *BranchInfo, p float64) *BranchInfo {
	return &BranchInfo{
		X:          lerp(a.X, b.X, p),
		Y:          lerp(a.Y, b.Y, p),
		W:          lerp(a.W, b.W, p),
		H:          lerp(a.H, b.H, p),
		OffsetX:    lerp(a.OffsetX, b.OffsetX, p),
		LeftWidth:  lerp(a.LeftWidth, b.LeftWidth, p),
		IsTerminal: b.IsTerminal,
	}
}

// lerp is exact at both ends: p=0 yields a and p=1 yields b.
func lerp(a, b, p float64) float64 {
	return a*(1-p) + b*p
}
