package heightfield

// builtins returns the templates every registry starts with.
func builtins() []*Template {
	mask := &MaskParams{Exponent: 4, Scale: 0.95, Falloff: 0.35, Strength: 1}
	roundMask := &MaskParams{Exponent: 2, Scale: 0.9, Falloff: 0.45, Strength: 1}

	return []*Template{
		{
			Name: "volcano",
			Steps: []Step{
				{Op: OpHill, Count: Span{1, 1}, Height: Span{0.9, 1}, X: Span{0.45, 0.55}, Y: Span{0.45, 0.55}, Radius: 0.9, Sharpness: 0.1},
				{Op: OpHill, Count: Span{2, 3}, Height: Span{0.2, 0.3}, X: Span{0.3, 0.7}, Y: Span{0.3, 0.7}, Radius: 0.8, Sharpness: 0.2},
				{Op: OpPit, Count: Span{1, 1}, Height: Span{0.1, 0.15}, X: Span{0.48, 0.52}, Y: Span{0.48, 0.52}, Radius: 0.5},
				{Op: OpSmooth, Value: 0.5},
				{Op: OpMask, Mask: roundMask},
				{Op: OpNormalize, Range: Span{0, 1}},
				{Op: OpErode, Talus: 0.02, Value: 0.3, Iterations: 2},
			},
		},
		{
			Name: "highIsland",
			Steps: []Step{
				{Op: OpHill, Count: Span{1, 1}, Height: Span{0.8, 0.9}, X: Span{0.4, 0.6}, Y: Span{0.4, 0.6}, Radius: 0.92, Sharpness: 0.1},
				{Op: OpRange, Count: Span{2, 3}, Height: Span{0.3, 0.4}, X: Span{0.25, 0.75}, Y: Span{0.25, 0.75}, Radius: 0.8, Sharpness: 0.1},
				{Op: OpHill, Count: Span{4, 6}, Height: Span{0.15, 0.25}, X: Span{0.2, 0.8}, Y: Span{0.2, 0.8}, Radius: 0.85, Sharpness: 0.2},
				{Op: OpPit, Count: Span{1, 2}, Height: Span{0.1, 0.2}, X: Span{0.2, 0.8}, Y: Span{0.2, 0.8}, Radius: 0.8},
				{Op: OpSmooth, Value: 0.4, Iterations: 2},
				{Op: OpMask, Mask: mask},
				{Op: OpNormalize, Range: Span{0, 1}},
			},
		},
		{
			Name: "lowIsland",
			Steps: []Step{
				{Op: OpHill, Count: Span{1, 1}, Height: Span{0.6, 0.7}, X: Span{0.4, 0.6}, Y: Span{0.4, 0.6}, Radius: 0.93, Sharpness: 0.1},
				{Op: OpHill, Count: Span{3, 5}, Height: Span{0.1, 0.2}, X: Span{0.25, 0.75}, Y: Span{0.25, 0.75}, Radius: 0.85, Sharpness: 0.2},
				{Op: OpMultiply, Value: 0.7, Range: Span{0.5, 1}},
				{Op: OpSmooth, Value: 0.6, Iterations: 2},
				{Op: OpMask, Mask: mask},
				{Op: OpNormalize, Range: Span{0, 0.7}},
			},
		},
		{
			Name: "continents",
			Steps: []Step{
				{Op: OpHill, Count: Span{1, 1}, Height: Span{0.7, 0.8}, X: Span{0.15, 0.4}, Y: Span{0.25, 0.75}, Radius: 0.9, Sharpness: 0.1},
				{Op: OpHill, Count: Span{1, 1}, Height: Span{0.7, 0.8}, X: Span{0.6, 0.85}, Y: Span{0.25, 0.75}, Radius: 0.9, Sharpness: 0.1},
				{Op: OpRange, Count: Span{2, 3}, Height: Span{0.3, 0.4}, X: Span{0.1, 0.9}, Y: Span{0.2, 0.8}, Radius: 0.8},
				{Op: OpTrough, Count: Span{1, 2}, Height: Span{0.3, 0.4}, X: Span{0.45, 0.55}, Y: Span{0.1, 0.9}, Radius: 0.75},
				{Op: OpPit, Count: Span{2, 3}, Height: Span{0.1, 0.2}, X: Span{0.2, 0.8}, Y: Span{0.2, 0.8}, Radius: 0.8},
				{Op: OpSmooth, Value: 0.4},
				{Op: OpMask, Mask: mask},
				{Op: OpNormalize, Range: Span{0, 1}},
			},
		},
		{
			Name: "archipelago",
			Steps: []Step{
				{Op: OpHill, Count: Span{8, 12}, Height: Span{0.4, 0.6}, X: Span{0.15, 0.85}, Y: Span{0.15, 0.85}, Radius: 0.8, Sharpness: 0.2},
				{Op: OpTrough, Count: Span{2, 3}, Height: Span{0.2, 0.3}, X: Span{0.1, 0.9}, Y: Span{0.1, 0.9}, Radius: 0.7},
				{Op: OpSmooth, Value: 0.3},
				{Op: OpMask, Mask: mask},
				{Op: OpNormalize, Range: Span{0, 1}},
			},
		},
		{
			Name: "peninsula",
			Steps: []Step{
				{Op: OpHill, Count: Span{1, 1}, Height: Span{0.8, 0.9}, X: Span{0.1, 0.25}, Y: Span{0.4, 0.6}, Radius: 0.93, Sharpness: 0.1},
				{Op: OpRange, Count: Span{1, 1}, Height: Span{0.4, 0.5}, X: Span{0.2, 0.7}, Y: Span{0.45, 0.55}, Radius: 0.8},
				{Op: OpHill, Count: Span{2, 3}, Height: Span{0.2, 0.3}, X: Span{0.2, 0.6}, Y: Span{0.35, 0.65}, Radius: 0.85, Sharpness: 0.2},
				{Op: OpSmooth, Value: 0.4},
				{Op: OpMask, Mask: &MaskParams{Exponent: 3, Scale: 1.1, Falloff: 0.3, Strength: 0.9}},
				{Op: OpNormalize, Range: Span{0, 1}},
				{Op: OpCap, Value: 0.95},
			},
		},
	}
}
