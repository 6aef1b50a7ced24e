package mediacmd

// FeatureGates exposes the runtime toggles required by media command handlers.
// Callers inject closures reading runtimeconfig.Features.
type FeatureGates struct {
	// ImageProcessingEnabled returns true when the image maintenance task may run.
	ImageProcessingEnabled func() bool
}

func (g FeatureGates) imageProcessingEnabled() bool {
	if g.ImageProcessingEnabled == nil {
		return true
	}
	return g.ImageProcessingEnabled()
}
