package interfaces

// ModuleCapabilities describes how a widget module type stores its content.
type ModuleCapabilities struct {
	// Type is the canonical module key (for example "image" or "text").
	Type string
	// RegionSpecific modules own their content as widget options. Modules
	// that are not region specific reference a stored library media item.
	RegionSpecific bool
	// ImageProcessing marks module types whose media the maintenance task
	// resizes before release.
	ImageProcessing bool
	// DefaultDuration is used by players when a widget duration is zero.
	DefaultDuration int
}

// ModuleResolver maps a widget module type onto its capabilities. The second
// return value is false when the type is unknown or disabled.
type ModuleResolver interface {
	Capabilities(moduleType string) (ModuleCapabilities, bool)
}
