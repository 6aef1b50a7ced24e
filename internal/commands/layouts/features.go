package layoutscmd

// FeatureGates exposes the runtime toggles required by layout command handlers.
type FeatureGates struct {
	// MigrationEnabled returns true when legacy layouts may be written back.
	MigrationEnabled func() bool
}

func (g FeatureGates) migrationEnabled() bool {
	if g.MigrationEnabled == nil {
		return true
	}
	return g.MigrationEnabled()
}
