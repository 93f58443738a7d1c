// Package units holds the imperial conversion factors used by the bundled
// scenarios.
package units

const (
	LbmToSlug   = 1.0 / 32.174
	MphToFps    = 5280.0 / 3600.0
	KgToSlug    = 0.06852177
	MToIn       = 1.0 / 0.0254
	InToFt      = 1.0 / 12.0
	SlugToSnail = 1.0 / 12.0

	// StandardGravity in ft/s^2.
	StandardGravity = 32.174

	// SeaLevelDensity in kg/m^3.
	SeaLevelDensity = 1.225
)

// SlugPerFt3 converts a density in kg/m^3 to slug/ft^3.
func SlugPerFt3(kgPerM3 float64) float64 {
	return kgPerM3 * KgToSlug / (MToIn * MToIn * MToIn) / (InToFt * InToFt * InToFt)
}

// SnailPerIn3 converts a density in kg/m^3 to snail/in^3, the mass unit
// that pairs with lbf and inches.
func SnailPerIn3(kgPerM3 float64) float64 {
	return kgPerM3 * KgToSlug / (MToIn * MToIn * MToIn) * SlugToSnail
}

func MphToFpsSpeed(mph float64) float64 { return mph * MphToFps }

func FpsToMph(fps float64) float64 { return fps / MphToFps }
