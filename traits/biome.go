package traits

// Biome is a terrain classification.
type Biome uint8

const (
	Grassland Biome = iota
	Forest
	Desert
	Tundra
	Wetlands
	Ocean
	NumBiomes
)

// LandBiomes lists every biome an animal may prefer.
var LandBiomes = []Biome{Grassland, Forest, Desert, Tundra, Wetlands}

func (b Biome) String() string {
	switch b {
	case Grassland:
		return "grassland"
	case Forest:
		return "forest"
	case Desert:
		return "desert"
	case Tundra:
		return "tundra"
	case Wetlands:
		return "wetlands"
	case Ocean:
		return "ocean"
	}
	return "unknown"
}

// BiomeProps holds the environmental coefficients of a biome.
type BiomeProps struct {
	PlantRegen     float64 // Photosynthesis multiplier
	HydrationDrain float64 // Hydration loss multiplier
	Temperature    float64 // Offset added to the noise temperature
	Movement       float64 // Move probability multiplier
	Flammable      bool
	BaseDryness    float64
	BaseSpread     float64 // Fire spread probability before dryness and rain
	PlantCap       int     // Max plants within the crowding radius
}

// Props returns the coefficients of b.
func (b Biome) Props() BiomeProps {
	switch b {
	case Grassland:
		return BiomeProps{PlantRegen: 1.0, HydrationDrain: 1.0, Temperature: 0, Movement: 1.0,
			Flammable: true, BaseDryness: 0.45, BaseSpread: 0.35, PlantCap: 10}
	case Forest:
		return BiomeProps{PlantRegen: 1.2, HydrationDrain: 0.9, Temperature: -0.03, Movement: 0.8,
			Flammable: true, BaseDryness: 0.3, BaseSpread: 0.45, PlantCap: 14}
	case Desert:
		return BiomeProps{PlantRegen: 0.35, HydrationDrain: 1.8, Temperature: 0.12, Movement: 0.9,
			Flammable: true, BaseDryness: 0.8, BaseSpread: 0.15, PlantCap: 3}
	case Tundra:
		return BiomeProps{PlantRegen: 0.45, HydrationDrain: 0.8, Temperature: -0.15, Movement: 0.75,
			Flammable: false, BaseDryness: 0.2, BaseSpread: 0, PlantCap: 4}
	case Wetlands:
		return BiomeProps{PlantRegen: 1.1, HydrationDrain: 0.6, Temperature: 0, Movement: 0.6,
			Flammable: false, BaseDryness: 0.05, BaseSpread: 0, PlantCap: 12}
	case Ocean:
		return BiomeProps{PlantRegen: 0.6, HydrationDrain: 0.2, Temperature: -0.02, Movement: 1.0,
			Flammable: false, BaseDryness: 0, BaseSpread: 0, PlantCap: 6}
	}
	return BiomeProps{Movement: 1}
}
