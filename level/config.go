package level

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config is one level description document. Component type names in
// Terrain, Environment and Systems are resolved through the registry
// at load time.
type Config struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	Terrain     TerrainConfig     `yaml:"terrain"`
	Environment EnvironmentConfig `yaml:"environment"`
	Movement    MovementSettings  `yaml:"movement"`
	Systems     []SystemConfig    `yaml:"systems"`
	Physics     PhysicsSettings   `yaml:"physics"`
}

// TerrainConfig names the terrain generator and its parameters. The
// terrain component is load-bearing: a level without working terrain
// never reaches Ready.
type TerrainConfig struct {
	Type   string         `yaml:"type"`
	Params map[string]any `yaml:"params"`
}

// EnvironmentConfig selects the lighting setup and decorative
// effects. Lighting resolves as component type "lighting.<mode>",
// each effect as "effect.<name>"; all are best-effort.
type EnvironmentConfig struct {
	Lighting string   `yaml:"lighting"`
	Effects  []string `yaml:"effects"`
}

// MovementSettings is handed to the physics/movement collaborator
// together with the terrain height query.
type MovementSettings struct {
	TerrainFollow bool               `yaml:"terrain_follow"`
	Boundary      Boundary           `yaml:"boundary"`
	Spawn         SpawnHint          `yaml:"spawn"`
	Constants     map[string]float64 `yaml:"constants"`
}

// Boundary constrains where the player may walk.
type Boundary struct {
	Shape  string  `yaml:"shape"` // "circle", "rect" or "" for none
	Radius float32 `yaml:"radius"`
	SizeX  float32 `yaml:"size_x"`
	SizeZ  float32 `yaml:"size_z"`
}

// SpawnHint is the configured spawn column; the actual spawn height
// comes from sampling the terrain at (X, Z).
type SpawnHint struct {
	X         float32 `yaml:"x"`
	Z         float32 `yaml:"z"`
	Clearance float32 `yaml:"clearance"` // height above the surface; defaults to player eye height
}

// SystemConfig is one entry in the ordered systems list. Required
// entries abort level construction on failure like terrain does;
// everything else degrades gracefully.
type SystemConfig struct {
	Type     string         `yaml:"type"`
	Required bool           `yaml:"required"`
	Config   map[string]any `yaml:"config"`
}

// PhysicsSettings configures the physics collaborator hookup.
type PhysicsSettings struct {
	AutoColliders bool       `yaml:"auto_colliders"`
	Gravity       [3]float32 `yaml:"gravity"`
}

// DefaultSpawnClearance places the player slightly above the sampled
// surface, matching the original observatory spawn offset.
const DefaultSpawnClearance = 1.6

// ComponentTypes returns every component type name the config
// references, in resolution order: terrain, lighting, effects, then
// the systems list. Blank entries are omitted.
func (c *Config) ComponentTypes() []string {
	if c == nil {
		return nil
	}
	var names []string
	if c.Terrain.Type != "" {
		names = append(names, c.Terrain.Type)
	}
	if c.Environment.Lighting != "" {
		names = append(names, "lighting."+c.Environment.Lighting)
	}
	for _, eff := range c.Environment.Effects {
		if eff != "" {
			names = append(names, "effect."+eff)
		}
	}
	for _, sys := range c.Systems {
		if sys.Type != "" {
			names = append(names, sys.Type)
		}
	}
	return names
}

// RequiredTypes returns the subset of ComponentTypes whose failure is
// fatal: the terrain generator and any system marked required.
func (c *Config) RequiredTypes() []string {
	if c == nil {
		return nil
	}
	var names []string
	if c.Terrain.Type != "" {
		names = append(names, c.Terrain.Type)
	}
	for _, sys := range c.Systems {
		if sys.Required && sys.Type != "" {
			names = append(names, sys.Type)
		}
	}
	return names
}

// ParseConfig decodes a YAML level document.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("level: unmarshal config: %w", err)
	}
	if cfg.ID == "" {
		return nil, fmt.Errorf("level: config missing id")
	}
	if cfg.Terrain.Type == "" {
		return nil, fmt.Errorf("level %q: config missing terrain type", cfg.ID)
	}
	if cfg.Movement.Spawn.Clearance <= 0 {
		cfg.Movement.Spawn.Clearance = DefaultSpawnClearance
	}
	return &cfg, nil
}
