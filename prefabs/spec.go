package prefabs

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/thirdperson/motion"
	"gopkg.in/yaml.v3"
)

var ErrUnknownLayer = errors.New("prefabs: unknown layer")

// LoadSpec decodes a prefab into a fresh T.
func LoadSpec[T any](filename string) (T, error) {
	var spec T
	if err := LoadSpecInto(filename, &spec); err != nil {
		var zero T
		return zero, err
	}
	return spec, nil
}

// LoadSpecInto decodes a prefab over spec. Fields the file omits keep the
// values spec already holds.
func LoadSpecInto[T any](filename string, spec *T) error {
	data, err := Load(filename)
	if err != nil {
		return fmt.Errorf("prefabs: load %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, spec); err != nil {
		return fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}
	return nil
}

// LayersSpec names the ground layers, e.g. "ground: 0".
type LayersSpec struct {
	Layers map[string]int `yaml:"layers"`
}

func LoadLayersSpec() (LayersSpec, error) {
	return LoadSpec[LayersSpec]("layers.yaml")
}

// Index resolves a layer by name or by its decimal index.
func (l LayersSpec) Index(name string) (int, error) {
	if idx, ok := l.Layers[name]; ok {
		return idx, nil
	}
	if idx, err := strconv.Atoi(name); err == nil && idx >= 0 && idx < 28 {
		return idx, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
}

// Mask combines named layers into a LayerMask.
func (l LayersSpec) Mask(names []string) (motion.LayerMask, error) {
	var mask motion.LayerMask
	for _, name := range names {
		idx, err := l.Index(name)
		if err != nil {
			return 0, err
		}
		mask |= motion.LayerBit(idx)
	}
	return mask, nil
}

type MotionSpec struct {
	MoveSpeed         float64   `yaml:"move_speed"`
	SprintSpeed       float64   `yaml:"sprint_speed"`
	YawSmoothTime     float64   `yaml:"yaw_smooth_time"`
	SpeedChangeRate   float64   `yaml:"speed_change_rate"`
	JumpHeights       []float64 `yaml:"jump_heights"`
	Gravity           float64   `yaml:"gravity"`
	JumpTimeout       float64   `yaml:"jump_timeout"`
	FallTimeout       float64   `yaml:"fall_timeout"`
	TerminalVelocity  float64   `yaml:"terminal_velocity"`
	GroundProbeOffset float64   `yaml:"ground_probe_offset"`
	GroundProbeRadius float64   `yaml:"ground_probe_radius"`
	GroundLayers      []string  `yaml:"ground_layers"`
}

func defaultMotionSpec() MotionSpec {
	cfg := motion.DefaultConfig()
	return MotionSpec{
		MoveSpeed:         cfg.MoveSpeed,
		SprintSpeed:       cfg.SprintSpeed,
		YawSmoothTime:     cfg.YawSmoothTime,
		SpeedChangeRate:   cfg.SpeedChangeRate,
		JumpHeights:       cfg.JumpHeights,
		Gravity:           cfg.Gravity,
		JumpTimeout:       cfg.JumpTimeout,
		FallTimeout:       cfg.FallTimeout,
		TerminalVelocity:  cfg.TerminalVelocity,
		GroundProbeOffset: cfg.GroundProbeOffset,
		GroundProbeRadius: cfg.GroundProbeRadius,
		GroundLayers:      []string{"0"},
	}
}

// Config converts the spec to a validated motion.Config.
func (m MotionSpec) Config(layers LayersSpec) (motion.Config, error) {
	mask, err := layers.Mask(m.GroundLayers)
	if err != nil {
		return motion.Config{}, fmt.Errorf("prefabs: ground layers: %w", err)
	}
	cfg := motion.Config{
		MoveSpeed:         m.MoveSpeed,
		SprintSpeed:       m.SprintSpeed,
		YawSmoothTime:     m.YawSmoothTime,
		SpeedChangeRate:   m.SpeedChangeRate,
		JumpHeights:       append([]float64(nil), m.JumpHeights...),
		Gravity:           m.Gravity,
		JumpTimeout:       m.JumpTimeout,
		FallTimeout:       m.FallTimeout,
		TerminalVelocity:  m.TerminalVelocity,
		GroundProbeOffset: m.GroundProbeOffset,
		GroundProbeRadius: m.GroundProbeRadius,
		GroundLayers:      mask,
	}
	if err := cfg.Validate(); err != nil {
		return motion.Config{}, fmt.Errorf("prefabs: motion: %w", err)
	}
	return cfg, nil
}

type CharacterSpec struct {
	Name   string     `yaml:"name"`
	Radius float64    `yaml:"radius"`
	Height float64    `yaml:"height"`
	Spawn  Vec3Spec   `yaml:"spawn"`
	Yaw    float64    `yaml:"yaw"`
	Color  *YAMLColor `yaml:"color"`
	// Script drives the character when it is not the player.
	Script string     `yaml:"script"`
	Motion MotionSpec `yaml:"motion"`
}

// LoadCharacterSpec reads a character prefab. Motion fields the file omits
// fall back to motion.DefaultConfig.
func LoadCharacterSpec(filename string) (*CharacterSpec, error) {
	spec := CharacterSpec{
		Radius: 0.3,
		Height: 1.8,
		Motion: defaultMotionSpec(),
	}
	if err := LoadSpecInto(filename, &spec); err != nil {
		return nil, err
	}
	if spec.Name == "" {
		spec.Name = strings.TrimSuffix(cleanPrefabPath(filename), ".yaml")
	}
	return &spec, nil
}

type CameraSpec struct {
	Heading     float64 `yaml:"heading"`
	TurnStep    float64 `yaml:"turn_step"`
	TurnSeconds float64 `yaml:"turn_seconds"`
	Distance    float64 `yaml:"distance"`
	Pitch       float64 `yaml:"pitch"`
}

func LoadCameraSpec() (*CameraSpec, error) {
	spec := CameraSpec{TurnStep: 45, TurnSeconds: 0.25, Distance: 6, Pitch: 30}
	if err := LoadSpecInto("camera.yaml", &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

type PlatformSpec struct {
	Name   string     `yaml:"name"`
	Min    Vec2Spec   `yaml:"min"`
	Max    Vec2Spec   `yaml:"max"`
	Bottom float64    `yaml:"bottom"`
	Top    float64    `yaml:"top"`
	Layer  string     `yaml:"layer"`
	Color  *YAMLColor `yaml:"color"`
}

type WallSpec struct {
	A         Vec2Spec `yaml:"a"`
	B         Vec2Spec `yaml:"b"`
	Thickness float64  `yaml:"thickness"`
}

type TriggerSpec struct {
	Name     string   `yaml:"name"`
	Position Vec3Spec `yaml:"position"`
	Radius   float64  `yaml:"radius"`
	Target   string   `yaml:"target"`
	Reveal   string   `yaml:"reveal"`
}

type SceneSpec struct {
	Name       string         `yaml:"name"`
	KillHeight float64        `yaml:"kill_height"`
	Characters []string       `yaml:"characters"`
	Platforms  []PlatformSpec `yaml:"platforms"`
	Walls      []WallSpec     `yaml:"walls"`
	Triggers   []TriggerSpec  `yaml:"triggers"`
	Reveals    []string       `yaml:"reveals"`
}

func LoadSceneSpec(filename string) (*SceneSpec, error) {
	spec := SceneSpec{KillHeight: -50}
	if err := LoadSpecInto(filename, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Vec2Spec is a two element YAML sequence.
type Vec2Spec mgl64.Vec2

func (v *Vec2Spec) UnmarshalYAML(value *yaml.Node) error {
	vals, err := decodeFloats(value, 2)
	if err != nil {
		return err
	}
	*v = Vec2Spec{vals[0], vals[1]}
	return nil
}

func (v Vec2Spec) Vec() mgl64.Vec2 { return mgl64.Vec2(v) }

// Vec3Spec is a three element YAML sequence, or a mapping with x, y and z.
type Vec3Spec mgl64.Vec3

func (v *Vec3Spec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.MappingNode {
		var m struct {
			X float64 `yaml:"x"`
			Y float64 `yaml:"y"`
			Z float64 `yaml:"z"`
		}
		if err := value.Decode(&m); err != nil {
			return err
		}
		*v = Vec3Spec{m.X, m.Y, m.Z}
		return nil
	}
	vals, err := decodeFloats(value, 3)
	if err != nil {
		return err
	}
	*v = Vec3Spec{vals[0], vals[1], vals[2]}
	return nil
}

func (v Vec3Spec) Vec() mgl64.Vec3 { return mgl64.Vec3(v) }

func decodeFloats(value *yaml.Node, n int) ([]float64, error) {
	if value.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: expected a sequence of %d numbers", value.Line, n)
	}
	var vals []float64
	if err := value.Decode(&vals); err != nil {
		return nil, err
	}
	if len(vals) != n {
		return nil, fmt.Errorf("line %d: expected %d numbers, got %d", value.Line, n, len(vals))
	}
	return vals, nil
}

type YAMLColor struct {
	color.Color
}

// Or returns c, or fallback when c is unset.
func (c *YAMLColor) Or(fallback color.Color) color.Color {
	if c == nil || c.Color == nil {
		return fallback
	}
	return c.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")
	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}
	if len(s) == 6 {
		s += "ff"
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}
	c.Color = color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
	return nil
}
