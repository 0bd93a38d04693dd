package main

import (
	"fmt"
	"log"
	"sync"

	"github.com/milk9111/thirdperson/common"
	"github.com/milk9111/thirdperson/ecs/component"
	"golang.design/x/clipboard"
	"gopkg.in/yaml.v3"
)

// Snapshot is a readable dump of one character's motion, for pasting into
// bug reports or prefab tuning notes.
type Snapshot struct {
	Name     string     `yaml:"name"`
	Frame    uint64     `yaml:"frame"`
	Position [3]float64 `yaml:"position,flow"`
	Phase    string     `yaml:"phase"`
	Falling  bool       `yaml:"falling"`

	HorizontalSpeed  float64 `yaml:"horizontal_speed"`
	VerticalVelocity float64 `yaml:"vertical_velocity"`
	FacingYaw        float64 `yaml:"facing_yaw"`
	TargetYaw        float64 `yaml:"target_yaw"`
	JumpCount        int     `yaml:"jump_count"`
	JumpsLeft        int     `yaml:"jumps_left"`
	JumpTimeout      float64 `yaml:"jump_timeout"`
	FallTimeout      float64 `yaml:"fall_timeout"`
}

func takeSnapshot(ch *component.Character, frame uint64) Snapshot {
	snap := Snapshot{Name: ch.Name, Frame: frame}
	if ch.Body != nil {
		p := ch.Body.Position()
		snap.Position = [3]float64{common.RoundTo(p.X(), 3), common.RoundTo(p.Y(), 3), common.RoundTo(p.Z(), 3)}
	}
	if ch.Controller == nil {
		return snap
	}
	s := ch.Controller.State()
	cfg := ch.Controller.Config()
	snap.Phase = s.Phase().String()
	snap.Falling = s.Falling()
	snap.HorizontalSpeed = s.HorizontalSpeed
	snap.VerticalVelocity = common.RoundTo(s.VerticalVelocity, 3)
	snap.FacingYaw = common.RoundTo(s.FacingYaw, 2)
	snap.TargetYaw = common.RoundTo(s.TargetYaw, 2)
	snap.JumpCount = s.JumpCount
	snap.JumpsLeft = s.JumpsLeft(cfg)
	snap.JumpTimeout = common.RoundTo(s.JumpTimeout, 3)
	snap.FallTimeout = common.RoundTo(s.FallTimeout, 3)
	return snap
}

func (s Snapshot) YAML() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("snapshot: marshal: %w", err)
	}
	return data, nil
}

var (
	clipboardOnce sync.Once
	clipboardErr  error
)

// copySnapshot puts the snapshot on the system clipboard. Platforms without
// a clipboard only log.
func copySnapshot(s Snapshot) {
	data, err := s.YAML()
	if err != nil {
		log.Printf("snapshot: %v", err)
		return
	}
	clipboardOnce.Do(func() { clipboardErr = clipboard.Init() })
	if clipboardErr != nil {
		log.Printf("snapshot: clipboard unavailable: %v\n%s", clipboardErr, data)
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	log.Printf("snapshot: copied %s at frame %d", s.Name, s.Frame)
}
