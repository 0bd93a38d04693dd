package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/milk9111/thirdperson/prefabs"
	"gopkg.in/yaml.v3"
)

func TestRunWritesSummary(t *testing.T) {
	prev := prefabs.Dir
	prefabs.Dir = t.TempDir()
	t.Cleanup(func() { prefabs.Dir = prev })

	cases := []struct {
		name  string
		opts  options
		check func(t *testing.T, s Summary, raw string)
	}{
		{
			name: "patrol",
			opts: options{scene: "scene.yaml", script: "patrol.tengo", frames: 180, dt: 1.0 / 60},
			check: func(t *testing.T, s Summary, _ string) {
				if s.Frames != 180 || s.Seconds != 3 {
					t.Fatalf("ran %d frames over %vs", s.Frames, s.Seconds)
				}
				if len(s.Characters) != 2 || s.Characters[0].Name != "hero" {
					t.Fatalf("unexpected characters %+v", s.Characters)
				}
				if s.Characters[0].Distance < 1 {
					t.Fatalf("scripted player barely moved: %+v", s.Characters[0])
				}
				if s.Characters[0].Phase != "grounded" {
					t.Fatalf("player should end on the ground, got %s", s.Characters[0].Phase)
				}
			},
		},
		{
			name: "jumping_trace",
			opts: options{scene: "scene.yaml", script: "jump_test.tengo", frames: 60, dt: 1.0 / 60, trace: true},
			check: func(t *testing.T, s Summary, raw string) {
				if got := s.Characters[0].Jumps; got != 2 {
					t.Fatalf("expected both jump stages used, got %d", got)
				}
				if lines := strings.Count(raw, " pos=("); lines != 60 {
					t.Fatalf("expected 60 trace lines, got %d", lines)
				}
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := run(c.opts, &out); err != nil {
				t.Fatalf("run: %v", err)
			}
			raw := out.String()
			doc := raw
			if c.opts.trace {
				doc = raw[strings.Index(raw, "scene:"):]
			}
			var s Summary
			if err := yaml.Unmarshal([]byte(doc), &s); err != nil {
				t.Fatalf("summary is not YAML: %v\n%s", err, doc)
			}
			c.check(t, s, raw)
		})
	}
}

func TestRunRejectsBadOptions(t *testing.T) {
	for _, opts := range []options{
		{scene: "scene.yaml", frames: 1, dt: 0},
		{scene: "scene.yaml", frames: -1, dt: 0.1},
		{scene: "nope.yaml", frames: 1, dt: 0.1},
	} {
		if err := run(opts, &bytes.Buffer{}); err == nil {
			t.Fatalf("expected an error for %+v", opts)
		}
	}
}
