package main

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/thirdperson/ecs"
	"github.com/milk9111/thirdperson/ecs/component"
)

const stickDeadzone = 0.2

// deviceState is one poll of keyboard and gamepad.
type deviceState struct {
	moveX, moveY float64
	sprint       bool
	jumpPressed  bool
	interact     bool
	turn         int
	toggleCursor bool
}

// InputSystem polls devices into the player's Input.
type InputSystem struct {
	cursorLocked bool
}

func NewInputSystem() *InputSystem {
	return &InputSystem{cursorLocked: true}
}

func (i *InputSystem) Update(w *ecs.World, _ float64) {
	if w == nil {
		return
	}

	st := pollDevices()
	if st.toggleCursor {
		i.cursorLocked = !i.cursorLocked
		if i.cursorLocked {
			ebiten.SetCursorMode(ebiten.CursorModeCaptured)
		} else {
			ebiten.SetCursorMode(ebiten.CursorModeVisible)
		}
	}

	ecs.ForEach2(w, component.InputComponent.Kind(), component.PlayerTagComponent.Kind(), func(_ ecs.Entity, input *component.Input, _ *component.PlayerTag) {
		applyDevices(input, st, i.cursorLocked)
	})
}

func pollDevices() deviceState {
	var st deviceState

	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		st.moveX -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		st.moveX += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		st.moveY += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		st.moveY -= 1
	}
	st.sprint = ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)
	st.jumpPressed = inpututil.IsKeyJustPressed(ebiten.KeySpace)
	st.interact = ebiten.IsKeyPressed(ebiten.KeyF)
	st.toggleCursor = inpututil.IsKeyJustPressed(ebiten.KeyEscape)
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		st.turn--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		st.turn++
	}

	if gamepads := ebiten.AppendGamepadIDs(nil); len(gamepads) > 0 {
		id := gamepads[0]
		lx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		ly := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		if math.Hypot(lx, ly) > stickDeadzone {
			// Stick up is negative.
			st.moveX = lx
			st.moveY = -ly
		}

		st.sprint = st.sprint || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftStick)
		st.jumpPressed = st.jumpPressed || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightBottom)
		st.interact = st.interact || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightLeft)
		st.toggleCursor = st.toggleCursor || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonCenterRight)
		if inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonFrontTopLeft) {
			st.turn--
		}
		if inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonFrontTopRight) {
			st.turn++
		}
	}
	return st
}

// applyDevices copies a poll into input. The jump latch is only raised here;
// the character controller lowers it when the jump is used.
func applyDevices(input *component.Input, st deviceState, cursorLocked bool) {
	input.MoveX = st.moveX
	input.MoveY = st.moveY
	input.Sprint = st.sprint
	input.Interact = st.interact
	input.CursorLocked = cursorLocked
	if st.jumpPressed {
		input.Jump = true
	}
	if st.turn != 0 {
		input.Turn = 1
		if st.turn < 0 {
			input.Turn = -1
		}
	}
}
