// Package config defines every recognized option of the pinchpoint service, its
// default and its validation rules.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ayusman/pinchpoint/internal/arbiter"
)

// Tracking holds the options of the gesture pipeline. It is the record persisted by
// the settings store and exchanged by the settings API.
type Tracking struct {
	TrackHands       bool             `json:"track_hands" env:"TRACK_HANDS"`
	NumBodies        int              `json:"num_bodies" env:"NUM_BODIES" validate:"min=1,max=2"`
	CheckFingerPoses bool             `json:"check_finger_poses" env:"CHECK_FINGER_POSES"`
	CheckHeadTurn    bool             `json:"check_head_turn" env:"CHECK_HEAD_TURN"`
	WakeMode         arbiter.WakeMode `json:"wake_mode" env:"WAKE_MODE" validate:"oneof=TWO_HANDS_IN FIST NONE"`
	RemoveInactive   bool             `json:"remove_inactive" env:"REMOVE_INACTIVE"`

	MissingHandTimeout time.Duration `json:"missing_hand_timeout" env:"MISSING_HAND_TIMEOUT" validate:"gt=0"`
	WakeHoldTime       time.Duration `json:"wake_hold_time" env:"WAKE_HOLD_TIME" validate:"gte=0"`
	InactiveTimeout    time.Duration `json:"inactive_timeout" env:"INACTIVE_TIMEOUT" validate:"gt=0"`
	PoseHoldThreshold  time.Duration `json:"pose_hold_threshold" env:"POSE_HOLD_THRESHOLD" validate:"gt=0"`

	PinchSmoothing      float64 `json:"pinch_smoothing" env:"PINCH_SMOOTHING" validate:"gte=0,lt=1"`
	PinchDeadzone       float64 `json:"pinch_deadzone" env:"PINCH_DEADZONE" validate:"gte=0"`
	WristVisibility     float64 `json:"wrist_visibility" env:"WRIST_VISIBILITY" validate:"gte=0,lte=1"`
	WristLerp           float64 `json:"wrist_lerp" env:"WRIST_LERP" validate:"gt=0,lte=1"`
	ScreenDeadzone      float64 `json:"screen_deadzone" env:"SCREEN_DEADZONE" validate:"gte=0"`
	AssociationDistance float64 `json:"association_distance" env:"ASSOCIATION_DISTANCE" validate:"gt=0"`

	// DutyCycleLength is the number of ticks in one detection cycle; the first
	// BodyDutyTicks of them run body detection and the rest hand detection.
	DutyCycleLength int `json:"duty_cycle_length" env:"DUTY_CYCLE_LENGTH" validate:"min=1"`
	BodyDutyTicks   int `json:"body_duty_ticks" env:"BODY_DUTY_TICKS" validate:"min=0,ltefield=DutyCycleLength"`
}

// Camera holds capture options.
type Camera struct {
	DeviceID int `json:"device_id" env:"CAMERA_ID" validate:"min=0"`
	// ActiveFPS is the frame rate while someone is moving in front of the camera.
	ActiveFPS int `json:"active_fps" env:"ACTIVE_FPS" validate:"min=1"`
	// IdleFPS is the frame rate while the scene is still.
	IdleFPS int `json:"idle_fps" env:"IDLE_FPS" validate:"min=1,ltefield=ActiveFPS"`
	// MotionThreshold is the percentage of changed pixels that counts as motion.
	MotionThreshold float64 `json:"motion_threshold" env:"MOTION_THRESHOLD" validate:"gte=0,lte=100"`
	// IdleTimeout is how long the scene must be still before dropping to IdleFPS.
	IdleTimeout time.Duration `json:"idle_timeout" env:"IDLE_TIMEOUT" validate:"gt=0"`
}

// Screen is the size of the surface pinch points are mapped onto, in pixels.
type Screen struct {
	Width  float64 `json:"width" env:"SCREEN_WIDTH" validate:"gt=0"`
	Height float64 `json:"height" env:"SCREEN_HEIGHT" validate:"gt=0"`
}

// Server holds HTTP options.
type Server struct {
	Addr string `json:"addr" env:"ADDR" validate:"required"`
}

// Store holds persistence options.
type Store struct {
	Path string `json:"path" env:"DB" validate:"required"`
}

// Log holds logging options. An empty File logs to stderr only.
type Log struct {
	Level string `json:"level" env:"LOG_LEVEL" validate:"oneof=trace debug info warn error"`
	File  string `json:"file" env:"LOG_FILE"`
}

// Hooks holds activation hook options. An empty Dir disables hooks.
type Hooks struct {
	Dir     string        `json:"dir" env:"HOOK_DIR"`
	Timeout time.Duration `json:"timeout" env:"HOOK_TIMEOUT" validate:"gt=0"`
}

// Config is the complete service configuration.
type Config struct {
	Tracking Tracking `json:"tracking"`
	Camera   Camera   `json:"camera"`
	Screen   Screen   `json:"screen"`
	Server   Server   `json:"server"`
	Store    Store    `json:"store"`
	Log      Log      `json:"log"`
	Hooks    Hooks    `json:"hooks"`
}

// DefaultTracking returns the default pipeline options.
func DefaultTracking() Tracking {
	return Tracking{
		TrackHands:       true,
		NumBodies:        1,
		CheckFingerPoses: true,
		CheckHeadTurn:    false,
		WakeMode:         arbiter.TwoHandsIn,
		RemoveInactive:   true,

		MissingHandTimeout: 500 * time.Millisecond,
		WakeHoldTime:       200 * time.Millisecond,
		InactiveTimeout:    5000 * time.Millisecond,
		PoseHoldThreshold:  1500 * time.Millisecond,

		PinchSmoothing:      0.2,
		PinchDeadzone:       0.01,
		WristVisibility:     0.8,
		WristLerp:           0.4,
		ScreenDeadzone:      50,
		AssociationDistance: 0.2,

		DutyCycleLength: 3,
		BodyDutyTicks:   1,
	}
}

// Default returns a Config with sensible default values.
func Default() Config {
	return Config{
		Tracking: DefaultTracking(),
		Camera: Camera{
			DeviceID:        0,
			ActiveFPS:       30,
			IdleFPS:         5,
			MotionThreshold: 1.0,
			IdleTimeout:     2 * time.Second,
		},
		Screen: Screen{Width: 1920, Height: 1080},
		Server: Server{Addr: "127.0.0.1:8080"},
		Store:  Store{Path: "pinchpoint.db"},
		Log:    Log{Level: "info"},
		Hooks:  Hooks{Timeout: 5 * time.Second},
	}
}

var validate = validator.New()

// Validate checks every field against its rules.
func (c Config) Validate() error {
	return check(c)
}

// Validate checks the tracking options against their rules.
func (t Tracking) Validate() error {
	return check(t)
}

func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		f := fields[0]
		return fmt.Errorf("invalid config: %s failed %q (value %v)", f.Namespace(), f.Tag(), f.Value())
	}
	return fmt.Errorf("invalid config: %w", err)
}

// Load returns the defaults overlaid with the environment, validated.
func Load() (Config, error) {
	cfg, err := FromEnv(Default())
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
