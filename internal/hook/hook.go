// Package hook runs external executables when a person wakes or is cleared.
//
// Each hook lives in its own directory under the hook root with a hook.json manifest.
// The executable receives one Request as JSON on stdin and may answer with a Response
// on stdout.
package hook

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ManifestFile is the manifest name looked up in each hook directory.
const ManifestFile = "hook.json"

// Kind names an activation transition.
type Kind string

const (
	KindWake  Kind = "wake"
	KindClear Kind = "clear"
)

// Manifest describes a hook.
type Manifest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Executable  string `json:"executable"`
	// Events restricts the hook to these kinds. Empty means all.
	Events []Kind `json:"events,omitempty"`
}

// Wants reports whether the manifest subscribes to k.
func (m Manifest) Wants(k Kind) bool {
	if len(m.Events) == 0 {
		return true
	}
	for _, e := range m.Events {
		if e == k {
			return true
		}
	}
	return false
}

// Hook is a discovered hook.
type Hook struct {
	Manifest   Manifest
	Dir        string
	Executable string
}

// Request is written to a hook's stdin.
type Request struct {
	Event        Kind      `json:"event"`
	ActivationID string    `json:"activation_id,omitempty"`
	Person       string    `json:"person"`
	PersonIndex  int       `json:"person_index"`
	WakeMode     string    `json:"wake_mode,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	At           time.Time `json:"at"`
}

// Response is read from a hook's stdout. Empty output counts as success.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
