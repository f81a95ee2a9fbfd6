package scene

import (
	"bytes"
	_ "embed"
)

// defaultScene is the built-in tilt maze.
//
//go:embed maze.yaml
var defaultScene []byte

// Default returns the built-in tilt maze: a walled grid with a spring pad
// and a fan.
func Default() *Scene {
	s, err := Parse(defaultScene)
	if err != nil {
		panic("scene: built-in maze is invalid: " + err.Error())
	}
	return s
}

// DefaultSource returns the YAML of the built-in maze.
func DefaultSource() []byte {
	return bytes.Clone(defaultScene)
}
