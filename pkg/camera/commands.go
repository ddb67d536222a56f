package camera

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arpelle/glint/pkg/core"
)

// ApplyCommands executes a comma-separated camera command list:
//
//	g POS     move to position
//	t POS     aim at position
//	z FLOAT   zoom, scaling the field of view
//	m AXIS D  move DIST along u|d|l|r|f|b (camera) or x|y|z (world)
//	r AXIS A  rotate around world axis x|y|z by ANGLE degrees
//	o AXIS A  orbit the target around world axis by ANGLE degrees
//
// Positions are written as (x,y,z). Commas separate commands; commas
// inside parentheses belong to the position.
func (c *Camera) ApplyCommands(commands string) error {
	for _, cmd := range splitCommands(commands) {
		cmd = strings.TrimSpace(cmd)
		if cmd == "" {
			continue
		}
		if err := c.applyCommand(cmd); err != nil {
			return err
		}
	}
	return nil
}

func (c *Camera) applyCommand(cmd string) error {
	fields := strings.Fields(cmd)
	op := fields[0]

	switch op {
	case "g", "t":
		if len(fields) != 2 {
			return fmt.Errorf("camera command %q: expected one position", cmd)
		}
		pos, err := parsePos(fields[1])
		if err != nil {
			return fmt.Errorf("camera command %q: %w", cmd, err)
		}
		if op == "g" {
			c.MoveTo(pos)
		} else {
			c.TargetTo(pos)
		}

	case "z":
		if len(fields) != 2 {
			return fmt.Errorf("camera command %q: expected one factor", cmd)
		}
		factor, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || factor <= 0 {
			return fmt.Errorf("camera command %q: bad zoom factor", cmd)
		}
		c.Zoom(factor)

	case "m":
		if len(fields) != 3 {
			return fmt.Errorf("camera command %q: expected axis and distance", cmd)
		}
		axis := fields[1]
		if len(axis) != 1 || !strings.ContainsAny(axis, "udlrfbxyz") {
			return fmt.Errorf("camera command %q: bad move axis %q", cmd, axis)
		}
		dist, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return fmt.Errorf("camera command %q: bad distance", cmd)
		}
		c.Move(axis[0], dist)

	case "r", "o":
		if len(fields) != 3 {
			return fmt.Errorf("camera command %q: expected axis and angle", cmd)
		}
		axis, err := parseAxis(fields[1])
		if err != nil {
			return fmt.Errorf("camera command %q: %w", cmd, err)
		}
		degrees, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return fmt.Errorf("camera command %q: bad angle", cmd)
		}
		radians := degrees * degToRad
		if op == "r" {
			c.Rotate(axis, radians)
		} else {
			c.Orbit(axis, radians)
		}

	default:
		return fmt.Errorf("unknown camera command %q", op)
	}
	return nil
}

const degToRad = 3.14159265358979323846 / 180

// splitCommands splits on commas that are not inside parentheses
func splitCommands(s string) []string {
	var cmds []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				cmds = append(cmds, s[start:i])
				start = i + 1
			}
		}
	}
	return append(cmds, s[start:])
}

// parsePos parses a "(x,y,z)" position
func parsePos(s string) (core.Vec3, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return core.Vec3{}, fmt.Errorf("bad position %q", s)
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	if len(parts) != 3 {
		return core.Vec3{}, fmt.Errorf("bad position %q", s)
	}
	var vals [3]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("bad position %q", s)
		}
		vals[i] = v
	}
	return core.NewVec3(vals[0], vals[1], vals[2]), nil
}

// parseAxis maps x|y|z to a world axis vector
func parseAxis(s string) (core.Vec3, error) {
	switch s {
	case "x":
		return core.NewVec3(1, 0, 0), nil
	case "y":
		return core.NewVec3(0, 1, 0), nil
	case "z":
		return core.NewVec3(0, 0, 1), nil
	}
	return core.Vec3{}, fmt.Errorf("bad axis %q", s)
}
