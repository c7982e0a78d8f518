package msl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mogaika/msl_browser/msl/props"
	"github.com/mogaika/msl_browser/scene"
)

// warnFunc collects non fatal remarks about one unit.
type warnFunc func(format string, args ...interface{})

// schema fills a map entity from a decoded point unit.
type schema func(u *PointUnit, e *scene.Entity, warn warnFunc)

var schemas = map[string]schema{
	"pointlight": pointLightSchema,
	"spotlight":  spotLightSchema,
}

// applySchema dispatches on the case-insensitive entity name. Names without a
// schema keep every property under their own class name.
func applySchema(u *PointUnit, warn warnFunc) *scene.Entity {
	e := &scene.Entity{Origin: u.Translate}
	if s, ok := schemas[strings.ToLower(u.Name)]; ok {
		s(u, e, warn)
		return e
	}
	e.ClassName = u.Name
	for _, p := range u.Properties {
		e.Set(p.Key, p.Value)
	}
	return e
}

func copyRequired(u *PointUnit, e *scene.Entity, warn warnFunc, key string, convert func(string) string) {
	v, ok := u.Property(key)
	if !ok {
		warn("%s %q has no %q property", e.ClassName, u.Name, key)
		return
	}
	if convert != nil {
		v = convert(v)
	}
	e.Set(key, v)
}

func pointLightSchema(u *PointUnit, e *scene.Entity, warn warnFunc) {
	e.ClassName = "light"
	copyRequired(u, e, warn, "range", nil)
	copyRequired(u, e, warn, "color", props.SpaceSeparated)
}

func spotLightSchema(u *PointUnit, e *scene.Entity, warn warnFunc) {
	e.ClassName = "spotlight"
	copyRequired(u, e, warn, "range", nil)
	copyRequired(u, e, warn, "color", props.SpaceSeparated)
	e.Set("innerconeangle", halfAngle(u, "innerang", "45"))
	e.Set("outerconeangle", halfAngle(u, "outerang", "90"))

	angles := "0 0 0"
	if v, ok := u.Property("direction"); ok {
		if dir, err := props.ParseVector(v); err == nil {
			if pitch, yaw, ok := DirectionToAngles(dir); ok {
				angles = FormatVector(pitch, yaw, 0)
			}
		} else {
			warn("spotlight %q direction: %v", u.Name, err)
		}
	}
	e.Set("angles", angles)
}

// halfAngle stores full cone angles as half angles.
func halfAngle(u *PointUnit, key, fallback string) string {
	v, ok := u.Property(key)
	if !ok {
		return fallback
	}
	f, err := props.ParseNumber(v)
	if err != nil {
		return fallback
	}
	return FormatNumber(f * 0.5)
}

// DirectionToAngles turns a look direction into pitch and yaw degrees. Yaw stays 0
// when the direction is nearly vertical.
func DirectionToAngles(dir [3]float64) (pitch, yaw float64, ok bool) {
	d := mgl64.Vec3(dir)
	l := d.Len()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return 0, 0, false
	}
	d = d.Mul(1 / l)
	pitch = mgl64.RadToDeg(math.Asin(mgl64.Clamp(-d.Y(), -1, 1)))

	d[1] = 0
	if d.LenSqr() > 0.01 {
		d = d.Normalize()
		yaw = mgl64.RadToDeg(math.Atan2(-d.X(), d.Z()))
	}
	return pitch, yaw, true
}

// FormatNumber prints property numbers without exponent or float noise.
func FormatNumber(v float64) string {
	v = math.Round(v*1e6) / 1e6
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func FormatVector(x, y, z float64) string {
	return fmt.Sprintf("%s %s %s", FormatNumber(x), FormatNumber(y), FormatNumber(z))
}
