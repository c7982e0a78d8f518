package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Property struct {
	Key   string
	Value string
}

type Entity struct {
	ClassName  string
	Origin     mgl32.Vec3
	Properties []Property
}

// Set replaces the value of an existing key in place or appends a new property.
func (e *Entity) Set(key, value string) {
	for i := range e.Properties {
		if e.Properties[i].Key == key {
			e.Properties[i].Value = value
			return
		}
	}
	e.Properties = append(e.Properties, Property{Key: key, Value: value})
}

func (e *Entity) Get(key string) (string, bool) {
	for _, p := range e.Properties {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}
