package framework

import (
	"fmt"
	"slices"
	"strings"
)

// DockerImage identifies the container image that packages a framework.
type DockerImage struct {
	Author string `json:"author" bson:"author"`
	Image  string `json:"image" bson:"image"`
	Tag    string `json:"tag" bson:"tag"`
}

// Ref formats the image coordinates as a docker reference (author/image:tag).
func (i DockerImage) Ref() string {
	return fmt.Sprintf("%s/%s:%s", i.Author, i.Image, i.Tag)
}

// Definition is a fully resolved framework definition. All inheritance has
// been applied and all defaults filled in; Version, Module, and the docker
// image coordinates are always non-empty.
//
// Definitions returned by a [Catalog] are deep copies and can be modified
// freely without affecting the catalog.
type Definition struct {
	Name        string         `json:"name" bson:"name"`
	Version     string         `json:"version" bson:"version"`
	Module      string         `json:"module" bson:"module"`
	SetupArgs   []string       `json:"setup_args" bson:"setup_args"`
	SetupCmd    string         `json:"setup_cmd,omitempty" bson:"setup_cmd,omitempty"`
	Params      map[string]any `json:"params" bson:"params"`
	Project     string         `json:"project,omitempty" bson:"project,omitempty"`
	DockerImage DockerImage    `json:"docker_image" bson:"docker_image"`
}

// Clone returns a deep copy of the definition.
func (d Definition) Clone() Definition {
	clone := d
	clone.SetupArgs = slices.Clone(d.SetupArgs)
	clone.Params = cloneParams(d.Params)
	return clone
}

func cloneParams(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	clone := make(map[string]any, len(params))
	for k, v := range params {
		clone[k] = cloneValue(v)
	}
	return clone
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneParams(val)
	case []any:
		clone := make([]any, len(val))
		for i, item := range val {
			clone[i] = cloneValue(item)
		}
		return clone
	default:
		return val
	}
}

// expandPlaceholders substitutes {key} markers in a setup command with the
// directories supplied by the caller. Unknown markers are left untouched.
func expandPlaceholders(cmd string, dirs map[string]string) string {
	pairs := make([]string, 0, len(dirs)*2)
	for key, dir := range dirs {
		pairs = append(pairs, "{"+key+"}", dir)
	}
	return strings.NewReplacer(pairs...).Replace(cmd)
}
