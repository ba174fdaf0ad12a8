package configstore

import "github.com/Beka01247/shopbuilder/internal/domain"

// Merge applies partial on top of base at the top level and returns a new tree.
// Objects on both sides are shallow-merged key by key; everything else,
// arrays included, is replaced by the incoming value.
func Merge(base domain.Configuration, partial domain.PartialConfiguration) domain.Configuration {
	out := base.Clone()
	if out == nil {
		out = domain.Configuration{}
	}

	for key, incoming := range partial {
		incomingObj, incomingIsObj := incoming.(map[string]any)
		currentObj, currentIsObj := out[key].(map[string]any)
		if incomingIsObj && currentIsObj {
			out[key] = mergeObject(currentObj, incomingObj)
			continue
		}
		out[key] = domain.CloneValue(incoming)
	}

	return out
}

func mergeObject(current, incoming map[string]any) map[string]any {
	merged := make(map[string]any, len(current)+len(incoming))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range incoming {
		merged[k] = domain.CloneValue(v)
	}
	return merged
}
