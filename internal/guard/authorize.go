package guard

import "strings"

// Authorizer holds per-operation allow-lists of operator identities.
type Authorizer struct {
	perOperation map[string]map[string]struct{}
	defaults     map[string]struct{}
}

// NewAuthorizer creates an Authorizer. Operations without their own entry in
// perOperation fall back to defaults. An empty list allows nobody.
func NewAuthorizer(defaults []string, perOperation map[string][]string) *Authorizer {
	a := &Authorizer{
		perOperation: make(map[string]map[string]struct{}, len(perOperation)),
		defaults:     toSet(defaults),
	}
	for op, actors := range perOperation {
		a.perOperation[op] = toSet(actors)
	}
	return a
}

// Allowed reports whether actor may run operation.
func (a *Authorizer) Allowed(operation, actor string) bool {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return false
	}
	set, ok := a.perOperation[operation]
	if !ok {
		set = a.defaults
	}
	_, allowed := set[actor]
	return allowed
}

func toSet(actors []string) map[string]struct{} {
	set := make(map[string]struct{}, len(actors))
	for _, actor := range actors {
		actor = strings.TrimSpace(actor)
		if actor != "" {
			set[actor] = struct{}{}
		}
	}
	return set
}
