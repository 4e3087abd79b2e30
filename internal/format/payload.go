package format

// Payload is the parsed JSON body of a webhook delivery: a loosely-typed
// tree of maps, slices and scalars. Accessors are defensive; a missing or
// mistyped field reports !ok instead of panicking.
type Payload map[string]any

// Sub descends through nested objects and returns the object at the path.
func (p Payload) Sub(path ...string) (Payload, bool) {
	cur := p
	for _, key := range path {
		next, ok := cur[key].(map[string]any)
		if !ok {
			return nil, false
		}
		cur = Payload(next)
	}
	return cur, true
}

// String returns the string at the path.
func (p Payload) String(path ...string) (string, bool) {
	parent, ok := p.Sub(path[:len(path)-1]...)
	if !ok {
		return "", false
	}
	s, ok := parent[path[len(path)-1]].(string)
	return s, ok
}

// Int returns the integer at the path. JSON numbers decode as float64.
func (p Payload) Int(path ...string) (int64, bool) {
	parent, ok := p.Sub(path[:len(path)-1]...)
	if !ok {
		return 0, false
	}
	f, ok := parent[path[len(path)-1]].(float64)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// Slice returns the array at the path.
func (p Payload) Slice(path ...string) ([]any, bool) {
	parent, ok := p.Sub(path[:len(path)-1]...)
	if !ok {
		return nil, false
	}
	s, ok := parent[path[len(path)-1]].([]any)
	return s, ok
}
