package providers

// BuildHeaders merges header sets in increasing precedence order (later
// arguments win on key collision), matching §4.2's precedence: user-
// supplied default headers < authentication header < backend-specific
// headers < content-type/user-agent.
func BuildHeaders(layers ...map[string]string) map[string]string {
	out := map[string]string{}
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}
