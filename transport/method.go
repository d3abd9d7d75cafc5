package transport

// Method names a byte-stream transport by its protocol namespace. The set is
// open: unknown methods offered by a peer are carried through untouched and
// simply never selected.
type Method string

const (
	// MethodBytestreams is the SOCKS5 bytestreams transport.
	MethodBytestreams Method = "http://jabber.org/protocol/bytestreams"
	// MethodIBB is the in-band bytestreams transport.
	MethodIBB Method = "http://jabber.org/protocol/ibb"
)

// String returns a short name for known methods and the namespace otherwise.
func (m Method) String() string {
	switch m {
	case MethodBytestreams:
		return "bytestreams"
	case MethodIBB:
		return "ibb"
	default:
		return string(m)
	}
}

// Namespace returns the method's protocol namespace.
func (m Method) Namespace() string {
	return string(m)
}

// DefaultMethods returns the built-in methods in preference order.
func DefaultMethods() []Method {
	return []Method{MethodBytestreams, MethodIBB}
}

// Select returns the first method in enabled that also appears in offered.
// The local preference order decides, not the peer's offer order. It reports
// false when the lists share no method.
func Select(offered, enabled []Method) (Method, bool) {
	if len(offered) == 0 || len(enabled) == 0 {
		return "", false
	}

	peer := make(map[Method]bool, len(offered))
	for _, m := range offered {
		peer[m] = true
	}

	for _, m := range enabled {
		if peer[m] {
			return m, true
		}
	}
	return "", false
}

// Contains reports whether m is in methods.
func Contains(methods []Method, m Method) bool {
	for _, candidate := range methods {
		if candidate == m {
			return true
		}
	}
	return false
}

// FilterEnabled keeps the elements of methods whose flag in allowed is true,
// preserving order. Methods missing from allowed are kept.
func FilterEnabled(methods []Method, allowed map[Method]bool) []Method {
	out := make([]Method, 0, len(methods))
	for _, m := range methods {
		if ok, known := allowed[m]; known && !ok {
			continue
		}
		out = append(out, m)
	}
	return out
}

// MethodsFromStrings converts namespace strings to methods, dropping empties
// and duplicates while keeping the first occurrence order.
func MethodsFromStrings(values []string) []Method {
	out := make([]Method, 0, len(values))
	seen := make(map[Method]bool, len(values))
	for _, v := range values {
		m := Method(v)
		if v == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// Strings converts methods to their namespace strings.
func Strings(methods []Method) []string {
	out := make([]string, len(methods))
	for i, m := range methods {
		out[i] = string(m)
	}
	return out
}
