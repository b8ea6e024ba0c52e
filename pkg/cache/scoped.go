package cache

// ScopedKeyer wraps a Keyer with a prefix so that responses from different
// service instances or accounts never share entries.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "https://schema.example.com|")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ServiceKey generates a prefixed key for a service response.
func (k *ScopedKeyer) ServiceKey(endpoint string, body []byte) string {
	return k.prefix + k.inner.ServiceKey(endpoint, body)
}
