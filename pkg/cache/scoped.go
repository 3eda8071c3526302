package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one redis instance without seeing each other's entries.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) ConvertKey(inputHash string, opts ConvertKeyOpts) string {
	return k.prefix + k.inner.ConvertKey(inputHash, opts)
}

func (k *ScopedKeyer) GraphKey(structureHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(structureHash, opts)
}

func (k *ScopedKeyer) InspectKey(inputHash string, types string) string {
	return k.prefix + k.inner.InspectKey(inputHash, types)
}
