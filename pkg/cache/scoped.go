package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one backend without colliding, e.g. one Redis database for staging and
// production:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "mutuals:staging:")
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

// ModelKey generates a prefixed model key.
func (k *ScopedKeyer) ModelKey(snapshotHash string, opts ModelKeyOpts) string {
	return k.prefix + k.inner.ModelKey(snapshotHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(modelHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(modelHash, opts)
}
