package observability

import "sync/atomic"

// slot holds the registered implementation of one hook interface. An empty
// slot yields the no-op.
type slot[H any] struct {
	p    atomic.Pointer[H]
	noop H
}

func (s *slot[H]) get() H {
	if h := s.p.Load(); h != nil {
		return *h
	}
	return s.noop
}

// set ignores a nil hook.
func (s *slot[H]) set(h H) {
	if any(h) != nil {
		s.p.Store(&h)
	}
}

var (
	codecSlot    = slot[CodecHooks]{noop: NoopCodecHooks{}}
	pipelineSlot = slot[PipelineHooks]{noop: NoopPipelineHooks{}}
	cacheSlot    = slot[CacheHooks]{noop: NoopCacheHooks{}}
	storeSlot    = slot[StoreHooks]{noop: NoopStoreHooks{}}
	httpSlot     = slot[HTTPHooks]{noop: NoopHTTPHooks{}}
)

// SetCodecHooks registers h for every later [Codec] call. Registering nil
// keeps the current hooks.
func SetCodecHooks(h CodecHooks)       { codecSlot.set(h) }
func SetPipelineHooks(h PipelineHooks) { pipelineSlot.set(h) }
func SetCacheHooks(h CacheHooks)       { cacheSlot.set(h) }
func SetStoreHooks(h StoreHooks)       { storeSlot.set(h) }
func SetHTTPHooks(h HTTPHooks)         { httpSlot.set(h) }

func Codec() CodecHooks       { return codecSlot.get() }
func Pipeline() PipelineHooks { return pipelineSlot.get() }
func Cache() CacheHooks       { return cacheSlot.get() }
func Store() StoreHooks       { return storeSlot.get() }
func HTTP() HTTPHooks         { return httpSlot.get() }

// Reset restores every hook to its no-op.
func Reset() {
	codecSlot.p.Store(nil)
	pipelineSlot.p.Store(nil)
	cacheSlot.p.Store(nil)
	storeSlot.p.Store(nil)
	httpSlot.p.Store(nil)
}
