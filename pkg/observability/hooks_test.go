package observability

import (
	"context"
	"sync"
	"testing"
	"time"
)

// counter records how many events each hook saw.
type counter struct {
	NoopCodecHooks
	NoopPipelineHooks
	NoopCacheHooks
	NoopStoreHooks
	NoopHTTPHooks

	mu     sync.Mutex
	events map[string]int
}

func (c *counter) add(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.events == nil {
		c.events = map[string]int{}
	}
	c.events[name]++
}

func (c *counter) OnEncodeComplete(uint8, int, error) { c.add("encode") }
func (c *counter) OnConvertComplete(context.Context, string, uint8, time.Duration, error) {
	c.add("convert")
}
func (c *counter) OnCacheHit(context.Context, string)                 { c.add("hit") }
func (c *counter) OnStoreGet(context.Context, string, bool, error) { c.add("get") }
func (c *counter) OnResponse(context.Context, string, string, int, time.Duration) {
	c.add("response")
}

func emitAll(ctx context.Context) {
	Codec().OnEncodeStart(6, 100)
	Codec().OnEncodeComplete(6, 2048, nil)
	Pipeline().OnConvertComplete(ctx, "tower.bin", 6, time.Second, nil)
	Cache().OnCacheHit(ctx, "convert")
	Store().OnStoreGet(ctx, "file", true, nil)
	HTTP().OnResponse(ctx, "POST", "/v1/decode", 200, time.Millisecond)
}

func TestDefaultsAreNoops(t *testing.T) {
	Reset()
	if _, ok := Codec().(NoopCodecHooks); !ok {
		t.Errorf("Codec() = %T", Codec())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T", HTTP())
	}
	emitAll(context.Background())
}

func TestRegisteredHooksReceiveEvents(t *testing.T) {
	t.Cleanup(Reset)
	c := &counter{}
	SetCodecHooks(c)
	SetPipelineHooks(c)
	SetCacheHooks(c)
	SetStoreHooks(c)
	SetHTTPHooks(c)

	emitAll(context.Background())
	emitAll(context.Background())

	for _, name := range []string{"encode", "convert", "hit", "get", "response"} {
		if c.events[name] != 2 {
			t.Errorf("%s: %d events, want 2", name, c.events[name])
		}
	}

	Reset()
	emitAll(context.Background())
	if c.events["encode"] != 2 {
		t.Error("hooks still called after Reset")
	}
}

func TestSetNilKeepsHooks(t *testing.T) {
	t.Cleanup(Reset)
	c := &counter{}
	SetStoreHooks(c)
	SetStoreHooks(nil)
	if Store() != StoreHooks(c) {
		t.Errorf("Store() = %T after SetStoreHooks(nil)", Store())
	}
}
