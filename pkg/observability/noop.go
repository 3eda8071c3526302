package observability

import (
	"context"
	"time"
)

type (
	NoopCodecHooks    struct{}
	NoopPipelineHooks struct{}
	NoopCacheHooks    struct{}
	NoopStoreHooks    struct{}
	NoopHTTPHooks     struct{}
)

func (NoopCodecHooks) OnEncodeStart(uint8, int)            {}
func (NoopCodecHooks) OnEncodeComplete(uint8, int, error) {}
func (NoopCodecHooks) OnDecodeStart(int)                  {}
func (NoopCodecHooks) OnDecodeComplete(uint8, int, error) {}

func (NoopPipelineHooks) OnConvertStart(context.Context, string, uint8) {}
func (NoopPipelineHooks) OnConvertComplete(context.Context, string, uint8, time.Duration, error) {
}
func (NoopPipelineHooks) OnRenderStart(context.Context, string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, time.Duration, error) {}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

func (NoopStoreHooks) OnStorePut(context.Context, string, int, error)  {}
func (NoopStoreHooks) OnStoreGet(context.Context, string, bool, error) {}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
