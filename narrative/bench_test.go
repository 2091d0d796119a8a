package narrative

import (
	"context"
	"testing"
)

func BenchmarkBuildTemplateSummary(b *testing.B) {
	in := fullInputs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		BuildTemplateSummary(in)
	}
}

func BenchmarkInputsDigest(b *testing.B) {
	in := fullInputs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		InputsDigest(in)
	}
}

func BenchmarkToday_CacheHit(b *testing.B) {
	o := New(Config{Render: testRender})
	req := Request{CacheTTL: 120}
	o.Today(context.Background(), req)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		o.Today(context.Background(), req)
	}
}
