package pstation

import "testing"

func BenchmarkRunFrame(b *testing.B) {
	m := New(loopBIOS())

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		m.RunFrame()
	}
}
