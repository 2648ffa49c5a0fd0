package ktx2

import "testing"

// benchLayers builds n full-chain 1024x1024 layers used by merge benchmarks.
func benchLayers(n int) []*Container {
	layers := make([]*Container, n)
	for i := range layers {
		layers[i] = testLayer(1024, 1024, 11, byte(i), 0)
	}

	return layers
}

// benchLayerBytes computes total level bytes for throughput reporting.
func benchLayerBytes(layers []*Container) int64 {
	var total int64
	for _, c := range layers {
		for _, lvl := range c.Levels {
			total += int64(len(lvl.Data))
		}
	}

	return total
}

func BenchmarkMergeArrayNone(b *testing.B) {
	layers := benchLayers(8)
	opts := quietOptions()

	b.ReportAllocs()
	b.SetBytes(benchLayerBytes(layers))
	b.ResetTimer()

	for b.Loop() {
		if _, err := MergeArray(layers, opts); err != nil {
			b.Fatalf("merge: %v", err)
		}
	}
}

func BenchmarkMergeArrayZstd(b *testing.B) {
	layers := benchLayers(8)
	for i, c := range layers {
		packed, err := Supercompress(c, 3)
		if err != nil {
			b.Fatalf("prepare layer %d: %v", i, err)
		}
		layers[i] = packed
	}
	opts := quietOptions()

	b.ReportAllocs()
	b.SetBytes(benchLayerBytes(layers))
	b.ResetTimer()

	for b.Loop() {
		if _, err := MergeArray(layers, opts); err != nil {
			b.Fatalf("merge: %v", err)
		}
	}
}

func BenchmarkEncodeArray(b *testing.B) {
	merged, err := MergeArray(benchLayers(4), quietOptions())
	if err != nil {
		b.Fatalf("prepare: %v", err)
	}

	b.ReportAllocs()
	b.SetBytes(benchLayerBytes([]*Container{merged}))
	b.ResetTimer()

	for b.Loop() {
		if _, err := Encode(merged); err != nil {
			b.Fatalf("encode: %v", err)
		}
	}
}
