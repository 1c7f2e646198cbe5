package blurhash

import (
	"bytes"
	"sync"
	"testing"
)

// ─── determinism: concurrent ─────────────────────────────────

func TestDeterminism_Concurrent(t *testing.T) {
	rgb := patternRGB(64, 48)
	reference, err := Encode(4, 3, 64, 48, rgb, 64*3)
	if err != nil {
		t.Fatal(err)
	}
	refPix, err := Decode(reference, 32, 24, 1, 4)
	if err != nil {
		t.Fatal(err)
	}

	const workers = 16
	const iterations = 20
	var wg sync.WaitGroup
	errCh := make(chan string, workers*iterations*2)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				hash, err := Encode(4, 3, 64, 48, rgb, 64*3)
				if err != nil || hash != reference {
					errCh <- "encode mismatch"
				}
				pix, err := Decode(reference, 32, 24, 1, 4)
				if err != nil || !bytes.Equal(pix, refPix) {
					errCh <- "decode mismatch"
				}
			}
		}()
	}
	wg.Wait()
	close(errCh)

	mismatches := 0
	for range errCh {
		mismatches++
	}
	if mismatches > 0 {
		t.Fatalf("determinism failed: %d mismatches across %d workers", mismatches, workers)
	}
}

// Each call must return its own string; an earlier result is never
// overwritten by a later call.
func TestEncode_ResultsAreIndependent(t *testing.T) {
	a, _ := Encode(1, 1, 4, 4, solidRGB(4, 4, 255, 0, 0), 12)
	b, _ := Encode(1, 1, 4, 4, solidRGB(4, 4, 0, 0, 255), 12)
	if a == b {
		t.Fatalf("distinct inputs produced %q twice", a)
	}
	if a != "00TI:j" {
		t.Errorf("first result changed to %q", a)
	}
}

// ─── benchmarks ──────────────────────────────────────────────

func BenchmarkEncode_32_4x3(b *testing.B) {
	rgb := patternRGB(32, 32)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Encode(4, 3, 32, 32, rgb, 32*3)
	}
}

func BenchmarkEncode_128_4x3(b *testing.B) {
	rgb := patternRGB(128, 128)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Encode(4, 3, 128, 128, rgb, 128*3)
	}
}

func BenchmarkEncode_128_9x9(b *testing.B) {
	rgb := patternRGB(128, 128)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Encode(9, 9, 128, 128, rgb, 128*3)
	}
}

func BenchmarkDecode_32(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Decode(sampleHash, 32, 32, 1, 4)
	}
}

func BenchmarkDecodeInto_256(b *testing.B) {
	dst := make([]byte, 256*256*4)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = DecodeInto(sampleHash, 256, 256, 1, 4, dst)
	}
}
