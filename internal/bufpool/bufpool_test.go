package bufpool

import (
	"runtime"
	"sync"
	"testing"
)

func TestGetPut_ExactSize(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"256B", 256},
		{"1K", 1024},
		{"4K", 4096},
		{"16K", 16384},
		{"64K", 65536},
		{"256K", 262144},
		{"500B", 500},
		{"3000B", 3000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Get(tt.size)
			if len(b) != tt.size {
				t.Errorf("Get(%d): len = %d, want %d", tt.size, len(b), tt.size)
			}
			Put(b)
		})
	}
}

func TestGetPut_LargeCapacity(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		minCap int
	}{
		{"bucket0_exact", 256, 256},
		{"bucket0_small", 100, 256},
		{"bucket1_exact", 1024, 1024},
		{"bucket1_mid", 512, 1024},
		{"bucket2_exact", 4096, 4096},
		{"bucket3_exact", 16384, 16384},
		{"bucket4_exact", 65536, 65536},
		{"bucket5_exact", 262144, 262144},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Get(tt.size)
			if cap(b) < tt.minCap {
				t.Errorf("Get(%d): cap = %d, want >= %d", tt.size, cap(b), tt.minCap)
			}
			Put(b)
		})
	}
}

func TestGet_LargeSize(t *testing.T) {
	// A request larger than the largest bucket (twice a 4-channel row at
	// the format's maximum width) must still round-trip through Get/Put by
	// falling back to a fresh allocation.
	largeSize := 2 * Size256K
	b := Get(largeSize)
	if len(b) != largeSize {
		t.Errorf("Get(%d): len = %d, want %d", largeSize, len(b), largeSize)
	}
	if cap(b) < largeSize {
		t.Errorf("Get(%d): cap = %d, want >= %d", largeSize, cap(b), largeSize)
	}
	Put(b)
}

func TestPut_SmallSlice(t *testing.T) {
	small := make([]byte, 100)
	Put(small) // Should not panic.

	tiny := make([]byte, 0, 10)
	Put(tiny) // Should not panic.

	b := Get(256)
	if len(b) != 256 {
		t.Errorf("Get(256) after small Put: len = %d, want 256", len(b))
	}
	Put(b)
}

func TestPut_NilSlice(t *testing.T) {
	Put(nil)
}

func TestGet_ZeroSize(t *testing.T) {
	b := Get(0)
	if len(b) != 0 {
		t.Errorf("Get(0): len = %d, want 0", len(b))
	}
	Put(b)
}

func TestBucketIndex(t *testing.T) {
	tests := []struct {
		name       string
		size       int
		wantBucket int
	}{
		{"1->bucket0", 1, 0},
		{"256->bucket0", 256, 0},
		{"257->bucket1", 257, 1},
		{"1024->bucket1", 1024, 1},
		{"1025->bucket2", 1025, 2},
		{"4096->bucket2", 4096, 2},
		{"4097->bucket3", 4097, 3},
		{"16384->bucket3", 16384, 3},
		{"16385->bucket4", 16385, 4},
		{"65536->bucket4", 65536, 4},
		{"65537->bucket5", 65537, 5},
		{"262144->bucket5", 262144, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := bucketIndex(tt.size)
			if idx != tt.wantBucket {
				t.Errorf("bucketIndex(%d) = %d, want %d", tt.size, idx, tt.wantBucket)
			}
		})
	}
}

func TestReuse(t *testing.T) {
	const size = 4096
	b := Get(size)
	b[0] = 0xAB
	b[size-1] = 0xAB
	Put(b)

	runtime.GC()

	b2 := Get(size)
	if len(b2) != size {
		t.Fatalf("Get(%d) after reuse: len = %d", size, len(b2))
	}
	Put(b2)
}

func TestConcurrency(t *testing.T) {
	const goroutines = 16
	const iterations = 50

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				for _, size := range []int{128, 512, 2048, 8192, 32768, 131072} {
					b := Get(size)
					if len(b) != size {
						t.Errorf("concurrent Get(%d): len = %d", size, len(b))
						return
					}
					for j := range b {
						b[j] = byte(j)
					}
					Put(b)
				}
			}
		}()
	}

	wg.Wait()
}

func BenchmarkGet(b *testing.B) {
	benchmarks := []struct {
		name string
		size int
	}{
		{"256B", 256},
		{"4K", 4096},
		{"64K", 65536},
	}
	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				buf := Get(bm.size)
				Put(buf)
			}
		})
	}
}
