package rmq

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// naiveArgmin is the reference: the leftmost minimum position in d[i..j].
func naiveArgmin(d []int32, i, j int) int {
	pos := i
	for k := i + 1; k <= j; k++ {
		if d[k] < d[pos] {
			pos = k
		}
	}
	return pos
}

func TestBenderFarachColton(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := rapid.SliceOfN(rapid.Int32Range(0, 20), 2, 96).Draw(rt, "data")
		bfc := NewBenderFarachColton(d)
		for i := 0; i < len(d); i++ {
			for j := i; j < len(d); j++ {
				want := naiveArgmin(d, i, j)
				if got := bfc.Query(i, j); got != want {
					rt.Fatalf("Query(%d, %d)=%d; want %d (data %v)",
						i, j, got, want, d)
				}
			}
		}
	})
}

func TestRMQShort(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := rapid.SliceOfN(rapid.Int32Range(0, 10), 1, 256).Draw(rt, "data")
		q := New(d)
		for trial := 0; trial < 64; trial++ {
			i := rapid.IntRange(0, len(d)-1).Draw(rt, "i")
			j := rapid.IntRange(i, len(d)-1).Draw(rt, "j")
			want := naiveArgmin(d, i, j)
			if got := q.Query(i, j); got != want {
				rt.Fatalf("Query(%d, %d)=%d; want %d", i, j, got, want)
			}
		}
	})
}

func TestRMQLong(t *testing.T) {
	const n = 1 << 14
	rng := rand.New(rand.NewSource(7))
	d := make([]int32, n)
	for i := range d {
		d[i] = int32(rng.Intn(50))
	}
	q := New(d)

	// random intervals, biased towards spanning many blocks
	for trial := 0; trial < 4000; trial++ {
		i := rng.Intn(n)
		j := i + rng.Intn(n-i)
		require.Equal(t, naiveArgmin(d, i, j), q.Query(i, j),
			"Query(%d, %d)", i, j)
	}

	// block-boundary straddles around every block seam
	for b := blockSize; b < n; b += blockSize {
		for _, iv := range [][2]int{
			{b - 1, b},
			{b - blockSize, b + blockSize - 1},
			{b - 2*blockSize, b + 2*blockSize - 1},
			{0, b - 1},
			{b, n - 1},
		} {
			i, j := iv[0], iv[1]
			if i < 0 || j >= n || i > j {
				continue
			}
			require.Equal(t, naiveArgmin(d, i, j), q.Query(i, j),
				"Query(%d, %d)", i, j)
		}
	}
}

func TestRMQLeftmostTies(t *testing.T) {
	d := make([]int32, 1000)
	q := New(d)
	for _, iv := range [][2]int{
		{0, 0}, {0, 999}, {17, 17}, {17, 100}, {5, 800}, {300, 999},
	} {
		require.Equal(t, iv[0], q.Query(iv[0], iv[1]),
			"Query(%d, %d)", iv[0], iv[1])
	}

	bfc := NewBenderFarachColton(d[:512])
	for _, iv := range [][2]int{{0, 511}, {1, 2}, {100, 400}} {
		require.Equal(t, iv[0], bfc.Query(iv[0], iv[1]))
	}
}

func TestRMQConcurrentReaders(t *testing.T) {
	const n = 10000
	rng := rand.New(rand.NewSource(11))
	d := make([]int32, n)
	for i := range d {
		d[i] = int32(rng.Intn(1000))
	}
	q := New(d)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for trial := 0; trial < 2000; trial++ {
				i := rng.Intn(n)
				j := i + rng.Intn(n-i)
				if got, want := q.Query(i, j), naiveArgmin(d, i, j); got != want {
					t.Errorf("Query(%d, %d)=%d; want %d", i, j, got, want)
					return
				}
			}
		}(int64(g))
	}
	wg.Wait()
}
