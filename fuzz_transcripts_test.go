package blake3_test

import (
	"bytes"
	"testing"

	"github.com/codahale/blake3"
	"github.com/codahale/blake3/internal/testdata"
	fuzz "github.com/trailofbits/go-fuzz-utils"
)

// FuzzWritePartitions generates a random message and a random partition of
// it into Write calls, and checks that the incremental digest and XOF
// prefix match a one-shot reference computed over the whole message at
// once: incrementality and chunk-boundary invariance under arbitrary split
// points, not just the fixed boundary sizes exercised by the table-driven
// tests.
func FuzzWritePartitions(f *testing.F) {
	drbg := testdata.New("blake3 write partitions")
	for i := 0; i < 10; i++ {
		f.Add(drbg.Data(4096))
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		tp, err := fuzz.NewTypeProvider(data)
		if err != nil {
			t.Skip(err)
		}

		message, err := tp.GetBytes()
		if err != nil {
			t.Skip(err)
		}
		if len(message) > 64<<10 {
			message = message[:64<<10]
		}

		h := blake3.New()
		remaining := message
		for len(remaining) > 0 {
			n, err := tp.GetUint16()
			if err != nil {
				t.Skip(err)
			}

			take := int(n)%256 + 1
			if take > len(remaining) {
				take = len(remaining)
			}
			h.Write(remaining[:take])
			remaining = remaining[take:]
		}

		want := blake3.Sum256(message)
		var got [32]byte
		copy(got[:], h.Sum(nil))
		if got != want {
			t.Fatalf("partitioned digest diverged from one-shot: got %x want %x", got, want)
		}

		wantXOF := make([]byte, 96)
		refHasher := blake3.New()
		refHasher.Write(message)
		_, _ = refHasher.XOF().Read(wantXOF)

		gotXOF := make([]byte, 96)
		_, _ = h.XOF().Read(gotXOF)
		if !bytes.Equal(gotXOF, wantXOF) {
			t.Fatalf("partitioned XOF diverged from one-shot: got %x want %x", gotXOF, wantXOF)
		}
	})
}

// FuzzModeSeparation generates a random message, key, and derive-key
// context and checks that plain, keyed, and derive-key digests never
// collide.
func FuzzModeSeparation(f *testing.F) {
	drbg := testdata.New("blake3 mode separation")
	for i := 0; i < 10; i++ {
		f.Add(drbg.Data(1024))
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		tp, err := fuzz.NewTypeProvider(data)
		if err != nil {
			t.Skip(err)
		}

		message, err := tp.GetBytes()
		if err != nil {
			t.Skip(err)
		}

		keyBytes, err := tp.GetBytes()
		if err != nil {
			t.Skip(err)
		}

		context, err := tp.GetString()
		if err != nil || context == "" {
			t.Skip(err)
		}

		var key [32]byte
		copy(key[:], keyBytes)

		plain := blake3.Sum256(message)
		keyed := blake3.SumKeyed(&key, message)

		h := blake3.NewDeriveKey(context)
		h.Write(message)
		var derived [32]byte
		copy(derived[:], h.Sum(nil))

		if plain == keyed {
			t.Fatalf("plain and keyed modes collided for key %x", key)
		}
		if plain == derived {
			t.Fatalf("plain and derive-key modes collided for context %q", context)
		}
		if keyed == derived {
			t.Fatalf("keyed and derive-key modes collided for key %x, context %q", key, context)
		}
	})
}
