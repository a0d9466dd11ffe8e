package blowfish

import (
	"bytes"
	"crypto/cipher"
	"encoding/hex"
	"errors"
	"math/bits"
	"math/rand"
	"sync"
	"testing"

	"github.com/go-test/deep"
	"github.com/google/go-cmp/cmp"
	refblowfish "golang.org/x/crypto/blowfish"
)

var _ cipher.Block = (*Cipher)(nil)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

func TestCipher_KnownAnswers(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		plaintext  string
		ciphertext string
	}{
		{"zero key zero block", "0000000000000000", "0000000000000000", "4ef997456198dd78"},
		{"ones key ones block", "ffffffffffffffff", "ffffffffffffffff", "51866fd5b85ecb8a"},
		{"single bit block", "3000000000000000", "1000000000000001", "7d856f9a613063f2"},
		{"repeating ones", "1111111111111111", "1111111111111111", "2466dd878b963c9d"},
		{"counting key", "0123456789abcdef", "1111111111111111", "61f9c3802281b096"},
		{"counting block", "1111111111111111", "0123456789abcdef", "7d0cc630afda1ec7"},
		{"reversed counting key", "fedcba9876543210", "0123456789abcdef", "0aceab0fc6a0a28d"},
		{"original crate vector", "00112233445566778899aabbccddeeff", "6518a1f5c8d9b63c", "dac636861d70bd8a"},
		{"24 byte key", "f0e1d2c3b4a5968778695a4b3c2d1e0f0011223344556677", "fedcba9876543210", "05044b62fa52d080"},
		{"min length key", "f0e1d2c3", "fedcba9876543210", "be1e639408640f05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCipher(mustHex(t, tt.key))
			if err != nil {
				t.Fatalf("NewCipher() error = %v", err)
			}

			got, err := c.EncryptBlock(mustHex(t, tt.plaintext))
			if err != nil {
				t.Fatalf("EncryptBlock() error = %v", err)
			}
			if diff := cmp.Diff(tt.ciphertext, hex.EncodeToString(got)); diff != "" {
				t.Errorf("EncryptBlock() mismatch; diff:\n%s", diff)
			}

			back, err := c.DecryptBlock(got)
			if err != nil {
				t.Fatalf("DecryptBlock() error = %v", err)
			}
			if diff := cmp.Diff(tt.plaintext, hex.EncodeToString(back)); diff != "" {
				t.Errorf("DecryptBlock() mismatch; diff:\n%s", diff)
			}
		})
	}
}

func TestCipher_LR(t *testing.T) {
	c, err := NewCipher(mustHex(t, "00112233445566778899aabbccddeeff"))
	if err != nil {
		t.Fatal(err)
	}

	l, r := c.EncryptLR(0x6518a1f5, 0xc8d9b63c)
	if l != 0xdac63686 || r != 0x1d70bd8a {
		t.Errorf("EncryptLR() = %08x %08x, want dac63686 1d70bd8a", l, r)
	}
	l, r = c.DecryptLR(l, r)
	if l != 0x6518a1f5 || r != 0xc8d9b63c {
		t.Errorf("DecryptLR() = %08x %08x, want 6518a1f5 c8d9b63c", l, r)
	}
}

func TestNewCipher_KeyLength(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"empty", 0, true},
		{"one short of minimum", 3, true},
		{"minimum", 4, false},
		{"typical", 16, false},
		{"maximum", 56, false},
		{"one past maximum", 57, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCipher(make([]byte, tt.size))
			if !tt.wantErr {
				if err != nil || c == nil {
					t.Fatalf("NewCipher(%d bytes) = %v, %v; want a cipher", tt.size, c, err)
				}
				return
			}

			if !errors.Is(err, ErrInvalidKeyLength) {
				t.Fatalf("NewCipher(%d bytes) error = %v, want ErrInvalidKeyLength", tt.size, err)
			}
			var ks KeySizeError
			if !errors.As(err, &ks) || int(ks) != tt.size {
				t.Errorf("NewCipher(%d bytes) error = %#v, want KeySizeError(%d)", tt.size, err, tt.size)
			}
			if c != nil {
				t.Errorf("NewCipher(%d bytes) returned a cipher alongside an error", tt.size)
			}
		})
	}
}

func TestCipher_BlockLength(t *testing.T) {
	c, err := NewCipher([]byte("blockkey"))
	if err != nil {
		t.Fatal(err)
	}

	for _, size := range []int{0, 7, 9, 16} {
		in := make([]byte, size)
		if _, err := c.EncryptBlock(in); !errors.Is(err, ErrInvalidBlockLength) {
			t.Errorf("EncryptBlock(%d bytes) error = %v, want ErrInvalidBlockLength", size, err)
		}
		if _, err := c.DecryptBlock(in); !errors.Is(err, ErrInvalidBlockLength) {
			t.Errorf("DecryptBlock(%d bytes) error = %v, want ErrInvalidBlockLength", size, err)
		}
	}
	if errors.Is(BlockSizeError(7), ErrInvalidKeyLength) {
		t.Error("BlockSizeError should not match ErrInvalidKeyLength")
	}
}

func TestCipher_EncryptBlockDoesNotModifyInput(t *testing.T) {
	c, err := NewCipher([]byte("verysecretpasswd"))
	if err != nil {
		t.Fatal(err)
	}

	in := []byte("abcd1234")
	out, err := c.EncryptBlock(in)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(in, []byte("abcd1234")) {
		t.Errorf("EncryptBlock() modified its input: %x", in)
	}
	if want := mustHex(t, "05aeb2b54b4a3a74"); !bytes.Equal(out, want) {
		t.Errorf("EncryptBlock() = %x, want %x", out, want)
	}
}

func TestCipher_InPlace(t *testing.T) {
	c, err := NewCipher([]byte("in place"))
	if err != nil {
		t.Fatal(err)
	}

	buf := []byte("8 bytes!")
	want := make([]byte, BlockSize)
	c.Encrypt(want, buf)

	c.Encrypt(buf, buf)
	if !bytes.Equal(buf, want) {
		t.Fatalf("in-place Encrypt() = %x, want %x", buf, want)
	}
	c.Decrypt(buf, buf)
	if string(buf) != "8 bytes!" {
		t.Errorf("in-place Decrypt() = %q", buf)
	}
}

func TestCipher_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for keyLen := MinKeySize; keyLen <= MaxKeySize; keyLen++ {
		key := make([]byte, keyLen)
		rng.Read(key)
		c, err := NewCipher(key)
		if err != nil {
			t.Fatalf("NewCipher(%d bytes) error = %v", keyLen, err)
		}

		for i := 0; i < 32; i++ {
			block := make([]byte, BlockSize)
			rng.Read(block)

			ct, _ := c.EncryptBlock(block)
			pt, _ := c.DecryptBlock(ct)
			if !bytes.Equal(pt, block) {
				t.Fatalf("key %x: decrypt(encrypt(%x)) = %x", key, block, pt)
			}
		}
	}
}

// The reference implementation accepts the same keys for lengths 4..56, so
// every output must agree with it bit for bit.
func TestCipher_MatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for keyLen := MinKeySize; keyLen <= MaxKeySize; keyLen++ {
		key := make([]byte, keyLen)
		rng.Read(key)

		c, err := NewCipher(key)
		if err != nil {
			t.Fatal(err)
		}
		ref, err := refblowfish.NewCipher(key)
		if err != nil {
			t.Fatal(err)
		}

		src := make([]byte, BlockSize)
		got := make([]byte, BlockSize)
		want := make([]byte, BlockSize)
		for i := 0; i < 16; i++ {
			rng.Read(src)
			c.Encrypt(got, src)
			ref.Encrypt(want, src)
			if !bytes.Equal(got, want) {
				t.Fatalf("key %x block %x: Encrypt() = %x, reference = %x", key, src, got, want)
			}
			c.Decrypt(got, src)
			ref.Decrypt(want, src)
			if !bytes.Equal(got, want) {
				t.Fatalf("key %x block %x: Decrypt() = %x, reference = %x", key, src, got, want)
			}
		}
	}
}

func TestCipher_Avalanche(t *testing.T) {
	key := []byte("avalanch")
	block := []byte("plaintxt")

	base, err := NewCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := base.EncryptBlock(block)

	totalBits := 0
	for bit := 0; bit < len(key)*8; bit++ {
		flipped := append([]byte(nil), key...)
		flipped[bit/8] ^= 1 << (bit % 8)

		c, err := NewCipher(flipped)
		if err != nil {
			t.Fatal(err)
		}
		got, _ := c.EncryptBlock(block)
		if bytes.Equal(got, want) {
			t.Errorf("flipping key bit %d did not change the ciphertext", bit)
		}
		for i := range got {
			totalBits += bits.OnesCount8(got[i] ^ want[i])
		}

		if pt, _ := c.DecryptBlock(want); bytes.Equal(pt, block) {
			t.Errorf("key with bit %d flipped decrypted the original ciphertext", bit)
		}
	}

	// A good cipher changes half the output bits on average.
	avg := float64(totalBits) / float64(len(key)*8)
	if avg < 24 || avg > 40 {
		t.Errorf("average of %.2f output bits changed per key bit, want about 32", avg)
	}
}

func TestCipher_Deterministic(t *testing.T) {
	key := []byte("determinism")
	block := []byte("samebloc")

	first, err := NewCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := first.EncryptBlock(block)

	for i := 0; i < 8; i++ {
		c, err := NewCipher(key)
		if err != nil {
			t.Fatal(err)
		}
		for _, cc := range []*Cipher{first, c} {
			if got, _ := cc.EncryptBlock(block); !bytes.Equal(got, want) {
				t.Fatalf("EncryptBlock() = %x on attempt %d, want %x", got, i, want)
			}
		}
	}
}

func TestNewCipher_ScheduleIdempotent(t *testing.T) {
	key := []byte("schedule twice")
	a, _ := NewCipher(key)
	b, _ := NewCipher(key)

	if diff := cmp.Diff(a, b, cmp.AllowUnexported(Cipher{})); diff != "" {
		t.Errorf("two schedules of the same key differ; diff:\n%s", diff)
	}

	deep.CompareUnexportedFields = true
	defer func() { deep.CompareUnexportedFields = false }()
	other, _ := NewCipher([]byte("schedule thrice"))
	if diff := deep.Equal(a, other); len(diff) == 0 {
		t.Error("different keys produced identical schedules")
	}
}

func TestNewCipher_DoesNotMutateTables(t *testing.T) {
	wantP, wantS0, wantS3 := p, s0, s3

	if _, err := NewCipher([]byte("mutation check")); err != nil {
		t.Fatal(err)
	}
	if p != wantP || s0 != wantS0 || s3 != wantS3 {
		t.Error("NewCipher modified the constant tables")
	}
	if p[0] != 0x243f6a88 || s0[0] != 0xd1310ba6 || s3[255] != 0x3ac372e6 {
		t.Error("constant tables do not start with the digits of pi")
	}
}

func TestCipher_ConcurrentUse(t *testing.T) {
	c, err := NewCipher([]byte("shared between goroutines"))
	if err != nil {
		t.Fatal(err)
	}
	want, _ := c.EncryptBlock([]byte("concurnt"))

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				got, _ := c.EncryptBlock([]byte("concurnt"))
				if !bytes.Equal(got, want) {
					errs <- hex.EncodeToString(got)
					return
				}
				if pt, _ := c.DecryptBlock(got); string(pt) != "concurnt" {
					errs <- string(pt)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Errorf("concurrent call returned %s", e)
	}
}

// A Cipher composes with the modes in crypto/cipher like any other Block.
func TestCipher_CBCRoundTrip(t *testing.T) {
	c, err := NewCipher([]byte("mode of operation"))
	if err != nil {
		t.Fatal(err)
	}
	iv := []byte("initvect")
	plaintext := []byte("sixteen byte msgand 8 more")[:24]

	ct := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(c, iv).CryptBlocks(ct, plaintext)

	ref, _ := refblowfish.NewCipher([]byte("mode of operation"))
	want := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(ref, iv).CryptBlocks(want, plaintext)
	if !bytes.Equal(ct, want) {
		t.Fatalf("CBC ciphertext = %x, reference = %x", ct, want)
	}

	pt := make([]byte, len(ct))
	cipher.NewCBCDecrypter(c, iv).CryptBlocks(pt, ct)
	if !bytes.Equal(pt, plaintext) {
		t.Errorf("CBC round trip = %q, want %q", pt, plaintext)
	}
}
