package blowfish

import (
	"errors"
	"strconv"
)

var (
	// ErrInvalidKeyLength matches any KeySizeError via errors.Is.
	ErrInvalidKeyLength = errors.New("blowfish: invalid key length")
	// ErrInvalidBlockLength matches any BlockSizeError via errors.Is.
	ErrInvalidBlockLength = errors.New("blowfish: invalid block length")
)

// KeySizeError is returned by NewCipher for keys outside [MinKeySize, MaxKeySize].
type KeySizeError int

func (k KeySizeError) Error() string {
	return "blowfish: invalid key size " + strconv.Itoa(int(k))
}

func (k KeySizeError) Is(target error) bool {
	return target == ErrInvalidKeyLength
}

// BlockSizeError is returned when a block operation is handed anything but
// exactly BlockSize bytes.
type BlockSizeError int

func (b BlockSizeError) Error() string {
	return "blowfish: invalid block size " + strconv.Itoa(int(b))
}

func (b BlockSizeError) Is(target error) bool {
	return target == ErrInvalidBlockLength
}
