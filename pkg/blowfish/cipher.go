// Package blowfish implements Bruce Schneier's Blowfish block cipher: a 16-round
// Feistel network over 64-bit blocks with a 32 to 448 bit key.
//
// Blowfish is provided as a primitive only. Encrypting more than one block by
// calling Encrypt on successive blocks is not safe; wrap the Cipher in a mode
// from crypto/cipher instead.
package blowfish

import "encoding/binary"

// The Blowfish block size in bytes.
const BlockSize = 8

// Bounds on the length of a Blowfish key, in bytes.
const (
	MinKeySize = 4
	MaxKeySize = 56
)

// A Cipher is an instance of Blowfish encryption using a particular key. A
// Cipher is never modified after NewCipher returns, so it is safe for
// concurrent use by multiple goroutines.
type Cipher struct {
	p              [18]uint32
	s0, s1, s2, s3 [256]uint32
}

// NewCipher creates and returns a Cipher. The key argument should be the
// Blowfish key, from 4 to 56 bytes.
func NewCipher(key []byte) (*Cipher, error) {
	if k := len(key); k < MinKeySize || k > MaxKeySize {
		return nil, KeySizeError(k)
	}

	var result Cipher
	initCipher(&result)
	expandKey(key, &result)
	return &result, nil
}

// BlockSize returns the Blowfish block size, 8 bytes.
// It is necessary to satisfy the Block interface in the
// package "crypto/cipher".
func (c *Cipher) BlockSize() int { return BlockSize }

// Encrypt encrypts the first block of src into dst. Like the block ciphers in
// the standard library it panics if either buffer is shorter than a block.
// Dst and src may point at the same memory.
func (c *Cipher) Encrypt(dst, src []byte) {
	l := binary.BigEndian.Uint32(src[0:4])
	r := binary.BigEndian.Uint32(src[4:8])
	l, r = encryptBlock(l, r, c)
	binary.BigEndian.PutUint32(dst[0:4], l)
	binary.BigEndian.PutUint32(dst[4:8], r)
}

// Decrypt decrypts the first block of src into dst.
func (c *Cipher) Decrypt(dst, src []byte) {
	l := binary.BigEndian.Uint32(src[0:4])
	r := binary.BigEndian.Uint32(src[4:8])
	l, r = decryptBlock(l, r, c)
	binary.BigEndian.PutUint32(dst[0:4], l)
	binary.BigEndian.PutUint32(dst[4:8], r)
}

// EncryptBlock returns the encryption of an 8-byte block. The input is left
// untouched and any other length is rejected with a BlockSizeError.
func (c *Cipher) EncryptBlock(block []byte) ([]byte, error) {
	if len(block) != BlockSize {
		return nil, BlockSizeError(len(block))
	}
	out := make([]byte, BlockSize)
	c.Encrypt(out, block)
	return out, nil
}

// DecryptBlock returns the decryption of an 8-byte block.
func (c *Cipher) DecryptBlock(block []byte) ([]byte, error) {
	if len(block) != BlockSize {
		return nil, BlockSizeError(len(block))
	}
	out := make([]byte, BlockSize)
	c.Decrypt(out, block)
	return out, nil
}

// EncryptLR encrypts a block already split into its left and right halves.
func (c *Cipher) EncryptLR(l, r uint32) (uint32, uint32) {
	return encryptBlock(l, r, c)
}

// DecryptLR is the inverse of EncryptLR.
func (c *Cipher) DecryptLR(l, r uint32) (uint32, uint32) {
	return decryptBlock(l, r, c)
}
