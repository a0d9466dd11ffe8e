package blowfish

func initCipher(c *Cipher) {
	copy(c.p[0:], p[0:])
	copy(c.s0[0:], s0[0:])
	copy(c.s1[0:], s1[0:])
	copy(c.s2[0:], s2[0:])
	copy(c.s3[0:], s3[0:])
}

// getNextWord returns the next big-endian word of the key, wrapping around to
// the start of the key as needed, and advances *pos.
func getNextWord(key []byte, pos *int) uint32 {
	var w uint32
	j := *pos
	for i := 0; i < 4; i++ {
		w = w<<8 | uint32(key[j])
		j++
		if j >= len(key) {
			j = 0
		}
	}
	*pos = j
	return w
}

// expandKey folds the key into the P-array and then replaces every P and S
// entry by repeatedly encrypting a running block under the partially built
// state. c must have been passed through initCipher.
func expandKey(key []byte, c *Cipher) {
	j := 0
	for i := 0; i < 18; i++ {
		c.p[i] ^= getNextWord(key, &j)
	}

	var l, r uint32
	for i := 0; i < 18; i += 2 {
		l, r = encryptBlock(l, r, c)
		c.p[i], c.p[i+1] = l, r
	}

	for _, s := range []*[256]uint32{&c.s0, &c.s1, &c.s2, &c.s3} {
		for i := 0; i < 256; i += 2 {
			l, r = encryptBlock(l, r, c)
			s[i], s[i+1] = l, r
		}
	}
}
