// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package pk

import "hash"

// md2Size is the size of an MD2 checksum in bytes.
const md2Size = 16

// md2BlockSize is the block size of MD2 in bytes.
const md2BlockSize = 16

// md2S is the RFC 1319 substitution table built from the digits of pi.
var md2S = [256]byte{
	41, 46, 67, 201, 162, 216, 124, 1, 61, 54, 84, 161, 236, 240, 6, 19,
	98, 167, 5, 243, 192, 199, 115, 140, 152, 147, 43, 217, 188, 76, 130, 202,
	30, 155, 87, 60, 253, 212, 224, 22, 103, 66, 111, 24, 138, 23, 229, 18,
	190, 78, 196, 214, 218, 158, 222, 73, 160, 251, 245, 142, 187, 47, 238, 122,
	169, 104, 121, 145, 21, 178, 7, 63, 148, 194, 16, 137, 11, 34, 95, 33,
	128, 127, 93, 154, 90, 144, 50, 39, 53, 62, 204, 231, 191, 247, 151, 3,
	255, 25, 48, 179, 72, 165, 181, 209, 215, 94, 146, 42, 172, 86, 170, 198,
	79, 184, 56, 210, 150, 164, 125, 182, 118, 252, 107, 226, 156, 116, 4, 241,
	69, 157, 112, 89, 100, 113, 135, 32, 134, 91, 207, 101, 230, 45, 168, 2,
	27, 96, 37, 173, 174, 176, 185, 246, 28, 70, 97, 105, 52, 64, 126, 15,
	85, 71, 163, 35, 221, 81, 175, 58, 195, 92, 249, 206, 186, 197, 234, 38,
	44, 83, 13, 110, 133, 40, 132, 9, 211, 223, 205, 244, 65, 129, 77, 82,
	106, 220, 55, 200, 108, 193, 171, 250, 36, 225, 123, 8, 12, 189, 177, 74,
	120, 136, 149, 139, 227, 99, 232, 109, 233, 203, 213, 254, 59, 0, 29, 57,
	242, 239, 183, 14, 102, 88, 208, 228, 166, 119, 114, 248, 235, 117, 75, 10,
	49, 68, 80, 180, 143, 237, 31, 26, 219, 153, 141, 51, 159, 17, 131, 20,
}

// md2Digest is an RFC 1319 MD2 hash.Hash. It only exists to verify legacy
// md2WithRSAEncryption certificate signatures.
type md2Digest struct {
	state    [48]byte
	checksum [md2BlockSize]byte
	last     byte
	buf      [md2BlockSize]byte
	n        int
}

func newMD2() hash.Hash { return new(md2Digest) }

func (d *md2Digest) Size() int      { return md2Size }
func (d *md2Digest) BlockSize() int { return md2BlockSize }

func (d *md2Digest) Reset() { *d = md2Digest{} }

func (d *md2Digest) Write(p []byte) (int, error) {
	written := len(p)
	for len(p) > 0 {
		c := copy(d.buf[d.n:], p)
		d.n += c
		p = p[c:]
		if d.n == md2BlockSize {
			d.block(d.buf[:])
			d.n = 0
		}
	}
	return written, nil
}

func (d *md2Digest) Sum(in []byte) []byte {
	// Finalize a copy so the caller can keep writing.
	f := *d
	pad := byte(md2BlockSize - f.n)
	for i := f.n; i < md2BlockSize; i++ {
		f.buf[i] = pad
	}
	f.block(f.buf[:])
	checksum := f.checksum
	f.compress(checksum[:])
	return append(in, f.state[:md2Size]...)
}

// block updates the checksum with one message block and compresses it.
func (d *md2Digest) block(m []byte) {
	l := d.last
	for j := range md2BlockSize {
		d.checksum[j] ^= md2S[m[j]^l]
		l = d.checksum[j]
	}
	d.last = l
	d.compress(m)
}

func (d *md2Digest) compress(m []byte) {
	for j := range md2BlockSize {
		d.state[16+j] = m[j]
		d.state[32+j] = m[j] ^ d.state[j]
	}
	var t byte
	for j := range 18 {
		for k := range d.state {
			d.state[k] ^= md2S[t]
			t = d.state[k]
		}
		t += byte(j)
	}
}
