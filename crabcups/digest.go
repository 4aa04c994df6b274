package crabcups

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/sha3"

	"crabring/constants"
)

// Snapshot is the ring read clockwise from the current cup.
type Snapshot struct {
	Current uint32
	Cups    []uint32
}

// Snapshot copies the whole ring. Intended for small games and tracing.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{Current: g.Current(), Cups: g.cups.Values()}
}

// Digest fingerprints the cup order: SHA3-256 over every label as a 4-byte
// big-endian word, read clockwise starting at cup 1. Two games share a
// digest exactly when their circles are the same up to rotation, which makes
// it independent of where the current cup happens to be.
func (g *Game) Digest() (string, error) {
	one, ok := g.cups.Locate(constants.ScoreLabel)
	if !ok {
		return "", ErrNoScoreCup
	}
	d := sha3.New256()
	var word [4]byte
	h := one
	for i := 0; i < g.cups.Len(); i++ {
		binary.BigEndian.PutUint32(word[:], g.cups.Value(h))
		d.Write(word[:])
		h = g.cups.Next(h)
	}
	return hex.EncodeToString(d.Sum(nil)), nil
}
