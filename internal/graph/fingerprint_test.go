package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/lantern/internal/trace"
)

func TestFingerprint_Deterministic(t *testing.T) {
	records := []trace.NetworkRecord{
		docRec("1", "http://example.com/", 0),
		rec("2", "http://example.com/a.js", "1", 10),
	}
	g := Build(records, nil, "http://example.com/")

	first := g.Fingerprint()
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, g.Fingerprint(), "fingerprint must be stable across calls")
	}
}

func TestFingerprint_SensitiveToEdges(t *testing.T) {
	withEdge := []trace.NetworkRecord{
		docRec("1", "http://example.com/", 0),
		rec("2", "http://example.com/a.js", "1", 10),
	}
	withoutEdge := []trace.NetworkRecord{
		docRec("1", "http://example.com/", 0),
		rec("2", "http://example.com/a.js", "", 10),
	}

	a := Build(withEdge, nil, "http://example.com/")
	b := Build(withoutEdge, nil, "http://example.com/")
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestFingerprint_SensitiveToTransferSize(t *testing.T) {
	small := rec("2", "http://example.com/a.js", "1", 10)
	big := small
	big.TransferSize = small.TransferSize * 2

	a := Build([]trace.NetworkRecord{docRec("1", "http://example.com/", 0), small}, nil, "http://example.com/")
	b := Build([]trace.NetworkRecord{docRec("1", "http://example.com/", 0), big}, nil, "http://example.com/")
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestFingerprint_SubsetDiffersFromBase(t *testing.T) {
	records := []trace.NetworkRecord{
		docRec("1", "http://example.com/", 0),
		rec("2", "http://example.com/a.js", "1", 10),
		rec("3", "http://example.com/b.js", "1", 10),
	}
	g := Build(records, nil, "http://example.com/")
	sub := g.Subset(func(n Node) bool { return n.RequestID() != "3" })

	assert.NotEqual(t, g.Fingerprint(), sub.Fingerprint())
}
