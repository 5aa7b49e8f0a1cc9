package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Domain prefix for content-addressed graph identity. The version suffix
// enables future algorithm migration without colliding cache keys.
const fingerprintDomain = "lantern/graph/v1"

// Fingerprint computes a content hash of the graph: node identities plus
// the full edge relation. Two graphs with the same fingerprint simulate
// identically, which is what makes (fingerprint, parameters) a sound
// memoization key.
//
// The encoding is canonical: node lines in id order, edge targets in
// ascending order, strings NFC-normalized. Field separators use 0x1f and
// the domain separator 0x00 so boundaries are never ambiguous.
func (g *Graph) Fingerprint() string {
	var sb strings.Builder
	for _, n := range g.nodes {
		sb.WriteString(fmt.Sprintf("%d\x1f%d\x1f", n.ID, n.Kind))
		switch n.Kind {
		case KindNetwork:
			sb.WriteString(norm.NFC.String(n.Record.RequestID))
			sb.WriteByte(0x1f)
			sb.WriteString(norm.NFC.String(n.Record.URL))
			sb.WriteString(fmt.Sprintf("\x1f%d", n.Record.TransferSize))
		case KindCPU:
			sb.WriteString(norm.NFC.String(n.Task.Event))
			sb.WriteString(fmt.Sprintf("\x1f%.3f\x1f%.3f", n.Task.StartTime, n.Task.Duration))
		}
		sb.WriteString("\x1fdeps:")
		deps := append([]NodeID(nil), g.deps[n.ID]...)
		sort.Slice(deps, func(i, j int) bool { return deps[i] < deps[j] })
		for _, dep := range deps {
			sb.WriteString(fmt.Sprintf("%d,", dep))
		}
		sb.WriteByte('\n')
	}

	h := sha256.New()
	h.Write([]byte(fingerprintDomain))
	h.Write([]byte{0x00}) // domain/data boundary
	h.Write([]byte(sb.String()))
	return hex.EncodeToString(h.Sum(nil))
}
