package peermap

import "google.golang.org/protobuf/encoding/protowire"


//=========================================== Peer Map Snapshot Codec
//
// Lets a PeerMap travel inside wire.MonProbe.MonmapBytes so a probe
// reply can carry the peer's real epoch and member list, not just its
// bare name list (QuorumSet). Hand-rolled against protowire directly,
// matching the rest of the tree's wire encoding.


const (
	fSnapshotEpoch protowire.Number = iota + 1
	fSnapshotMember
)

// EncodeSnapshot serializes pm's epoch and member list. Each member is
// one bytes field containing "name\x00address".
func EncodeSnapshot(pm *PeerMap) []byte {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	var b []byte
	if pm.Epoch != 0 {
		b = protowire.AppendTag(b, fSnapshotEpoch, protowire.VarintType)
		b = protowire.AppendVarint(b, pm.Epoch)
	}
	for _, m := range pm.Members {
		entry := append([]byte(m.Name), 0)
		entry = append(entry, []byte(m.Address)...)
		b = protowire.AppendTag(b, fSnapshotMember, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b
}

// DecodeSnapshot is the inverse of EncodeSnapshot.
func DecodeSnapshot(b []byte) (uint64, []Member) {
	var epoch uint64
	var members []Member

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 { return epoch, members }
		b = b[n:]

		switch num {
		case fSnapshotEpoch:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 { return epoch, members }
			epoch = v
			b = b[n:]
		case fSnapshotMember:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 { return epoch, members }
			sep := -1
			for i, c := range v {
				if c == 0 { sep = i; break }
			}
			if sep >= 0 {
				members = append(members, Member{Name: string(v[:sep]), Address: string(v[sep+1:])})
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 { return epoch, members }
			b = b[n:]
		}
	}

	return epoch, members
}
