package session

import "google.golang.org/protobuf/encoding/protowire"


//=========================================== Capability Grant Codec
//
// A Forward carries the forwarding client's real capabilities in its
// opaque ClientCaps field (spec §4.3 handle_forward: "verify capability
// MONMAP:X"). EncodeCapabilityGrant/DecodeCapabilityGrant let the
// leader side check the caller's actual grant instead of trusting the
// forwarding peer.


const (
	fCapAllowAll protowire.Number = iota + 1
	fCapService
)

func EncodeCapabilityGrant(g CapabilityGrant) []byte {
	var b []byte
	if g.AllowAll {
		b = protowire.AppendTag(b, fCapAllowAll, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	for service, bits := range g.PerService {
		entry := append([]byte(service), byte(bits))
		b = protowire.AppendTag(b, fCapService, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b
}

func DecodeCapabilityGrant(b []byte) CapabilityGrant {
	g := CapabilityGrant{PerService: make(map[string]CapBits)}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 { return g }
		b = b[n:]

		switch num {
		case fCapAllowAll:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 { return g }
			g.AllowAll = v != 0
			b = b[n:]
		case fCapService:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 { return g }
			if len(v) >= 1 {
				service := string(v[:len(v)-1])
				g.PerService[service] = CapBits(v[len(v)-1])
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 { return g }
			b = b[n:]
		}
	}

	return g
}
