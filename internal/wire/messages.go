package wire

import "google.golang.org/protobuf/encoding/protowire"


//=========================================== Message Marshal/Unmarshal


const (
	fProbeFsid protowire.Number = iota + 1
	fProbeOp
	fProbeName
	fProbeHasEverJoined
	fProbeQuorumSet
	fProbeMonmapBytes
	fProbeFirst
	fProbeLast
)

func (m *MonProbe) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, fProbeFsid, m.Fsid)
	b = appendVarint(b, fProbeOp, uint64(m.Op))
	b = appendString(b, fProbeName, m.Name)
	b = appendBool(b, fProbeHasEverJoined, m.HasEverJoined)
	b = appendStringList(b, fProbeQuorumSet, m.QuorumSet)
	b = appendBytesField(b, fProbeMonmapBytes, m.MonmapBytes)
	b = appendVarint(b, fProbeFirst, uint64(m.PaxosFirst))
	b = appendVarint(b, fProbeLast, uint64(m.PaxosLast))
	return b, nil
}

func (m *MonProbe) Unmarshal(b []byte) error {
	*m = MonProbe{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fProbeFsid:
			s, n, err := consumeString(b)
			if err != nil { return -1, err }
			m.Fsid = s
			return n, nil
		case fProbeOp:
			v, n, err := consumeVarint(b)
			if err != nil { return -1, err }
			m.Op = ProbeOp(v)
			return n, nil
		case fProbeName:
			s, n, err := consumeString(b)
			if err != nil { return -1, err }
			m.Name = s
			return n, nil
		case fProbeHasEverJoined:
			v, n, err := consumeVarint(b)
			if err != nil { return -1, err }
			m.HasEverJoined = v != 0
			return n, nil
		case fProbeQuorumSet:
			s, n, err := consumeString(b)
			if err != nil { return -1, err }
			m.QuorumSet = append(m.QuorumSet, s)
			return n, nil
		case fProbeMonmapBytes:
			v, n, err := consumeBytesField(b)
			if err != nil { return -1, err }
			m.MonmapBytes = v
			return n, nil
		case fProbeFirst:
			v, n, err := consumeVarint(b)
			if err != nil { return -1, err }
			m.PaxosFirst = int64(v)
			return n, nil
		case fProbeLast:
			v, n, err := consumeVarint(b)
			if err != nil { return -1, err }
			m.PaxosLast = int64(v)
			return n, nil
		default:
			return -1, nil
		}
	})
}

const (
	fSyncOp protowire.Number = iota + 1
	fSyncFlags
	fSyncVersion
	fSyncChunkBytes
	fSyncFirstKeyPrefix
	fSyncFirstKeyKey
	fSyncLastKeyPrefix
	fSyncLastKeyKey
	fSyncCRC
	fSyncReplyTo
)

func (m *MonSyncMsg) Marshal() ([]byte, error) {
	var b []byte
	b = appendVarint(b, fSyncOp, uint64(m.Op))
	b = appendVarint(b, fSyncFlags, uint64(m.Flags))
	b = appendVarint(b, fSyncVersion, uint64(m.Version))
	b = appendBytesField(b, fSyncChunkBytes, m.ChunkBytes)
	b = appendString(b, fSyncFirstKeyPrefix, m.FirstKey.Prefix)
	b = appendString(b, fSyncFirstKeyKey, m.FirstKey.Key)
	b = appendString(b, fSyncLastKeyPrefix, m.LastKey.Prefix)
	b = appendString(b, fSyncLastKeyKey, m.LastKey.Key)
	if m.HasCRC { b = appendVarint(b, fSyncCRC, uint64(m.CRC)) }
	if m.HasReplyTo { b = appendString(b, fSyncReplyTo, m.ReplyTo) }
	return b, nil
}

func (m *MonSyncMsg) Unmarshal(b []byte) error {
	*m = MonSyncMsg{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fSyncOp:
			v, n, err := consumeVarint(b)
			if err != nil { return -1, err }
			m.Op = SyncOp(v)
			return n, nil
		case fSyncFlags:
			v, n, err := consumeVarint(b)
			if err != nil { return -1, err }
			m.Flags = SyncFlag(v)
			return n, nil
		case fSyncVersion:
			v, n, err := consumeVarint(b)
			if err != nil { return -1, err }
			m.Version = int64(v)
			return n, nil
		case fSyncChunkBytes:
			v, n, err := consumeBytesField(b)
			if err != nil { return -1, err }
			m.ChunkBytes = v
			return n, nil
		case fSyncFirstKeyPrefix:
			s, n, err := consumeString(b)
			if err != nil { return -1, err }
			m.FirstKey.Prefix = s
			return n, nil
		case fSyncFirstKeyKey:
			s, n, err := consumeString(b)
			if err != nil { return -1, err }
			m.FirstKey.Key = s
			return n, nil
		case fSyncLastKeyPrefix:
			s, n, err := consumeString(b)
			if err != nil { return -1, err }
			m.LastKey.Prefix = s
			return n, nil
		case fSyncLastKeyKey:
			s, n, err := consumeString(b)
			if err != nil { return -1, err }
			m.LastKey.Key = s
			return n, nil
		case fSyncCRC:
			v, n, err := consumeVarint(b)
			if err != nil { return -1, err }
			m.CRC = uint32(v)
			m.HasCRC = true
			return n, nil
		case fSyncReplyTo:
			s, n, err := consumeString(b)
			if err != nil { return -1, err }
			m.ReplyTo = s
			m.HasReplyTo = true
			return n, nil
		default:
			return -1, nil
		}
	})
}

const (
	fJoinFsid protowire.Number = iota + 1
	fJoinName
	fJoinAddress
)

func (m *MonJoin) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, fJoinFsid, m.Fsid)
	b = appendString(b, fJoinName, m.Name)
	b = appendString(b, fJoinAddress, m.Address)
	return b, nil
}

func (m *MonJoin) Unmarshal(b []byte) error {
	*m = MonJoin{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fJoinFsid:
			s, n, err := consumeString(b)
			if err != nil { return -1, err }
			m.Fsid = s
			return n, nil
		case fJoinName:
			s, n, err := consumeString(b)
			if err != nil { return -1, err }
			m.Name = s
			return n, nil
		case fJoinAddress:
			s, n, err := consumeString(b)
			if err != nil { return -1, err }
			m.Address = s
			return n, nil
		default:
			return -1, nil
		}
	})
}

const (
	fFwdTid protowire.Number = iota + 1
	fFwdInner
	fFwdCaps
	fFwdAddress
)

func (m *Forward) Marshal() ([]byte, error) {
	var b []byte
	b = appendVarint(b, fFwdTid, uint64(m.Tid))
	b = appendBytesField(b, fFwdInner, m.InnerMessageBytes)
	b = appendBytesField(b, fFwdCaps, m.ClientCaps)
	b = appendString(b, fFwdAddress, m.ClientAddress)
	return b, nil
}

func (m *Forward) Unmarshal(b []byte) error {
	*m = Forward{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fFwdTid:
			v, n, err := consumeVarint(b)
			if err != nil { return -1, err }
			m.Tid = int64(v)
			return n, nil
		case fFwdInner:
			v, n, err := consumeBytesField(b)
			if err != nil { return -1, err }
			m.InnerMessageBytes = v
			return n, nil
		case fFwdCaps:
			v, n, err := consumeBytesField(b)
			if err != nil { return -1, err }
			m.ClientCaps = v
			return n, nil
		case fFwdAddress:
			s, n, err := consumeString(b)
			if err != nil { return -1, err }
			m.ClientAddress = s
			return n, nil
		default:
			return -1, nil
		}
	})
}

const (
	fRouteTid protowire.Number = iota + 1
	fRouteDest
	fRouteInner
)

func (m *Route) Marshal() ([]byte, error) {
	var b []byte
	if m.HasTid { b = appendVarint(b, fRouteTid, uint64(m.Tid)) }
	b = appendString(b, fRouteDest, m.Dest)
	b = appendBytesField(b, fRouteInner, m.InnerMessageBytes)
	return b, nil
}

func (m *Route) Unmarshal(b []byte) error {
	*m = Route{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fRouteTid:
			v, n, err := consumeVarint(b)
			if err != nil { return -1, err }
			m.Tid = int64(v)
			m.HasTid = true
			return n, nil
		case fRouteDest:
			s, n, err := consumeString(b)
			if err != nil { return -1, err }
			m.Dest = s
			return n, nil
		case fRouteInner:
			v, n, err := consumeBytesField(b)
			if err != nil { return -1, err }
			m.InnerMessageBytes = v
			return n, nil
		default:
			return -1, nil
		}
	})
}

const (
	fEnvKind protowire.Number = iota + 1
	fEnvPayload
	fEnvEpoch
)

func (m *Envelope) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, fEnvKind, m.Kind)
	b = appendBytesField(b, fEnvPayload, m.Payload)
	b = appendVarint(b, fEnvEpoch, uint64(m.Epoch))
	return b, nil
}

func (m *Envelope) Unmarshal(b []byte) error {
	*m = Envelope{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fEnvKind:
			s, n, err := consumeString(b)
			if err != nil { return -1, err }
			m.Kind = s
			return n, nil
		case fEnvPayload:
			v, n, err := consumeBytesField(b)
			if err != nil { return -1, err }
			m.Payload = v
			return n, nil
		case fEnvEpoch:
			v, n, err := consumeVarint(b)
			if err != nil { return -1, err }
			m.Epoch = int64(v)
			return n, nil
		default:
			return -1, nil
		}
	})
}
