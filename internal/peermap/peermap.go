package peermap

import (
	"errors"
	"strings"
)


//=========================================== Peer Map Operations


// Rank returns the member's index in the ordered list, or -1 if absent.
// rank(name) is monotone in insertion order: once assigned, a member's
// rank never changes except via a wholesale Replace.
func (pm *PeerMap) Rank(name string) int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.rankLocked(name)
}

func (pm *PeerMap) rankLocked(name string) int {
	for i, m := range pm.Members {
		if m.Name == name { return i }
	}
	return -1
}

func (pm *PeerMap) Contains(name string) bool {
	return pm.Rank(name) >= 0
}

func (pm *PeerMap) AddressOf(name string) (string, bool) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	for _, m := range pm.Members {
		if m.Name == name { return m.Address, true }
	}
	return "", false
}

// NameByAddress returns the name currently assigned to the member at
// address, or false if no member has that address.
func (pm *PeerMap) NameByAddress(address string) (string, bool) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	for _, m := range pm.Members {
		if m.Address == address { return m.Name, true }
	}
	return "", false
}

func (pm *PeerMap) MembersSnapshot() []Member {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	out := make([]Member, len(pm.Members))
	copy(out, pm.Members)
	return out
}

func (pm *PeerMap) Size() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.Members)
}

func (pm *PeerMap) EpochValue() uint64 {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.Epoch
}

func (pm *PeerMap) MarkEverJoined(name string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.everJoined[name] = true
}

func (pm *PeerMap) HasEverJoined(name string) bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.everJoined[name]
}

/*
	Replace:
		commit a new membership list at a new epoch, per spec §3's
		mutation rules. Mutated only by:
			1.) monmap-service commit (caller already verified)
			2.) peer-discovered-newer replacement, and ONLY if the peer has
				ever joined quorum and its epoch is strictly greater than ours
		Peer-map replacement must never go backward.
*/

func (pm *PeerMap) Replace(epoch uint64, members []Member) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if epoch <= pm.Epoch { return errors.New(string(EpochNotGreaterErr)) }

	pm.Epoch = epoch
	pm.Members = append([]Member{}, members...)
	return nil
}

// ReplaceFromPeer applies the peer-discovered-newer-epoch mutation rule:
// only honored if fromName has ever joined quorum.
func (pm *PeerMap) ReplaceFromPeer(fromName string, epoch uint64, members []Member) error {
	if !pm.HasEverJoined(fromName) { return errors.New(string(NeverJoinedErr)) }
	return pm.Replace(epoch, members)
}

// RenamePlaceholder implements the "rename self/peer on probe reply"
// rule (spec §4.1 step 2, supplemented feature 3): only when the local
// entry is still a noname-<rank> placeholder and epoch is 0.
func (pm *PeerMap) RenamePlaceholder(oldName, newName string) bool {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.Epoch != 0 { return false }
	if !strings.HasPrefix(oldName, PlaceholderPrefix) { return false }

	for i, m := range pm.Members {
		if m.Name == oldName {
			pm.Members[i].Name = newName
			return true
		}
	}
	return false
}

// LearnAddress fills in a blank address for an existing member, per
// spec §4.1 step 3.
func (pm *PeerMap) LearnAddress(name, address string) bool {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	for i, m := range pm.Members {
		if m.Name == name && m.Address == "" {
			pm.Members[i].Address = address
			return true
		}
	}
	return false
}

// FilterInitialMembers restricts the seed map at first boot to exactly
// the names listed (mon_initial_members), per spec §6.
func FilterInitialMembers(members []Member, allow []string) []Member {
	if len(allow) == 0 { return members }

	set := make(map[string]bool, len(allow))
	for _, n := range allow { set[n] = true }

	var out []Member
	for _, m := range members {
		if set[m.Name] { out = append(out, m) }
	}
	return out
}
