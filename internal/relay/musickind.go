package relay

// musicKinds are The Wired's addressable music event kinds: 31683 (track),
// 33123 (album), 30119 (playlist). Title lives in tags, not content.
var musicKinds = map[int]bool{31683: true, 33123: true, 30119: true}

// MusicKindValidator is an optional KindValidator: kind-specific
// validation beyond signature verification lives as a policy layer
// distinct from the core pipeline. It requires a "title" and a "d" tag on
// the three music-related addressable kinds and leaves every other kind
// unconstrained.
func MusicKindValidator(kind int, tags [][]string) (applies bool, valid bool) {
	if !musicKinds[kind] {
		return false, true
	}

	hasTitle, hasD := false, false
	for _, tag := range tags {
		if len(tag) >= 2 && tag[0] == "title" {
			hasTitle = true
		}
		if len(tag) >= 2 && tag[0] == "d" {
			hasD = true
		}
	}
	return true, hasTitle && hasD
}
