package catalog

import (
	"sort"

	"github.com/attunepartners/prefix-match/internal/core/charclass"
)

// eopKey addresses the point where a pattern word terminates: the block
// reached just before the word's final class, plus that final class.
type eopKey struct {
	block uint32
	class uint8
}

// PosMap is the value of an end-of-word entry: for each word position
// 1..MaxWordPositions, the sorted pattern ids that finish one of their
// words at this trie location in that position.
type PosMap struct {
	byPos  [MaxWordPositions + 1][]uint32
	maxPos uint8
}

// ForEach visits every non-empty position in ascending order.
func (m *PosMap) ForEach(fn func(pos uint8, pids []uint32)) {
	for p := uint8(1); p <= m.maxPos; p++ {
		if len(m.byPos[p]) > 0 {
			fn(p, m.byPos[p])
		}
	}
}

// At returns the sorted pattern ids recorded at pos.
func (m *PosMap) At(pos uint8) []uint32 {
	if pos == 0 || pos > MaxWordPositions {
		return nil
	}
	return m.byPos[pos]
}

func (m *PosMap) add(pos uint8, pid uint32) {
	if pos > m.maxPos {
		m.maxPos = pos
	}
	list := m.byPos[pos]
	i := sort.Search(len(list), func(i int) bool { return list[i] >= pid })
	if i < len(list) && list[i] == pid {
		return
	}
	list = append(list, 0)
	copy(list[i+1:], list[i:])
	list[i] = pid
	m.byPos[pos] = list
}

// allocBlock appends a fresh 37-slot block and returns its index.
// Slot values are block indices; 0 means no child (the root is never a
// child, so the sentinel is unambiguous).
func (b *Builder) allocBlock() uint32 {
	idx := b.blockCount
	b.blockCount++
	b.trie = append(b.trie, make([]uint32, charclass.NumClasses)...)
	return idx
}

// insertWord walks word into the trie, allocating blocks as needed, and
// records the end-of-word entry for (pid, pos). Bytes that classify as
// delimiters are skipped; the matcher shares the same table so the two
// sides cannot disagree on what a word is.
func (b *Builder) insertWord(pid uint32, word string, pos uint8) {
	var cur, prev uint32
	var last uint8

	for i := 0; i < len(word); i++ {
		cls := charclass.Of(word[i])
		if cls == 0 {
			continue
		}
		prev = cur
		last = cls

		slot := cur*charclass.NumClasses + uint32(cls)
		if b.trie[slot] == 0 {
			b.trie[slot] = b.allocBlock()
		}
		cur = b.trie[slot]
	}

	if cur == 0 {
		// word had no classifiable bytes
		return
	}

	key := eopKey{block: prev, class: last}
	pm := b.eop[key]
	if pm == nil {
		pm = &PosMap{}
		b.eop[key] = pm
	}
	pm.add(pos, pid)
}
