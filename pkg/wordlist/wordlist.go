// Package wordlist provides the fixed BIP-39 dictionaries.
package wordlist

import (
	"fmt"

	"github.com/tyler-smith/go-bip39/wordlists"
)

// Size is the number of words in every BIP-39 dictionary.
const Size = 2048

// Type identifies a dictionary in serialized seeds.
type Type byte

// English is the only dictionary currently defined.
const English Type = 0

// String returns the dictionary name.
func (t Type) String() string {
	switch t {
	case English:
		return "english"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

// List is an immutable index<->word mapping.
type List struct {
	typ   Type
	words []string
	index map[string]int
}

var english = mustNewList(English, wordlists.English)

func mustNewList(typ Type, words []string) *List {
	l, err := newList(typ, words)
	if err != nil {
		panic(err)
	}
	return l
}

func newList(typ Type, words []string) (*List, error) {
	if len(words) != Size {
		return nil, fmt.Errorf("%s word list has %d words, want %d", typ, len(words), Size)
	}
	l := &List{
		typ:   typ,
		words: make([]string, Size),
		index: make(map[string]int, Size),
	}
	copy(l.words, words)
	for i, w := range l.words {
		if _, dup := l.index[w]; dup {
			return nil, fmt.Errorf("%s word list has duplicate word %q", typ, w)
		}
		l.index[w] = i
	}
	return l, nil
}

// Get returns the English dictionary.
func Get() *List {
	return english
}

// ForType returns the dictionary for t, if one is defined.
func ForType(t Type) (*List, bool) {
	if t == English {
		return english, true
	}
	return nil, false
}

// Type returns the dictionary identifier.
func (l *List) Type() Type {
	return l.typ
}

// Len returns the number of words.
func (l *List) Len() int {
	return len(l.words)
}

// Word returns the word at index i. It panics if i is outside [0, Size).
func (l *List) Word(i int) string {
	return l.words[i]
}

// Index returns the index of word. Lookup is exact and case-sensitive.
func (l *List) Index(word string) (int, bool) {
	i, ok := l.index[word]
	return i, ok
}

// Contains reports whether word is in the dictionary.
func (l *List) Contains(word string) bool {
	_, ok := l.index[word]
	return ok
}

// Words returns a copy of all words in index order.
func (l *List) Words() []string {
	out := make([]string, len(l.words))
	copy(out, l.words)
	return out
}
