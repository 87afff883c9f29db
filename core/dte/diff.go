package dte

import (
	"sort"
	"strings"

	"github.com/emenda-labs/warden/core/model"
)

const (
	// minNameSimilarity is the minimum normalized Levenshtein similarity
	// for fuzzy rename matching.
	minNameSimilarity = 0.7
	// minParamOverlap is the minimum Jaccard overlap on parameter types
	// for fuzzy rename matching.
	minParamOverlap = 0.8
	// shortNameLength is the threshold below which stricter name
	// similarity is required.
	shortNameLength = 4
	// shortNameMinSimilarity is the stricter threshold for short names.
	shortNameMinSimilarity = 0.85
)

type diffState struct {
	oldByKey   map[symbolKey]*model.Symbol
	newByKey   map[symbolKey]*model.Symbol
	matchedOld map[symbolKey]bool
	matchedNew map[symbolKey]bool
	oldSigs    FuncSigMap
	newSigs    FuncSigMap
	changes    []model.Change
}

type nameKey struct {
	pkg  string
	name string
}

type scoredPair struct {
	oldKey  symbolKey
	newKey  symbolKey
	score   float64
	oldName string
}

func newDiffState(old, new model.Symbols, oldSigs, newSigs FuncSigMap) *diffState {
	s := &diffState{
		oldByKey:   make(map[symbolKey]*model.Symbol, len(old.Entries)),
		newByKey:   make(map[symbolKey]*model.Symbol, len(new.Entries)),
		matchedOld: make(map[symbolKey]bool),
		matchedNew: make(map[symbolKey]bool),
		oldSigs:    oldSigs,
		newSigs:    newSigs,
	}
	for i := range old.Entries {
		sym := &old.Entries[i]
		s.oldByKey[symbolKey{pkg: sym.Package, kind: sym.Kind, name: sym.Name}] = sym
	}
	for i := range new.Entries {
		sym := &new.Entries[i]
		s.newByKey[symbolKey{pkg: sym.Package, kind: sym.Kind, name: sym.Name}] = sym
	}
	return s
}

// DiffExports compares two symbol sets and classifies every breaking
// change with a confidence level. Six passes run in order: exact match,
// changed, renamed, correlate-methods, fuzzy match, leftovers.
func DiffExports(old, new model.Symbols, oldSigs, newSigs FuncSigMap) []model.Change {
	s := newDiffState(old, new, oldSigs, newSigs)
	s.exactMatch()
	s.changed()
	s.renamed()
	s.fuzzyMatch()
	s.leftovers()
	return s.changes
}

func (s *diffState) markMatched(oldKey, newKey symbolKey) {
	s.matchedOld[oldKey] = true
	s.matchedNew[newKey] = true
}

func (s *diffState) emit(c model.Change) {
	s.changes = append(s.changes, c)
}

func (s *diffState) unmatchedOld() []symbolKey {
	var keys []symbolKey
	for k := range s.oldByKey {
		if !s.matchedOld[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

func (s *diffState) unmatchedNew() []symbolKey {
	var keys []symbolKey
	for k := range s.newByKey {
		if !s.matchedNew[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

// Pass 1: exact matches (same key, same signature) are silently consumed.
func (s *diffState) exactMatch() {
	for key, oldSym := range s.oldByKey {
		newSym, ok := s.newByKey[key]
		if !ok {
			continue
		}
		if oldSym.Signature == newSym.Signature {
			s.markMatched(key, key)
		}
	}
}

// Pass 2: same-key signature changes and cross-kind type changes.
func (s *diffState) changed() {
	for _, key := range s.unmatchedOld() {
		newSym, ok := s.newByKey[key]
		if !ok {
			continue
		}
		oldSym := s.oldByKey[key]
		if oldSym.Signature == newSym.Signature {
			continue
		}

		kind := model.ChangeKindSignatureChanged
		if oldSym.Kind == model.SymbolType || oldSym.Kind == model.SymbolInterface {
			kind = model.ChangeKindTypeChanged
		}

		s.emit(model.Change{
			Kind:         kind,
			Symbol:       oldSym.Name,
			Package:      oldSym.Package,
			OldSignature: oldSym.Signature,
			NewSignature: newSym.Signature,
			Confidence:   model.ConfidenceHigh,
		})
		s.markMatched(key, key)
	}

	oldByName := make(map[nameKey]symbolKey)
	for _, key := range s.unmatchedOld() {
		oldByName[nameKey{pkg: key.pkg, name: key.name}] = key
	}
	newByName := make(map[nameKey]symbolKey)
	for _, key := range s.unmatchedNew() {
		newByName[nameKey{pkg: key.pkg, name: key.name}] = key
	}

	for nk, oldKey := range oldByName {
		newKey, ok := newByName[nk]
		if !ok || oldKey.kind == newKey.kind {
			continue
		}
		oldSym := s.oldByKey[oldKey]
		newSym := s.newByKey[newKey]

		s.emit(model.Change{
			Kind:         model.ChangeKindTypeChanged,
			Symbol:       oldSym.Name,
			Package:      oldSym.Package,
			OldSignature: oldSym.Signature,
			NewSignature: newSym.Signature,
			Confidence:   model.ConfidenceHigh,
		})
		s.markMatched(oldKey, newKey)
	}
}

// Pass 3: exact-signature renames (unique 1:1 mapping by signature+kind+
// package), then correlates methods/fields whose receiver was renamed.
func (s *diffState) renamed() {
	removedBySig := make(map[string][]symbolKey)
	for _, key := range s.unmatchedOld() {
		oldSym := s.oldByKey[key]
		sigKey := oldSym.Signature + "|" + string(oldSym.Kind) + "|" + oldSym.Package
		removedBySig[sigKey] = append(removedBySig[sigKey], key)
	}
	addedBySig := make(map[string][]symbolKey)
	for _, key := range s.unmatchedNew() {
		newSym := s.newByKey[key]
		sigKey := newSym.Signature + "|" + string(newSym.Kind) + "|" + newSym.Package
		addedBySig[sigKey] = append(addedBySig[sigKey], key)
	}

	typeRenames := make(map[string]string)

	for sig, oldKeys := range removedBySig {
		newKeys, ok := addedBySig[sig]
		if !ok || len(oldKeys) > 1 || len(newKeys) > 1 {
			continue
		}

		oldKey := oldKeys[0]
		newKey := newKeys[0]
		oldSym := s.oldByKey[oldKey]
		newSym := s.newByKey[newKey]

		if oldSym.Signature == "" || oldSym.Signature == "()" {
			continue
		}

		s.emit(model.Change{
			Kind:         model.ChangeKindRenamed,
			Symbol:       oldSym.Name,
			Package:      oldSym.Package,
			NewName:      newSym.Name,
			OldSignature: oldSym.Signature,
			NewSignature: newSym.Signature,
			Confidence:   model.ConfidenceHigh,
		})
		s.markMatched(oldKey, newKey)

		if oldSym.Kind == model.SymbolType || oldSym.Kind == model.SymbolInterface {
			typeRenames[oldSym.Name] = newSym.Name
		}
	}

	s.correlateWithTypeRenames(typeRenames)
}

// correlateWithTypeRenames matches methods/fields whose receiver/parent
// type was itself renamed in this pass.
func (s *diffState) correlateWithTypeRenames(typeRenames map[string]string) {
	if len(typeRenames) == 0 {
		return
	}

	for _, oldKey := range s.unmatchedOld() {
		oldSym := s.oldByKey[oldKey]
		if oldSym.Kind != model.SymbolMethod && oldSym.Kind != model.SymbolField {
			continue
		}

		dotIdx := strings.Index(oldSym.Name, ".")
		if dotIdx < 0 {
			continue
		}
		receiver := oldSym.Name[:dotIdx]
		member := oldSym.Name[dotIdx+1:]

		newReceiver, ok := typeRenames[receiver]
		if !ok {
			continue
		}

		expectedNewName := newReceiver + "." + member
		expectedNewKey := symbolKey{pkg: oldSym.Package, kind: oldSym.Kind, name: expectedNewName}

		newSym, found := s.newByKey[expectedNewKey]
		if !found || s.matchedNew[expectedNewKey] {
			continue
		}

		if oldSym.Signature == newSym.Signature {
			s.emit(model.Change{
				Kind:         model.ChangeKindRenamed,
				Symbol:       oldSym.Name,
				Package:      oldSym.Package,
				NewName:      newSym.Name,
				OldSignature: oldSym.Signature,
				NewSignature: newSym.Signature,
				Confidence:   model.ConfidenceHigh,
			})
		} else {
			s.emit(model.Change{
				Kind:         model.ChangeKindSignatureChanged,
				Symbol:       oldSym.Name,
				Package:      oldSym.Package,
				OldSignature: oldSym.Signature,
				NewSignature: newSym.Signature,
				Confidence:   model.ConfidenceHigh,
			})
		}
		s.markMatched(oldKey, expectedNewKey)
	}
}

// Pass 5: fuzzy matching for functions/methods on name similarity and
// parameter overlap.
func (s *diffState) fuzzyMatch() {
	unmatchedOldKeys := s.unmatchedOld()
	unmatchedNewKeys := s.unmatchedNew()

	var oldFuncKeys []symbolKey
	for _, key := range unmatchedOldKeys {
		if _, ok := s.oldSigs[key]; ok {
			oldFuncKeys = append(oldFuncKeys, key)
		}
	}
	var newFuncKeys []symbolKey
	for _, key := range unmatchedNewKeys {
		if _, ok := s.newSigs[key]; ok {
			newFuncKeys = append(newFuncKeys, key)
		}
	}
	if len(oldFuncKeys) == 0 || len(newFuncKeys) == 0 {
		return
	}

	var candidates []scoredPair
	for _, oldKey := range oldFuncKeys {
		oldSym := s.oldByKey[oldKey]
		oldSig := s.oldSigs[oldKey]

		for _, newKey := range newFuncKeys {
			newSym := s.newByKey[newKey]
			newSig := s.newSigs[newKey]

			nameSim := nameSimilarity(oldSym.Name, newSym.Name)
			overlap := paramOverlap(oldSig, newSig)

			nameThreshold := minNameSimilarity
			maxLen := max(len(oldSym.Name), len(newSym.Name))
			if maxLen < shortNameLength {
				nameThreshold = shortNameMinSimilarity
			}

			if nameSim >= nameThreshold && overlap >= minParamOverlap {
				candidates = append(candidates, scoredPair{
					oldKey:  oldKey,
					newKey:  newKey,
					score:   nameSim * overlap,
					oldName: oldSym.Name,
				})
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].oldName < candidates[j].oldName
	})

	for _, pair := range candidates {
		if s.matchedOld[pair.oldKey] || s.matchedNew[pair.newKey] {
			continue
		}
		oldSym := s.oldByKey[pair.oldKey]
		newSym := s.newByKey[pair.newKey]

		s.emit(model.Change{
			Kind:         model.ChangeKindRenamed,
			Symbol:       oldSym.Name,
			Package:      oldSym.Package,
			NewName:      newSym.Name,
			OldSignature: oldSym.Signature,
			NewSignature: newSym.Signature,
			Confidence:   model.ConfidenceMedium,
		})
		s.markMatched(pair.oldKey, pair.newKey)
	}
}

// Pass 6: everything still unmatched on the old side is removed.
func (s *diffState) leftovers() {
	for _, key := range s.unmatchedOld() {
		oldSym := s.oldByKey[key]
		s.emit(model.Change{
			Kind:         model.ChangeKindRemoved,
			Symbol:       oldSym.Name,
			Package:      oldSym.Package,
			OldSignature: oldSym.Signature,
			Confidence:   model.ConfidenceLow,
		})
	}
}

func levenshteinDistance(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

// nameSimilarity returns normalized Levenshtein similarity in [0, 1].
func nameSimilarity(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	maxLen := max(len(a), len(b))
	return 1.0 - float64(levenshteinDistance(a, b))/float64(maxLen)
}

// paramOverlap computes the Jaccard similarity of parameter+result type
// multisets. Vacuously 1.0 when both sides are empty.
func paramOverlap(a, b funcSignature) float64 {
	aAll := append(append([]string{}, a.params...), a.results...)
	bAll := append(append([]string{}, b.params...), b.results...)

	if len(aAll) == 0 && len(bAll) == 0 {
		return 1.0
	}

	aSet := make(map[string]int)
	for _, t := range aAll {
		aSet[t]++
	}
	bSet := make(map[string]int)
	for _, t := range bAll {
		bSet[t]++
	}

	var intersection, union int
	allKeys := make(map[string]bool)
	for k := range aSet {
		allKeys[k] = true
	}
	for k := range bSet {
		allKeys[k] = true
	}
	for k := range allKeys {
		ac, bc := aSet[k], bSet[k]
		intersection += min(ac, bc)
		union += max(ac, bc)
	}
	if union == 0 {
		return 1.0
	}
	return float64(intersection) / float64(union)
}
