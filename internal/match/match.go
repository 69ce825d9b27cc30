// Package match implements fuzzy customer matching: bigram Dice string
// similarity with address-aware normalization, a scored strong/possible
// classification, and the exact-key form used by the bulk importer.
package match

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Confidence levels assigned to match candidates.
const (
	ConfidenceStrong   = "strong"
	ConfidencePossible = "possible"
)

// Candidate is an existing customer considered for matching.
type Candidate struct {
	ID      string
	Name    string
	Address string
	City    string
	State   string
	Zip     string
}

// Query is the incoming record being matched.
type Query struct {
	Name    string
	Address string
	City    string
	State   string
	Zip     string
}

// Match is a scored candidate.
type Match struct {
	Candidate  Candidate
	Confidence string
	Score      float64
}

var nonWordRe = regexp.MustCompile(`[^\w\s]`)
var spacesRe = regexp.MustCompile(`\s+`)

// NormalizeForMatching lowercases, strips punctuation and collapses
// whitespace so cosmetic differences do not affect similarity.
func NormalizeForMatching(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonWordRe.ReplaceAllString(s, " ")
	s = spacesRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// addressAbbreviations expand common street-suffix and unit
// abbreviations so "123 Main St Apt 4" and "123 Main Street
// Apartment 4" compare as near-identical.
var addressAbbreviations = map[string]string{
	"st":   "street",
	"ave":  "avenue",
	"av":   "avenue",
	"blvd": "boulevard",
	"dr":   "drive",
	"rd":   "road",
	"ln":   "lane",
	"ct":   "court",
	"cir":  "circle",
	"pl":   "place",
	"pkwy": "parkway",
	"hwy":  "highway",
	"ter":  "terrace",
	"trl":  "trail",
	"apt":  "apartment",
	"ste":  "suite",
	"fl":   "floor",
	"unit": "unit",
	"bldg": "building",
	"n":    "north",
	"s":    "south",
	"e":    "east",
	"w":    "west",
}

// NormalizeAddress applies NormalizeForMatching and expands street
// abbreviations word by word.
func NormalizeAddress(s string) string {
	normalized := NormalizeForMatching(s)
	if normalized == "" {
		return ""
	}
	words := strings.Split(normalized, " ")
	for i, w := range words {
		if full, ok := addressAbbreviations[w]; ok {
			words[i] = full
		}
	}
	return strings.Join(words, " ")
}

// StringSimilarity computes the Dice coefficient over character
// bigrams. Two empty strings are a perfect vacuous match; callers must
// pre-check non-emptiness before treating the result as evidence.
func StringSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	if len(a) < 2 || len(b) < 2 {
		return 0.0
	}

	bigramsA := bigrams(a)
	bigramsB := bigrams(b)

	intersection := 0
	for bg, countA := range bigramsA {
		if countB, ok := bigramsB[bg]; ok {
			if countA < countB {
				intersection += countA
			} else {
				intersection += countB
			}
		}
	}

	totalA := len(a) - 1
	totalB := len(b) - 1
	return 2.0 * float64(intersection) / float64(totalA+totalB)
}

func bigrams(s string) map[string]int {
	out := make(map[string]int, len(s))
	runes := []rune(s)
	for i := 0; i < len(runes)-1; i++ {
		out[string(runes[i:i+2])]++
	}
	return out
}

// FindMatches scores every candidate against the query and returns up
// to three matches sorted by score descending.
//
// Strong: equal zips with address similarity >= 0.85, or name
// similarity >= 0.92 backed by a matching city, state or zip.
// Possible: name similarity >= 0.85, or equal zips with address
// similarity >= 0.75. Everything else is excluded.
func FindMatches(q Query, candidates []Candidate) []Match {
	qName := NormalizeForMatching(q.Name)
	qAddr := NormalizeAddress(q.Address)
	qCity := NormalizeForMatching(q.City)
	qState := NormalizeForMatching(q.State)
	qZip := strings.TrimSpace(q.Zip)

	var matches []Match
	for _, c := range candidates {
		cName := NormalizeForMatching(c.Name)
		cAddr := NormalizeAddress(c.Address)

		nameSim := 0.0
		if qName != "" && cName != "" {
			nameSim = StringSimilarity(qName, cName)
		}
		addrSim := 0.0
		if qAddr != "" && cAddr != "" {
			addrSim = StringSimilarity(qAddr, cAddr)
		}

		zipEqual := qZip != "" && qZip == strings.TrimSpace(c.Zip)
		cityEqual := qCity != "" && qCity == NormalizeForMatching(c.City)
		stateEqual := qState != "" && qState == NormalizeForMatching(c.State)

		var confidence string
		var score float64
		switch {
		case zipEqual && addrSim >= 0.85:
			confidence = ConfidenceStrong
			score = 0.9 + 0.1*nameSim
		case nameSim >= 0.92 && (cityEqual || stateEqual || zipEqual):
			confidence = ConfidenceStrong
			score = 0.85 + 0.15*addrSim
		case nameSim >= 0.85:
			confidence = ConfidencePossible
			score = 0.6*nameSim + 0.4*addrSim
		case zipEqual && addrSim >= 0.75:
			confidence = ConfidencePossible
			score = 0.7*addrSim + 0.3*nameSim
		default:
			continue
		}

		matches = append(matches, Match{Candidate: c, Confidence: confidence, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > 3 {
		matches = matches[:3]
	}
	return matches
}

// ExactKey builds the deterministic (name|address|zip) key the bulk
// importer uses for duplicate-customer resolution. Cheaper than the
// scored matcher and deliberately higher precision, lower recall.
func ExactKey(name, address, zip string) string {
	return fmt.Sprintf("%s|%s|%s",
		NormalizeForMatching(name),
		NormalizeAddress(address),
		strings.TrimSpace(zip),
	)
}

// RowGroup is one customer's worth of imported rows.
type RowGroup struct {
	Key     string
	Name    string
	Address string
	City    string
	State   string
	Zip     string
	Rows    []int // indexes into the caller's row slice
}

// GroupRowsByCustomer groups row indexes by exact key. The keyFn lets
// the caller expose whatever row representation it holds.
func GroupRowsByCustomer(n int, fields func(i int) (name, address, city, state, zip string)) []RowGroup {
	order := make([]string, 0, n)
	groups := make(map[string]*RowGroup, n)

	for i := 0; i < n; i++ {
		name, address, city, state, zip := fields(i)
		key := ExactKey(name, address, zip)
		g, ok := groups[key]
		if !ok {
			g = &RowGroup{Key: key, Name: name, Address: address, City: city, State: state, Zip: zip}
			groups[key] = g
			order = append(order, key)
		}
		g.Rows = append(g.Rows, i)
	}

	out := make([]RowGroup, 0, len(order))
	for _, key := range order {
		out = append(out, *groups[key])
	}
	return out
}
