// Package matching scores how well a student fits an existing study circle and
// picks the best circle to join.
//
// Everything in this package is a pure function over value snapshots; callers
// load preferences and circles from storage and hand them in.
package matching

import (
	"math"
	"sort"
	"strings"
)

// LearningStyle is the dominant way a student prefers to absorb material.
type LearningStyle string

// Supported learning styles.
const (
	StyleVisual      LearningStyle = "visual"
	StyleAuditory    LearningStyle = "auditory"
	StyleKinesthetic LearningStyle = "kinesthetic"
	StyleReading     LearningStyle = "reading"
)

// TimeSlot is a coarse part of the day a student likes to study in.
type TimeSlot string

// Supported time slots.
const (
	SlotMorning   TimeSlot = "morning"
	SlotAfternoon TimeSlot = "afternoon"
	SlotEvening   TimeSlot = "evening"
	SlotNight     TimeSlot = "night"
)

// GroupSize is the preferred circle size.
type GroupSize string

// Supported group sizes.
const (
	SizeSmall  GroupSize = "small"
	SizeMedium GroupSize = "medium"
	SizeLarge  GroupSize = "large"
)

// DefaultThreshold is the minimum score a circle needs to be selected.
const DefaultThreshold = 0.4

// StudentPreferences is the snapshot of a student's study preferences taken at
// scoring time.
type StudentPreferences struct {
	LearningStyle  LearningStyle
	PreferredTimes []TimeSlot
	GroupSize      GroupSize
	Goals          []string
}

// StudyGroupProfile is the scoring view of a study circle.
type StudyGroupProfile struct {
	ID                uint
	CourseID          uint
	MemberPreferences []StudentPreferences
	Capacity          int
	CurrentSize       int
}

// HasCapacity reports whether another member can join.
func (g StudyGroupProfile) HasCapacity() bool {
	return g.CurrentSize < g.Capacity
}

// Match is the selected circle together with its score.
type Match struct {
	Group StudyGroupProfile
	Score float64
}

// Weights sets how much each preference dimension contributes to a pair score.
type Weights struct {
	LearningStyle  float64
	PreferredTimes float64
	GroupSize      float64
	Goals          float64
}

// DefaultWeights returns the production weighting.
func DefaultWeights() Weights {
	return Weights{
		LearningStyle:  0.30,
		PreferredTimes: 0.25,
		GroupSize:      0.15,
		Goals:          0.30,
	}
}

// Valid reports whether every weight is non-negative and the weights sum to 1.
func (w Weights) Valid() bool {
	if w.LearningStyle < 0 || w.PreferredTimes < 0 || w.GroupSize < 0 || w.Goals < 0 {
		return false
	}
	sum := w.LearningStyle + w.PreferredTimes + w.GroupSize + w.Goals
	return math.Abs(sum-1.0) < 1e-9
}

// Scorer computes compatibility scores. The zero value is not usable; build one
// with NewScorer.
type Scorer struct {
	weights   Weights
	threshold float64
}

// NewScorer builds a scorer. Invalid weights fall back to DefaultWeights and a
// threshold outside [0,1] falls back to DefaultThreshold.
func NewScorer(weights Weights, threshold float64) Scorer {
	if !weights.Valid() {
		weights = DefaultWeights()
	}
	if threshold < 0 || threshold > 1 || math.IsNaN(threshold) {
		threshold = DefaultThreshold
	}
	return Scorer{weights: weights, threshold: threshold}
}

// DefaultScorer uses DefaultWeights and DefaultThreshold.
func DefaultScorer() Scorer {
	return NewScorer(DefaultWeights(), DefaultThreshold)
}

// Threshold returns the minimum score required by FindBestGroup.
func (s Scorer) Threshold() float64 {
	return s.threshold
}

// PairScore scores two students against each other, in [0,1].
func (s Scorer) PairScore(a, b StudentPreferences) float64 {
	score := s.weights.LearningStyle*exact(string(a.LearningStyle), string(b.LearningStyle)) +
		s.weights.PreferredTimes*jaccard(slotStrings(a.PreferredTimes), slotStrings(b.PreferredTimes)) +
		s.weights.GroupSize*exact(string(a.GroupSize), string(b.GroupSize)) +
		s.weights.Goals*jaccard(a.Goals, b.Goals)
	return clamp(score)
}

// Score averages the pair score of the candidate against every member of the
// group. A group without members scores 0.
func (s Scorer) Score(candidate StudentPreferences, group StudyGroupProfile) float64 {
	if len(group.MemberPreferences) == 0 {
		return 0
	}

	var total float64
	for _, member := range group.MemberPreferences {
		total += s.PairScore(candidate, member)
	}
	return clamp(total / float64(len(group.MemberPreferences)))
}

// FindBestGroup returns the highest scoring group that still has room, provided
// its score reaches the threshold. Ties go to the lowest group id. The boolean
// is false when no group qualifies and a new circle should be created.
func (s Scorer) FindBestGroup(candidate StudentPreferences, groups []StudyGroupProfile) (Match, bool) {
	var (
		best  Match
		found bool
	)

	for _, group := range groups {
		if !group.HasCapacity() {
			continue
		}
		score := s.Score(candidate, group)
		if !found || score > best.Score || (score == best.Score && group.ID < best.Group.ID) {
			best = Match{Group: group, Score: score}
			found = true
		}
	}

	if !found || best.Score < s.threshold {
		return Match{}, false
	}
	return best, true
}

// Peer is a student that could be suggested as a study buddy.
type Peer struct {
	UserID      uint
	Preferences StudentPreferences
}

// RankedPeer is a peer together with its pair score.
type RankedPeer struct {
	Peer
	Score float64
}

// RankPeers orders peers by descending pair score, lowest user id first on
// ties, and keeps at most limit entries. A non-positive limit keeps all.
func (s Scorer) RankPeers(candidate StudentPreferences, peers []Peer, limit int) []RankedPeer {
	ranked := make([]RankedPeer, 0, len(peers))
	for _, peer := range peers {
		ranked = append(ranked, RankedPeer{Peer: peer, Score: s.PairScore(candidate, peer.Preferences)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].UserID < ranked[j].UserID
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func exact(a, b string) float64 {
	if a != "" && strings.EqualFold(a, b) {
		return 1
	}
	return 0
}

// jaccard is |a∩b| / |a∪b| over case-insensitive, trimmed tags. Two empty sets
// share nothing and score 0.
func jaccard(a, b []string) float64 {
	left := toSet(a)
	right := toSet(b)

	union := len(left)
	intersection := 0
	for tag := range right {
		if _, ok := left[tag]; ok {
			intersection++
			continue
		}
		union++
	}

	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized := strings.ToLower(strings.TrimSpace(value))
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return set
}

func slotStrings(slots []TimeSlot) []string {
	out := make([]string, len(slots))
	for i, slot := range slots {
		out[i] = string(slot)
	}
	return out
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
