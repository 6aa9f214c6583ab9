package workload

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

const (
	baseUsers    = 500
	baseStories  = 1000
	baseComments = 4000

	shortIDWidth = 6
	shortIDSpace = 2_176_782_336 // 36^6

	// Fresh identifiers for submitted stories and comments live above this
	// offset so they never collide with the primed population. Each seed
	// starts at its own point of the fresh range and each worker owns a
	// block of freshIDPerWorker identifiers from there.
	freshIDOffset    = 1_000_000_000
	freshIDSpace     = shortIDSpace - freshIDOffset
	freshIDPerWorker = 1_000_000
)

// BaseRate is the target operation rate at scale 1.0, in operations per second.
const BaseRate = 50.0

// RateFor returns the target operation rate for scale.
func RateFor(scale float64) float64 {
	return BaseRate * scale
}

// Population describes the primed data set the target must contain.
type Population struct {
	Users    int
	Stories  int
	Comments int
}

// PopulationFor scales the base population by factor. Every dimension has at
// least one member.
func PopulationFor(scale float64) Population {
	n := func(base int) int {
		v := int(float64(base) * scale)
		if v < 1 {
			return 1
		}
		return v
	}
	return Population{
		Users:    n(baseUsers),
		Stories:  n(baseStories),
		Comments: n(baseComments),
	}
}

// FormatShortID renders n in lowercase base 36, zero padded to the lobste.rs
// short id width.
func FormatShortID(n uint64) ShortID {
	s := strconv.FormatUint(n, 36)
	if len(s) < shortIDWidth {
		s = strings.Repeat("0", shortIDWidth-len(s)) + s
	}
	return ShortID(s)
}

type weightedKind struct {
	kind   Kind
	weight int
}

var defaultMix = []weightedKind{
	{KindFrontpage, 30},
	{KindRecent, 10},
	{KindStory, 40},
	{KindStoryVote, 6},
	{KindCommentVote, 7},
	{KindComment, 4},
	{KindSubmit, 1},
	{KindLogin, 1},
	{KindLogout, 1},
}

// Generator produces a deterministic stream of operations for one worker.
// It is not safe for concurrent use.
type Generator struct {
	rnd       *rand.Rand
	pop       Population
	worker    int
	freshBase uint64
	seq       uint64
	total     int
}

// NewGenerator returns a generator for worker over pop seeded with seed.
func NewGenerator(pop Population, worker int, seed int64) *Generator {
	total := 0
	for _, w := range defaultMix {
		total += w.weight
	}
	return &Generator{
		rnd:       rand.New(rand.NewSource(seed + int64(worker))),
		pop:       pop,
		worker:    worker,
		freshBase: freshBase(seed),
		total:     total,
	}
}

// freshBase spreads seeds over the fresh range with the splitmix64 finalizer.
func freshBase(seed int64) uint64 {
	z := uint64(seed) + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return (z ^ (z >> 31)) % freshIDSpace
}

// Next returns the next operation.
func (g *Generator) Next() Request {
	switch g.pickKind() {
	case KindRecent:
		return Recent{}
	case KindStory:
		return Story{ID: g.story()}
	case KindStoryVote:
		return StoryVote{User: g.user(), Story: g.story(), Vote: g.vote()}
	case KindCommentVote:
		return CommentVote{User: g.user(), Comment: g.comment(), Vote: g.vote()}
	case KindComment:
		c := Comment{ID: g.fresh(), User: g.user(), Story: g.story()}
		if g.rnd.Intn(2) == 0 {
			c.Parent = g.comment().Ref()
		}
		return c
	case KindSubmit:
		id := g.fresh()
		return Submit{ID: id, User: g.user(), Title: fmt.Sprintf("benchmark story %s", id)}
	case KindLogin:
		return Login{User: g.user()}
	case KindLogout:
		return Logout{User: g.user()}
	default:
		return Frontpage{}
	}
}

func (g *Generator) pickKind() Kind {
	n := g.rnd.Intn(g.total)
	for _, w := range defaultMix {
		if n < w.weight {
			return w.kind
		}
		n -= w.weight
	}
	return KindFrontpage
}

func (g *Generator) user() UserID {
	return UserID(g.rnd.Intn(g.pop.Users) + 1)
}

func (g *Generator) story() ShortID {
	return FormatShortID(uint64(g.rnd.Intn(g.pop.Stories)))
}

func (g *Generator) comment() ShortID {
	return FormatShortID(uint64(g.rnd.Intn(g.pop.Comments)))
}

func (g *Generator) vote() Vote {
	if g.rnd.Intn(4) == 0 {
		return VoteDown
	}
	return VoteUp
}

func (g *Generator) fresh() ShortID {
	n := (g.freshBase + uint64(g.worker)*freshIDPerWorker + g.seq) % freshIDSpace
	g.seq++
	return FormatShortID(freshIDOffset + n)
}
