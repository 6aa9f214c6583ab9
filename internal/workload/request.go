// Package workload defines the lobste.rs operation set and the contract a
// benchmark driver uses to execute it.
package workload

import "context"

// UserID identifies a synthetic user of the benchmark population.
type UserID uint32

// ShortID is the short textual identifier lobste.rs uses for stories and comments.
type ShortID string

// Ref returns a pointer to a copy of id, for optional references such as
// Comment.Parent.
func (id ShortID) Ref() *ShortID { return &id }

// Vote is the direction of a story or comment vote.
type Vote int

const (
	VoteUp Vote = iota
	VoteDown
)

func (v Vote) String() string {
	if v == VoteDown {
		return "down"
	}
	return "up"
}

// Kind names an operation variant for metrics and tracing.
type Kind string

const (
	KindFrontpage   Kind = "frontpage"
	KindRecent      Kind = "recent"
	KindLogin       Kind = "login"
	KindLogout      Kind = "logout"
	KindStory       Kind = "story"
	KindStoryVote   Kind = "story_vote"
	KindCommentVote Kind = "comment_vote"
	KindSubmit      Kind = "submit"
	KindComment     Kind = "comment"
)

// Kinds lists every operation variant.
var Kinds = []Kind{
	KindFrontpage, KindRecent, KindLogin, KindLogout, KindStory,
	KindStoryVote, KindCommentVote, KindSubmit, KindComment,
}

// Request is one abstract lobste.rs operation. The set of implementations is
// closed; only types in this package satisfy it.
type Request interface {
	Kind() Kind
	isRequest()
}

type Frontpage struct{}

type Recent struct{}

// Login and Logout are accepted but carry no wire behaviour; sessions are
// established lazily on first authenticated use.
type Login struct{ User UserID }

type Logout struct{ User UserID }

type Story struct{ ID ShortID }

type StoryVote struct {
	User  UserID
	Story ShortID
	Vote  Vote
}

type CommentVote struct {
	User    UserID
	Comment ShortID
	Vote    Vote
}

type Submit struct {
	ID    ShortID
	User  UserID
	Title string
}

// Comment posts a comment on Story. Parent is nil for top-level comments.
type Comment struct {
	ID     ShortID
	User   UserID
	Story  ShortID
	Parent *ShortID
}

func (Frontpage) Kind() Kind   { return KindFrontpage }
func (Recent) Kind() Kind      { return KindRecent }
func (Login) Kind() Kind       { return KindLogin }
func (Logout) Kind() Kind      { return KindLogout }
func (Story) Kind() Kind       { return KindStory }
func (StoryVote) Kind() Kind   { return KindStoryVote }
func (CommentVote) Kind() Kind { return KindCommentVote }
func (Submit) Kind() Kind      { return KindSubmit }
func (Comment) Kind() Kind     { return KindComment }

func (Frontpage) isRequest()   {}
func (Recent) isRequest()      {}
func (Login) isRequest()       {}
func (Logout) isRequest()      {}
func (Story) isRequest()       {}
func (StoryVote) isRequest()   {}
func (CommentVote) isRequest() {}
func (Submit) isRequest()      {}
func (Comment) isRequest()     {}

// Client executes operations one at a time against a target. A Client is
// owned by a single worker and is not safe for concurrent use.
type Client interface {
	Handle(ctx context.Context, req Request) error
}

// Issuer produces one independent Client per worker.
type Issuer interface {
	Spawn() Client
}
