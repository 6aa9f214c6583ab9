package lobsters

import (
	"fmt"
	"net/http"

	"github.com/torosent/lobsters-trawler/internal/httpclient"
	"github.com/torosent/lobsters-trawler/internal/workload"
)

const (
	submitTag         = "benchmark"
	submitDescription = "to infinity"
	commentBody       = "moar benchmarking"
	utf8Marker        = "✓"
)

// call is the wire form of one operation.
type call struct {
	kind     workload.Kind
	spec     httpclient.Spec
	user     workload.UserID
	authed   bool
	expected int
}

// translate maps req onto its request. ok is false for operations that send
// nothing.
func translate(req workload.Request) (c call, ok bool, err error) {
	if req == nil {
		return call{}, false, fmt.Errorf("%w: nil request", ErrConfig)
	}
	c = call{kind: req.Kind(), expected: http.StatusOK}
	c.spec.Method = http.MethodGet

	switch r := req.(type) {
	case workload.Frontpage:
	case workload.Recent:
		c.spec.Path = "recent"
	case workload.Story:
		c.spec.Path = "s/" + string(r.ID)
	case workload.Login, workload.Logout:
		return call{}, false, nil
	case workload.StoryVote:
		c.spec.Method = http.MethodPost
		c.spec.Path = "stories/" + string(r.Story) + "/" + voteSegment(r.Vote)
		c.user, c.authed = r.User, true
	case workload.CommentVote:
		c.spec.Method = http.MethodPost
		c.spec.Path = "comments/" + string(r.Comment) + "/" + voteSegment(r.Vote)
		c.user, c.authed = r.User, true
	case workload.Submit:
		form := &httpclient.Form{}
		form.Add("commit", "Submit")
		form.Add("story[short_id]", string(r.ID))
		form.Add("story[tags_a][]", submitTag)
		form.Add("story[title]", r.Title)
		form.Add("story[description]", submitDescription)
		form.Add("utf8", utf8Marker)
		c.spec = httpclient.Spec{Method: http.MethodPost, Path: "stories", Form: form}
		c.user, c.authed = r.User, true
		c.expected = http.StatusFound
	case workload.Comment:
		form := &httpclient.Form{}
		form.Add("short_id", string(r.ID))
		form.Add("comment", commentBody)
		if r.Parent != nil {
			form.Add("parent_comment_short_id", string(*r.Parent))
		}
		form.Add("story_id", string(r.Story))
		form.Add("utf8", utf8Marker)
		c.spec = httpclient.Spec{Method: http.MethodPost, Path: "comments", Form: form}
		c.user, c.authed = r.User, true
	default:
		return call{}, false, fmt.Errorf("%w: unsupported request %T", ErrConfig, req)
	}
	return c, true, nil
}

// voteSegment maps a vote direction onto its path segment. lobste.rs models a
// down vote as retracting the up vote.
func voteSegment(v workload.Vote) string {
	if v == workload.VoteDown {
		return "unvote"
	}
	return "upvote"
}
