// Client for the subset of the Reddit data API the removal engine needs.
//
// The engine consumes the Client interface; APIClient is the real OAuth
// implementation, and tests substitute their own.
package reddit

import (
	"context"
)

type Client interface {
	// reads
	Comment(ctx context.Context, id string) (*Comment, error)
	Post(ctx context.Context, id string) (*Post, error)
	AccountByName(ctx context.Context, username string) (*Account, error)
	// canonical display name of the subreddit this client is bound to
	CurrentSubreddit(ctx context.Context) (*Subreddit, error)
	IsModerator(ctx context.Context, subreddit, username string) (bool, error)
	UserFlairText(ctx context.Context, subreddit, username string) (string, error)
	WikiPage(ctx context.Context, subreddit, page string) (*WikiPage, error)
	PostComments(ctx context.Context, postID string) ([]*Comment, error)

	// mutations
	RemoveComment(ctx context.Context, id string) error
	RemovePost(ctx context.Context, id string) error
	SetPostFlair(ctx context.Context, subreddit, postID, text, cssClass, templateID string) error
	SubmitComment(ctx context.Context, parentID, text string) (*Comment, error)
	DistinguishSticky(ctx context.Context, commentID string) error
	Lock(ctx context.Context, id string) error
	SendMessage(ctx context.Context, to, subject, text string) error
}
