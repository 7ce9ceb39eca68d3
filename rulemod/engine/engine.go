package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/remora-mod/remora/reddit"
	"github.com/remora-mod/remora/rulemod/cachestore"
	"github.com/remora-mod/remora/rulemod/catalog"
	"github.com/remora-mod/remora/rulemod/countstore"
	"github.com/remora-mod/remora/rulemod/settingstore"
)

// The subreddit display name almost never changes; cache it for a week and
// fall back to a live lookup on a cold start.
const SubredditNameTTL = 7 * 24 * time.Hour

// wiki page holding the removal reason catalog
const CatalogWikiPage = "toolbox"

// Runtime for processing comment events and carrying out rule-triggered post
// removals.
//
// TODO: careful when initializing: several fields should not be null or zero, even though they are pointer type.
type Engine struct {
	Logger   *slog.Logger
	Client   reddit.Client
	Settings settingstore.SettingsStore
	Cache    cachestore.CacheStore
	Counters countstore.CountStore
	// optional ops notifications on each removal
	Notifier Notifier

	// account fullname (t2_*) the service itself posts as; its own comments
	// are never processed
	AppAccountID string
	// usernames whose comments are dropped before any processing (eg
	// AutoModerator), to keep log noise down
	IgnoreAccounts []string
}

// Handles one new-comment event delivered by the hosting platform. Runs the
// full pipeline to a terminal state: either the post is removed and disposed,
// or the event is dropped.
//
// Recognized conditions (malformed event, feature disabled, no trigger prefix,
// unauthorized user, unknown rule code, ...) end processing locally and return
// nil. Only platform call failures return an error, for the host to surface
// or retry; side effects already committed before such a failure (eg the
// trigger comment removal) are not rolled back.
func (eng *Engine) ProcessCommentSubmit(ctx context.Context, evt *reddit.CommentSubmitEvent) error {
	eventProcessCount.Inc()
	start := time.Now()
	defer func() {
		duration := time.Since(start)
		eventProcessDuration.Observe(duration.Seconds())
	}()
	// similar to an HTTP server, we want to recover any panics from event processing
	defer func() {
		if r := recover(); r != nil {
			eng.Logger.Error("event processing exception", "err", r)
		}
	}()

	if evt == nil || evt.Comment == nil || evt.Post == nil || evt.Author == nil || evt.Subreddit == nil {
		eng.Logger.Error("event missing required references")
		eventAbortCount.WithLabelValues("malformed").Inc()
		return nil
	}

	comment, err := eng.Client.Comment(ctx, evt.Comment.ID)
	if err != nil {
		eventErrorCount.Inc()
		return fmt.Errorf("fetching trigger comment: %w", err)
	}

	// drop automated accounts and our own comments before anything gets logged
	if slices.Contains(eng.IgnoreAccounts, comment.Author) || evt.Author.ID == eng.AppAccountID {
		eventAbortCount.WithLabelValues("ignored").Inc()
		return nil
	}

	settings, err := LoadSettings(ctx, eng.Settings)
	if err != nil {
		eventErrorCount.Inc()
		return fmt.Errorf("loading settings: %w", err)
	}

	c := &EventContext{
		Ctx:      ctx,
		Logger:   eng.Logger.With("comment", comment.ID, "author", evt.Author.Name),
		Settings: settings,
		Comment:  comment,
		Username: evt.Author.Name,
	}
	c.Verbose("triggered by comment")

	if !settings.Enabled {
		c.Verbose("rule-triggered removal not enabled")
		eventAbortCount.WithLabelValues("disabled").Inc()
		return nil
	}

	if !strings.HasPrefix(strings.ToLower(comment.Body), strings.ToLower(settings.CommentPrefix)) {
		c.Verbose("no trigger prefix")
		eventAbortCount.WithLabelValues("no-prefix").Inc()
		return nil
	}
	c.Logger.Info("found comment with removal trigger")

	// consume the trigger so it can't be re-processed or left visible
	if !comment.Removed {
		if err := eng.Client.RemoveComment(ctx, comment.ID); err != nil {
			eventErrorCount.Inc()
			return fmt.Errorf("removing trigger comment: %w", err)
		}
		c.Verbose("trigger comment removed")
	}

	subreddit, err := eng.subredditName(ctx)
	if err != nil {
		eventErrorCount.Inc()
		return fmt.Errorf("resolving subreddit name: %w", err)
	}
	c.Subreddit = subreddit
	c.Logger = c.Logger.With("subreddit", subreddit)

	post, err := eng.Client.Post(ctx, evt.Post.ID)
	if err != nil {
		eventErrorCount.Inc()
		return fmt.Errorf("fetching target post: %w", err)
	}
	c.Post = post

	if settings.SkipApprovedPosts && post.Approved {
		c.Logger.Info("post already mod approved, skipping")
		eventAbortCount.WithLabelValues("approved").Inc()
		subject := fmt.Sprintf("Post removal failed on %s!", subreddit)
		body := fmt.Sprintf("The [post you tried to remove](%s) was already approved by a moderator.", comment.Permalink)
		if err := eng.Client.SendMessage(ctx, c.Username, subject, body); err != nil {
			eventErrorCount.Inc()
			return fmt.Errorf("notifying user of skipped post: %w", err)
		}
		actionNoticeCount.Inc()
		return nil
	}

	authz, err := eng.authorize(c)
	if err != nil {
		eventErrorCount.Inc()
		return fmt.Errorf("evaluating authorization: %w", err)
	}
	if !authz.Authorized() {
		// silent: don't reveal trigger mechanics to unauthorized users
		c.Verbose("user not authorized for rule-triggered removal")
		eventAbortCount.WithLabelValues("unauthorized").Inc()
		return nil
	}
	c.Verbose("user authorized", "reason", string(authz))

	code := extractShortCode(comment.Body, settings.CommentPrefix)
	if code == "" {
		c.Logger.Info("trigger has no rule code")
		eventAbortCount.WithLabelValues("empty-code").Inc()
		return nil
	}
	c.Verbose("extracted rule code", "code", code)

	page, err := eng.Client.WikiPage(ctx, subreddit, CatalogWikiPage)
	if err != nil {
		eventErrorCount.Inc()
		return fmt.Errorf("fetching removal reason catalog: %w", err)
	}
	cat, err := catalog.Parse(page.Content)
	if err != nil {
		c.Logger.Error("malformed removal reason catalog", "err", err)
		eventAbortCount.WithLabelValues("catalog").Inc()
		return nil
	}
	reason, err := cat.Resolve(code, settings.RulePrefix)
	if err != nil {
		// most likely a typo in the trigger; the user can retry
		c.Logger.Info("no removal reason matched", "code", code, "err", err)
		eventAbortCount.WithLabelValues("rule-not-found").Inc()
		return nil
	}
	c.Verbose("resolved removal reason", "rule", reason.Title)

	if err := eng.dispose(c, reason); err != nil {
		eventErrorCount.Inc()
		return err
	}
	c.Logger.Info("post removed", "post", post.ID, "rule", reason.Title, "authz", string(authz))
	return nil
}

// First whitespace-delimited token of the comment body, minus the trigger
// prefix (matched case-insensitively). Empty when the comment is just the bare
// prefix.
func extractShortCode(body, prefix string) string {
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return ""
	}
	tok := fields[0]
	if len(tok) >= len(prefix) && strings.EqualFold(tok[:len(prefix)], prefix) {
		tok = tok[len(prefix):]
	}
	return tok
}

func (eng *Engine) authorize(c *EventContext) (AuthzReason, error) {
	return evaluateAuthorization(
		c.Username,
		func(username string) (bool, error) {
			return eng.Client.IsModerator(c.Ctx, c.Subreddit, username)
		},
		c.Settings.AllowList,
		c.Settings.PointsThreshold,
		func(username string) (int64, error) {
			flair, err := eng.Client.UserFlairText(c.Ctx, c.Subreddit, username)
			if err != nil {
				return 0, err
			}
			return ScoreFromFlair(flair), nil
		},
	)
}

// Applies the removal and the reason's configured side effects. The post
// removal is unconditional: that is the point of the whole pipeline. Flair and
// the explanation comment follow independently.
func (eng *Engine) dispose(c *EventContext, reason *catalog.RemovalReason) error {
	ctx := c.Ctx
	disp := DispositionFromReason(reason)

	if err := eng.Client.RemovePost(ctx, c.Post.ID); err != nil {
		return fmt.Errorf("removing post: %w", err)
	}
	actionRemovalCount.Inc()
	c.Verbose("post removed")

	// usage accounting; best-effort
	if err := eng.Counters.Increment(ctx, "removals", strings.ToLower(c.Username)); err != nil {
		c.Logger.Warn("failed to increment removal counter", "err", err)
	}

	if disp.HasFlair() {
		c.Logger.Info("setting post flair", "text", disp.FlairText, "template", disp.FlairTemplateID)
		if err := eng.Client.SetPostFlair(ctx, c.Subreddit, c.Post.ID, disp.FlairText, disp.FlairCSSClass, disp.FlairTemplateID); err != nil {
			return fmt.Errorf("setting post flair: %w", err)
		}
		actionFlairCount.Inc()
	}

	if disp.ExplainText != "" {
		if err := eng.stickyExplanation(c, disp.ExplainText); err != nil {
			return err
		}
	}

	if eng.Notifier != nil {
		if err := eng.Notifier.SendRemoval(ctx, c, reason); err != nil {
			c.Logger.Warn("failed to send removal notification", "err", err)
		}
	}
	return nil
}

// Posts the explanation as a distinguished-sticky, locked comment, unless a
// stickied comment is already present (repeated triggers must not stack
// stickies).
func (eng *Engine) stickyExplanation(c *EventContext, text string) error {
	ctx := c.Ctx

	comments, err := eng.Client.PostComments(ctx, c.Post.ID)
	if err != nil {
		return fmt.Errorf("listing post comments: %w", err)
	}
	for _, existing := range comments {
		if existing.Stickied {
			c.Verbose("post already has a stickied comment", "sticky", existing.ID)
			return nil
		}
	}

	newComment, err := eng.Client.SubmitComment(ctx, c.Post.ID, text)
	if err != nil {
		return fmt.Errorf("posting removal explanation: %w", err)
	}

	// independent mutations of the comment we just created; ordering between
	// them isn't observable
	var eg errgroup.Group
	eg.Go(func() error { return eng.Client.DistinguishSticky(ctx, newComment.ID) })
	eg.Go(func() error { return eng.Client.Lock(ctx, newComment.ID) })
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("distinguishing removal explanation: %w", err)
	}
	actionStickyCount.Inc()
	c.Logger.Info("removal explanation stickied", "comment", newComment.ID)
	return nil
}

// Read-through lookup of the subreddit display name. Cache trouble degrades to
// a live lookup; both invocations of a concurrent miss may write back, which
// is fine since the value is immutable in practice.
func (eng *Engine) subredditName(ctx context.Context) (string, error) {
	name, err := eng.Cache.Get(ctx, "config", "subredditname")
	if err != nil {
		eng.Logger.Warn("subreddit name cache read failed", "err", err)
	}
	if name != "" {
		return name, nil
	}
	sub, err := eng.Client.CurrentSubreddit(ctx)
	if err != nil {
		return "", err
	}
	if err := eng.Cache.Set(ctx, "config", "subredditname", sub.Name); err != nil {
		eng.Logger.Warn("subreddit name cache write failed", "err", err)
	}
	return sub.Name, nil
}
