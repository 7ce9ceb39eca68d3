package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remora-mod/remora/reddit"
	"github.com/remora-mod/remora/rulemod/countstore"
)

const testCatalog = `{"removalReasons": {"reasons": [
	{"title": "R1 - Spam", "text": "Removed as spam."},
	{"title": "R2 - Off topic", "text": "Removed, off-topic.", "flairText": "Off-topic"},
	{"title": "R3 - No effort", "flairText": "No effort", "flairCSS": "noeffort", "flairTemplateID": "tmpl-3"}
]}}`

func seedScenario(client *MockClient) {
	client.Moderators = []string{"somemod"}
	client.WikiPages[CatalogWikiPage] = testCatalog
	client.Comments["t1_trig"] = &reddit.Comment{
		ID:        "t1_trig",
		Author:    "somemod",
		Body:      "!rule 2 thanks",
		Permalink: "/r/testsub/comments/post1/x/trig",
	}
	client.Posts["t3_post1"] = &reddit.Post{
		ID:        "t3_post1",
		Author:    "someuser",
		Permalink: "/r/testsub/comments/post1",
	}
}

func testEvent() *reddit.CommentSubmitEvent {
	return &reddit.CommentSubmitEvent{
		Comment:   &reddit.EventComment{ID: "t1_trig", Body: "!rule 2 thanks", Permalink: "/r/testsub/comments/post1/x/trig"},
		Post:      &reddit.EventPost{ID: "t3_post1"},
		Author:    &reddit.EventAccount{ID: "t2_somemod", Name: "somemod"},
		Subreddit: &reddit.EventSubreddit{ID: "t5_aaaa", Name: "testsub"},
	}
}

func TestEngineEndToEnd(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, client, _ := EngineTestFixture()
	seedScenario(client)

	require.NoError(t, eng.ProcessCommentSubmit(ctx, testEvent()))

	assert.True(client.Comments["t1_trig"].Removed, "trigger comment consumed")
	assert.True(client.Posts["t3_post1"].Removed, "post removed")

	require.Len(t, client.FlairCalls, 1)
	assert.Equal("Off-topic", client.FlairCalls[0].Text)
	assert.Equal("t3_post1", client.FlairCalls[0].PostID)
	assert.Equal("testsub", client.FlairCalls[0].Subreddit)

	stickies := client.CommentsOnPost["t3_post1"]
	require.Len(t, stickies, 1)
	explain := client.Comments[stickies[0]]
	assert.Equal("Removed, off-topic.", explain.Body)
	assert.True(explain.Stickied)

	n, err := eng.Counters.GetCount(ctx, "removals", "somemod", countstore.PeriodTotal)
	require.NoError(t, err)
	assert.Equal(1, n)
}

func TestEngineMalformedEvent(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, client, _ := EngineTestFixture()
	seedScenario(client)

	for _, evt := range []*reddit.CommentSubmitEvent{
		nil,
		{},
		{Comment: testEvent().Comment},
		{Comment: testEvent().Comment, Post: testEvent().Post, Author: testEvent().Author},
	} {
		assert.NoError(eng.ProcessCommentSubmit(ctx, evt))
	}
	assert.False(client.Comments["t1_trig"].Removed)
	assert.False(client.Posts["t3_post1"].Removed)
}

func TestEngineIgnoredAccounts(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, client, _ := EngineTestFixture()
	seedScenario(client)
	client.Comments["t1_trig"].Author = "AutoModerator"

	evt := testEvent()
	evt.Author = &reddit.EventAccount{ID: "t2_automod", Name: "AutoModerator"}
	assert.NoError(eng.ProcessCommentSubmit(ctx, evt))
	assert.False(client.Posts["t3_post1"].Removed)

	// the app's own comments are skipped too
	seedScenario(client)
	evt = testEvent()
	evt.Author.ID = eng.AppAccountID
	assert.NoError(eng.ProcessCommentSubmit(ctx, evt))
	assert.False(client.Posts["t3_post1"].Removed)
}

func TestEngineFeatureDisabled(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, client, settings := EngineTestFixture()
	seedScenario(client)
	settings.Values[SettingEnabled] = "false"

	assert.NoError(eng.ProcessCommentSubmit(ctx, testEvent()))
	assert.False(client.Comments["t1_trig"].Removed)
	assert.False(client.Posts["t3_post1"].Removed)
}

func TestEngineNoTriggerPrefix(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, client, _ := EngineTestFixture()
	seedScenario(client)
	client.Comments["t1_trig"].Body = "nice post, thanks for sharing"

	assert.NoError(eng.ProcessCommentSubmit(ctx, testEvent()))
	assert.False(client.Comments["t1_trig"].Removed)
	assert.False(client.Posts["t3_post1"].Removed)
}

func TestEngineTriggerPrefixCaseInsensitive(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, client, _ := EngineTestFixture()
	seedScenario(client)
	client.Comments["t1_trig"].Body = "!Rule 2"

	assert.NoError(eng.ProcessCommentSubmit(ctx, testEvent()))
	assert.True(client.Posts["t3_post1"].Removed)
}

func TestEngineSkipApprovedPost(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, client, settings := EngineTestFixture()
	seedScenario(client)
	settings.Values[SettingSkipApproved] = "true"
	client.Posts["t3_post1"].Approved = true

	require.NoError(t, eng.ProcessCommentSubmit(ctx, testEvent()))

	// the trigger comment was already consumed before the approval check; that
	// is accepted, not rolled back
	assert.True(client.Comments["t1_trig"].Removed)
	assert.False(client.Posts["t3_post1"].Removed)

	require.Len(t, client.Messages, 1)
	assert.Equal("somemod", client.Messages[0].To)
	assert.Equal("Post removal failed on testsub!", client.Messages[0].Subject)
	assert.Contains(client.Messages[0].Text, "/r/testsub/comments/post1/x/trig")
}

func TestEngineUnauthorized(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, client, _ := EngineTestFixture()
	seedScenario(client)
	client.Comments["t1_trig"].Author = "someuser"
	client.Flair["someuser"] = "12"

	evt := testEvent()
	evt.Author = &reddit.EventAccount{ID: "t2_someuser", Name: "someuser"}

	require.NoError(t, eng.ProcessCommentSubmit(ctx, evt))

	// trigger consumed, but no removal and no notification
	assert.True(client.Comments["t1_trig"].Removed)
	assert.False(client.Posts["t3_post1"].Removed)
	assert.Empty(client.Messages)
}

func TestEngineScoreQualified(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, client, _ := EngineTestFixture()
	seedScenario(client)
	client.Comments["t1_trig"].Author = "someuser"
	client.Flair["someuser"] = "2485"

	evt := testEvent()
	evt.Author = &reddit.EventAccount{ID: "t2_someuser", Name: "someuser"}

	require.NoError(t, eng.ProcessCommentSubmit(ctx, evt))
	assert.True(client.Posts["t3_post1"].Removed)
}

func TestEngineUnknownRuleCode(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, client, _ := EngineTestFixture()
	seedScenario(client)
	client.Comments["t1_trig"].Body = "!rule 9"

	assert.NoError(eng.ProcessCommentSubmit(ctx, testEvent()))
	assert.True(client.Comments["t1_trig"].Removed)
	assert.False(client.Posts["t3_post1"].Removed)
}

func TestEngineBareTrigger(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, client, _ := EngineTestFixture()
	seedScenario(client)
	client.Comments["t1_trig"].Body = "!rule"

	assert.NoError(eng.ProcessCommentSubmit(ctx, testEvent()))
	assert.False(client.Posts["t3_post1"].Removed)
}

func TestEngineMalformedCatalog(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, client, _ := EngineTestFixture()
	seedScenario(client)
	client.WikiPages[CatalogWikiPage] = "# just some markdown, not toolbox data"

	assert.NoError(eng.ProcessCommentSubmit(ctx, testEvent()))
	assert.False(client.Posts["t3_post1"].Removed)
}

func TestEngineFlairTemplatePrecedence(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, client, _ := EngineTestFixture()
	seedScenario(client)
	client.Comments["t1_trig"].Body = "!rule 3"

	require.NoError(t, eng.ProcessCommentSubmit(ctx, testEvent()))
	require.Len(t, client.FlairCalls, 1)
	assert.Equal("tmpl-3", client.FlairCalls[0].TemplateID)
	assert.Equal("", client.FlairCalls[0].CSSClass, "template id discards the CSS class")
	assert.Equal("No effort", client.FlairCalls[0].Text)
}

func TestEngineRepeatTriggerNoDuplicateSticky(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, client, _ := EngineTestFixture()
	seedScenario(client)

	require.NoError(t, eng.ProcessCommentSubmit(ctx, testEvent()))
	require.Len(t, client.CommentsOnPost["t3_post1"], 1)

	// a second valid trigger on the same post: the removal is re-issued
	// (remove is naturally idempotent) but no second sticky is posted
	client.Comments["t1_trig2"] = &reddit.Comment{
		ID:     "t1_trig2",
		Author: "somemod",
		Body:   "!rule 2",
	}
	evt := testEvent()
	evt.Comment = &reddit.EventComment{ID: "t1_trig2", Body: "!rule 2"}

	require.NoError(t, eng.ProcessCommentSubmit(ctx, evt))
	assert.True(client.Posts["t3_post1"].Removed)
	assert.Len(client.CommentsOnPost["t3_post1"], 1, "no duplicate sticky")
}

func TestEngineSubredditNameCached(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, _, _ := EngineTestFixture()

	name, err := eng.subredditName(ctx)
	require.NoError(t, err)
	assert.Equal("testsub", name)

	// second resolution comes from the cache
	cached, err := eng.Cache.Get(ctx, "config", "subredditname")
	require.NoError(t, err)
	assert.Equal("testsub", cached)
}
