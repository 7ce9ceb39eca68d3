package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/remora-mod/remora/reddit"
	"github.com/remora-mod/remora/rulemod/cachestore"
	"github.com/remora-mod/remora/rulemod/countstore"
	"github.com/remora-mod/remora/rulemod/settingstore"
)

// Scripted stand-in for the platform API, for tests and local development.
// Reads come from the seeded maps; mutations update them in place, so a test
// can assert on resulting state (and repeated triggers see the effects of the
// first run).
type MockClient struct {
	lk sync.Mutex

	Subreddit  reddit.Subreddit
	Comments   map[string]*reddit.Comment
	Posts      map[string]*reddit.Post
	Moderators []string
	// username -> flair text
	Flair map[string]string
	// page name -> raw content
	WikiPages map[string]string
	// post fullname -> comment fullnames
	CommentsOnPost map[string][]string

	// recorded mutations
	FlairCalls []MockFlairCall
	Messages   []MockMessage

	nextID int
}

type MockFlairCall struct {
	Subreddit  string
	PostID     string
	Text       string
	CSSClass   string
	TemplateID string
}

type MockMessage struct {
	To      string
	Subject string
	Text    string
}

func NewMockClient() *MockClient {
	return &MockClient{
		Subreddit:      reddit.Subreddit{ID: "t5_aaaa", Name: "testsub"},
		Comments:       make(map[string]*reddit.Comment),
		Posts:          make(map[string]*reddit.Post),
		Flair:          make(map[string]string),
		WikiPages:      make(map[string]string),
		CommentsOnPost: make(map[string][]string),
	}
}

var _ reddit.Client = (*MockClient)(nil)

func (m *MockClient) Comment(ctx context.Context, id string) (*reddit.Comment, error) {
	m.lk.Lock()
	defer m.lk.Unlock()
	c, ok := m.Comments[id]
	if !ok {
		return nil, fmt.Errorf("comment not found: %s", id)
	}
	out := *c
	return &out, nil
}

func (m *MockClient) Post(ctx context.Context, id string) (*reddit.Post, error) {
	m.lk.Lock()
	defer m.lk.Unlock()
	p, ok := m.Posts[id]
	if !ok {
		return nil, fmt.Errorf("post not found: %s", id)
	}
	out := *p
	return &out, nil
}

func (m *MockClient) AccountByName(ctx context.Context, username string) (*reddit.Account, error) {
	return &reddit.Account{ID: "t2_" + strings.ToLower(username), Name: username}, nil
}

func (m *MockClient) CurrentSubreddit(ctx context.Context) (*reddit.Subreddit, error) {
	out := m.Subreddit
	return &out, nil
}

func (m *MockClient) IsModerator(ctx context.Context, subreddit, username string) (bool, error) {
	for _, mod := range m.Moderators {
		if strings.EqualFold(mod, username) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockClient) UserFlairText(ctx context.Context, subreddit, username string) (string, error) {
	return m.Flair[username], nil
}

func (m *MockClient) WikiPage(ctx context.Context, subreddit, page string) (*reddit.WikiPage, error) {
	raw, ok := m.WikiPages[page]
	if !ok {
		return nil, fmt.Errorf("wiki page not found: %s", page)
	}
	return &reddit.WikiPage{Name: page, Content: raw}, nil
}

func (m *MockClient) PostComments(ctx context.Context, postID string) ([]*reddit.Comment, error) {
	m.lk.Lock()
	defer m.lk.Unlock()
	var out []*reddit.Comment
	for _, id := range m.CommentsOnPost[postID] {
		if c, ok := m.Comments[id]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockClient) RemoveComment(ctx context.Context, id string) error {
	m.lk.Lock()
	defer m.lk.Unlock()
	c, ok := m.Comments[id]
	if !ok {
		return fmt.Errorf("comment not found: %s", id)
	}
	c.Removed = true
	return nil
}

func (m *MockClient) RemovePost(ctx context.Context, id string) error {
	m.lk.Lock()
	defer m.lk.Unlock()
	p, ok := m.Posts[id]
	if !ok {
		return fmt.Errorf("post not found: %s", id)
	}
	p.Removed = true
	return nil
}

func (m *MockClient) SetPostFlair(ctx context.Context, subreddit, postID, text, cssClass, templateID string) error {
	m.lk.Lock()
	defer m.lk.Unlock()
	m.FlairCalls = append(m.FlairCalls, MockFlairCall{
		Subreddit: subreddit, PostID: postID, Text: text, CSSClass: cssClass, TemplateID: templateID,
	})
	return nil
}

func (m *MockClient) SubmitComment(ctx context.Context, parentID, text string) (*reddit.Comment, error) {
	m.lk.Lock()
	defer m.lk.Unlock()
	m.nextID++
	c := &reddit.Comment{
		ID:     fmt.Sprintf("t1_mock%d", m.nextID),
		Author: "remora-bot",
		Body:   text,
	}
	m.Comments[c.ID] = c
	m.CommentsOnPost[parentID] = append(m.CommentsOnPost[parentID], c.ID)
	out := *c
	return &out, nil
}

func (m *MockClient) DistinguishSticky(ctx context.Context, commentID string) error {
	m.lk.Lock()
	defer m.lk.Unlock()
	c, ok := m.Comments[commentID]
	if !ok {
		return fmt.Errorf("comment not found: %s", commentID)
	}
	c.Stickied = true
	return nil
}

func (m *MockClient) Lock(ctx context.Context, id string) error {
	return nil
}

func (m *MockClient) SendMessage(ctx context.Context, to, subject, text string) error {
	m.lk.Lock()
	defer m.lk.Unlock()
	m.Messages = append(m.Messages, MockMessage{To: to, Subject: subject, Text: text})
	return nil
}

func EngineTestFixture() (*Engine, *MockClient, settingstore.MemSettingsStore) {
	client := NewMockClient()
	settings := settingstore.NewMemSettingsStore()
	eng := &Engine{
		Logger:         slog.Default(),
		Client:         client,
		Settings:       settings,
		Cache:          cachestore.NewMemCacheStore(10, time.Hour),
		Counters:       countstore.NewMemCountStore(),
		AppAccountID:   "t2_remorabot",
		IgnoreAccounts: []string{"AutoModerator"},
	}
	return eng, client, settings
}
