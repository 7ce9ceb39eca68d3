package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Implements Client against the real Reddit OAuth API, authenticating as a
// "script" type app (password grant). One client is bound to one subreddit.
//
// All calls share a client-side rate limiter; Reddit enforces a per-token
// request budget and the retryablehttp transport only papers over occasional
// 429s, it is not a substitute for pacing.
type APIClient struct {
	// bound subreddit, as configured (not necessarily canonical case)
	Subreddit string

	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	userAgent  string

	authHost string
	apiHost  string

	clientID     string
	clientSecret string
	username     string
	password     string

	tokenLk     sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

type APIClientConfig struct {
	Subreddit    string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
	// requests per second against the API host
	RateLimit float64
	Logger    *slog.Logger

	// overridable for tests
	AuthHost string
	APIHost  string
}

func NewAPIClient(config APIClientConfig) *APIClient {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = "remora/0 (rule-triggered post removal)"
	}
	authHost := config.AuthHost
	if authHost == "" {
		authHost = "https://www.reddit.com"
	}
	apiHost := config.APIHost
	if apiHost == "" {
		apiHost = "https://oauth.reddit.com"
	}
	limit := config.RateLimit
	if limit <= 0 {
		limit = 1.0
	}
	return &APIClient{
		Subreddit:    config.Subreddit,
		httpClient:   RobustHTTPClient(logger),
		limiter:      rate.NewLimiter(rate.Limit(limit), 3),
		logger:       logger,
		userAgent:    userAgent,
		authHost:     authHost,
		apiHost:      apiHost,
		clientID:     config.ClientID,
		clientSecret: config.ClientSecret,
		username:     config.Username,
		password:     config.Password,
	}
}

var _ Client = (*APIClient)(nil)

type tokenResp struct {
	AccessToken string  `json:"access_token"`
	ExpiresIn   float64 `json:"expires_in"`
	Error       string  `json:"error"`
}

func (c *APIClient) token(ctx context.Context) (string, error) {
	c.tokenLk.Lock()
	defer c.tokenLk.Unlock()

	// refresh a minute early so in-flight requests don't race expiry
	if c.accessToken != "" && time.Until(c.tokenExpiry) > time.Minute {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", c.username)
	form.Set("password", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authHost+"/api/v1/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching access token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("access token request failed: status %d", resp.StatusCode)
	}

	var tok tokenResp
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("parsing access token response: %w", err)
	}
	if tok.Error != "" || tok.AccessToken == "" {
		return "", fmt.Errorf("access token request rejected: %s", tok.Error)
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	c.logger.Debug("refreshed reddit API token", "expiry", c.tokenExpiry)
	return c.accessToken, nil
}

// Single round-trip against the OAuth API host. GET when form is nil,
// otherwise a form-encoded POST. Decodes the response body into out, unless
// out is nil.
func (c *APIClient) do(ctx context.Context, path string, query url.Values, form url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	tok, err := c.token(ctx)
	if err != nil {
		return err
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("raw_json", "1")
	u := c.apiHost + path + "?" + query.Encode()

	method := http.MethodGet
	var body io.Reader
	if form != nil {
		method = http.MethodPost
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("User-Agent", c.userAgent)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("reddit API request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reddit API request failed: %s status %d", path, resp.StatusCode)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing reddit API response: %w", err)
	}
	return nil
}

// generic "kind"/"data" envelope
type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type listingData struct {
	Children []thing `json:"children"`
}

type commentData struct {
	Name      string          `json:"name"`
	Author    string          `json:"author"`
	Body      string          `json:"body"`
	Permalink string          `json:"permalink"`
	Removed   bool            `json:"removed"`
	BannedBy  json.RawMessage `json:"banned_by"`
	Stickied  bool            `json:"stickied"`
}

type postData struct {
	Name       string          `json:"name"`
	Author     string          `json:"author"`
	Title      string          `json:"title"`
	Permalink  string          `json:"permalink"`
	Approved   bool            `json:"approved"`
	ApprovedBy json.RawMessage `json:"approved_by"`
	Removed    bool            `json:"removed"`
	BannedBy   json.RawMessage `json:"banned_by"`
}

// Several legacy moderation fields are a username string for actioned things,
// and null or boolean false otherwise.
func isUserString(raw json.RawMessage) bool {
	return len(raw) > 0 && raw[0] == '"'
}

func (d *commentData) comment() *Comment {
	return &Comment{
		ID:        d.Name,
		Author:    d.Author,
		Body:      d.Body,
		Permalink: d.Permalink,
		Removed:   d.Removed || isUserString(d.BannedBy),
		Stickied:  d.Stickied,
	}
}

func (d *postData) post() *Post {
	return &Post{
		ID:        d.Name,
		Author:    d.Author,
		Title:     d.Title,
		Permalink: d.Permalink,
		Approved:  d.Approved || isUserString(d.ApprovedBy),
		Removed:   d.Removed || isUserString(d.BannedBy),
	}
}

// Fetches a single thing by fullname via /api/info.
func (c *APIClient) infoThing(ctx context.Context, fullname, kind string) (json.RawMessage, error) {
	var listing thing
	query := url.Values{}
	query.Set("id", fullname)
	if err := c.do(ctx, "/api/info", query, nil, &listing); err != nil {
		return nil, err
	}
	var data listingData
	if err := json.Unmarshal(listing.Data, &data); err != nil {
		return nil, fmt.Errorf("parsing info listing: %w", err)
	}
	if len(data.Children) == 0 {
		return nil, fmt.Errorf("thing not found: %s", fullname)
	}
	if data.Children[0].Kind != kind {
		return nil, fmt.Errorf("expected thing kind %s, got %s", kind, data.Children[0].Kind)
	}
	return data.Children[0].Data, nil
}

func (c *APIClient) Comment(ctx context.Context, id string) (*Comment, error) {
	raw, err := c.infoThing(ctx, id, KindComment)
	if err != nil {
		return nil, err
	}
	var d commentData
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parsing comment: %w", err)
	}
	return d.comment(), nil
}

func (c *APIClient) Post(ctx context.Context, id string) (*Post, error) {
	raw, err := c.infoThing(ctx, id, KindPost)
	if err != nil {
		return nil, err
	}
	var d postData
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parsing post: %w", err)
	}
	return d.post(), nil
}

func (c *APIClient) AccountByName(ctx context.Context, username string) (*Account, error) {
	var t thing
	if err := c.do(ctx, "/user/"+url.PathEscape(username)+"/about", nil, nil, &t); err != nil {
		return nil, err
	}
	var d struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(t.Data, &d); err != nil {
		return nil, fmt.Errorf("parsing account: %w", err)
	}
	// the about endpoint returns a bare id36
	return &Account{ID: KindAccount + "_" + d.ID, Name: d.Name}, nil
}

func (c *APIClient) CurrentSubreddit(ctx context.Context) (*Subreddit, error) {
	var t thing
	if err := c.do(ctx, "/r/"+url.PathEscape(c.Subreddit)+"/about", nil, nil, &t); err != nil {
		return nil, err
	}
	var d struct {
		Name        string `json:"name"`
		DisplayName string `json:"display_name"`
	}
	if err := json.Unmarshal(t.Data, &d); err != nil {
		return nil, fmt.Errorf("parsing subreddit: %w", err)
	}
	return &Subreddit{ID: d.Name, Name: d.DisplayName}, nil
}

func (c *APIClient) IsModerator(ctx context.Context, subreddit, username string) (bool, error) {
	var resp struct {
		Data struct {
			Children []json.RawMessage `json:"children"`
		} `json:"data"`
	}
	query := url.Values{}
	query.Set("user", username)
	if err := c.do(ctx, "/r/"+url.PathEscape(subreddit)+"/about/moderators", query, nil, &resp); err != nil {
		return false, err
	}
	return len(resp.Data.Children) > 0, nil
}

func (c *APIClient) UserFlairText(ctx context.Context, subreddit, username string) (string, error) {
	var resp struct {
		Users []struct {
			User      string `json:"user"`
			FlairText string `json:"flair_text"`
		} `json:"users"`
	}
	query := url.Values{}
	query.Set("name", username)
	query.Set("limit", "1")
	if err := c.do(ctx, "/r/"+url.PathEscape(subreddit)+"/api/flairlist", query, nil, &resp); err != nil {
		return "", err
	}
	if len(resp.Users) == 0 {
		return "", nil
	}
	return resp.Users[0].FlairText, nil
}

func (c *APIClient) WikiPage(ctx context.Context, subreddit, page string) (*WikiPage, error) {
	var t thing
	if err := c.do(ctx, "/r/"+url.PathEscape(subreddit)+"/wiki/"+url.PathEscape(page), nil, nil, &t); err != nil {
		return nil, err
	}
	var d struct {
		ContentMD string `json:"content_md"`
	}
	if err := json.Unmarshal(t.Data, &d); err != nil {
		return nil, fmt.Errorf("parsing wiki page: %w", err)
	}
	return &WikiPage{Name: page, Content: d.ContentMD}, nil
}

func (c *APIClient) PostComments(ctx context.Context, postID string) ([]*Comment, error) {
	article := strings.TrimPrefix(postID, KindPost+"_")
	query := url.Values{}
	query.Set("depth", "1")
	query.Set("limit", "100")
	// response is a two element array: the post listing, then top-level comments
	var listings []thing
	if err := c.do(ctx, "/comments/"+url.PathEscape(article), query, nil, &listings); err != nil {
		return nil, err
	}
	if len(listings) < 2 {
		return nil, fmt.Errorf("unexpected comments response shape for %s", postID)
	}
	var data listingData
	if err := json.Unmarshal(listings[1].Data, &data); err != nil {
		return nil, fmt.Errorf("parsing comments listing: %w", err)
	}
	var out []*Comment
	for _, child := range data.Children {
		if child.Kind != KindComment {
			// eg "more" stubs
			continue
		}
		var d commentData
		if err := json.Unmarshal(child.Data, &d); err != nil {
			return nil, fmt.Errorf("parsing comment: %w", err)
		}
		out = append(out, d.comment())
	}
	return out, nil
}

// envelope for api_type=json mutations
type jsonAPIResp struct {
	JSON struct {
		Errors [][]string `json:"errors"`
		Data   struct {
			Things []thing `json:"things"`
		} `json:"data"`
	} `json:"json"`
}

func (r *jsonAPIResp) err() error {
	if len(r.JSON.Errors) > 0 {
		return fmt.Errorf("reddit API rejected request: %v", r.JSON.Errors[0])
	}
	return nil
}

func (c *APIClient) RemoveComment(ctx context.Context, id string) error {
	return c.remove(ctx, id)
}

func (c *APIClient) RemovePost(ctx context.Context, id string) error {
	return c.remove(ctx, id)
}

func (c *APIClient) remove(ctx context.Context, fullname string) error {
	form := url.Values{}
	form.Set("id", fullname)
	form.Set("spam", "false")
	return c.do(ctx, "/api/remove", nil, form, nil)
}

func (c *APIClient) SetPostFlair(ctx context.Context, subreddit, postID, text, cssClass, templateID string) error {
	form := url.Values{}
	form.Set("link", postID)
	form.Set("text", text)
	if templateID != "" {
		form.Set("flair_template_id", templateID)
		return c.do(ctx, "/r/"+url.PathEscape(subreddit)+"/api/selectflair", nil, form, nil)
	}
	form.Set("css_class", cssClass)
	return c.do(ctx, "/r/"+url.PathEscape(subreddit)+"/api/flair", nil, form, nil)
}

func (c *APIClient) SubmitComment(ctx context.Context, parentID, text string) (*Comment, error) {
	form := url.Values{}
	form.Set("api_type", "json")
	form.Set("thing_id", parentID)
	form.Set("text", text)
	var resp jsonAPIResp
	if err := c.do(ctx, "/api/comment", nil, form, &resp); err != nil {
		return nil, err
	}
	if err := resp.err(); err != nil {
		return nil, err
	}
	if len(resp.JSON.Data.Things) == 0 {
		return nil, fmt.Errorf("submit comment returned no thing")
	}
	var d commentData
	if err := json.Unmarshal(resp.JSON.Data.Things[0].Data, &d); err != nil {
		return nil, fmt.Errorf("parsing submitted comment: %w", err)
	}
	return d.comment(), nil
}

func (c *APIClient) DistinguishSticky(ctx context.Context, commentID string) error {
	form := url.Values{}
	form.Set("api_type", "json")
	form.Set("id", commentID)
	form.Set("how", "yes")
	form.Set("sticky", "true")
	var resp jsonAPIResp
	if err := c.do(ctx, "/api/distinguish", nil, form, &resp); err != nil {
		return err
	}
	return resp.err()
}

func (c *APIClient) Lock(ctx context.Context, id string) error {
	form := url.Values{}
	form.Set("id", id)
	return c.do(ctx, "/api/lock", nil, form, nil)
}

func (c *APIClient) SendMessage(ctx context.Context, to, subject, text string) error {
	form := url.Values{}
	form.Set("api_type", "json")
	form.Set("to", to)
	form.Set("subject", subject)
	form.Set("text", text)
	var resp jsonAPIResp
	if err := c.do(ctx, "/api/compose", nil, form, &resp); err != nil {
		return err
	}
	return resp.err()
}
