package reddit

// Thing fullname prefixes, eg "t1_abc123".
const (
	KindComment   = "t1"
	KindAccount   = "t2"
	KindPost      = "t3"
	KindSubreddit = "t5"
)

type Comment struct {
	// fullname (t1_*)
	ID        string
	Author    string
	Body      string
	Permalink string
	Removed   bool
	Stickied  bool
}

type Post struct {
	// fullname (t3_*)
	ID        string
	Author    string
	Title     string
	Permalink string
	Approved  bool
	Removed   bool
}

type Account struct {
	// fullname (t2_*)
	ID   string
	Name string
}

type Subreddit struct {
	// fullname (t5_*)
	ID string
	// canonical display name, eg "excel"
	Name string
}

type WikiPage struct {
	Name    string
	Content string
}

// One new-comment event as delivered by the hosting platform, one POST per
// comment. The pointer fields are how a malformed delivery shows up: any nil
// reference means the event can't be processed.
type CommentSubmitEvent struct {
	Comment   *EventComment   `json:"comment"`
	Post      *EventPost      `json:"post"`
	Author    *EventAccount   `json:"author"`
	Subreddit *EventSubreddit `json:"subreddit"`
}

type EventComment struct {
	ID        string `json:"id"`
	Body      string `json:"body"`
	Permalink string `json:"permalink"`
}

type EventPost struct {
	ID string `json:"id"`
}

type EventAccount struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type EventSubreddit struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
