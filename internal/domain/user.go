package domain

import "time"

// NotAvailable replaces empty optional profile fields.
const NotAvailable = "not available"

// EventDateLayout is the layout of Event.Date.
const EventDateLayout = "2006-01-02 15:04:05"

// RepoEvent is a raw activity event as read from a repository's event feed.
type RepoEvent struct {
	Type      string
	Repo      string
	Org       string
	Public    bool
	CreatedAt time.Time
}

// Event is one entry of a principal's activity report.
type Event struct {
	Type   string  `json:"type"`
	Repo   string  `json:"repo"`
	Date   string  `json:"date"`
	Public bool    `json:"public"`
	Org    *string `json:"org"`
	Disk   *int    `json:"disk"`
}

// Account is the authenticated principal as returned by the remote platform.
// Empty strings mean the field was absent.
type Account struct {
	Login       string
	Name        string
	AvatarURL   string
	Bio         string
	Location    string
	Blog        string
	Email       string
	PublicRepos int
	DiskUsage   *int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Profile is the public view of the authenticated principal.
type Profile struct {
	Login       string    `json:"login"`
	Name        string    `json:"name"`
	AvatarURL   string    `json:"avatar_url"`
	Bio         string    `json:"bio"`
	Location    string    `json:"location"`
	Blog        string    `json:"blog"`
	Email       string    `json:"email"`
	PublicRepos int       `json:"public_repos"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProfile converts an account, substituting fallbacks for absent fields.
func NewProfile(a Account) Profile {
	orDefault := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	return Profile{
		Login:       a.Login,
		Name:        orDefault(a.Name, a.Login),
		AvatarURL:   orDefault(a.AvatarURL, NotAvailable),
		Bio:         orDefault(a.Bio, NotAvailable),
		Location:    orDefault(a.Location, NotAvailable),
		Blog:        orDefault(a.Blog, NotAvailable),
		Email:       orDefault(a.Email, NotAvailable),
		PublicRepos: a.PublicRepos,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// NewEvent formats a raw event. disk is the principal's disk usage snapshot.
func NewEvent(e RepoEvent, disk *int) Event {
	ev := Event{
		Type:   e.Type,
		Repo:   e.Repo,
		Date:   e.CreatedAt.Format(EventDateLayout),
		Public: e.Public,
		Disk:   disk,
	}
	if e.Org != "" {
		org := e.Org
		ev.Org = &org
	}
	return ev
}
