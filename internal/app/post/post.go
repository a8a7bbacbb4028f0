/*
Package post contains the feed post model.
*/
package post

import (
	"time"

	"biochat/internal/app/user"
)

// DefaultTag is attached to every post created through the feed.
const DefaultTag = "general"

// MaxContentLength bounds a post body, counted in runes.
const MaxContentLength = 2000

// Post is a feed entry. Author fields are captured at post time and never refreshed.
type Post struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"authorId"`
	AuthorName   string    `json:"authorName"`
	AuthorAvatar string    `json:"authorAvatar"`
	College      string    `json:"college"`
	Content      string    `json:"content"`
	Image        string    `json:"image,omitempty"`
	Likes        int       `json:"likes"`
	Comments     int       `json:"comments"`
	Timestamp    time.Time `json:"timestamp"`
	Tags         []string  `json:"tags"`
}

// New builds a post by author with zero counters and the default tag.
func New(id string, author user.User, content string, now time.Time) Post {
	return Post{
		ID:           id,
		AuthorID:     author.ID,
		AuthorName:   author.Username,
		AuthorAvatar: author.AvatarSeed,
		College:      author.College,
		Content:      content,
		Timestamp:    now,
		Tags:         []string{DefaultTag},
	}
}

// Clone returns a deep copy of p.
func (p Post) Clone() Post {
	p.Tags = append([]string(nil), p.Tags...)
	return p
}

// Seed returns the feed present at process start, newest first.
func Seed(now time.Time) []Post {
	return []Post{
		{
			ID: "1", AuthorID: "u2", AuthorName: "Sarcastic Spleen", AuthorAvatar: "seed2", College: "Harvard Med",
			Content:   "Does anyone else feel like they are just memorizing the phone book but for the human body? 📚💀 #anatomy #struggle",
			Likes:     42,
			Comments:  5,
			Timestamp: now.Add(-time.Hour),
			Tags:      []string{"anatomy", "rant"},
		},
		{
			ID: "2", AuthorID: "u3", AuthorName: "Captain Cortisol", AuthorAvatar: "seed3", College: "Johns Hopkins",
			Content:   "Just diagnosed myself with 3 rare diseases after reading WebMD for 5 minutes. Standard procedure right? 😅",
			Likes:     128,
			Comments:  12,
			Timestamp: now.Add(-2 * time.Hour),
			Tags:      []string{"humor", "hypochondria"},
		},
		{
			ID: "3", AuthorID: "u4", AuthorName: "Lady Lymphocyte", AuthorAvatar: "seed4", College: "Stanford Medicine",
			Content:   "Looking for study partners for the upcoming boards. Serious inquiries only! 🩺",
			Likes:     15,
			Comments:  2,
			Timestamp: now.Add(-24 * time.Hour),
			Tags:      []string{"study", "boards"},
		},
	}
}
