// Package models defines the client-side view of the CodePulse API resources.
package models

import "time"

// Session is the result of a successful login as returned by the server.
type Session struct {
	Email string   `json:"email"`
	Token string   `json:"token"`
	Roles []string `json:"roles"`
}

// User is the identity the client believes is signed in.
type User struct {
	Email string
	Roles []string
}

// HasRole reports whether u carries role.
func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	URLHandle string `json:"urlHandle"`
}

type BlogPost struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	ShortDescription string      `json:"shortDescription"`
	Content          string      `json:"content"`
	URLHandle        string      `json:"urlHandle"`
	FeaturedImageURL string      `json:"featuredImageUrl"`
	PublishedDate    time.Time   `json:"publishedDate"`
	Author           string      `json:"author"`
	IsVisible        bool        `json:"isVisible"`
	Categories       []*Category `json:"categories"`
}

// Draft returns the editable payload of p, categories reduced to their ids.
func (p *BlogPost) Draft() *NewBlogPost {
	ids := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		ids = append(ids, c.ID)
	}
	return &NewBlogPost{
		Title:            p.Title,
		ShortDescription: p.ShortDescription,
		Content:          p.Content,
		URLHandle:        p.URLHandle,
		FeaturedImageURL: p.FeaturedImageURL,
		PublishedDate:    p.PublishedDate,
		Author:           p.Author,
		IsVisible:        p.IsVisible,
		Categories:       ids,
	}
}

// NewBlogPost is the payload for creating or updating a post; Categories
// holds ids.
type NewBlogPost struct {
	Title            string    `json:"title"`
	ShortDescription string    `json:"shortDescription"`
	Content          string    `json:"content"`
	URLHandle        string    `json:"urlHandle"`
	FeaturedImageURL string    `json:"featuredImageUrl"`
	PublishedDate    time.Time `json:"publishedDate"`
	Author           string    `json:"author"`
	IsVisible        bool      `json:"isVisible"`
	Categories       []string  `json:"categories"`
}

type Image struct {
	ID            string    `json:"id"`
	FileName      string    `json:"fileName"`
	FileExtension string    `json:"fileExtension"`
	Title         string    `json:"title"`
	URL           string    `json:"url"`
	DateCreated   time.Time `json:"dateCreated"`
}
