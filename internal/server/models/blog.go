package models

import "time"

type Category struct {
	ID        string
	Name      string
	URLHandle string
}

type BlogPost struct {
	ID               string
	Title            string
	ShortDescription string
	Content          string
	URLHandle        string
	FeaturedImageURL string
	PublishedDate    time.Time
	Author           string
	IsVisible        bool
	Categories       []*Category
}

// Image is the metadata row of an uploaded picture; the bytes live in
// object storage under StorageKey.
type Image struct {
	ID            string
	FileName      string
	FileExtension string
	Title         string
	URL           string
	StorageKey    string
	DateCreated   time.Time
}
