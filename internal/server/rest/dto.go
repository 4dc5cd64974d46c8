package rest

import (
	"time"

	"github.com/dmitrijs2005/codepulse/internal/server/models"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Email string   `json:"email"`
	Token string   `json:"token"`
	Roles []string `json:"roles"`
}

type categoryRequest struct {
	Name      string `json:"name" binding:"notblank"`
	URLHandle string `json:"urlHandle" binding:"notblank"`
}

type categoryDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	URLHandle string `json:"urlHandle"`
}

func toCategoryDTO(c *models.Category) categoryDTO {
	return categoryDTO{ID: c.ID, Name: c.Name, URLHandle: c.URLHandle}
}

type blogPostRequest struct {
	Title            string    `json:"title" binding:"notblank"`
	ShortDescription string    `json:"shortDescription"`
	Content          string    `json:"content"`
	URLHandle        string    `json:"urlHandle" binding:"notblank"`
	FeaturedImageURL string    `json:"featuredImageUrl"`
	PublishedDate    time.Time `json:"publishedDate"`
	Author           string    `json:"author"`
	IsVisible        bool      `json:"isVisible"`
	Categories       []string  `json:"categories"`
}

func (r *blogPostRequest) toModel(id string) *models.BlogPost {
	return &models.BlogPost{
		ID:               id,
		Title:            r.Title,
		ShortDescription: r.ShortDescription,
		Content:          r.Content,
		URLHandle:        r.URLHandle,
		FeaturedImageURL: r.FeaturedImageURL,
		PublishedDate:    r.PublishedDate,
		Author:           r.Author,
		IsVisible:        r.IsVisible,
	}
}

type blogPostDTO struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	ShortDescription string        `json:"shortDescription"`
	Content          string        `json:"content"`
	URLHandle        string        `json:"urlHandle"`
	FeaturedImageURL string        `json:"featuredImageUrl"`
	PublishedDate    time.Time     `json:"publishedDate"`
	Author           string        `json:"author"`
	IsVisible        bool          `json:"isVisible"`
	Categories       []categoryDTO `json:"categories"`
}

func toBlogPostDTO(p *models.BlogPost) blogPostDTO {
	cats := make([]categoryDTO, 0, len(p.Categories))
	for _, c := range p.Categories {
		cats = append(cats, toCategoryDTO(c))
	}
	return blogPostDTO{
		ID:               p.ID,
		Title:            p.Title,
		ShortDescription: p.ShortDescription,
		Content:          p.Content,
		URLHandle:        p.URLHandle,
		FeaturedImageURL: p.FeaturedImageURL,
		PublishedDate:    p.PublishedDate,
		Author:           p.Author,
		IsVisible:        p.IsVisible,
		Categories:       cats,
	}
}

type imageDTO struct {
	ID            string    `json:"id"`
	FileName      string    `json:"fileName"`
	FileExtension string    `json:"fileExtension"`
	Title         string    `json:"title"`
	URL           string    `json:"url"`
	DateCreated   time.Time `json:"dateCreated"`
}

func toImageDTO(img *models.Image) imageDTO {
	return imageDTO{
		ID:            img.ID,
		FileName:      img.FileName,
		FileExtension: img.FileExtension,
		Title:         img.Title,
		URL:           img.URL,
		DateCreated:   img.DateCreated,
	}
}
