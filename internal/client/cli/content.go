package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/codepulse/internal/client/client"
	"github.com/dmitrijs2005/codepulse/internal/client/models"
)

// now is a test seam for the published date of new posts.
var now = time.Now

func (a *App) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
}

func (a *App) Categories(ctx context.Context) error {
	cats, err := a.blog.Categories(ctx)
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		fmt.Fprintln(a.out, "No categories.")
		return nil
	}

	tw := a.table()
	fmt.Fprintln(tw, "ID\tNAME\tHANDLE")
	for _, c := range cats {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Name, c.URLHandle)
	}
	return tw.Flush()
}

func (a *App) AddCategory(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Category name", a.out)
	if err != nil {
		return err
	}
	handle, err := getSimpleText(a.reader, "URL handle", a.out)
	if err != nil {
		return err
	}

	c, err := a.blog.AddCategory(ctx, name, handle)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Category %s created.\n", c.ID)
	return nil
}

// promptKeep asks for a new value showing cur; an empty answer keeps cur.
func (a *App) promptKeep(label, cur string) (string, error) {
	v, err := getSimpleText(a.reader, fmt.Sprintf("%s [%s]", label, cur), a.out)
	if err != nil {
		return "", err
	}
	if v == "" {
		return cur, nil
	}
	return v, nil
}

func (a *App) EditCategory(ctx context.Context, id string) error {
	c, err := a.blog.Category(ctx, id)
	if err != nil {
		return err
	}

	name, err := a.promptKeep("Category name", c.Name)
	if err != nil {
		return err
	}
	handle, err := a.promptKeep("URL handle", c.URLHandle)
	if err != nil {
		return err
	}

	if _, err := a.blog.EditCategory(ctx, c.ID, name, handle); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Category updated.")
	return nil
}

func (a *App) DeleteCategory(ctx context.Context, id string) error {
	if err := a.blog.DeleteCategory(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Category deleted.")
	return nil
}

func (a *App) Posts(ctx context.Context) error {
	posts, err := a.blog.Posts(ctx)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		fmt.Fprintln(a.out, "No posts.")
		return nil
	}

	tw := a.table()
	fmt.Fprintln(tw, "ID\tTITLE\tHANDLE\tAUTHOR\tPUBLISHED\tVISIBLE\tCATEGORIES")
	for _, p := range posts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\t%s\n",
			p.ID, p.Title, p.URLHandle, p.Author,
			p.PublishedDate.Format(time.DateOnly), p.IsVisible, categoryNames(p.Categories))
	}
	return tw.Flush()
}

func (a *App) Post(ctx context.Context, idOrHandle string) error {
	p, err := a.blog.Post(ctx, idOrHandle)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s\n%s\n\n", p.Title, strings.Repeat("=", len(p.Title)))
	fmt.Fprintf(a.out, "By %s on %s [%s]\n", p.Author, p.PublishedDate.Format(time.DateOnly), categoryNames(p.Categories))
	if p.FeaturedImageURL != "" {
		fmt.Fprintf(a.out, "Image: %s\n", p.FeaturedImageURL)
	}
	fmt.Fprintf(a.out, "\n%s\n\n%s\n", p.ShortDescription, p.Content)
	return nil
}

func categoryNames(cats []*models.Category) string {
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}

func (a *App) AddPost(ctx context.Context) error {
	p := &models.NewBlogPost{PublishedDate: now().UTC().Truncate(time.Second)}

	prompts := []struct {
		label string
		dst   *string
	}{
		{"Title", &p.Title},
		{"Short description", &p.ShortDescription},
		{"URL handle", &p.URLHandle},
		{"Author", &p.Author},
		{"Featured image URL", &p.FeaturedImageURL},
	}
	for _, pr := range prompts {
		v, err := getSimpleText(a.reader, pr.label, a.out)
		if err != nil {
			return err
		}
		*pr.dst = v
	}

	content, err := GetMultiline(a.reader, "Content", a.out)
	if err != nil {
		return err
	}
	p.Content = content

	if p.Categories, err = GetList(a.reader, "Category ids (comma separated, optional)", a.out); err != nil {
		return err
	}
	if p.IsVisible, err = GetYesNo(a.reader, "Visible?", true, a.out); err != nil {
		return err
	}

	created, err := a.blog.AddPost(ctx, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Post %s created.\n", created.ID)
	return nil
}

// EditPost loads the post, lets every field be changed and sends the whole
// post back. Empty answers keep the current values.
func (a *App) EditPost(ctx context.Context, idOrHandle string) error {
	cur, err := a.blog.Post(ctx, idOrHandle)
	if err != nil {
		return err
	}
	p := cur.Draft()

	prompts := []struct {
		label string
		dst   *string
	}{
		{"Title", &p.Title},
		{"Short description", &p.ShortDescription},
		{"URL handle", &p.URLHandle},
		{"Author", &p.Author},
		{"Featured image URL", &p.FeaturedImageURL},
	}
	for _, pr := range prompts {
		if *pr.dst, err = a.promptKeep(pr.label, *pr.dst); err != nil {
			return err
		}
	}

	content, err := GetMultiline(a.reader, "Content (empty keeps the current text)", a.out)
	if err != nil {
		return err
	}
	if content != "" {
		p.Content = content
	}

	ids, err := GetList(a.reader, fmt.Sprintf("Category ids [%s]", strings.Join(p.Categories, ", ")), a.out)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		p.Categories = ids
	}
	if p.IsVisible, err = GetYesNo(a.reader, "Visible?", p.IsVisible, a.out); err != nil {
		return err
	}

	if _, err := a.blog.EditPost(ctx, cur.ID, p); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Post updated.")
	return nil
}

func (a *App) DeletePost(ctx context.Context, id string) error {
	if err := a.blog.DeletePost(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Post deleted.")
	return nil
}

func (a *App) Images(ctx context.Context) error {
	imgs, err := a.blog.Images(ctx)
	if err != nil {
		return err
	}
	if len(imgs) == 0 {
		fmt.Fprintln(a.out, "No images.")
		return nil
	}

	tw := a.table()
	fmt.Fprintln(tw, "TITLE\tFILE\tURL\tCREATED")
	for _, img := range imgs {
		fmt.Fprintf(tw, "%s\t%s%s\t%s\t%s\n",
			img.Title, img.FileName, img.FileExtension, img.URL, img.DateCreated.Format(time.DateTime))
	}
	return tw.Flush()
}

func (a *App) Upload(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Path to image (.jpg, .jpeg, .png)", a.out)
	if err != nil {
		return err
	}

	base := filepath.Base(path)
	def := strings.TrimSuffix(base, filepath.Ext(base))
	name, err := getSimpleText(a.reader, fmt.Sprintf("File name [%s]", def), a.out)
	if err != nil {
		return err
	}
	if name == "" {
		name = def
	}
	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	img, err := a.blog.UploadImage(ctx, &client.ImageUpload{
		FileName:   name,
		Title:      title,
		SourceName: base,
		Body:       f,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploaded: %s\n", img.URL)
	return nil
}
