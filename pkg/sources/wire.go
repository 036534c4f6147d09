package sources

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/kerbaras/novels/pkg/data"
)

// flexID accepts the id shapes the platform emits: a string, a number, or an
// object carrying "_id" / "$oid".
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '{' {
		var obj struct {
			ID  *flexID `json:"_id"`
			OID string  `json:"$oid"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		switch {
		case obj.ID != nil:
			*f = *obj.ID
		default:
			*f = flexID(data.CanonicalID(obj.OID))
		}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	*f = flexID(data.CanonicalID(v))
	return nil
}

// novelRef is a chapter's novelId: a bare id or the populated novel document.
type novelRef struct {
	ID    string
	Novel *novelDoc
}

func (r *novelRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var doc novelDoc
		if err := json.Unmarshal(b, &doc); err != nil {
			return err
		}
		if doc.ID != "" && doc.Title != "" {
			r.Novel = &doc
		}
		r.ID = string(doc.ID)
		return nil
	}
	var id flexID
	if err := id.UnmarshalJSON(b); err != nil {
		return err
	}
	r.ID = string(id)
	return nil
}

// authorField is either the author's display name or a populated user.
type authorField struct {
	ID   string
	Name string
}

func (a *authorField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var u struct {
			ID       flexID `json:"_id"`
			Nickname string `json:"nickname"`
			Username string `json:"username"`
			Name     string `json:"name"`
		}
		if err := json.Unmarshal(b, &u); err != nil {
			return err
		}
		a.ID = string(u.ID)
		for _, n := range []string{u.Nickname, u.Name, u.Username} {
			if n != "" {
				a.Name = n
				break
			}
		}
		return nil
	}
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		// a bare id
		var id flexID
		if err := id.UnmarshalJSON(b); err != nil {
			return err
		}
		a.ID = string(id)
		return nil
	}
	a.Name = name
	return nil
}

type novelDoc struct {
	ID           flexID      `json:"_id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	CoverImage   string      `json:"coverImage"`
	BookCover    string      `json:"bookCover"`
	Illustration string      `json:"illustration"`
	AuthorID     flexID      `json:"authorId"`
	Author       authorField `json:"author"`
	Views        int64       `json:"views"`
	SerialDays   []string    `json:"serialDays"`
	Tags         []string    `json:"tags"`
	Genre        string      `json:"genre"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func (n *novelDoc) ToNovel() *data.Novel {
	cover := n.CoverImage
	if cover == "" {
		cover = n.BookCover
	}
	authorID := string(n.AuthorID)
	if authorID == "" {
		authorID = n.Author.ID
	}
	return &data.Novel{
		ID:           string(n.ID),
		Title:        n.Title,
		Description:  n.Description,
		CoverImage:   cover,
		Illustration: n.Illustration,
		AuthorID:     authorID,
		AuthorName:   n.Author.Name,
		Views:        n.Views,
		SerialDays:   n.SerialDays,
		Tags:         n.Tags,
		Genre:        n.Genre,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    n.UpdatedAt,
	}
}

type chapterDoc struct {
	ID        flexID    `json:"_id"`
	NovelID   novelRef  `json:"novelId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Images    []string  `json:"images"`
	BGM       string    `json:"bgm"`
	IsFree    bool      `json:"isFree"`
	AuthorID  flexID    `json:"authorId"`
	FontStyle string    `json:"fontStyle"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c *chapterDoc) ToChapter() *data.Chapter {
	ref := data.NovelRef{ID: c.NovelID.ID}
	if c.NovelID.Novel != nil {
		ref.Novel = c.NovelID.Novel.ToNovel()
	}
	return &data.Chapter{
		ID:        string(c.ID),
		Novel:     ref,
		Title:     c.Title,
		Content:   c.Content,
		Images:    c.Images,
		Audio:     c.BGM,
		IsFree:    c.IsFree,
		AuthorID:  string(c.AuthorID),
		FontStyle: c.FontStyle,
		CreatedAt: c.CreatedAt,
	}
}
