package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/peroxide-labs/peroxide/internal/logger"
	"github.com/peroxide-labs/peroxide/internal/model"
	"github.com/peroxide-labs/peroxide/internal/password"
)

// WordpressImporter pulls content out of a WordPress site's REST API
// and stores it as posts; media attachments land in object storage.
type WordpressImporter struct {
	posts  model.PostStore
	users  model.UserStore
	media  model.MediaStorage
	client *http.Client
	logger *logger.Logger
}

func NewWordpressImporter(posts model.PostStore, users model.UserStore, media model.MediaStorage, client *http.Client, logger *logger.Logger) *WordpressImporter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &WordpressImporter{
		posts:  posts,
		users:  users,
		media:  media,
		client: client,
		logger: logger,
	}
}

// wordpressEntry is the subset of the WordPress REST post/page shape
// this importer consumes.
type wordpressEntry struct {
	Slug    string            `json:"slug"`
	Date    string            `json:"date"`
	Title   wordpressRendered `json:"title"`
	Content wordpressRendered `json:"content"`
}

type wordpressRendered struct {
	Rendered string `json:"rendered"`
}

// wordpressMedia is the subset of the media shape the importer consumes.
type wordpressMedia struct {
	Slug      string `json:"slug"`
	MimeType  string `json:"mime_type"`
	SourceURL string `json:"source_url"`
}

// wordpressDateFormat is the timestamp format of the WP REST API.
const wordpressDateFormat = "2006-01-02T15:04:05"

// importOwner is the username imported content is attributed to; the
// WordPress author mapping is not preserved.
const importOwner = "wordpress-import"

// Import fetches posts, pages and media from baseURL's wp-json API.
// Posts are stored under /blog, pages under /, media in object storage
// keyed by slug.
func (w *WordpressImporter) Import(ctx context.Context, baseURL string) error {
	if err := w.ensureImportOwner(ctx); err != nil {
		return err
	}

	posts, err := w.fetchEntries(ctx, baseURL+"/wp-json/wp/v2/posts")
	if err != nil {
		return fmt.Errorf("failed to fetch posts: %w", err)
	}
	pages, err := w.fetchEntries(ctx, baseURL+"/wp-json/wp/v2/pages")
	if err != nil {
		return fmt.Errorf("failed to fetch pages: %w", err)
	}

	for _, entry := range posts {
		if err := w.storeEntry(ctx, entry, "/blog"); err != nil {
			return err
		}
	}
	for _, entry := range pages {
		if err := w.storeEntry(ctx, entry, "/"); err != nil {
			return err
		}
	}

	if err := w.importMedia(ctx, baseURL); err != nil {
		return err
	}

	w.logger.Info("Wordpress import: completed",
		"posts", len(posts),
		"pages", len(pages))

	return nil
}

// ensureImportOwner provisions the service account imported content is
// attributed to, satisfying the posts.owner foreign key. The account
// gets a random unguessable credential and can never sign in with it.
func (w *WordpressImporter) ensureImportOwner(ctx context.Context) error {
	salt, err := password.GenerateSalt()
	if err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	lockout := make([]byte, password.SaltSize)
	if _, err := rand.Read(lockout); err != nil {
		return fmt.Errorf("failed to generate lockout password: %w", err)
	}

	_, err = w.users.Create(ctx, model.User{
		Username:     importOwner,
		Name:         "WordPress Import",
		Salt:         salt,
		PasswordHash: password.Hash(salt, string(lockout)),
		Email:        importOwner + "@localhost",
		Rank:         model.RankUser,
	})
	if err != nil && !errors.Is(err, model.ErrDuplicate) {
		return fmt.Errorf("failed to provision import owner: %w", err)
	}

	return nil
}

func (w *WordpressImporter) fetchEntries(ctx context.Context, url string) ([]wordpressEntry, error) {
	var entries []wordpressEntry
	if err := w.fetchJSON(ctx, url, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (w *WordpressImporter) fetchJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", url, err)
	}

	return nil
}

func (w *WordpressImporter) storeEntry(ctx context.Context, entry wordpressEntry, path string) error {
	date, err := time.Parse(wordpressDateFormat, entry.Date)
	if err != nil {
		w.logger.Info("Wordpress import: unparsable date, using now",
			"slug", entry.Slug,
			"date", entry.Date)
		date = time.Now()
	}

	post := model.Post{
		ID:      uuid.New(),
		Name:    entry.Slug,
		Content: entry.Content.Rendered,
		Date:    date,
		Path:    path,
		Owner:   importOwner,
	}

	if _, err := w.posts.Upsert(ctx, post); err != nil {
		return fmt.Errorf("failed to store entry %q: %w", entry.Slug, err)
	}

	w.logger.Debug("Wordpress import: entry stored",
		"slug", entry.Slug,
		"path", path)

	return nil
}

func (w *WordpressImporter) importMedia(ctx context.Context, baseURL string) error {
	var media []wordpressMedia
	if err := w.fetchJSON(ctx, baseURL+"/wp-json/wp/v2/media", &media); err != nil {
		return fmt.Errorf("failed to fetch media: %w", err)
	}

	for _, m := range media {
		if m.SourceURL == "" {
			continue
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.SourceURL, nil)
		if err != nil {
			return fmt.Errorf("failed to build media request: %w", err)
		}
		resp, err := w.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch media %q: %w", m.Slug, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			w.logger.Info("Wordpress import: media skipped",
				"slug", m.Slug,
				"status", resp.StatusCode)
			continue
		}

		err = w.media.Upload(ctx, "media/"+m.Slug, resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to store media %q: %w", m.Slug, err)
		}

		w.logger.Debug("Wordpress import: media stored",
			"slug", m.Slug,
			"mime_type", m.MimeType)
	}

	return nil
}
