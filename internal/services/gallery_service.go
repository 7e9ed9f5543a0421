package services

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/dropgallery/internal/domain"
	"github.com/ericfisherdev/dropgallery/internal/dropbox"
)

// ProviderClient is the remote-call capability the traversal engine needs
// from the storage provider
type ProviderClient interface {
	ListFolder(ctx context.Context, token, path string) (*dropbox.ListFolderResult, error)
	ListFolderContinue(ctx context.Context, token, cursor string) (*dropbox.ListFolderResult, error)
	GetTemporaryLink(ctx context.Context, token, path string) (string, error)
}

// DefaultMaxListingPages bounds cursor-following for a single gallery render
const DefaultMaxListingPages = 10

// GalleryService turns a provider folder listing into a renderable listing:
// image entries resolved to temporary signed URLs plus navigable subfolders.
type GalleryService struct {
	client   ProviderClient
	maxPages int
	logger   *slog.Logger
}

// NewGalleryService creates a new folder traversal engine. maxPages bounds
// how many listing pages one request may consume; values below 1 fall back
// to DefaultMaxListingPages.
func NewGalleryService(client ProviderClient, maxPages int, logger *slog.Logger) *GalleryService {
	if maxPages < 1 {
		maxPages = DefaultMaxListingPages
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GalleryService{
		client:   client,
		maxPages: maxPages,
		logger:   logger,
	}
}

// ListGallery lists the folder at path and resolves every image entry to a
// temporary link. The empty path denotes the root and is sent verbatim; any
// other path gains exactly one leading separator, per provider convention.
// A failure anywhere, including a single temporary-link fetch, fails the
// whole listing.
func (s *GalleryService) ListGallery(ctx context.Context, token, path string) (*domain.Listing, error) {
	providerPath := path
	if providerPath != "" {
		providerPath = "/" + providerPath
	}

	entries, err := s.listAllPages(ctx, token, providerPath)
	if err != nil {
		return nil, err
	}

	var candidates []string
	subFolders := []domain.SubFolder{}
	for _, entry := range entries {
		switch {
		case entry.Tag == domain.EntryTagFolder:
			subFolders = append(subFolders, domain.SubFolder{
				Name: entry.Name,
				Path: entry.PathLower,
			})
		case entry.Tag == domain.EntryTagFile && domain.IsImage(entry.PathLower):
			candidates = append(candidates, entry.PathLower)
		}
	}

	images, err := s.resolveTemporaryLinks(ctx, token, candidates)
	if err != nil {
		return nil, err
	}

	return &domain.Listing{
		Images:     images,
		SubFolders: subFolders,
	}, nil
}

// listAllPages follows the provider cursor until the listing is exhausted,
// bounded by maxPages.
func (s *GalleryService) listAllPages(ctx context.Context, token, providerPath string) ([]domain.DirectoryEntry, error) {
	page, err := s.client.ListFolder(ctx, token, providerPath)
	if err != nil {
		return nil, domain.NewGalleryError("GALLERY_LIST_FAILED", "Could not list folder", err)
	}

	entries := toDirectoryEntries(page.Entries)
	pages := 1
	for page.HasMore {
		if pages >= s.maxPages {
			return nil, domain.NewGalleryError("GALLERY_LISTING_TOO_LARGE",
				"Folder listing exceeds the page limit", nil)
		}
		page, err = s.client.ListFolderContinue(ctx, token, page.Cursor)
		if err != nil {
			return nil, domain.NewGalleryError("GALLERY_LIST_FAILED", "Could not list folder", err)
		}
		entries = append(entries, toDirectoryEntries(page.Entries)...)
		pages++
	}
	return entries, nil
}

// toDirectoryEntries converts provider wire entries into domain entries.
func toDirectoryEntries(entries []dropbox.Entry) []domain.DirectoryEntry {
	out := make([]domain.DirectoryEntry, len(entries))
	for i, e := range entries {
		out[i] = domain.DirectoryEntry{
			Tag:       domain.EntryTag(e.Tag),
			Name:      e.Name,
			PathLower: e.PathLower,
		}
	}
	return out
}

// resolveTemporaryLinks fetches one temporary link per image path
// concurrently, preserving input order. The first failure cancels the rest
// and fails the whole fan-out.
func (s *GalleryService) resolveTemporaryLinks(ctx context.Context, token string, paths []string) ([]string, error) {
	links := make([]string, len(paths))

	g, groupCtx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			link, err := s.client.GetTemporaryLink(groupCtx, token, path)
			if err != nil {
				return err
			}
			links[i] = link
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, domain.NewGalleryError("GALLERY_LINK_FAILED", "Could not load images", err)
	}
	return links, nil
}
