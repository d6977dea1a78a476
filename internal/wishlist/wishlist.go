// Package wishlist holds the favorited-products set. When a session exists
// the server list is the source of truth and the local copy is a cache
// replaced wholesale on every fetch; without a session mutations apply to a
// locally persisted guest list.
package wishlist

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"storefront-client/internal/api"
	"storefront-client/internal/dto"
	"storefront-client/internal/model"
	"storefront-client/internal/normalize"
	"storefront-client/internal/store"
)

const (
	msgAdded         = "added to wishlist"
	msgRemoved       = "removed from wishlist"
	msgCleared       = "wishlist cleared"
	msgRequestFailed = "request failed, please try again"
	msgPartialClear  = "some items could not be removed"
)

// FavoritesAPI is the slice of the backend client the wishlist needs.
type FavoritesAPI interface {
	FavoriteList(ctx context.Context) (*api.Response, error)
	ToggleFavorite(ctx context.Context, productID int64) (*api.Response, error)
}

// Auth reports whether a session exists; it decides which mode mutations
// run in.
type Auth interface {
	IsAuthenticated() bool
}

type Service struct {
	api     FavoritesAPI
	auth    Auth
	db      *store.Store
	baseURL string
	log     *slog.Logger

	mu      sync.Mutex
	entries []model.WishlistEntry
}

func New(favAPI FavoritesAPI, auth Auth, db *store.Store, baseURL string, log *slog.Logger) *Service {
	return &Service{api: favAPI, auth: auth, db: db, baseURL: baseURL, log: log}
}

// Refresh re-derives the list: from the server when authenticated (server
// wins, local copy overwritten), from the persisted guest blob otherwise.
func (s *Service) Refresh(ctx context.Context) error {
	if !s.auth.IsAuthenticated() {
		var entries []model.WishlistEntry
		if _, err := s.db.Get(store.KeyWishlist, &entries); err != nil {
			return err
		}
		s.replace(entries)
		return nil
	}

	resp, err := s.api.FavoriteList(ctx)
	if err != nil {
		return err
	}

	items := normalize.Items(resp.DataDoc())
	entries := make([]model.WishlistEntry, 0, len(items))
	for _, raw := range items {
		if m, ok := normalize.AsMap(raw); ok {
			entries = append(entries, s.formatEntry(m))
		}
	}
	s.replace(entries)
	return nil
}

// Add puts the product on the wishlist. Adding an id that is already
// present is a no-op; the collection has set semantics.
func (s *Service) Add(ctx context.Context, p model.Product) dto.Result {
	if s.IsIn(p.ID) {
		return dto.OK(msgAdded)
	}

	if s.auth.IsAuthenticated() {
		return s.toggleAndRefresh(ctx, p.ID, msgAdded)
	}

	s.mu.Lock()
	s.entries = append(s.entries, model.WishlistEntry{
		ProductID:   p.ID,
		Name:        p.Name,
		NameEn:      p.NameEn,
		CategoryID:  p.CategoryID,
		Price:       p.Price,
		Images:      p.Images,
		Description: p.Description,
	})
	s.mu.Unlock()

	if err := s.persistGuest(); err != nil {
		return dto.Fail(msgRequestFailed)
	}
	return dto.OK(msgAdded)
}

func (s *Service) Remove(ctx context.Context, productID int64) dto.Result {
	if !s.IsIn(productID) {
		return dto.OK(msgRemoved)
	}

	if s.auth.IsAuthenticated() {
		return s.toggleAndRefresh(ctx, productID, msgRemoved)
	}

	s.mu.Lock()
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.ProductID != productID {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	s.mu.Unlock()

	if err := s.persistGuest(); err != nil {
		return dto.Fail(msgRequestFailed)
	}
	return dto.OK(msgRemoved)
}

// Clear empties the wishlist. Authenticated mode issues one remove toggle
// per item concurrently and waits for all to settle; any rejection makes
// the whole operation fail, but calls that already succeeded are not rolled
// back. The list is re-fetched afterwards either way so local state matches
// whatever the server now holds.
func (s *Service) Clear(ctx context.Context) dto.Result {
	if !s.auth.IsAuthenticated() {
		s.replace(nil)
		if err := s.persistGuest(); err != nil {
			return dto.Fail(msgRequestFailed)
		}
		return dto.OK(msgCleared)
	}

	s.mu.Lock()
	ids := make([]int64, len(s.entries))
	for i, e := range s.entries {
		ids[i] = e.ProductID
	}
	s.mu.Unlock()

	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			resp, err := s.api.ToggleFavorite(ctx, id)
			if err != nil {
				errs[i] = err
				return
			}
			if !resp.Success {
				errs[i] = errResponse(resp)
			}
		}(i, id)
	}
	wg.Wait()

	if err := s.Refresh(ctx); err != nil {
		s.log.Warn("refresh wishlist after clear", "err", err)
	}

	for _, err := range errs {
		if err != nil {
			s.log.Warn("clear wishlist", "err", err)
			return dto.Fail(msgPartialClear)
		}
	}
	return dto.OK(msgCleared)
}

func (s *Service) IsIn(productID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ProductID == productID {
			return true
		}
	}
	return false
}

func (s *Service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Service) Entries() []model.WishlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.WishlistEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Service) toggleAndRefresh(ctx context.Context, productID int64, okMessage string) dto.Result {
	resp, err := s.api.ToggleFavorite(ctx, productID)
	if err != nil {
		s.log.Warn("toggle favorite", "err", err)
		return dto.Fail(msgRequestFailed)
	}
	if !resp.Success {
		if resp.Message != "" {
			return dto.Fail(resp.Message)
		}
		return dto.Fail(msgRequestFailed)
	}

	if err := s.Refresh(ctx); err != nil {
		s.log.Warn("refresh wishlist", "err", err)
	}
	return dto.OK(okMessage)
}

// formatEntry builds a minimal-but-valid entry from one raw favorite item.
// The item may carry the product inline or nested under "product"; every
// field is defaulted when absent rather than failing the whole list.
func (s *Service) formatEntry(item map[string]any) model.WishlistEntry {
	product, ok := normalize.AsMap(item["product"])
	if !ok {
		product = item
	}

	id, ok := normalize.ID(item["product_id"])
	if !ok {
		if pid, pok := normalize.ID(product["id"]); pok {
			id = pid
		} else {
			id, _ = normalize.ID(item["id"])
		}
	}

	entry := model.WishlistEntry{
		ProductID:   id,
		Name:        normalize.DisplayName(product["name"], item["name"]),
		NameEn:      normalize.DisplayName(product["name_en"], item["name_en"]),
		Price:       normalize.Amount(firstPresent(product["price"], item["price"])),
		Description: normalize.Str(product["description"]),
	}
	entry.CategoryID, _ = normalize.ID(firstPresent(product["category_id"], item["category_id"]))

	entry.Images = s.formatImages(product)
	if len(entry.Images) == 0 {
		entry.Images = s.formatImages(item)
	}

	return entry
}

func (s *Service) formatImages(m map[string]any) []string {
	var out []string
	if list, ok := m["images"].([]any); ok {
		for _, v := range list {
			if u := normalize.ImageURL(v, s.baseURL); u != "" {
				out = append(out, u)
			}
		}
	}
	if len(out) == 0 {
		if u := normalize.ImageURL(m["image"], s.baseURL); u != "" {
			out = append(out, u)
		}
	}
	return out
}

func (s *Service) replace(entries []model.WishlistEntry) {
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
}

func (s *Service) persistGuest() error {
	s.mu.Lock()
	entries := make([]model.WishlistEntry, len(s.entries))
	copy(entries, s.entries)
	s.mu.Unlock()

	if err := s.db.Put(store.KeyWishlist, entries); err != nil {
		s.log.Error("persist wishlist", "err", err)
		return err
	}
	return nil
}

func firstPresent(values ...any) any {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func errResponse(resp *api.Response) error {
	if resp.Message != "" {
		return errors.New(resp.Message)
	}
	return errors.New(msgRequestFailed)
}
