package sqlite

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/monomori/monomori-server/internal/domain"
	"github.com/monomori/monomori-server/internal/store"
)

func collection(t *testing.T, s *Store, category domain.Category) *Collection {
	t.Helper()
	c, err := s.Collection(category)
	if err != nil {
		t.Fatalf("collection %s: %v", category, err)
	}
	return c
}

func book(title string, authors ...string) domain.Item {
	item := domain.NewItem(domain.CategoryBooks)
	item.Attributes.SetText("title", title)
	if authors != nil {
		item.Attributes.SetList("authors", authors)
	}
	return item
}

func ids(items []domain.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestInsertOrReplace_NewBookDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	books := collection(t, s, domain.CategoryBooks)

	before := time.Now().Add(-time.Second)
	saved, err := books.InsertOrReplace(ctx, book("Test"))
	if err != nil {
		t.Fatalf("InsertOrReplace: %v", err)
	}

	all, err := books.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("ListAll: got %d items, want 1", len(all))
	}

	got := all[0]
	if got.ID != saved.ID || got.ID == "" {
		t.Errorf("ID: got %q, want %q", got.ID, saved.ID)
	}
	if got.Attributes.String("title") != "Test" {
		t.Errorf("title: got %q", got.Attributes.String("title"))
	}
	if got.DateAdded.Before(before) {
		t.Errorf("DateAdded not set: %v", got.DateAdded)
	}
	if authors := got.Attributes.Strings("authors"); authors == nil || len(authors) != 0 {
		t.Errorf("authors: got %#v, want empty list", authors)
	}
	if got.Category != domain.CategoryBooks {
		t.Errorf("Category: got %q", got.Category)
	}
}

func TestGet_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	movies := collection(t, s, domain.CategoryMoviesTV)

	item := domain.NewItem(domain.CategoryMoviesTV)
	item.ID = "603"
	item.Subcategory = "BLU_RAY"
	item.Tags = []string{"sci-fi", "favourite"}
	item.Barcode = "883929106946"
	item.CustomFields = domain.CustomFields{Fields: []domain.CustomField{
		{ID: "cf-1", Name: "Shelf", Type: domain.FieldTypeTextSingle, Value: "B2"},
	}}
	item.Attributes.SetText("title", "The Matrix")
	item.Attributes.SetText("director", "Lana Wachowski")
	item.Attributes.SetInt("runtime", 136)
	item.Attributes.SetFloat("rating", 4.5)
	item.Attributes.SetList("cast", []string{"Keanu Reeves", "Carrie-Anne Moss"})
	item.Attributes.SetText("watchStatus", "WATCHED")
	item.Attributes.SetTime("theatricalReleaseDate", time.Date(1999, 3, 31, 0, 0, 0, 0, time.UTC))

	saved, err := movies.InsertOrReplace(ctx, item)
	if err != nil {
		t.Fatalf("InsertOrReplace: %v", err)
	}

	got, err := movies.Get(ctx, "603")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if got.Subcategory != "BLU_RAY" {
		t.Errorf("Subcategory: got %q", got.Subcategory)
	}
	if !slices.Equal(got.Tags, item.Tags) {
		t.Errorf("Tags: got %v", got.Tags)
	}
	if got.Barcode != item.Barcode {
		t.Errorf("Barcode: got %q", got.Barcode)
	}
	if f, ok := got.CustomFields.Get("shelf"); !ok || f.Value != "B2" {
		t.Errorf("CustomFields: got %+v", got.CustomFields)
	}
	if n, _ := got.Attributes.Int("runtime"); n != 136 {
		t.Errorf("runtime: got %d", n)
	}
	if r, _ := got.Attributes.Float("rating"); r != 4.5 {
		t.Errorf("rating: got %v", r)
	}
	if !slices.Equal(got.Attributes.Strings("cast"), []string{"Keanu Reeves", "Carrie-Anne Moss"}) {
		t.Errorf("cast: got %v", got.Attributes.Strings("cast"))
	}
	if got.Attributes.String("watchStatus") != "WATCHED" {
		t.Errorf("watchStatus: got %q", got.Attributes.String("watchStatus"))
	}
	if released, _ := got.Attributes.Time("theatricalReleaseDate"); !released.Equal(time.Date(1999, 3, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("theatricalReleaseDate: got %v", released)
	}
	if !got.DateAdded.Equal(saved.DateAdded) || !got.LastModified.Equal(saved.LastModified) {
		t.Errorf("timestamps: got %v/%v, want %v/%v", got.DateAdded, got.LastModified, saved.DateAdded, saved.LastModified)
	}
	if got.Attributes.Has("studio") {
		t.Errorf("studio should be absent")
	}
}

func TestGet_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := collection(t, s, domain.CategoryFigures).Get(context.Background(), "fig-missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestInsertOrReplace_LastWriteWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	books := collection(t, s, domain.CategoryBooks)

	first := book("First")
	first.ID = "book-1"
	if _, err := books.InsertOrReplace(ctx, first); err != nil {
		t.Fatalf("insert first: %v", err)
	}

	second := book("Second", "Someone")
	second.ID = "book-1"
	if _, err := books.InsertOrReplace(ctx, second); err != nil {
		t.Fatalf("insert second: %v", err)
	}

	n, err := books.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Fatalf("Count: got %d, want 1", n)
	}

	got, err := books.Get(ctx, "book-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Attributes.String("title") != "Second" {
		t.Errorf("title: got %q, want Second", got.Attributes.String("title"))
	}
	if !slices.Equal(got.Attributes.Strings("authors"), []string{"Someone"}) {
		t.Errorf("authors: got %v", got.Attributes.Strings("authors"))
	}
}

func TestInsertOrReplace_RequiresFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	custom := collection(t, s, domain.CategoryCustom)

	item := domain.NewItem(domain.CategoryCustom)
	item.Attributes.SetText("name", "Teapot")

	_, err := custom.InsertOrReplace(ctx, item)
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	item.Attributes.SetText("categoryName", "Kitchen")
	if _, err := custom.InsertOrReplace(ctx, item); err != nil {
		t.Fatalf("InsertOrReplace: %v", err)
	}
}

func TestInsertOrReplace_DefaultQuantity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	cards := collection(t, s, domain.CategoryTradingCards)

	item := domain.NewItem(domain.CategoryTradingCards)
	item.Attributes.SetText("cardName", "Charizard")
	saved, err := cards.InsertOrReplace(ctx, item)
	if err != nil {
		t.Fatalf("InsertOrReplace: %v", err)
	}

	got, err := cards.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if qty, _ := got.Attributes.Int("quantityOwned"); qty != 1 {
		t.Errorf("quantityOwned: got %d, want 1", qty)
	}
}

func TestListAll_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	books := collection(t, s, domain.CategoryBooks)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"book-a", "book-b", "book-c"} {
		item := book(id)
		item.ID = id
		item.DateAdded = base.Add(time.Duration(i) * time.Hour)
		if _, err := books.InsertOrReplace(ctx, item); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	all, err := books.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if want := []string{"book-c", "book-b", "book-a"}; !slices.Equal(ids(all), want) {
		t.Errorf("order: got %v, want %v", ids(all), want)
	}
}

func TestSearch_EmptyMatchesListAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	books := collection(t, s, domain.CategoryBooks)

	for _, title := range []string{"Dune", "Neuromancer", "Hyperion"} {
		if _, err := books.InsertOrReplace(ctx, book(title)); err != nil {
			t.Fatalf("insert %s: %v", title, err)
		}
	}

	all, err := books.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	found, err := books.Search(ctx, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !slices.Equal(ids(all), ids(found)) {
		t.Errorf("Search(\"\"): got %v, want %v", ids(found), ids(all))
	}
}

func TestSearch_CaseInsensitiveContains(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	books := collection(t, s, domain.CategoryBooks)

	fixtures := []domain.Item{
		book("Dune", "Frank Herbert"),
		book("Children of Dune", "Frank Herbert"),
		book("The Left Hand of Darkness", "Ursula K. Le Guin"),
		book("Straße der Ölsardinen", "John Steinbeck"),
	}
	fixtures[0].ID, fixtures[1].ID, fixtures[2].ID, fixtures[3].ID = "b0", "b1", "b2", "b3"
	fixtures[2].Attributes.SetText("notes", "dune mentioned only in notes")
	for _, item := range fixtures {
		if _, err := books.InsertOrReplace(ctx, item); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	tests := []struct {
		q    string
		want []string
	}{
		{"dune", []string{"b0", "b1"}},
		{"HERBERT", []string{"b0", "b1"}},
		{"le guin", []string{"b2"}},
		{"STRASSE", []string{"b3"}},
		{"ölsardinen", []string{"b3"}},
		{"nothing here", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			found, err := books.Search(ctx, tt.q)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			got := ids(found)
			slices.Sort(got)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Search(%q): got %v, want %v", tt.q, got, tt.want)
			}
		})
	}
}

func TestUpdate_BumpsLastModifiedKeepsDateAdded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	books := collection(t, s, domain.CategoryBooks)

	item := book("Draft")
	item.DateAdded = time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)
	item.LastModified = item.DateAdded
	saved, err := books.InsertOrReplace(ctx, item)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	saved.Attributes.SetText("title", "Final")
	saved.DateAdded = time.Time{}
	updated, found, err := books.Update(ctx, saved)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !found {
		t.Fatal("Update: item not found")
	}
	if updated.Attributes.String("title") != "Final" {
		t.Errorf("title: got %q", updated.Attributes.String("title"))
	}
	if !updated.DateAdded.Equal(item.DateAdded) {
		t.Errorf("DateAdded changed: got %v", updated.DateAdded)
	}
	if !updated.LastModified.After(item.LastModified) {
		t.Errorf("LastModified not bumped: %v", updated.LastModified)
	}
}

func TestUpdate_MissingIsNoop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	books := collection(t, s, domain.CategoryBooks)

	item := book("Ghost")
	item.ID = "book-ghost"
	_, found, err := books.Update(ctx, item)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if found {
		t.Error("Update reported a missing item as found")
	}
	if n, _ := books.Count(ctx); n != 0 {
		t.Errorf("Count: got %d, want 0", n)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	books := collection(t, s, domain.CategoryBooks)

	saved, err := books.InsertOrReplace(ctx, book("Gone"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := books.DeleteByID(ctx, "book-missing"); err != nil {
		t.Errorf("DeleteByID missing: %v", err)
	}
	if n, _ := books.Count(ctx); n != 1 {
		t.Errorf("Count after no-op delete: got %d, want 1", n)
	}

	if err := books.Delete(ctx, saved); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := books.Get(ctx, saved.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get after delete: got %v", err)
	}
}

func TestDeleteAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	books := collection(t, s, domain.CategoryBooks)
	music := collection(t, s, domain.CategoryMusic)

	for _, title := range []string{"One", "Two"} {
		if _, err := books.InsertOrReplace(ctx, book(title)); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	album := domain.NewItem(domain.CategoryMusic)
	album.Attributes.SetText("albumTitle", "Blue Train")
	if _, err := music.InsertOrReplace(ctx, album); err != nil {
		t.Fatalf("insert album: %v", err)
	}

	removed, err := books.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed: got %d, want 2", removed)
	}

	counts, err := s.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts[domain.CategoryBooks] != 0 || counts[domain.CategoryMusic] != 1 {
		t.Errorf("counts: got %v", counts)
	}
}

func TestScan_RecoversCorruptData(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	books := collection(t, s, domain.CategoryBooks)

	_, err := s.db.Exec(`INSERT INTO books
		(id, category, subcategory, date_added, last_modified, tags, custom_fields, title, authors, condition, read_status)
		VALUES ('book-x', 'BOOKS', 'SCROLLS', 0, 0, 'not json', '{broken', 'Corrupt', '[1,2]', 'SHINY', 'READ')`)
	if err != nil {
		t.Fatalf("raw insert: %v", err)
	}

	got, err := books.Get(ctx, "book-x")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.CustomFields.Fields == nil || got.CustomFields.Len() != 0 {
		t.Errorf("CustomFields: got %+v, want empty", got.CustomFields)
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Errorf("Tags: got %#v, want empty", got.Tags)
	}
	if authors := got.Attributes.Strings("authors"); authors == nil || len(authors) != 0 {
		t.Errorf("authors: got %#v, want empty", authors)
	}
	if got.Subcategory != "" {
		t.Errorf("Subcategory: got %q, want empty", got.Subcategory)
	}
	if got.Attributes.Has("condition") {
		t.Errorf("condition should be absent, got %v", got.Attributes["condition"])
	}
	if got.Attributes.String("readStatus") != "READ" {
		t.Errorf("readStatus: got %q", got.Attributes.String("readStatus"))
	}
}

func TestFindByAndDistinct(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	comics := collection(t, s, domain.CategoryComics)

	add := func(title, series, status string, characters ...string) {
		t.Helper()
		item := domain.NewItem(domain.CategoryComics)
		item.Attributes.SetText("title", title)
		item.Attributes.SetText("series", series)
		item.Attributes.SetText("readStatus", status)
		item.Attributes.SetList("characters", characters)
		if _, err := comics.InsertOrReplace(ctx, item); err != nil {
			t.Fatalf("insert %s: %v", title, err)
		}
	}
	add("Saga #1", "Saga", "READ", "Alana", "Marko")
	add("Saga #2", "Saga", "READING", "Alana")
	add("Watchmen #1", "Watchmen", "READ", "Rorschach")

	saga, err := comics.FindBy(ctx, "series", "Saga")
	if err != nil {
		t.Fatalf("FindBy series: %v", err)
	}
	if len(saga) != 2 {
		t.Errorf("FindBy series: got %d items, want 2", len(saga))
	}

	read, err := comics.FindBy(ctx, "readStatus", "read")
	if err != nil {
		t.Fatalf("FindBy readStatus: %v", err)
	}
	if len(read) != 2 {
		t.Errorf("FindBy readStatus: got %d items, want 2", len(read))
	}

	alana, err := comics.FindBy(ctx, "characters", "Alana")
	if err != nil {
		t.Fatalf("FindBy characters: %v", err)
	}
	if len(alana) != 2 {
		t.Errorf("FindBy characters: got %d items, want 2", len(alana))
	}

	series, err := comics.Distinct(ctx, "series")
	if err != nil {
		t.Fatalf("Distinct series: %v", err)
	}
	if want := []string{"Saga", "Watchmen"}; !slices.Equal(series, want) {
		t.Errorf("Distinct series: got %v, want %v", series, want)
	}

	characters, err := comics.Distinct(ctx, "characters")
	if err != nil {
		t.Fatalf("Distinct characters: %v", err)
	}
	if want := []string{"Alana", "Marko", "Rorschach"}; !slices.Equal(characters, want) {
		t.Errorf("Distinct characters: got %v, want %v", characters, want)
	}

	if _, err := comics.FindBy(ctx, "pageCount", "12"); !errors.Is(err, store.ErrInvalidInput) {
		t.Errorf("FindBy int field: expected ErrInvalidInput, got %v", err)
	}
}
