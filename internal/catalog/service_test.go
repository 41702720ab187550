package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"giftora/internal/models"
)

type fakeReact struct {
	rows []*models.ReactTemplate
	err  error
}

func (f *fakeReact) List(_ context.Context, filter models.TemplateFilter) ([]*models.ReactTemplate, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.ReactTemplate
	for _, r := range f.rows {
		if filter.Matches(r.IsActive, r.Category, r.CategoryID, r.SubcategoryID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReact) FindByID(_ context.Context, id uuid.UUID) (*models.ReactTemplate, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

type fakeHTML struct {
	rows []*models.HTMLTemplate
	err  error
}

func (f *fakeHTML) List(_ context.Context, filter models.TemplateFilter) ([]*models.HTMLTemplate, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.HTMLTemplate
	for _, h := range f.rows {
		if filter.Matches(h.IsActive, h.Category, h.CategoryID, h.SubcategoryID) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeHTML) FindByID(_ context.Context, id uuid.UUID) (*models.HTMLTemplate, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, h := range f.rows {
		if h.ID == id {
			return h, nil
		}
	}
	return nil, nil
}

type fakeCategories struct {
	cats []models.Category
	subs []models.Subcategory
}

func (f *fakeCategories) List(context.Context) ([]models.Category, error) { return f.cats, nil }
func (f *fakeCategories) ListSubcategories(context.Context) ([]models.Subcategory, error) {
	return f.subs, nil
}

type fakeReviews struct {
	ratings map[uuid.UUID][]int
	calls   int
}

func (f *fakeReviews) Aggregates(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.RatingStats, error) {
	f.calls++
	out := map[uuid.UUID]models.RatingStats{}
	for _, id := range ids {
		rs := f.ratings[id]
		if len(rs) == 0 {
			continue
		}
		sum := 0
		for _, r := range rs {
			sum += r
		}
		out[id] = models.RatingStats{TemplateID: id, AvgRating: float64(sum) / float64(len(rs)), ReviewsCount: len(rs)}
	}
	return out, nil
}

type fakeOrders struct {
	counts map[uuid.UUID]int
}

func (f *fakeOrders) PurchaseCounts(context.Context) (map[uuid.UUID]int, error) { return f.counts, nil }

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func react(name string, day int) *models.ReactTemplate {
	return &models.ReactTemplate{
		ID: uuid.New(), Name: name, Category: "general", IsActive: true,
		ComponentCode: "export default () => <p>" + name + "</p>",
		IsPro: true, IsDynamic: false, Discount: 10,
		CreatedAt: base.AddDate(0, 0, day), UpdatedAt: base.AddDate(0, 0, day),
	}
}

func html(name string, day int) *models.HTMLTemplate {
	return &models.HTMLTemplate{
		ID: uuid.New(), Name: name, Category: "general", IsActive: true, IsFree: true,
		HTMLCode: "<h1>" + name + "</h1>", CSSCode: "h1{}", Status: models.StatusApproved,
		CreatedAt: base.AddDate(0, 0, day), UpdatedAt: base.AddDate(0, 0, day),
	}
}

func strp(s string) *string { return &s }

type fixture struct {
	react   *fakeReact
	html    *fakeHTML
	cats    *fakeCategories
	reviews *fakeReviews
	orders  *fakeOrders
}

func newFixture() *fixture {
	return &fixture{
		react:   &fakeReact{},
		html:    &fakeHTML{},
		cats:    &fakeCategories{},
		reviews: &fakeReviews{ratings: map[uuid.UUID][]int{}},
		orders:  &fakeOrders{counts: map[uuid.UUID]int{}},
	}
}

func (f *fixture) service() *Service {
	return NewService(Stores{React: f.react, HTML: f.html, Categories: f.cats, Reviews: f.reviews, Orders: f.orders})
}

func TestListMergesBothStores(t *testing.T) {
	f := newFixture()
	f.react.rows = []*models.ReactTemplate{react("r1", 1), react("r2", 4)}
	f.html.rows = []*models.HTMLTemplate{html("h1", 2), html("h2", 5), html("h3", 3)}

	got, err := f.service().List(context.Background(), ListOptions{SortBy: SortCreatedAt})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 templates, got %d", len(got))
	}

	wantNames := []string{"h2", "r2", "h3", "h1", "r1"}
	for i, want := range wantNames {
		if got[i].Name != want {
			t.Errorf("position %d: got %q, want %q", i, got[i].Name, want)
		}
	}
	for _, tmpl := range got {
		switch tmpl.Type {
		case models.TemplateKindHTML:
			if !tmpl.IsHTMLTemplate {
				t.Errorf("%s: isHtmlTemplate should be true", tmpl.Name)
			}
		case models.TemplateKindReact:
			if tmpl.IsHTMLTemplate {
				t.Errorf("%s: isHtmlTemplate should be false", tmpl.Name)
			}
		default:
			t.Errorf("%s: unexpected type %q", tmpl.Name, tmpl.Type)
		}
	}
}

func TestListSortByUpdatedAtAndTies(t *testing.T) {
	f := newFixture()
	a, b, c := html("a", 1), html("b", 2), html("c", 3)
	a.UpdatedAt = base.AddDate(0, 1, 0)
	b.UpdatedAt = base
	c.UpdatedAt = base
	f.html.rows = []*models.HTMLTemplate{b, c, a}

	svc := f.service()
	got, err := svc.List(context.Background(), ListOptions{SortBy: SortUpdatedAt})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got[0].Name != "a" {
		t.Errorf("most recently updated should come first, got %q", got[0].Name)
	}

	// Equal timestamps fall back to id order, so repeated calls agree.
	again, _ := svc.List(context.Background(), ListOptions{SortBy: SortUpdatedAt})
	for i := range got {
		if got[i].ID != again[i].ID {
			t.Fatalf("order not stable at %d", i)
		}
	}
	if got[1].ID.String() > got[2].ID.String() {
		t.Error("ties should be ordered by id")
	}
}

func TestListExcludesInactiveUnlessRequested(t *testing.T) {
	f := newFixture()
	hidden := html("draft", 1)
	hidden.IsActive = false
	hidden.Status = models.StatusApproved // status is not consulted
	f.html.rows = []*models.HTMLTemplate{hidden, html("live", 2)}

	svc := f.service()
	got, _ := svc.List(context.Background(), ListOptions{})
	if len(got) != 1 || got[0].Name != "live" {
		t.Fatalf("expected only the active template, got %+v", got)
	}

	all, _ := svc.List(context.Background(), ListOptions{IncludeInactive: true})
	if len(all) != 2 {
		t.Errorf("admin listing should include inactive templates, got %d", len(all))
	}
}

func TestListCategoryThreeWayMatch(t *testing.T) {
	f := newFixture()
	f.cats.cats = []models.Category{{ID: "cat-1", Name: "Birthday"}, {ID: "cat-2", Name: "Wedding"}}
	f.cats.subs = []models.Subcategory{{ID: "sub-9", CategoryID: "cat-2", Name: "Birthday"}}

	byString := html("legacy", 1)
	byString.Category = "birthday"

	byID := html("by-id", 2)
	byID.Category = ""
	byID.CategoryID = strp("cat-1")

	bySub := react("by-sub", 3)
	bySub.Category = "misc"
	bySub.SubcategoryID = strp("sub-9")

	other := html("other", 4)
	other.CategoryID = strp("cat-2")

	f.html.rows = []*models.HTMLTemplate{byString, byID, other}
	f.react.rows = []*models.ReactTemplate{bySub}
	svc := f.service()

	tests := []struct {
		filter string
		want   []string
	}{
		{"birthday", []string{"legacy"}},
		{"Birthday", []string{"by-sub", "by-id"}},
		{"cat-1", []string{"by-id"}},
		{"sub-9", []string{"by-sub"}},
		{"Wedding", []string{"other"}},
		{"nothing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			got, err := svc.ByCategory(context.Background(), tt.filter, 0)
			if err != nil {
				t.Fatalf("ByCategory: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d templates, want %d", len(got), len(tt.want))
			}
			for i, name := range tt.want {
				if got[i].Name != name {
					t.Errorf("position %d: got %q, want %q", i, got[i].Name, name)
				}
			}
		})
	}
}

func TestListPagination(t *testing.T) {
	f := newFixture()
	for i := 0; i < 5; i++ {
		f.html.rows = append(f.html.rows, html(string(rune('a'+i)), i))
	}
	svc := f.service()

	got, _ := svc.List(context.Background(), ListOptions{Limit: 2, Offset: 2})
	if len(got) != 2 || got[0].Name != "c" || got[1].Name != "b" {
		t.Errorf("unexpected page: %+v", got)
	}

	got, _ = svc.List(context.Background(), ListOptions{Limit: 2, Offset: 10})
	if len(got) != 0 {
		t.Errorf("offset past the end should be empty, got %d", len(got))
	}
}

func TestEnrichRatings(t *testing.T) {
	f := newFixture()
	rated, unrated := html("rated", 2), react("unrated", 1)
	f.html.rows = []*models.HTMLTemplate{rated}
	f.react.rows = []*models.ReactTemplate{unrated}
	f.reviews.ratings[rated.ID] = []int{5, 3, 4}

	got, err := f.service().List(context.Background(), ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if f.reviews.calls != 1 {
		t.Errorf("aggregates should be fetched in one call, got %d", f.reviews.calls)
	}
	if got[0].Rating != 4.0 || got[0].ReviewsCount != 3 {
		t.Errorf("rated: got %v/%d, want 4.0/3", got[0].Rating, got[0].ReviewsCount)
	}
	if got[1].Rating != 0 || got[1].ReviewsCount != 0 {
		t.Errorf("unrated: got %v/%d, want 0/0", got[1].Rating, got[1].ReviewsCount)
	}
}

func TestEnrichRoundsAndCopies(t *testing.T) {
	f := newFixture()
	tmpl := html("t", 1)
	f.reviews.ratings[tmpl.ID] = []int{5, 4, 4}

	items := []models.NormalizedTemplate{{ID: tmpl.ID, Name: "t"}}
	got, err := f.service().enrich(context.Background(), items)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if got[0].Rating != 4.3 {
		t.Errorf("rating: got %v, want 4.3", got[0].Rating)
	}
	if items[0].Rating != 0 || items[0].ReviewsCount != 0 {
		t.Error("enrich must not modify its input")
	}
}

func TestFetchErrorPropagates(t *testing.T) {
	f := newFixture()
	f.react.rows = []*models.ReactTemplate{react("r", 1)}
	boom := errors.New("connection refused")
	f.html.err = boom

	got, err := f.service().List(context.Background(), ListOptions{})
	if got != nil {
		t.Errorf("expected no partial result, got %d items", len(got))
	}
	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Error("FetchError should unwrap to the store error")
	}
}

func TestTrendingFallsBackToLatest(t *testing.T) {
	f := newFixture()
	f.react.rows = []*models.ReactTemplate{react("r1", 1), react("r2", 3)}
	f.html.rows = []*models.HTMLTemplate{html("h1", 2)}
	svc := f.service()

	trending, err := svc.Trending(context.Background(), 10)
	if err != nil {
		t.Fatalf("Trending: %v", err)
	}
	latest, _ := svc.Latest(context.Background(), 10)
	if len(trending) != 3 || len(trending) != len(latest) {
		t.Fatalf("expected 3 templates, got %d", len(trending))
	}
	for i := range latest {
		if trending[i].ID != latest[i].ID {
			t.Errorf("position %d: trending %q, latest %q", i, trending[i].Name, latest[i].Name)
		}
	}
}

func TestTrendingRanksByPurchases(t *testing.T) {
	f := newFixture()
	old, mid, fresh := react("old", 1), html("mid", 2), html("fresh", 3)
	f.react.rows = []*models.ReactTemplate{old}
	f.html.rows = []*models.HTMLTemplate{mid, fresh}
	f.orders.counts[old.ID] = 5
	f.orders.counts[mid.ID] = 2

	got, err := f.service().Trending(context.Background(), 2)
	if err != nil {
		t.Fatalf("Trending: %v", err)
	}
	if len(got) != 2 || got[0].Name != "old" || got[1].Name != "mid" {
		t.Errorf("unexpected ranking: %+v", got)
	}
}

func TestGet(t *testing.T) {
	f := newFixture()
	live, hidden := react("live", 1), html("hidden", 2)
	hidden.IsActive = false
	f.react.rows = []*models.ReactTemplate{live}
	f.html.rows = []*models.HTMLTemplate{hidden}
	f.reviews.ratings[live.ID] = []int{4}
	svc := f.service()

	got, err := svc.Get(context.Background(), live.ID, false)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Type != models.TemplateKindReact || got.Rating != 4 || got.ReviewsCount != 1 {
		t.Errorf("unexpected template: %+v", got)
	}

	if _, err := svc.Get(context.Background(), hidden.ID, false); !errors.Is(err, ErrNotFound) {
		t.Errorf("inactive template should be hidden, got %v", err)
	}
	if got, err := svc.Get(context.Background(), hidden.ID, true); err != nil || !got.IsHTMLTemplate {
		t.Errorf("admin Get: %+v, %v", got, err)
	}
	if _, err := svc.Get(context.Background(), uuid.New(), true); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id: got %v", err)
	}
}
