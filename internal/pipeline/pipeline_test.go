package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diriredouane/AI-Recipe-Automator/internal/bridge"
	"github.com/diriredouane/AI-Recipe-Automator/internal/enrich"
	"github.com/diriredouane/AI-Recipe-Automator/internal/generate"
	"github.com/diriredouane/AI-Recipe-Automator/internal/linking"
	"github.com/diriredouane/AI-Recipe-Automator/internal/llm"
	"github.com/diriredouane/AI-Recipe-Automator/internal/sheets"
	"github.com/diriredouane/AI-Recipe-Automator/internal/slides"
	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
	"github.com/diriredouane/AI-Recipe-Automator/internal/wp"
)

type fakeWP struct {
	baseURL  string
	posts    map[int]*wp.Post
	created  []wp.CreatePostParams
	updates  map[int]string
	recipes  []*types.RecipeCard
	nextID   int
	catErr   error
	cardErr  error
	featured []int
}

func newFakeWP() *fakeWP {
	return &fakeWP{
		baseURL: "https://site.example",
		posts:   make(map[int]*wp.Post),
		updates: make(map[int]string),
		nextID:  42,
	}
}

func (f *fakeWP) BaseURL() string { return f.baseURL }

func (f *fakeWP) EditURL(id int) string {
	return fmt.Sprintf("%s/wp-admin/post.php?post=%d&action=edit", f.baseURL, id)
}

func (f *fakeWP) GetPost(_ context.Context, id int) (*wp.Post, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, &wp.APIError{StatusCode: 404, Endpoint: "posts"}
	}
	return post, nil
}

func (f *fakeWP) CreatePost(_ context.Context, params wp.CreatePostParams) (*wp.Post, error) {
	f.created = append(f.created, params)
	id := f.nextID
	f.nextID++
	status := "draft"
	link := ""
	if params.Publish {
		status = "publish"
		link = f.baseURL + "/" + wp.Slugify(params.Keyword) + "/"
	}
	post := &wp.Post{ID: id, Link: link, Status: status, Title: params.Title, Content: params.Content}
	f.posts[id] = post
	return post, nil
}

func (f *fakeWP) UpdatePostContent(_ context.Context, id int, content string) (*wp.Post, error) {
	f.updates[id] = content
	if post, ok := f.posts[id]; ok {
		post.Content = content
		return post, nil
	}
	return &wp.Post{ID: id, Content: content}, nil
}

func (f *fakeWP) PublishDraft(_ context.Context, id int) (*wp.Post, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, &wp.APIError{StatusCode: 404, Endpoint: "posts"}
	}
	post.Status = "publish"
	post.Link = f.baseURL + "/published-" + fmt.Sprint(id) + "/"
	return post, nil
}

func (f *fakeWP) UploadMedia(_ context.Context, filename, _ string, data io.Reader) (*wp.Media, error) {
	_, _ = io.ReadAll(data)
	return &wp.Media{ID: 99, SourceURL: f.baseURL + "/uploads/" + filename}, nil
}

func (f *fakeWP) Categories(context.Context) ([]wp.Category, error) {
	if f.catErr != nil {
		return nil, f.catErr
	}
	return []wp.Category{{ID: 4, Name: "Desserts"}, {ID: 7, Name: "Dinner"}}, nil
}

func (f *fakeWP) CreateRecipe(_ context.Context, card *types.RecipeCard, _ int) (*types.CreatedRecipe, error) {
	if f.cardErr != nil {
		return nil, f.cardErr
	}
	f.recipes = append(f.recipes, card)
	return &types.CreatedRecipe{ID: 12, Shortcode: `[wprm-recipe id="12"]`}, nil
}

func (f *fakeWP) SetRecipeFeaturedImage(_ context.Context, recipeID, mediaID int) error {
	f.featured = append(f.featured, recipeID, mediaID)
	return nil
}

type fakeBridge struct {
	pins       []*types.PinPayload
	listAsks   []string
	sendErr    error
	webhookURL string
}

func (f *fakeBridge) SendPin(_ context.Context, url string, payload *types.PinPayload) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.webhookURL = url
	f.pins = append(f.pins, payload)
	return nil
}

func (f *fakeBridge) RequestBoardList(_ context.Context, _ string, siteName string) error {
	f.listAsks = append(f.listAsks, siteName)
	return nil
}

var _ Bridge = (*fakeBridge)(nil)
var _ Bridge = (*bridge.Client)(nil)
var _ WordPress = (*fakeWP)(nil)
var _ WordPress = (*wp.Client)(nil)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// stubHTTPClient answers every request with fake PNG bytes, so image
// downloads inside the flow never leave the test.
func stubHTTPClient() *http.Client {
	return &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"image/png"}},
			Body:       io.NopCloser(strings.NewReader("pngbytes")),
			Request:    r,
		}, nil
	})}
}

const briefReply = `{
	"target_keyword": "beef stew",
	"seo_title": "The Best Beef Stew",
	"meta_description": "A hearty beef stew.",
	"lsi_keywords": ["dutch oven stew"],
	"outline_markdown": "## Intro\n## Steps",
	"recipe_data": {
		"title": "Beef Stew",
		"summary": "Hearty.",
		"ingredients": [
			{"amount": "2", "unit": "lb", "name": "beef chuck", "notes": ""},
			{"amount": "3", "unit": "", "name": "carrots", "notes": ""},
			{"amount": "1", "unit": "", "name": "onion", "notes": ""}
		],
		"instructions": ["Brown.", "Add.", "Simmer."],
		"servings": "6",
		"prep_time": 20,
		"cook_time": 90
	}
}`

const extractionReply = `{"post_title": "Hearty Beef Stew", "target_keyword": "beef stew"}`

const pinReply = `{
	"pinterest_title": "Cozy Beef Stew",
	"pinterest_description": "Fall-apart tender beef in a rich broth.",
	"image_title": "Cozy Beef Stew",
	"chosen_board_name": "Weeknight Dinners"
}`

const notFoodReply = `{"image_type": "NOT_FOOD", "dish_name": "", "visible_ingredients": [], "preparation_style": ""}`

type fixture struct {
	store    *sheets.Memory
	fakeLLM  *llm.Fake
	wpc      *fakeWP
	renderer *slides.Fake
	bridge   *fakeBridge
	proc     *Processor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := sheets.NewMemory()
	store.AddAccount(&types.AccountConfig{
		SiteName:       "Foo",
		Active:         types.AccountActive,
		WPBaseURL:      "https://site.example",
		WPUser:         "editor",
		WPAppPassword:  "secret",
		MainWebhookURL: "https://bridge.example/hook",
		PinTemplateID:  "tpl-pin",
		ExportFolderID: "folder",
		FacebookURL:    "https://facebook.com/foorecipes",
	})
	store.SetBoards([]types.Board{
		{SiteName: "Foo", Name: "Weeknight Dinners", ID: "987654321098765432"},
		{SiteName: "Bar", Name: "Other", ID: "1"},
	})

	fakeLLM := llm.NewFake()
	wpc := newFakeWP()
	renderer := slides.NewFakeRenderer()
	br := &fakeBridge{}

	proc := NewProcessor(Options{
		Store:        store,
		Enricher:     enrich.NewEngine(fakeLLM, stubHTTPClient()),
		Generator:    generate.New(fakeLLM),
		Linker:       linking.New(fakeLLM),
		Renderer:     renderer,
		Bridge:       br,
		HTTPClient:   stubHTTPClient(),
		NewWordPress: func(*types.AccountConfig) WordPress { return wpc },
	})

	return &fixture{store: store, fakeLLM: fakeLLM, wpc: wpc, renderer: renderer, bridge: br, proc: proc}
}

func (f *fixture) row(t *testing.T, number int) *types.Row {
	t.Helper()
	row, err := f.store.Row(context.Background(), "Data-Foo", number)
	require.NoError(t, err)
	return row
}

func TestProcessRow_DraftFlow(t *testing.T) {
	f := newFixture(t)
	f.store.SeedRows("Data-Foo", []types.Row{
		{Trigger: "DRAFT", Title: "grandma's pork stew recipe with carrots and potatoes"},
	})
	f.fakeLLM.
		Enqueue(extractionReply). // title/keyword
		Enqueue(briefReply).      // outline
		Enqueue("<h2>Intro</h2><p>Body.</p><p>More.</p>"). // article
		Enqueue(`{"category_id": 7}`)                      // category

	require.NoError(t, f.proc.ProcessRow(context.Background(), "Data-Foo", 2))

	row := f.row(t, 2)
	assert.Empty(t, row.Trigger)
	assert.Equal(t, types.StatusDraftCreated, row.Status)
	assert.Contains(t, row.EditURL, "post=42")
	assert.Contains(t, row.CostDetails, "Total: $")

	require.Len(t, f.wpc.created, 1)
	created := f.wpc.created[0]
	assert.False(t, created.Publish)
	assert.Equal(t, "The Best Beef Stew", created.Title, "the brief's SEO title wins over the extraction title")
	assert.Equal(t, []int{7}, created.Categories)
	assert.Equal(t, 99, created.FeaturedMediaID)
	assert.Contains(t, created.Content, `[wprm-recipe id="12"]`)
	assert.Contains(t, created.Content, "https://facebook.com/foorecipes", "follow block is appended for sites with a Facebook page")

	assert.Empty(t, f.bridge.pins, "draft rows never reach the bridge")
}

func TestProcessRow_ArticleSubstitutionFailSafe(t *testing.T) {
	f := newFixture(t)
	f.store.SeedRows("Data-Foo", []types.Row{
		{Trigger: "DRAFT", Title: "grandma's stew recipe with carrots and potatoes"},
	})
	f.fakeLLM.
		Enqueue(extractionReply).
		Enqueue(briefReply).
		Enqueue("<h2>Intro</h2><p>Nothing beats slow-cooked pork shoulder.</p>").
		Enqueue(`{"category_id": 7}`)

	require.NoError(t, f.proc.ProcessRow(context.Background(), "Data-Foo", 2))

	require.Len(t, f.wpc.created, 1)
	content := f.wpc.created[0].Content
	assert.NotContains(t, strings.ToLower(content), "pork")
	assert.Contains(t, content, "Beef shoulder")
}

func TestProcessRow_FullFlowHandsOffToBridge(t *testing.T) {
	f := newFixture(t)
	f.store.SeedRows("Data-Foo", []types.Row{
		{Trigger: "OK", Title: "grandma's beef stew recipe with carrots and potatoes"},
	})
	f.fakeLLM.
		Enqueue(extractionReply).
		Enqueue(briefReply).
		Enqueue("<h2>Intro</h2><p>Body.</p><p>More.</p>").
		Enqueue(`{"category_id": 7}`).
		Enqueue(pinReply)

	require.NoError(t, f.proc.ProcessRow(context.Background(), "Data-Foo", 2))

	row := f.row(t, 2)
	assert.Equal(t, types.MarkerWaiting, row.Trigger)
	assert.NotEmpty(t, row.PinImageURL)
	assert.Equal(t, "Weeknight Dinners", row.BoardName)
	assert.Equal(t, "Cozy Beef Stew", row.PinTitle)

	require.Len(t, f.bridge.pins, 1)
	pin := f.bridge.pins[0]
	assert.Equal(t, 2, pin.RowNumber)
	assert.Equal(t, "Data-Foo", pin.SheetName)
	assert.Equal(t, "987654321098765432", pin.BoardID)
	assert.Equal(t, "https://site.example/beef-stew/", pin.DestinationLink)
	assert.Equal(t, "https://bridge.example/hook", f.bridge.webhookURL)

	require.Len(t, f.wpc.created, 1)
	assert.True(t, f.wpc.created[0].Publish)
}

func TestProcessRow_PinWithoutDestination(t *testing.T) {
	f := newFixture(t)
	f.store.SeedRows("Data-Foo", []types.Row{
		{Trigger: "PIN", Title: "beef stew", PhotoURL: "https://photos.example/stew.jpg"},
	})
	f.fakeLLM.
		Enqueue(extractionReply).
		Enqueue(notFoodReply).
		Enqueue(pinReply)

	require.NoError(t, f.proc.ProcessRow(context.Background(), "Data-Foo", 2))

	row := f.row(t, 2)
	assert.Equal(t, types.MarkerWaiting, row.Trigger)

	require.Len(t, f.bridge.pins, 1)
	pin := f.bridge.pins[0]
	assert.Empty(t, pin.DestinationLink, "photo-only pins carry no destination")
	assert.Equal(t, "Cozy Beef Stew", pin.Title)

	// The Pinterest copy is written for the extracted title, not the raw
	// row title.
	last := f.fakeLLM.Calls[len(f.fakeLLM.Calls)-1]
	assert.Contains(t, last.Prompt, "Hearty Beef Stew")
}

func TestProcessRow_PinNeedsTitleAndPhoto(t *testing.T) {
	f := newFixture(t)
	f.store.SeedRows("Data-Foo", []types.Row{
		{Trigger: "PIN", Title: "beef stew"},
	})

	err := f.proc.ProcessRow(context.Background(), "Data-Foo", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "photo")

	row := f.row(t, 2)
	assert.Equal(t, types.MarkerError, row.Trigger)
	assert.Empty(t, f.bridge.pins)
}

func TestProcessRow_UnknownBoardDegradesToNoBoard(t *testing.T) {
	f := newFixture(t)
	f.store.SetBoards(nil)
	f.store.SeedRows("Data-Foo", []types.Row{
		{Trigger: "PIN", Title: "beef stew", PhotoURL: "https://photos.example/stew.jpg"},
	})
	f.fakeLLM.
		Enqueue(extractionReply).
		Enqueue(notFoodReply).
		Enqueue(pinReply)

	require.NoError(t, f.proc.ProcessRow(context.Background(), "Data-Foo", 2))

	require.Len(t, f.bridge.pins, 1)
	assert.Empty(t, f.bridge.pins[0].BoardName)
	assert.Empty(t, f.bridge.pins[0].BoardID)
}

func TestProcessRow_PinImageIdempotence(t *testing.T) {
	f := newFixture(t)
	existing := "https://drive.google.com/uc?export=download&id=already-there"
	f.store.SeedRows("Data-Foo", []types.Row{
		{Trigger: "PIN", Title: "beef stew", PhotoURL: "https://photos.example/stew.jpg", PinImageURL: existing},
	})
	f.fakeLLM.
		Enqueue(extractionReply).
		Enqueue(notFoodReply).
		Enqueue(pinReply)

	require.NoError(t, f.proc.ProcessRow(context.Background(), "Data-Foo", 2))

	for _, call := range f.renderer.Calls {
		assert.NotEqual(t, "pin", call.Kind, "existing pin image short-circuits rendering")
	}
	require.Len(t, f.bridge.pins, 1)
	assert.Equal(t, existing, f.bridge.pins[0].ImageURL)
}

func TestProcessRow_PinLinkPublishesDraftFirst(t *testing.T) {
	f := newFixture(t)
	f.wpc.posts[7] = &wp.Post{ID: 7, Status: "draft"}
	f.store.SeedRows("Data-Foo", []types.Row{
		{Trigger: "PIN_LINK", Title: "beef stew", PhotoURL: "https://photos.example/stew.jpg",
			EditURL: "https://site.example/wp-admin/post.php?post=7&action=edit"},
	})
	f.fakeLLM.
		Enqueue(extractionReply).
		Enqueue(notFoodReply).
		Enqueue(pinReply)

	require.NoError(t, f.proc.ProcessRow(context.Background(), "Data-Foo", 2))

	assert.Equal(t, "publish", f.wpc.posts[7].Status)

	row := f.row(t, 2)
	assert.Equal(t, "https://site.example/published-7/", row.PublicURL)
	assert.Equal(t, types.MarkerWaiting, row.Trigger)

	require.Len(t, f.bridge.pins, 1)
	assert.Equal(t, "https://site.example/published-7/", f.bridge.pins[0].DestinationLink)
}

func TestProcessRow_PausedAccount(t *testing.T) {
	f := newFixture(t)
	f.store.AddAccount(&types.AccountConfig{
		SiteName:      "Baz",
		Active:        types.AccountPaused,
		WPBaseURL:     "https://baz.example",
		WPUser:        "editor",
		WPAppPassword: "secret",
	})
	f.store.SeedRows("Data-Baz", []types.Row{{Trigger: "OK", Title: "beef stew"}})

	require.NoError(t, f.proc.ProcessRow(context.Background(), "Data-Baz", 2))

	row, err := f.store.Row(context.Background(), "Data-Baz", 2)
	require.NoError(t, err)
	assert.Equal(t, types.MarkerPaused, row.Trigger)
	assert.Contains(t, row.Error, "paused")
	assert.Empty(t, f.fakeLLM.Calls, "no model calls for a paused account")
}

func TestProcessRow_NonTriggerValueIsSkipped(t *testing.T) {
	f := newFixture(t)
	f.store.SeedRows("Data-Foo", []types.Row{
		{Trigger: "some stray note", Title: "beef stew"},
	})

	require.NoError(t, f.proc.ProcessRow(context.Background(), "Data-Foo", 2))

	row := f.row(t, 2)
	assert.Equal(t, "some stray note", row.Trigger, "cell left untouched")
	assert.Empty(t, row.Error)
	assert.Empty(t, f.fakeLLM.Calls)
	assert.Empty(t, f.wpc.created)
}

func TestProcessRow_ErrorWritesMarkerAndCosts(t *testing.T) {
	f := newFixture(t)
	f.store.SeedRows("Data-Foo", []types.Row{{Trigger: "OK", Title: "beef stew"}})
	f.fakeLLM.EnqueueError(&llm.APICallError{Model: "gemini-2.5-flash", Err: assert.AnError})

	err := f.proc.ProcessRow(context.Background(), "Data-Foo", 2)
	require.Error(t, err)

	row := f.row(t, 2)
	assert.Equal(t, types.MarkerError, row.Trigger)
	assert.NotEmpty(t, row.Error)
}

func TestProcessRow_RecipeCardFailureIsNonBlocking(t *testing.T) {
	f := newFixture(t)
	f.wpc.cardErr = assert.AnError
	f.store.SeedRows("Data-Foo", []types.Row{{Trigger: "DRAFT", Title: "beef stew dinner idea"}})
	f.fakeLLM.
		Enqueue(extractionReply).
		Enqueue(briefReply).
		Enqueue("<h2>Intro</h2><p>Body.</p>").
		Enqueue(`{"category_id": 7}`)

	require.NoError(t, f.proc.ProcessRow(context.Background(), "Data-Foo", 2))

	row := f.row(t, 2)
	assert.Equal(t, types.StatusDraftCreated, row.Status)
	require.Len(t, f.wpc.created, 1)
	assert.NotContains(t, f.wpc.created[0].Content, "wprm-recipe")
}

func TestProcessRow_UpdateArticle(t *testing.T) {
	f := newFixture(t)
	var sb strings.Builder
	for i := 1; i <= 6; i++ {
		fmt.Fprintf(&sb, `<p><a href="https://site.example/r%d/">r%d</a></p>`, i, i)
	}
	f.wpc.posts[7] = &wp.Post{ID: 7, Content: sb.String()}
	f.store.SeedRows("Data-Foo", []types.Row{
		{Trigger: "UPDATE_ARTICLE", Title: "beef stew",
			EditURL: "https://site.example/wp-admin/post.php?post=7&action=edit"},
	})

	require.NoError(t, f.proc.ProcessRow(context.Background(), "Data-Foo", 2))

	row := f.row(t, 2)
	assert.Equal(t, types.StatusUpdated, row.Status)
	assert.Empty(t, row.Trigger)
	assert.Equal(t, 4, strings.Count(f.wpc.updates[7], "href="))
}

func TestProcessRow_AddCard(t *testing.T) {
	f := newFixture(t)
	f.wpc.posts[7] = &wp.Post{ID: 7, Content: "<p>A stew article.</p>"}
	f.store.SeedRows("Data-Foo", []types.Row{
		{Trigger: "ADD_CARD", Title: "beef stew",
			EditURL: "https://site.example/wp-admin/post.php?post=7&action=edit"},
	})
	f.fakeLLM.Enqueue(`{
		"title": "Beef Stew",
		"summary": "Hearty.",
		"ingredients": [{"amount": "2", "unit": "lb", "name": "beef", "notes": ""}],
		"instructions": ["Brown.", "Simmer."],
		"servings": "6", "prep_time": 10, "cook_time": 60
	}`)

	require.NoError(t, f.proc.ProcessRow(context.Background(), "Data-Foo", 2))

	row := f.row(t, 2)
	assert.Equal(t, types.StatusCardAdded, row.Status)
	assert.Contains(t, f.wpc.updates[7], `[wprm-recipe id="12"]`)
}

func TestProcessRow_AddCard_AlreadyHasCard(t *testing.T) {
	f := newFixture(t)
	f.wpc.posts[7] = &wp.Post{ID: 7, Content: `<p>x</p>[wprm-recipe id="3"]`}
	f.store.SeedRows("Data-Foo", []types.Row{
		{Trigger: "ADD_CARD", Title: "beef stew",
			EditURL: "https://site.example/wp-admin/post.php?post=7&action=edit"},
	})

	require.NoError(t, f.proc.ProcessRow(context.Background(), "Data-Foo", 2))

	row := f.row(t, 2)
	assert.Equal(t, types.StatusCardExists, row.Status)
	assert.Empty(t, f.fakeLLM.Calls)
	assert.Empty(t, f.wpc.updates)
}

func TestSpliceCollage(t *testing.T) {
	article := "<p>one</p><p>two</p><p>three</p><p>four</p>"
	out := spliceCollage(article, "https://img.example/c.png", "Stew")
	assert.Contains(t, out, `<img src="https://img.example/c.png"`)

	before, _, found := strings.Cut(out, "<figure>")
	require.True(t, found)
	assert.Equal(t, 2, strings.Count(before, "</p>"), "collage lands at the middle paragraph")
}

func TestSpliceCollage_NoParagraphs(t *testing.T) {
	out := spliceCollage("<h2>only heading</h2>", "https://img.example/c.png", "Stew")
	assert.True(t, strings.HasSuffix(out, "</figure>"))
}
