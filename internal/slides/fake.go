package slides

import (
	"context"
	"fmt"

	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
)

// FakeCall records one render request made against a Fake.
type FakeCall struct {
	Kind     string
	Title    string
	PhotoURL string
}

// Fake is a scripted Renderer for tests. Each render returns a
// deterministic asset unless an error has been injected for its kind.
type Fake struct {
	Calls  []FakeCall
	Errors map[string]error
	seq    int
}

func NewFakeRenderer() *Fake {
	return &Fake{Errors: make(map[string]error)}
}

// FailWith makes every subsequent render of the given kind ("pin",
// "collage", "featured") return err.
func (f *Fake) FailWith(kind string, err error) *Fake {
	f.Errors[kind] = err
	return f
}

func (f *Fake) RenderPinImage(_ context.Context, _ *types.AccountConfig, title, photoURL string) (*types.ImageAsset, error) {
	return f.record("pin", title, photoURL)
}

func (f *Fake) RenderCollage(_ context.Context, _ *types.AccountConfig, photoURL, _ string) (*types.ImageAsset, error) {
	return f.record("collage", "", photoURL)
}

func (f *Fake) Remaster(_ context.Context, _ *types.AccountConfig, photoURL string) (*types.ImageAsset, error) {
	return f.record("featured", "", photoURL)
}

func (f *Fake) record(kind, title, photoURL string) (*types.ImageAsset, error) {
	f.Calls = append(f.Calls, FakeCall{Kind: kind, Title: title, PhotoURL: photoURL})
	if err := f.Errors[kind]; err != nil {
		return nil, err
	}
	f.seq++
	id := fmt.Sprintf("fake-%s-%d", kind, f.seq)
	return &types.ImageAsset{
		ViewURL:     fmt.Sprintf("https://drive.google.com/file/d/%s/view", id),
		DownloadURL: "https://drive.google.com/uc?export=download&id=" + id,
	}, nil
}

var _ Renderer = (*Fake)(nil)
