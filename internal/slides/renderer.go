package slides

import (
	"context"

	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
)

// Element description tags the slide templates use to mark replaceable
// content. Tags live in each element's alt-text description.
const (
	TagMainImage   = "image principale"
	TagTitle       = "Titre"
	TagSecondImage = "image principale 2"
)

// Renderer produces branded images from slide templates.
type Renderer interface {
	// RenderPinImage fills the account's pin template with a title and a
	// dish photo and exports it as a shared PNG.
	RenderPinImage(ctx context.Context, account *types.AccountConfig, title, photoURL string) (*types.ImageAsset, error)

	// RenderCollage fills the account's collage template with two photos.
	RenderCollage(ctx context.Context, account *types.AccountConfig, photoURL, secondPhotoURL string) (*types.ImageAsset, error)

	// Remaster reframes a raw photo through the account's featured-image
	// template. Callers fall back to the source photo when it fails.
	Remaster(ctx context.Context, account *types.AccountConfig, photoURL string) (*types.ImageAsset, error)
}
