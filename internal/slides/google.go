package slides

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	slidesapi "google.golang.org/api/slides/v1"

	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
)

const maxExportBytes = 30 << 20

// GoogleRenderer renders images by duplicating a Slides template, swapping
// its tagged elements, exporting the first slide as a PNG, and parking the
// result in the account's Drive export folder.
type GoogleRenderer struct {
	slides     *slidesapi.Service
	drive      *drive.Service
	httpClient *http.Client
}

func NewGoogleRenderer(ctx context.Context, opts ...option.ClientOption) (*GoogleRenderer, error) {
	slidesSvc, err := slidesapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating slides service: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}
	return &GoogleRenderer{
		slides:     slidesSvc,
		drive:      driveSvc,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (r *GoogleRenderer) RenderPinImage(ctx context.Context, account *types.AccountConfig, title, photoURL string) (*types.ImageAsset, error) {
	if account.PinTemplateID == "" {
		return nil, &ErrNoTemplate{Kind: "pin"}
	}
	return r.render(ctx, account, account.PinTemplateID, title,
		map[string]string{TagMainImage: photoURL},
		fmt.Sprintf("pin-%s-%d", account.SiteName, time.Now().Unix()))
}

func (r *GoogleRenderer) RenderCollage(ctx context.Context, account *types.AccountConfig, photoURL, secondPhotoURL string) (*types.ImageAsset, error) {
	if account.CollageTemplateID == "" {
		return nil, &ErrNoTemplate{Kind: "collage"}
	}
	return r.render(ctx, account, account.CollageTemplateID, "",
		map[string]string{TagMainImage: photoURL, TagSecondImage: secondPhotoURL},
		fmt.Sprintf("collage-%s-%d", account.SiteName, time.Now().Unix()))
}

func (r *GoogleRenderer) Remaster(ctx context.Context, account *types.AccountConfig, photoURL string) (*types.ImageAsset, error) {
	if account.FeaturedTemplateID == "" {
		return nil, &ErrNoTemplate{Kind: "featured"}
	}
	return r.render(ctx, account, account.FeaturedTemplateID, "",
		map[string]string{TagMainImage: photoURL},
		fmt.Sprintf("featured-%s-%d", account.SiteName, time.Now().Unix()))
}

// render runs the full duplicate-replace-export-share cycle. The temporary
// presentation copy is trashed on the way out whether or not export
// succeeded.
func (r *GoogleRenderer) render(ctx context.Context, account *types.AccountConfig, templateID, title string, images map[string]string, exportName string) (*types.ImageAsset, error) {
	if account.ExportFolderID == "" {
		return nil, &ErrNoExportFolder{SiteName: account.SiteName}
	}

	tmp, err := r.drive.Files.Copy(templateID, &drive.File{Name: exportName}).Context(ctx).Do()
	if err != nil {
		return nil, &RenderError{Stage: "copy-template", Err: err}
	}
	defer func() {
		_, _ = r.drive.Files.Update(tmp.Id, &drive.File{Trashed: true}).Context(context.Background()).Do()
	}()

	pres, err := r.slides.Presentations.Get(tmp.Id).Context(ctx).Do()
	if err != nil {
		return nil, &RenderError{Stage: "get-presentation", Err: err}
	}
	if len(pres.Slides) == 0 {
		return nil, &RenderError{Stage: "get-presentation", Err: fmt.Errorf("template %s has no slides", templateID)}
	}
	slide := pres.Slides[0]

	reqs := buildReplaceRequests(slide, title, images)
	if len(reqs) > 0 {
		_, err = r.slides.Presentations.BatchUpdate(tmp.Id, &slidesapi.BatchUpdatePresentationRequest{
			Requests: reqs,
		}).Context(ctx).Do()
		if err != nil {
			return nil, &RenderError{Stage: "batch-update", Err: err}
		}
	}

	thumb, err := r.slides.Presentations.Pages.GetThumbnail(tmp.Id, slide.ObjectId).
		ThumbnailPropertiesMimeType("PNG").
		ThumbnailPropertiesThumbnailSize("LARGE").
		Context(ctx).Do()
	if err != nil {
		return nil, &RenderError{Stage: "export-thumbnail", Err: err}
	}

	png, err := r.download(ctx, thumb.ContentUrl)
	if err != nil {
		return nil, &RenderError{Stage: "download-thumbnail", Err: err}
	}
	defer png.Close()

	exported, err := r.drive.Files.Create(&drive.File{
		Name:     exportName + ".png",
		MimeType: "image/png",
		Parents:  []string{account.ExportFolderID},
	}).Media(png).Fields("id", "webViewLink").Context(ctx).Do()
	if err != nil {
		return nil, &RenderError{Stage: "upload-export", Err: err}
	}

	_, err = r.drive.Permissions.Create(exported.Id, &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}).Context(ctx).Do()
	if err != nil {
		return nil, &RenderError{Stage: "share-export", Err: err}
	}

	viewURL := exported.WebViewLink
	if viewURL == "" {
		viewURL = fmt.Sprintf("https://drive.google.com/file/d/%s/view", exported.Id)
	}
	return &types.ImageAsset{
		ViewURL:     viewURL,
		DownloadURL: "https://drive.google.com/uc?export=download&id=" + exported.Id,
	}, nil
}

func (r *GoogleRenderer) download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return readCloser{io.LimitReader(resp.Body, maxExportBytes), resp.Body}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

// buildReplaceRequests maps each tagged element on the slide to a
// replacement request. An untagged template degrades gracefully: the first
// image element takes the main photo.
func buildReplaceRequests(slide *slidesapi.Page, title string, images map[string]string) []*slidesapi.Request {
	var reqs []*slidesapi.Request
	replaced := make(map[string]bool, len(images))

	for _, el := range slide.PageElements {
		if url, ok := images[el.Description]; ok && el.Image != nil && url != "" {
			reqs = append(reqs, &slidesapi.Request{
				ReplaceImage: &slidesapi.ReplaceImageRequest{
					ImageObjectId:      el.ObjectId,
					Url:                url,
					ImageReplaceMethod: "CENTER_CROP",
				},
			})
			replaced[el.Description] = true
			continue
		}
		if el.Description == TagTitle && title != "" && el.Shape != nil {
			reqs = append(reqs,
				&slidesapi.Request{
					DeleteText: &slidesapi.DeleteTextRequest{
						ObjectId:  el.ObjectId,
						TextRange: &slidesapi.Range{Type: "ALL"},
					},
				},
				&slidesapi.Request{
					InsertText: &slidesapi.InsertTextRequest{
						ObjectId: el.ObjectId,
						Text:     title,
					},
				})
		}
	}

	// Tag missing from the template: drop the main photo into the first
	// image element instead of failing the render.
	if url := images[TagMainImage]; url != "" && !replaced[TagMainImage] {
		for _, el := range slide.PageElements {
			if el.Image != nil {
				reqs = append(reqs, &slidesapi.Request{
					ReplaceImage: &slidesapi.ReplaceImageRequest{
						ImageObjectId:      el.ObjectId,
						Url:                url,
						ImageReplaceMethod: "CENTER_CROP",
					},
				})
				break
			}
		}
	}

	return reqs
}

var _ Renderer = (*GoogleRenderer)(nil)
