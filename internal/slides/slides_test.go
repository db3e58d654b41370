package slides

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	slidesapi "google.golang.org/api/slides/v1"

	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
)

func TestDriveDownloadURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "view url",
			in:   "https://drive.google.com/file/d/1AbC_dEf-123/view?usp=sharing",
			want: "https://drive.google.com/uc?export=download&id=1AbC_dEf-123",
		},
		{
			name: "open url with id param",
			in:   "https://drive.google.com/open?id=1AbC_dEf-123",
			want: "https://drive.google.com/uc?export=download&id=1AbC_dEf-123",
		},
		{
			name: "already a download url",
			in:   "https://drive.google.com/uc?export=download&id=1AbC",
			want: "https://drive.google.com/uc?export=download&id=1AbC",
		},
		{
			name: "non-drive url passes through",
			in:   "https://cdn.example.com/photo.jpg",
			want: "https://cdn.example.com/photo.jpg",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DriveDownloadURL(tt.in))
		})
	}
}

func taggedSlide() *slidesapi.Page {
	return &slidesapi.Page{
		ObjectId: "slide1",
		PageElements: []*slidesapi.PageElement{
			{ObjectId: "img1", Description: TagMainImage, Image: &slidesapi.Image{}},
			{ObjectId: "title1", Description: TagTitle, Shape: &slidesapi.Shape{}},
			{ObjectId: "img2", Description: TagSecondImage, Image: &slidesapi.Image{}},
		},
	}
}

func TestBuildReplaceRequests(t *testing.T) {
	reqs := buildReplaceRequests(taggedSlide(), "Beef Stew", map[string]string{
		TagMainImage:   "https://cdn.example.com/main.jpg",
		TagSecondImage: "https://cdn.example.com/second.jpg",
	})

	require.Len(t, reqs, 4)

	var images, deletes, inserts int
	for _, r := range reqs {
		switch {
		case r.ReplaceImage != nil:
			images++
		case r.DeleteText != nil:
			deletes++
		case r.InsertText != nil:
			inserts++
			assert.Equal(t, "Beef Stew", r.InsertText.Text)
			assert.Equal(t, "title1", r.InsertText.ObjectId)
		}
	}
	assert.Equal(t, 2, images)
	assert.Equal(t, 1, deletes)
	assert.Equal(t, 1, inserts)
}

func TestBuildReplaceRequests_UntaggedFallsBackToFirstImage(t *testing.T) {
	slide := &slidesapi.Page{
		ObjectId: "slide1",
		PageElements: []*slidesapi.PageElement{
			{ObjectId: "decor", Shape: &slidesapi.Shape{}},
			{ObjectId: "photo", Image: &slidesapi.Image{}},
		},
	}

	reqs := buildReplaceRequests(slide, "", map[string]string{
		TagMainImage: "https://cdn.example.com/main.jpg",
	})

	require.Len(t, reqs, 1)
	require.NotNil(t, reqs[0].ReplaceImage)
	assert.Equal(t, "photo", reqs[0].ReplaceImage.ImageObjectId)
}

func TestBuildReplaceRequests_EmptyTitleLeavesTextAlone(t *testing.T) {
	reqs := buildReplaceRequests(taggedSlide(), "", map[string]string{
		TagMainImage: "https://cdn.example.com/main.jpg",
	})

	for _, r := range reqs {
		assert.Nil(t, r.InsertText)
		assert.Nil(t, r.DeleteText)
	}
}

func TestGoogleRenderer_MissingTemplate(t *testing.T) {
	r := &GoogleRenderer{}
	account := &types.AccountConfig{SiteName: "Foo", ExportFolderID: "folder"}

	_, err := r.RenderPinImage(context.Background(), account, "t", "u")
	var noTpl *ErrNoTemplate
	require.ErrorAs(t, err, &noTpl)
	assert.Equal(t, "pin", noTpl.Kind)
}

func TestGoogleRenderer_MissingExportFolder(t *testing.T) {
	r := &GoogleRenderer{}
	account := &types.AccountConfig{SiteName: "Foo", PinTemplateID: "tpl"}

	_, err := r.RenderPinImage(context.Background(), account, "t", "u")
	var noFolder *ErrNoExportFolder
	require.ErrorAs(t, err, &noFolder)
	assert.Contains(t, err.Error(), "no destination folder configured")
}

func TestFakeRenderer(t *testing.T) {
	f := NewFakeRenderer()
	account := &types.AccountConfig{SiteName: "Foo"}

	asset, err := f.RenderPinImage(context.Background(), account, "Beef Stew", "https://cdn.example.com/p.jpg")
	require.NoError(t, err)
	assert.Contains(t, asset.DownloadURL, "uc?export=download")

	f.FailWith("collage", assert.AnError)
	_, err = f.RenderCollage(context.Background(), account, "a", "b")
	assert.Error(t, err)

	require.Len(t, f.Calls, 2)
	assert.Equal(t, "pin", f.Calls[0].Kind)
	assert.Equal(t, "Beef Stew", f.Calls[0].Title)
}
