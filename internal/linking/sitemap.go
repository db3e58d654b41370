package linking

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const maxSitemapBytes = 10 << 20

// FetchSitemapURLs downloads a sitemap and returns the post URLs it lists.
// Sitemap indexes are followed one level deep.
func FetchSitemapURLs(ctx context.Context, client *http.Client, sitemapURL string) ([]string, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	doc, err := fetchXML(ctx, client, sitemapURL)
	if err != nil {
		return nil, err
	}

	// A sitemap index nests <loc> entries under <sitemap>; follow each child.
	if doc.Find("sitemapindex").Length() > 0 {
		var urls []string
		children := doc.Find("sitemap loc")
		for i := 0; i < children.Length(); i++ {
			child := strings.TrimSpace(children.Eq(i).Text())
			if child == "" {
				continue
			}
			childDoc, err := fetchXML(ctx, client, child)
			if err != nil {
				continue
			}
			urls = append(urls, extractLocs(childDoc)...)
		}
		return urls, nil
	}

	return extractLocs(doc), nil
}

func fetchXML(ctx context.Context, client *http.Client, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &SitemapError{URL: rawURL, Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &SitemapError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &SitemapError{URL: rawURL, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxSitemapBytes))
	if err != nil {
		return nil, &SitemapError{URL: rawURL, Err: err}
	}
	return doc, nil
}

func extractLocs(doc *goquery.Document) []string {
	var urls []string
	doc.Find("url loc").Each(func(_ int, sel *goquery.Selection) {
		u := strings.TrimSpace(sel.Text())
		if u != "" {
			urls = append(urls, u)
		}
	})
	// Flat sitemaps parsed leniently may not keep the <url> wrapper; fall
	// back to bare <loc> elements.
	if len(urls) == 0 {
		doc.Find("loc").Each(func(_ int, sel *goquery.Selection) {
			u := strings.TrimSpace(sel.Text())
			if u != "" {
				urls = append(urls, u)
			}
		})
	}
	return urls
}
