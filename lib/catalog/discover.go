package catalog

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"datapeek/lib/fetch"
	"datapeek/lib/htmlutil"
	"datapeek/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("datapeek.lib.catalog")

func sourceName(filename string) string {
	return textutil.Slugify(strings.TrimSuffix(filename, path.Ext(filename)))
}

// Discover fetches one index page and returns a source for every csv
// link on it, hrefs resolved against the page url. It never follows
// further links.
func Discover(ctx context.Context, client *fetch.Client, indexUrl string) ([]Source, error) {
	ctx, span := tracer.Start(ctx, "Discover")
	defer span.End()

	base, err := url.Parse(indexUrl)
	if err != nil {
		return nil, err
	}

	res, err := client.Fetch(ctx, indexUrl)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, fmt.Errorf("parse %s: %w", indexUrl, err)
	}

	var sources []Source
	seen := map[string]struct{}{}
	for _, a := range htmlutil.GetAnchors(ctx, doc.Selection, base) {
		link, err := url.Parse(a.Href)
		if err != nil {
			continue
		}
		if !strings.EqualFold(path.Ext(link.Path), ".csv") {
			continue
		}

		filename := path.Base(link.Path)
		name := sourceName(filename)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		sources = append(sources, Source{
			Name: name,
			Url:  a.Href,
			Path: filename,
		})
	}
	return sources, nil
}
