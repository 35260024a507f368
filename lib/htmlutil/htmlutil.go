// Package htmlutil has goquery helpers for picking links out of
// fetched pages.
package htmlutil

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("datapeek.lib.htmlutil")

// Anchor is one <a> tag, href resolved and text cleaned up.
type Anchor struct {
	Text string
	Href string
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// CleanText collapses an element's text down to one printable line.
func CleanText(s string) string {
	var b strings.Builder
	for _, c := range s {
		if unicode.IsPrint(c) {
			b.WriteRune(c)
		}
	}
	return innerWhitespace.ReplaceAllString(strings.TrimSpace(b.String()), " ")
}

// GetAnchors collects every anchor under sel. Relative hrefs are
// resolved against base when it is non-nil. Anchors whose href does
// not parse are skipped.
func GetAnchors(ctx context.Context, sel *goquery.Selection, base *url.URL) []Anchor {
	_, span := tracer.Start(ctx, "GetAnchors")
	defer span.End()

	var anchors []Anchor
	sel.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		link, err := url.Parse(href)
		if err != nil {
			span.RecordError(err)
			return
		}
		if base != nil {
			link = base.ResolveReference(link)
		}

		anchor := Anchor{Text: CleanText(a.Text()), Href: link.String()}
		anchors = append(anchors, anchor)
		span.AddEvent("anchor", trace.WithAttributes(
			attribute.String("text", anchor.Text),
			attribute.String("href", anchor.Href),
		))
	})
	return anchors
}
