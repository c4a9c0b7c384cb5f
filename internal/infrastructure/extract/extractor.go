// Package extract reduces raw page markup to a text excerpt plus
// structured metadata, parameterized by an extraction profile.
package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"shopmate/internal/domain"
	"shopmate/internal/ports"
)

// listingLimit caps how many search results the listing profile emits.
const listingLimit = 5

// Extractor implements ports.Extractor. Absence of expected structure is
// never an error: non-generic profiles fall back to a short explanatory
// placeholder.
type Extractor struct {
	now func() time.Time
}

// New builds an extractor. A nil clock uses time.Now.
func New(now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{now: now}
}

// Extract implements ports.Extractor.
func (e *Extractor) Extract(rawMarkup, pageURL string, profile domain.ExtractionProfile) domain.Extraction {
	extraction := domain.Extraction{Metadata: map[string]string{
		"url":          pageURL,
		"extracted_at": e.now().UTC().Format(time.RFC3339),
	}}

	doc, err := html.Parse(strings.NewReader(rawMarkup))
	if err != nil {
		extraction.Content = "The page markup could not be parsed."
		return extraction
	}

	e.headMetadata(doc, extraction.Metadata)

	host := hostnameOf(pageURL)
	switch profile {
	case domain.ProfileProduct:
		e.extractProduct(doc, host, pageURL, &extraction)
	case domain.ProfileProductListing:
		e.extractListing(doc, host, pageURL, &extraction)
	case domain.ProfileArticle:
		e.extractArticle(doc, &extraction)
	case domain.ProfileReview:
		e.extractReview(doc, &extraction)
	default:
		extraction.Content = bodyText(doc)
	}
	return extraction
}

// headMetadata pulls the baseline title / description / canonical fields
// from the document head.
func (e *Extractor) headMetadata(doc *html.Node, md map[string]string) {
	if title := findElement(doc, "title"); title != nil {
		md["title"] = collapseSpace(nodeText(title))
	}

	eachElement(doc, "meta", func(n *html.Node) {
		name := attrVal(n, "name")
		property := attrVal(n, "property")
		content := strings.TrimSpace(attrVal(n, "content"))
		if content == "" {
			return
		}
		switch {
		case name == "description" && md["description"] == "":
			md["description"] = content
		case property == "og:description" && md["description"] == "":
			md["description"] = content
		case property == "og:title" && md["title"] == "":
			md["title"] = content
		case property == "og:image" && md["og:image"] == "":
			md["og:image"] = content
		}
	})

	eachElement(doc, "link", func(n *html.Node) {
		if strings.EqualFold(attrVal(n, "rel"), "canonical") && attrVal(n, "href") != "" {
			md["canonical_url"] = attrVal(n, "href")
		}
	})
}

// --- product profile -------------------------------------------------

// Source-specific selector overrides are tried before the generic product
// path.
func (e *Extractor) extractProduct(doc *html.Node, host, pageURL string, out *domain.Extraction) {
	switch {
	case strings.Contains(host, "amazon."):
		e.amazonProduct(doc, out)
	case strings.Contains(host, "ebay."):
		e.ebayProduct(doc, out)
	}
	e.genericProduct(doc, out)

	if out.Content == "" {
		out.Content = "No product details could be identified on this page."
	}
}

func (e *Extractor) amazonProduct(doc *html.Node, out *domain.Extraction) {
	md := out.Metadata

	if title := byID(doc, "productTitle"); title != nil {
		md["title"] = collapseSpace(nodeText(title))
	}

	for _, id := range []string{"priceblock_ourprice", "priceblock_dealprice", "corePrice_feature_div"} {
		if n := byID(doc, id); n != nil {
			if price := firstPriceText(n); price != "" {
				md["price"] = price
				break
			}
		}
	}
	if md["price"] == "" {
		if n := firstByClass(doc, "a-price"); n != nil {
			if price := firstPriceText(n); price != "" {
				md["price"] = price
			}
		}
	}

	if img := byID(doc, "landingImage"); img != nil {
		if src := attrVal(img, "src"); src != "" {
			md["image"] = src
		}
	}

	if bullets := byID(doc, "feature-bullets"); bullets != nil {
		var features []string
		eachElement(bullets, "li", func(li *html.Node) {
			if text := collapseSpace(nodeText(li)); text != "" {
				features = append(features, text)
			}
		})
		if len(features) > 0 {
			md["features"] = strings.Join(features, "\n")
		}
	}

	for _, id := range []string{"productDetails_techSpec_section_1", "productDetails_detailBullets_sections1"} {
		if table := byID(doc, id); table != nil {
			specRows(table, md)
			break
		}
	}

	if desc := byID(doc, "productDescription"); desc != nil {
		out.Content = collapseSpace(nodeText(desc))
	}

	if rating := firstByClass(doc, "a-icon-alt"); rating != nil {
		if v := parseLeadingFloat(nodeText(rating)); v != "" {
			md["rating"] = v
		}
	}
	if count := byID(doc, "acrCustomerReviewText"); count != nil {
		if v := digitsOnly(nodeText(count)); v != "" {
			md["rating_count"] = v
		}
	}
}

func (e *Extractor) ebayProduct(doc *html.Node, out *domain.Extraction) {
	md := out.Metadata

	if title := firstByClass(doc, "x-item-title__mainTitle"); title != nil {
		md["title"] = collapseSpace(nodeText(title))
	}
	if md["price"] == "" {
		if price := firstByClass(doc, "x-price-primary"); price != nil {
			md["price"] = collapseSpace(nodeText(price))
		}
	}
	if md["image"] == "" {
		if carousel := firstByClass(doc, "ux-image-carousel-item"); carousel != nil {
			if img := findElement(carousel, "img"); img != nil {
				md["image"] = attrVal(img, "src")
			}
		}
	}
	if specs := firstByClass(doc, "ux-labels-values"); specs != nil {
		specRows(specs, md)
	}
}

// genericProduct fills whatever the site-specific pass left empty.
func (e *Extractor) genericProduct(doc *html.Node, out *domain.Extraction) {
	md := out.Metadata

	if md["price"] == "" {
		if n := firstMatch(doc, func(n *html.Node) bool {
			return attrVal(n, "itemprop") == "price" || classContains(n, "price")
		}); n != nil {
			if price := firstPriceText(n); price != "" {
				md["price"] = price
			}
		}
	}
	if md["image"] == "" && md["og:image"] != "" {
		md["image"] = md["og:image"]
	}
	if !hasSpecKeys(md) {
		if table := findElement(doc, "table"); table != nil {
			specRows(table, md)
		}
	}
	if out.Content == "" {
		if desc := firstMatch(doc, func(n *html.Node) bool {
			return n.Data == "div" && (classContains(n, "description") || attrVal(n, "id") == "description")
		}); desc != nil {
			out.Content = collapseSpace(nodeText(desc))
		}
	}
	if out.Content == "" && md["description"] != "" {
		out.Content = md["description"]
	}
}

// --- product-listing profile -----------------------------------------

func (e *Extractor) extractListing(doc *html.Node, host, pageURL string, out *domain.Extraction) {
	var items []*html.Node
	if strings.Contains(host, "amazon.") {
		items = allMatches(doc, func(n *html.Node) bool {
			return attrVal(n, "data-component-type") == "s-search-result"
		}, listingLimit)
	}
	if len(items) == 0 {
		// Generic listings: any element carrying a product-path anchor.
		items = allMatches(doc, func(n *html.Node) bool {
			return n.Data == "a" && strings.Contains(attrVal(n, "href"), "/dp/")
		}, listingLimit)
	}

	var lines []string
	for i, item := range items {
		prefix := fmt.Sprintf("item.%d.", i)

		title := ""
		if h := findElement(item, "h2"); h != nil {
			title = collapseSpace(nodeText(h))
		}
		if title == "" {
			title = collapseSpace(nodeText(item))
		}

		href := attrVal(item, "href")
		if href == "" {
			if a := findElement(item, "a"); a != nil {
				href = attrVal(a, "href")
			}
		}
		href = absoluteURL(pageURL, href)

		price := ""
		if p := firstByClass(item, "a-offscreen"); p != nil {
			price = collapseSpace(nodeText(p))
		} else if p := firstMatch(item, func(n *html.Node) bool { return classContains(n, "price") }); p != nil {
			price = firstPriceText(p)
		}

		if title == "" && href == "" {
			continue
		}
		out.Metadata[prefix+"title"] = title
		out.Metadata[prefix+"url"] = href
		if price != "" {
			out.Metadata[prefix+"price"] = price
		}
		line := title
		if price != "" {
			line += " — " + price
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		out.Content = "No product listings could be identified on this page."
		return
	}
	out.Content = strings.Join(lines, "\n")
}

// --- article profile --------------------------------------------------

func (e *Extractor) extractArticle(doc *html.Node, out *domain.Extraction) {
	container := firstMatch(doc, func(n *html.Node) bool {
		if n.Data == "article" || n.Data == "main" {
			return true
		}
		id := attrVal(n, "id")
		return id == "content" || id == "article" || classContains(n, "article-body") || classContains(n, "post-content")
	})
	if container == nil {
		out.Content = "No article content could be identified on this page."
		return
	}
	out.Content = textWithout(container, func(n *html.Node) bool {
		switch n.Data {
		case "nav", "aside", "footer", "header", "form":
			return true
		}
		return classContains(n, "comment") || classContains(n, "ad-") ||
			classContains(n, "advert") || classContains(n, "sidebar")
	})
}

// --- review profile ---------------------------------------------------

func (e *Extractor) extractReview(doc *html.Node, out *domain.Extraction) {
	md := out.Metadata

	if n := firstMatch(doc, func(n *html.Node) bool {
		return attrVal(n, "itemprop") == "ratingValue"
	}); n != nil {
		md["rating"] = firstNonEmpty(attrVal(n, "content"), collapseSpace(nodeText(n)))
	}
	if n := firstMatch(doc, func(n *html.Node) bool {
		return attrVal(n, "itemprop") == "reviewCount" || attrVal(n, "itemprop") == "ratingCount"
	}); n != nil {
		md["rating_count"] = digitsOnly(firstNonEmpty(attrVal(n, "content"), nodeText(n)))
	}
	if md["rating"] == "" {
		if n := firstByClass(doc, "a-icon-alt"); n != nil {
			md["rating"] = parseLeadingFloat(nodeText(n))
		}
	}
	if md["rating_count"] == "" {
		if n := byID(doc, "acrCustomerReviewText"); n != nil {
			md["rating_count"] = digitsOnly(nodeText(n))
		}
	}

	container := firstMatch(doc, func(n *html.Node) bool {
		id := attrVal(n, "id")
		return id == "reviews" || id == "customer-reviews" || id == "cm-cr-dp-review-list" ||
			classContains(n, "reviews") || classContains(n, "review-list")
	})
	if container == nil {
		out.Content = "No customer reviews could be identified on this page."
		return
	}
	out.Content = collapseSpace(nodeText(container))
}

// specRows records label/value row pairs from a specification table as
// spec.<label> metadata keys.
func specRows(table *html.Node, md map[string]string) {
	eachElement(table, "tr", func(tr *html.Node) {
		var cells []string
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "th" || c.Data == "td") {
				cells = append(cells, collapseSpace(nodeText(c)))
			}
		}
		if len(cells) >= 2 && cells[0] != "" && cells[1] != "" {
			md["spec."+cells[0]] = cells[1]
		}
	})
	// ebay-style dl lists carry the same label/value shape
	eachElement(table, "dt", func(dt *html.Node) {
		dd := dt.NextSibling
		for dd != nil && dd.Type != html.ElementNode {
			dd = dd.NextSibling
		}
		if dd != nil && dd.Data == "dd" {
			label := collapseSpace(nodeText(dt))
			value := collapseSpace(nodeText(dd))
			if label != "" && value != "" {
				md["spec."+label] = value
			}
		}
	})
}

func hasSpecKeys(md map[string]string) bool {
	for key := range md {
		if strings.HasPrefix(key, "spec.") {
			return true
		}
	}
	return false
}

func hostnameOf(pageURL string) string {
	if u, err := url.Parse(pageURL); err == nil {
		return strings.ToLower(u.Hostname())
	}
	return ""
}

func absoluteURL(base, href string) string {
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

var (
	leadingFloatPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)
	pricePattern        = regexp.MustCompile(`[$£€]\s?\d[\d.,]*`)
)

func parseLeadingFloat(s string) string {
	return leadingFloatPattern.FindString(s)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// firstPriceText finds the first currency-prefixed amount in the node's
// text.
func firstPriceText(n *html.Node) string {
	return pricePattern.FindString(nodeText(n))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

var _ ports.Extractor = (*Extractor)(nil)
