package leetx

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// parseListing extracts the results table of a listing page.
func parseListing(doc *goquery.Document, baseURL string) *Listing {
	table := doc.Find("table.table-list")
	if table.Length() == 0 {
		return &Listing{}
	}

	listing := &Listing{Items: []Item{}}

	table.Find("tbody tr").Each(func(i int, row *goquery.Selection) {
		var it Item

		row.Find("td.coll-1 a").Each(func(j int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			if !strings.Contains(href, "/torrent/") {
				return
			}
			it.Name = strings.TrimSpace(a.Text())
			it.Link = absolute(baseURL, href)
		})

		it.Seeders = parseCount(row.Find("td.coll-2").Text())
		it.Leechers = parseCount(row.Find("td.coll-3").Text())
		it.Size = cellWithoutSpans(row.Find("td.coll-4"))
		if it.Size == "" {
			it.Size = extractSize(row.Text())
		}

		// Rows without a detail link are kept; the caller decides what to do with them.
		listing.Items = append(listing.Items, it)
	})

	return listing
}

// parseDetail extracts a detail page. It returns nil when neither a title nor
// a magnet link is present.
func parseDetail(doc *goquery.Document) *Detail {
	d := &Detail{
		Name: strings.TrimSpace(doc.Find("div.box-info-heading h1").First().Text()),
	}

	doc.Find("a[href^='magnet:']").First().Each(func(i int, a *goquery.Selection) {
		d.Magnet, _ = a.Attr("href")
	})

	if d.Name == "" && d.Magnet == "" {
		return nil
	}
	if d.Name == "" {
		d.Name = MagnetName(d.Magnet)
	}

	doc.Find("ul.list li").Each(func(i int, li *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(li.Find("strong").First().Text()))
		value := strings.TrimSpace(li.Find("span").First().Text())
		if label == "" || value == "" {
			return
		}

		switch label {
		case "total size":
			d.Size = value
		case "seeders":
			if n, ok := atoi(value); ok {
				d.Seeders = &n
			}
		case "leechers":
			if n, ok := atoi(value); ok {
				d.Leechers = &n
			}
		}
	})

	return d
}

func absolute(baseURL, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return baseURL + href
}

// cellWithoutSpans returns the cell text minus nested span elements, which
// hold seeder counts in size cells.
func cellWithoutSpans(sel *goquery.Selection) string {
	c := sel.Clone()
	c.Find("span").Remove()
	return strings.TrimSpace(c.Text())
}

func parseCount(s string) int {
	n, _ := atoi(s)
	return n
}

func atoi(s string) (int, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// MagnetName returns the display name (dn parameter) of a magnet link.
func MagnetName(magnet string) string {
	if idx := strings.Index(magnet, "dn="); idx != -1 {
		end := strings.Index(magnet[idx:], "&")
		var name string
		if end == -1 {
			name = magnet[idx+3:]
		} else {
			name = magnet[idx+3 : idx+end]
		}
		decoded, err := url.QueryUnescape(name)
		if err == nil {
			return decoded
		}
		return strings.ReplaceAll(name, "+", " ")
	}
	return ""
}

var sizeRegex = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(TB|GB|MB|KB|B)\b`)

func extractSize(text string) string {
	matches := sizeRegex.FindStringSubmatch(strings.ToUpper(text))
	if len(matches) >= 3 {
		return matches[1] + " " + matches[2]
	}
	return ""
}
