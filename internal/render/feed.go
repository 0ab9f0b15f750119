package render

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// SiteMeta is the site-wide metadata used by the feed and page templates.
type SiteMeta struct {
	Title       string
	BaseURL     string
	Author      string
	Description string
}

// FeedItem is one post in the RSS feed, already in chronological order.
type FeedItem struct {
	Title string
	Slug  string
	Date  time.Time
	HTML  string
	Tags  []string
}

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        string   `xml:"guid"`
	PubDate     string   `xml:"pubDate"`
	Categories  []string `xml:"category,omitempty"`
	Description string   `xml:"description"`
}

// Feed builds an RSS 2.0 document from the chronological view. The caller
// supplies items already ordered; the feed preserves that order.
func Feed(site SiteMeta, items []FeedItem) ([]byte, error) {
	base := strings.TrimRight(site.BaseURL, "/")

	doc := rssDoc{
		Version: "2.0",
		Channel: rssChannel{
			Title:       site.Title,
			Link:        base,
			Description: site.Description,
		},
	}
	for _, it := range items {
		link := PostURL(base, it.Slug)
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:       it.Title,
			Link:        link,
			GUID:        link,
			PubDate:     it.Date.Format(time.RFC1123Z),
			Categories:  it.Tags,
			Description: it.HTML,
		})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render: feed: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// PostURL returns the canonical URL for a post slug.
func PostURL(baseURL, slug string) string {
	return strings.TrimRight(baseURL, "/") + "/posts/" + slug + "/"
}
