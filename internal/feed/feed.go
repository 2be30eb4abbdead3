// Package feed renders completed transcription jobs as an RSS 2.0 document.
package feed

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"mediascribe/pkg/models"
)

const (
	channelTitle       = "Media Transcriptions RSS Feed"
	channelDescription = "RSS feed of media transcriptions and summaries."
)

type rss struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Items       []item `xml:"item"`
}

type item struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
}

// Builder renders feeds with links rooted at a fixed public base URL.
type Builder struct {
	baseURL string
}

func NewBuilder(baseURL string) *Builder {
	return &Builder{baseURL: strings.TrimRight(baseURL, "/")}
}

// Render writes the feed for the given jobs. Only completed jobs become
// items; anything still in flight or failed is skipped. Item links point at
// the transcript download endpoint and pubDate comes from the job's creation
// time.
func (b *Builder) Render(w io.Writer, jobs []*models.Job) error {
	doc := rss{
		Version: "2.0",
		Channel: channel{
			Title:       channelTitle,
			Link:        b.baseURL + "/",
			Description: channelDescription,
		},
	}

	for _, job := range jobs {
		if job.Status != models.JobStatusCompleted {
			continue
		}
		doc.Channel.Items = append(doc.Channel.Items, item{
			Title:       itemTitle(job),
			Link:        b.baseURL + "/transcriptions/" + url.PathEscape(job.Filename),
			Description: itemDescription(job),
			GUID:        job.ID.String(),
			PubDate:     job.CreatedAt.Format(time.RFC1123Z),
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("writing feed header: %w", err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding feed: %w", err)
	}
	return nil
}

func itemTitle(job *models.Job) string {
	if job.Title != nil && *job.Title != "" {
		return *job.Title
	}
	return job.Filename
}

func itemDescription(job *models.Job) string {
	if job.Summary != nil {
		return *job.Summary
	}
	return models.NoSummary
}
