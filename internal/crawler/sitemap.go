package crawler

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"bookscrape/internal/catalog"
	"bookscrape/internal/fetch"

	"github.com/antchfx/xmlquery"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

var (
	episodeURLRe  = regexp.MustCompile(`/episodes/(\d{4})/(\d{1,2})/(\d{1,2})/(episode-\d+-[^/]+)/`)
	episodeSlugRe = regexp.MustCompile(`^episode-(\d+)-(.+)$`)
	titleCaser    = cases.Title(language.English)
)

// ErrNoEpisodes is returned when a sitemap parses but lists no episode pages.
var ErrNoEpisodes = errors.New("sitemap lists no episodes")

type SitemapOptions struct {
	UserAgent string
	Timeout   time.Duration
	Logger    zerolog.Logger
}

// ParseEpisodes reads the sitemap at sitemapURL and returns the episode pages
// it lists, ordered by episode number. A sitemap index is followed one level.
// Any failure of the top-level document is returned with no episodes.
func ParseEpisodes(ctx context.Context, sitemapURL string, opts SitemapOptions) ([]catalog.Episode, error) {
	if opts.Timeout == 0 {
		opts.Timeout = fetch.DefaultTimeout
	}

	locs, err := readLocations(ctx, sitemapURL, opts, true)
	if err != nil {
		return nil, err
	}

	episodes := make([]catalog.Episode, 0, len(locs))
	for _, loc := range locs {
		if ep, ok := EpisodeFromURL(loc); ok {
			episodes = append(episodes, ep)
		}
	}
	if len(episodes) == 0 {
		return nil, errors.Wrap(ErrNoEpisodes, sitemapURL)
	}

	sort.SliceStable(episodes, func(i, j int) bool {
		return episodes[i].NumberInt() < episodes[j].NumberInt()
	})
	warnDuplicateNumbers(opts.Logger, episodes)
	return episodes, nil
}

func readLocations(ctx context.Context, sitemapURL string, opts SitemapOptions, followIndex bool) ([]string, error) {
	res, err := fetch.Fetch(ctx, fetch.Options{
		URL:       sitemapURL,
		Mode:      fetch.ModeStatic,
		Timeout:   opts.Timeout,
		UserAgent: opts.UserAgent,
	})
	if err != nil {
		return nil, errors.Wrap(err, "fetch sitemap")
	}

	doc, err := parseXML(strings.NewReader(res.HTML))
	if err != nil {
		return nil, errors.Wrapf(err, "parse sitemap %s", sitemapURL)
	}

	if urlset := xmlquery.FindOne(doc, "/urlset"); urlset != nil {
		if urlset.NamespaceURI != sitemapNamespace {
			opts.Logger.Warn().Str("url", sitemapURL).Str("namespace", urlset.NamespaceURI).Msg("Unexpected sitemap namespace")
		}
		return locTexts(xmlquery.Find(urlset, "url/loc")), nil
	}

	index := xmlquery.FindOne(doc, "/sitemapindex")
	if index == nil {
		return nil, errors.Errorf("parse sitemap %s: no urlset or sitemapindex root", sitemapURL)
	}
	if !followIndex {
		opts.Logger.Warn().Str("url", sitemapURL).Msg("Nested sitemap index ignored")
		return nil, nil
	}

	var all []string
	for _, child := range locTexts(xmlquery.Find(index, "sitemap/loc")) {
		locs, err := readLocations(ctx, child, opts, false)
		if err != nil {
			opts.Logger.Warn().Err(err).Str("url", child).Msg("Skipping child sitemap")
			continue
		}
		all = append(all, locs...)
	}
	return all, nil
}

func parseXML(r io.Reader) (*xmlquery.Node, error) {
	return xmlquery.ParseWithOptions(r, xmlquery.ParserOptions{
		Decoder: &xmlquery.DecoderOptions{Strict: false},
	})
}

func locTexts(nodes []*xmlquery.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if loc := strings.TrimSpace(n.InnerText()); loc != "" {
			out = append(out, loc)
		}
	}
	return out
}

// EpisodeFromURL derives an episode descriptor from an episode page URL.
func EpisodeFromURL(pageURL string) (catalog.Episode, bool) {
	m := episodeURLRe.FindStringSubmatch(pageURL)
	if m == nil {
		return catalog.Episode{}, false
	}
	slug := episodeSlugRe.FindStringSubmatch(m[4])
	if slug == nil {
		return catalog.Episode{}, false
	}

	month := zeroPad(m[2])
	day := zeroPad(m[3])
	return catalog.Episode{
		URL:    pageURL,
		Year:   m[1],
		Month:  month,
		Day:    day,
		Number: slug[1],
		Title:  titleCaser.String(strings.ReplaceAll(slug[2], "-", " ")),
		Date:   fmt.Sprintf("%s-%s-%s", m[1], month, day),
	}, true
}

func zeroPad(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func warnDuplicateNumbers(logger zerolog.Logger, episodes []catalog.Episode) {
	for i := 1; i < len(episodes); i++ {
		if episodes[i].Number == episodes[i-1].Number {
			logger.Warn().
				Str("episode", episodes[i].Number).
				Str("url", episodes[i].URL).
				Msg("Duplicate episode number in sitemap")
		}
	}
}
