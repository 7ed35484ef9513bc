package letterboxd

import (
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/cinelog-io/cinelog-engine/pkg/models"
)

// convertRating maps the source's raw 0-10 rating to the half-star
// 0.5-5.0 scale. Zero and absent ratings both mean unrated.
func convertRating(raw int) *float64 {
	if raw <= 0 {
		return nil
	}
	r := float64(raw) / 2.0
	return &r
}

func hasNextPage(doc *goquery.Document) bool {
	return doc.Find(".paginate-nextprev a.next").Length() > 0
}

func optionalText(sel *goquery.Selection) *string {
	text := strings.TrimSpace(sel.First().Text())
	if text == "" {
		return nil
	}
	return &text
}

func parseProfile(doc *goquery.Document) *AccountRecord {
	record := &AccountRecord{
		Stats: map[string]interface{}{},
	}

	record.DisplayName = optionalText(doc.Find("h1.title-1 span.displayname"))
	record.Bio = optionalText(doc.Find("div.bio p"))
	record.Location = optionalText(doc.Find(".profile-metadata .metadatum .location"))
	record.Website = optionalText(doc.Find(".profile-metadata .metadatum a.website"))

	doc.Find("section#favourites div.poster[data-film-slug]").Each(func(_ int, s *goquery.Selection) {
		if slug, ok := s.Attr("data-film-slug"); ok && slug != "" {
			record.Favorites = append(record.Favorites, slug)
		}
	})

	doc.Find(".profile-statistic").Each(func(_ int, s *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(s.Find(".definition").Text()))
		value := strings.ReplaceAll(strings.TrimSpace(s.Find(".value").Text()), ",", "")
		if label == "" {
			return
		}
		if n, err := strconv.Atoi(value); err == nil {
			record.Stats[label] = n
		}
	})

	return record
}

func parseDiaryPage(doc *goquery.Document) []DiaryEntryRecord {
	var entries []DiaryEntryRecord

	doc.Find("tr.diary-entry-row").Each(func(_ int, row *goquery.Selection) {
		entry := DiaryEntryRecord{}

		entry.ExternalID, _ = row.Attr("data-viewing-id")
		if entry.ExternalID == "" {
			return
		}

		filmCell := row.Find("td.td-film-details")
		entry.FilmSlug, _ = filmCell.Find("div[data-film-slug]").Attr("data-film-slug")
		entry.FilmName = strings.TrimSpace(filmCell.Find("h3 a").Text())
		if entry.FilmSlug == "" {
			return
		}

		if href, ok := row.Find("td.td-day a").Attr("href"); ok {
			entry.WatchedDate = parseDiaryDate(href)
		}

		if raw, ok := row.Find("td.td-rating input.rateit-field").Attr("value"); ok {
			if n, err := strconv.Atoi(raw); err == nil {
				entry.Rating = convertRating(n)
			}
		}

		entry.Rewatch = row.Find("td.td-rewatch.icon-status-off").Length() == 0 &&
			row.Find("td.td-rewatch").Length() > 0
		entry.Liked = row.Find("td.td-like span.icon-liked").Length() > 0
		entry.ReviewSpoilers = row.Find("td.td-review a.has-spoilers").Length() > 0

		entries = append(entries, entry)
	})

	return entries
}

// parseDiaryDate extracts the watch date from a diary day link of the
// form /user/films/diary/for/2024/03/15/.
func parseDiaryDate(href string) *time.Time {
	parts := strings.Split(strings.Trim(href, "/"), "/")
	if len(parts) < 3 {
		return nil
	}

	year, errY := strconv.Atoi(parts[len(parts)-3])
	month, errM := strconv.Atoi(parts[len(parts)-2])
	day, errD := strconv.Atoi(parts[len(parts)-1])
	if errY != nil || errM != nil || errD != nil {
		return nil
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &t
}

func parseFilmsPage(doc *goquery.Document) []WatchedFilmRecord {
	var films []WatchedFilmRecord

	doc.Find("li.poster-container").Each(func(_ int, li *goquery.Selection) {
		poster := li.Find("div[data-film-slug]")
		slug, _ := poster.Attr("data-film-slug")
		if slug == "" {
			return
		}

		film := WatchedFilmRecord{
			Slug:  slug,
			Name:  strings.TrimSpace(poster.Find("img").AttrOr("alt", "")),
			Liked: li.Find("p.poster-viewingdata span.like").Length() > 0,
		}

		if year, ok := poster.Attr("data-film-release-year"); ok {
			if n, err := strconv.Atoi(year); err == nil {
				film.Year = &n
			}
		}

		li.Find("p.poster-viewingdata span.rating").Each(func(_ int, s *goquery.Selection) {
			film.Rating = ratingFromClass(s.AttrOr("class", ""))
		})

		films = append(films, film)
	})

	return films
}

// ratingFromClass pulls the raw rating out of a "rated-N" class token.
func ratingFromClass(class string) *float64 {
	for _, token := range strings.Fields(class) {
		if !strings.HasPrefix(token, "rated-") {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(token, "rated-")); err == nil {
			return convertRating(n)
		}
	}
	return nil
}

func parseWatchlistPage(doc *goquery.Document) []FilmRef {
	var refs []FilmRef

	doc.Find("li.poster-container div[data-film-slug]").Each(func(_ int, poster *goquery.Selection) {
		slug, _ := poster.Attr("data-film-slug")
		if slug == "" {
			return
		}

		ref := FilmRef{
			Slug: slug,
			Name: strings.TrimSpace(poster.Find("img").AttrOr("alt", "")),
		}
		if year, ok := poster.Attr("data-film-release-year"); ok {
			if n, err := strconv.Atoi(year); err == nil {
				ref.Year = &n
			}
		}

		refs = append(refs, ref)
	})

	return refs
}

func parseFilmDetail(doc *goquery.Document) *FilmDetailRecord {
	record := &FilmDetailRecord{}

	record.Title = strings.TrimSpace(doc.Find("section#featured-film-header h1.filmtitle").Text())
	if record.Title == "" {
		record.Title = strings.TrimSpace(doc.Find("h1.headline-1 span.name").Text())
	}

	if year := strings.TrimSpace(doc.Find("section#featured-film-header small.number a").Text()); year != "" {
		if n, err := strconv.Atoi(year); err == nil {
			record.Year = &n
		}
	}

	// Average rating appears as "4.12 out of 5" in page metadata.
	if content, ok := doc.Find(`meta[name="twitter:data2"]`).Attr("content"); ok {
		fields := strings.Fields(content)
		if len(fields) > 0 {
			if r, err := strconv.ParseFloat(fields[0], 64); err == nil {
				record.Rating = &r
			}
		}
	}

	// Runtime appears as "166 mins" inside the footer text link.
	doc.Find("p.text-link").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		idx := strings.Index(text, "min")
		if idx < 0 {
			return true
		}
		fields := strings.Fields(text[:idx])
		if len(fields) == 0 {
			return true
		}
		if n, err := strconv.Atoi(strings.ReplaceAll(fields[len(fields)-1], ",", "")); err == nil {
			record.RuntimeMinutes = &n
			return false
		}
		return true
	})

	record.Tagline = optionalText(doc.Find("h4.tagline"))
	record.Description = optionalText(doc.Find("div.truncate p"))

	if poster, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok && poster != "" {
		record.PosterURL = &poster
	}
	if pageURL, ok := doc.Find(`meta[property="og:url"]`).Attr("content"); ok && pageURL != "" {
		record.URL = &pageURL
	}

	record.Genres = collectText(doc, `div#tab-genres a[href*="/films/genre/"]`)
	record.Countries = collectText(doc, `div#tab-details a[href*="/films/country/"]`)
	record.Languages = collectText(doc, `div#tab-details a[href*="/films/language/"]`)
	record.Studios = collectText(doc, `div#tab-details a[href*="/studio/"]`)

	doc.Find("span.directorlist a.contributor").Each(func(_ int, a *goquery.Selection) {
		record.Directors = append(record.Directors, creditFromLink(a, "/director/"))
	})
	doc.Find("div.cast-list a.text-slug").Each(func(_ int, a *goquery.Selection) {
		record.Cast = append(record.Cast, creditFromLink(a, "/actor/"))
	})

	if href, ok := doc.Find(`a[data-track-action="TMDb"]`).Attr("href"); ok {
		if id := lastPathSegment(href); id != "" {
			record.TMDBID = &id
		}
	}
	if href, ok := doc.Find(`a[data-track-action="IMDb"]`).Attr("href"); ok {
		if id := imdbIDFromURL(href); id != "" {
			record.IMDBID = &id
		}
	}

	return record
}

func collectText(doc *goquery.Document, selector string) []string {
	var out []string
	seen := map[string]struct{}{}
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		if _, ok := seen[text]; ok {
			return
		}
		seen[text] = struct{}{}
		out = append(out, text)
	})
	return out
}

func creditFromLink(a *goquery.Selection, prefix string) models.CreditEntry {
	entry := models.CreditEntry{Name: strings.TrimSpace(a.Text())}
	if href, ok := a.Attr("href"); ok {
		trimmed := strings.Trim(strings.TrimPrefix(href, prefix), "/")
		entry.Slug = trimmed
	}
	return entry
}

func lastPathSegment(rawURL string) string {
	parts := strings.Split(strings.Trim(rawURL, "/"), "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

func imdbIDFromURL(rawURL string) string {
	for _, part := range strings.Split(rawURL, "/") {
		if strings.HasPrefix(part, "tt") {
			return part
		}
	}
	return ""
}
