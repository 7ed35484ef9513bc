package tmdb

func parseMovieResponse(resp *movieResponse, country string) *MovieRecord {
	record := &MovieRecord{
		TMDBID:      resp.ID,
		VoteAverage: resp.VoteAverage,
		VoteCount:   resp.VoteCount,
		Popularity:  resp.Popularity,
	}

	// Zero budget and revenue mean the source has no figure.
	if resp.Budget > 0 {
		record.Budget = &resp.Budget
	}
	if resp.Revenue > 0 {
		record.Revenue = &resp.Revenue
	}

	record.Status = optional(resp.Status)
	record.ReleaseDate = optional(resp.ReleaseDate)
	record.Homepage = optional(resp.Homepage)

	if col := resp.BelongsToCollection; col != nil {
		record.CollectionID = &col.ID
		record.CollectionName = optional(col.Name)
		record.CollectionPosterURL = optional(col.PosterPath)
	}

	// First non-empty certification for the configured country wins.
	for _, rd := range resp.ReleaseDates.Results {
		if rd.ISO31661 != country {
			continue
		}
		for _, release := range rd.ReleaseDates {
			if release.Certification != "" {
				record.Certification = &release.Certification
				break
			}
		}
		break
	}

	for _, kw := range resp.Keywords.Keywords {
		if kw.Name != "" {
			record.Keywords = append(record.Keywords, kw.Name)
		}
	}

	record.IMDBID = optional(resp.ExternalIDs.IMDBID)
	record.WikidataID = optional(resp.ExternalIDs.WikidataID)
	record.FacebookID = optional(resp.ExternalIDs.FacebookID)
	record.InstagramID = optional(resp.ExternalIDs.InstagramID)
	record.TwitterID = optional(resp.ExternalIDs.TwitterID)

	for _, c := range resp.Credits.Cast {
		record.CastCredits = append(record.CastCredits, map[string]interface{}{
			"id":           c.ID,
			"name":         c.Name,
			"character":    c.Character,
			"order":        c.Order,
			"profile_path": c.ProfilePath,
		})
	}
	for _, c := range resp.Credits.Crew {
		record.CrewCredits = append(record.CrewCredits, map[string]interface{}{
			"id":           c.ID,
			"name":         c.Name,
			"job":          c.Job,
			"department":   c.Department,
			"profile_path": c.ProfilePath,
		})
	}

	for _, v := range resp.Videos.Results {
		record.Videos = append(record.Videos, map[string]interface{}{
			"id":       v.ID,
			"key":      v.Key,
			"name":     v.Name,
			"site":     v.Site,
			"type":     v.Type,
			"official": v.Official,
		})
	}

	for _, pc := range resp.ProductionCompanies {
		record.ProductionCompanies = append(record.ProductionCompanies, map[string]interface{}{
			"id":             pc.ID,
			"name":           pc.Name,
			"logo_path":      pc.LogoPath,
			"origin_country": pc.OriginCountry,
		})
	}

	if len(resp.WatchProviders.Results) > 0 {
		record.WatchProviders = map[string]interface{}{}
		for iso, providers := range resp.WatchProviders.Results {
			record.WatchProviders[iso] = map[string]interface{}{
				"link":     providers.Link,
				"flatrate": providerMaps(providers.Flatrate),
				"rent":     providerMaps(providers.Rent),
				"buy":      providerMaps(providers.Buy),
			}
		}
	}

	return record
}

func providerMaps(providers []providerResponse) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(providers))
	for _, p := range providers {
		out = append(out, map[string]interface{}{
			"id":   p.ProviderID,
			"name": p.ProviderName,
			"logo": p.LogoPath,
		})
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
