package models

import "encoding/json"

// Kind is the AniList media type a route serves.
type Kind string

const (
	KindManga Kind = "manga"
	KindAnime Kind = "anime"
)

// Operation names one of the listing / lookup flavours exposed over REST.
type Operation string

const (
	OpSearch    Operation = "search"
	OpByID      Operation = "byId"
	OpTop100    Operation = "top100"
	OpTrending  Operation = "trending"
	OpTopManhwa Operation = "top-manhwa"
)

// Paged reports whether the operation returns an AniList Page envelope
// (as opposed to a single Media object).
func (o Operation) Paged() bool {
	return o != OpByID
}

// MediaRecord is a single AniList Media entry as returned upstream.
//
// A record decoded from JSON keeps the original bytes and encodes back to
// them unchanged, nulls included. The typed fields are for reading only.
// Records built in code encode from the fields; anime-only fields are then
// omitted when unset.
type MediaRecord struct {
	ID           int          `json:"id"`
	Title        MediaTitle   `json:"title"`
	CoverImage   CoverImage   `json:"coverImage"`
	Description  *string      `json:"description"`
	Chapters     *int         `json:"chapters"`
	Volumes      *int         `json:"volumes"`
	Episodes     *int         `json:"episodes,omitempty"`
	Duration     *int         `json:"duration,omitempty"`
	Season       *string      `json:"season,omitempty"`
	SeasonYear   *int         `json:"seasonYear,omitempty"`
	Studios      *StudioNodes `json:"studios,omitempty"`
	Status       *string      `json:"status"`
	Genres       []string     `json:"genres"`
	AverageScore *int         `json:"averageScore"`
	SiteURL      string       `json:"siteUrl"`

	raw json.RawMessage
}

// mediaFields has MediaRecord's layout without its JSON methods.
type mediaFields MediaRecord

func (m *MediaRecord) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var f mediaFields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*m = MediaRecord(f)
	m.raw = append(json.RawMessage(nil), b...)
	return nil
}

func (m MediaRecord) MarshalJSON() ([]byte, error) {
	if len(m.raw) > 0 {
		return m.raw, nil
	}
	return json.Marshal(mediaFields(m))
}

type MediaTitle struct {
	Romaji  *string `json:"romaji"`
	English *string `json:"english"`
	Native  *string `json:"native"`
}

type CoverImage struct {
	Large *string `json:"large"`
}

type StudioNodes struct {
	Nodes []Studio `json:"nodes"`
}

type Studio struct {
	Name string `json:"name"`
}

// DisplayTitle picks the first non-empty title in english, romaji, native order.
func (m MediaRecord) DisplayTitle() string {
	for _, t := range []*string{m.Title.English, m.Title.Romaji, m.Title.Native} {
		if t != nil && *t != "" {
			return *t
		}
	}
	return ""
}
